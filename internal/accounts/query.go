// Copyright 2020 Coinbase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package accounts

import (
	"github.com/coinbase/rosetta-accounts/internal/storage"
)

type filterKind int

const (
	allFilter filterKind = iota
	idFilter
	selectorFilter
)

// Filter selects the accounts a Collection accessor
// operates on. The zero value selects all accounts.
type Filter struct {
	kind     filterKind
	id       string
	selector storage.Selector
}

// All returns a Filter matching every account.
func All() Filter {
	return Filter{kind: allFilter}
}

// ByID returns a Filter matching the account
// with the provided identifier.
func ByID(id string) Filter {
	return Filter{kind: idFilter, id: id}
}

// ByFilter returns a Filter matching accounts
// satisfying selector.
func ByFilter(selector storage.Selector) Filter {
	return Filter{kind: selectorFilter, selector: selector}
}

// ByAddress is shorthand for ByFilter on an address.
func ByAddress(address string) Filter {
	return ByFilter(storage.Selector{Address: address})
}

// Selector normalizes the Filter into a *storage.Selector.
// Unless includeDeactivated is set, the selector only
// matches accounts without the deactivated marker
// (overriding any deactivated condition on the filter).
func (f Filter) Selector(includeDeactivated bool) *storage.Selector {
	var selector storage.Selector
	switch f.kind {
	case idFilter:
		selector = storage.Selector{ID: f.id}
	case selectorFilter:
		selector = f.selector
	default:
		selector = storage.Selector{}
	}

	if !includeDeactivated {
		exists := false
		selector.Deactivated = &exists
	}

	return &selector
}
