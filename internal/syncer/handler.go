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

package syncer

import (
	"context"

	"github.com/coinbase/rosetta-accounts/internal/storage"
)

// Handler is called by the Syncer whenever a stored
// account actually changes. Returned errors are logged
// and never abort the pass that triggered them.
type Handler interface {
	// AccountAdded is called after an address reported
	// by the node is stored for the first time.
	AccountAdded(ctx context.Context, account *storage.Account) error

	// AccountRestored is called after a previously known
	// address is rewritten by the discovery path.
	AccountRestored(ctx context.Context, account *storage.Account) error

	AccountDeactivated(ctx context.Context, account *storage.Account) error
	AccountReactivated(ctx context.Context, account *storage.Account) error

	// BalanceUpdated is called with the balance the
	// account held before the update.
	BalanceUpdated(ctx context.Context, account *storage.Account, previous string) error
}

// noopHandler is used when New is not given a Handler.
type noopHandler struct{}

func (noopHandler) AccountAdded(context.Context, *storage.Account) error       { return nil }
func (noopHandler) AccountRestored(context.Context, *storage.Account) error    { return nil }
func (noopHandler) AccountDeactivated(context.Context, *storage.Account) error { return nil }
func (noopHandler) AccountReactivated(context.Context, *storage.Account) error { return nil }
func (noopHandler) BalanceUpdated(context.Context, *storage.Account, string) error {
	return nil
}
