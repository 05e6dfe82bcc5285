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
	"context"

	"github.com/coinbase/rosetta-accounts/internal/storage"
)

// Collection is the account collection with deactivated
// accounts hidden by default. Every accessor has a
// variant suffixed with All that includes them.
type Collection struct {
	storage *storage.AccountStorage
}

// NewCollection returns a new Collection.
func NewCollection(accountStorage *storage.AccountStorage) *Collection {
	return &Collection{
		storage: accountStorage,
	}
}

// Find returns all accounts matching f, besides
// the deactivated ones.
func (c *Collection) Find(ctx context.Context, f Filter) ([]*storage.Account, error) {
	return c.storage.Find(ctx, f.Selector(false))
}

// FindAll returns all accounts matching f, including
// the deactivated ones.
func (c *Collection) FindAll(ctx context.Context, f Filter) ([]*storage.Account, error) {
	return c.storage.Find(ctx, f.Selector(true))
}

// FindOne returns the first account matching f, besides
// the deactivated ones.
func (c *Collection) FindOne(ctx context.Context, f Filter) (*storage.Account, error) {
	return c.storage.FindOne(ctx, f.Selector(false))
}

// FindOneAll returns the first account matching f, including
// the deactivated ones.
func (c *Collection) FindOneAll(ctx context.Context, f Filter) (*storage.Account, error) {
	return c.storage.FindOne(ctx, f.Selector(true))
}

// Update modifies the first account matching f, besides
// the deactivated ones.
func (c *Collection) Update(
	ctx context.Context,
	f Filter,
	update *storage.Update,
) (bool, error) {
	return c.storage.Update(ctx, f.Selector(false), update)
}

// UpdateAll modifies the first account matching f, including
// the deactivated ones.
func (c *Collection) UpdateAll(
	ctx context.Context,
	f Filter,
	update *storage.Update,
) (bool, error) {
	return c.storage.Update(ctx, f.Selector(true), update)
}

// Upsert modifies the first account matching f (including
// the deactivated ones) or inserts a new one.
func (c *Collection) Upsert(
	ctx context.Context,
	f Filter,
	update *storage.Update,
) (bool, error) {
	return c.storage.Upsert(ctx, f.Selector(true), update)
}

// Insert stores a new account and returns its identifier.
func (c *Collection) Insert(ctx context.Context, account *storage.Account) (string, error) {
	return c.storage.Insert(ctx, account)
}

// Addresses returns the addresses of all accounts
// matching f, besides the deactivated ones.
func (c *Collection) Addresses(ctx context.Context, f Filter) ([]string, error) {
	accts, err := c.Find(ctx, f)
	if err != nil {
		return nil, err
	}

	addresses := make([]string, len(accts))
	for i, account := range accts {
		addresses[i] = account.Address
	}

	return addresses, nil
}
