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

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

const (
	// accountNamespace is prepended to any stored account.
	accountNamespace = "account"

	// accountSequenceKey is the badger sequence used
	// to assign account identifiers.
	accountSequenceKey = "account-sequence"

	// maxConflictRetries is the number of times a
	// read-modify-write is attempted before giving up
	// on a conflicting transaction.
	maxConflictRetries = 10

	// AccountType is the type tag of every stored account.
	AccountType = "account"
)

var (
	// ErrAccountNotFound is returned when no account
	// matches a selector.
	ErrAccountNotFound = errors.New("account not found")
)

// Account is a locally known blockchain address.
type Account struct {
	ID      string `json:"_id"`
	Type    string `json:"type"`
	Address string `json:"address"`

	// Balance is empty until it is fetched
	// successfully for the first time.
	Balance string `json:"balance,omitempty"`
	Name    string `json:"name"`

	// Deactivated is only present when the address is
	// no longer reported by the node.
	Deactivated bool `json:"deactivated,omitempty"`
}

// Selector matches stored accounts. Empty fields
// match anything.
type Selector struct {
	ID      string
	Address string

	// Deactivated is an existence condition on the
	// deactivated marker: nil matches any account,
	// false only accounts without the marker and
	// true only accounts carrying it.
	Deactivated *bool
}

// Matches returns a boolean indicating if account
// satisfies every condition of the selector.
func (s *Selector) Matches(account *Account) bool {
	if s == nil {
		return true
	}

	if len(s.ID) > 0 && s.ID != account.ID {
		return false
	}

	if len(s.Address) > 0 && s.Address != account.Address {
		return false
	}

	if s.Deactivated != nil && *s.Deactivated != account.Deactivated {
		return false
	}

	return true
}

// Update describes a field-level modification. Nil fields
// are left untouched. Setting Deactivated to false removes
// the marker.
type Update struct {
	Type        *string
	Address     *string
	Balance     *string
	Name        *string
	Deactivated *bool
}

// apply modifies account in place and returns a boolean
// indicating if any field changed.
func (u *Update) apply(account *Account) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = true
		}
	}

	setString(&account.Type, u.Type)
	setString(&account.Address, u.Address)
	setString(&account.Balance, u.Balance)
	setString(&account.Name, u.Name)

	if u.Deactivated != nil && account.Deactivated != *u.Deactivated {
		account.Deactivated = *u.Deactivated
		changed = true
	}

	return changed
}

// AccountStorage implements a document collection of
// accounts on top of a Database and DatabaseTransaction
// interface.
type AccountStorage struct {
	db Database
}

// NewAccountStorage returns a new AccountStorage.
func NewAccountStorage(db Database) *AccountStorage {
	return &AccountStorage{
		db: db,
	}
}

func getAccountKey(id string) []byte {
	return []byte(fmt.Sprintf("%s/%s", accountNamespace, id))
}

func getAccountPrefix() []byte {
	return []byte(fmt.Sprintf("%s/", accountNamespace))
}

// idLess orders decimal identifiers numerically.
func idLess(a string, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}

	return a < b
}

func scanAccounts(
	ctx context.Context,
	txn DatabaseTransaction,
	selector *Selector,
) ([]*Account, error) {
	values, err := txn.Scan(ctx, getAccountPrefix())
	if err != nil {
		return nil, fmt.Errorf("%w: unable to scan accounts", err)
	}

	accounts := []*Account{}
	for _, v := range values {
		var account Account
		if err := decode(v, &account); err != nil {
			return nil, err
		}

		if !selector.Matches(&account) {
			continue
		}

		accounts = append(accounts, &account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return idLess(accounts[i].ID, accounts[j].ID)
	})

	return accounts, nil
}

// selectAccounts reads the accounts matching selector
// within txn. A selector with an identifier only reads
// that account's key so the transaction does not conflict
// with writes to other accounts.
func selectAccounts(
	ctx context.Context,
	txn DatabaseTransaction,
	selector *Selector,
) ([]*Account, error) {
	if selector == nil || len(selector.ID) == 0 {
		return scanAccounts(ctx, txn, selector)
	}

	exists, v, err := txn.Get(ctx, getAccountKey(selector.ID))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to get account %s", err, selector.ID)
	}

	if !exists {
		return []*Account{}, nil
	}

	var account Account
	if err := decode(v, &account); err != nil {
		return nil, err
	}

	if !selector.Matches(&account) {
		return []*Account{}, nil
	}

	return []*Account{&account}, nil
}

func storeAccount(ctx context.Context, txn DatabaseTransaction, account *Account) error {
	buf, err := encode(account)
	if err != nil {
		return err
	}

	return txn.Set(ctx, getAccountKey(account.ID), buf)
}

// Find returns all accounts matching selector in
// insertion order.
func (a *AccountStorage) Find(ctx context.Context, selector *Selector) ([]*Account, error) {
	txn := a.db.NewDatabaseTransaction(ctx, false)
	defer txn.Discard(ctx)

	return selectAccounts(ctx, txn, selector)
}

// FindOne returns the first account matching selector
// or ErrAccountNotFound.
func (a *AccountStorage) FindOne(ctx context.Context, selector *Selector) (*Account, error) {
	accounts, err := a.Find(ctx, selector)
	if err != nil {
		return nil, err
	}

	if len(accounts) == 0 {
		return nil, ErrAccountNotFound
	}

	return accounts[0], nil
}

// Insert stores a new account under a freshly
// assigned identifier and returns that identifier.
func (a *AccountStorage) Insert(ctx context.Context, account *Account) (string, error) {
	seq, err := a.db.NextSequence(ctx, []byte(accountSequenceKey))
	if err != nil {
		return "", fmt.Errorf("%w: unable to assign account identifier", err)
	}

	newAccount := *account
	newAccount.ID = strconv.FormatUint(seq, 10)

	txn := a.db.NewDatabaseTransaction(ctx, true)
	defer txn.Discard(ctx)

	if err := storeAccount(ctx, txn, &newAccount); err != nil {
		return "", fmt.Errorf("%w: unable to store account %s", err, newAccount.Address)
	}

	if err := txn.Commit(ctx); err != nil {
		return "", fmt.Errorf("%w: unable to commit account %s", err, newAccount.Address)
	}

	return newAccount.ID, nil
}

// retryConflicts runs fn until it does not fail with
// ErrTransactionConflict or maxConflictRetries is reached.
func retryConflicts(fn func() error) error {
	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = fn()
		if !errors.Is(err, ErrTransactionConflict) {
			return err
		}
	}

	return err
}

// Update applies update to the first account matching
// selector. It returns a boolean indicating if the account
// was modified. Accounts are never rewritten when the
// update does not change them.
func (a *AccountStorage) Update(
	ctx context.Context,
	selector *Selector,
	update *Update,
) (bool, error) {
	modified := false
	err := retryConflicts(func() error {
		modified = false
		txn := a.db.NewDatabaseTransaction(ctx, true)
		defer txn.Discard(ctx)

		accounts, err := selectAccounts(ctx, txn, selector)
		if err != nil {
			return err
		}

		if len(accounts) == 0 {
			return nil
		}

		account := accounts[0]
		if !update.apply(account) {
			return nil
		}

		if err := storeAccount(ctx, txn, account); err != nil {
			return fmt.Errorf("%w: unable to update account %s", err, account.ID)
		}

		if err := txn.Commit(ctx); err != nil {
			return err
		}

		modified = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return modified, nil
}

// Upsert applies update to the first account matching
// selector or, when there is none, inserts a new account
// built from the selector's equality fields and update.
// It returns a boolean indicating if an account was inserted.
func (a *AccountStorage) Upsert(
	ctx context.Context,
	selector *Selector,
	update *Update,
) (bool, error) {
	inserted := false
	newID := ""
	err := retryConflicts(func() error {
		inserted = false
		txn := a.db.NewDatabaseTransaction(ctx, true)
		defer txn.Discard(ctx)

		accounts, err := selectAccounts(ctx, txn, selector)
		if err != nil {
			return err
		}

		var account *Account
		if len(accounts) > 0 {
			account = accounts[0]
			if !update.apply(account) {
				return nil
			}
		} else {
			account = &Account{}
			if selector != nil {
				account.ID = selector.ID
				account.Address = selector.Address
				if selector.Deactivated != nil {
					account.Deactivated = *selector.Deactivated
				}
			}

			update.apply(account)
			if len(account.ID) == 0 {
				// Identifiers are assigned once, a retried
				// transaction reuses the first one.
				if len(newID) == 0 {
					seq, err := a.db.NextSequence(ctx, []byte(accountSequenceKey))
					if err != nil {
						return fmt.Errorf("%w: unable to assign account identifier", err)
					}

					newID = strconv.FormatUint(seq, 10)
				}

				account.ID = newID
			}
		}

		if err := storeAccount(ctx, txn, account); err != nil {
			return fmt.Errorf("%w: unable to upsert account %s", err, account.ID)
		}

		if err := txn.Commit(ctx); err != nil {
			return err
		}

		inserted = len(accounts) == 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return inserted, nil
}
