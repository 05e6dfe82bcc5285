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
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/coinbase/rosetta-accounts/internal/accounts"
	"github.com/coinbase/rosetta-accounts/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// CoinbaseName is the name given to the
	// node's coinbase account.
	CoinbaseName = "Main account (Coinbase)"

	accountNameFormat = "Account %d"
)

// addressSet is an insertion ordered set of addresses.
type addressSet struct {
	order   []string
	members map[string]struct{}
}

func newAddressSet(addresses []string) *addressSet {
	set := &addressSet{members: map[string]struct{}{}}
	for _, address := range addresses {
		if _, ok := set.members[address]; ok {
			continue
		}

		set.members[address] = struct{}{}
		set.order = append(set.order, address)
	}

	return set
}

func (a *addressSet) contains(address string) bool {
	_, ok := a.members[address]
	return ok
}

func (a *addressSet) remove(address string) {
	delete(a.members, address)
}

func (a *addressSet) len() int {
	return len(a.members)
}

// list returns the remaining addresses
// in insertion order.
func (a *addressSet) list() []string {
	addresses := []string{}
	for _, address := range a.order {
		if a.contains(address) {
			addresses = append(addresses, address)
		}
	}

	return addresses
}

func (a *addressSet) equals(other *addressSet) bool {
	if a.len() != other.len() {
		return false
	}

	for address := range a.members {
		if !other.contains(address) {
			return false
		}
	}

	return true
}

// ReconcileAccounts aligns the stored accounts with the
// addresses reported by the node. Accounts no longer
// reported are deactivated, reappearing ones are
// reactivated and unknown addresses are stored. Failures
// are logged and end the affected unit of work only.
func (s *Syncer) ReconcileAccounts(ctx context.Context) {
	s.reconcileMutex.Lock()
	defer s.reconcileMutex.Unlock()

	atomic.AddInt64(&s.reconciliations, 1)

	addresses, err := s.client.Accounts(ctx)
	if err != nil {
		s.logger.Debug("unable to fetch node accounts", zap.Error(err))
		return
	}

	visible, err := s.collection.Addresses(ctx, accounts.All())
	if err != nil {
		s.logger.Warn("unable to load accounts", zap.Error(err))
		return
	}

	reported := newAddressSet(addresses)
	if reported.len() > 0 && reported.equals(newAddressSet(visible)) {
		return
	}

	all, err := s.collection.FindAll(ctx, accounts.All())
	if err != nil {
		s.logger.Warn("unable to load accounts", zap.Error(err))
		return
	}

	for _, account := range all {
		// Accounts that never had a balance are left to
		// the discovery path below.
		if len(account.Balance) == 0 {
			continue
		}

		if reported.contains(account.Address) {
			s.setDeactivated(ctx, account, false)
		} else {
			s.setDeactivated(ctx, account, true)
		}

		reported.remove(account.Address)
	}

	s.addAccounts(ctx, reported.list(), len(visible)+1)
}

func (s *Syncer) setDeactivated(ctx context.Context, account *storage.Account, deactivated bool) {
	modified, err := s.collection.UpdateAll(
		ctx,
		accounts.ByID(account.ID),
		&storage.Update{Deactivated: &deactivated},
	)
	if err != nil {
		s.logger.Warn(
			"unable to update account",
			zap.String("address", account.Address),
			zap.Bool("deactivated", deactivated),
			zap.Error(err),
		)
		return
	}

	if !modified {
		return
	}

	updated := snapshot(account)
	updated.Deactivated = deactivated
	if deactivated {
		s.notify(s.handler.AccountDeactivated(ctx, updated), updated)
	} else {
		s.notify(s.handler.AccountReactivated(ctx, updated), updated)
	}
}

// discovery is the node's view of an address
// that is not tracked yet.
type discovery struct {
	address  string
	balance  string
	coinbase string
}

// addAccounts fetches the balance of every address
// concurrently and then stores the addresses in the
// order given, naming them from counter onwards.
func (s *Syncer) addAccounts(ctx context.Context, addresses []string, counter int) {
	if len(addresses) == 0 {
		return
	}

	discoveries := make([]*discovery, len(addresses))

	g := new(errgroup.Group)
	g.SetLimit(s.balanceConcurrency)
	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			balance, err := s.client.Balance(ctx, address)
			if err != nil {
				s.logger.Debug(
					"unable to fetch balance",
					zap.String("address", address),
					zap.Error(err),
				)
				return nil
			}

			coinbase, err := s.client.Coinbase(ctx)
			if err != nil {
				s.logger.Warn("unable to fetch coinbase", zap.Error(err))
				coinbase = ""
			}

			discoveries[i] = &discovery{
				address:  address,
				balance:  balance,
				coinbase: coinbase,
			}
			return nil
		})
	}

	// Tasks never fail.
	_ = g.Wait()

	for _, d := range discoveries {
		if d == nil {
			continue
		}

		name := CoinbaseName
		if d.address != d.coinbase {
			name = fmt.Sprintf(accountNameFormat, counter)
			counter++
		}

		s.storeAccount(ctx, d, name)
	}
}

// storeAccount rewrites the account already holding
// the discovered address (deactivated or not) or
// inserts a new one.
func (s *Syncer) storeAccount(ctx context.Context, d *discovery, name string) {
	accountType := storage.AccountType
	existing, err := s.collection.FindOneAll(ctx, accounts.ByAddress(d.address))
	switch {
	case errors.Is(err, storage.ErrAccountNotFound):
		account := &storage.Account{
			Type:    accountType,
			Address: d.address,
			Balance: d.balance,
			Name:    name,
		}

		id, err := s.collection.Insert(ctx, account)
		if err != nil {
			s.logger.Warn("unable to add account", zap.String("address", d.address), zap.Error(err))
			return
		}

		account.ID = id
		s.notify(s.handler.AccountAdded(ctx, account), account)
	case err != nil:
		s.logger.Warn("unable to look up account", zap.String("address", d.address), zap.Error(err))
	default:
		modified, err := s.collection.UpdateAll(ctx, accounts.ByID(existing.ID), &storage.Update{
			Type:    &accountType,
			Address: &d.address,
			Balance: &d.balance,
			Name:    &name,
		})
		if err != nil {
			s.logger.Warn("unable to restore account", zap.String("address", d.address), zap.Error(err))
			return
		}

		if !modified {
			return
		}

		updated := snapshot(existing)
		updated.Type = accountType
		updated.Balance = d.balance
		updated.Name = name
		s.notify(s.handler.AccountRestored(ctx, updated), updated)
	}
}

// snapshot returns a copy of account that
// is safe to hand to the Handler.
func snapshot(account *storage.Account) *storage.Account {
	copied := *account
	return &copied
}

func (s *Syncer) notify(err error, account *storage.Account) {
	if err != nil {
		s.logger.Warn(
			"account handler failed",
			zap.String("address", account.Address),
			zap.Error(err),
		)
	}
}
