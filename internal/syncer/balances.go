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
	"sync/atomic"

	"github.com/coinbase/rosetta-accounts/internal/accounts"
	"github.com/coinbase/rosetta-accounts/internal/storage"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// RefreshBalances fetches the balance of every active
// account and stores the ones that changed. Accounts
// whose balance cannot be fetched are left untouched.
func (s *Syncer) RefreshBalances(ctx context.Context) {
	active, err := s.collection.Find(ctx, accounts.All())
	if err != nil {
		s.logger.Warn("unable to load accounts", zap.Error(err))
		return
	}

	atomic.AddInt64(&s.balanceRefreshes, 1)

	group := s.pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for _, account := range active {
		account := account
		group.Submit(func() {
			if groupCtx.Err() != nil {
				return
			}

			balance, err := s.client.Balance(groupCtx, account.Address)
			if err != nil {
				s.logger.Debug(
					"unable to fetch balance",
					zap.String("address", account.Address),
					zap.Error(err),
				)
				return
			}

			s.storeBalance(groupCtx, account, balance)
		})
	}

	if err := group.Wait(); err != nil &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, pond.ErrGroupStopped) &&
		!errors.Is(err, pond.ErrPoolStopped) {
		s.logger.Warn("balance refresh encountered error", zap.Error(err))
	}
}

func (s *Syncer) storeBalance(ctx context.Context, account *storage.Account, balance string) {
	modified, err := s.collection.Update(
		ctx,
		accounts.ByID(account.ID),
		&storage.Update{Balance: &balance},
	)
	if err != nil {
		s.logger.Warn(
			"unable to store balance",
			zap.String("address", account.Address),
			zap.Error(err),
		)
		return
	}

	if !modified {
		return
	}

	updated := snapshot(account)
	updated.Balance = balance
	s.notify(s.handler.BalanceUpdated(ctx, updated, account.Balance), updated)
}
