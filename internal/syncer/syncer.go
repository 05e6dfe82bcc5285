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
	"sync"
	"sync/atomic"
	"time"

	"github.com/coinbase/rosetta-accounts/internal/accounts"
	"github.com/coinbase/rosetta-accounts/internal/node"

	"github.com/alitto/pond/v2"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	// DefaultReconciliationInterval is the delay between
	// two scheduled account reconciliations.
	DefaultReconciliationInterval = 2000 * time.Millisecond

	// DefaultBalanceConcurrency is the number of balances
	// fetched concurrently during a refresh.
	DefaultBalanceConcurrency = 8

	// blockEventBuffer is the capacity of the channel
	// the block subscription writes to.
	blockEventBuffer = 16
)

// Option configures a Syncer.
type Option func(s *Syncer)

// WithReconciliationInterval overrides
// DefaultReconciliationInterval.
func WithReconciliationInterval(interval time.Duration) Option {
	return func(s *Syncer) {
		if interval > 0 {
			s.reconciliationInterval = interval
		}
	}
}

// WithBalanceConcurrency overrides DefaultBalanceConcurrency.
func WithBalanceConcurrency(concurrency int) Option {
	return func(s *Syncer) {
		if concurrency > 0 {
			s.balanceConcurrency = concurrency
		}
	}
}

// Syncer keeps the account collection in line with the
// accounts exposed by a node. Accounts are reconciled on a
// fixed interval and balances are refreshed on every new
// block.
type Syncer struct {
	collection *accounts.Collection
	client     node.Client
	handler    Handler
	logger     *zap.Logger

	reconciliationInterval time.Duration
	balanceConcurrency     int

	scheduler *cron.Cron
	pool      pond.Pool

	// mu guards the scheduled entry and the
	// block subscription.
	mu        sync.Mutex
	stopped   bool
	scheduled bool
	entryID   cron.EntryID
	blockSub  ethereum.Subscription

	// reconcileMutex serializes reconciliation passes.
	reconcileMutex sync.Mutex

	reconciliations  int64
	balanceRefreshes int64
	blocks           int64
}

// New returns a new Syncer. handler may be nil.
func New(
	collection *accounts.Collection,
	client node.Client,
	handler Handler,
	logger *zap.Logger,
	opts ...Option,
) *Syncer {
	if handler == nil {
		handler = noopHandler{}
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Syncer{
		collection:             collection,
		client:                 client,
		handler:                handler,
		logger:                 logger,
		reconciliationInterval: DefaultReconciliationInterval,
		balanceConcurrency:     DefaultBalanceConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	cronLog := &cronLogger{logger: logger.Sugar()}
	s.scheduler = cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	s.pool = pond.NewPool(s.balanceConcurrency)

	return s
}

// Start reconciles accounts and refreshes balances once,
// then keeps doing so on every new block and on every
// reconciliation interval. Calling Start again replaces
// the block subscription and the scheduled reconciliation.
func (s *Syncer) Start(ctx context.Context) {
	if s.client == nil {
		s.logger.Warn("syncer has no node client, not starting")
		return
	}

	s.mu.Lock()
	stopped := s.stopped
	s.mu.Unlock()
	if stopped {
		s.logger.Warn("syncer is stopped, not starting")
		return
	}

	s.ReconcileAccounts(ctx)
	s.RefreshBalances(ctx)

	if err := s.WatchBlocks(ctx); err != nil {
		s.logger.Warn("unable to watch new blocks", zap.Error(err))
	}

	s.schedule(ctx)
}

func (s *Syncer) schedule(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduled {
		s.scheduler.Remove(s.entryID)
	}

	s.entryID = s.scheduler.Schedule(
		everySchedule(s.reconciliationInterval),
		cron.FuncJob(func() { s.ReconcileAccounts(ctx) }),
	)
	s.scheduled = true

	// No-op when already running.
	s.scheduler.Start()
}

// Stop removes the scheduled reconciliation, cancels the
// block subscription and waits for in-flight work or ctx,
// whichever comes first. A stopped Syncer cannot be started
// again.
func (s *Syncer) Stop(ctx context.Context) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}

	s.stopped = true
	if s.scheduled {
		s.scheduler.Remove(s.entryID)
		s.scheduled = false
	}

	sub := s.blockSub
	s.blockSub = nil
	s.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}

	select {
	case <-s.scheduler.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("stopped before scheduled reconciliation completed", zap.Error(ctx.Err()))
	}

	select {
	case <-s.pool.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("stopped before balance refreshes completed", zap.Error(ctx.Err()))
	}
}

// Status summarizes the collection and the
// work done since the Syncer was created.
type Status struct {
	ActiveAccounts      int   `json:"active_accounts"`
	DeactivatedAccounts int   `json:"deactivated_accounts"`
	Reconciliations     int64 `json:"reconciliations"`
	BalanceRefreshes    int64 `json:"balance_refreshes"`
	Blocks              int64 `json:"blocks"`
}

// Status returns the current Status.
func (s *Syncer) Status(ctx context.Context) (*Status, error) {
	all, err := s.collection.FindAll(ctx, accounts.All())
	if err != nil {
		return nil, err
	}

	status := &Status{
		Reconciliations:  atomic.LoadInt64(&s.reconciliations),
		BalanceRefreshes: atomic.LoadInt64(&s.balanceRefreshes),
		Blocks:           atomic.LoadInt64(&s.blocks),
	}
	for _, account := range all {
		if account.Deactivated {
			status.DeactivatedAccounts++
		} else {
			status.ActiveAccounts++
		}
	}

	return status, nil
}

// everySchedule fires at a constant delay. Unlike
// cron.Every it keeps sub-second precision.
type everySchedule time.Duration

func (e everySchedule) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// cronLogger routes cron's logging to zap.
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
