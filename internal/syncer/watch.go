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
	"fmt"
	"sync/atomic"

	"github.com/coinbase/rosetta-accounts/internal/node"

	ethereum "github.com/ethereum/go-ethereum"
	"go.uber.org/zap"
)

// WatchBlocks replaces the current block subscription
// (if any) with a new one that refreshes balances on
// every new block.
func (s *Syncer) WatchBlocks(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blockSub != nil {
		s.blockSub.Unsubscribe()
		s.blockSub = nil
	}

	events := make(chan *node.BlockEvent, blockEventBuffer)
	sub, err := s.client.SubscribeNewBlocks(ctx, events)
	if err != nil {
		return fmt.Errorf("%w: unable to subscribe to new blocks", err)
	}

	s.blockSub = sub
	go s.handleBlocks(ctx, sub, events)

	return nil
}

func (s *Syncer) handleBlocks(
	ctx context.Context,
	sub ethereum.Subscription,
	events <-chan *node.BlockEvent,
) {
	for {
		select {
		case err, ok := <-sub.Err():
			if ok && err != nil {
				s.logger.Warn("block subscription failed", zap.Error(err))
			}
			return
		case <-ctx.Done():
			return
		case e := <-events:
			if e.Err != nil {
				s.logger.Debug("block notification failed", zap.Error(e.Err))
				continue
			}

			atomic.AddInt64(&s.blocks, 1)
			s.RefreshBalances(ctx)
		}
	}
}
