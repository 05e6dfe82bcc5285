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

package node

import (
	"context"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/event"
)

// pollFunc returns the blocks seen since its last invocation.
type pollFunc func(ctx context.Context) ([]*Block, error)

// pollBlocks invokes poll every interval and forwards its
// results to ch until the returned subscription is
// unsubscribed. Poll errors are forwarded as events and
// do not end the subscription. cleanup (if not nil) is
// invoked once polling stops.
func pollBlocks(
	interval time.Duration,
	poll pollFunc,
	cleanup func(),
	ch chan<- *BlockEvent,
) ethereum.Subscription {
	return event.NewSubscription(func(quit <-chan struct{}) error {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Abort any in-flight poll as soon as the
		// subscription is cancelled.
		go func() {
			select {
			case <-quit:
				cancel()
			case <-ctx.Done():
			}
		}()

		if cleanup != nil {
			defer cleanup()
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-quit:
				return nil
			case <-ticker.C:
			}

			blocks, err := poll(ctx)
			if ctx.Err() != nil {
				return nil
			}

			events := []*BlockEvent{}
			if err != nil {
				events = append(events, &BlockEvent{Err: err})
			}

			for _, block := range blocks {
				events = append(events, &BlockEvent{Block: block})
			}

			for _, e := range events {
				select {
				case ch <- e:
				case <-quit:
					return nil
				}
			}
		}
	})
}
