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
	"errors"

	ethereum "github.com/ethereum/go-ethereum"
)

const (
	// UnknownIndex is used as the Block.Index when
	// a backend only reports block hashes.
	UnknownIndex = -1
)

var (
	// ErrInvalidAddress is returned when an address
	// cannot be parsed by the backend.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrCoinbaseUnavailable is returned when the
	// backend has no coinbase configured.
	ErrCoinbaseUnavailable = errors.New("coinbase unavailable")

	// ErrCurrencyNotFound is returned when a balance
	// response does not contain the tracked currency.
	ErrCurrencyNotFound = errors.New("currency not found in balance response")
)

// Block identifies a block announced by the node.
type Block struct {
	Hash  string `json:"hash"`
	Index int64  `json:"index"`
}

// BlockEvent is delivered on every new block. When Err
// is set, polling the node failed and Block is nil.
type BlockEvent struct {
	Block *Block
	Err   error
}

// Client is the subset of node functionality needed
// to keep a local account list synchronized.
type Client interface {
	// Accounts returns the addresses currently
	// managed by the node.
	Accounts(ctx context.Context) ([]string, error)

	// Balance returns the current balance of address
	// as a base-10 integer string.
	Balance(ctx context.Context, address string) (string, error)

	// Coinbase returns the node's primary address.
	Coinbase(ctx context.Context) (string, error)

	// SubscribeNewBlocks delivers a BlockEvent on ch for every
	// new block until the subscription is unsubscribed.
	SubscribeNewBlocks(ctx context.Context, ch chan<- *BlockEvent) (ethereum.Subscription, error)
}
