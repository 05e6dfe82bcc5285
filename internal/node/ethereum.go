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
	"fmt"
	"net/http"
	"strings"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

const (
	// uninstallFilterTimeout bounds the eth_uninstallFilter
	// call made when a block subscription ends.
	uninstallFilterTimeout = 5 * time.Second
)

var _ Client = (*EthereumClient)(nil)

// EthereumClient implements Client on top of the
// Ethereum JSON-RPC API.
type EthereumClient struct {
	rpc          *rpc.Client
	eth          *ethclient.Client
	pollInterval time.Duration
}

// NewEthereumClient dials the JSON-RPC endpoint at url. HTTP
// endpoints send their requests with httpClient; websocket
// and IPC endpoints are dialed as is.
func NewEthereumClient(
	ctx context.Context,
	url string,
	httpClient *http.Client,
	pollInterval time.Duration,
) (*EthereumClient, error) {
	var (
		client *rpc.Client
		err    error
	)
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		client, err = rpc.DialHTTPWithClient(url, httpClient)
	} else {
		client, err = rpc.DialContext(ctx, url)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: unable to dial %s", err, url)
	}

	return NewEthereumClientFromRPC(client, pollInterval), nil
}

// NewEthereumClientFromRPC wraps an existing *rpc.Client.
func NewEthereumClientFromRPC(client *rpc.Client, pollInterval time.Duration) *EthereumClient {
	return &EthereumClient{
		rpc:          client,
		eth:          ethclient.NewClient(client),
		pollInterval: pollInterval,
	}
}

// Close closes the underlying RPC connection.
func (c *EthereumClient) Close() {
	c.rpc.Close()
}

// Accounts returns the checksummed addresses
// returned by eth_accounts.
func (c *EthereumClient) Accounts(ctx context.Context) ([]string, error) {
	var addresses []common.Address
	if err := c.rpc.CallContext(ctx, &addresses, "eth_accounts"); err != nil {
		return nil, fmt.Errorf("%w: unable to fetch accounts", err)
	}

	accounts := make([]string, len(addresses))
	for i, address := range addresses {
		accounts[i] = address.Hex()
	}

	return accounts, nil
}

// Balance returns the latest balance of address in wei.
func (c *EthereumClient) Balance(ctx context.Context, address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	balance, err := c.eth.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return "", fmt.Errorf("%w: unable to fetch balance of %s", err, address)
	}

	return balance.String(), nil
}

// Coinbase returns the checksummed address returned
// by eth_coinbase.
func (c *EthereumClient) Coinbase(ctx context.Context) (string, error) {
	var coinbase common.Address
	if err := c.rpc.CallContext(ctx, &coinbase, "eth_coinbase"); err != nil {
		return "", fmt.Errorf("%w: unable to fetch coinbase", err)
	}

	return coinbase.Hex(), nil
}

func (c *EthereumClient) newBlockFilter(ctx context.Context) (string, error) {
	var filterID string
	if err := c.rpc.CallContext(ctx, &filterID, "eth_newBlockFilter"); err != nil {
		return "", fmt.Errorf("%w: unable to install block filter", err)
	}

	return filterID, nil
}

// SubscribeNewBlocks installs a "latest" block filter and polls
// it for changes. If polling fails (for example because the
// node dropped the filter), the filter is reinstalled on the
// next tick.
func (c *EthereumClient) SubscribeNewBlocks(
	ctx context.Context,
	ch chan<- *BlockEvent,
) (ethereum.Subscription, error) {
	filterID, err := c.newBlockFilter(ctx)
	if err != nil {
		return nil, err
	}

	poll := func(ctx context.Context) ([]*Block, error) {
		if len(filterID) == 0 {
			newID, err := c.newBlockFilter(ctx)
			if err != nil {
				return nil, err
			}

			filterID = newID
			return nil, nil
		}

		var hashes []common.Hash
		if err := c.rpc.CallContext(ctx, &hashes, "eth_getFilterChanges", filterID); err != nil {
			filterID = ""
			return nil, fmt.Errorf("%w: unable to poll block filter", err)
		}

		blocks := make([]*Block, len(hashes))
		for i, hash := range hashes {
			blocks[i] = &Block{
				Hash:  hash.Hex(),
				Index: UnknownIndex,
			}
		}

		return blocks, nil
	}

	cleanup := func() {
		if len(filterID) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), uninstallFilterTimeout)
		defer cancel()

		var uninstalled bool
		_ = c.rpc.CallContext(ctx, &uninstalled, "eth_uninstallFilter", filterID)
	}

	return pollBlocks(c.pollInterval, poll, cleanup, ch), nil
}
