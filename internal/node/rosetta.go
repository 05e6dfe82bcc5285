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
	"time"

	"github.com/coinbase/rosetta-sdk-go/fetcher"
	"github.com/coinbase/rosetta-sdk-go/types"
	"github.com/coinbase/rosetta-sdk-go/utils"
	ethereum "github.com/ethereum/go-ethereum"
)

var _ Client = (*RosettaClient)(nil)

// RosettaClient implements Client on top of a Rosetta
// Data API implementation. Rosetta has no notion of
// node-managed accounts or a coinbase, so the tracked
// accounts are read from a file and the coinbase is
// provided by the caller.
type RosettaClient struct {
	fetcher      *fetcher.Fetcher
	network      *types.NetworkIdentifier
	currency     *types.Currency
	accountsFile string
	coinbase     string
	pollInterval time.Duration
}

// NewRosettaClient creates a new RosettaClient and
// initializes the fetcher's asserter against network.
func NewRosettaClient(
	ctx context.Context,
	url string,
	network *types.NetworkIdentifier,
	currency *types.Currency,
	accountsFile string,
	coinbase string,
	pollInterval time.Duration,
	fetcherOpts ...fetcher.Option,
) (*RosettaClient, error) {
	f := fetcher.New(url, fetcherOpts...)

	_, _, fetchErr := f.InitializeAsserter(ctx, network, "")
	if fetchErr != nil {
		return nil, fmt.Errorf("%w: unable to initialize asserter", fetchErr.Err)
	}

	return &RosettaClient{
		fetcher:      f,
		network:      network,
		currency:     currency,
		accountsFile: accountsFile,
		coinbase:     coinbase,
		pollInterval: pollInterval,
	}, nil
}

// Accounts returns the distinct addresses listed in the
// accounts file. The file is read on every call so that
// accounts can be added or removed while running.
func (c *RosettaClient) Accounts(ctx context.Context) ([]string, error) {
	return loadAccountsFile(c.accountsFile)
}

func loadAccountsFile(filePath string) ([]string, error) {
	accounts := []*types.AccountIdentifier{}
	if err := utils.LoadAndParse(filePath, &accounts); err != nil {
		return nil, fmt.Errorf("%w: unable to load accounts file %s", err, filePath)
	}

	seen := map[string]struct{}{}
	addresses := []string{}
	for _, account := range accounts {
		if account == nil || len(account.Address) == 0 {
			continue
		}

		if _, ok := seen[account.Address]; ok {
			continue
		}

		seen[account.Address] = struct{}{}
		addresses = append(addresses, account.Address)
	}

	return addresses, nil
}

// Balance returns the current balance of address
// in the configured currency.
func (c *RosettaClient) Balance(ctx context.Context, address string) (string, error) {
	_, amounts, _, fetchErr := c.fetcher.AccountBalanceRetry(
		ctx,
		c.network,
		&types.AccountIdentifier{Address: address},
		nil,
		[]*types.Currency{c.currency},
	)
	if fetchErr != nil {
		return "", fmt.Errorf("%w: unable to fetch balance of %s", fetchErr.Err, address)
	}

	return extractBalance(amounts, c.currency)
}

func extractBalance(amounts []*types.Amount, currency *types.Currency) (string, error) {
	for _, amount := range amounts {
		if types.Hash(amount.Currency) == types.Hash(currency) {
			return amount.Value, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrCurrencyNotFound, types.PrintStruct(currency))
}

// Coinbase returns the configured coinbase address.
func (c *RosettaClient) Coinbase(ctx context.Context) (string, error) {
	if len(c.coinbase) == 0 {
		return "", ErrCoinbaseUnavailable
	}

	return c.coinbase, nil
}

// SubscribeNewBlocks polls /network/status and emits an
// event whenever the current block changes.
func (c *RosettaClient) SubscribeNewBlocks(
	ctx context.Context,
	ch chan<- *BlockEvent,
) (ethereum.Subscription, error) {
	status, fetchErr := c.fetcher.NetworkStatusRetry(ctx, c.network, nil)
	if fetchErr != nil {
		return nil, fmt.Errorf("%w: unable to fetch network status", fetchErr.Err)
	}

	head := status.CurrentBlockIdentifier
	poll := func(ctx context.Context) ([]*Block, error) {
		status, fetchErr := c.fetcher.NetworkStatusRetry(ctx, c.network, nil)
		if fetchErr != nil {
			return nil, fmt.Errorf("%w: unable to fetch network status", fetchErr.Err)
		}

		current := status.CurrentBlockIdentifier
		if types.Hash(current) == types.Hash(head) {
			return nil, nil
		}

		head = current
		return []*Block{
			{
				Hash:  current.Hash,
				Index: current.Index,
			},
		}, nil
	}

	return pollBlocks(c.pollInterval, poll, nil, ch), nil
}
