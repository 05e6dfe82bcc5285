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
	"fmt"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/stretchr/testify/assert"
)

var (
	addr1 = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	addr2 = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

// ethService implements the subset of the eth
// namespace used by EthereumClient.
type ethService struct {
	mu        sync.Mutex
	accounts  []common.Address
	coinbase  *common.Address
	balances  map[common.Address]*big.Int
	filters   map[string][]common.Hash
	nextID    int
	installed int
	removed   []string
}

func newEthService() *ethService {
	return &ethService{
		balances: map[common.Address]*big.Int{},
		filters:  map[string][]common.Hash{},
	}
}

func (s *ethService) Accounts() []common.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accounts
}

func (s *ethService) Coinbase() (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.coinbase == nil {
		return common.Address{}, errors.New("etherbase must be explicitly specified")
	}

	return *s.coinbase, nil
}

func (s *ethService) GetBalance(address common.Address, block string) (*hexutil.Big, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance, ok := s.balances[address]
	if !ok {
		return (*hexutil.Big)(big.NewInt(0)), nil
	}

	return (*hexutil.Big)(balance), nil
}

func (s *ethService) NewBlockFilter() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.installed++
	id := fmt.Sprintf("0x%x", s.nextID)
	s.filters[id] = []common.Hash{}
	return id
}

func (s *ethService) GetFilterChanges(id string) ([]common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changes, ok := s.filters[id]
	if !ok {
		return nil, errors.New("filter not found")
	}

	s.filters[id] = []common.Hash{}
	return changes, nil
}

func (s *ethService) UninstallFilter(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.filters[id]
	delete(s.filters, id)
	s.removed = append(s.removed, id)
	return ok
}

func (s *ethService) addBlock(hash common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.filters {
		s.filters[id] = append(s.filters[id], hash)
	}
}

func (s *ethService) dropFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = map[string][]common.Hash{}
}

func (s *ethService) installedFilters() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.installed
}

func (s *ethService) removedFilters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string{}, s.removed...)
}

func newTestEthereumClient(t *testing.T, service *ethService) *EthereumClient {
	server := rpc.NewServer()
	assert.NoError(t, server.RegisterName("eth", service))

	return NewEthereumClientFromRPC(rpc.DialInProc(server), 10*time.Millisecond)
}

func TestEthereumAccounts(t *testing.T) {
	ctx := context.Background()
	service := newEthService()
	service.accounts = []common.Address{addr1, addr2}

	client := newTestEthereumClient(t, service)
	defer client.Close()

	accounts, err := client.Accounts(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{addr1.Hex(), addr2.Hex()}, accounts)
}

func TestEthereumBalance(t *testing.T) {
	ctx := context.Background()
	service := newEthService()

	large, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	assert.True(t, ok)
	service.balances[addr1] = large

	client := newTestEthereumClient(t, service)
	defer client.Close()

	t.Run("large balance", func(t *testing.T) {
		balance, err := client.Balance(ctx, addr1.Hex())
		assert.NoError(t, err)
		assert.Equal(t, "123456789012345678901234567890", balance)
	})

	t.Run("empty balance", func(t *testing.T) {
		balance, err := client.Balance(ctx, addr2.Hex())
		assert.NoError(t, err)
		assert.Equal(t, "0", balance)
	})

	t.Run("invalid address", func(t *testing.T) {
		balance, err := client.Balance(ctx, "not an address")
		assert.True(t, errors.Is(err, ErrInvalidAddress))
		assert.Empty(t, balance)
	})
}

func TestEthereumCoinbase(t *testing.T) {
	ctx := context.Background()
	service := newEthService()

	client := newTestEthereumClient(t, service)
	defer client.Close()

	t.Run("no coinbase", func(t *testing.T) {
		coinbase, err := client.Coinbase(ctx)
		assert.Error(t, err)
		assert.Empty(t, coinbase)
	})

	t.Run("coinbase", func(t *testing.T) {
		service.mu.Lock()
		service.coinbase = &addr2
		service.mu.Unlock()

		coinbase, err := client.Coinbase(ctx)
		assert.NoError(t, err)
		assert.Equal(t, addr2.Hex(), coinbase)
	})
}

func receiveEvent(t *testing.T, events <-chan *BlockEvent) *BlockEvent {
	select {
	case e := <-events:
		return e
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for block event")
	}

	return nil
}

func TestEthereumSubscribeNewBlocks(t *testing.T) {
	ctx := context.Background()
	service := newEthService()

	client := newTestEthereumClient(t, service)
	defer client.Close()

	events := make(chan *BlockEvent)
	sub, err := client.SubscribeNewBlocks(ctx, events)
	assert.NoError(t, err)
	assert.Equal(t, 1, service.installedFilters())

	hash1 := common.HexToHash("0x01")
	service.addBlock(hash1)

	e := receiveEvent(t, events)
	assert.NoError(t, e.Err)
	assert.Equal(t, &Block{Hash: hash1.Hex(), Index: UnknownIndex}, e.Block)

	// The node forgets the filter: the error is delivered and
	// the filter is reinstalled without ending the subscription.
	service.dropFilters()
	e = receiveEvent(t, events)
	assert.Error(t, e.Err)
	assert.Nil(t, e.Block)

	assert.Eventually(t, func() bool {
		return service.installedFilters() == 2
	}, 5*time.Second, 10*time.Millisecond)

	hash2 := common.HexToHash("0x02")
	service.addBlock(hash2)

	e = receiveEvent(t, events)
	assert.NoError(t, e.Err)
	assert.Equal(t, hash2.Hex(), e.Block.Hash)

	sub.Unsubscribe()
	assert.Equal(t, []string{"0x2"}, service.removedFilters())
}
