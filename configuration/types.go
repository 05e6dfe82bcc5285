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

package configuration

import (
	"github.com/coinbase/rosetta-sdk-go/types"
)

// Backend is the kind of node accounts are synced from.
type Backend string

const (
	// EthereumBackend syncs from the Ethereum JSON-RPC API.
	EthereumBackend Backend = "ethereum"

	// RosettaBackend syncs from a Rosetta Data API
	// implementation.
	RosettaBackend Backend = "rosetta"
)

// Default Configuration Values
const (
	DefaultBackend                = EthereumBackend
	DefaultEthereumURL            = "http://localhost:8545"
	DefaultRosettaURL             = "http://localhost:8080"
	DefaultTimeout                = 10
	DefaultReconciliationInterval = 2000
	DefaultBlockPollInterval      = 1000
	DefaultBalanceConcurrency     = 8
	DefaultLogLevel               = "info"
	DefaultLogEncoding            = "console"
	DefaultAccountsFile           = "accounts.json"
	DefaultMaxRetries             = 5
	DefaultRetryElapsedTime       = 60
	DefaultOtelCollectorURL       = "localhost:4317"
)

// Default Configuration Values
var (
	DefaultNetwork = &types.NetworkIdentifier{
		Blockchain: "Ethereum",
		Network:    "Ropsten",
	}
	DefaultCurrency = &types.Currency{
		Symbol:   "ETH",
		Decimals: 18,
	}
)

// RosettaConfiguration contains the settings only used
// by the rosetta backend.
type RosettaConfiguration struct {
	// Network is the *types.NetworkIdentifier balances
	// are fetched on.
	Network *types.NetworkIdentifier `json:"network"`

	// Currency is the *types.Currency balances are
	// tracked in.
	// default: {Symbol: "ETH", Decimals: 18}
	Currency *types.Currency `json:"currency"`

	// AccountsFile is a JSON file of []*types.AccountIdentifier
	// listing the addresses to sync. It is read on every
	// reconciliation, so it can be edited while syncing.
	AccountsFile string `json:"accounts_file"`

	// Coinbase is the address named as the main account.
	// Rosetta has no notion of a coinbase, so it must be
	// provided here.
	Coinbase string `json:"coinbase,omitempty"`

	// MaxRetries is the number of times a failed
	// request is retried.
	MaxRetries uint64 `json:"max_retries"`

	// RetryElapsedTime is the maximum number of seconds
	// spent retrying a request.
	RetryElapsedTime uint64 `json:"retry_elapsed_time"`
}

// Configuration contains all configuration settings
// for syncing accounts.
type Configuration struct {
	// Backend is either "ethereum" or "rosetta".
	// default: ethereum
	Backend Backend `json:"backend"`

	// OnlineURL is the URL of the node.
	// default: http://localhost:8545 (ethereum), http://localhost:8080 (rosetta)
	OnlineURL string `json:"online_url"`

	// DataDirectory is a folder used to store the account
	// database and stream files. If not populated, a
	// temporary directory is used and removed on exit.
	DataDirectory string `json:"data_directory"`

	// HTTPTimeout is the timeout in seconds of an
	// HTTP request to the node.
	HTTPTimeout uint64 `json:"http_timeout"`

	// ReconciliationInterval is the number of milliseconds
	// between two reconciliations of the account list.
	ReconciliationInterval uint64 `json:"reconciliation_interval"`

	// BlockPollInterval is the number of milliseconds
	// between two polls for new blocks.
	BlockPollInterval uint64 `json:"block_poll_interval"`

	// BalanceConcurrency is the number of balances
	// fetched concurrently.
	BalanceConcurrency int `json:"balance_concurrency"`

	LogLevel    string `json:"log_level"`
	LogEncoding string `json:"log_encoding"`

	// LogAccountChanges writes account changes
	// to accounts.txt in the data directory.
	LogAccountChanges bool `json:"log_account_changes"`

	// LogBalanceChanges writes balance changes to
	// balance_changes.txt in the data directory.
	LogBalanceChanges bool `json:"log_balance_changes"`

	// EnableRequestInstrumentation traces every request
	// made to the node and exports the spans to the
	// collector at OtelCollectorURL.
	EnableRequestInstrumentation bool   `json:"enable_request_instrumentation"`
	OtelCollectorURL             string `json:"otel_collector_url,omitempty"`

	Rosetta *RosettaConfiguration `json:"rosetta,omitempty"`
}
