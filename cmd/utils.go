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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/coinbase/rosetta-accounts/configuration"
	"github.com/coinbase/rosetta-accounts/internal/accounts"
	"github.com/coinbase/rosetta-accounts/internal/node"
	"github.com/coinbase/rosetta-accounts/internal/storage"
	"github.com/coinbase/rosetta-accounts/internal/tracer"

	"github.com/coinbase/rosetta-sdk-go/fetcher"
	"github.com/coinbase/rosetta-sdk-go/utils"
)

const (
	// databaseDirectory is the folder inside the data
	// directory holding the account database.
	databaseDirectory = "storage"
)

var (
	// ErrMissingDataDirectory is returned by commands
	// reading the local accounts without a data directory.
	ErrMissingDataDirectory = errors.New("data directory must be populated")
)

// dataDirectory returns the configured data directory
// or, if none is configured, a temporary directory that
// is removed by the returned cleanup.
func dataDirectory() (string, func(), error) {
	if len(Config.DataDirectory) > 0 {
		if err := utils.EnsurePathExists(Config.DataDirectory); err != nil {
			return "", nil, fmt.Errorf("%w: unable to create data directory", err)
		}

		return Config.DataDirectory, func() {}, nil
	}

	tmpDir, err := utils.CreateTempDir()
	if err != nil {
		return "", nil, fmt.Errorf("%w: unable to create temporary directory", err)
	}

	return tmpDir, func() { utils.RemoveTempDir(tmpDir) }, nil
}

// openCollection opens the account database in dataDir.
func openCollection(ctx context.Context, dataDir string) (*accounts.Collection, func(), error) {
	localStore, err := storage.NewBadgerStorage(ctx, path.Join(dataDir, databaseDirectory))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unable to initialize database", err)
	}

	return accounts.NewCollection(storage.NewAccountStorage(localStore)), func() {
		_ = localStore.Close(ctx)
	}, nil
}

// openExistingCollection opens the account database of
// the configured data directory for reading.
func openExistingCollection(ctx context.Context) (*accounts.Collection, func(), error) {
	if len(Config.DataDirectory) == 0 {
		return nil, nil, ErrMissingDataDirectory
	}

	return openCollection(ctx, Config.DataDirectory)
}

// newHTTPClient returns the client used for every
// request to the node.
func newHTTPClient() *http.Client {
	timeout := time.Duration(Config.HTTPTimeout) * time.Second
	if Config.EnableRequestInstrumentation {
		return tracer.NewHTTPClient(timeout, Config.BalanceConcurrency)
	}

	return &http.Client{Timeout: timeout}
}

// newNodeClient dials the configured backend.
func newNodeClient(ctx context.Context) (node.Client, func(), error) {
	timeout := time.Duration(Config.HTTPTimeout) * time.Second
	pollInterval := time.Duration(Config.BlockPollInterval) * time.Millisecond
	httpClient := newHTTPClient()

	switch Config.Backend {
	case configuration.RosettaBackend:
		client, err := node.NewRosettaClient(
			ctx,
			Config.OnlineURL,
			Config.Rosetta.Network,
			Config.Rosetta.Currency,
			Config.Rosetta.AccountsFile,
			Config.Rosetta.Coinbase,
			pollInterval,
			fetcher.WithClient(tracer.NewRosettaClient(Config.OnlineURL, httpClient)),
			fetcher.WithTimeout(timeout),
			fetcher.WithMaxRetries(Config.Rosetta.MaxRetries),
			fetcher.WithRetryElapsedTime(
				time.Duration(Config.Rosetta.RetryElapsedTime)*time.Second,
			),
		)
		if err != nil {
			return nil, nil, err
		}

		return client, func() {}, nil
	case configuration.EthereumBackend:
		client, err := node.NewEthereumClient(ctx, Config.OnlineURL, httpClient, pollInterval)
		if err != nil {
			return nil, nil, err
		}

		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", configuration.ErrUnknownBackend, Config.Backend)
	}
}
