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
	"fmt"
	"time"

	"github.com/coinbase/rosetta-accounts/internal/logger"
	"github.com/coinbase/rosetta-accounts/internal/syncer"
	"github.com/coinbase/rosetta-accounts/internal/tracer"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// PeriodicLoggingFrequency is the frequency that stats are printed
	// to the terminal.
	PeriodicLoggingFrequency = 10 * time.Second

	// stopTimeout bounds how long in-flight work is
	// awaited on exit.
	stopTimeout = 30 * time.Second
)

var (
	syncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Keep the local account list in sync with a node",
		Long: `Reconcile the local account list with the accounts exposed
by the node on a fixed interval and refresh account balances on every
new block.

Addresses reported by the node for the first time are stored and named
("Main account (Coinbase)" for the coinbase, "Account N" otherwise).
Addresses no longer reported are marked deactivated and are restored
when they reappear. Accounts are never deleted.

When re-running this command, it will continue with the accounts stored in
the data directory. If no data directory is configured, a temporary
directory is used and removed on exit.`,
		RunE: runSyncCmd,
	}
)

func runSyncCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(Context)
	defer cancel()

	zapLogger, err := logger.New(Config.LogLevel, Config.LogEncoding)
	if err != nil {
		return fmt.Errorf("%w: unable to create logger", err)
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	if Config.EnableRequestInstrumentation {
		shutdown, err := tracer.InitProvider(ctx, Config.OtelCollectorURL)
		if err != nil {
			return fmt.Errorf("%w: unable to initialize tracing", err)
		}
		defer func() {
			_ = shutdown(context.Background())
		}()
	}

	dataDir, cleanup, err := dataDirectory()
	if err != nil {
		return err
	}
	defer cleanup()

	collection, closeCollection, err := openCollection(ctx, dataDir)
	if err != nil {
		return err
	}
	defer closeCollection()

	client, closeClient, err := newNodeClient(ctx)
	if err != nil {
		return fmt.Errorf("%w: unable to connect to %s", err, Config.OnlineURL)
	}
	defer closeClient()

	statusLogger := logger.NewLogger(
		dataDir,
		Config.LogAccountChanges,
		Config.LogBalanceChanges,
		zapLogger,
	)

	s := syncer.New(
		collection,
		client,
		statusLogger,
		zapLogger,
		syncer.WithReconciliationInterval(
			time.Duration(Config.ReconciliationInterval)*time.Millisecond,
		),
		syncer.WithBalanceConcurrency(Config.BalanceConcurrency),
	)

	zapLogger.Info(
		"syncing accounts",
		zap.String("backend", string(Config.Backend)),
		zap.String("url", Config.OnlineURL),
		zap.String("data_directory", dataDir),
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.Start(ctx)
		<-ctx.Done()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
		defer stopCancel()
		s.Stop(stopCtx)

		return nil
	})

	g.Go(func() error {
		for ctx.Err() == nil {
			logStatus(s, statusLogger)

			select {
			case <-ctx.Done():
			case <-time.After(PeriodicLoggingFrequency):
			}
		}

		return nil
	})

	go handleSignals([]context.CancelFunc{cancel})

	err = g.Wait()

	// Print stats one last time before exiting
	logStatus(s, statusLogger)

	if SignalReceived {
		color.Red("Sync halted")
		return nil
	}

	return err
}

func logStatus(s *syncer.Syncer, statusLogger *logger.Logger) {
	// The collection is still readable once
	// the sync context is cancelled.
	ctx := context.Background()

	status, err := s.Status(ctx)
	if err != nil {
		return
	}

	statusLogger.LogSyncStatus(ctx, status)
}
