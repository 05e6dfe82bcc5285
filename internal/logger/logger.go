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

package logger

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"sync"

	"github.com/coinbase/rosetta-accounts/internal/storage"
	"github.com/coinbase/rosetta-accounts/internal/syncer"

	"github.com/coinbase/rosetta-sdk-go/utils"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

var _ syncer.Handler = (*Logger)(nil)

var (
	// ErrUnknownLogLevel is returned by New for
	// an unsupported level.
	ErrUnknownLogLevel = errors.New("unknown log level")
)

const (
	// accountStreamFile contains the stream of added,
	// restored, deactivated and reactivated accounts.
	accountStreamFile = "accounts.txt"

	// balanceStreamFile contains the stream of
	// balance changes.
	balanceStreamFile = "balance_changes.txt"

	addEvent        = "Add"
	restoreEvent    = "Restore"
	deactivateEvent = "Deactivate"
	reactivateEvent = "Reactivate"
)

// Logger records account changes to stream files in
// logDir and prints sync progress.
type Logger struct {
	logDir            string
	logAccountChanges bool
	logBalanceChanges bool
	zapLogger         *zap.Logger

	// streamMutex serializes stream file writes.
	streamMutex sync.Mutex

	statsMutex       sync.Mutex
	lastStatsMessage string
}

// NewLogger constructs a new Logger.
func NewLogger(
	logDir string,
	logAccountChanges bool,
	logBalanceChanges bool,
	zapLogger *zap.Logger,
) *Logger {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}

	return &Logger{
		logDir:            logDir,
		logAccountChanges: logAccountChanges,
		logBalanceChanges: logBalanceChanges,
		zapLogger:         zapLogger,
	}
}

// LogSyncStatus prints status unless it is
// identical to the last one printed.
func (l *Logger) LogSyncStatus(ctx context.Context, status *syncer.Status) {
	statsMessage := fmt.Sprintf(
		"[STATS] Accounts: %d (Deactivated: %d) Reconciliations: %d Balance Refreshes: %d Blocks: %d",
		status.ActiveAccounts,
		status.DeactivatedAccounts,
		status.Reconciliations,
		status.BalanceRefreshes,
		status.Blocks,
	)

	l.statsMutex.Lock()
	defer l.statsMutex.Unlock()

	// Don't print out the same stats message twice.
	if statsMessage == l.lastStatsMessage {
		return
	}

	l.lastStatsMessage = statsMessage
	color.Cyan(statsMessage)
}

// AccountAdded is called by the syncer after an
// account is stored for the first time.
func (l *Logger) AccountAdded(ctx context.Context, account *storage.Account) error {
	l.zapLogger.Info(
		"account added",
		zap.String("address", account.Address),
		zap.String("name", account.Name),
		zap.String("balance", account.Balance),
	)

	return l.AccountStream(ctx, addEvent, account)
}

// AccountRestored is called by the syncer after a
// known account is rewritten.
func (l *Logger) AccountRestored(ctx context.Context, account *storage.Account) error {
	l.zapLogger.Info(
		"account restored",
		zap.String("address", account.Address),
		zap.String("name", account.Name),
	)

	return l.AccountStream(ctx, restoreEvent, account)
}

// AccountDeactivated is called by the syncer after an
// account is no longer reported by the node.
func (l *Logger) AccountDeactivated(ctx context.Context, account *storage.Account) error {
	l.zapLogger.Info("account deactivated", zap.String("address", account.Address))

	return l.AccountStream(ctx, deactivateEvent, account)
}

// AccountReactivated is called by the syncer after a
// deactivated account is reported again.
func (l *Logger) AccountReactivated(ctx context.Context, account *storage.Account) error {
	l.zapLogger.Info("account reactivated", zap.String("address", account.Address))

	return l.AccountStream(ctx, reactivateEvent, account)
}

// BalanceUpdated is called by the syncer after
// the balance of an account changed.
func (l *Logger) BalanceUpdated(
	ctx context.Context,
	account *storage.Account,
	previous string,
) error {
	l.zapLogger.Debug(
		"balance updated",
		zap.String("address", account.Address),
		zap.String("previous", previous),
		zap.String("balance", account.Balance),
	)

	return l.BalanceStream(ctx, account, previous)
}

// AccountStream writes an account event to
// the accountStreamFile.
func (l *Logger) AccountStream(
	ctx context.Context,
	verb string,
	account *storage.Account,
) error {
	if !l.logAccountChanges {
		return nil
	}

	return l.appendLine(accountStreamFile, fmt.Sprintf(
		"%s Account %s:%s Name: %s Balance: %s",
		verb,
		account.ID,
		account.Address,
		account.Name,
		account.Balance,
	))
}

// BalanceStream writes a balance change to
// the balanceStreamFile.
func (l *Logger) BalanceStream(
	ctx context.Context,
	account *storage.Account,
	previous string,
) error {
	if !l.logBalanceChanges {
		return nil
	}

	return l.appendLine(balanceStreamFile, fmt.Sprintf(
		"Account: %s Balance: %s -> %s",
		account.Address,
		previous,
		account.Balance,
	))
}

func (l *Logger) appendLine(fileName string, line string) error {
	l.streamMutex.Lock()
	defer l.streamMutex.Unlock()

	f, err := os.OpenFile(
		path.Join(l.logDir, fileName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY,
		os.FileMode(utils.DefaultFilePermissions),
	)
	if err != nil {
		return err
	}

	defer closeFile(f)

	_, err = f.WriteString(fmt.Sprintf("%s\n", line))
	return err
}

// closeFile closes a file and logs a failure.
func closeFile(f *os.File) {
	if err := f.Close(); err != nil {
		log.Printf("%s: unable to close file\n", err.Error())
	}
}
