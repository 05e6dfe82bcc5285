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

package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v2"
)

const (
	// sequenceBandwidth is the number of identifiers
	// leased from badger at a time for each sequence.
	sequenceBandwidth = 100
)

var _ Database = (*BadgerStorage)(nil)

// BadgerStorage is a wrapper around Badger DB
// that implements the Database interface.
type BadgerStorage struct {
	db *badger.DB

	sequenceMutex sync.Mutex
	sequences     map[string]*badger.Sequence
}

// NewBadgerStorage creates a new BadgerStorage.
func NewBadgerStorage(ctx context.Context, dir string) (Database, error) {
	options := badger.DefaultOptions(dir)
	options.Logger = nil
	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open badger database", err)
	}

	return &BadgerStorage{
		db:        db,
		sequences: map[string]*badger.Sequence{},
	}, nil
}

// Close releases all leased sequences and closes the database.
func (b *BadgerStorage) Close(ctx context.Context) error {
	b.sequenceMutex.Lock()
	for key, seq := range b.sequences {
		if err := seq.Release(); err != nil {
			b.sequenceMutex.Unlock()
			return fmt.Errorf("%w: unable to release sequence %s", err, key)
		}
	}
	b.sequences = map[string]*badger.Sequence{}
	b.sequenceMutex.Unlock()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("%w: unable to close database", err)
	}

	return nil
}

// NextSequence returns the next value of the monotonically
// increasing sequence stored at key. The first value is 1.
func (b *BadgerStorage) NextSequence(ctx context.Context, key []byte) (uint64, error) {
	b.sequenceMutex.Lock()
	defer b.sequenceMutex.Unlock()

	seq, ok := b.sequences[string(key)]
	if !ok {
		var err error
		seq, err = b.db.GetSequence(key, sequenceBandwidth)
		if err != nil {
			return 0, fmt.Errorf("%w: unable to get sequence %s", err, string(key))
		}

		b.sequences[string(key)] = seq
	}

	for {
		next, err := seq.Next()
		if err != nil {
			return 0, fmt.Errorf("%w: unable to advance sequence %s", err, string(key))
		}

		// badger sequences start at 0, which we never hand out
		// so that an unset identifier is always distinguishable.
		if next > 0 {
			return next, nil
		}
	}
}

// BadgerTransaction is a wrapper around a Badger
// DB transaction that implements the DatabaseTransaction
// interface.
type BadgerTransaction struct {
	txn *badger.Txn
}

// NewDatabaseTransaction creates a new BadgerTransaction.
// If the transaction will not modify any values, pass
// in false for the write parameter (this allows for
// optimization within the Badger DB).
func (b *BadgerStorage) NewDatabaseTransaction(
	ctx context.Context,
	write bool,
) DatabaseTransaction {
	return &BadgerTransaction{
		txn: b.db.NewTransaction(write),
	}
}

// Commit attempts to commit and discard the transaction.
func (b *BadgerTransaction) Commit(context.Context) error {
	err := b.txn.Commit()
	if errors.Is(err, badger.ErrConflict) {
		return fmt.Errorf("%w: %s", ErrTransactionConflict, err.Error())
	}

	return err
}

// Discard discards an open transaction. All transactions
// must be either discarded or committed.
func (b *BadgerTransaction) Discard(context.Context) {
	b.txn.Discard()
}

// Set changes the value of the key to the value within a transaction.
func (b *BadgerTransaction) Set(
	ctx context.Context,
	key []byte,
	value []byte,
) error {
	return b.txn.Set(key, value)
}

// Get accesses the value of the key within a transaction.
func (b *BadgerTransaction) Get(
	ctx context.Context,
	key []byte,
) (bool, []byte, error) {
	item, err := b.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil, nil
	} else if err != nil {
		return false, nil, err
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		return false, nil, err
	}

	return true, value, nil
}

// Delete removes the key and its value within the transaction.
func (b *BadgerTransaction) Delete(ctx context.Context, key []byte) error {
	return b.txn.Delete(key)
}

// Scan retrieves all values stored under prefix within
// the transaction, in key order.
func (b *BadgerTransaction) Scan(
	ctx context.Context,
	prefix []byte,
) ([][]byte, error) {
	values := [][]byte{}
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := b.txn.NewIterator(opts)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		v, err := item.ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: unable to read key %s", err, string(item.Key()))
		}

		values = append(values, v)
	}

	return values, nil
}

// Set changes the value of the key to the value in its own transaction.
func (b *BadgerStorage) Set(
	ctx context.Context,
	key []byte,
	value []byte,
) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Get fetches the value of a key in its own transaction.
func (b *BadgerStorage) Get(
	ctx context.Context,
	key []byte,
) (bool, []byte, error) {
	transaction := b.NewDatabaseTransaction(ctx, false)
	defer transaction.Discard(ctx)

	return transaction.Get(ctx, key)
}

// Scan fetches all values stored under prefix in its own transaction.
func (b *BadgerStorage) Scan(
	ctx context.Context,
	prefix []byte,
) ([][]byte, error) {
	transaction := b.NewDatabaseTransaction(ctx, false)
	defer transaction.Discard(ctx)

	return transaction.Scan(ctx, prefix)
}
