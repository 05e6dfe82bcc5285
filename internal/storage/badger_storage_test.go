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
	"testing"

	"github.com/coinbase/rosetta-sdk-go/utils"
	"github.com/stretchr/testify/assert"
)

func TestDatabase(t *testing.T) {
	ctx := context.Background()

	newDir, err := utils.CreateTempDir()
	assert.NoError(t, err)
	defer utils.RemoveTempDir(newDir)

	database, err := NewBadgerStorage(ctx, newDir)
	assert.NoError(t, err)
	defer database.Close(ctx)

	t.Run("No key exists", func(t *testing.T) {
		exists, value, err := database.Get(ctx, []byte("hello"))
		assert.False(t, exists)
		assert.Nil(t, value)
		assert.NoError(t, err)
	})

	t.Run("Set key", func(t *testing.T) {
		err := database.Set(ctx, []byte("hello"), []byte("hola"))
		assert.NoError(t, err)
	})

	t.Run("Get key", func(t *testing.T) {
		exists, value, err := database.Get(ctx, []byte("hello"))
		assert.True(t, exists)
		assert.Equal(t, []byte("hola"), value)
		assert.NoError(t, err)
	})

	t.Run("Scan prefix", func(t *testing.T) {
		assert.NoError(t, database.Set(ctx, []byte("prefix/1"), []byte("a")))
		assert.NoError(t, database.Set(ctx, []byte("prefix/2"), []byte("b")))
		assert.NoError(t, database.Set(ctx, []byte("prefixed"), []byte("c")))

		values, err := database.Scan(ctx, []byte("prefix/"))
		assert.NoError(t, err)
		assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, values)
	})

	t.Run("Sequence", func(t *testing.T) {
		first, err := database.NextSequence(ctx, []byte("seq"))
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), first)

		second, err := database.NextSequence(ctx, []byte("seq"))
		assert.NoError(t, err)
		assert.Equal(t, uint64(2), second)

		other, err := database.NextSequence(ctx, []byte("other-seq"))
		assert.NoError(t, err)
		assert.Equal(t, uint64(1), other)
	})
}

func TestDatabaseTransaction(t *testing.T) {
	ctx := context.Background()

	newDir, err := utils.CreateTempDir()
	assert.NoError(t, err)
	defer utils.RemoveTempDir(newDir)

	database, err := NewBadgerStorage(ctx, newDir)
	assert.NoError(t, err)
	defer database.Close(ctx)

	t.Run("Set and get within a transaction", func(t *testing.T) {
		txn := database.NewDatabaseTransaction(ctx, true)
		assert.NoError(t, txn.Set(ctx, []byte("hello"), []byte("hola")))

		// Ensure tx does not affect db
		exists, value, err := database.Get(ctx, []byte("hello"))
		assert.False(t, exists)
		assert.Nil(t, value)
		assert.NoError(t, err)

		assert.NoError(t, txn.Commit(ctx))

		exists, value, err = database.Get(ctx, []byte("hello"))
		assert.True(t, exists)
		assert.Equal(t, []byte("hola"), value)
		assert.NoError(t, err)
	})

	t.Run("Discard transaction", func(t *testing.T) {
		txn := database.NewDatabaseTransaction(ctx, true)
		assert.NoError(t, txn.Set(ctx, []byte("hello"), []byte("world")))

		txn.Discard(ctx)

		exists, value, err := database.Get(ctx, []byte("hello"))
		assert.True(t, exists)
		assert.Equal(t, []byte("hola"), value)
		assert.NoError(t, err)
	})

	t.Run("Delete within a transaction", func(t *testing.T) {
		txn := database.NewDatabaseTransaction(ctx, true)
		assert.NoError(t, txn.Delete(ctx, []byte("hello")))
		assert.NoError(t, txn.Commit(ctx))

		exists, value, err := database.Get(ctx, []byte("hello"))
		assert.False(t, exists)
		assert.Nil(t, value)
		assert.NoError(t, err)
	})

	t.Run("Conflicting transactions", func(t *testing.T) {
		assert.NoError(t, database.Set(ctx, []byte("counter"), []byte("0")))

		txn1 := database.NewDatabaseTransaction(ctx, true)
		txn2 := database.NewDatabaseTransaction(ctx, true)

		_, _, err := txn1.Get(ctx, []byte("counter"))
		assert.NoError(t, err)
		_, _, err = txn2.Get(ctx, []byte("counter"))
		assert.NoError(t, err)

		assert.NoError(t, txn1.Set(ctx, []byte("counter"), []byte("1")))
		assert.NoError(t, txn2.Set(ctx, []byte("counter"), []byte("2")))

		assert.NoError(t, txn1.Commit(ctx))
		err = txn2.Commit(ctx)
		assert.True(t, errors.Is(err, ErrTransactionConflict))

		_, value, err := database.Get(ctx, []byte("counter"))
		assert.NoError(t, err)
		assert.Equal(t, []byte("1"), value)
	})
}
