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
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/coinbase/rosetta-accounts/configuration"
	"github.com/coinbase/rosetta-accounts/internal/accounts"
	"github.com/coinbase/rosetta-accounts/internal/storage"

	"github.com/coinbase/rosetta-sdk-go/utils"
	"github.com/stretchr/testify/assert"
)

func TestPrintAccounts(t *testing.T) {
	var buf bytes.Buffer
	printAccounts(&buf, []*storage.Account{
		{ID: "1", Address: "addr1", Balance: "10", Name: "Main account (Coinbase)"},
		{ID: "2", Address: "addr2", Name: "Account 1", Deactivated: true},
	})

	out := buf.String()
	assert.Contains(t, out, "ADDRESS")
	assert.Contains(t, out, "addr1")
	assert.Contains(t, out, "Main account (Coinbase)")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "deactivated")
}

func TestDataDirectory(t *testing.T) {
	ctx := context.Background()

	t.Run("temporary", func(t *testing.T) {
		Config = configuration.DefaultConfiguration()

		dir, cleanup, err := dataDirectory()
		assert.NoError(t, err)

		_, err = os.Stat(dir)
		assert.NoError(t, err)

		cleanup()
		_, err = os.Stat(dir)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("missing for views", func(t *testing.T) {
		Config = configuration.DefaultConfiguration()

		collection, closeCollection, err := openExistingCollection(ctx)
		assert.True(t, errors.Is(err, ErrMissingDataDirectory))
		assert.Nil(t, collection)
		assert.Nil(t, closeCollection)
	})

	t.Run("persisted", func(t *testing.T) {
		dir, err := utils.CreateTempDir()
		assert.NoError(t, err)
		defer utils.RemoveTempDir(dir)

		Config = configuration.DefaultConfiguration()
		Config.DataDirectory = dir

		dataDir, cleanup, err := dataDirectory()
		assert.NoError(t, err)
		defer cleanup()

		collection, closeCollection, err := openCollection(ctx, dataDir)
		assert.NoError(t, err)

		_, err = collection.Insert(ctx, &storage.Account{
			Type:    storage.AccountType,
			Address: "addr1",
			Name:    "Account 1",
		})
		assert.NoError(t, err)
		closeCollection()

		collection, closeCollection, err = openExistingCollection(ctx)
		assert.NoError(t, err)
		defer closeCollection()

		account, err := collection.FindOne(ctx, accounts.ByAddress("addr1"))
		assert.NoError(t, err)
		assert.Equal(t, "Account 1", account.Name)
	})
}
