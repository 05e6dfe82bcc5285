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
	"errors"
	"fmt"
	"log"

	"github.com/coinbase/rosetta-accounts/internal/accounts"
	"github.com/coinbase/rosetta-accounts/internal/storage"

	"github.com/coinbase/rosetta-sdk-go/types"
	"github.com/spf13/cobra"
)

var (
	viewAccountCmd = &cobra.Command{
		Use:   "view:account",
		Short: "View a local account",
		Long: `While debugging, it is often useful to inspect how an address
is stored locally. For example, you could run view:account 0xabc --all
to check whether 0xabc was deactivated.`,
		RunE: runViewAccountCmd,
		Args: cobra.ExactArgs(1),
	}
)

func runViewAccountCmd(cmd *cobra.Command, args []string) error {
	collection, closeCollection, err := openExistingCollection(Context)
	if err != nil {
		return err
	}
	defer closeCollection()

	findOne := collection.FindOne
	if includeDeactivated {
		findOne = collection.FindOneAll
	}

	account, err := findOne(Context, accounts.ByAddress(args[0]))
	if errors.Is(err, storage.ErrAccountNotFound) {
		return fmt.Errorf("%w: %s", err, args[0])
	}
	if err != nil {
		return fmt.Errorf("%w: unable to load account %s", err, args[0])
	}

	log.Printf("Account: %s\n", types.PrettyPrintStruct(account))
	return nil
}
