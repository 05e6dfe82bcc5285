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
	"fmt"
	"io"
	"os"

	"github.com/coinbase/rosetta-accounts/internal/accounts"
	"github.com/coinbase/rosetta-accounts/internal/storage"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	viewAccountsCmd = &cobra.Command{
		Use:   "view:accounts",
		Short: "View the local account list",
		Long: `Print every account stored in the data directory. Deactivated
accounts (no longer reported by the node) are only printed when --all
is provided.`,
		RunE: runViewAccountsCmd,
		Args: cobra.NoArgs,
	}

	// includeDeactivated shows deactivated accounts.
	includeDeactivated bool
)

func init() {
	viewAccountsCmd.Flags().BoolVar(
		&includeDeactivated,
		"all",
		false,
		"include deactivated accounts",
	)
	viewAccountCmd.Flags().BoolVar(
		&includeDeactivated,
		"all",
		false,
		"include deactivated accounts",
	)
}

func runViewAccountsCmd(cmd *cobra.Command, args []string) error {
	collection, closeCollection, err := openExistingCollection(Context)
	if err != nil {
		return err
	}
	defer closeCollection()

	find := collection.Find
	if includeDeactivated {
		find = collection.FindAll
	}

	accts, err := find(Context, accounts.All())
	if err != nil {
		return fmt.Errorf("%w: unable to load accounts", err)
	}

	printAccounts(os.Stdout, accts)
	return nil
}

// printAccounts renders accts as a table.
func printAccounts(w io.Writer, accts []*storage.Account) {
	table := tablewriter.NewWriter(w)
	table.SetRowLine(true)
	table.SetRowSeparator("-")
	table.SetHeader([]string{"ID", "Name", "Address", "Balance", "Status"})
	for _, account := range accts {
		status := "active"
		if account.Deactivated {
			status = "deactivated"
		}

		table.Append([]string{
			account.ID,
			account.Name,
			account.Address,
			account.Balance,
			status,
		})
	}

	table.Render()
}
