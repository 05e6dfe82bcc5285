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
	"log"

	"github.com/spf13/cobra"
)

var (
	viewBalanceCmd = &cobra.Command{
		Use:   "view:balance",
		Short: "View the current balance of an address",
		Long: `Fetch the current balance of an address from the configured
node. Nothing is read from or written to the data directory.`,
		RunE: runViewBalanceCmd,
		Args: cobra.ExactArgs(1),
	}
)

func runViewBalanceCmd(cmd *cobra.Command, args []string) error {
	client, closeClient, err := newNodeClient(Context)
	if err != nil {
		return fmt.Errorf("%w: unable to connect to %s", err, Config.OnlineURL)
	}
	defer closeClient()

	balance, err := client.Balance(Context, args[0])
	if err != nil {
		return fmt.Errorf("%w: unable to fetch balance of %s", err, args[0])
	}

	log.Printf("Balance: %s\n", balance)
	return nil
}
