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
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/coinbase/rosetta-accounts/configuration"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:              "rosetta-accounts",
		Short:            "Keep a local account list in sync with a blockchain node",
		PersistentPreRun: rootPreRun,
	}

	configurationFile string

	// Config is the populated *configuration.Configuration from
	// the configurationFile. If none is provided, this is set
	// to the default settings.
	Config *configuration.Configuration

	// Context is the context to use for this invocation of the cli.
	Context context.Context

	// SignalReceived is set to true when a signal causes us to exit. This makes
	// determining the error message to show on exit much more easy.
	SignalReceived = false
)

// Execute handles all invocations of the
// rosetta-accounts cmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configurationFile,
		"configuration-file",
		"",
		`Configuration file that provides connection and sync settings.
If you would like to generate a starter configuration file (populated
with the defaults), run rosetta-accounts configuration:create.

Any fields not populated in the configuration file will be populated with
default values.`,
	)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(viewAccountsCmd)
	rootCmd.AddCommand(viewAccountCmd)
	rootCmd.AddCommand(viewBalanceCmd)
	rootCmd.AddCommand(configurationCreateCmd)
	rootCmd.AddCommand(configurationValidateCmd)
}

func rootPreRun(*cobra.Command, []string) {
	Context = context.Background()

	if len(configurationFile) == 0 {
		Config = configuration.DefaultConfiguration()
		return
	}

	config, err := configuration.LoadConfiguration(configurationFile)
	if err != nil {
		log.Fatalf("%s: unable to load configuration", err.Error())
	}

	Config = config
}

// handleSignals cancels every listener on
// SIGINT or SIGTERM.
func handleSignals(listeners []context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	color.Red("Received signal: %s", sig)
	SignalReceived = true
	for _, listener := range listeners {
		listener()
	}
}
