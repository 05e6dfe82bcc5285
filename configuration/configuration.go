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

package configuration

import (
	"errors"
	"fmt"
	"log"

	"github.com/coinbase/rosetta-sdk-go/asserter"
	"github.com/coinbase/rosetta-sdk-go/types"
	"github.com/coinbase/rosetta-sdk-go/utils"
	"github.com/jinzhu/copier"
)

var (
	// ErrUnknownBackend is returned when the backend
	// is neither ethereum nor rosetta.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrInvalidLogSettings is returned for an unknown
	// log level or encoding.
	ErrInvalidLogSettings = errors.New("invalid log settings")

	// ErrMissingAccountsFile is returned when the rosetta
	// backend has no accounts file.
	ErrMissingAccountsFile = errors.New("missing accounts file")
)

// DefaultRosettaConfiguration returns the default
// *RosettaConfiguration.
func DefaultRosettaConfiguration() *RosettaConfiguration {
	return &RosettaConfiguration{
		Network:          DefaultNetwork,
		Currency:         DefaultCurrency,
		AccountsFile:     DefaultAccountsFile,
		MaxRetries:       DefaultMaxRetries,
		RetryElapsedTime: DefaultRetryElapsedTime,
	}
}

// DefaultConfiguration returns a *Configuration for
// the ethereum backend.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		Backend:                DefaultBackend,
		OnlineURL:              DefaultEthereumURL,
		HTTPTimeout:            DefaultTimeout,
		ReconciliationInterval: DefaultReconciliationInterval,
		BlockPollInterval:      DefaultBlockPollInterval,
		BalanceConcurrency:     DefaultBalanceConcurrency,
		LogLevel:               DefaultLogLevel,
		LogEncoding:            DefaultLogEncoding,
	}
}

func populateRosettaMissingFields(
	rosettaConfig *RosettaConfiguration,
) (*RosettaConfiguration, error) {
	if rosettaConfig == nil {
		rosettaConfig = &RosettaConfiguration{}
	}

	// Defaults are copied so a loaded configuration
	// never aliases DefaultNetwork or DefaultCurrency.
	if rosettaConfig.Network == nil {
		rosettaConfig.Network = &types.NetworkIdentifier{}
		if err := copier.CopyWithOption(
			rosettaConfig.Network,
			DefaultNetwork,
			copier.Option{DeepCopy: true, IgnoreEmpty: true},
		); err != nil {
			return nil, fmt.Errorf("%w: unable to copy default network", err)
		}
	}

	if rosettaConfig.Currency == nil {
		rosettaConfig.Currency = &types.Currency{}
		if err := copier.CopyWithOption(
			rosettaConfig.Currency,
			DefaultCurrency,
			copier.Option{DeepCopy: true, IgnoreEmpty: true},
		); err != nil {
			return nil, fmt.Errorf("%w: unable to copy default currency", err)
		}
	}

	if len(rosettaConfig.AccountsFile) == 0 {
		rosettaConfig.AccountsFile = DefaultAccountsFile
	}

	if rosettaConfig.MaxRetries == 0 {
		rosettaConfig.MaxRetries = DefaultMaxRetries
	}

	if rosettaConfig.RetryElapsedTime == 0 {
		rosettaConfig.RetryElapsedTime = DefaultRetryElapsedTime
	}

	return rosettaConfig, nil
}

func populateMissingFields(config *Configuration) error {
	if len(config.Backend) == 0 {
		config.Backend = DefaultBackend
	}

	if len(config.OnlineURL) == 0 {
		config.OnlineURL = DefaultEthereumURL
		if config.Backend == RosettaBackend {
			config.OnlineURL = DefaultRosettaURL
		}
	}

	if config.HTTPTimeout == 0 {
		config.HTTPTimeout = DefaultTimeout
	}

	if config.ReconciliationInterval == 0 {
		config.ReconciliationInterval = DefaultReconciliationInterval
	}

	if config.BlockPollInterval == 0 {
		config.BlockPollInterval = DefaultBlockPollInterval
	}

	if config.BalanceConcurrency <= 0 {
		config.BalanceConcurrency = DefaultBalanceConcurrency
	}

	if len(config.LogLevel) == 0 {
		config.LogLevel = DefaultLogLevel
	}

	if len(config.LogEncoding) == 0 {
		config.LogEncoding = DefaultLogEncoding
	}

	if config.EnableRequestInstrumentation && len(config.OtelCollectorURL) == 0 {
		config.OtelCollectorURL = DefaultOtelCollectorURL
	}

	if config.Backend == RosettaBackend {
		rosettaConfig, err := populateRosettaMissingFields(config.Rosetta)
		if err != nil {
			return err
		}

		config.Rosetta = rosettaConfig
	}

	return nil
}

func assertRosettaConfiguration(config *RosettaConfiguration) error {
	if err := asserter.NetworkIdentifier(config.Network); err != nil {
		return fmt.Errorf("%w: invalid network identifier", err)
	}

	if err := asserter.Amount(&types.Amount{Value: "0", Currency: config.Currency}); err != nil {
		return fmt.Errorf("%w: invalid currency", err)
	}

	if len(config.AccountsFile) == 0 {
		return ErrMissingAccountsFile
	}

	return nil
}

func assertConfiguration(config *Configuration) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %s", ErrInvalidLogSettings, config.LogLevel)
	}

	switch config.LogEncoding {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log encoding %s", ErrInvalidLogSettings, config.LogEncoding)
	}

	switch config.Backend {
	case EthereumBackend:
		return nil
	case RosettaBackend:
		if err := assertRosettaConfiguration(config.Rosetta); err != nil {
			return fmt.Errorf("%w: invalid rosetta configuration", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, config.Backend)
	}
}

// LoadConfiguration returns a parsed and asserted Configuration.
func LoadConfiguration(filePath string) (*Configuration, error) {
	var config Configuration
	if err := utils.LoadAndParse(filePath, &config); err != nil {
		return nil, fmt.Errorf("%w: unable to open configuration file", err)
	}

	if err := populateMissingFields(&config); err != nil {
		return nil, fmt.Errorf("%w: unable to populate configuration", err)
	}

	if err := assertConfiguration(&config); err != nil {
		return nil, fmt.Errorf("%w: invalid configuration", err)
	}

	log.Printf(
		"loaded configuration: %s\n",
		types.PrettyPrintStruct(config),
	)

	return &config, nil
}
