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
	"io/ioutil"
	"os"
	"testing"

	"github.com/coinbase/rosetta-sdk-go/types"
	"github.com/coinbase/rosetta-sdk-go/utils"
	"github.com/stretchr/testify/assert"
)

var (
	whackyConfig = &Configuration{
		Backend:                RosettaBackend,
		OnlineURL:              "http://hasudhasjkdk",
		DataDirectory:          "/tmp/accounts",
		HTTPTimeout:            21,
		ReconciliationInterval: 500,
		BlockPollInterval:      12000,
		BalanceConcurrency:     3,
		LogLevel:               "debug",
		LogEncoding:            "json",
		LogAccountChanges:      true,
		LogBalanceChanges:      true,

		EnableRequestInstrumentation: true,
		OtelCollectorURL:             "collector:4317",

		Rosetta: &RosettaConfiguration{
			Network: &types.NetworkIdentifier{
				Blockchain: "sweet",
				Network:    "sweeter",
			},
			Currency: &types.Currency{
				Symbol:   "FIRE",
				Decimals: 100,
			},
			AccountsFile:     "fire.json",
			Coinbase:         "addr1",
			MaxRetries:       2,
			RetryElapsedTime: 9,
		},
	}
	defaultRosettaConfig = func() *Configuration {
		config := DefaultConfiguration()
		config.Backend = RosettaBackend
		config.OnlineURL = DefaultRosettaURL
		config.Rosetta = DefaultRosettaConfiguration()
		return config
	}()
	invalidBackend = &Configuration{
		Backend: "bitcoin",
	}
	invalidLogLevel = &Configuration{
		LogLevel: "verbose",
	}
	invalidLogEncoding = &Configuration{
		LogEncoding: "xml",
	}
	invalidNetwork = &Configuration{
		Backend: RosettaBackend,
		Rosetta: &RosettaConfiguration{
			Network: &types.NetworkIdentifier{
				Blockchain: "?",
			},
		},
	}
	invalidCurrency = &Configuration{
		Backend: RosettaBackend,
		Rosetta: &RosettaConfiguration{
			Currency: &types.Currency{
				Decimals: 12,
			},
		},
	}
)

func TestLoadConfiguration(t *testing.T) {
	var tests = map[string]struct {
		provided *Configuration
		expected *Configuration

		err error
	}{
		"nothing provided": {
			provided: &Configuration{},
			expected: DefaultConfiguration(),
		},
		"no overwrite": {
			provided: whackyConfig,
			expected: whackyConfig,
		},
		"instrumentation defaults": {
			provided: &Configuration{
				EnableRequestInstrumentation: true,
			},
			expected: func() *Configuration {
				config := DefaultConfiguration()
				config.EnableRequestInstrumentation = true
				config.OtelCollectorURL = DefaultOtelCollectorURL
				return config
			}(),
		},
		"rosetta defaults": {
			provided: &Configuration{
				Backend: RosettaBackend,
			},
			expected: defaultRosettaConfig,
		},
		"overwrite missing rosetta": {
			provided: &Configuration{
				Backend: RosettaBackend,
				Rosetta: &RosettaConfiguration{},
			},
			expected: defaultRosettaConfig,
		},
		"invalid backend": {
			provided: invalidBackend,
			err:      ErrUnknownBackend,
		},
		"invalid log level": {
			provided: invalidLogLevel,
			err:      ErrInvalidLogSettings,
		},
		"invalid log encoding": {
			provided: invalidLogEncoding,
			err:      ErrInvalidLogSettings,
		},
		"invalid network": {
			provided: invalidNetwork,
			err:      errors.New("invalid network identifier"),
		},
		"invalid currency": {
			provided: invalidCurrency,
			err:      errors.New("invalid currency"),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			// Write configuration file to tempdir
			tmpfile, err := ioutil.TempFile("", "test.json")
			assert.NoError(t, err)
			defer os.Remove(tmpfile.Name())

			err = utils.SerializeAndWrite(tmpfile.Name(), test.provided)
			assert.NoError(t, err)

			// Check if expected fields populated
			config, err := LoadConfiguration(tmpfile.Name())
			if test.err != nil {
				assert.Error(t, err)
				if errors.Is(test.err, ErrUnknownBackend) || errors.Is(test.err, ErrInvalidLogSettings) {
					assert.True(t, errors.Is(err, test.err))
				} else {
					assert.Contains(t, err.Error(), test.err.Error())
				}
				assert.Nil(t, config)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, test.expected, config)
			}
			assert.NoError(t, tmpfile.Close())
		})
	}
}

func TestLoadConfiguration_MissingFile(t *testing.T) {
	config, err := LoadConfiguration("/does/not/exist.json")
	assert.Error(t, err)
	assert.Nil(t, config)
}

func TestPopulateRosettaMissingFields_CopiesDefaults(t *testing.T) {
	rosettaConfig, err := populateRosettaMissingFields(nil)
	assert.NoError(t, err)
	assert.Equal(t, DefaultNetwork, rosettaConfig.Network)
	assert.Equal(t, DefaultCurrency, rosettaConfig.Currency)
	assert.False(t, rosettaConfig.Network == DefaultNetwork)
	assert.False(t, rosettaConfig.Currency == DefaultCurrency)

	rosettaConfig.Network.Network = "Mainnet"
	rosettaConfig.Currency.Decimals = 6
	assert.Equal(t, "Ropsten", DefaultNetwork.Network)
	assert.Equal(t, int32(18), DefaultCurrency.Decimals)

	provided := &RosettaConfiguration{
		Network: &types.NetworkIdentifier{Blockchain: "sweet", Network: "sweeter"},
	}
	rosettaConfig, err = populateRosettaMissingFields(provided)
	assert.NoError(t, err)
	assert.True(t, rosettaConfig == provided)
	assert.Equal(t, "sweeter", rosettaConfig.Network.Network)
	assert.Equal(t, DefaultCurrency, rosettaConfig.Currency)
}
