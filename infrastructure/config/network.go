package config

import (
	"encoding/json"
	"os"

	"github.com/ledgersim/ledgersim/domain/consensusconfig"
	"github.com/pkg/errors"
)

// NetworkFlags holds the selection of the consensus parameter set
type NetworkFlags struct {
	Simnet             bool   `long:"simnet" description:"Use the low difficulty simulation parameters"`
	OverrideParamsFile string `long:"override-params-file" description:"JSON file overriding individual consensus parameters"`

	ActiveParams *consensusconfig.Params
}

type overrideParamsConfig struct {
	Difficulty                   *int    `json:"difficulty"`
	MinimumTransactionValue      *uint64 `json:"minimumTransactionValue"`
	EnforceDifficultyOnAllBlocks *bool   `json:"enforceDifficultyOnAllBlocks"`
	PowWorkers                   *int    `json:"powWorkers"`
	MaxNonce                     *uint64 `json:"maxNonce"`
	DelegateCount                *int    `json:"delegateCount"`
	InitialSupply                *uint64 `json:"initialSupply"`
}

// ResolveNetwork selects the active params and applies the override file,
// if any. ActiveParams always points to a copy, so the package level param
// sets are never modified.
func (networkFlags *NetworkFlags) ResolveNetwork() error {
	params := consensusconfig.DefaultParams
	if networkFlags.Simnet {
		params = consensusconfig.SimnetParams
	}
	networkFlags.ActiveParams = &params

	return networkFlags.overrideParams()
}

// NetParams returns the ActiveParams
func (networkFlags *NetworkFlags) NetParams() *consensusconfig.Params {
	return networkFlags.ActiveParams
}

func (networkFlags *NetworkFlags) overrideParams() error {
	if networkFlags.OverrideParamsFile == "" {
		return nil
	}

	overrideParamsFile, err := os.Open(networkFlags.OverrideParamsFile)
	if err != nil {
		return errors.WithStack(err)
	}
	defer overrideParamsFile.Close()

	decoder := json.NewDecoder(overrideParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "failed parsing %s", networkFlags.OverrideParamsFile)
	}

	params := networkFlags.ActiveParams
	params.Name += "-override"

	if config.Difficulty != nil {
		params.Difficulty = *config.Difficulty
	}

	if config.MinimumTransactionValue != nil {
		params.MinimumTransactionValue = *config.MinimumTransactionValue
	}

	if config.EnforceDifficultyOnAllBlocks != nil {
		params.EnforceDifficultyOnAllBlocks = *config.EnforceDifficultyOnAllBlocks
	}

	if config.PowWorkers != nil {
		params.PowWorkers = *config.PowWorkers
	}

	if config.MaxNonce != nil {
		params.MaxNonce = *config.MaxNonce
	}

	if config.DelegateCount != nil {
		params.DelegateCount = *config.DelegateCount
	}

	if config.InitialSupply != nil {
		params.InitialSupply = *config.InitialSupply
	}

	return nil
}
