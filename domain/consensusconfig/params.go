package consensusconfig

import (
	"runtime"

	"github.com/ledgersim/ledgersim/domain/consensus/utils/constants"
	"github.com/pkg/errors"
)

// Params defines the consensus rules of a ledger.
type Params struct {
	// Name is a human-readable identifier for the parameter set.
	Name string

	// Difficulty is the number of leading target characters a
	// proof-of-work block hash must have in its hex encoding.
	Difficulty int

	// MinimumTransactionValue is the floor, in atoms, for the resolved
	// input value of a transaction.
	MinimumTransactionValue uint64

	// EnforceDifficultyOnAllBlocks applies the difficulty predicate to
	// stake-produced blocks as well as proof-of-work blocks during chain
	// validation.
	EnforceDifficultyOnAllBlocks bool

	// PowWorkers is the number of goroutines scanning disjoint nonce
	// ranges while solving a block.
	PowWorkers int

	// MaxNonce bounds the nonce search. Zero means the whole uint64 range.
	MaxNonce uint64

	// DelegateCount is the number of top-voted delegates elected to
	// produce delegated proof-of-stake blocks.
	DelegateCount int

	// InitialSupply is the value, in atoms, minted by the genesis
	// transaction.
	InitialSupply uint64
}

// DefaultParams are the parameters used when nothing is configured.
var DefaultParams = Params{
	Name:                         "default",
	Difficulty:                   4,
	MinimumTransactionValue:      constants.AtomsPerCoin / 10,
	EnforceDifficultyOnAllBlocks: false,
	PowWorkers:                   runtime.NumCPU(),
	MaxNonce:                     0,
	DelegateCount:                1,
	InitialSupply:                1000 * constants.AtomsPerCoin,
}

// SimnetParams use a trivial difficulty and are meant for tests.
var SimnetParams = Params{
	Name:                         "simnet",
	Difficulty:                   1,
	MinimumTransactionValue:      constants.AtomsPerCoin / 10,
	EnforceDifficultyOnAllBlocks: false,
	PowWorkers:                   2,
	MaxNonce:                     1 << 20,
	DelegateCount:                1,
	InitialSupply:                1000 * constants.AtomsPerCoin,
}

// Validate returns an error if params cannot describe a working ledger.
func (p *Params) Validate() error {
	if p.Difficulty < 0 || p.Difficulty > constants.MaxDifficulty {
		return errors.Errorf("difficulty must be between 0 and %d, got %d", constants.MaxDifficulty, p.Difficulty)
	}
	if p.PowWorkers < 1 {
		return errors.Errorf("at least one proof-of-work worker is required, got %d", p.PowWorkers)
	}
	if p.DelegateCount < 1 {
		return errors.Errorf("at least one delegate must be elected, got %d", p.DelegateCount)
	}
	if p.InitialSupply > constants.MaxAtoms {
		return errors.Errorf("initial supply of %d atoms exceeds the maximum of %d", p.InitialSupply, uint64(constants.MaxAtoms))
	}
	return nil
}
