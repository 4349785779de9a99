package ruleerrors

import (
	"fmt"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// These constants are used to identify a specific RuleError.
var (
	// ErrInvalidSignature indicates a transaction signature does not verify
	// against the sender's public identity.
	ErrInvalidSignature = newRuleError("ErrInvalidSignature")

	// ErrInsufficientInputValue indicates the resolved inputs of a
	// transaction are worth less than the minimum transaction value.
	ErrInsufficientInputValue = newRuleError("ErrInsufficientInputValue")

	// ErrSpendTooHigh indicates a transaction is attempting to spend more
	// value than the sum of all of its inputs.
	ErrSpendTooHigh = newRuleError("ErrSpendTooHigh")

	// ErrMissingReferencedOutput indicates an input references an output
	// that is either unknown or already spent.
	ErrMissingReferencedOutput = newRuleError("ErrMissingReferencedOutput")

	// ErrAmountMismatch indicates the inputs and outputs of a transaction
	// carry different total values.
	ErrAmountMismatch = newRuleError("ErrAmountMismatch")

	// ErrInvalidHashLinkage indicates a block's previous hash is not the
	// hash of the block before it.
	ErrInvalidHashLinkage = newRuleError("ErrInvalidHashLinkage")

	// ErrBadBlockHash indicates the stored block hash does not match the
	// hash calculated from the header.
	ErrBadBlockHash = newRuleError("ErrBadBlockHash")

	// ErrBadMerkleRoot indicates the calculated merkle root does not match
	// the expected value.
	ErrBadMerkleRoot = newRuleError("ErrBadMerkleRoot")

	// ErrDifficultyNotMet indicates the block hash does not start with the
	// required number of target characters.
	ErrDifficultyNotMet = newRuleError("ErrDifficultyNotMet")

	// ErrWrongOutputOwner indicates the outputs of a transaction are not
	// owned by its recipient and sender, in that order.
	ErrWrongOutputOwner = newRuleError("ErrWrongOutputOwner")

	// ErrMissingProducerStamp indicates a stake-produced block carries no
	// producer identity.
	ErrMissingProducerStamp = newRuleError("ErrMissingProducerStamp")

	// ErrUnknownContract indicates a transaction payload addresses a
	// contract that was never deployed.
	ErrUnknownContract = newRuleError("ErrUnknownContract")

	// ErrNoEligibleValidator indicates no candidate holds any stake.
	ErrNoEligibleValidator = newRuleError("ErrNoEligibleValidator")

	// ErrInsufficientStake indicates an identity attempts to unstake or vote
	// with more stake than it holds.
	ErrInsufficientStake = newRuleError("ErrInsufficientStake")

	// ErrNonceSpaceExhausted indicates the proof-of-work search ran out of
	// nonces without finding a hash that meets the difficulty.
	ErrNonceSpaceExhausted = newRuleError("ErrNonceSpaceExhausted")

	// ErrNoGenesis indicates an operation that requires a chain was called
	// before the genesis block was created.
	ErrNoGenesis = newRuleError("ErrNoGenesis")

	// ErrGenesisAlreadyExists indicates a second genesis block was requested.
	ErrGenesisAlreadyExists = newRuleError("ErrGenesisAlreadyExists")

	// ErrInsufficientBalance indicates a token or coin balance is lower than
	// the requested amount.
	ErrInsufficientBalance = newRuleError("ErrInsufficientBalance")

	// ErrInsufficientAllowance indicates a spender's approved allowance is
	// lower than the requested amount.
	ErrInsufficientAllowance = newRuleError("ErrInsufficientAllowance")
)

// RuleError identifies a rule violation. It is used to indicate that
// processing of a block or transaction failed due to one of the many validation
// rules. The caller can use type assertions to determine if a failure was
// specifically due to a rule violation.
type RuleError struct {
	message string
	inner   error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.inner != nil {
		return e.message + ": " + e.inner.Error()
	}
	return e.message
}

// Unwrap satisfies the errors.Unwrap interface
func (e RuleError) Unwrap() error {
	return e.inner
}

// Cause satisfies the github.com/pkg/errors.Cause interface
func (e RuleError) Cause() error {
	return e.inner
}

func newRuleError(message string) RuleError {
	return RuleError{message: message, inner: nil}
}

// ErrMissingTxOut indicates a transaction output referenced by an input
// either does not exist or has already been spent.
type ErrMissingTxOut struct {
	MissingOutputIDs []*externalapi.DomainHash
}

func (e ErrMissingTxOut) Error() string {
	return fmt.Sprintf("missing the following outputs: %v", e.MissingOutputIDs)
}

// Is lets errors.Is match ErrMissingTxOut against ErrMissingReferencedOutput
func (e ErrMissingTxOut) Is(target error) bool {
	return target == ErrMissingReferencedOutput
}

// NewErrMissingTxOut Creates a new ErrMissingTxOut error wrapped in a RuleError
func NewErrMissingTxOut(missingOutputIDs []*externalapi.DomainHash) error {
	return errors.WithStack(RuleError{
		message: "ErrMissingTxOut",
		inner:   ErrMissingTxOut{missingOutputIDs},
	})
}

// ErrInvalidBlock indicates that a block at a specific height of the chain
// failed validation. It wraps the violated rule.
type ErrInvalidBlock struct {
	Height    uint64
	BlockHash *externalapi.DomainHash
	inner     error
}

func (e ErrInvalidBlock) Error() string {
	return fmt.Sprintf("block %s at height %d: %s", e.BlockHash, e.Height, e.inner)
}

// Unwrap satisfies the errors.Unwrap interface
func (e ErrInvalidBlock) Unwrap() error {
	return e.inner
}

// NewErrInvalidBlock wraps the given rule violation with the location of the
// offending block.
func NewErrInvalidBlock(height uint64, blockHash *externalapi.DomainHash, inner error) error {
	return errors.WithStack(ErrInvalidBlock{
		Height:    height,
		BlockHash: blockHash,
		inner:     inner,
	})
}
