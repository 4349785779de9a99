package chainvalidator

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/merkle"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/pow"
	"github.com/pkg/errors"
)

func (cv *ChainValidator) validateHeader(block, previous *externalapi.DomainBlock) error {
	err := checkBlockHashes(block)
	if err != nil {
		return err
	}

	if !block.Header.PreviousHash.Equal(previous.Hash) {
		return errors.Wrapf(ruleerrors.ErrInvalidHashLinkage,
			"previous hash is %s while the previous block is %s", block.Header.PreviousHash, previous.Hash)
	}

	return cv.checkProducer(block)
}

func checkBlockHashes(block *externalapi.DomainBlock) error {
	calculatedMerkleRoot := merkle.CalculateHashMerkleRoot(block.Transactions)
	if !block.Header.MerkleRoot.Equal(calculatedMerkleRoot) {
		return errors.Wrapf(ruleerrors.ErrBadMerkleRoot, "block merkle root is invalid - block "+
			"header indicates %s, but calculated value is %s",
			block.Header.MerkleRoot, calculatedMerkleRoot)
	}

	calculatedHash := consensushashing.BlockHash(block)
	if !block.Hash.Equal(calculatedHash) {
		return errors.Wrapf(ruleerrors.ErrBadBlockHash, "stored hash %s does not match calculated hash %s",
			block.Hash, calculatedHash)
	}
	return nil
}

// checkProducer checks that block was produced under the rules of the
// discipline it is stamped with. Proof-of-work blocks must meet the
// difficulty. Stake-produced blocks must name their producer, and meet the
// difficulty only when EnforceDifficultyOnAllBlocks is set.
func (cv *ChainValidator) checkProducer(block *externalapi.DomainBlock) error {
	producer := block.Header.Producer
	switch producer.Kind {
	case externalapi.ProducerKindProofOfWork:
		return cv.checkDifficulty(block)
	case externalapi.ProducerKindProofOfStake, externalapi.ProducerKindDelegatedProofOfStake:
		if producer.Identity.IsZero() {
			return errors.Wrapf(ruleerrors.ErrMissingProducerStamp, "%s block names no producer", producer.Kind)
		}
		if cv.params.EnforceDifficultyOnAllBlocks {
			return cv.checkDifficulty(block)
		}
		return nil
	default:
		return errors.Wrapf(ruleerrors.ErrMissingProducerStamp, "block is stamped with producer kind %s", producer.Kind)
	}
}

func (cv *ChainValidator) checkDifficulty(block *externalapi.DomainBlock) error {
	if !pow.CheckProofOfWork(block.Hash, cv.params.Difficulty) {
		return errors.Wrapf(ruleerrors.ErrDifficultyNotMet, "hash %s does not meet difficulty %d",
			block.Hash, cv.params.Difficulty)
	}
	return nil
}
