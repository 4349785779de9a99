package consensusstrategy

import (
	"context"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/blockbuilder"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// SelectValidator returns the candidate holding the strictly greatest stake.
// On a tie the candidate that comes first wins. Candidates without stake are
// never selected.
func SelectValidator(candidates []*externalapi.StakeCandidate) (externalapi.PublicIdentity, error) {
	var validator *externalapi.StakeCandidate
	for _, candidate := range candidates {
		if candidate.Stake == 0 {
			continue
		}
		if validator == nil || candidate.Stake > validator.Stake {
			validator = candidate
		}
	}
	if validator == nil {
		return externalapi.PublicIdentity{}, errors.Wrapf(ruleerrors.ErrNoEligibleValidator,
			"none of %d candidates holds any stake", len(candidates))
	}
	return validator.Identity, nil
}

type proofOfStake struct {
	stakeView  model.StakeView
	candidates []externalapi.PublicIdentity
}

// NewProofOfStake returns a strategy that stamps blocks with whichever of
// candidates holds the most stake in stakeView at stamping time
func NewProofOfStake(stakeView model.StakeView, candidates []externalapi.PublicIdentity) model.ConsensusStrategy {
	return &proofOfStake{
		stakeView:  stakeView,
		candidates: candidates,
	}
}

func (p *proofOfStake) Name() string {
	return externalapi.ProducerKindProofOfStake.String()
}

func (p *proofOfStake) StampBlock(_ context.Context, block *externalapi.DomainBlock, height uint64) error {
	candidates := make([]*externalapi.StakeCandidate, len(p.candidates))
	for i, identity := range p.candidates {
		candidates[i] = &externalapi.StakeCandidate{Identity: identity, Stake: p.stakeView.StakeOf(identity)}
	}

	validator, err := SelectValidator(candidates)
	if err != nil {
		return err
	}
	blockbuilder.StampProducer(block, externalapi.ProducerKindProofOfStake, validator)
	log.Debugf("Validator %s stamped block %s at height %d", validator, block.Hash, height)
	return nil
}
