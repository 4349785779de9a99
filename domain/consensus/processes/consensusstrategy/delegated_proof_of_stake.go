package consensusstrategy

import (
	"context"
	"sort"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/blockbuilder"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

// SelectDelegates returns copies of the k delegates with the most votes,
// most voted first. Delegates with equal votes keep their relative order.
func SelectDelegates(delegates []*externalapi.Delegate, k int) []*externalapi.Delegate {
	sorted := make([]*externalapi.Delegate, len(delegates))
	for i, delegate := range delegates {
		sorted[i] = delegate.Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Votes > sorted[j].Votes
	})

	if k < 0 {
		k = 0
	}
	if k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted
}

type delegatedProofOfStake struct {
	stakeView     model.StakeView
	delegateCount int
}

// NewDelegatedProofOfStake returns a strategy that elects the delegateCount
// most voted delegates of stakeView and lets them stamp blocks in turn: the
// block at height h is stamped by elected delegate h mod the number elected.
func NewDelegatedProofOfStake(stakeView model.StakeView, delegateCount int) model.ConsensusStrategy {
	return &delegatedProofOfStake{
		stakeView:     stakeView,
		delegateCount: delegateCount,
	}
}

func (d *delegatedProofOfStake) Name() string {
	return externalapi.ProducerKindDelegatedProofOfStake.String()
}

func (d *delegatedProofOfStake) StampBlock(_ context.Context, block *externalapi.DomainBlock, height uint64) error {
	elected := SelectDelegates(d.stakeView.Delegates(), d.delegateCount)
	if len(elected) == 0 {
		return errors.Wrapf(ruleerrors.ErrNoEligibleValidator,
			"no delegate is elected with a delegate count of %d", d.delegateCount)
	}

	producer := elected[height%uint64(len(elected))]
	blockbuilder.StampProducer(block, externalapi.ProducerKindDelegatedProofOfStake, producer.Identity)
	log.Debugf("Delegate %s (%d votes) stamped block %s at height %d",
		producer.Identity, producer.Votes, block.Hash, height)
	return nil
}
