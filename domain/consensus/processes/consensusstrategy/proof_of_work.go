package consensusstrategy

import (
	"context"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/pow"
	"github.com/ledgersim/ledgersim/domain/consensusconfig"
)

type proofOfWork struct {
	params *consensusconfig.Params
}

// NewProofOfWork returns a strategy that stamps blocks by searching for a
// nonce that meets the difficulty in params
func NewProofOfWork(params *consensusconfig.Params) model.ConsensusStrategy {
	return &proofOfWork{params: params}
}

func (p *proofOfWork) Name() string {
	return externalapi.ProducerKindProofOfWork.String()
}

func (p *proofOfWork) StampBlock(ctx context.Context, block *externalapi.DomainBlock, height uint64) error {
	block.Header.Producer = externalapi.ProducerStamp{Kind: externalapi.ProducerKindProofOfWork}
	err := pow.Solve(ctx, block, p.params.Difficulty, p.params.PowWorkers, p.params.MaxNonce)
	if err != nil {
		block.Header.Producer = externalapi.ProducerStamp{}
		return err
	}
	log.Debugf("Mined block %s at height %d with nonce %d", block.Hash, height, block.Header.Nonce)
	return nil
}
