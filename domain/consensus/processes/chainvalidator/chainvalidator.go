package chainvalidator

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/utxo"
	"github.com/ledgersim/ledgersim/domain/consensusconfig"
	"github.com/ledgersim/ledgersim/infrastructure/logger"
	"github.com/pkg/errors"
)

// ChainValidator replays a whole chain against a fresh UTXO snapshot and
// reports the first rule it violates.
type ChainValidator struct {
	params               *consensusconfig.Params
	transactionProcessor model.TransactionProcessor
}

// New instantiates a new ChainValidator
func New(params *consensusconfig.Params, transactionProcessor model.TransactionProcessor) *ChainValidator {
	return &ChainValidator{
		params:               params,
		transactionProcessor: transactionProcessor,
	}
}

// ValidateChain checks every block of blocks, which must start with the
// genesis block. The replay snapshot is seeded with the outputs of the
// genesis transactions and with mintedOutputs, the outputs created outside
// of any block by staking. Neither blocks nor mintedOutputs are modified, so
// calling ValidateChain repeatedly on the same chain gives the same result.
func (cv *ChainValidator) ValidateChain(blocks []*externalapi.DomainBlock,
	mintedOutputs []*externalapi.DomainOutput) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateChain")
	defer onEnd()

	if len(blocks) == 0 || !blocks[0].IsGenesis() {
		return errors.Wrap(ruleerrors.ErrNoGenesis, "the chain does not start with a genesis block")
	}

	snapshot := utxo.New()
	err := cv.validateGenesis(blocks[0], snapshot)
	if err != nil {
		return ruleerrors.NewErrInvalidBlock(0, blocks[0].Hash, err)
	}
	for _, output := range mintedOutputs {
		snapshot.Put(output)
	}

	for height := 1; height < len(blocks); height++ {
		block := blocks[height]
		err := cv.validateBlock(block, blocks[height-1], snapshot)
		if err != nil {
			log.Debugf("Block %s at height %d is invalid: %s", block.Hash, height, err)
			return ruleerrors.NewErrInvalidBlock(uint64(height), block.Hash, err)
		}
	}

	log.Debugf("Validated a chain of %d blocks", len(blocks))
	return nil
}

func (cv *ChainValidator) validateGenesis(genesis *externalapi.DomainBlock, snapshot model.MutableUTXOView) error {
	err := checkBlockHashes(genesis)
	if err != nil {
		return err
	}
	for _, tx := range genesis.Transactions {
		for _, output := range tx.Outputs {
			snapshot.Put(output)
		}
	}
	return nil
}

func (cv *ChainValidator) validateBlock(block, previous *externalapi.DomainBlock, snapshot model.UTXOLedger) error {
	err := cv.validateHeader(block, previous)
	if err != nil {
		return err
	}
	return cv.validateTransactions(block, snapshot)
}
