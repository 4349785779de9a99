package consensus

import (
	"context"
	"sync"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/blockbuilder"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/chainvalidator"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/consensusstrategy"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/stakemanager"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/transactionprocessor"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/utxo"
	"github.com/ledgersim/ledgersim/domain/consensusconfig"
	"github.com/ledgersim/ledgersim/domain/contracts"
	"github.com/ledgersim/ledgersim/infrastructure/db/database"
	"github.com/ledgersim/ledgersim/infrastructure/logger"
	"github.com/pkg/errors"
)

// Consensus maintains the chain, the UTXO ledger it produced and the block
// under assembly on top of the chain tip.
type Consensus struct {
	lock   sync.Mutex
	params *consensusconfig.Params
	db     database.Database

	ledger     *utxo.Ledger
	contracts  *contracts.Registry
	blockStore model.BlockStore

	transactionProcessor *transactionprocessor.TransactionProcessor
	blockBuilder         *blockbuilder.BlockBuilder
	chainValidator       *chainvalidator.ChainValidator
	stakeManager         *stakemanager.StakeManager

	tip        *externalapi.DomainBlock
	assembling *externalapi.DomainBlock
}

// CreateGenesis mints initialSupply to recipient in a genesis block issued
// by coinbase, mines it with proof of work, appends it to the empty chain and
// opens the first block for assembly.
func (s *Consensus) CreateGenesis(ctx context.Context, coinbase externalapi.PublicIdentity, initialSupply uint64,
	recipient externalapi.PublicIdentity) (*externalapi.DomainBlock, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.tip != nil {
		return nil, errors.Wrapf(ruleerrors.ErrGenesisAlreadyExists, "genesis block %s", s.tip.Hash)
	}

	output := utxo.NewOutput(recipient, initialSupply, externalapi.GenesisTransactionID, 0)
	genesisTransaction := &externalapi.DomainTransaction{
		ID:        externalapi.GenesisTransactionID,
		Sender:    coinbase,
		Recipient: recipient,
		Amount:    initialSupply,
		Inputs:    []*externalapi.DomainTransactionInput{},
		Outputs:   []*externalapi.DomainOutput{output},
	}

	genesis := s.blockBuilder.BuildBlock(&externalapi.DomainHash{})
	err := s.blockBuilder.AddTransaction(genesis, genesisTransaction)
	if err != nil {
		return nil, err
	}
	err = consensusstrategy.NewProofOfWork(s.params).StampBlock(ctx, genesis, 0)
	if err != nil {
		return nil, errors.Wrap(err, "could not mine the genesis block")
	}
	err = s.appendBlock(genesis)
	if err != nil {
		return nil, err
	}
	s.ledger.Put(output)

	log.Infof("Created genesis block %s minting %d to %s", genesis.Hash, initialSupply, recipient)
	return genesis.Clone(), nil
}

// SubmitTransaction processes tx against the ledger and adds it to the block
// under assembly. A rejected transaction changes nothing.
func (s *Consensus) SubmitTransaction(tx *externalapi.DomainTransaction) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.assembling == nil {
		return errors.Wrap(ruleerrors.ErrNoGenesis, "cannot submit a transaction before genesis")
	}
	return s.blockBuilder.AddTransaction(s.assembling, tx)
}

// MineNextBlock has strategy stamp the block under assembly and appends it
// to the chain. When stamping fails the block stays under assembly and can
// be stamped again.
func (s *Consensus) MineNextBlock(ctx context.Context, strategy model.ConsensusStrategy) (*externalapi.DomainBlock, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "MineNextBlock")
	defer onEnd()

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.assembling == nil {
		return nil, errors.Wrap(ruleerrors.ErrNoGenesis, "cannot mine before genesis")
	}

	block := s.assembling
	height := s.blockStore.Count()
	err := strategy.StampBlock(ctx, block, height)
	if err != nil {
		return nil, errors.Wrapf(err, "%s could not stamp block at height %d", strategy.Name(), height)
	}

	err = s.appendBlock(block)
	if err != nil {
		return nil, err
	}
	log.Infof("Appended %s block %s at height %d with %d transactions",
		strategy.Name(), block.Hash, height, len(block.Transactions))
	return block.Clone(), nil
}

func (s *Consensus) appendBlock(block *externalapi.DomainBlock) error {
	err := s.blockStore.Store(block)
	if err != nil {
		return err
	}
	s.tip = block
	s.assembling = s.blockBuilder.BuildBlock(block.Hash)
	return nil
}

// ValidateChain replays the whole chain from genesis and returns the first
// rule violation found. The ledger is not touched.
func (s *Consensus) ValidateChain() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	blocks, err := s.blockStore.Blocks()
	if err != nil {
		return err
	}
	return s.chainValidator.ValidateChain(blocks, s.stakeManager.MintedOutputs())
}

// BalanceOf returns the spendable value identity owns
func (s *Consensus) BalanceOf(identity externalapi.PublicIdentity) uint64 {
	return s.ledger.BalanceOf(identity)
}

// Blocks returns the chain, genesis first
func (s *Consensus) Blocks() ([]*externalapi.DomainBlock, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.blockStore.Blocks()
}

// Tip returns the last block of the chain, or nil before genesis
func (s *Consensus) Tip() *externalapi.DomainBlock {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.tip == nil {
		return nil
	}
	return s.tip.Clone()
}

// BlockByHash returns the chain block with the given hash
func (s *Consensus) BlockByHash(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	return s.blockStore.Block(blockHash)
}

// UTXOCommitment returns the commitment to the current unspent output set
func (s *Consensus) UTXOCommitment() *externalapi.DomainHash {
	return s.ledger.Commitment()
}

// Params returns the consensus parameters
func (s *Consensus) Params() *consensusconfig.Params {
	return s.params
}

// Ledger returns the live UTXO ledger
func (s *Consensus) Ledger() model.UTXOLedger {
	return s.ledger
}

// TransactionProcessor returns the processor transactions are created,
// signed and processed with
func (s *Consensus) TransactionProcessor() *transactionprocessor.TransactionProcessor {
	return s.transactionProcessor
}

// StakeManager returns the stake and delegation state
func (s *Consensus) StakeManager() *stakemanager.StakeManager {
	return s.stakeManager
}

// Contracts returns the registry of deployed contracts
func (s *Consensus) Contracts() *contracts.Registry {
	return s.contracts
}

// Close releases the block database
func (s *Consensus) Close() error {
	return s.db.Close()
}
