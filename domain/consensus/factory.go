package consensus

import (
	"github.com/ledgersim/ledgersim/domain/consensus/datastructures/blockstore"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/blockbuilder"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/chainvalidator"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/stakemanager"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/transactionprocessor"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/utxo"
	"github.com/ledgersim/ledgersim/domain/consensusconfig"
	"github.com/ledgersim/ledgersim/domain/contracts"
	"github.com/ledgersim/ledgersim/infrastructure/db/database"
	"github.com/pkg/errors"
)

const blockCacheSize = 200

// New instantiates a new Consensus over params, storing its blocks in db.
// The chain starts out empty; CreateGenesis must be called before any
// transaction is submitted.
func New(params *consensusconfig.Params, identityProvider externalapi.IdentityProvider,
	db database.Database) (*Consensus, error) {

	err := params.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s params", params.Name)
	}

	// Data Structures
	ledger := utxo.New()
	registry := contracts.NewRegistry()
	blockStore, err := blockstore.New(db, blockCacheSize)
	if err != nil {
		return nil, err
	}
	if blockStore.Count() != 0 {
		return nil, errors.Errorf("the database already holds %d blocks", blockStore.Count())
	}

	// Processes
	transactionProcessor := transactionprocessor.New(
		identityProvider,
		registry,
		params.MinimumTransactionValue)
	blockBuilder := blockbuilder.New(
		transactionProcessor,
		ledger)
	chainValidator := chainvalidator.New(
		params,
		transactionProcessor)
	stakeManager := stakemanager.New(
		ledger)

	return &Consensus{
		params: params,
		db:     db,

		ledger:     ledger,
		contracts:  registry,
		blockStore: blockStore,

		transactionProcessor: transactionProcessor,
		blockBuilder:         blockBuilder,
		chainValidator:       chainValidator,
		stakeManager:         stakeManager,
	}, nil
}
