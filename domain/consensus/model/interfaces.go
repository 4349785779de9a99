package model

import (
	"context"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
)

// Contract is deployed code that may be invoked by contract-call
// transactions. Execute must leave all contract state unchanged when it
// returns an error.
type Contract interface {
	Address() *externalapi.DomainHash
	Execute(tx *externalapi.DomainTransaction, view UTXOView) error
}

// ContractRegistry resolves deployed contracts by address
type ContractRegistry interface {
	Contract(address *externalapi.DomainHash) (Contract, bool)
}

// TransactionProcessor validates transactions and applies them to a ledger
type TransactionProcessor interface {
	Process(tx *externalapi.DomainTransaction, ledger UTXOLedger) error
	VerifySignature(tx *externalapi.DomainTransaction) bool
}

// ConsensusStrategy authorizes and stamps the block produced at the given
// chain height.
type ConsensusStrategy interface {
	Name() string
	StampBlock(ctx context.Context, block *externalapi.DomainBlock, height uint64) error
}

// StakeView exposes the staking and delegation state consensus strategies
// select producers from
type StakeView interface {
	StakeOf(identity externalapi.PublicIdentity) uint64
	Delegates() []*externalapi.Delegate
}

// BlockStore keeps the blocks of the chain in the order they were appended
type BlockStore interface {
	Store(block *externalapi.DomainBlock) error
	Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error)
	HasBlock(blockHash *externalapi.DomainHash) (bool, error)
	BlockAtHeight(height uint64) (*externalapi.DomainBlock, error)
	Blocks() ([]*externalapi.DomainBlock, error)
	Count() uint64
}
