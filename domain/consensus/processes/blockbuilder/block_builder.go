package blockbuilder

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/merkle"
	"github.com/ledgersim/ledgersim/util/mstime"
	"github.com/pkg/errors"
)

// BlockBuilder assembles blocks out of transactions that the transaction
// processor accepts against the UTXO ledger.
type BlockBuilder struct {
	transactionProcessor model.TransactionProcessor
	ledger               model.UTXOLedger
}

// New instantiates a new BlockBuilder
func New(transactionProcessor model.TransactionProcessor, ledger model.UTXOLedger) *BlockBuilder {
	return &BlockBuilder{
		transactionProcessor: transactionProcessor,
		ledger:               ledger,
	}
}

// BuildBlock returns an empty, unstamped block on top of previousHash,
// timestamped now. A zero previousHash builds a genesis block.
func (bb *BlockBuilder) BuildBlock(previousHash *externalapi.DomainHash) *externalapi.DomainBlock {
	return NewBlock(previousHash, mstime.NowUnixMilliseconds())
}

// NewBlock returns an empty, unstamped block on top of previousHash with the
// given timestamp
func NewBlock(previousHash *externalapi.DomainHash, timeInMilliseconds int64) *externalapi.DomainBlock {
	block := &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			PreviousHash:       previousHash,
			TimeInMilliseconds: timeInMilliseconds,
		},
		Transactions: []*externalapi.DomainTransaction{},
	}
	UpdateHashes(block)
	return block
}

// AddTransaction processes tx against the ledger and, if it is accepted,
// appends it to block. Transactions added to a genesis block are appended
// without processing. A rejected transaction is discarded and its rule error
// returned.
func (bb *BlockBuilder) AddTransaction(block *externalapi.DomainBlock, tx *externalapi.DomainTransaction) error {
	if !block.IsGenesis() {
		err := bb.transactionProcessor.Process(tx, bb.ledger)
		if err != nil {
			log.Warnf("Discarding transaction from %s to %s: %s", tx.Sender, tx.Recipient, err)
			return errors.Wrapf(err, "transaction from %s was not added to the block", tx.Sender)
		}
	}

	block.Transactions = append(block.Transactions, tx)
	UpdateHashes(block)
	log.Debugf("Added transaction %s to block %s", tx.ID, block.Hash)
	return nil
}

// StampProducer records kind and identity as the producer of block and
// recomputes its hash.
func StampProducer(block *externalapi.DomainBlock, kind externalapi.ProducerKind,
	identity externalapi.PublicIdentity) {

	block.Header.Producer = externalapi.ProducerStamp{Kind: kind, Identity: identity}
	block.Hash = consensushashing.BlockHash(block)
	log.Debugf("Block %s stamped by %s producer %s", block.Hash, kind, identity)
}

// UpdateHashes recomputes the merkle root and the hash of block
func UpdateHashes(block *externalapi.DomainBlock) {
	block.Header.MerkleRoot = merkle.CalculateHashMerkleRoot(block.Transactions)
	block.Hash = consensushashing.BlockHash(block)
}
