package externalapi

import "fmt"

// ProducerKind is the consensus discipline that stamped a block
type ProducerKind uint8

const (
	// ProducerKindNone marks a block that was not stamped yet
	ProducerKindNone ProducerKind = iota

	// ProducerKindProofOfWork marks a block stamped by a nonce search
	ProducerKindProofOfWork

	// ProducerKindProofOfStake marks a block stamped by a stake-selected validator
	ProducerKindProofOfStake

	// ProducerKindDelegatedProofOfStake marks a block stamped by an elected delegate
	ProducerKindDelegatedProofOfStake
)

var producerKindStrings = map[ProducerKind]string{
	ProducerKindNone:                  "none",
	ProducerKindProofOfWork:           "pow",
	ProducerKindProofOfStake:          "pos",
	ProducerKindDelegatedProofOfStake: "dpos",
}

func (kind ProducerKind) String() string {
	if str, ok := producerKindStrings[kind]; ok {
		return str
	}
	return fmt.Sprintf("unknown(%d)", uint8(kind))
}

// ProducerStamp records who was authorized to produce a block. Identity is
// the zero identity for proof-of-work blocks.
type ProducerStamp struct {
	Kind     ProducerKind
	Identity PublicIdentity
}

// DomainBlockHeader represents the header part of a block
type DomainBlockHeader struct {
	PreviousHash       *DomainHash
	TimeInMilliseconds int64
	Nonce              uint64
	MerkleRoot         *DomainHash
	Producer           ProducerStamp
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainBlockHeader{&DomainHash{}, 0, 0, &DomainHash{}, ProducerStamp{}}

// Clone returns a clone of DomainBlockHeader
func (header *DomainBlockHeader) Clone() *DomainBlockHeader {
	return &DomainBlockHeader{
		PreviousHash:       header.PreviousHash,
		TimeInMilliseconds: header.TimeInMilliseconds,
		Nonce:              header.Nonce,
		MerkleRoot:         header.MerkleRoot,
		Producer:           header.Producer,
	}
}

// Equal returns whether header equals to other
func (header *DomainBlockHeader) Equal(other *DomainBlockHeader) bool {
	if header == nil || other == nil {
		return header == other
	}
	return header.PreviousHash.Equal(other.PreviousHash) &&
		header.TimeInMilliseconds == other.TimeInMilliseconds &&
		header.Nonce == other.Nonce &&
		header.MerkleRoot.Equal(other.MerkleRoot) &&
		header.Producer == other.Producer
}

// DomainBlock represents a block. Hash is the stored hash, which a valid
// block keeps equal to the hash of its header.
type DomainBlock struct {
	Header       *DomainBlockHeader
	Transactions []*DomainTransaction
	Hash         *DomainHash
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainBlock{&DomainBlockHeader{}, []*DomainTransaction{}, &DomainHash{}}

// IsGenesis returns whether block is chained to the genesis sentinel
func (block *DomainBlock) IsGenesis() bool {
	return block.Header.PreviousHash.IsZero()
}

// Clone returns a clone of DomainBlock
func (block *DomainBlock) Clone() *DomainBlock {
	transactionClone := make([]*DomainTransaction, len(block.Transactions))
	for i, tx := range block.Transactions {
		transactionClone[i] = tx.Clone()
	}

	return &DomainBlock{
		Header:       block.Header.Clone(),
		Transactions: transactionClone,
		Hash:         block.Hash,
	}
}

// Equal returns whether block equals to other
func (block *DomainBlock) Equal(other *DomainBlock) bool {
	if block == nil || other == nil {
		return block == other
	}

	if len(block.Transactions) != len(other.Transactions) {
		return false
	}

	if !block.Header.Equal(other.Header) || !block.Hash.Equal(other.Hash) {
		return false
	}

	for i, tx := range block.Transactions {
		if !tx.Equal(other.Transactions[i]) {
			return false
		}
	}

	return true
}
