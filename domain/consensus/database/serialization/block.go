package serialization

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// DbBlockHeader is the serialized form of a DomainBlockHeader
type DbBlockHeader struct {
	PreviousHash       []byte
	TimeInMilliseconds int64
	Nonce              uint64
	MerkleRoot         []byte
	ProducerKind       uint32
	ProducerIdentity   []byte
}

// Marshal encodes the header in protobuf wire format. The previous hash is
// always written, even when it is the zero hash of the genesis block.
func (x *DbBlockHeader) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.BytesType)
	b = protowire.AppendBytes(b, x.PreviousHash)
	b = appendVarintField(b, 2, protowire.EncodeZigZag(x.TimeInMilliseconds))
	b = protowire.AppendTag(b, 3, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, x.Nonce)
	b = appendBytesField(b, 4, x.MerkleRoot)
	b = appendVarintField(b, 5, uint64(x.ProducerKind))
	b = appendBytesField(b, 6, x.ProducerIdentity)
	return b
}

// Unmarshal decodes a header previously encoded with Marshal
func (x *DbBlockHeader) Unmarshal(b []byte) error {
	return consumeMessage(b, func(number protowire.Number, wireType protowire.Type, b []byte) (int, error) {
		switch number {
		case 1:
			return consumeBytes(wireType, b, &x.PreviousHash)
		case 2:
			var time uint64
			n, err := consumeVarint(wireType, b, &time)
			x.TimeInMilliseconds = protowire.DecodeZigZag(time)
			return n, err
		case 3:
			return consumeFixed64(wireType, b, &x.Nonce)
		case 4:
			return consumeBytes(wireType, b, &x.MerkleRoot)
		case 5:
			var kind uint64
			n, err := consumeVarint(wireType, b, &kind)
			x.ProducerKind = uint32(kind)
			return n, err
		case 6:
			return consumeBytes(wireType, b, &x.ProducerIdentity)
		}
		return skipField, nil
	})
}

// DbBlock is the serialized form of a DomainBlock
type DbBlock struct {
	Header       *DbBlockHeader
	Transactions []*DbTransaction
	Hash         []byte
}

// Marshal encodes the block in protobuf wire format
func (x *DbBlock) Marshal() []byte {
	b := appendMessageField(nil, 1, x.Header)
	for _, transaction := range x.Transactions {
		b = appendMessageField(b, 2, transaction)
	}
	b = appendBytesField(b, 3, x.Hash)
	return b
}

// Unmarshal decodes a block previously encoded with Marshal
func (x *DbBlock) Unmarshal(b []byte) error {
	err := consumeMessage(b, func(number protowire.Number, wireType protowire.Type, b []byte) (int, error) {
		switch number {
		case 1:
			var message []byte
			n, err := consumeBytes(wireType, b, &message)
			if err != nil {
				return 0, err
			}
			x.Header = &DbBlockHeader{}
			return n, x.Header.Unmarshal(message)
		case 2:
			var message []byte
			n, err := consumeBytes(wireType, b, &message)
			if err != nil {
				return 0, err
			}
			transaction := &DbTransaction{}
			x.Transactions = append(x.Transactions, transaction)
			return n, transaction.Unmarshal(message)
		case 3:
			return consumeBytes(wireType, b, &x.Hash)
		}
		return skipField, nil
	})
	if err != nil {
		return err
	}
	if x.Header == nil {
		return errors.New("serialized block has no header")
	}
	return nil
}

// DomainBlockHeaderToDbBlockHeader converts DomainBlockHeader to DbBlockHeader
func DomainBlockHeaderToDbBlockHeader(domainBlockHeader *externalapi.DomainBlockHeader) *DbBlockHeader {
	return &DbBlockHeader{
		PreviousHash:       DomainHashToDbHash(domainBlockHeader.PreviousHash),
		TimeInMilliseconds: domainBlockHeader.TimeInMilliseconds,
		Nonce:              domainBlockHeader.Nonce,
		MerkleRoot:         DomainHashToDbHash(domainBlockHeader.MerkleRoot),
		ProducerKind:       uint32(domainBlockHeader.Producer.Kind),
		ProducerIdentity:   domainIdentityToDbIdentity(domainBlockHeader.Producer.Identity),
	}
}

// DbBlockHeaderToDomainBlockHeader converts DbBlockHeader to DomainBlockHeader
func DbBlockHeaderToDomainBlockHeader(dbBlockHeader *DbBlockHeader) (*externalapi.DomainBlockHeader, error) {
	previousHash, err := DbHashToDomainHash(dbBlockHeader.PreviousHash)
	if err != nil {
		return nil, err
	}
	merkleRoot, err := DbHashToDomainHash(dbBlockHeader.MerkleRoot)
	if err != nil {
		return nil, err
	}
	if dbBlockHeader.ProducerKind > uint32(externalapi.ProducerKindDelegatedProofOfStake) {
		return nil, errors.Errorf("invalid producer kind %d", dbBlockHeader.ProducerKind)
	}
	producerIdentity, err := DbIdentityToDomainIdentity(dbBlockHeader.ProducerIdentity)
	if err != nil {
		return nil, err
	}

	return &externalapi.DomainBlockHeader{
		PreviousHash:       previousHash,
		TimeInMilliseconds: dbBlockHeader.TimeInMilliseconds,
		Nonce:              dbBlockHeader.Nonce,
		MerkleRoot:         merkleRoot,
		Producer: externalapi.ProducerStamp{
			Kind:     externalapi.ProducerKind(dbBlockHeader.ProducerKind),
			Identity: producerIdentity,
		},
	}, nil
}

// DomainBlockToDbBlock converts DomainBlock to DbBlock
func DomainBlockToDbBlock(domainBlock *externalapi.DomainBlock) *DbBlock {
	transactions := make([]*DbTransaction, len(domainBlock.Transactions))
	for i, transaction := range domainBlock.Transactions {
		transactions[i] = DomainTransactionToDbTransaction(transaction)
	}
	return &DbBlock{
		Header:       DomainBlockHeaderToDbBlockHeader(domainBlock.Header),
		Transactions: transactions,
		Hash:         DomainHashToDbHash(domainBlock.Hash),
	}
}

// DbBlockToDomainBlock converts DbBlock to DomainBlock
func DbBlockToDomainBlock(dbBlock *DbBlock) (*externalapi.DomainBlock, error) {
	header, err := DbBlockHeaderToDomainBlockHeader(dbBlock.Header)
	if err != nil {
		return nil, err
	}
	hash, err := DbHashToDomainHash(dbBlock.Hash)
	if err != nil {
		return nil, err
	}

	transactions := make([]*externalapi.DomainTransaction, len(dbBlock.Transactions))
	for i, dbTransaction := range dbBlock.Transactions {
		transactions[i], err = DbTransactionToDomainTransaction(dbTransaction)
		if err != nil {
			return nil, err
		}
	}

	return &externalapi.DomainBlock{
		Header:       header,
		Transactions: transactions,
		Hash:         hash,
	}, nil
}
