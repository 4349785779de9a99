package serialization

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// DbOutput is the serialized form of a DomainOutput
type DbOutput struct {
	ID                       []byte
	Owner                    []byte
	Value                    uint64
	OriginatingTransactionID string
	Index                    uint32
}

// Marshal encodes the output in protobuf wire format
func (x *DbOutput) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, x.ID)
	b = appendBytesField(b, 2, x.Owner)
	b = appendVarintField(b, 3, x.Value)
	b = appendBytesField(b, 4, []byte(x.OriginatingTransactionID))
	b = appendVarintField(b, 5, uint64(x.Index))
	return b
}

// Unmarshal decodes an output previously encoded with Marshal
func (x *DbOutput) Unmarshal(b []byte) error {
	return consumeMessage(b, func(number protowire.Number, wireType protowire.Type, b []byte) (int, error) {
		switch number {
		case 1:
			return consumeBytes(wireType, b, &x.ID)
		case 2:
			return consumeBytes(wireType, b, &x.Owner)
		case 3:
			return consumeVarint(wireType, b, &x.Value)
		case 4:
			var originatingTransactionID []byte
			n, err := consumeBytes(wireType, b, &originatingTransactionID)
			x.OriginatingTransactionID = string(originatingTransactionID)
			return n, err
		case 5:
			var index uint64
			n, err := consumeVarint(wireType, b, &index)
			x.Index = uint32(index)
			return n, err
		}
		return skipField, nil
	})
}

// DomainOutputToDbOutput converts DomainOutput to DbOutput
func DomainOutputToDbOutput(domainOutput *externalapi.DomainOutput) *DbOutput {
	return &DbOutput{
		ID:                       DomainHashToDbHash(domainOutput.ID),
		Owner:                    domainIdentityToDbIdentity(domainOutput.Owner),
		Value:                    domainOutput.Value,
		OriginatingTransactionID: string(domainOutput.OriginatingTransactionID),
		Index:                    domainOutput.Index,
	}
}

// DbOutputToDomainOutput converts DbOutput to DomainOutput
func DbOutputToDomainOutput(dbOutput *DbOutput) (*externalapi.DomainOutput, error) {
	id, err := DbHashToDomainHash(dbOutput.ID)
	if err != nil {
		return nil, err
	}
	owner, err := DbIdentityToDomainIdentity(dbOutput.Owner)
	if err != nil {
		return nil, err
	}
	return &externalapi.DomainOutput{
		ID:                       id,
		Owner:                    owner,
		Value:                    dbOutput.Value,
		OriginatingTransactionID: externalapi.DomainTransactionID(dbOutput.OriginatingTransactionID),
		Index:                    dbOutput.Index,
	}, nil
}
