package serialization

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"google.golang.org/protobuf/encoding/protowire"
)

// DbTransactionInput is the serialized form of a DomainTransactionInput
type DbTransactionInput struct {
	ReferencedOutputID []byte
	UTXO               *DbOutput
}

// Marshal encodes the input in protobuf wire format
func (x *DbTransactionInput) Marshal() []byte {
	var b []byte
	b = appendBytesField(b, 1, x.ReferencedOutputID)
	if x.UTXO != nil {
		b = appendMessageField(b, 2, x.UTXO)
	}
	return b
}

// Unmarshal decodes an input previously encoded with Marshal
func (x *DbTransactionInput) Unmarshal(b []byte) error {
	return consumeMessage(b, func(number protowire.Number, wireType protowire.Type, b []byte) (int, error) {
		switch number {
		case 1:
			return consumeBytes(wireType, b, &x.ReferencedOutputID)
		case 2:
			var message []byte
			n, err := consumeBytes(wireType, b, &message)
			if err != nil {
				return 0, err
			}
			x.UTXO = &DbOutput{}
			return n, x.UTXO.Unmarshal(message)
		}
		return skipField, nil
	})
}

// DbTransaction is the serialized form of a DomainTransaction
type DbTransaction struct {
	ID              string
	Sender          []byte
	Recipient       []byte
	Amount          uint64
	Inputs          []*DbTransactionInput
	Outputs         []*DbOutput
	Signature       []byte
	ContractAddress []byte
}

// Marshal encodes the transaction in protobuf wire format
func (x *DbTransaction) Marshal() []byte {
	b := protowire.AppendTag(nil, 1, protowire.BytesType)
	b = protowire.AppendString(b, x.ID)
	b = appendBytesField(b, 2, x.Sender)
	b = appendBytesField(b, 3, x.Recipient)
	b = appendVarintField(b, 4, x.Amount)
	for _, input := range x.Inputs {
		b = appendMessageField(b, 5, input)
	}
	for _, output := range x.Outputs {
		b = appendMessageField(b, 6, output)
	}
	b = appendBytesField(b, 7, x.Signature)
	b = appendBytesField(b, 8, x.ContractAddress)
	return b
}

// Unmarshal decodes a transaction previously encoded with Marshal
func (x *DbTransaction) Unmarshal(b []byte) error {
	return consumeMessage(b, func(number protowire.Number, wireType protowire.Type, b []byte) (int, error) {
		switch number {
		case 1:
			var id []byte
			n, err := consumeBytes(wireType, b, &id)
			x.ID = string(id)
			return n, err
		case 2:
			return consumeBytes(wireType, b, &x.Sender)
		case 3:
			return consumeBytes(wireType, b, &x.Recipient)
		case 4:
			return consumeVarint(wireType, b, &x.Amount)
		case 5:
			var message []byte
			n, err := consumeBytes(wireType, b, &message)
			if err != nil {
				return 0, err
			}
			input := &DbTransactionInput{}
			x.Inputs = append(x.Inputs, input)
			return n, input.Unmarshal(message)
		case 6:
			var message []byte
			n, err := consumeBytes(wireType, b, &message)
			if err != nil {
				return 0, err
			}
			output := &DbOutput{}
			x.Outputs = append(x.Outputs, output)
			return n, output.Unmarshal(message)
		case 7:
			return consumeBytes(wireType, b, &x.Signature)
		case 8:
			return consumeBytes(wireType, b, &x.ContractAddress)
		}
		return skipField, nil
	})
}

// DomainTransactionToDbTransaction converts DomainTransaction to DbTransaction
func DomainTransactionToDbTransaction(domainTransaction *externalapi.DomainTransaction) *DbTransaction {
	inputs := make([]*DbTransactionInput, len(domainTransaction.Inputs))
	for i, input := range domainTransaction.Inputs {
		inputs[i] = &DbTransactionInput{ReferencedOutputID: DomainHashToDbHash(input.ReferencedOutputID)}
		if input.UTXO != nil {
			inputs[i].UTXO = DomainOutputToDbOutput(input.UTXO)
		}
	}

	outputs := make([]*DbOutput, len(domainTransaction.Outputs))
	for i, output := range domainTransaction.Outputs {
		outputs[i] = DomainOutputToDbOutput(output)
	}

	var contractAddress []byte
	if domainTransaction.Payload != nil {
		contractAddress = DomainHashToDbHash(domainTransaction.Payload.ContractAddress)
	}

	return &DbTransaction{
		ID:              string(domainTransaction.ID),
		Sender:          domainIdentityToDbIdentity(domainTransaction.Sender),
		Recipient:       domainIdentityToDbIdentity(domainTransaction.Recipient),
		Amount:          domainTransaction.Amount,
		Inputs:          inputs,
		Outputs:         outputs,
		Signature:       domainTransaction.Signature,
		ContractAddress: contractAddress,
	}
}

// DbTransactionToDomainTransaction converts DbTransaction to DomainTransaction
func DbTransactionToDomainTransaction(dbTransaction *DbTransaction) (*externalapi.DomainTransaction, error) {
	sender, err := DbIdentityToDomainIdentity(dbTransaction.Sender)
	if err != nil {
		return nil, err
	}
	recipient, err := DbIdentityToDomainIdentity(dbTransaction.Recipient)
	if err != nil {
		return nil, err
	}

	inputs := make([]*externalapi.DomainTransactionInput, len(dbTransaction.Inputs))
	for i, dbInput := range dbTransaction.Inputs {
		referencedOutputID, err := DbHashToDomainHash(dbInput.ReferencedOutputID)
		if err != nil {
			return nil, err
		}
		inputs[i] = &externalapi.DomainTransactionInput{ReferencedOutputID: referencedOutputID}
		if dbInput.UTXO != nil {
			inputs[i].UTXO, err = DbOutputToDomainOutput(dbInput.UTXO)
			if err != nil {
				return nil, err
			}
		}
	}

	outputs := make([]*externalapi.DomainOutput, len(dbTransaction.Outputs))
	for i, dbOutput := range dbTransaction.Outputs {
		outputs[i], err = DbOutputToDomainOutput(dbOutput)
		if err != nil {
			return nil, err
		}
	}

	var payload *externalapi.ContractCall
	if len(dbTransaction.ContractAddress) > 0 {
		contractAddress, err := DbHashToDomainHash(dbTransaction.ContractAddress)
		if err != nil {
			return nil, err
		}
		payload = &externalapi.ContractCall{ContractAddress: contractAddress}
	}

	return &externalapi.DomainTransaction{
		ID:        externalapi.DomainTransactionID(dbTransaction.ID),
		Sender:    sender,
		Recipient: recipient,
		Amount:    dbTransaction.Amount,
		Inputs:    inputs,
		Outputs:   outputs,
		Signature: dbTransaction.Signature,
		Payload:   payload,
	}, nil
}
