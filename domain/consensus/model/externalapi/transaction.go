package externalapi

import (
	"bytes"
	"strings"
)

// DomainTransactionID identifies a transaction. Regular transactions carry
// the hex encoding of a hash; minted outputs carry a prefixed uuid.
type DomainTransactionID string

// GenesisTransactionID is the fixed ID of the transaction that seeds the ledger
const GenesisTransactionID DomainTransactionID = "0"

const (
	// StakeChangeTransactionIDPrefix prefixes the originating ID of change
	// outputs minted while staking
	StakeChangeTransactionIDPrefix = "stake_change_"

	// UnstakeTransactionIDPrefix prefixes the originating ID of outputs
	// minted while unstaking
	UnstakeTransactionIDPrefix = "unstake_"
)

// IsMinted returns whether id belongs to an output created outside of
// transaction processing.
func (id DomainTransactionID) IsMinted() bool {
	return strings.HasPrefix(string(id), StakeChangeTransactionIDPrefix) ||
		strings.HasPrefix(string(id), UnstakeTransactionIDPrefix)
}

// ContractCall is the payload of a transaction addressed to a deployed contract
type ContractCall struct {
	ContractAddress *DomainHash
}

// DomainTransaction represents a transfer of value from Sender to Recipient.
type DomainTransaction struct {
	ID        DomainTransactionID
	Sender    PublicIdentity
	Recipient PublicIdentity
	Amount    uint64
	Inputs    []*DomainTransactionInput
	Outputs   []*DomainOutput
	Signature []byte
	Payload   *ContractCall
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainTransaction{"", PublicIdentity{}, PublicIdentity{}, 0,
	[]*DomainTransactionInput{}, []*DomainOutput{}, []byte{}, &ContractCall{}}

// IsGenesis returns whether tx is the ledger-seeding transaction
func (tx *DomainTransaction) IsGenesis() bool {
	return tx.ID == GenesisTransactionID
}

// IsContractCall returns whether tx is addressed to a contract
func (tx *DomainTransaction) IsContractCall() bool {
	return tx.Payload != nil
}

// InputsValue returns the sum of the values of the resolved inputs.
// Unresolved inputs contribute nothing.
func (tx *DomainTransaction) InputsValue() uint64 {
	sum := uint64(0)
	for _, input := range tx.Inputs {
		if input.UTXO != nil {
			sum += input.UTXO.Value
		}
	}
	return sum
}

// OutputsValue returns the sum of the values of the outputs
func (tx *DomainTransaction) OutputsValue() uint64 {
	sum := uint64(0)
	for _, output := range tx.Outputs {
		sum += output.Value
	}
	return sum
}

// Clone returns a clone of DomainTransaction
func (tx *DomainTransaction) Clone() *DomainTransaction {
	inputsClone := make([]*DomainTransactionInput, len(tx.Inputs))
	for i, input := range tx.Inputs {
		inputsClone[i] = input.Clone()
	}

	outputsClone := make([]*DomainOutput, len(tx.Outputs))
	for i, output := range tx.Outputs {
		outputsClone[i] = output.Clone()
	}

	var signatureClone []byte
	if tx.Signature != nil {
		signatureClone = make([]byte, len(tx.Signature))
		copy(signatureClone, tx.Signature)
	}

	var payloadClone *ContractCall
	if tx.Payload != nil {
		payloadClone = &ContractCall{ContractAddress: tx.Payload.ContractAddress}
	}

	return &DomainTransaction{
		ID:        tx.ID,
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		Inputs:    inputsClone,
		Outputs:   outputsClone,
		Signature: signatureClone,
		Payload:   payloadClone,
	}
}

// Equal returns whether tx equals to other
func (tx *DomainTransaction) Equal(other *DomainTransaction) bool {
	if tx == nil || other == nil {
		return tx == other
	}

	if tx.ID != other.ID || tx.Sender != other.Sender || tx.Recipient != other.Recipient ||
		tx.Amount != other.Amount || !bytes.Equal(tx.Signature, other.Signature) {
		return false
	}

	if len(tx.Inputs) != len(other.Inputs) {
		return false
	}
	for i, input := range tx.Inputs {
		if !input.Equal(other.Inputs[i]) {
			return false
		}
	}

	if len(tx.Outputs) != len(other.Outputs) {
		return false
	}
	for i, output := range tx.Outputs {
		if !output.Equal(other.Outputs[i]) {
			return false
		}
	}

	if tx.Payload == nil || other.Payload == nil {
		return tx.Payload == other.Payload
	}
	return tx.Payload.ContractAddress.Equal(other.Payload.ContractAddress)
}
