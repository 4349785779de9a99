package externalapi

import "fmt"

// DomainOutput is an unspent transaction output. Outputs are immutable once
// created; spending one removes it from the ledger.
type DomainOutput struct {
	ID                       *DomainHash
	Owner                    PublicIdentity
	Value                    uint64
	OriginatingTransactionID DomainTransactionID
	Index                    uint32
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = DomainOutput{&DomainHash{}, PublicIdentity{}, 0, "", 0}

// Clone returns a clone of DomainOutput
func (output *DomainOutput) Clone() *DomainOutput {
	if output == nil {
		return nil
	}
	return &DomainOutput{
		ID:                       output.ID,
		Owner:                    output.Owner,
		Value:                    output.Value,
		OriginatingTransactionID: output.OriginatingTransactionID,
		Index:                    output.Index,
	}
}

// Equal returns whether output equals to other
func (output *DomainOutput) Equal(other *DomainOutput) bool {
	if output == nil || other == nil {
		return output == other
	}
	return output.ID.Equal(other.ID) &&
		output.Owner == other.Owner &&
		output.Value == other.Value &&
		output.OriginatingTransactionID == other.OriginatingTransactionID &&
		output.Index == other.Index
}

func (output *DomainOutput) String() string {
	return fmt.Sprintf("%s(%d -> %s)", output.ID, output.Value, output.Owner)
}

// DomainTransactionInput references an output to be consumed. UTXO is set
// once the reference has been resolved against a ledger.
type DomainTransactionInput struct {
	ReferencedOutputID *DomainHash
	UTXO               *DomainOutput
}

// Clone returns a clone of DomainTransactionInput
func (input *DomainTransactionInput) Clone() *DomainTransactionInput {
	return &DomainTransactionInput{
		ReferencedOutputID: input.ReferencedOutputID,
		UTXO:               input.UTXO.Clone(),
	}
}

// Equal returns whether input equals to other
func (input *DomainTransactionInput) Equal(other *DomainTransactionInput) bool {
	if input == nil || other == nil {
		return input == other
	}
	return input.ReferencedOutputID.Equal(other.ReferencedOutputID) && input.UTXO.Equal(other.UTXO)
}
