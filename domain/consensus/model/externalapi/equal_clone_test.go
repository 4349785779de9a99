package externalapi

import (
	"reflect"
	"testing"
)

func testHash(b byte) *DomainHash {
	var array [DomainHashSize]byte
	array[DomainHashSize-1] = b
	return NewDomainHashFromByteArray(&array)
}

func testBaseTransaction() *DomainTransaction {
	sender := PublicIdentity{0x01}
	recipient := PublicIdentity{0x02}
	return &DomainTransaction{
		ID:        "aa",
		Sender:    sender,
		Recipient: recipient,
		Amount:    40,
		Inputs: []*DomainTransactionInput{{
			ReferencedOutputID: testHash(1),
			UTXO:               &DomainOutput{ID: testHash(1), Owner: sender, Value: 100, OriginatingTransactionID: "0"},
		}},
		Outputs: []*DomainOutput{
			{ID: testHash(2), Owner: recipient, Value: 40, OriginatingTransactionID: "aa", Index: 0},
			{ID: testHash(3), Owner: sender, Value: 60, OriginatingTransactionID: "aa", Index: 1},
		},
		Signature: []byte{0x05, 0x06},
	}
}

func testBaseBlock() *DomainBlock {
	return &DomainBlock{
		Header: &DomainBlockHeader{
			PreviousHash:       testHash(9),
			TimeInMilliseconds: 5,
			Nonce:              7,
			MerkleRoot:         testHash(8),
			Producer:           ProducerStamp{Kind: ProducerKindProofOfWork},
		},
		Transactions: []*DomainTransaction{testBaseTransaction()},
		Hash:         testHash(10),
	}
}

func TestDomainTransaction_Equal(t *testing.T) {
	tests := []struct {
		name           string
		mutate         func(tx *DomainTransaction)
		expectedResult bool
	}{
		{"identical", func(tx *DomainTransaction) {}, true},
		{"amount", func(tx *DomainTransaction) { tx.Amount++ }, false},
		{"id", func(tx *DomainTransaction) { tx.ID = "bb" }, false},
		{"recipient", func(tx *DomainTransaction) { tx.Recipient = PublicIdentity{0x03} }, false},
		{"signature", func(tx *DomainTransaction) { tx.Signature = []byte{0x05} }, false},
		{"output value", func(tx *DomainTransaction) { tx.Outputs[1].Value = 59 }, false},
		{"unresolved input", func(tx *DomainTransaction) { tx.Inputs[0].UTXO = nil }, false},
		{"payload", func(tx *DomainTransaction) { tx.Payload = &ContractCall{ContractAddress: testHash(4)} }, false},
	}

	for _, test := range tests {
		base := testBaseTransaction()
		other := testBaseTransaction()
		test.mutate(other)
		if result := base.Equal(other); result != test.expectedResult {
			t.Fatalf("TestDomainTransaction_Equal: %s: Expected %t but got %t", test.name, test.expectedResult, result)
		}
		if result := other.Equal(base); result != test.expectedResult {
			t.Fatalf("TestDomainTransaction_Equal: %s: Expected %t but got %t (reversed)", test.name, test.expectedResult, result)
		}
	}
}

func TestDomainBlock_Clone(t *testing.T) {
	block := testBaseBlock()
	blockClone := block.Clone()
	if !blockClone.Equal(block) {
		t.Fatalf("TestDomainBlock_Clone: [Equal] clone should be equal to the original")
	}
	if !reflect.DeepEqual(block, blockClone) {
		t.Fatalf("TestDomainBlock_Clone: [DeepEqual] clone should be equal to the original")
	}

	blockClone.Transactions[0].Amount = 1000
	blockClone.Header.Nonce = 8
	if block.Transactions[0].Amount != 40 || block.Header.Nonce != 7 {
		t.Fatalf("TestDomainBlock_Clone: mutating the clone changed the original")
	}
	if block.Equal(blockClone) {
		t.Fatalf("TestDomainBlock_Clone: Expected mutated clone to differ from the original")
	}
}

func TestDomainBlock_IsGenesis(t *testing.T) {
	block := testBaseBlock()
	if block.IsGenesis() {
		t.Fatalf("TestDomainBlock_IsGenesis: Expected a block with a non-zero previous hash not to be genesis")
	}
	block.Header.PreviousHash = &DomainHash{}
	if !block.IsGenesis() {
		t.Fatalf("TestDomainBlock_IsGenesis: Expected a block with a zero previous hash to be genesis")
	}
}

func TestPublicIdentityString(t *testing.T) {
	identity := PublicIdentity{0xde, 0xad, 0xbe, 0xef}
	parsed, err := NewPublicIdentityFromString(identity.String())
	if err != nil {
		t.Fatalf("TestPublicIdentityString: NewPublicIdentityFromString: %s", err)
	}
	if parsed != identity {
		t.Fatalf("TestPublicIdentityString: Expected %s, found %s", identity, parsed)
	}

	_, err = NewPublicIdentityFromSlice([]byte{1, 2, 3})
	if err == nil {
		t.Fatalf("TestPublicIdentityString: Expected an error for a short identity")
	}
}

func TestDomainTransactionIDIsMinted(t *testing.T) {
	tests := []struct {
		id       DomainTransactionID
		isMinted bool
	}{
		{GenesisTransactionID, false},
		{"0123abcd", false},
		{StakeChangeTransactionIDPrefix + "f47ac10b", true},
		{UnstakeTransactionIDPrefix + "f47ac10b", true},
	}
	for _, test := range tests {
		if test.id.IsMinted() != test.isMinted {
			t.Fatalf("TestDomainTransactionIDIsMinted: %s: Expected %t, found %t", test.id, test.isMinted, !test.isMinted)
		}
	}
}
