package hashes

import (
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
)

func TestDomainSeparation(t *testing.T) {
	data := []byte("ledger")
	writers := map[string]HashWriter{
		"transaction hash": NewTransactionHashWriter(),
		"transaction id":   NewTransactionIDWriter(),
		"output id":        NewOutputIDWriter(),
		"signature data":   NewSignatureDataWriter(),
		"block hash":       NewBlockHashWriter(),
		"merkle branch":    NewMerkleBranchHashWriter(),
		"contract address": NewContractAddressWriter(),
	}

	seen := make(map[externalapi.DomainHash]string)
	for name, writer := range writers {
		writer.InfallibleWrite(data)
		hash := writer.Finalize()
		if other, ok := seen[*hash]; ok {
			t.Fatalf("TestDomainSeparation: %s and %s produced the same hash %s", name, other, hash)
		}
		seen[*hash] = name
	}
}

func TestFinalizeIsDeterministic(t *testing.T) {
	first := NewBlockHashWriter()
	first.InfallibleWrite([]byte{1, 2, 3})
	second := NewBlockHashWriter()
	second.InfallibleWrite([]byte{1, 2})
	second.InfallibleWrite([]byte{3})

	if !first.Finalize().Equal(second.Finalize()) {
		t.Fatalf("TestFinalizeIsDeterministic: Expected incremental writes to produce the same hash")
	}
}

func TestHasLeadingCharacters(t *testing.T) {
	hash, err := externalapi.NewDomainHashFromString("000a" + "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("TestHasLeadingCharacters: NewDomainHashFromString: %s", err)
	}

	tests := []struct {
		count    int
		expected bool
	}{
		{0, true},
		{1, true},
		{3, true},
		{4, false},
		{65, false},
	}
	for _, test := range tests {
		result := HasLeadingCharacters(hash, '0', test.count)
		if result != test.expected {
			t.Fatalf("TestHasLeadingCharacters: count %d: Expected %t, found %t", test.count, test.expected, result)
		}
	}
}
