package merkle

import (
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/consensushashing"
)

func transactions(count int) []*externalapi.DomainTransaction {
	txs := make([]*externalapi.DomainTransaction, count)
	for i := range txs {
		txs[i] = &externalapi.DomainTransaction{
			ID:     externalapi.DomainTransactionID(rune('a' + i)),
			Amount: uint64(i),
		}
	}
	return txs
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, expected int }{
		{1, 1}, {2, 2}, {3, 4}, {5, 8}, {8, 8}, {9, 16},
	}
	for _, test := range tests {
		if result := nextPowerOfTwo(test.in); result != test.expected {
			t.Fatalf("TestNextPowerOfTwo: nextPowerOfTwo(%d): Expected %d, found %d", test.in, test.expected, result)
		}
	}
}

func TestCalculateHashMerkleRoot(t *testing.T) {
	if !CalculateHashMerkleRoot(nil).IsZero() {
		t.Fatalf("TestCalculateHashMerkleRoot: Expected the zero hash for an empty block")
	}

	single := transactions(1)
	if !CalculateHashMerkleRoot(single).Equal(consensushashing.TransactionHash(single[0])) {
		t.Fatalf("TestCalculateHashMerkleRoot: Expected the root of a single transaction to be its hash")
	}

	pair := transactions(2)
	expected := hashMerkleBranches(consensushashing.TransactionHash(pair[0]), consensushashing.TransactionHash(pair[1]))
	if !CalculateHashMerkleRoot(pair).Equal(expected) {
		t.Fatalf("TestCalculateHashMerkleRoot: Expected %s, found %s", expected, CalculateHashMerkleRoot(pair))
	}

	three := transactions(3)
	root := CalculateHashMerkleRoot(three)
	three[2].Amount = 100
	if CalculateHashMerkleRoot(three).Equal(root) {
		t.Fatalf("TestCalculateHashMerkleRoot: Expected a changed transaction to change the root")
	}
}
