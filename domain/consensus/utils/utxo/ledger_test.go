package utxo

import (
	"sync"
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

var (
	alice = externalapi.PublicIdentity{0xa1}
	bob   = externalapi.PublicIdentity{0xb0}
)

func TestLedgerBasics(t *testing.T) {
	ledger := New()
	first := NewOutput(alice, 1000, externalapi.GenesisTransactionID, 0)
	second := NewOutput(alice, 50, "tx", 1)
	third := NewOutput(bob, 40, "tx", 0)

	ledger.Put(first)
	ledger.Put(second)
	ledger.Put(third)

	if ledger.Len() != 3 {
		t.Fatalf("TestLedgerBasics: Expected 3 outputs, found %d", ledger.Len())
	}
	if balance := ledger.BalanceOf(alice); balance != 1050 {
		t.Fatalf("TestLedgerBasics: Expected alice's balance to be 1050, found %d", balance)
	}
	if balance := ledger.BalanceOf(externalapi.PublicIdentity{0xff}); balance != 0 {
		t.Fatalf("TestLedgerBasics: Expected an unknown identity's balance to be 0, found %d", balance)
	}

	got, ok := ledger.Get(third.ID)
	if !ok || !got.Equal(third) {
		t.Fatalf("TestLedgerBasics: Expected to get %s, found %v", third, got)
	}

	aliceOutputs := ledger.OutputsOf(alice)
	if len(aliceOutputs) != 2 || !aliceOutputs[0].ID.Less(aliceOutputs[1].ID) {
		t.Fatalf("TestLedgerBasics: Expected alice's two outputs sorted by ID, found %v", aliceOutputs)
	}

	ledger.Remove(first.ID)
	ledger.Remove(first.ID)
	if _, ok := ledger.Get(first.ID); ok {
		t.Fatalf("TestLedgerBasics: Expected removed output to be absent")
	}
	if balance := ledger.BalanceOf(alice); balance != 50 {
		t.Fatalf("TestLedgerBasics: Expected alice's balance to be 50, found %d", balance)
	}
}

func TestUpdateIsAtomic(t *testing.T) {
	ledger := New()
	genesis := NewOutput(alice, 1000, externalapi.GenesisTransactionID, 0)
	ledger.Put(genesis)
	commitmentBefore := ledger.Commitment()

	errRejected := errors.New("rejected")
	err := ledger.Update(func(view model.MutableUTXOView) error {
		view.Remove(genesis.ID)
		view.Put(NewOutput(bob, 1000, "tx", 0))
		if _, ok := view.Get(genesis.ID); ok {
			t.Fatalf("TestUpdateIsAtomic: Expected the view to reflect its own removal")
		}
		if view.BalanceOf(bob) != 1000 {
			t.Fatalf("TestUpdateIsAtomic: Expected the view to reflect its own insertion")
		}
		return errRejected
	})
	if !errors.Is(err, errRejected) {
		t.Fatalf("TestUpdateIsAtomic: Expected errRejected, found %v", err)
	}

	if ledger.BalanceOf(alice) != 1000 || ledger.BalanceOf(bob) != 0 {
		t.Fatalf("TestUpdateIsAtomic: Expected a failed update to leave the ledger untouched, found %s", ledger)
	}
	if !ledger.Commitment().Equal(commitmentBefore) {
		t.Fatalf("TestUpdateIsAtomic: Expected a failed update to leave the commitment untouched")
	}
}

func TestCommitmentIsOrderIndependent(t *testing.T) {
	outputs := []*externalapi.DomainOutput{
		NewOutput(alice, 1, "a", 0),
		NewOutput(bob, 2, "b", 0),
		NewOutput(alice, 3, "c", 1),
	}

	forward := New()
	for _, output := range outputs {
		forward.Put(output)
	}
	backward := New()
	for i := len(outputs) - 1; i >= 0; i-- {
		backward.Put(outputs[i])
	}
	if !forward.Commitment().Equal(backward.Commitment()) {
		t.Fatalf("TestCommitmentIsOrderIndependent: Expected equal commitments for equal content")
	}

	withExtra := forward.Clone()
	extra := NewOutput(bob, 4, "d", 0)
	withExtra.Put(extra)
	if withExtra.Commitment().Equal(forward.Commitment()) {
		t.Fatalf("TestCommitmentIsOrderIndependent: Expected a different commitment after adding an output")
	}
	withExtra.Remove(extra.ID)
	if !withExtra.Commitment().Equal(forward.Commitment()) {
		t.Fatalf("TestCommitmentIsOrderIndependent: Expected removing the output to restore the commitment")
	}

	if !New().Commitment().Equal(New().Commitment()) {
		t.Fatalf("TestCommitmentIsOrderIndependent: Expected empty ledgers to share a commitment")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ledger := New()
	output := NewOutput(alice, 10, "a", 0)
	ledger.Put(output)

	clone := ledger.Clone()
	clone.Remove(output.ID)
	if _, ok := ledger.Get(output.ID); !ok {
		t.Fatalf("TestCloneIsIndependent: Expected removal from the clone not to affect the original")
	}
	if clone.Len() != 0 {
		t.Fatalf("TestCloneIsIndependent: Expected the clone to be empty, found %d outputs", clone.Len())
	}
}

// TestReadersNeverSeePartialUpdates moves value back and forth between two
// identities and checks that concurrent readers always observe the same total.
func TestReadersNeverSeePartialUpdates(t *testing.T) {
	ledger := New()
	current := NewOutput(alice, 100, "seed", 0)
	ledger.Put(current)

	const iterations = 500
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		owners := []externalapi.PublicIdentity{bob, alice}
		for i := 0; i < iterations; i++ {
			next := NewOutput(owners[i%2], 100, externalapi.DomainTransactionID(rune('a'+i%26)), uint32(i))
			spent := current
			err := ledger.Update(func(view model.MutableUTXOView) error {
				view.Remove(spent.ID)
				view.Put(next)
				return nil
			})
			if err != nil {
				t.Errorf("TestReadersNeverSeePartialUpdates: Update: %s", err)
				return
			}
			current = next
		}
	}()

	for reader := 0; reader < 4; reader++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				if ledger.Len() != 1 {
					t.Errorf("TestReadersNeverSeePartialUpdates: Expected exactly one live output, found %d", ledger.Len())
					return
				}
			}
		}()
	}
	wg.Wait()
}
