package utxo

import (
	"bytes"
	"sync"

	"github.com/kaspanet/go-muhash"
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/ledgersim/ledgersim/util/binaryserializer"
	"github.com/pkg/errors"
)

// Ledger is the set of unspent outputs. It is safe for concurrent use.
//
// All writes go through Update, which stages changes in a diff and applies
// it under a single write lock, so readers never observe a transaction's
// new outputs while its spent inputs are still present.
type Ledger struct {
	lock       sync.RWMutex
	outputs    utxoCollection
	commitment *muhash.MuHash
}

var _ model.UTXOLedger = (*Ledger)(nil)

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{
		outputs:    make(utxoCollection),
		commitment: muhash.NewMuHash(),
	}
}

// NewOutput creates the index'th output of the transaction
// originatingTransactionID, deriving its ID from its contents.
func NewOutput(owner externalapi.PublicIdentity, value uint64,
	originatingTransactionID externalapi.DomainTransactionID, index uint32) *externalapi.DomainOutput {

	return &externalapi.DomainOutput{
		ID:                       consensushashing.OutputID(owner, value, originatingTransactionID, index),
		Owner:                    owner,
		Value:                    value,
		OriginatingTransactionID: originatingTransactionID,
		Index:                    index,
	}
}

// Get returns the unspent output with the given ID
func (l *Ledger) Get(outputID *externalapi.DomainHash) (*externalapi.DomainOutput, bool) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.outputs.get(outputID)
}

// BalanceOf sums the values of every unspent output owned by identity
func (l *Ledger) BalanceOf(identity externalapi.PublicIdentity) uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()

	balance := uint64(0)
	for _, output := range l.outputs {
		if output.Owner == identity {
			balance += output.Value
		}
	}
	return balance
}

// OutputsOf returns the unspent outputs owned by identity, sorted by ID
func (l *Ledger) OutputsOf(identity externalapi.PublicIdentity) []*externalapi.DomainOutput {
	l.lock.RLock()
	defer l.lock.RUnlock()

	var outputs []*externalapi.DomainOutput
	for _, output := range l.outputs {
		if output.Owner == identity {
			outputs = append(outputs, output)
		}
	}
	sortOutputs(outputs)
	return outputs
}

// Put inserts a single output
func (l *Ledger) Put(output *externalapi.DomainOutput) {
	// Update fails only if its callback does
	_ = l.Update(func(view model.MutableUTXOView) error {
		view.Put(output)
		return nil
	})
}

// Remove deletes a single output. Removing an absent output is a no-op.
func (l *Ledger) Remove(outputID *externalapi.DomainHash) {
	_ = l.Update(func(view model.MutableUTXOView) error {
		view.Remove(outputID)
		return nil
	})
}

// Update runs updateFunc against a staging view of the ledger and applies
// the staged changes atomically if updateFunc returns nil. The ledger is
// write-locked for the duration of updateFunc, so updateFunc must use only
// the view it is given.
func (l *Ledger) Update(updateFunc func(view model.MutableUTXOView) error) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	view := newDiffView(l.outputs)
	err := updateFunc(view)
	if err != nil {
		return err
	}
	if view.isEmpty() {
		return nil
	}

	for _, output := range view.toRemove {
		l.outputs.remove(output.ID)
		l.commitment.Remove(serializeOutput(output))
	}
	for _, output := range view.toAdd {
		if existing, ok := l.outputs.get(output.ID); ok {
			l.commitment.Remove(serializeOutput(existing))
		}
		l.outputs.add(output)
		l.commitment.Add(serializeOutput(output))
	}
	log.Tracef("Committed UTXO diff: %d removed, %d added, %d live outputs",
		len(view.toRemove), len(view.toAdd), len(l.outputs))
	return nil
}

// Clone returns an independent copy of the ledger
func (l *Ledger) Clone() model.UTXOLedger {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return &Ledger{
		outputs:    l.outputs.clone(),
		commitment: l.commitment.Clone(),
	}
}

// Commitment returns a hash of the live output set. It is independent of
// the order in which outputs were added, so two ledgers holding the same
// outputs have the same commitment.
func (l *Ledger) Commitment() *externalapi.DomainHash {
	l.lock.RLock()
	commitment := l.commitment.Clone()
	l.lock.RUnlock()

	finalized := commitment.Finalize()
	return externalapi.NewDomainHashFromByteArray((*[externalapi.DomainHashSize]byte)(&finalized))
}

// Len returns the number of unspent outputs
func (l *Ledger) Len() int {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return len(l.outputs)
}

func (l *Ledger) String() string {
	l.lock.RLock()
	defer l.lock.RUnlock()

	return l.outputs.String()
}

func serializeOutput(output *externalapi.DomainOutput) []byte {
	buf := &bytes.Buffer{}
	buf.Write(output.ID.ByteSlice())
	buf.Write(output.Owner[:])
	err := binaryserializer.PutUint64(buf, output.Value)
	if err == nil {
		err = binaryserializer.PutVarBytes(buf, []byte(output.OriginatingTransactionID))
	}
	if err == nil {
		err = binaryserializer.PutUint32(buf, output.Index)
	}
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. bytes.Buffer writes never fail"))
	}
	return buf.Bytes()
}
