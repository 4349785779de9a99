package utxo

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
)

// diffView stages changes on top of a base collection. The base is never
// written to; the staged diff is applied by the owning ledger on commit.
type diffView struct {
	base     utxoCollection
	toAdd    utxoCollection
	toRemove utxoCollection
}

var _ model.MutableUTXOView = (*diffView)(nil)

func newDiffView(base utxoCollection) *diffView {
	return &diffView{
		base:     base,
		toAdd:    make(utxoCollection),
		toRemove: make(utxoCollection),
	}
}

func (dv *diffView) Get(outputID *externalapi.DomainHash) (*externalapi.DomainOutput, bool) {
	if output, ok := dv.toAdd.get(outputID); ok {
		return output, true
	}
	if dv.toRemove.contains(outputID) {
		return nil, false
	}
	return dv.base.get(outputID)
}

func (dv *diffView) Put(output *externalapi.DomainOutput) {
	dv.toRemove.remove(output.ID)
	dv.toAdd.add(output)
}

func (dv *diffView) Remove(outputID *externalapi.DomainHash) {
	if dv.toAdd.contains(outputID) {
		dv.toAdd.remove(outputID)
	}
	if output, ok := dv.base.get(outputID); ok {
		dv.toRemove.add(output)
	}
}

func (dv *diffView) BalanceOf(identity externalapi.PublicIdentity) uint64 {
	balance := uint64(0)
	for _, output := range dv.OutputsOf(identity) {
		balance += output.Value
	}
	return balance
}

func (dv *diffView) OutputsOf(identity externalapi.PublicIdentity) []*externalapi.DomainOutput {
	var outputs []*externalapi.DomainOutput
	for id, output := range dv.base {
		if output.Owner != identity || dv.toRemove.contains(&id) || dv.toAdd.contains(&id) {
			continue
		}
		outputs = append(outputs, output)
	}
	for _, output := range dv.toAdd {
		if output.Owner == identity {
			outputs = append(outputs, output)
		}
	}
	sortOutputs(outputs)
	return outputs
}

func (dv *diffView) isEmpty() bool {
	return len(dv.toAdd) == 0 && len(dv.toRemove) == 0
}
