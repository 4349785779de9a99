package utxo

import (
	"sort"
	"strings"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
)

type utxoCollection map[externalapi.DomainHash]*externalapi.DomainOutput

// add adds a new output to this collection
func (uc utxoCollection) add(output *externalapi.DomainOutput) {
	uc[*output.ID] = output
}

// remove removes an output from this collection if it exists
func (uc utxoCollection) remove(outputID *externalapi.DomainHash) {
	delete(uc, *outputID)
}

// get returns the output represented by the provided ID,
// and a boolean value indicating if said output is in the set or not
func (uc utxoCollection) get(outputID *externalapi.DomainHash) (*externalapi.DomainOutput, bool) {
	output, ok := uc[*outputID]
	return output, ok
}

// contains returns a boolean value indicating whether an output is in the set
func (uc utxoCollection) contains(outputID *externalapi.DomainHash) bool {
	_, ok := uc[*outputID]
	return ok
}

func (uc utxoCollection) clone() utxoCollection {
	clone := make(utxoCollection, len(uc))
	for id, output := range uc {
		clone[id] = output
	}
	return clone
}

// sortedOutputs returns all outputs of the collection ordered by ID
func (uc utxoCollection) sortedOutputs() []*externalapi.DomainOutput {
	outputs := make([]*externalapi.DomainOutput, 0, len(uc))
	for _, output := range uc {
		outputs = append(outputs, output)
	}
	sortOutputs(outputs)
	return outputs
}

func (uc utxoCollection) String() string {
	outputStrings := make([]string, 0, len(uc))
	for _, output := range uc.sortedOutputs() {
		outputStrings = append(outputStrings, output.String())
	}
	return "[ " + strings.Join(outputStrings, ", ") + " ]"
}

func sortOutputs(outputs []*externalapi.DomainOutput) {
	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].ID.Less(outputs[j].ID)
	})
}
