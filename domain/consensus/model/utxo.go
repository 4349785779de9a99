package model

import "github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"

// UTXOView is a read-only view over a set of unspent outputs
type UTXOView interface {
	Get(outputID *externalapi.DomainHash) (*externalapi.DomainOutput, bool)
	BalanceOf(identity externalapi.PublicIdentity) uint64

	// OutputsOf returns the outputs owned by identity, sorted by ID
	OutputsOf(identity externalapi.PublicIdentity) []*externalapi.DomainOutput
}

// MutableUTXOView is a UTXOView that can be written to
type MutableUTXOView interface {
	UTXOView
	Put(output *externalapi.DomainOutput)
	Remove(outputID *externalapi.DomainHash)
}

// UTXOLedger is the set of all unspent outputs. Update is its atomic write
// path: changes made through the view passed to the callback become visible
// to readers all at once, and only if the callback returns nil.
type UTXOLedger interface {
	MutableUTXOView
	Update(func(view MutableUTXOView) error) error
	Clone() UTXOLedger
	Commitment() *externalapi.DomainHash
	Len() int
}
