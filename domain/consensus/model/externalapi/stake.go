package externalapi

// StakeCandidate is an identity competing for proof-of-stake validation
type StakeCandidate struct {
	Identity PublicIdentity
	Stake    uint64
}

// Delegate is an identity that accumulates votes in order to produce
// delegated proof-of-stake blocks
type Delegate struct {
	Identity PublicIdentity
	Votes    uint64
}

// Clone returns a clone of Delegate
func (delegate *Delegate) Clone() *Delegate {
	return &Delegate{
		Identity: delegate.Identity,
		Votes:    delegate.Votes,
	}
}
