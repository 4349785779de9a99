package stakemanager

import (
	"sync"

	"github.com/google/uuid"
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

// StakeManager keeps the stake of every identity and the votes cast for
// delegates. Staking takes value out of the UTXO ledger and unstaking puts it
// back as freshly minted outputs.
type StakeManager struct {
	lock   sync.RWMutex
	ledger model.UTXOLedger

	stakes     map[externalapi.PublicIdentity]uint64
	delegates  []*externalapi.Delegate
	votesGiven map[externalapi.PublicIdentity]map[externalapi.PublicIdentity]uint64

	// mintedOutputs holds every output created outside of a transaction, in
	// creation order. Chain validation needs them to resolve spends.
	mintedOutputs []*externalapi.DomainOutput
}

var _ model.StakeView = (*StakeManager)(nil)

// New instantiates a new StakeManager over ledger
func New(ledger model.UTXOLedger) *StakeManager {
	return &StakeManager{
		ledger:     ledger,
		stakes:     make(map[externalapi.PublicIdentity]uint64),
		votesGiven: make(map[externalapi.PublicIdentity]map[externalapi.PublicIdentity]uint64),
	}
}

// Stake locks amount of identity's spendable value as stake. Outputs are
// consumed in ID order until amount is covered, and whatever exceeds amount
// is returned to identity as a minted change output, so the balance drops by
// exactly amount.
func (sm *StakeManager) Stake(identity externalapi.PublicIdentity, amount uint64) error {
	sm.lock.Lock()
	defer sm.lock.Unlock()

	var change *externalapi.DomainOutput
	err := sm.ledger.Update(func(view model.MutableUTXOView) error {
		balance := view.BalanceOf(identity)
		if balance < amount {
			return errors.Wrapf(ruleerrors.ErrInsufficientBalance,
				"%s holds %d, cannot stake %d", identity, balance, amount)
		}

		covered := uint64(0)
		for _, output := range view.OutputsOf(identity) {
			if covered >= amount {
				break
			}
			view.Remove(output.ID)
			covered += output.Value
		}

		if covered > amount {
			change = mintOutput(identity, covered-amount, externalapi.StakeChangeTransactionIDPrefix)
			view.Put(change)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if change != nil {
		sm.mintedOutputs = append(sm.mintedOutputs, change)
	}
	sm.stakes[identity] += amount
	log.Debugf("%s staked %d, stake is now %d", identity, amount, sm.stakes[identity])
	return nil
}

// Unstake releases amount of identity's stake back into the ledger as a
// minted output
func (sm *StakeManager) Unstake(identity externalapi.PublicIdentity, amount uint64) (*externalapi.DomainOutput, error) {
	sm.lock.Lock()
	defer sm.lock.Unlock()

	stake := sm.stakes[identity]
	if stake < amount {
		return nil, errors.Wrapf(ruleerrors.ErrInsufficientStake,
			"%s has a stake of %d, cannot unstake %d", identity, stake, amount)
	}

	output := mintOutput(identity, amount, externalapi.UnstakeTransactionIDPrefix)
	sm.ledger.Put(output)
	sm.mintedOutputs = append(sm.mintedOutputs, output)
	sm.stakes[identity] = stake - amount
	log.Debugf("%s unstaked %d into output %s", identity, amount, output.ID)
	return output, nil
}

func mintOutput(owner externalapi.PublicIdentity, value uint64, prefix string) *externalapi.DomainOutput {
	transactionID := externalapi.DomainTransactionID(prefix + uuid.New().String())
	return utxo.NewOutput(owner, value, transactionID, 0)
}

// StakeOf returns the stake identity currently holds
func (sm *StakeManager) StakeOf(identity externalapi.PublicIdentity) uint64 {
	sm.lock.RLock()
	defer sm.lock.RUnlock()

	return sm.stakes[identity]
}

// Candidates returns the stake of each of identities, in the same order
func (sm *StakeManager) Candidates(identities []externalapi.PublicIdentity) []*externalapi.StakeCandidate {
	sm.lock.RLock()
	defer sm.lock.RUnlock()

	candidates := make([]*externalapi.StakeCandidate, len(identities))
	for i, identity := range identities {
		candidates[i] = &externalapi.StakeCandidate{Identity: identity, Stake: sm.stakes[identity]}
	}
	return candidates
}

// RegisterDelegate makes identity eligible to receive votes. Registering an
// identity twice has no effect.
func (sm *StakeManager) RegisterDelegate(identity externalapi.PublicIdentity) {
	sm.lock.Lock()
	defer sm.lock.Unlock()

	if sm.delegate(identity) != nil {
		return
	}
	sm.delegates = append(sm.delegates, &externalapi.Delegate{Identity: identity})
	log.Debugf("Registered delegate %s", identity)
}

func (sm *StakeManager) delegate(identity externalapi.PublicIdentity) *externalapi.Delegate {
	for _, delegate := range sm.delegates {
		if delegate.Identity == identity {
			return delegate
		}
	}
	return nil
}

// Vote casts votes of voter's stake for delegate. The votes are taken out of
// voter's stake.
func (sm *StakeManager) Vote(voter, delegateIdentity externalapi.PublicIdentity, votes uint64) error {
	sm.lock.Lock()
	defer sm.lock.Unlock()

	delegate := sm.delegate(delegateIdentity)
	if delegate == nil {
		return errors.Errorf("%s is not a registered delegate", delegateIdentity)
	}

	stake := sm.stakes[voter]
	if stake < votes {
		return errors.Wrapf(ruleerrors.ErrInsufficientStake,
			"%s has a stake of %d, cannot cast %d votes", voter, stake, votes)
	}

	delegate.Votes += votes
	sm.stakes[voter] = stake - votes
	given, ok := sm.votesGiven[voter]
	if !ok {
		given = make(map[externalapi.PublicIdentity]uint64)
		sm.votesGiven[voter] = given
	}
	given[delegateIdentity] += votes

	log.Debugf("%s cast %d votes for %s, who now has %d", voter, votes, delegateIdentity, delegate.Votes)
	return nil
}

// Delegates returns copies of the registered delegates in registration order
func (sm *StakeManager) Delegates() []*externalapi.Delegate {
	sm.lock.RLock()
	defer sm.lock.RUnlock()

	delegates := make([]*externalapi.Delegate, len(sm.delegates))
	for i, delegate := range sm.delegates {
		delegates[i] = delegate.Clone()
	}
	return delegates
}

// VotesGiven returns the votes voter cast, per delegate
func (sm *StakeManager) VotesGiven(voter externalapi.PublicIdentity) map[externalapi.PublicIdentity]uint64 {
	sm.lock.RLock()
	defer sm.lock.RUnlock()

	given := make(map[externalapi.PublicIdentity]uint64, len(sm.votesGiven[voter]))
	for delegate, votes := range sm.votesGiven[voter] {
		given[delegate] = votes
	}
	return given
}

// MintedOutputs returns the outputs created by staking and unstaking
func (sm *StakeManager) MintedOutputs() []*externalapi.DomainOutput {
	sm.lock.RLock()
	defer sm.lock.RUnlock()

	minted := make([]*externalapi.DomainOutput, len(sm.mintedOutputs))
	copy(minted, sm.mintedOutputs)
	return minted
}
