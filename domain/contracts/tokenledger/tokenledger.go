package tokenledger

import (
	"sync"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/contracts"
	"github.com/pkg/errors"
)

// TokenLedger is a fungible token contract. Its balances are independent of
// the UTXO ledger. A failed operation leaves every balance and allowance
// unchanged.
type TokenLedger struct {
	lock sync.RWMutex

	address     *externalapi.DomainHash
	creator     externalapi.PublicIdentity
	name        string
	symbol      string
	totalSupply uint64

	balances   map[externalapi.PublicIdentity]uint64
	allowances map[externalapi.PublicIdentity]map[externalapi.PublicIdentity]uint64
}

var _ model.Contract = (*TokenLedger)(nil)

// New creates a token ledger at address whose creator holds the entire supply
func New(address *externalapi.DomainHash, creator externalapi.PublicIdentity,
	name, symbol string, totalSupply uint64) *TokenLedger {

	return &TokenLedger{
		address:     address,
		creator:     creator,
		name:        name,
		symbol:      symbol,
		totalSupply: totalSupply,
		balances:    map[externalapi.PublicIdentity]uint64{creator: totalSupply},
		allowances:  make(map[externalapi.PublicIdentity]map[externalapi.PublicIdentity]uint64),
	}
}

// Deploy creates a token ledger and registers it in registry
func Deploy(registry *contracts.Registry, creator externalapi.PublicIdentity,
	name, symbol string, totalSupply uint64) *TokenLedger {

	contract := registry.Deploy(creator, func(address *externalapi.DomainHash) model.Contract {
		return New(address, creator, name, symbol, totalSupply)
	})
	return contract.(*TokenLedger)
}

// Address returns the address the token is deployed at
func (tl *TokenLedger) Address() *externalapi.DomainHash {
	return tl.address
}

// Creator returns the identity that deployed the token
func (tl *TokenLedger) Creator() externalapi.PublicIdentity {
	return tl.creator
}

// Name returns the token's name
func (tl *TokenLedger) Name() string {
	return tl.name
}

// Symbol returns the token's ticker symbol
func (tl *TokenLedger) Symbol() string {
	return tl.symbol
}

// TotalSupply returns the number of tokens minted on creation
func (tl *TokenLedger) TotalSupply() uint64 {
	return tl.totalSupply
}

// BalanceOf returns the token balance of identity, zero if unknown
func (tl *TokenLedger) BalanceOf(identity externalapi.PublicIdentity) uint64 {
	tl.lock.RLock()
	defer tl.lock.RUnlock()

	return tl.balances[identity]
}

// Transfer moves amount tokens from sender to recipient
func (tl *TokenLedger) Transfer(sender, recipient externalapi.PublicIdentity, amount uint64) error {
	tl.lock.Lock()
	defer tl.lock.Unlock()

	err := tl.move(sender, recipient, amount)
	if err != nil {
		return err
	}
	log.Debugf("%s: transferred %d from %s to %s", tl.symbol, amount, sender, recipient)
	return nil
}

// Approve sets the number of tokens spender may move out of owner's
// balance, overwriting any previous allowance.
func (tl *TokenLedger) Approve(owner, spender externalapi.PublicIdentity, amount uint64) {
	tl.lock.Lock()
	defer tl.lock.Unlock()

	ownerAllowances, ok := tl.allowances[owner]
	if !ok {
		ownerAllowances = make(map[externalapi.PublicIdentity]uint64)
		tl.allowances[owner] = ownerAllowances
	}
	ownerAllowances[spender] = amount
	log.Debugf("%s: %s approved %s to spend %d", tl.symbol, owner, spender, amount)
}

// Allowance returns the number of tokens spender may still move out of
// owner's balance
func (tl *TokenLedger) Allowance(owner, spender externalapi.PublicIdentity) uint64 {
	tl.lock.RLock()
	defer tl.lock.RUnlock()

	return tl.allowances[owner][spender]
}

// TransferFrom moves amount tokens from sender to recipient on behalf of
// spender, consuming spender's allowance.
func (tl *TokenLedger) TransferFrom(sender, recipient, spender externalapi.PublicIdentity, amount uint64) error {
	tl.lock.Lock()
	defer tl.lock.Unlock()

	allowance := tl.allowances[sender][spender]
	if allowance < amount {
		return errors.Wrapf(ruleerrors.ErrInsufficientAllowance,
			"%s may spend %d of %s's %s, not %d", spender, allowance, sender, tl.symbol, amount)
	}

	err := tl.move(sender, recipient, amount)
	if err != nil {
		return err
	}
	tl.allowances[sender][spender] = allowance - amount
	log.Debugf("%s: %s transferred %d from %s to %s", tl.symbol, spender, amount, sender, recipient)
	return nil
}

// Execute applies a contract-call transaction as a transfer of tx.Amount
// tokens from tx.Sender to tx.Recipient.
func (tl *TokenLedger) Execute(tx *externalapi.DomainTransaction, _ model.UTXOView) error {
	return tl.Transfer(tx.Sender, tx.Recipient, tx.Amount)
}

func (tl *TokenLedger) move(sender, recipient externalapi.PublicIdentity, amount uint64) error {
	balance := tl.balances[sender]
	if balance < amount {
		return errors.Wrapf(ruleerrors.ErrInsufficientBalance,
			"%s holds %d %s, cannot transfer %d", sender, balance, tl.symbol, amount)
	}
	tl.balances[sender] = balance - amount
	tl.balances[recipient] += amount
	return nil
}
