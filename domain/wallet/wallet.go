package wallet

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/identity"
	"github.com/pkg/errors"
)

// TransactionSigner creates and signs the transactions a wallet issues
type TransactionSigner interface {
	Create(sender, recipient externalapi.PublicIdentity, amount uint64,
		inputs []*externalapi.DomainTransactionInput) *externalapi.DomainTransaction
	CreateContractCall(sender, recipient externalapi.PublicIdentity, amount uint64,
		contractAddress *externalapi.DomainHash) *externalapi.DomainTransaction
	Sign(tx *externalapi.DomainTransaction, privateKey *externalapi.PrivateKey) error
}

// Wallet holds a key pair and issues signed transactions on its behalf
type Wallet struct {
	identity   externalapi.PublicIdentity
	privateKey *externalapi.PrivateKey
}

// New creates a wallet over a freshly generated key pair
func New(provider externalapi.IdentityProvider) (*Wallet, error) {
	publicIdentity, privateKey, err := provider.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "failed generating wallet key")
	}
	return &Wallet{identity: publicIdentity, privateKey: privateKey}, nil
}

// FromMnemonic restores the index'th wallet of mnemonic
func FromMnemonic(mnemonic string, index uint32) (*Wallet, error) {
	publicIdentity, privateKey, err := identity.KeyFromMnemonic(mnemonic, index)
	if err != nil {
		return nil, err
	}
	return &Wallet{identity: publicIdentity, privateKey: privateKey}, nil
}

// Identity returns the public identity of the wallet
func (w *Wallet) Identity() externalapi.PublicIdentity {
	return w.identity
}

// Balance returns the spendable value the wallet owns in view
func (w *Wallet) Balance(view model.UTXOView) uint64 {
	return view.BalanceOf(w.identity)
}

// SendFunds builds and signs a transaction paying amount to recipient. Owned
// outputs are selected in ID order until they cover amount. The transaction
// still has to be processed to take effect.
func (w *Wallet) SendFunds(signer TransactionSigner, view model.UTXOView,
	recipient externalapi.PublicIdentity, amount uint64) (*externalapi.DomainTransaction, error) {

	balance := w.Balance(view)
	if balance < amount {
		return nil, errors.Wrapf(ruleerrors.ErrInsufficientBalance,
			"%s holds %d, cannot send %d", w.identity, balance, amount)
	}

	var inputs []*externalapi.DomainTransactionInput
	selected := uint64(0)
	for _, output := range view.OutputsOf(w.identity) {
		if selected >= amount && len(inputs) > 0 {
			break
		}
		inputs = append(inputs, &externalapi.DomainTransactionInput{ReferencedOutputID: output.ID})
		selected += output.Value
	}

	tx := signer.Create(w.identity, recipient, amount, inputs)
	err := signer.Sign(tx, w.privateKey)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s sends %d to %s spending %d outputs worth %d", w.identity, amount, recipient, len(inputs), selected)
	return tx, nil
}

// CallContract builds and signs a call to the contract at contractAddress
// asking it to move amount to recipient
func (w *Wallet) CallContract(signer TransactionSigner, contractAddress *externalapi.DomainHash,
	recipient externalapi.PublicIdentity, amount uint64) (*externalapi.DomainTransaction, error) {

	tx := signer.CreateContractCall(w.identity, recipient, amount, contractAddress)
	err := signer.Sign(tx, w.privateKey)
	if err != nil {
		return nil, err
	}
	log.Debugf("%s calls contract %s to move %d to %s", w.identity, contractAddress, amount, recipient)
	return tx, nil
}
