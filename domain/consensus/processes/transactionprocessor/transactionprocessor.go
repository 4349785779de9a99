package transactionprocessor

import (
	"sync/atomic"

	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

// TransactionProcessor creates, signs and verifies transactions, and applies
// them to a UTXO ledger.
type TransactionProcessor struct {
	identityProvider        externalapi.IdentityProvider
	contracts               model.ContractRegistry
	minimumTransactionValue uint64

	// sequence makes transaction IDs unique per processor. It only
	// ever increases.
	sequence uint64
}

var _ model.TransactionProcessor = (*TransactionProcessor)(nil)

// New instantiates a new TransactionProcessor. contracts may be nil, in which
// case every contract call is rejected.
func New(identityProvider externalapi.IdentityProvider, contracts model.ContractRegistry,
	minimumTransactionValue uint64) *TransactionProcessor {

	return &TransactionProcessor{
		identityProvider:        identityProvider,
		contracts:               contracts,
		minimumTransactionValue: minimumTransactionValue,
	}
}

func (tp *TransactionProcessor) nextSequence() uint64 {
	return atomic.AddUint64(&tp.sequence, 1)
}

// Create builds an unsigned transaction spending inputs. The ID and outputs
// are assigned when the transaction is processed.
func (tp *TransactionProcessor) Create(sender, recipient externalapi.PublicIdentity, amount uint64,
	inputs []*externalapi.DomainTransactionInput) *externalapi.DomainTransaction {

	return &externalapi.DomainTransaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Inputs:    inputs,
		Outputs:   []*externalapi.DomainOutput{},
	}
}

// CreateContractCall builds an unsigned transaction addressed to the contract
// at contractAddress. It spends no outputs.
func (tp *TransactionProcessor) CreateContractCall(sender, recipient externalapi.PublicIdentity, amount uint64,
	contractAddress *externalapi.DomainHash) *externalapi.DomainTransaction {

	return &externalapi.DomainTransaction{
		ID:        consensushashing.TransactionID(sender, recipient, amount, tp.nextSequence()),
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Inputs:    []*externalapi.DomainTransactionInput{},
		Outputs:   []*externalapi.DomainOutput{},
		Payload:   &externalapi.ContractCall{ContractAddress: contractAddress},
	}
}

// Sign signs the sender, recipient and amount of tx with privateKey
func (tp *TransactionProcessor) Sign(tx *externalapi.DomainTransaction, privateKey *externalapi.PrivateKey) error {
	signature, err := tp.identityProvider.Sign(privateKey, consensushashing.TransactionSigningData(tx))
	if err != nil {
		return errors.Wrapf(err, "failed signing transaction from %s", tx.Sender)
	}
	tx.Signature = signature
	return nil
}

// VerifySignature returns whether tx carries a valid signature by its sender
func (tp *TransactionProcessor) VerifySignature(tx *externalapi.DomainTransaction) bool {
	if len(tx.Signature) == 0 {
		return false
	}
	return tp.identityProvider.Verify(tx.Sender, consensushashing.TransactionSigningData(tx), tx.Signature)
}

// Process validates tx and applies it to ledger. Contract calls are handed
// to the addressed contract and leave the ledger untouched. The genesis
// transaction is accepted as is.
//
// On success tx has its ID assigned, its inputs resolved, and exactly two
// outputs: the amount to the recipient and the change to the sender.
func (tp *TransactionProcessor) Process(tx *externalapi.DomainTransaction, ledger model.UTXOLedger) error {
	if tx.IsGenesis() {
		return nil
	}

	if tx.IsContractCall() {
		return tp.executeContractCall(tx, ledger)
	}

	if !tp.VerifySignature(tx) {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "transaction from %s to %s", tx.Sender, tx.Recipient)
	}

	err := ledger.Update(func(view model.MutableUTXOView) error {
		// Spent outputs are removed from the view as they are resolved, so
		// an input repeated within the transaction resolves only once. The
		// owner of a resolved output is not checked against the sender.
		for _, input := range tx.Inputs {
			output, ok := view.Get(input.ReferencedOutputID)
			if !ok {
				log.Debugf("Input %s of transaction from %s does not resolve; skipping it",
					input.ReferencedOutputID, tx.Sender)
				input.UTXO = nil
				continue
			}
			input.UTXO = output
			view.Remove(output.ID)
		}

		inputsValue := tx.InputsValue()
		if inputsValue < tp.minimumTransactionValue {
			return errors.Wrapf(ruleerrors.ErrInsufficientInputValue,
				"inputs worth %d are below the minimum of %d", inputsValue, tp.minimumTransactionValue)
		}
		if inputsValue < tx.Amount {
			return errors.Wrapf(ruleerrors.ErrSpendTooHigh,
				"inputs worth %d cannot cover an amount of %d", inputsValue, tx.Amount)
		}

		transactionID := consensushashing.TransactionID(tx.Sender, tx.Recipient, tx.Amount, tp.nextSequence())
		outputs := []*externalapi.DomainOutput{
			utxo.NewOutput(tx.Recipient, tx.Amount, transactionID, 0),
			utxo.NewOutput(tx.Sender, inputsValue-tx.Amount, transactionID, 1),
		}
		for _, output := range outputs {
			view.Put(output)
		}

		tx.ID = transactionID
		tx.Outputs = outputs
		return nil
	})
	if err != nil {
		log.Debugf("Rejected transaction from %s to %s: %s", tx.Sender, tx.Recipient, err)
		return err
	}

	log.Debugf("Applied transaction %s: %d from %s to %s", tx.ID, tx.Amount, tx.Sender, tx.Recipient)
	return nil
}

func (tp *TransactionProcessor) executeContractCall(tx *externalapi.DomainTransaction, view model.UTXOView) error {
	if !tp.VerifySignature(tx) {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "contract call from %s", tx.Sender)
	}

	address := tx.Payload.ContractAddress
	if tp.contracts == nil {
		return errors.Wrapf(ruleerrors.ErrUnknownContract, "contract %s", address)
	}
	contract, ok := tp.contracts.Contract(address)
	if !ok {
		return errors.Wrapf(ruleerrors.ErrUnknownContract, "contract %s", address)
	}

	err := contract.Execute(tx, view)
	if err != nil {
		log.Debugf("Contract %s rejected call %s: %s", address, tx.ID, err)
		return err
	}
	log.Debugf("Contract %s executed call %s", address, tx.ID)
	return nil
}
