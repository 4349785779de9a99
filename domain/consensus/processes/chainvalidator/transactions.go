package chainvalidator

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/pkg/errors"
)

const (
	recipientOutputIndex = 0
	changeOutputIndex    = 1
)

func (cv *ChainValidator) validateTransactions(block *externalapi.DomainBlock, snapshot model.UTXOLedger) error {
	for i, tx := range block.Transactions {
		err := cv.validateTransaction(tx, snapshot)
		if err != nil {
			return errors.Wrapf(err, "transaction %d (%s)", i, tx.ID)
		}
	}
	return nil
}

func (cv *ChainValidator) validateTransaction(tx *externalapi.DomainTransaction, snapshot model.UTXOLedger) error {
	if !cv.transactionProcessor.VerifySignature(tx) {
		return errors.Wrapf(ruleerrors.ErrInvalidSignature, "signature by %s does not verify", tx.Sender)
	}

	// Contract calls move token balances only; they neither spend nor
	// create outputs.
	if tx.IsContractCall() {
		return nil
	}

	err := checkAmounts(tx)
	if err != nil {
		return err
	}
	err = checkOutputOwners(tx)
	if err != nil {
		return err
	}

	return snapshot.Update(func(view model.MutableUTXOView) error {
		err := spendInputs(tx, view)
		if err != nil {
			return err
		}
		for _, output := range tx.Outputs {
			view.Put(output)
		}
		return nil
	})
}

func checkAmounts(tx *externalapi.DomainTransaction) error {
	inputsValue, outputsValue := tx.InputsValue(), tx.OutputsValue()
	if inputsValue != outputsValue {
		return errors.Wrapf(ruleerrors.ErrAmountMismatch,
			"inputs are worth %d while outputs are worth %d", inputsValue, outputsValue)
	}
	if len(tx.Outputs) != 2 || tx.Outputs[recipientOutputIndex].Value != tx.Amount {
		return errors.Wrapf(ruleerrors.ErrAmountMismatch,
			"outputs do not pay the signed amount of %d to the recipient", tx.Amount)
	}
	return nil
}

func checkOutputOwners(tx *externalapi.DomainTransaction) error {
	if tx.Outputs[recipientOutputIndex].Owner != tx.Recipient {
		return errors.Wrapf(ruleerrors.ErrWrongOutputOwner,
			"output %d belongs to %s instead of the recipient %s",
			recipientOutputIndex, tx.Outputs[recipientOutputIndex].Owner, tx.Recipient)
	}
	if tx.Outputs[changeOutputIndex].Owner != tx.Sender {
		return errors.Wrapf(ruleerrors.ErrWrongOutputOwner,
			"change output belongs to %s instead of the sender %s",
			tx.Outputs[changeOutputIndex].Owner, tx.Sender)
	}
	return nil
}

// spendInputs removes every output tx spends from view. Every input must
// resolve against view to the output it recorded, including inputs the
// transaction processor let through unresolved.
func spendInputs(tx *externalapi.DomainTransaction, view model.MutableUTXOView) error {
	var missingOutputIDs []*externalapi.DomainHash
	for _, input := range tx.Inputs {
		output, ok := view.Get(input.ReferencedOutputID)
		if !ok || input.UTXO == nil || !output.Equal(input.UTXO) {
			missingOutputIDs = append(missingOutputIDs, input.ReferencedOutputID)
			continue
		}
		view.Remove(output.ID)
	}

	if len(missingOutputIDs) > 0 {
		return ruleerrors.NewErrMissingTxOut(missingOutputIDs)
	}
	return nil
}
