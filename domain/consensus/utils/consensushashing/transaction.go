package consensushashing

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/hashes"
	"github.com/ledgersim/ledgersim/util/binaryserializer"
	"github.com/pkg/errors"
)

// TransactionHash returns the hash of every field of the transaction,
// including its signature and resolved outputs. Block merkle roots commit to
// these hashes.
func TransactionHash(tx *externalapi.DomainTransaction) *externalapi.DomainHash {
	writer := hashes.NewTransactionHashWriter()
	err := serializeTransaction(writer, tx)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		panic(errors.Wrap(err, "TransactionHash() failed. this should never fail for structurally-valid transactions"))
	}
	return writer.Finalize()
}

// TransactionID derives the ID of a transaction from its parties, its amount
// and a sequence number unique to the processor issuing it.
func TransactionID(sender, recipient externalapi.PublicIdentity, amount uint64,
	sequence uint64) externalapi.DomainTransactionID {

	writer := hashes.NewTransactionIDWriter()
	writer.InfallibleWrite(sender[:])
	writer.InfallibleWrite(recipient[:])
	infallible(binaryserializer.PutUint64(writer, amount))
	infallible(binaryserializer.PutUint64(writer, sequence))
	return externalapi.DomainTransactionID(hex.EncodeToString(writer.Finalize().ByteSlice()))
}

// OutputID derives the ID of the index'th output created by the transaction
// originatingTransactionID.
func OutputID(owner externalapi.PublicIdentity, value uint64,
	originatingTransactionID externalapi.DomainTransactionID, index uint32) *externalapi.DomainHash {

	writer := hashes.NewOutputIDWriter()
	writer.InfallibleWrite(owner[:])
	infallible(binaryserializer.PutUint64(writer, value))
	infallible(binaryserializer.PutVarBytes(writer, []byte(originatingTransactionID)))
	infallible(binaryserializer.PutUint32(writer, index))
	return writer.Finalize()
}

// TransactionSigningData returns the bytes a sender signs: the sender
// identity, the recipient identity and the amount.
func TransactionSigningData(tx *externalapi.DomainTransaction) []byte {
	data := make([]byte, 0, 2*externalapi.PublicIdentitySize+8)
	data = append(data, tx.Sender[:]...)
	data = append(data, tx.Recipient[:]...)
	return binary.LittleEndian.AppendUint64(data, tx.Amount)
}

func serializeTransaction(w io.Writer, tx *externalapi.DomainTransaction) error {
	err := binaryserializer.PutVarBytes(w, []byte(tx.ID))
	if err != nil {
		return err
	}
	_, err = w.Write(tx.Sender[:])
	if err != nil {
		return err
	}
	_, err = w.Write(tx.Recipient[:])
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, tx.Amount)
	if err != nil {
		return err
	}

	err = binaryserializer.PutUint32(w, uint32(len(tx.Inputs)))
	if err != nil {
		return err
	}
	for _, input := range tx.Inputs {
		_, err = w.Write(input.ReferencedOutputID.ByteSlice())
		if err != nil {
			return err
		}
	}

	err = binaryserializer.PutUint32(w, uint32(len(tx.Outputs)))
	if err != nil {
		return err
	}
	for _, output := range tx.Outputs {
		_, err = w.Write(output.ID.ByteSlice())
		if err != nil {
			return err
		}
		_, err = w.Write(output.Owner[:])
		if err != nil {
			return err
		}
		err = binaryserializer.PutUint64(w, output.Value)
		if err != nil {
			return err
		}
	}

	err = binaryserializer.PutVarBytes(w, tx.Signature)
	if err != nil {
		return err
	}

	if tx.Payload == nil {
		return binaryserializer.PutUint8(w, 0)
	}
	err = binaryserializer.PutUint8(w, 1)
	if err != nil {
		return err
	}
	_, err = w.Write(tx.Payload.ContractAddress.ByteSlice())
	return err
}

func infallible(err error) {
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}
}
