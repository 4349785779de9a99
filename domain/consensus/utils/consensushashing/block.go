package consensushashing

import (
	"io"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/hashes"
	"github.com/ledgersim/ledgersim/util/binaryserializer"
	"github.com/pkg/errors"
)

// BlockHash returns the given block's hash
func BlockHash(block *externalapi.DomainBlock) *externalapi.DomainHash {
	return HeaderHash(block.Header)
}

// HeaderHash returns the given header's hash
func HeaderHash(header *externalapi.DomainBlockHeader) *externalapi.DomainHash {
	// Encode the header and hash everything prior to the number of
	// transactions.
	writer := hashes.NewBlockHashWriter()
	err := serializeHeader(writer, header)
	if err != nil {
		// It seems like this could only happen if the writer returned an error.
		// and this writer should never return an error (no allocations or possible failures)
		panic(errors.Wrap(err, "this should never happen. Hash digest should never return an error"))
	}

	return writer.Finalize()
}

func serializeHeader(w io.Writer, header *externalapi.DomainBlockHeader) error {
	_, err := w.Write(header.PreviousHash.ByteSlice())
	if err != nil {
		return err
	}
	err = binaryserializer.PutInt64(w, header.TimeInMilliseconds)
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint64(w, header.Nonce)
	if err != nil {
		return err
	}
	_, err = w.Write(header.MerkleRoot.ByteSlice())
	if err != nil {
		return err
	}
	err = binaryserializer.PutUint8(w, uint8(header.Producer.Kind))
	if err != nil {
		return err
	}
	_, err = w.Write(header.Producer.Identity[:])
	return err
}

// ContractAddress derives the address of the contract deployed by creator as
// its sequence'th deployment.
func ContractAddress(creator externalapi.PublicIdentity, sequence uint64) *externalapi.DomainHash {
	writer := hashes.NewContractAddressWriter()
	writer.InfallibleWrite(creator[:])
	infallible(binaryserializer.PutUint64(writer, sequence))
	return writer.Finalize()
}
