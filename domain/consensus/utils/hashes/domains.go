package hashes

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	transactionHashDomain = "TransactionHash"
	transactionIDDomain   = "TransactionID"
	outputIDDomain        = "OutputID"
	signatureDataDomain   = "TransactionSigningHash"
	blockHashDomain       = "BlockHash"
	merkleBranchDomain    = "MerkleBranchHash"
	contractAddressDomain = "ContractAddress"
)

func newKeyedWriter(domain string) HashWriter {
	blake, err := blake2b.New256([]byte(domain))
	if err != nil {
		panic(errors.Wrapf(err, "this should never happen. %s is less than 64 bytes", domain))
	}
	return HashWriter{blake}
}

// NewTransactionHashWriter Returns a new HashWriter used for transaction hashes
func NewTransactionHashWriter() HashWriter {
	return newKeyedWriter(transactionHashDomain)
}

// NewTransactionIDWriter Returns a new HashWriter used for transaction IDs
func NewTransactionIDWriter() HashWriter {
	return newKeyedWriter(transactionIDDomain)
}

// NewOutputIDWriter Returns a new HashWriter used for output IDs
func NewOutputIDWriter() HashWriter {
	return newKeyedWriter(outputIDDomain)
}

// NewSignatureDataWriter Returns a new HashWriter used to digest data before it is signed
func NewSignatureDataWriter() HashWriter {
	return newKeyedWriter(signatureDataDomain)
}

// NewBlockHashWriter Returns a new HashWriter used for hashing blocks
func NewBlockHashWriter() HashWriter {
	return newKeyedWriter(blockHashDomain)
}

// NewMerkleBranchHashWriter Returns a new HashWriter used for a merkle tree branch
func NewMerkleBranchHashWriter() HashWriter {
	return newKeyedWriter(merkleBranchDomain)
}

// NewContractAddressWriter Returns a new HashWriter used for deriving contract addresses
func NewContractAddressWriter() HashWriter {
	return newKeyedWriter(contractAddressDomain)
}
