package identity

import (
	"encoding/binary"

	"github.com/kaspanet/go-secp256k1"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

// NewMnemonic returns a fresh 24-word mnemonic
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", errors.WithStack(err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return mnemonic, nil
}

// KeyFromMnemonic deterministically derives the index'th key of mnemonic
func KeyFromMnemonic(mnemonic string, index uint32) (externalapi.PublicIdentity, *externalapi.PrivateKey, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return externalapi.PublicIdentity{}, nil, errors.New("invalid mnemonic")
	}
	seed := bip39.NewSeed(mnemonic, "")

	for attempt := uint32(0); attempt < maxKeyAttempts; attempt++ {
		var suffix [8]byte
		binary.LittleEndian.PutUint32(suffix[:4], index)
		binary.LittleEndian.PutUint32(suffix[4:], attempt)
		material := make([]byte, 0, len(seed)+len(suffix))
		material = append(append(material, seed...), suffix[:]...)
		privateKeyBytes := blake2b.Sum256(material)

		keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKeyBytes[:])
		if err != nil {
			continue
		}
		return identityFromKeyPair(keyPair)
	}
	return externalapi.PublicIdentity{}, nil, errors.Errorf("failed deriving key %d after %d attempts", index, maxKeyAttempts)
}
