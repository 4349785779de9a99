package identity

import (
	"crypto/rand"

	"github.com/kaspanet/go-secp256k1"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// maxKeyAttempts bounds the retries when random bytes fall outside the
// curve order, which happens with negligible probability.
const maxKeyAttempts = 16

type schnorrProvider struct{}

// NewProvider returns an IdentityProvider backed by secp256k1 schnorr
// signatures. Identities are x-only public keys.
func NewProvider() externalapi.IdentityProvider {
	return schnorrProvider{}
}

func (schnorrProvider) Generate() (externalapi.PublicIdentity, *externalapi.PrivateKey, error) {
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		var privateKeyBytes [externalapi.PrivateKeySize]byte
		_, err := rand.Read(privateKeyBytes[:])
		if err != nil {
			return externalapi.PublicIdentity{}, nil, errors.Wrap(err, "failed reading random bytes")
		}
		keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKeyBytes[:])
		if err != nil {
			continue
		}
		return identityFromKeyPair(keyPair)
	}
	return externalapi.PublicIdentity{}, nil, errors.Errorf("failed generating a private key after %d attempts", maxKeyAttempts)
}

func (schnorrProvider) Sign(privateKey *externalapi.PrivateKey, data []byte) ([]byte, error) {
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKey[:])
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	hash := signatureHash(data)
	signature, err := keyPair.SchnorrSign(hash)
	if err != nil {
		return nil, errors.Errorf("cannot sign data: %s", err)
	}
	return signature.Serialize()[:], nil
}

func (schnorrProvider) Verify(identity externalapi.PublicIdentity, data []byte, signature []byte) bool {
	publicKey, err := secp256k1.DeserializeSchnorrPubKey(identity[:])
	if err != nil {
		return false
	}
	schnorrSignature, err := secp256k1.DeserializeSchnorrSignatureFromSlice(signature)
	if err != nil {
		return false
	}
	return publicKey.SchnorrVerify(signatureHash(data), schnorrSignature)
}

// PublicIdentityOf returns the identity matching privateKey
func PublicIdentityOf(privateKey *externalapi.PrivateKey) (externalapi.PublicIdentity, error) {
	keyPair, err := secp256k1.DeserializeSchnorrPrivateKeyFromSlice(privateKey[:])
	if err != nil {
		return externalapi.PublicIdentity{}, errors.Wrap(err, "invalid private key")
	}
	identity, _, err := identityFromKeyPair(keyPair)
	return identity, err
}

func identityFromKeyPair(keyPair *secp256k1.SchnorrKeyPair) (externalapi.PublicIdentity, *externalapi.PrivateKey, error) {
	publicKey, err := keyPair.SchnorrPublicKey()
	if err != nil {
		return externalapi.PublicIdentity{}, nil, err
	}
	serializedPublicKey, err := publicKey.Serialize()
	if err != nil {
		return externalapi.PublicIdentity{}, nil, err
	}

	var identity externalapi.PublicIdentity
	copy(identity[:], serializedPublicKey[:])
	privateKey := &externalapi.PrivateKey{}
	copy(privateKey[:], keyPair.SerializePrivateKey()[:])
	return identity, privateKey, nil
}

func signatureHash(data []byte) *secp256k1.Hash {
	writer := hashes.NewSignatureDataWriter()
	writer.InfallibleWrite(data)
	secpHash := secp256k1.Hash(*writer.Finalize().ByteArray())
	return &secpHash
}
