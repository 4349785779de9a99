package externalapi

import (
	"github.com/btcsuite/btcutil/base58"
	"github.com/pkg/errors"
)

// PublicIdentitySize is the size of a serialized x-only schnorr public key
const PublicIdentitySize = 32

// PrivateKeySize is the size of a serialized private key
const PrivateKeySize = 32

// PublicIdentity is the canonical byte encoding of a public key. Two
// identities are the same identity iff their bytes are equal, so a
// PublicIdentity may be used directly as a map key.
type PublicIdentity [PublicIdentitySize]byte

// PrivateKey is the serialized private key matching some PublicIdentity.
type PrivateKey [PrivateKeySize]byte

// String returns the base58 encoding of the identity
func (identity PublicIdentity) String() string {
	return base58.Encode(identity[:])
}

// IsZero returns whether identity is the zero-value identity
func (identity PublicIdentity) IsZero() bool {
	return identity == PublicIdentity{}
}

// NewPublicIdentityFromString parses a base58-encoded identity
func NewPublicIdentityFromString(identityString string) (PublicIdentity, error) {
	decoded := base58.Decode(identityString)
	return NewPublicIdentityFromSlice(decoded)
}

// NewPublicIdentityFromSlice copies identityBytes into a PublicIdentity
func NewPublicIdentityFromSlice(identityBytes []byte) (PublicIdentity, error) {
	var identity PublicIdentity
	if len(identityBytes) != PublicIdentitySize {
		return identity, errors.Errorf("invalid public identity size. Want: %d, got: %d",
			PublicIdentitySize, len(identityBytes))
	}
	copy(identity[:], identityBytes)
	return identity, nil
}

// IdentityProvider generates key material and signs/verifies arbitrary data
// on behalf of identities.
type IdentityProvider interface {
	Generate() (PublicIdentity, *PrivateKey, error)
	Sign(privateKey *PrivateKey, data []byte) ([]byte, error)

	// Verify must return false rather than fail on malformed input.
	Verify(identity PublicIdentity, data []byte, signature []byte) bool
}
