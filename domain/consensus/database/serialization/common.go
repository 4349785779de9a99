package serialization

import (
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// DomainHashToDbHash converts a DomainHash to its serialized form
func DomainHashToDbHash(domainHash *externalapi.DomainHash) []byte {
	if domainHash == nil {
		return nil
	}
	return domainHash.ByteSlice()
}

// DbHashToDomainHash converts a serialized hash to a DomainHash
func DbHashToDomainHash(dbHash []byte) (*externalapi.DomainHash, error) {
	return externalapi.NewDomainHashFromByteSlice(dbHash)
}

// DbIdentityToDomainIdentity converts a serialized identity to a
// PublicIdentity. An empty value is the zero identity.
func DbIdentityToDomainIdentity(dbIdentity []byte) (externalapi.PublicIdentity, error) {
	if len(dbIdentity) == 0 {
		return externalapi.PublicIdentity{}, nil
	}
	identity, err := externalapi.NewPublicIdentityFromSlice(dbIdentity)
	if err != nil {
		return externalapi.PublicIdentity{}, errors.Wrap(err, "invalid identity")
	}
	return identity, nil
}

func domainIdentityToDbIdentity(identity externalapi.PublicIdentity) []byte {
	if identity.IsZero() {
		return nil
	}
	return identity[:]
}
