package hashes

import (
	"strings"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
)

// ToStrings converts a slice of hashes into a slice of the corresponding strings
func ToStrings(hashes []*externalapi.DomainHash) []string {
	hashStrings := make([]string, len(hashes))
	for i, hash := range hashes {
		hashStrings[i] = hash.String()
	}
	return hashStrings
}

// HasLeadingCharacters returns whether the hex string of hash starts with
// count repetitions of character.
func HasLeadingCharacters(hash *externalapi.DomainHash, character byte, count int) bool {
	if count <= 0 {
		return true
	}
	hashString := hash.String()
	if count > len(hashString) {
		return false
	}
	return strings.Count(hashString[:count], string(character)) == count
}
