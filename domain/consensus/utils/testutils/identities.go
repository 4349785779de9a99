package testutils

import (
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensusconfig"
	"github.com/ledgersim/ledgersim/domain/identity"
)

// TestMnemonic is the mnemonic every test identity is derived from
const TestMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// TestIdentity is a deterministic key pair for tests
type TestIdentity struct {
	Identity   externalapi.PublicIdentity
	PrivateKey *externalapi.PrivateKey
}

// Identities derives count deterministic identities from TestMnemonic
func Identities(t testing.TB, count int) []*TestIdentity {
	identities := make([]*TestIdentity, count)
	for i := range identities {
		publicIdentity, privateKey, err := identity.KeyFromMnemonic(TestMnemonic, uint32(i))
		if err != nil {
			t.Fatalf("Identities: KeyFromMnemonic(%d): %s", i, err)
		}
		identities[i] = &TestIdentity{Identity: publicIdentity, PrivateKey: privateKey}
	}
	return identities
}

// Params returns a copy of the simnet params with the given difficulty
func Params(difficulty int) *consensusconfig.Params {
	params := consensusconfig.SimnetParams
	params.Difficulty = difficulty
	return &params
}
