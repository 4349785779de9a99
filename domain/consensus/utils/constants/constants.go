package constants

const (
	// AtomsPerCoin is the number of atoms in one coin.
	AtomsPerCoin = 100_000_000

	// MaxAtoms is the maximum value a single output may carry.
	MaxAtoms = 21_000_000 * AtomsPerCoin

	// PowTargetCharacter is the character a proof-of-work hash must start
	// with, repeated difficulty times, in its hex encoding.
	PowTargetCharacter = '0'

	// MaxDifficulty is the number of hex characters in a hash.
	MaxDifficulty = 64
)
