package pow

import (
	"context"
	"math"
	"sync"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/ruleerrors"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/consensushashing"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/constants"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// cancellationCheckInterval is the number of nonces a worker tries between
// checks for cancellation
const cancellationCheckInterval = 1024

// CheckProofOfWork returns whether hash satisfies difficulty, that is,
// whether its hex encoding starts with difficulty zeros
func CheckProofOfWork(hash *externalapi.DomainHash, difficulty int) bool {
	return hashes.HasLeadingCharacters(hash, constants.PowTargetCharacter, difficulty)
}

// CheckBlockProofOfWork returns whether the recomputed hash of block
// satisfies difficulty
func CheckBlockProofOfWork(block *externalapi.DomainBlock, difficulty int) bool {
	return CheckProofOfWork(consensushashing.BlockHash(block), difficulty)
}

// Solve searches for a nonce that makes the hash of block satisfy
// difficulty, and sets the block's nonce and hash accordingly.
//
// The nonce space [0, maxNonce] is split between workers so that worker i
// tries i, i+workers, i+2*workers and so on. A maxNonce of 0 means the whole
// uint64 range. The first worker to succeed stops the rest. Solve returns
// ErrNonceSpaceExhausted if no nonce in range works, or the context's error
// if ctx is done first. The block is left unchanged on failure.
func Solve(ctx context.Context, block *externalapi.DomainBlock, difficulty int, workers int, maxNonce uint64) error {
	if difficulty > constants.MaxDifficulty {
		return errors.Errorf("difficulty %d is above the maximum of %d", difficulty, constants.MaxDifficulty)
	}
	if workers < 1 {
		workers = 1
	}
	if maxNonce == 0 {
		maxNonce = math.MaxUint64
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan uint64, workers)
	wg := sync.WaitGroup{}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		header := block.Header.Clone()
		first := uint64(i)
		spawn("pow.Solve-worker", func() {
			defer wg.Done()
			nonce, ok := searchNonces(searchCtx, header, difficulty, first, uint64(workers), maxNonce)
			if ok {
				found <- nonce
				cancel()
			}
		})
	}
	wg.Wait()
	close(found)

	nonce, ok := <-found
	if !ok {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), "nonce search for block on top of %s was interrupted",
				block.Header.PreviousHash)
		}
		return errors.Wrapf(ruleerrors.ErrNonceSpaceExhausted,
			"no nonce up to %d satisfies difficulty %d", maxNonce, difficulty)
	}

	block.Header.Nonce = nonce
	block.Hash = consensushashing.BlockHash(block)
	log.Debugf("Found nonce %d for block %s at difficulty %d", nonce, block.Hash, difficulty)
	return nil
}

func searchNonces(ctx context.Context, header *externalapi.DomainBlockHeader, difficulty int,
	first, step, maxNonce uint64) (uint64, bool) {

	if first > maxNonce {
		return 0, false
	}

	tried := 0
	for nonce := first; ; nonce += step {
		if tried%cancellationCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return 0, false
			default:
			}
		}
		tried++

		header.Nonce = nonce
		if CheckProofOfWork(consensushashing.HeaderHash(header), difficulty) {
			return nonce, true
		}

		if maxNonce-nonce < step {
			return 0, false
		}
	}
}
