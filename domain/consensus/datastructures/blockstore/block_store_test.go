package blockstore

import (
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/processes/blockbuilder"
	"github.com/ledgersim/ledgersim/infrastructure/db/database"
	"github.com/ledgersim/ledgersim/infrastructure/db/database/ldb"
)

func prepareDatabaseForTest(t *testing.T, testName string) (db database.Database, teardownFunc func()) {
	db, err := ldb.NewMemoryLevelDB()
	if err != nil {
		t.Fatalf("%s: NewMemoryLevelDB unexpectedly failed: %s", testName, err)
	}
	teardownFunc = func() {
		err := db.Close()
		if err != nil {
			t.Fatalf("%s: Close unexpectedly failed: %s", testName, err)
		}
	}
	return db, teardownFunc
}

func testChain(length int) []*externalapi.DomainBlock {
	blocks := make([]*externalapi.DomainBlock, length)
	previousHash := &externalapi.DomainHash{}
	for i := range blocks {
		blocks[i] = blockbuilder.NewBlock(previousHash, int64(1000+i))
		blockbuilder.StampProducer(blocks[i], externalapi.ProducerKindProofOfStake, externalapi.PublicIdentity{byte(i + 1)})
		previousHash = blocks[i].Hash
	}
	return blocks
}

func TestBlockStore(t *testing.T) {
	// A zero sized cache makes every read go through the database
	for _, cacheSize := range []int{0, 10} {
		func() {
			db, teardownFunc := prepareDatabaseForTest(t, "TestBlockStore")
			defer teardownFunc()

			store, err := New(db, cacheSize)
			if err != nil {
				t.Fatalf("TestBlockStore: New: %s", err)
			}

			chain := testChain(5)
			for _, block := range chain {
				err := store.Store(block)
				if err != nil {
					t.Fatalf("TestBlockStore: Store: %s", err)
				}
			}
			if store.Count() != 5 {
				t.Fatalf("TestBlockStore: Expected 5 blocks, found %d", store.Count())
			}

			for height, expected := range chain {
				block, err := store.BlockAtHeight(uint64(height))
				if err != nil {
					t.Fatalf("TestBlockStore: BlockAtHeight: %s", err)
				}
				if !block.Equal(expected) {
					t.Fatalf("TestBlockStore: Wrong block at height %d", height)
				}

				exists, err := store.HasBlock(expected.Hash)
				if err != nil || !exists {
					t.Fatalf("TestBlockStore: Expected block %s to exist, found %t, %v", expected.Hash, exists, err)
				}
			}

			blocks, err := store.Blocks()
			if err != nil {
				t.Fatalf("TestBlockStore: Blocks: %s", err)
			}
			if len(blocks) != len(chain) {
				t.Fatalf("TestBlockStore: Expected %d blocks, found %d", len(chain), len(blocks))
			}
			for i := range chain {
				if !blocks[i].Equal(chain[i]) {
					t.Fatalf("TestBlockStore: Blocks returned block %d out of order", i)
				}
			}

			blocks[0].Header.Nonce = 77
			stored, err := store.Block(chain[0].Hash)
			if err != nil {
				t.Fatalf("TestBlockStore: Block: %s", err)
			}
			if stored.Header.Nonce == 77 {
				t.Fatalf("TestBlockStore: Expected returned blocks to be copies")
			}

			err = store.Store(chain[2])
			if err == nil {
				t.Fatalf("TestBlockStore: Expected storing a block twice to fail")
			}

			reopened, err := New(db, cacheSize)
			if err != nil {
				t.Fatalf("TestBlockStore: New: %s", err)
			}
			if reopened.Count() != 5 {
				t.Fatalf("TestBlockStore: Expected the count to survive reopening, found %d", reopened.Count())
			}
		}()
	}
}

func TestBlockStoreMissingBlock(t *testing.T) {
	db, teardownFunc := prepareDatabaseForTest(t, "TestBlockStoreMissingBlock")
	defer teardownFunc()

	store, err := New(db, 10)
	if err != nil {
		t.Fatalf("TestBlockStoreMissingBlock: New: %s", err)
	}

	missing := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{0xff})
	_, err = store.Block(missing)
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestBlockStoreMissingBlock: Expected ErrNotFound, found %v", err)
	}
	_, err = store.BlockAtHeight(0)
	if !database.IsNotFoundError(err) {
		t.Fatalf("TestBlockStoreMissingBlock: Expected ErrNotFound, found %v", err)
	}
	exists, err := store.HasBlock(missing)
	if err != nil || exists {
		t.Fatalf("TestBlockStoreMissingBlock: Expected no block, found %t, %v", exists, err)
	}
}
