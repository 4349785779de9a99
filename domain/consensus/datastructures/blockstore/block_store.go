package blockstore

import (
	"encoding/binary"
	"sync"

	"github.com/ledgersim/ledgersim/domain/consensus/database/serialization"
	"github.com/ledgersim/ledgersim/domain/consensus/model"
	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
	"github.com/ledgersim/ledgersim/domain/consensus/utils/lrucache"
	"github.com/ledgersim/ledgersim/infrastructure/db/database"
	"github.com/pkg/errors"
)

var bucket = database.MakeBucket([]byte("blocks"))
var heightBucket = database.MakeBucket([]byte("block-heights"))
var countKey = database.MakeBucket(nil).Key([]byte("blocks-count"))

// blockStore represents a store of blocks
type blockStore struct {
	lock        sync.RWMutex
	db          database.DataAccessor
	cache       *lrucache.LRUCache
	countCached uint64
}

// New instantiates a new BlockStore
func New(db database.DataAccessor, cacheSize int) (model.BlockStore, error) {
	blockStore := &blockStore{
		db:    db,
		cache: lrucache.New(cacheSize),
	}

	err := blockStore.initializeCount()
	if err != nil {
		return nil, err
	}

	return blockStore, nil
}

func (bs *blockStore) initializeCount() error {
	count := uint64(0)
	hasCountBytes, err := bs.db.Has(countKey)
	if err != nil {
		return err
	}
	if hasCountBytes {
		countBytes, err := bs.db.Get(countKey)
		if err != nil {
			return err
		}
		count, err = bs.deserializeBlockCount(countBytes)
		if err != nil {
			return err
		}
	}
	bs.countCached = count
	return nil
}

// Store appends block at the next height. Storing a block whose hash is
// already present is an error.
func (bs *blockStore) Store(block *externalapi.DomainBlock) error {
	bs.lock.Lock()
	defer bs.lock.Unlock()

	exists, err := bs.hasBlock(block.Hash)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("block %s is already stored", block.Hash)
	}

	height := bs.countCached
	err = bs.db.Put(bs.hashAsKey(block.Hash), bs.serializeBlock(block))
	if err != nil {
		return err
	}
	err = bs.db.Put(bs.heightAsKey(height), block.Hash.ByteSlice())
	if err != nil {
		return err
	}
	err = bs.db.Put(countKey, bs.serializeBlockCount(height+1))
	if err != nil {
		return err
	}

	bs.countCached = height + 1
	bs.cache.Add(block.Hash, block.Clone())
	return nil
}

// Block gets the block associated with the given blockHash
func (bs *blockStore) Block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.block(blockHash)
}

func (bs *blockStore) block(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	if block, ok := bs.cache.Get(blockHash); ok {
		return block.Clone(), nil
	}

	blockBytes, err := bs.db.Get(bs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	block, err := bs.deserializeBlock(blockBytes)
	if err != nil {
		return nil, err
	}
	bs.cache.Add(blockHash, block)
	return block.Clone(), nil
}

// HasBlock returns whether a block with a given hash exists in the store.
func (bs *blockStore) HasBlock(blockHash *externalapi.DomainHash) (bool, error) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.hasBlock(blockHash)
}

func (bs *blockStore) hasBlock(blockHash *externalapi.DomainHash) (bool, error) {
	if bs.cache.Has(blockHash) {
		return true, nil
	}

	return bs.db.Has(bs.hashAsKey(blockHash))
}

// BlockAtHeight gets the block stored at the given height
func (bs *blockStore) BlockAtHeight(height uint64) (*externalapi.DomainBlock, error) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	hashBytes, err := bs.db.Get(bs.heightAsKey(height))
	if err != nil {
		return nil, err
	}
	blockHash, err := serialization.DbHashToDomainHash(hashBytes)
	if err != nil {
		return nil, err
	}
	return bs.block(blockHash)
}

// Blocks returns every stored block ordered by height
func (bs *blockStore) Blocks() ([]*externalapi.DomainBlock, error) {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	cursor, err := bs.db.Cursor(heightBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	blocks := make([]*externalapi.DomainBlock, 0, bs.countCached)
	for ok := cursor.First(); ok; ok = cursor.Next() {
		hashBytes, err := cursor.Value()
		if err != nil {
			return nil, err
		}
		blockHash, err := serialization.DbHashToDomainHash(hashBytes)
		if err != nil {
			return nil, err
		}
		block, err := bs.block(blockHash)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

// Count returns the number of stored blocks
func (bs *blockStore) Count() uint64 {
	bs.lock.RLock()
	defer bs.lock.RUnlock()

	return bs.countCached
}

func (bs *blockStore) serializeBlock(block *externalapi.DomainBlock) []byte {
	return serialization.DomainBlockToDbBlock(block).Marshal()
}

func (bs *blockStore) deserializeBlock(blockBytes []byte) (*externalapi.DomainBlock, error) {
	dbBlock := &serialization.DbBlock{}
	err := dbBlock.Unmarshal(blockBytes)
	if err != nil {
		return nil, err
	}
	return serialization.DbBlockToDomainBlock(dbBlock)
}

func (bs *blockStore) hashAsKey(hash *externalapi.DomainHash) *database.Key {
	return bucket.Key(hash.ByteSlice())
}

// heightAsKey encodes height big-endian so that cursors walk the chain in
// order.
func (bs *blockStore) heightAsKey(height uint64) *database.Key {
	var keyBytes [8]byte
	binary.BigEndian.PutUint64(keyBytes[:], height)
	return heightBucket.Key(keyBytes[:])
}

func (bs *blockStore) serializeBlockCount(count uint64) []byte {
	return (&serialization.DbBlockCount{Count: count}).Marshal()
}

func (bs *blockStore) deserializeBlockCount(countBytes []byte) (uint64, error) {
	dbBlockCount := &serialization.DbBlockCount{}
	err := dbBlockCount.Unmarshal(countBytes)
	if err != nil {
		return 0, err
	}
	return dbBlockCount.Count, nil
}
