package lrucache

import (
	"testing"

	"github.com/ledgersim/ledgersim/domain/consensus/model/externalapi"
)

func TestLRUCacheCapacity(t *testing.T) {
	cache := New(2)
	hashes := make([]*externalapi.DomainHash, 3)
	for i := range hashes {
		hashes[i] = externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{byte(i + 1)})
		cache.Add(hashes[i], &externalapi.DomainBlock{Hash: hashes[i]})
	}

	if cache.Len() != 2 {
		t.Fatalf("TestLRUCacheCapacity: Expected 2 entries, found %d", cache.Len())
	}
	block, ok := cache.Get(hashes[2])
	if !ok || !block.Hash.Equal(hashes[2]) {
		t.Fatalf("TestLRUCacheCapacity: Expected the newest entry to survive eviction")
	}

	cache.Remove(hashes[2])
	if cache.Has(hashes[2]) {
		t.Fatalf("TestLRUCacheCapacity: Expected the removed entry to be gone")
	}
}

func TestLRUCacheZeroCapacity(t *testing.T) {
	cache := New(0)
	hash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1})
	cache.Add(hash, &externalapi.DomainBlock{Hash: hash})
	if cache.Has(hash) {
		t.Fatalf("TestLRUCacheZeroCapacity: Expected a zero capacity cache to hold nothing")
	}
}
