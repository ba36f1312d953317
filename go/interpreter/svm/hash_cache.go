// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package svm

import (
	"github.com/Fantom-foundation/Basalt/go/basalt"
	lru "github.com/hashicorp/golang-lru/v2"
)

// sha3HashCache is an LRU governed fixed-capacity cache for SHA3 hashes.
// The cache maintains hashes for hashed input data of size 32 and 64,
// which are the vast majority of values hashed by contracts computing
// storage slots of mappings. Inputs of other sizes are hashed on demand
// without caching. The cache is thread-safe.
type sha3HashCache struct {
	cache32 *lru.Cache[[32]byte, basalt.Hash]
	cache64 *lru.Cache[[64]byte, basalt.Hash]
}

// newSha3HashCache creates a sha3HashCache with the given capacity of entries.
// Capacities below 1 are raised to 1.
func newSha3HashCache(capacity32 int, capacity64 int) *sha3HashCache {
	cache32, _ := lru.New[[32]byte, basalt.Hash](max(capacity32, 1))
	cache64, _ := lru.New[[64]byte, basalt.Hash](max(capacity64, 1))
	return &sha3HashCache{
		cache32: cache32,
		cache64: cache64,
	}
}

// hash fetches a cached hash or computes the hash for the provided data.
func (h *sha3HashCache) hash(data []byte) basalt.Hash {
	switch len(data) {
	case 32:
		return getOrAdd(h.cache32, [32]byte(data), data)
	case 64:
		return getOrAdd(h.cache64, [64]byte(data), data)
	}
	return basalt.Keccak256(data)
}

func getOrAdd[K comparable](cache *lru.Cache[K, basalt.Hash], key K, data []byte) basalt.Hash {
	if res, found := cache.Get(key); found {
		return res
	}
	res := basalt.Keccak256(data)
	cache.Add(key, res)
	return res
}
