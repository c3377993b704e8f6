// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/kv"
)

// cachedObject to cache storage of an account.
type cachedObject struct {
	store  kv.Store
	rcache *lru.ARCCache
	addr   haven.Address
	data   Account

	cache struct {
		storage map[haven.Bytes32]rlp.RawValue
	}
}

func newCachedObject(store kv.Store, rcache *lru.ARCCache, addr haven.Address, data *Account) *cachedObject {
	return &cachedObject{store: store, rcache: rcache, addr: addr, data: *data}
}

// GetStorage returns storage value for given key.
func (co *cachedObject) GetStorage(key haven.Bytes32) (rlp.RawValue, error) {
	cache := &co.cache
	// retrieve from storage cache
	if cache.storage != nil {
		if v, ok := cache.storage[key]; ok {
			return v, nil
		}
	} else {
		cache.storage = make(map[haven.Bytes32]rlp.RawValue)
	}
	// not found in cache

	ckey := string(storageEntryKey(co.addr, key))
	if v, has := co.rcache.Get(ckey); has {
		raw := v.(rlp.RawValue)
		cache.storage[key] = raw
		return raw, nil
	}

	// load from store
	v, err := loadStorage(storageBucket.NewGetter(co.store), co.addr, key)
	if err != nil {
		return nil, err
	}
	metricRecordCounter().AddWithLabel(1, map[string]string{"type": "storage", "target": "load"})

	// put into caches
	co.rcache.Add(ckey, v)
	cache.storage[key] = v
	return v, nil
}
