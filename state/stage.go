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

// Stage abstracts cumulative changes waiting to be committed to the store.
type Stage struct {
	store    kv.Store
	rcache   *lru.ARCCache
	accounts map[haven.Address]*Account
	storage  map[storageKey]rlp.RawValue
}

// Commit commits all changes into the backing store in one batch.
func (s *Stage) Commit() error {
	bulk := s.store.Bulk()
	accPutter := accountBucket.NewPutter(bulk)
	stoPutter := storageBucket.NewPutter(bulk)

	for addr, acc := range s.accounts {
		if err := saveAccount(accPutter, addr, acc); err != nil {
			return &Error{err}
		}
	}
	for k, v := range s.storage {
		if err := saveStorage(stoPutter, k.addr, k.key, v); err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}

	// refresh the shared record cache with the committed values
	for addr, acc := range s.accounts {
		s.rcache.Add(accountCacheKey(addr), *acc)
	}
	for k, v := range s.storage {
		s.rcache.Add(string(storageEntryKey(k.addr, k.key)), v)
	}

	metricRecordCounter().AddWithLabel(int64(len(s.accounts)), map[string]string{"type": "account", "target": "commit"})
	metricRecordCounter().AddWithLabel(int64(len(s.storage)), map[string]string{"type": "storage", "target": "commit"})
	return nil
}
