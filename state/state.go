// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/kv"
	"github.com/stakehaven/haven/stackedmap"
)

const (
	accountBucket kv.Bucket = "a"
	storageBucket kv.Bucket = "s"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// State manages the record store: per-address record containers, each with a
// controlling master and keyed storage. All mutations stay in revisioned
// memory until staged and committed.
type State struct {
	store  kv.Store
	rcache *lru.ARCCache
	cache  map[haven.Address]*cachedObject

	accounts *stackedmap.StackedMap[haven.Address, *Account]  // keeps revisions of accounts
	storage  *stackedmap.StackedMap[storageKey, rlp.RawValue] // keeps revisions of storage entries
}

// New create a state object backed by the given store.
func New(store kv.Store) *State {
	return NewStater(store).NewState()
}

func newState(store kv.Store, rcache *lru.ARCCache) *State {
	state := State{
		store:  store,
		rcache: rcache,
		cache:  make(map[haven.Address]*cachedObject),
	}

	state.accounts = stackedmap.New(func(addr haven.Address) (*Account, bool, error) {
		obj, err := state.getCachedObject(addr)
		if err != nil {
			return nil, false, err
		}
		return &obj.data, true, nil
	})
	state.storage = stackedmap.New(func(k storageKey) (rlp.RawValue, bool, error) {
		obj, err := state.getCachedObject(k.addr)
		if err != nil {
			return nil, false, err
		}
		v, err := obj.GetStorage(k.key)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	})
	return &state
}

func accountCacheKey(addr haven.Address) string {
	return "a" + string(addr[:])
}

func (s *State) getCachedObject(addr haven.Address) (*cachedObject, error) {
	if co, ok := s.cache[addr]; ok {
		return co, nil
	}
	a, err := s.loadAccount(addr)
	if err != nil {
		return nil, err
	}
	co := newCachedObject(s.store, s.rcache, addr, a)
	s.cache[addr] = co
	return co, nil
}

func (s *State) loadAccount(addr haven.Address) (*Account, error) {
	ckey := accountCacheKey(addr)
	if v, has := s.rcache.Get(ckey); has {
		acc := v.(Account)
		return &acc, nil
	}
	a, err := loadAccount(accountBucket.NewGetter(s.store), addr)
	if err != nil {
		return nil, err
	}
	metricRecordCounter().AddWithLabel(1, map[string]string{"type": "account", "target": "load"})
	s.rcache.Add(ckey, *a)
	return a, nil
}

// getAccount gets account by address. the returned account should not be modified.
func (s *State) getAccount(addr haven.Address) (*Account, error) {
	v, _, err := s.accounts.Get(addr)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// getAccountCopy get a copy of account by address.
func (s *State) getAccountCopy(addr haven.Address) (Account, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return Account{}, err
	}
	return *acc, nil
}

func (s *State) updateAccount(addr haven.Address, acc *Account) {
	s.accounts.Put(addr, acc)
}

// GetMaster get master for the given address.
// Master is the program controlling the record container.
func (s *State) GetMaster(addr haven.Address) (haven.Address, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return haven.Address{}, &Error{err}
	}
	return haven.BytesToAddress(acc.Master), nil
}

// SetMaster set master for the given address.
func (s *State) SetMaster(addr haven.Address, master haven.Address) error {
	cpy, err := s.getAccountCopy(addr)
	if err != nil {
		return &Error{err}
	}
	if master.IsZero() {
		cpy.Master = nil
	} else {
		cpy.Master = master[:]
	}
	s.updateAccount(addr, &cpy)
	return nil
}

// Exists returns whether a record container exists at the given address.
// See Account.IsEmpty()
func (s *State) Exists(addr haven.Address) (bool, error) {
	acc, err := s.getAccount(addr)
	if err != nil {
		return false, &Error{err}
	}
	return !acc.IsEmpty(), nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr haven.Address, key haven.Bytes32) (haven.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return haven.Bytes32{}, &Error{err}
	}
	if len(raw) == 0 {
		return haven.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return haven.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return haven.Blake2b(raw), nil
	}
	return haven.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr haven.Address, key, value haven.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr haven.Address, key haven.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.storage.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
func (s *State) SetRawStorage(addr haven.Address, key haven.Bytes32, raw rlp.RawValue) {
	s.storage.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr haven.Address, key haven.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr haven.Address, key haven.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return &Error{err}
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// StorageEncoder is the interface of customized storage encoder.
type StorageEncoder interface {
	Encode() ([]byte, error)
}

// StorageDecoder is the interface of customized storage decoder.
type StorageDecoder interface {
	Decode([]byte) error
}

// GetStructuredStorage gets and decodes storage value.
func (s *State) GetStructuredStorage(addr haven.Address, key haven.Bytes32, val StorageDecoder) error {
	return s.DecodeStorage(addr, key, val.Decode)
}

// SetStructuredStorage encodes and sets storage value.
func (s *State) SetStructuredStorage(addr haven.Address, key haven.Bytes32, val StorageEncoder) error {
	return s.EncodeStorage(addr, key, val.Encode)
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	rev := s.accounts.Push()
	s.storage.Push()
	return rev
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.accounts.PopTo(revision)
	s.storage.PopTo(revision)
}

// Stage makes a stage object to commit all changes to the backing store.
func (s *State) Stage() (*Stage, error) {
	accounts := make(map[haven.Address]*Account)
	s.accounts.Journal(func(addr haven.Address, acc *Account) bool {
		accounts[addr] = acc
		return true
	})

	storage := make(map[storageKey]rlp.RawValue)
	s.storage.Journal(func(k storageKey, v rlp.RawValue) bool {
		storage[k] = v
		return true
	})

	return &Stage{
		store:    s.store,
		rcache:   s.rcache,
		accounts: accounts,
		storage:  storage,
	}, nil
}

type storageKey struct {
	addr haven.Address
	key  haven.Bytes32
}
