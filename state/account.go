// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/kv"
)

// Account is the persisted head of a record container.
// RLP encoded objects are stored in the account bucket.
type Account struct {
	Master []byte // address of the program controlling the record container
}

// IsEmpty returns if an account is empty.
// An empty account has no master assigned.
func (a *Account) IsEmpty() bool {
	return len(a.Master) == 0
}

func emptyAccount() *Account {
	return &Account{}
}

// loadAccount load an account object by address.
// It returns empty account if no account found at the address.
func loadAccount(getter kv.Getter, addr haven.Address) (*Account, error) {
	data, err := getter.Get(addr[:])
	if err != nil {
		if getter.IsNotFound(err) {
			return emptyAccount(), nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return emptyAccount(), nil
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// saveAccount save account at given address.
// If the given account is empty, the value for given address is deleted.
func saveAccount(putter kv.Putter, addr haven.Address, a *Account) error {
	if a.IsEmpty() {
		return putter.Delete(addr[:])
	}

	data, err := rlp.EncodeToBytes(a)
	if err != nil {
		return err
	}
	return putter.Put(addr[:], data)
}

// storageEntryKey concats address and key into the flat storage bucket key.
func storageEntryKey(addr haven.Address, key haven.Bytes32) []byte {
	return append(addr.Bytes(), key.Bytes()...)
}

// loadStorage load storage data for given key.
func loadStorage(getter kv.Getter, addr haven.Address, key haven.Bytes32) (rlp.RawValue, error) {
	v, err := getter.Get(storageEntryKey(addr, key))
	if err != nil {
		if getter.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// saveStorage save value for given key.
// If the data is zero, the given key will be deleted.
func saveStorage(putter kv.Putter, addr haven.Address, key haven.Bytes32, data rlp.RawValue) error {
	if len(data) == 0 {
		return putter.Delete(storageEntryKey(addr, key))
	}
	return putter.Put(storageEntryKey(addr, key), data)
}
