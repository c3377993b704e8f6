// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/state"
)

var (
	_ state.StorageEncoder = (*Asset)(nil)
	_ state.StorageDecoder = (*Asset)(nil)
	_ state.StorageEncoder = (*TokenAccount)(nil)
	_ state.StorageDecoder = (*TokenAccount)(nil)
)

// Asset is a fungible asset record. MintAuthority alone may issue new units,
// FreezeAuthority administers the asset, Supply tracks all units ever minted.
type Asset struct {
	MintAuthority   haven.Address
	FreezeAuthority haven.Address
	Supply          uint64
}

// Encode implements state.StorageEncoder.
func (a *Asset) Encode() ([]byte, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(a)
}

// Decode implements state.StorageDecoder.
func (a *Asset) Decode(data []byte) error {
	if len(data) == 0 {
		*a = Asset{}
		return nil
	}
	return rlp.DecodeBytes(data, a)
}

// IsEmpty returns whether the record can be treated as empty.
func (a *Asset) IsEmpty() bool {
	return a.MintAuthority.IsZero() &&
		a.FreezeAuthority.IsZero() &&
		a.Supply == 0
}

// TokenAccount holds a balance of one asset on behalf of its owner.
type TokenAccount struct {
	Asset   haven.Address
	Owner   haven.Address
	Balance uint64
}

// Encode implements state.StorageEncoder.
func (t *TokenAccount) Encode() ([]byte, error) {
	if t.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(t)
}

// Decode implements state.StorageDecoder.
func (t *TokenAccount) Decode(data []byte) error {
	if len(data) == 0 {
		*t = TokenAccount{}
		return nil
	}
	return rlp.DecodeBytes(data, t)
}

// IsEmpty returns whether the record can be treated as empty.
// A created account always carries its asset identity, so a zero balance
// alone never empties it.
func (t *TokenAccount) IsEmpty() bool {
	return t.Asset.IsZero() &&
		t.Owner.IsZero() &&
		t.Balance == 0
}
