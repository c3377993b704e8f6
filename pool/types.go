// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/state"
)

// Magic marks a pool record as initialized. Loads of records whose magic
// differs are rejected before any field is trusted.
const Magic uint64 = 0x6666

var (
	_ state.StorageEncoder = (*PoolState)(nil)
	_ state.StorageDecoder = (*PoolState)(nil)
	_ state.StorageEncoder = (*UserState)(nil)
	_ state.StorageDecoder = (*UserState)(nil)
)

// PoolState is the singleton record of one staking pool.
// StakedTotal equals the sum of all user StakedAmount at all times.
type PoolState struct {
	Magic         uint64
	ProgramSigner haven.Address
	Asset         haven.Address
	Vault         haven.Address
	StakedTotal   uint64
	Nonce         uint8
}

// Encode implements state.StorageEncoder.
func (ps *PoolState) Encode() ([]byte, error) {
	if ps.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(ps)
}

// Decode implements state.StorageDecoder.
func (ps *PoolState) Decode(data []byte) error {
	if len(data) == 0 {
		*ps = PoolState{}
		return nil
	}
	return rlp.DecodeBytes(data, ps)
}

// IsEmpty returns whether the record can be treated as empty.
func (ps *PoolState) IsEmpty() bool {
	return ps.Magic == 0 &&
		ps.ProgramSigner.IsZero() &&
		ps.Asset.IsZero() &&
		ps.Vault.IsZero() &&
		ps.StakedTotal == 0 &&
		ps.Nonce == 0
}

// UserState is the per-user staking record of a pool.
type UserState struct {
	Initialized  bool
	StakedAmount uint64
}

// Encode implements state.StorageEncoder.
func (us *UserState) Encode() ([]byte, error) {
	if us.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(us)
}

// Decode implements state.StorageDecoder.
func (us *UserState) Decode(data []byte) error {
	if len(data) == 0 {
		*us = UserState{}
		return nil
	}
	return rlp.DecodeBytes(data, us)
}

// IsEmpty returns whether the record can be treated as empty.
// A record carrying stake is never empty, initialized or not.
func (us *UserState) IsEmpty() bool {
	return !us.Initialized && us.StakedAmount == 0
}
