// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/pool"
)

// Pool is the JSON view of a pool record.
type Pool struct {
	Asset         haven.Address `json:"asset"`
	Vault         haven.Address `json:"vault"`
	ProgramSigner haven.Address `json:"programSigner"`
	Nonce         uint8         `json:"nonce"`
	StakedTotal   uint64        `json:"stakedTotal"`
}

func convertPool(ps *pool.PoolState) *Pool {
	return &Pool{
		Asset:         ps.Asset,
		Vault:         ps.Vault,
		ProgramSigner: ps.ProgramSigner,
		Nonce:         ps.Nonce,
		StakedTotal:   ps.StakedTotal,
	}
}

// User is the JSON view of a staking record.
type User struct {
	Initialized  bool   `json:"initialized"`
	StakedAmount uint64 `json:"stakedAmount"`
}

func convertUser(us *pool.UserState) *User {
	return &User{
		Initialized:  us.Initialized,
		StakedAmount: us.StakedAmount,
	}
}
