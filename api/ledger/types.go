// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
)

// Asset is the JSON view of an asset record.
type Asset struct {
	MintAuthority   haven.Address `json:"mintAuthority"`
	FreezeAuthority haven.Address `json:"freezeAuthority"`
	Supply          uint64        `json:"supply"`
}

func convertAsset(a *ledger.Asset) *Asset {
	return &Asset{
		MintAuthority:   a.MintAuthority,
		FreezeAuthority: a.FreezeAuthority,
		Supply:          a.Supply,
	}
}

// Account is the JSON view of a token account.
type Account struct {
	Asset   haven.Address `json:"asset"`
	Owner   haven.Address `json:"owner"`
	Balance uint64        `json:"balance"`
}

func convertAccount(acc *ledger.TokenAccount) *Account {
	return &Account{
		Asset:   acc.Asset,
		Owner:   acc.Owner,
		Balance: acc.Balance,
	}
}
