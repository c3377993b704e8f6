// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/state"
)

// CustomGenesis is a user customized record layout.
//
// The asset's mint authority is not configurable. It is always the program
// signer derived from (asset, pool), which is what lets the initialize
// operation claim the pool afterwards.
type CustomGenesis struct {
	Asset           haven.Address `json:"asset"`
	FreezeAuthority haven.Address `json:"freezeAuthority"`
	Pool            haven.Address `json:"pool"`
	Vault           haven.Address `json:"vault"`
	Accounts        []Account     `json:"accounts"`
}

// Account is a token account created at genesis.
type Account struct {
	ID      haven.Address `json:"id"`
	Owner   haven.Address `json:"owner"`
	Balance uint64        `json:"balance"`
}

// NewCustomNet creates a custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	if gen.Asset.IsZero() {
		return nil, errors.New("asset must be set")
	}
	if gen.Pool.IsZero() {
		return nil, errors.New("pool must be set")
	}
	if gen.Vault.IsZero() {
		return nil, errors.New("vault must be set")
	}
	if gen.FreezeAuthority.IsZero() {
		return nil, errors.New("freezeAuthority must be set")
	}
	for _, a := range gen.Accounts {
		if a.ID.IsZero() {
			return nil, errors.New("account id must be set")
		}
		if a.Owner.IsZero() {
			return nil, errors.Errorf("%v: account owner must be set", a.ID)
		}
	}

	asset, pool, vault := gen.Asset, gen.Pool, gen.Vault
	freezeAuthority := gen.FreezeAuthority
	accounts := gen.Accounts

	builder := new(Builder).
		State(func(st *state.State) error {
			signer, nonce, err := authority.Derive(asset, pool)
			if err != nil {
				return err
			}

			ldg := ledger.New(haven.LedgerID, st)
			if err := ldg.CreateAsset(asset, signer, freezeAuthority); err != nil {
				return err
			}
			if err := ldg.CreateAccount(vault, asset, signer); err != nil {
				return err
			}

			seeds := authority.Seeds{Asset: asset, Pool: pool, Nonce: nonce}
			for _, a := range accounts {
				if err := ldg.CreateAccount(a.ID, asset, a.Owner); err != nil {
					return err
				}
				if a.Balance == 0 {
					continue
				}
				if err := ldg.Mint(asset, a.ID, ledger.WithSeeds(seeds), a.Balance); err != nil {
					return err
				}
			}
			return nil
		})

	raw, err := json.Marshal(gen)
	if err != nil {
		return nil, err
	}
	id := haven.Blake2b([]byte("customnet"), raw)
	return &Genesis{builder, id, "customnet"}, nil
}
