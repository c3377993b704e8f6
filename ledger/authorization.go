// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/haven"
)

// Authorization proves the right to move value out of an account or to mint
// an asset. It resolves to the address the ledger compares against the record
// authority.
type Authorization interface {
	resolve() (haven.Address, error)
}

// Signed authorizes as an identity whose signature the caller has already
// verified.
func Signed(signer haven.Address) Authorization {
	return signedAuth(signer)
}

// WithSeeds authorizes as a keyless program signer by presenting its
// derivation seeds.
func WithSeeds(seeds authority.Seeds) Authorization {
	return seedsAuth(seeds)
}

type signedAuth haven.Address

func (a signedAuth) resolve() (haven.Address, error) {
	return haven.Address(a), nil
}

type seedsAuth authority.Seeds

func (a seedsAuth) resolve() (haven.Address, error) {
	seeds := authority.Seeds(a)
	return seeds.Signer()
}
