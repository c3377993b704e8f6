// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"github.com/stakehaven/haven/haven"
)

// Seeds is the derivation material presented to prove control of a program
// signer in lieu of a signature. Whoever can name the seeds of a signer is,
// by construction, the program that derived it.
type Seeds struct {
	Asset haven.Address
	Pool  haven.Address
	Nonce uint8
}

// Signer resolves the seeds to the signer address they derive.
func (s *Seeds) Signer() (haven.Address, error) {
	return DeriveWithNonce(s.Asset, s.Pool, s.Nonce)
}
