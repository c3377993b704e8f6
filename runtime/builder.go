// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/stakehaven/haven/haven"
)

// Builder to make it easy to build an op.
type Builder struct {
	body body
}

// Kind sets the op kind.
func (b *Builder) Kind(kind Kind) *Builder {
	b.body.Kind = kind
	return b
}

// Pool sets the pool record address.
func (b *Builder) Pool(addr haven.Address) *Builder {
	b.body.Pool = addr
	return b
}

// Asset sets the presented asset identity.
func (b *Builder) Asset(addr haven.Address) *Builder {
	b.body.Asset = addr
	return b
}

// Vault sets the presented vault token account.
func (b *Builder) Vault(addr haven.Address) *Builder {
	b.body.Vault = addr
	return b
}

// ProgramSigner sets the claimed derived authority.
func (b *Builder) ProgramSigner(addr haven.Address) *Builder {
	b.body.ProgramSigner = addr
	return b
}

// Account sets the token account the op moves tokens in or out of.
func (b *Builder) Account(addr haven.Address) *Builder {
	b.body.Account = addr
	return b
}

// Amount sets the token amount.
func (b *Builder) Amount(amount uint64) *Builder {
	b.body.Amount = amount
	return b
}

// DerivationNonce sets the authority derivation nonce.
func (b *Builder) DerivationNonce(nonce uint8) *Builder {
	b.body.DerivationNonce = nonce
	return b
}

// Nonce sets the caller chosen nonce.
func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

// Build builds an op object.
func (b *Builder) Build() *Op {
	op := Op{body: b.body}
	return &op
}
