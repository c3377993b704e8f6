// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package authority derives the keyless program signer that controls a pool's
// vault. The signer address is reproducible from (asset, pool, nonce) alone,
// and the derivation guarantees no private key can ever sign for it.
package authority

import (
	"github.com/pkg/errors"

	secp256k1 "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stakehaven/haven/haven"
)

// derivationTag domain-separates signer digests from all other blake2b uses.
var derivationTag = []byte("haven-program-signer")

var (
	// ErrNoViableNonce is returned when every nonce candidate is keyable.
	ErrNoViableNonce = errors.New("authority: no viable nonce")
	// ErrKeyableCandidate is returned when the candidate digest for the given
	// nonce lies on the secp256k1 curve and therefore must not act as a signer.
	ErrKeyableCandidate = errors.New("authority: candidate is keyable")
)

// Derive searches nonces from 255 downward and returns the first signer whose
// candidate digest is keyless, along with the nonce that produced it.
// Deterministic for a given (asset, pool) pair.
func Derive(asset, pool haven.Address) (haven.Address, uint8, error) {
	for i := 0; i < 256; i++ {
		nonce := uint8(255 - i)
		signer, err := DeriveWithNonce(asset, pool, nonce)
		if err != nil {
			continue
		}
		return signer, nonce, nil
	}
	return haven.Address{}, 0, ErrNoViableNonce
}

// DeriveWithNonce computes the signer for one specific nonce. It fails with
// ErrKeyableCandidate when the candidate digest parses as a valid compressed
// secp256k1 point, so callers replaying a stored nonce get exactly the address
// Derive settled on.
func DeriveWithNonce(asset, pool haven.Address, nonce uint8) (haven.Address, error) {
	candidate := haven.Blake2b(asset.Bytes(), pool.Bytes(), []byte{nonce}, derivationTag)
	if isKeyable(candidate) {
		return haven.Address{}, ErrKeyableCandidate
	}
	return haven.BytesToAddress(candidate.Bytes()[12:]), nil
}

// Verify recomputes the derivation and reports whether (claimed, nonce) is
// exactly the pair Derive yields for (asset, pool).
func Verify(asset, pool, claimed haven.Address, nonce uint8) bool {
	derived, derivedNonce, err := Derive(asset, pool)
	if err != nil {
		return false
	}
	return derived == claimed && derivedNonce == nonce
}

// isKeyable reports whether digest is the X coordinate of a point on the
// secp256k1 curve, i.e. whether some public key could stand behind it.
func isKeyable(digest haven.Bytes32) bool {
	compressed := make([]byte, 33)
	compressed[0] = secp256k1.PubKeyFormatCompressedEven
	copy(compressed[1:], digest.Bytes())
	_, err := secp256k1.ParsePubKey(compressed)
	return err == nil
}
