// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// MustSign signs an op using the provided private key.
// It panics if the signing process fails.
func MustSign(op *Op, pk *ecdsa.PrivateKey) *Op {
	signed, err := Sign(op, pk)
	if err != nil {
		panic(err)
	}
	return signed
}

// Sign signs an op using the provided private key.
// It returns the signed op or an error if the signing process fails.
func Sign(op *Op, pk *ecdsa.PrivateKey) (*Op, error) {
	sig, err := crypto.Sign(op.SigningHash().Bytes(), pk)
	if err != nil {
		return nil, fmt.Errorf("unable to sign op: %w", err)
	}
	return op.WithSignature(sig), nil
}
