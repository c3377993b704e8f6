// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/pkg/errors"

var (
	// ErrInvalidSignature is returned when the op signature is malformed.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrUnknownKind is returned when the op kind is not recognized.
	ErrUnknownKind = errors.New("unknown op kind")
	// ErrPoolNotOwned is returned when the pool record is not controlled by
	// the staking program.
	ErrPoolNotOwned = errors.New("pool record not owned by program")
	// ErrAccountNotOwned is returned when the presented token account is not
	// owned by the op origin.
	ErrAccountNotOwned = errors.New("token account not owned by origin")
)
