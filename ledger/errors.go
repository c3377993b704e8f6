// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import "github.com/pkg/errors"

var (
	// ErrAssetExists means an asset record already occupies the identity.
	ErrAssetExists = errors.New("asset already exists")
	// ErrAssetNotFound means no asset record exists at the identity.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrAccountExists means a token account already occupies the identity.
	ErrAccountExists = errors.New("token account already exists")
	// ErrAccountNotFound means no token account exists at the identity.
	ErrAccountNotFound = errors.New("token account not found")
	// ErrAssetMismatch means the accounts involved hold different assets.
	ErrAssetMismatch = errors.New("asset mismatch")
	// ErrInsufficientBalance means the source balance cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnauthorized means the authorization does not resolve to the record
	// authority.
	ErrUnauthorized = errors.New("unauthorized")
)
