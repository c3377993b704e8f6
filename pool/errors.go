// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import "github.com/pkg/errors"

var (
	// ErrPoolExists is returned when initializing over an existing pool record.
	ErrPoolExists = errors.New("pool already exists")
	// ErrPoolNotInitialized is returned when a pool record is missing or its
	// magic does not match.
	ErrPoolNotInitialized = errors.New("pool not initialized")
	// ErrInvalidMint is returned when the presented asset differs from the
	// pool's recorded asset.
	ErrInvalidMint = errors.New("invalid mint")
	// ErrInvalidVault is returned when the presented vault differs from the
	// pool's recorded vault.
	ErrInvalidVault = errors.New("invalid vault")
	// ErrInvalidProgramSigner is returned when the presented signer is not the
	// derived authority of the pool.
	ErrInvalidProgramSigner = errors.New("invalid program signer")
	// ErrInvalidUserMintAccount is returned when the destination token account
	// holds a different asset than the pool.
	ErrInvalidUserMintAccount = errors.New("invalid user mint account")
	// ErrUserNotInitialized is returned when a staking op references a user
	// with no initialized record.
	ErrUserNotInitialized = errors.New("user not initialized")
	// ErrUserAlreadyInitialized is returned when creating a user record over
	// an existing one.
	ErrUserAlreadyInitialized = errors.New("user already initialized")
	// ErrZeroAmount is returned when a staking op carries a zero amount.
	ErrZeroAmount = errors.New("zero amount")
)
