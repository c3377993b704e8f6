// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger implements the external token ledger: fungible asset records
// and token accounts, with authorized transfer and mint. Records live in the
// keyed storage of the ledger's own address.
package ledger

import (
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/safemath"
	"github.com/stakehaven/haven/state"
)

func assetKey(id haven.Address) haven.Bytes32 {
	return haven.Keccak256(id.Bytes(), []byte("asset"))
}

func accountKey(id haven.Address) haven.Bytes32 {
	return haven.Keccak256(id.Bytes(), []byte("token-account"))
}

// Ledger provides access to asset and token account records.
type Ledger struct {
	addr  haven.Address
	state *state.State
}

// New create a new instance.
func New(addr haven.Address, state *state.State) *Ledger {
	return &Ledger{addr, state}
}

// Address returns the address the ledger records live under.
func (l *Ledger) Address() haven.Address {
	return l.addr
}

func (l *Ledger) getAsset(id haven.Address) (*Asset, error) {
	var asset Asset
	if err := l.state.GetStructuredStorage(l.addr, assetKey(id), &asset); err != nil {
		return nil, err
	}
	return &asset, nil
}

func (l *Ledger) setAsset(id haven.Address, asset *Asset) error {
	return l.state.SetStructuredStorage(l.addr, assetKey(id), asset)
}

func (l *Ledger) getAccount(id haven.Address) (*TokenAccount, error) {
	var acc TokenAccount
	if err := l.state.GetStructuredStorage(l.addr, accountKey(id), &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

func (l *Ledger) setAccount(id haven.Address, acc *TokenAccount) error {
	return l.state.SetStructuredStorage(l.addr, accountKey(id), acc)
}

// CreateAsset registers a fungible asset under the given identity.
func (l *Ledger) CreateAsset(id, mintAuthority, freezeAuthority haven.Address) error {
	cur, err := l.getAsset(id)
	if err != nil {
		return err
	}
	if !cur.IsEmpty() {
		return ErrAssetExists
	}
	return l.setAsset(id, &Asset{
		MintAuthority:   mintAuthority,
		FreezeAuthority: freezeAuthority,
	})
}

// CreateAccount opens a token account for the given asset and owner.
func (l *Ledger) CreateAccount(id, asset, owner haven.Address) error {
	a, err := l.getAsset(asset)
	if err != nil {
		return err
	}
	if a.IsEmpty() {
		return ErrAssetNotFound
	}
	cur, err := l.getAccount(id)
	if err != nil {
		return err
	}
	if !cur.IsEmpty() {
		return ErrAccountExists
	}
	return l.setAccount(id, &TokenAccount{
		Asset: asset,
		Owner: owner,
	})
}

// Asset returns the asset record at the given identity.
func (l *Ledger) Asset(id haven.Address) (*Asset, error) {
	a, err := l.getAsset(id)
	if err != nil {
		return nil, err
	}
	if a.IsEmpty() {
		return nil, ErrAssetNotFound
	}
	return a, nil
}

// Account returns the token account record at the given identity.
func (l *Ledger) Account(id haven.Address) (*TokenAccount, error) {
	acc, err := l.getAccount(id)
	if err != nil {
		return nil, err
	}
	if acc.IsEmpty() {
		return nil, ErrAccountNotFound
	}
	return acc, nil
}

// Balance returns the balance of the token account at the given identity.
func (l *Ledger) Balance(id haven.Address) (uint64, error) {
	acc, err := l.Account(id)
	if err != nil {
		return 0, err
	}
	return acc.Balance, nil
}

// Transfer moves amount from one token account to another. The authorization
// must resolve to the source account's owner and both accounts must hold the
// same asset. Balances move with checked arithmetic.
func (l *Ledger) Transfer(from, to haven.Address, auth Authorization, amount uint64) error {
	src, err := l.getAccount(from)
	if err != nil {
		return err
	}
	if src.IsEmpty() {
		return ErrAccountNotFound
	}
	dst, err := l.getAccount(to)
	if err != nil {
		return err
	}
	if dst.IsEmpty() {
		return ErrAccountNotFound
	}
	if src.Asset != dst.Asset {
		return ErrAssetMismatch
	}
	signer, err := auth.resolve()
	if err != nil {
		return err
	}
	if signer != src.Owner {
		return ErrUnauthorized
	}
	if src.Balance < amount {
		return ErrInsufficientBalance
	}
	if from == to {
		// self transfer settles to the same balance
		return nil
	}
	newDst, err := safemath.Add(dst.Balance, amount)
	if err != nil {
		return err
	}
	src.Balance -= amount
	dst.Balance = newDst
	if err := l.setAccount(from, src); err != nil {
		return err
	}
	return l.setAccount(to, dst)
}

// Mint issues amount of the asset to a token account, raising total supply.
// The authorization must resolve to the asset's mint authority.
func (l *Ledger) Mint(asset, to haven.Address, auth Authorization, amount uint64) error {
	a, err := l.getAsset(asset)
	if err != nil {
		return err
	}
	if a.IsEmpty() {
		return ErrAssetNotFound
	}
	dst, err := l.getAccount(to)
	if err != nil {
		return err
	}
	if dst.IsEmpty() {
		return ErrAccountNotFound
	}
	if dst.Asset != asset {
		return ErrAssetMismatch
	}
	signer, err := auth.resolve()
	if err != nil {
		return err
	}
	if signer != a.MintAuthority {
		return ErrUnauthorized
	}
	newSupply, err := safemath.Add(a.Supply, amount)
	if err != nil {
		return err
	}
	newBal, err := safemath.Add(dst.Balance, amount)
	if err != nil {
		return err
	}
	a.Supply = newSupply
	dst.Balance = newBal
	if err := l.setAsset(asset, a); err != nil {
		return err
	}
	return l.setAccount(to, dst)
}
