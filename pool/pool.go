// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pool implements the accounting and authorization core of the
// token-staking escrow: the pool record, per-user staking records, and the
// state transitions operating on them.
package pool

import (
	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/log"
	"github.com/stakehaven/haven/safemath"
	"github.com/stakehaven/haven/state"
)

var (
	logger = log.WithContext("pkg", "pool")

	poolStateSlot  = haven.Blake2b([]byte("pool-state"))
	userStatesSlot = haven.Blake2b([]byte("user-states"))
)

// SetLogger replaces the package logger.
func SetLogger(l log.Logger) {
	logger = l
}

// userKey is the storage position of a user's staking record, laid out the
// way a solidity mapping spreads its entries.
func userKey(user haven.Address) haven.Bytes32 {
	return haven.Blake2b(user.Bytes(), userStatesSlot.Bytes())
}

// Pool provides access to one staking pool's records and transitions.
type Pool struct {
	addr   haven.Address
	state  *state.State
	ledger *ledger.Ledger
}

// New create a new instance bound to the pool record at addr.
func New(addr haven.Address, state *state.State, ledger *ledger.Ledger) *Pool {
	return &Pool{addr, state, ledger}
}

// Address returns the pool record address.
func (p *Pool) Address() haven.Address {
	return p.addr
}

func (p *Pool) getPoolState() (*PoolState, error) {
	var ps PoolState
	if err := p.state.GetStructuredStorage(p.addr, poolStateSlot, &ps); err != nil {
		return nil, err
	}
	return &ps, nil
}

func (p *Pool) setPoolState(ps *PoolState) error {
	return p.state.SetStructuredStorage(p.addr, poolStateSlot, ps)
}

func (p *Pool) getUserState(user haven.Address) (*UserState, error) {
	var us UserState
	if err := p.state.GetStructuredStorage(p.addr, userKey(user), &us); err != nil {
		return nil, err
	}
	return &us, nil
}

func (p *Pool) setUserState(user haven.Address, us *UserState) error {
	return p.state.SetStructuredStorage(p.addr, userKey(user), us)
}

//
// Getters - no state change
//

// Exists returns whether the pool record is present, valid magic or not.
func (p *Pool) Exists() (bool, error) {
	ps, err := p.getPoolState()
	if err != nil {
		return false, err
	}
	return !ps.IsEmpty(), nil
}

// State returns the pool record. Records without the valid magic are treated
// as absent.
func (p *Pool) State() (*PoolState, error) {
	ps, err := p.getPoolState()
	if err != nil {
		return nil, err
	}
	if ps.Magic != Magic {
		return nil, ErrPoolNotInitialized
	}
	return ps, nil
}

// User returns the staking record of the given user. Unknown users yield the
// zero record.
func (p *Pool) User(user haven.Address) (*UserState, error) {
	return p.getUserState(user)
}

//
// Setters - state change
//

// Initialize writes the pool record after proving the claimed program signer
// is the derived authority of (asset, pool).
func (p *Pool) Initialize(asset, vault, programSigner haven.Address, nonce uint8) (err error) {
	defer func() { countOp("initialize", err) }()
	logger.Debug("initializing pool", "pool", p.addr, "asset", asset, "vault", vault)

	if err := p.initialize(asset, vault, programSigner, nonce); err != nil {
		logger.Info("initialize pool failed", "pool", p.addr, "error", err)
		return err
	}

	logger.Info("initialized pool", "pool", p.addr, "signer", programSigner)
	return nil
}

func (p *Pool) initialize(asset, vault, programSigner haven.Address, nonce uint8) error {
	cur, err := p.getPoolState()
	if err != nil {
		return err
	}
	if !cur.IsEmpty() {
		return ErrPoolExists
	}
	if !authority.Verify(asset, p.addr, programSigner, nonce) {
		return ErrInvalidProgramSigner
	}
	return p.setPoolState(&PoolState{
		Magic:         Magic,
		ProgramSigner: programSigner,
		Asset:         asset,
		Vault:         vault,
		Nonce:         nonce,
	})
}

// Airdrop mints amount of the pool's asset to the destination token account,
// authorized by the pool's derivation seeds. A zero amount mints nothing but
// is not rejected.
func (p *Pool) Airdrop(asset, programSigner, dest haven.Address, amount uint64) (err error) {
	defer func() { countOp("airdrop", err) }()
	logger.Debug("airdropping", "pool", p.addr, "dest", dest, "amount", amount)

	if err := p.airdrop(asset, programSigner, dest, amount); err != nil {
		logger.Info("airdrop failed", "pool", p.addr, "error", err)
		return err
	}

	logger.Info("airdropped", "pool", p.addr, "dest", dest, "amount", amount)
	return nil
}

func (p *Pool) airdrop(asset, programSigner, dest haven.Address, amount uint64) error {
	ps, err := p.State()
	if err != nil {
		return err
	}
	if ps.Asset != asset {
		return ErrInvalidMint
	}
	if ps.ProgramSigner != programSigner {
		return ErrInvalidProgramSigner
	}
	destAcc, err := p.ledger.Account(dest)
	if err != nil {
		return err
	}
	if destAcc.Asset != ps.Asset {
		return ErrInvalidUserMintAccount
	}
	seeds := authority.Seeds{Asset: ps.Asset, Pool: p.addr, Nonce: ps.Nonce}
	return p.ledger.Mint(ps.Asset, dest, ledger.WithSeeds(seeds), amount)
}

// InitializeUser creates the staking record of the given user in this pool.
// Creating over an existing record fails and never resets a balance.
func (p *Pool) InitializeUser(user haven.Address) (err error) {
	defer func() { countOp("initialize_user", err) }()
	logger.Debug("initializing user", "pool", p.addr, "user", user)

	if err := p.initializeUser(user); err != nil {
		logger.Info("initialize user failed", "pool", p.addr, "user", user, "error", err)
		return err
	}

	logger.Info("initialized user", "pool", p.addr, "user", user)
	return nil
}

func (p *Pool) initializeUser(user haven.Address) error {
	cur, err := p.getUserState(user)
	if err != nil {
		return err
	}
	if !cur.IsEmpty() {
		return ErrUserAlreadyInitialized
	}
	return p.setUserState(user, &UserState{Initialized: true})
}

// EnterStaking moves amount from the user's token account into the vault and
// books it on the user's staking record and the pool's running total.
func (p *Pool) EnterStaking(asset, vault, user, userAcc haven.Address, amount uint64) (err error) {
	defer func() { countOp("enter_staking", err) }()
	logger.Debug("entering staking", "pool", p.addr, "user", user, "amount", amount)

	total, err := p.enterStaking(asset, vault, user, userAcc, amount)
	if err != nil {
		logger.Info("enter staking failed", "pool", p.addr, "user", user, "error", err)
		return err
	}

	metricStakedTotalGauge().SetWithLabel(int64(total), map[string]string{"pool": p.addr.String()})
	logger.Info("entered staking", "pool", p.addr, "user", user, "amount", amount, "stakedTotal", total)
	return nil
}

func (p *Pool) enterStaking(asset, vault, user, userAcc haven.Address, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	ps, err := p.State()
	if err != nil {
		return 0, err
	}
	if ps.Asset != asset {
		return 0, ErrInvalidMint
	}
	if ps.Vault != vault {
		return 0, ErrInvalidVault
	}
	us, err := p.getUserState(user)
	if err != nil {
		return 0, err
	}
	if !us.Initialized {
		return 0, ErrUserNotInitialized
	}
	if err := p.ledger.Transfer(userAcc, ps.Vault, ledger.Signed(user), amount); err != nil {
		return 0, err
	}
	newTotal, err := safemath.Add(ps.StakedTotal, amount)
	if err != nil {
		return 0, err
	}
	newStaked, err := safemath.Add(us.StakedAmount, amount)
	if err != nil {
		return 0, err
	}
	ps.StakedTotal = newTotal
	us.StakedAmount = newStaked
	if err := p.setPoolState(ps); err != nil {
		return 0, err
	}
	if err := p.setUserState(user, us); err != nil {
		return 0, err
	}
	return newTotal, nil
}

// LeaveStaking moves amount from the vault back to the user's token account,
// authorized by the pool's derivation seeds, and unbooks it from the records.
func (p *Pool) LeaveStaking(asset, vault, user, userAcc haven.Address, amount uint64) (err error) {
	defer func() { countOp("leave_staking", err) }()
	logger.Debug("leaving staking", "pool", p.addr, "user", user, "amount", amount)

	total, err := p.leaveStaking(asset, vault, user, userAcc, amount)
	if err != nil {
		logger.Info("leave staking failed", "pool", p.addr, "user", user, "error", err)
		return err
	}

	metricStakedTotalGauge().SetWithLabel(int64(total), map[string]string{"pool": p.addr.String()})
	logger.Info("left staking", "pool", p.addr, "user", user, "amount", amount, "stakedTotal", total)
	return nil
}

func (p *Pool) leaveStaking(asset, vault, user, userAcc haven.Address, amount uint64) (uint64, error) {
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	ps, err := p.State()
	if err != nil {
		return 0, err
	}
	if ps.Asset != asset {
		return 0, ErrInvalidMint
	}
	if ps.Vault != vault {
		return 0, ErrInvalidVault
	}
	us, err := p.getUserState(user)
	if err != nil {
		return 0, err
	}
	if !us.Initialized {
		return 0, ErrUserNotInitialized
	}
	seeds := authority.Seeds{Asset: ps.Asset, Pool: p.addr, Nonce: ps.Nonce}
	if err := p.ledger.Transfer(ps.Vault, userAcc, ledger.WithSeeds(seeds), amount); err != nil {
		return 0, err
	}
	newStaked, err := safemath.Sub(us.StakedAmount, amount)
	if err != nil {
		return 0, err
	}
	newTotal, err := safemath.Sub(ps.StakedTotal, amount)
	if err != nil {
		return 0, err
	}
	ps.StakedTotal = newTotal
	us.StakedAmount = newStaked
	if err := p.setPoolState(ps); err != nil {
		return 0, err
	}
	if err := p.setUserState(user, us); err != nil {
		return 0, err
	}
	return newTotal, nil
}
