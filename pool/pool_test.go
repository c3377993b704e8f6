// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/safemath"
	"github.com/stakehaven/haven/state"
	"github.com/stakehaven/haven/test/datagen"
)

type testEnv struct {
	state  *state.State
	ledger *ledger.Ledger
	pool   *Pool

	asset  haven.Address
	vault  haven.Address
	signer haven.Address
	nonce  uint8
	admin  haven.Address
}

func newTestEnv(t *testing.T) *testEnv {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	st := state.New(store)
	ldg := ledger.New(datagen.RandAddress(), st)

	poolAddr := datagen.RandAddress()
	asset := datagen.RandAddress()
	vault := datagen.RandAddress()
	admin := datagen.RandAddress()

	signer, nonce, err := authority.Derive(asset, poolAddr)
	require.NoError(t, err)

	require.NoError(t, ldg.CreateAsset(asset, signer, admin))
	require.NoError(t, ldg.CreateAccount(vault, asset, signer))

	return &testEnv{
		state:  st,
		ledger: ldg,
		pool:   New(poolAddr, st, ldg),
		asset:  asset,
		vault:  vault,
		signer: signer,
		nonce:  nonce,
		admin:  admin,
	}
}

func (env *testEnv) initPool(t *testing.T) {
	require.NoError(t, env.pool.Initialize(env.asset, env.vault, env.signer, env.nonce))
}

// newStaker creates a user identity with an initialized staking record, a
// token account and the given airdropped funds.
func (env *testEnv) newStaker(t *testing.T, funds uint64) (user, acc haven.Address) {
	user = datagen.RandAddress()
	acc = datagen.RandAddress()
	require.NoError(t, env.ledger.CreateAccount(acc, env.asset, user))
	require.NoError(t, env.pool.InitializeUser(user))
	if funds > 0 {
		require.NoError(t, env.pool.Airdrop(env.asset, env.signer, acc, funds))
	}
	return
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pool.State()
	assert.ErrorIs(t, err, ErrPoolNotInitialized)

	env.initPool(t)

	ps, err := env.pool.State()
	require.NoError(t, err)
	assert.Equal(t, Magic, ps.Magic)
	assert.Equal(t, env.asset, ps.Asset)
	assert.Equal(t, env.vault, ps.Vault)
	assert.Equal(t, env.signer, ps.ProgramSigner)
	assert.Equal(t, env.nonce, ps.Nonce)
	assert.Zero(t, ps.StakedTotal)

	assert.ErrorIs(t, env.pool.Initialize(env.asset, env.vault, env.signer, env.nonce), ErrPoolExists)
}

func TestInitializeWrongSigner(t *testing.T) {
	env := newTestEnv(t)

	err := env.pool.Initialize(env.asset, env.vault, datagen.RandAddress(), env.nonce)
	assert.ErrorIs(t, err, ErrInvalidProgramSigner)

	err = env.pool.Initialize(env.asset, env.vault, env.signer, env.nonce-1)
	assert.ErrorIs(t, err, ErrInvalidProgramSigner)

	// the failed attempts must not have created the record
	exists, err := env.pool.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAirdrop(t *testing.T) {
	env := newTestEnv(t)

	dest := datagen.RandAddress()
	require.NoError(t, env.ledger.CreateAccount(dest, env.asset, datagen.RandAddress()))

	// pool not yet initialized
	assert.ErrorIs(t, env.pool.Airdrop(env.asset, env.signer, dest, 10), ErrPoolNotInitialized)

	env.initPool(t)

	require.NoError(t, env.pool.Airdrop(env.asset, env.signer, dest, 1000))

	bal, err := env.ledger.Balance(dest)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal)

	a, err := env.ledger.Asset(env.asset)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), a.Supply)

	// issuance never touches the staking books
	ps, err := env.pool.State()
	require.NoError(t, err)
	assert.Zero(t, ps.StakedTotal)

	// a zero airdrop is a legal no-op
	require.NoError(t, env.pool.Airdrop(env.asset, env.signer, dest, 0))

	assert.ErrorIs(t, env.pool.Airdrop(datagen.RandAddress(), env.signer, dest, 1), ErrInvalidMint)
	assert.ErrorIs(t, env.pool.Airdrop(env.asset, datagen.RandAddress(), dest, 1), ErrInvalidProgramSigner)
}

func TestAirdropWrongAssetAccount(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	// destination bound to a foreign asset
	foreign := datagen.RandAddress()
	require.NoError(t, env.ledger.CreateAsset(foreign, datagen.RandAddress(), datagen.RandAddress()))
	dest := datagen.RandAddress()
	require.NoError(t, env.ledger.CreateAccount(dest, foreign, datagen.RandAddress()))

	assert.ErrorIs(t, env.pool.Airdrop(env.asset, env.signer, dest, 1), ErrInvalidUserMintAccount)

	// unknown destination surfaces the ledger error untouched
	err := env.pool.Airdrop(env.asset, env.signer, datagen.RandAddress(), 1)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestInitializeUser(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	user := datagen.RandAddress()

	us, err := env.pool.User(user)
	require.NoError(t, err)
	assert.False(t, us.Initialized)

	require.NoError(t, env.pool.InitializeUser(user))

	us, err = env.pool.User(user)
	require.NoError(t, err)
	assert.True(t, us.Initialized)
	assert.Zero(t, us.StakedAmount)

	assert.ErrorIs(t, env.pool.InitializeUser(user), ErrUserAlreadyInitialized)
}

func TestInitializeUserKeepsStake(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	user, acc := env.newStaker(t, 500)
	require.NoError(t, env.pool.EnterStaking(env.asset, env.vault, user, acc, 300))

	// re-creation must fail without resetting the balance
	assert.ErrorIs(t, env.pool.InitializeUser(user), ErrUserAlreadyInitialized)

	us, err := env.pool.User(user)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), us.StakedAmount)
}

func TestEnterStaking(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	user, acc := env.newStaker(t, 1000)

	require.NoError(t, env.pool.EnterStaking(env.asset, env.vault, user, acc, 400))

	us, err := env.pool.User(user)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), us.StakedAmount)

	ps, err := env.pool.State()
	require.NoError(t, err)
	assert.Equal(t, uint64(400), ps.StakedTotal)

	userBal, err := env.ledger.Balance(acc)
	require.NoError(t, err)
	vaultBal, err := env.ledger.Balance(env.vault)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), userBal)
	assert.Equal(t, uint64(400), vaultBal)
}

func TestEnterStakingPreconditionOrder(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	user, acc := env.newStaker(t, 100)
	wrong := datagen.RandAddress()

	// zero amount rejected before any account check
	assert.ErrorIs(t, env.pool.EnterStaking(wrong, wrong, user, acc, 0), ErrZeroAmount)
	// asset checked before vault
	assert.ErrorIs(t, env.pool.EnterStaking(wrong, wrong, user, acc, 1), ErrInvalidMint)
	assert.ErrorIs(t, env.pool.EnterStaking(env.asset, wrong, user, acc, 1), ErrInvalidVault)

	// user without a record
	stranger := datagen.RandAddress()
	strangerAcc := datagen.RandAddress()
	require.NoError(t, env.ledger.CreateAccount(strangerAcc, env.asset, stranger))
	err := env.pool.EnterStaking(env.asset, env.vault, stranger, strangerAcc, 1)
	assert.ErrorIs(t, err, ErrUserNotInitialized)

	// funds checked by the ledger only after all record checks
	err = env.pool.EnterStaking(env.asset, env.vault, user, acc, 101)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// nothing was booked along the way
	ps, err := env.pool.State()
	require.NoError(t, err)
	assert.Zero(t, ps.StakedTotal)
}

func TestLeaveStaking(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	user, acc := env.newStaker(t, 1000)
	require.NoError(t, env.pool.EnterStaking(env.asset, env.vault, user, acc, 600))

	require.NoError(t, env.pool.LeaveStaking(env.asset, env.vault, user, acc, 250))

	us, err := env.pool.User(user)
	require.NoError(t, err)
	assert.Equal(t, uint64(350), us.StakedAmount)

	ps, err := env.pool.State()
	require.NoError(t, err)
	assert.Equal(t, uint64(350), ps.StakedTotal)

	// full exit, then stake again
	require.NoError(t, env.pool.LeaveStaking(env.asset, env.vault, user, acc, 350))
	bal, err := env.ledger.Balance(acc)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal)

	require.NoError(t, env.pool.EnterStaking(env.asset, env.vault, user, acc, 10))
	us, err = env.pool.User(user)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), us.StakedAmount)
}

func TestLeaveStakingUnderflow(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	// a single staker cannot overdraw the vault
	user, acc := env.newStaker(t, 100)
	require.NoError(t, env.pool.EnterStaking(env.asset, env.vault, user, acc, 100))
	err := env.pool.LeaveStaking(env.asset, env.vault, user, acc, 150)
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)

	// with a second staker the vault covers the amount and the user's own
	// counter is what underflows
	other, otherAcc := env.newStaker(t, 100)
	require.NoError(t, env.pool.EnterStaking(env.asset, env.vault, other, otherAcc, 100))
	err = env.pool.LeaveStaking(env.asset, env.vault, user, acc, 150)
	assert.ErrorIs(t, err, safemath.ErrUnderflow)
}

func TestStakedTotalInvariant(t *testing.T) {
	env := newTestEnv(t)
	env.initPool(t)

	type staker struct {
		user, acc haven.Address
	}
	var stakers []staker
	for i := 0; i < 3; i++ {
		user, acc := env.newStaker(t, 10000)
		stakers = append(stakers, staker{user, acc})
	}

	staked := make(map[haven.Address]uint64)
	steps := []struct {
		who    int
		enter  bool
		amount uint64
	}{
		{0, true, 100}, {1, true, 2500}, {2, true, 7}, {0, true, 900},
		{1, false, 2000}, {2, false, 7}, {0, false, 1000}, {1, true, 42},
	}
	for _, step := range steps {
		s := stakers[step.who]
		if step.enter {
			require.NoError(t, env.pool.EnterStaking(env.asset, env.vault, s.user, s.acc, step.amount))
			staked[s.user] += step.amount
		} else {
			require.NoError(t, env.pool.LeaveStaking(env.asset, env.vault, s.user, s.acc, step.amount))
			staked[s.user] -= step.amount
		}

		var sum uint64
		for _, s := range stakers {
			us, err := env.pool.User(s.user)
			require.NoError(t, err)
			assert.Equal(t, staked[s.user], us.StakedAmount)
			sum += us.StakedAmount
		}
		ps, err := env.pool.State()
		require.NoError(t, err)
		assert.Equal(t, sum, ps.StakedTotal)

		vaultBal, err := env.ledger.Balance(env.vault)
		require.NoError(t, err)
		assert.Equal(t, ps.StakedTotal, vaultBal)
	}
}
