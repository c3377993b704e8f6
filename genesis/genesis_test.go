// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/genesis"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/state"
)

func TestDevnetGenesis(t *testing.T) {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	gene := genesis.NewDevnet()
	assert.Equal(t, "devnet", gene.Name())
	assert.False(t, gene.ID().IsZero())

	stater := state.NewStater(store)
	require.NoError(t, gene.Build(stater))

	st := stater.NewState()
	ldg := ledger.New(haven.LedgerID, st)

	signer, _, err := authority.Derive(genesis.DevAsset, genesis.DevPool)
	require.NoError(t, err)

	asset, err := ldg.Asset(genesis.DevAsset)
	require.NoError(t, err)
	assert.Equal(t, signer, asset.MintAuthority)
	assert.Equal(t, genesis.DevAccounts()[0].Address, asset.FreezeAuthority)

	vault, err := ldg.Account(genesis.DevVault)
	require.NoError(t, err)
	assert.Equal(t, genesis.DevAsset, vault.Asset)
	assert.Equal(t, signer, vault.Owner)
	assert.Zero(t, vault.Balance)

	for _, a := range genesis.DevAccounts() {
		bal, err := ldg.Balance(genesis.DevTokenAccount(a.Address))
		require.NoError(t, err)
		assert.Equal(t, genesis.DevBalance, bal)
	}

	// the pool record must stay unclaimed for the initialize op
	exists, err := st.Exists(genesis.DevPool)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDevAccounts(t *testing.T) {
	accs := genesis.DevAccounts()
	assert.Len(t, accs, 10)

	seen := make(map[haven.Address]bool)
	for _, a := range accs {
		assert.Equal(t, haven.PubkeyToAddress(&a.PrivateKey.PublicKey), a.Address)
		assert.False(t, seen[a.Address])
		seen[a.Address] = true
	}
}

func TestNewCustomNet(t *testing.T) {
	asset := haven.BytesToAddress([]byte("customnet-asset"))
	pool := haven.BytesToAddress([]byte("customnet-pool"))
	vault := haven.BytesToAddress([]byte("customnet-vault"))
	admin := haven.BytesToAddress([]byte("customnet-admin"))
	holder := haven.BytesToAddress([]byte("customnet-holder"))
	holderAcc := haven.BytesToAddress([]byte("customnet-holder-acc"))

	gene, err := genesis.NewCustomNet(&genesis.CustomGenesis{
		Asset:           asset,
		FreezeAuthority: admin,
		Pool:            pool,
		Vault:           vault,
		Accounts: []genesis.Account{
			{ID: holderAcc, Owner: holder, Balance: 777},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "customnet", gene.Name())

	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	stater := state.NewStater(store)
	require.NoError(t, gene.Build(stater))

	st := stater.NewState()
	ldg := ledger.New(haven.LedgerID, st)

	signer, _, err := authority.Derive(asset, pool)
	require.NoError(t, err)

	got, err := ldg.Asset(asset)
	require.NoError(t, err)
	assert.Equal(t, signer, got.MintAuthority)
	assert.Equal(t, admin, got.FreezeAuthority)

	bal, err := ldg.Balance(holderAcc)
	require.NoError(t, err)
	assert.Equal(t, uint64(777), bal)
}

func TestNewCustomNetInvalid(t *testing.T) {
	base := func() *genesis.CustomGenesis {
		return &genesis.CustomGenesis{
			Asset:           haven.BytesToAddress([]byte("a")),
			FreezeAuthority: haven.BytesToAddress([]byte("fa")),
			Pool:            haven.BytesToAddress([]byte("p")),
			Vault:           haven.BytesToAddress([]byte("v")),
		}
	}

	gen := base()
	gen.Asset = haven.Address{}
	_, err := genesis.NewCustomNet(gen)
	assert.EqualError(t, err, "asset must be set")

	gen = base()
	gen.Pool = haven.Address{}
	_, err = genesis.NewCustomNet(gen)
	assert.EqualError(t, err, "pool must be set")

	gen = base()
	gen.Vault = haven.Address{}
	_, err = genesis.NewCustomNet(gen)
	assert.EqualError(t, err, "vault must be set")

	gen = base()
	gen.FreezeAuthority = haven.Address{}
	_, err = genesis.NewCustomNet(gen)
	assert.EqualError(t, err, "freezeAuthority must be set")

	gen = base()
	gen.Accounts = []genesis.Account{{Owner: haven.BytesToAddress([]byte("o"))}}
	_, err = genesis.NewCustomNet(gen)
	assert.EqualError(t, err, "account id must be set")
}

func TestCustomNetDuplicateVault(t *testing.T) {
	vault := haven.BytesToAddress([]byte("dup-vault"))

	gene, err := genesis.NewCustomNet(&genesis.CustomGenesis{
		Asset:           haven.BytesToAddress([]byte("dup-asset")),
		FreezeAuthority: haven.BytesToAddress([]byte("dup-admin")),
		Pool:            haven.BytesToAddress([]byte("dup-pool")),
		Vault:           vault,
		Accounts: []genesis.Account{
			{ID: vault, Owner: haven.BytesToAddress([]byte("dup-owner"))},
		},
	})
	require.NoError(t, err)

	store, err := lvldb.NewMem()
	require.NoError(t, err)
	defer store.Close()

	err = gene.Build(state.NewStater(store))
	assert.ErrorIs(t, err, ledger.ErrAccountExists)
}
