// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/genesis"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/pool"
	"github.com/stakehaven/haven/runtime"
	"github.com/stakehaven/haven/state"
)

func newSolo(t *testing.T) *Solo {
	db, err := lvldb.NewMem()
	assert.NoError(t, err)
	stater := state.NewStater(db)

	gene := genesis.NewDevnet()
	assert.NoError(t, gene.Build(stater))

	opDB, err := opdb.NewMem()
	assert.NoError(t, err)
	t.Cleanup(opDB.Close)

	return New(runtime.New(haven.ProgramID, stater, opDB), stater, opDB)
}

func TestInitSolo(t *testing.T) {
	solo := newSolo(t)

	assert.NoError(t, solo.Init())

	st := solo.stater.NewState()
	p := pool.New(genesis.DevPool, st, ledger.New(haven.LedgerID, st))

	claimed, err := p.Exists()
	assert.NoError(t, err)
	assert.True(t, claimed)

	ps, err := p.State()
	assert.NoError(t, err)
	assert.Equal(t, genesis.DevAsset, ps.Asset)
	assert.Equal(t, genesis.DevVault, ps.Vault)
	assert.Equal(t, uint64(0), ps.StakedTotal)
	assert.True(t, authority.Verify(genesis.DevAsset, genesis.DevPool, ps.ProgramSigner, ps.Nonce))

	seq, err := solo.opDB.NewestSeq()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}

func TestInitSoloClaimedPool(t *testing.T) {
	solo := newSolo(t)

	assert.NoError(t, solo.Init())

	// a second init notices the claimed pool and writes no op
	assert.NoError(t, solo.Init())

	seq, err := solo.opDB.NewestSeq()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}
