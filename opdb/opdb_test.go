// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package opdb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/opdb"
)

func newTestEvent(i uint64) *opdb.Event {
	kind := "enter_staking"
	if i%2 == 0 {
		kind = "leave_staking"
	}
	return &opdb.Event{
		Time:        1000 + i,
		Kind:        kind,
		ID:          haven.Blake2b([]byte{byte(i)}),
		Origin:      haven.BytesToAddress([]byte{byte(i % 3)}),
		Pool:        haven.BytesToAddress([]byte("pool")),
		Asset:       haven.BytesToAddress([]byte("asset")),
		Vault:       haven.BytesToAddress([]byte("vault")),
		Account:     haven.BytesToAddress([]byte{0xcc, byte(i)}),
		Amount:      i * 10,
		StakedTotal: i * 100,
	}
}

func TestOpDB(t *testing.T) {
	db, err := opdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), seq)

	var events []*opdb.Event
	for i := uint64(1); i <= 10; i++ {
		ev := newTestEvent(i)
		seq, err := db.Write(ev)
		require.NoError(t, err)
		assert.Equal(t, i, seq)
		assert.Equal(t, i, ev.Seq)
		events = append(events, ev)
	}

	seq, err = db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), seq)

	all, err := db.Filter(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, events[0].ID, all[0].ID)
	assert.Equal(t, events[0].Amount, all[0].Amount)
	assert.Equal(t, events[0].StakedTotal, all[0].StakedTotal)
	assert.Equal(t, events[0].Account, all[0].Account)
}

func TestOpDBFilter(t *testing.T) {
	db, err := opdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	for i := uint64(1); i <= 10; i++ {
		_, err := db.Write(newTestEvent(i))
		require.NoError(t, err)
	}

	// by seq range
	got, err := db.Filter(context.Background(), &opdb.Filter{
		Range: &opdb.Range{Unit: opdb.Seq, From: 3, To: 5},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(3), got[0].Seq)
	assert.Equal(t, uint64(5), got[2].Seq)

	// by time range
	got, err = db.Filter(context.Background(), &opdb.Filter{
		Range: &opdb.Range{Unit: opdb.Time, From: 1001, To: 1002},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	// by kind
	got, err = db.Filter(context.Background(), &opdb.Filter{
		CriteriaSet: []*opdb.Criteria{{Kind: "enter_staking"}},
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	for _, ev := range got {
		assert.Equal(t, "enter_staking", ev.Kind)
	}

	// by origin, multiple criteria or-ed
	o1 := haven.BytesToAddress([]byte{1})
	o2 := haven.BytesToAddress([]byte{2})
	got, err = db.Filter(context.Background(), &opdb.Filter{
		CriteriaSet: []*opdb.Criteria{{Origin: &o1}, {Origin: &o2}},
	})
	require.NoError(t, err)
	for _, ev := range got {
		assert.Contains(t, []haven.Address{o1, o2}, ev.Origin)
	}
	assert.Len(t, got, 7)

	// non-matching pool
	other := haven.BytesToAddress([]byte("other"))
	got, err = db.Filter(context.Background(), &opdb.Filter{
		CriteriaSet: []*opdb.Criteria{{Pool: &other}},
	})
	require.NoError(t, err)
	assert.Len(t, got, 0)

	// order desc with paging
	got, err = db.Filter(context.Background(), &opdb.Filter{
		Order:   opdb.DESC,
		Options: &opdb.Options{Offset: 0, Limit: 3},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, uint64(10), got[0].Seq)
	assert.Equal(t, uint64(8), got[2].Seq)
}

func TestOpDBGet(t *testing.T) {
	db, err := opdb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	ev := newTestEvent(1)
	_, err = db.Write(ev)
	require.NoError(t, err)

	got, err := db.Get(context.Background(), ev.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ev.Kind, got.Kind)
	assert.Equal(t, ev.Origin, got.Origin)

	got, err = db.Get(context.Background(), haven.Blake2b([]byte("missing")))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOpDBOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.db")

	db, err := opdb.New(path)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())

	_, err = db.Write(newTestEvent(1))
	require.NoError(t, err)
	db.Close()

	// reopen and read back
	db, err = opdb.New(path)
	require.NoError(t, err)
	defer db.Close()

	seq, err := db.NewestSeq()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
}
