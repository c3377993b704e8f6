// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/state"
	"github.com/stakehaven/haven/test/datagen"
)

func M(a ...any) []any {
	return a
}

func newTestState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func TestMaster(t *testing.T) {
	st := newTestState(t)

	addr := datagen.RandAddress()
	master := datagen.RandAddress()

	assert.Equal(t, M(haven.Address{}, nil), M(st.GetMaster(addr)))
	assert.Equal(t, M(false, nil), M(st.Exists(addr)))

	assert.Nil(t, st.SetMaster(addr, master))

	assert.Equal(t, M(master, nil), M(st.GetMaster(addr)))
	assert.Equal(t, M(true, nil), M(st.Exists(addr)))
}

func TestStorage(t *testing.T) {
	st := newTestState(t)

	addr := datagen.RandAddress()
	key := datagen.RandBytes32()
	value := datagen.RandBytes32()

	st.SetStorage(addr, key, value)
	assert.Equal(t, M(value, nil), M(st.GetStorage(addr, key)))

	// zero value clears the entry
	st.SetStorage(addr, key, haven.Bytes32{})
	assert.Equal(t, M(haven.Bytes32{}, nil), M(st.GetStorage(addr, key)))

	raw, err := st.GetRawStorage(addr, key)
	assert.Nil(t, err)
	assert.Zero(t, len(raw))
}

func TestEncodeDecodeStorage(t *testing.T) {
	st := newTestState(t)

	addr := datagen.RandAddress()
	key := datagen.RandBytes32()

	type record struct {
		Owner   haven.Address
		Balance uint64
	}
	saved := record{datagen.RandAddress(), datagen.RandUint64()}

	err := st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&saved)
	})
	assert.Nil(t, err)

	var loaded record
	err = st.DecodeStorage(addr, key, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &loaded)
	})
	assert.Nil(t, err)
	assert.Equal(t, saved, loaded)
}

func TestCheckpointRevert(t *testing.T) {
	st := newTestState(t)

	addr := datagen.RandAddress()
	key := datagen.RandBytes32()
	before := datagen.RandBytes32()
	after := datagen.RandBytes32()

	st.SetStorage(addr, key, before)

	rev := st.NewCheckpoint()
	st.SetStorage(addr, key, after)
	assert.Nil(t, st.SetMaster(addr, datagen.RandAddress()))
	assert.Equal(t, M(after, nil), M(st.GetStorage(addr, key)))

	st.RevertTo(rev)

	assert.Equal(t, M(before, nil), M(st.GetStorage(addr, key)))
	assert.Equal(t, M(haven.Address{}, nil), M(st.GetMaster(addr)))
}

func TestCommitReload(t *testing.T) {
	db, err := lvldb.NewMem()
	assert.Nil(t, err)
	defer db.Close()

	stater := state.NewStater(db)

	addr := datagen.RandAddress()
	master := datagen.RandAddress()
	key := datagen.RandBytes32()
	value := datagen.RandBytes32()

	st := stater.NewState()
	assert.Nil(t, st.SetMaster(addr, master))
	st.SetStorage(addr, key, value)

	stage, err := st.Stage()
	assert.Nil(t, err)
	assert.Nil(t, stage.Commit())

	reloaded := stater.NewState()
	assert.Equal(t, M(master, nil), M(reloaded.GetMaster(addr)))
	assert.Equal(t, M(value, nil), M(reloaded.GetStorage(addr, key)))
}

func TestStorageCodecFuzz(t *testing.T) {
	st := newTestState(t)

	type entry struct {
		A uint64
		B haven.Address
		C []byte
	}

	f := fuzz.New().NilChance(0)
	for i := 0; i < 10; i++ {
		var saved entry
		f.Fuzz(&saved.A)
		f.Fuzz(&saved.B)
		f.Fuzz(&saved.C)

		addr := datagen.RandAddress()
		key := datagen.RandBytes32()

		assert.Nil(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
			return rlp.EncodeToBytes(&saved)
		}))

		var loaded entry
		assert.Nil(t, st.DecodeStorage(addr, key, func(raw []byte) error {
			return rlp.DecodeBytes(raw, &loaded)
		}))
		assert.Equal(t, saved, loaded)
	}
}
