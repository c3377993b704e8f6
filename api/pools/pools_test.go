// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/pool"
	"github.com/stakehaven/haven/state"
	"github.com/stakehaven/haven/test/datagen"
)

var (
	poolAddr = datagen.RandAddress()
	asset    = datagen.RandAddress()
	vault    = datagen.RandAddress()
	staker   = datagen.RandAddress()
)

func initPoolsServer(t *testing.T) *httptest.Server {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	stater := state.NewStater(store)
	st := stater.NewState()

	signer, nonce, err := authority.Derive(asset, poolAddr)
	require.NoError(t, err)

	p := pool.New(poolAddr, st, ledger.New(haven.LedgerID, st))
	require.NoError(t, p.Initialize(asset, vault, signer, nonce))
	require.NoError(t, p.InitializeUser(staker))

	stage, err := st.Stage()
	require.NoError(t, err)
	require.NoError(t, stage.Commit())

	router := mux.NewRouter()
	New(stater).Mount(router, "/pools")
	return httptest.NewServer(router)
}

func TestGetPool(t *testing.T) {
	ts := initPoolsServer(t)
	defer ts.Close()

	body, statusCode := httpGet(t, ts.URL+"/pools/"+poolAddr.String())
	require.Equal(t, http.StatusOK, statusCode)

	var got Pool
	require.NoError(t, json.Unmarshal(body, &got))

	signer, nonce, err := authority.Derive(asset, poolAddr)
	require.NoError(t, err)
	assert.Equal(t, asset, got.Asset)
	assert.Equal(t, vault, got.Vault)
	assert.Equal(t, signer, got.ProgramSigner)
	assert.Equal(t, nonce, got.Nonce)
	assert.Equal(t, uint64(0), got.StakedTotal)
}

func TestGetPoolUnclaimed(t *testing.T) {
	ts := initPoolsServer(t)
	defer ts.Close()

	_, statusCode := httpGet(t, ts.URL+"/pools/"+datagen.RandAddress().String())
	assert.Equal(t, http.StatusNotFound, statusCode)
}

func TestGetPoolBadAddress(t *testing.T) {
	ts := initPoolsServer(t)
	defer ts.Close()

	_, statusCode := httpGet(t, ts.URL+"/pools/invalid-address")
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func TestGetUser(t *testing.T) {
	ts := initPoolsServer(t)
	defer ts.Close()

	body, statusCode := httpGet(t, fmt.Sprintf("%s/pools/%s/users/%s", ts.URL, poolAddr, staker))
	require.Equal(t, http.StatusOK, statusCode)

	var got User
	require.NoError(t, json.Unmarshal(body, &got))
	assert.True(t, got.Initialized)
	assert.Equal(t, uint64(0), got.StakedAmount)

	// a user without a staking record reads as not found
	_, statusCode = httpGet(t, fmt.Sprintf("%s/pools/%s/users/%s", ts.URL, poolAddr, datagen.RandAddress()))
	assert.Equal(t, http.StatusNotFound, statusCode)

	_, statusCode = httpGet(t, fmt.Sprintf("%s/pools/%s/users/oops", ts.URL, poolAddr))
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()

	r, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}
	return r, res.StatusCode
}
