// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/state"
	"github.com/stakehaven/haven/test/datagen"
)

var (
	assetID    = datagen.RandAddress()
	mintAuth   = datagen.RandAddress()
	freezeAuth = datagen.RandAddress()
	accountID  = datagen.RandAddress()
	owner      = datagen.RandAddress()
)

func initLedgerServer(t *testing.T) *httptest.Server {
	store, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	stater := state.NewStater(store)
	st := stater.NewState()

	ldg := ledger.New(haven.LedgerID, st)
	require.NoError(t, ldg.CreateAsset(assetID, mintAuth, freezeAuth))
	require.NoError(t, ldg.CreateAccount(accountID, assetID, owner))
	require.NoError(t, ldg.Mint(assetID, accountID, ledger.Signed(mintAuth), 100))

	stage, err := st.Stage()
	require.NoError(t, err)
	require.NoError(t, stage.Commit())

	router := mux.NewRouter()
	New(stater).Mount(router, "/ledger")
	return httptest.NewServer(router)
}

func TestGetAsset(t *testing.T) {
	ts := initLedgerServer(t)
	defer ts.Close()

	body, statusCode := httpGet(t, ts.URL+"/ledger/assets/"+assetID.String())
	require.Equal(t, http.StatusOK, statusCode)

	var got Asset
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, mintAuth, got.MintAuthority)
	assert.Equal(t, freezeAuth, got.FreezeAuthority)
	assert.Equal(t, uint64(100), got.Supply)

	_, statusCode = httpGet(t, ts.URL+"/ledger/assets/"+datagen.RandAddress().String())
	assert.Equal(t, http.StatusNotFound, statusCode)

	_, statusCode = httpGet(t, ts.URL+"/ledger/assets/0xqq")
	assert.Equal(t, http.StatusBadRequest, statusCode)
}

func TestGetAccount(t *testing.T) {
	ts := initLedgerServer(t)
	defer ts.Close()

	body, statusCode := httpGet(t, ts.URL+"/ledger/accounts/"+accountID.String())
	require.Equal(t, http.StatusOK, statusCode)

	var got Account
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, assetID, got.Asset)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, uint64(100), got.Balance)

	_, statusCode = httpGet(t, ts.URL+"/ledger/accounts/"+datagen.RandAddress().String())
	assert.Equal(t, http.StatusNotFound, statusCode)

	_, statusCode = httpGet(t, ts.URL+"/ledger/accounts/0xqq")
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
