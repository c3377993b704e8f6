// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehaven/haven/co"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/test/datagen"
)

func initSubscriptionsServer(t *testing.T, allowedOrigins []string) (*httptest.Server, *opdb.OpDB, *co.Signal) {
	db, err := opdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(db.Close)

	feed := &co.Signal{}
	subs := New(db, feed, allowedOrigins)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	t.Cleanup(subs.Close)
	return ts, db, feed
}

func writeEvent(t *testing.T, db *opdb.OpDB, kind string) *opdb.Event {
	event := &opdb.Event{
		Time:        datagen.RandUint64(),
		Kind:        kind,
		ID:          datagen.RandBytes32(),
		Origin:      datagen.RandAddress(),
		Pool:        datagen.RandAddress(),
		Asset:       datagen.RandAddress(),
		Vault:       datagen.RandAddress(),
		Account:     datagen.RandAddress(),
		Amount:      datagen.RandUint64(),
		StakedTotal: datagen.RandUint64(),
	}
	seq, err := db.Write(event)
	require.NoError(t, err)
	event.Seq = seq
	return event
}

func wsURL(ts *httptest.Server, path, rawQuery string) string {
	u := url.URL{
		Scheme:   "ws",
		Host:     strings.TrimPrefix(ts.URL, "http://"),
		Path:     path,
		RawQuery: rawQuery,
	}
	return u.String()
}

func readOpMessage(t *testing.T, conn *websocket.Conn) *OpMessage {
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var op OpMessage
	require.NoError(t, json.Unmarshal(msg, &op))
	return &op
}

func TestSubscribeOps(t *testing.T) {
	ts, db, feed := initSubscriptionsServer(t, []string{"*"})

	ev1 := writeEvent(t, db, "enter_staking")
	ev2 := writeEvent(t, db, "leave_staking")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/ops", "pos=0"), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.Equal(t, "Upgrade", resp.Header.Get("Connection"))
	assert.Equal(t, "websocket", resp.Header.Get("Upgrade"))

	got := readOpMessage(t, conn)
	assert.Equal(t, ev1.Seq, got.Seq)
	assert.Equal(t, ev1.Kind, got.Kind)
	assert.Equal(t, ev1.ID, got.ID)
	assert.Equal(t, ev1.Origin, got.Origin)
	assert.Equal(t, ev1.Pool, got.Pool)
	assert.Equal(t, ev1.Amount, got.Amount)
	assert.Equal(t, ev1.StakedTotal, got.StakedTotal)

	assert.Equal(t, ev2.Seq, readOpMessage(t, conn).Seq)

	// an op committed while subscribed arrives after the feed broadcast
	ev3 := writeEvent(t, db, "airdrop")
	feed.Broadcast()
	assert.Equal(t, ev3.Seq, readOpMessage(t, conn).Seq)
}

func TestSubscribeOpsFromNewest(t *testing.T) {
	ts, db, feed := initSubscriptionsServer(t, []string{"*"})

	// without pos the stream starts at the newest committed op
	writeEvent(t, db, "initialize")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/ops", ""), nil)
	require.NoError(t, err)
	defer conn.Close()

	ev := writeEvent(t, db, "enter_staking")
	feed.Broadcast()

	got := readOpMessage(t, conn)
	assert.Equal(t, ev.Seq, got.Seq)
	assert.Equal(t, ev.Kind, got.Kind)
}

func TestSubscribeOpsInvalidRequest(t *testing.T) {
	ts, _, _ := initSubscriptionsServer(t, []string{"*"})

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/ops", "pos=not-a-number"), nil)
	assert.Error(t, err)
	assert.Nil(t, conn)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	conn, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/other", ""), nil)
	assert.Error(t, err)
	assert.Nil(t, conn)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubscribeOpsOriginCheck(t *testing.T) {
	ts, _, _ := initSubscriptionsServer(t, []string{"https://good.example"})

	header := http.Header{"Origin": []string{"https://evil.example"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/ops", ""), header)
	assert.Error(t, err)
	assert.Nil(t, conn)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header = http.Header{"Origin": []string{"https://good.example"}}
	conn, resp, err = websocket.DefaultDialer.Dial(wsURL(ts, "/subscriptions/ops", ""), header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
}
