// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakehaven/haven/log"
)

func TestRequestLoggerHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(log.JSONHandler(&buf))

	var gotBody string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		gotBody = string(b)
		w.WriteHeader(http.StatusAccepted)
	})

	handler := RequestLoggerHandler(inner, logger)

	req := httptest.NewRequest(http.MethodPost, "/ops", bytes.NewBufferString(`{"raw":"0x00"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	// the wrapped handler must still see the full body
	assert.Equal(t, `{"raw":"0x00"}`, gotBody)

	logged := buf.String()
	assert.Contains(t, logged, "API Request")
	assert.Contains(t, logged, "/ops")
	assert.Contains(t, logged, `{\"raw\":\"0x00\"}`)
}
