// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/stakehaven/haven/api/doc"
	apiledger "github.com/stakehaven/haven/api/ledger"
	"github.com/stakehaven/haven/api/ops"
	"github.com/stakehaven/haven/api/pools"
	"github.com/stakehaven/haven/api/subscriptions"
	"github.com/stakehaven/haven/log"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/runtime"
	"github.com/stakehaven/haven/state"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	PprofOn         bool
	EnableReqLogger bool
	EnableMetrics   bool
	OpsLimit        uint64
}

// New return api router
func New(
	rt *runtime.Runtime,
	stater *state.Stater,
	opDB *opdb.OpDB,
	opts Options,
) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	// to serve the api doc
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/haven.yaml", http.StatusTemporaryRedirect)
		})

	pools.New(stater).
		Mount(router, "/pools")
	apiledger.New(stater).
		Mount(router, "/ledger")
	ops.New(rt, opDB, opts.OpsLimit).
		Mount(router, "/ops")
	subs := subscriptions.New(opDB, rt.OpFeed(), origins)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
