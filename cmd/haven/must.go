// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/elastic/gosigar"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakehaven/haven/co"
	"github.com/stakehaven/haven/genesis"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/kv"
	"github.com/stakehaven/haven/log"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/metrics"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/state"
)

var (
	configBucket = kv.Bucket("c")
	genesisKey   = []byte("genesis-id")
)

func initLogger(ctx *cli.Context) {
	logLevel := log.FromLegacyLevel(int(ctx.Uint64(verbosityFlag.Name)))
	verbosity := new(slog.LevelVar)
	verbosity.Set(logLevel)

	output := io.Writer(os.Stdout)
	var handler slog.Handler
	if ctx.Bool(jsonLogsFlag.Name) {
		handler = log.JSONHandlerWithLevel(output, verbosity)
	} else {
		useColor := isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("TERM") != "dumb"
		handler = log.NewTerminalHandlerWithLevel(output, verbosity, useColor)
	}
	log.SetDefault(log.NewLogger(handler))
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		cli.ShowAppHelp(ctx)
		fmt.Println("genesis flag not specified")
		os.Exit(1)
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		fatal(fmt.Sprintf("open genesis file: %v", err))
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()

	var gen genesis.CustomGenesis
	if err := decoder.Decode(&gen); err != nil {
		fatal(fmt.Sprintf("decode genesis file: %v", err))
	}

	customGen, err := genesis.NewCustomNet(&gen)
	if err != nil {
		fatal(fmt.Sprintf("build genesis: %v", err))
	}
	return customGen
}

func makeDataDir(ctx *cli.Context) string {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		fatal(fmt.Sprintf("unable to infer default data dir, use -%s to specify", dataDirFlag.Name))
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		fatal(fmt.Sprintf("create data dir [%v]: %v", dataDir, err))
	}
	return dataDir
}

func makeInstanceDir(ctx *cli.Context, gene *genesis.Genesis) string {
	dataDir := makeDataDir(ctx)

	instanceDir := filepath.Join(dataDir, fmt.Sprintf("instance-%x", gene.ID().Bytes()[24:]))
	if err := os.MkdirAll(instanceDir, 0700); err != nil {
		fatal(fmt.Sprintf("create instance dir [%v]: %v", instanceDir, err))
	}
	return instanceDir
}

func openMainDB(ctx *cli.Context, dataDir string) *lvldb.LevelDB {
	cacheMB := normalizeCacheSize(int(ctx.Uint64(cacheFlag.Name)))
	log.Debug("cache size(MB)", "size", cacheMB)

	// go-ethereum stuff
	// Ensure Go's GC ignores the database cache for trigger percentage
	gogc := math.Max(20, math.Min(100, 100/(float64(cacheMB)/1024)))

	log.Debug("sanitize Go's GC trigger", "percent", int(gogc))
	debug.SetGCPercent(int(gogc))

	fdCache := suggestFDCache()
	log.Debug("fd cache", "n", fdCache)

	dir := filepath.Join(dataDir, "main.db")
	db, err := lvldb.New(dir, lvldb.Options{
		CacheSize:              cacheMB,
		OpenFilesCacheCapacity: fdCache,
	})
	if err != nil {
		fatal(fmt.Sprintf("open record database [%v]: %v", dir, err))
	}
	return db
}

func normalizeCacheSize(sizeMB int) int {
	if sizeMB < 32 {
		sizeMB = 32
	}

	var mem gosigar.Mem
	if err := mem.Get(); err != nil {
		log.Warn("failed to get total mem:", "err", err)
	} else {
		// limit to 1/2 os physical ram
		limitMB := int(mem.Total / 1024 / 1024 / 2)
		if sizeMB > limitMB {
			sizeMB = limitMB
			log.Warn("cache size(MB) limited", "limit", limitMB)
		}
	}
	return sizeMB
}

func suggestFDCache() int {
	limit, err := fdlimit.Current()
	if err != nil {
		fatal("failed to get fd limit:", err)
	}
	if limit <= 1024 {
		log.Warn("low fd limit, increase it if possible", "limit", limit)
	}

	n := limit / 2
	if n > 5120 {
		return 5120
	}
	return n
}

func openOpDB(dataDir string) *opdb.OpDB {
	dir := filepath.Join(dataDir, "ops.db")
	db, err := opdb.New(dir)
	if err != nil {
		fatal(fmt.Sprintf("open op database [%v]: %v", dir, err))
	}
	return db
}

func openMemMainDB() *lvldb.LevelDB {
	db, err := lvldb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open record database: %v", err))
	}
	return db
}

func openMemOpDB() *opdb.OpDB {
	db, err := opdb.NewMem()
	if err != nil {
		fatal(fmt.Sprintf("open op database: %v", err))
	}
	return db
}

// initRecords builds the genesis record layout on a fresh database, or
// verifies that an existing one was built from the same genesis.
func initRecords(gene *genesis.Genesis, mainDB *lvldb.LevelDB, stater *state.Stater) {
	config := configBucket.NewStore(mainDB)

	val, err := config.Get(genesisKey)
	if err != nil {
		if !config.IsNotFound(err) {
			fatal("read genesis id:", err)
		}
		if err := gene.Build(stater); err != nil {
			fatal("build genesis records:", err)
		}
		if err := config.Put(genesisKey, gene.ID().Bytes()); err != nil {
			fatal("write genesis id:", err)
		}
		log.Info("genesis records built", "id", gene.ID(), "name", gene.Name())
		return
	}

	if !bytes.Equal(val, gene.ID().Bytes()) {
		fatal(fmt.Sprintf("genesis mismatch: database was built from %v", haven.BytesToBytes32(val)))
	}
}

func startAPIServer(ctx *cli.Context, handler http.Handler, genesisID haven.Bytes32) (string, func()) {
	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen API addr [%v]: %v", addr, err))
	}
	timeout := ctx.Uint64(apiTimeoutFlag.Name)
	if timeout > 0 {
		handler = handleAPITimeout(handler, time.Duration(timeout)*time.Millisecond)
	}
	handler = handleXGenesisID(handler, genesisID)
	handler = requestBodyLimit(handler)
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}
}

func startMetricsServer(addr string) (string, func()) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		fatal(fmt.Sprintf("listen metrics addr [%v]: %v", addr, err))
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}
}

func printStartupMessage(
	gene *genesis.Genesis,
	dataDir string,
	apiURL string,
) {
	fmt.Printf(`Starting %v
    Program      [ %v ]
    Genesis      [ %v %v ]
    Instance dir [ %v ]
    API portal   [ %v ]
`,
		common.MakeName("Haven", fullVersion()),
		haven.ProgramID,
		gene.ID(), gene.Name(),
		dataDir,
		apiURL)
}

func printSoloStartupMessage(
	gene *genesis.Genesis,
	dataDir string,
	apiURL string,
) {
	tableHead := `
┌────────────────────────────────────────────┬────────────────────────────────────────────────────────────────────┐
│                   Address                  │                             Private Key                            │`
	tableContent := `
├────────────────────────────────────────────┼────────────────────────────────────────────────────────────────────┤
│ %v │ %v │`
	tableEnd := `
└────────────────────────────────────────────┴────────────────────────────────────────────────────────────────────┘`

	info := fmt.Sprintf(`Starting %v
    Program     [ %v ]
    Genesis     [ %v %v ]
    Asset       [ %v ]
    Pool        [ %v ]
    Vault       [ %v ]
    Data dir    [ %v ]
    API portal  [ %v ]`,
		common.MakeName("Haven solo", fullVersion()),
		haven.ProgramID,
		gene.ID(), gene.Name(),
		genesis.DevAsset,
		genesis.DevPool,
		genesis.DevVault,
		dataDir,
		apiURL)

	info += tableHead

	for _, a := range genesis.DevAccounts() {
		info += fmt.Sprintf(tableContent,
			a.Address,
			haven.BytesToBytes32(crypto.FromECDSA(a.PrivateKey)),
		)
	}
	info += tableEnd + "\r\n"

	fmt.Print(info)
}
