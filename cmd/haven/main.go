// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/stakehaven/haven/api"
	"github.com/stakehaven/haven/cmd/haven/solo"
	"github.com/stakehaven/haven/genesis"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/log"
	"github.com/stakehaven/haven/lvldb"
	"github.com/stakehaven/haven/metrics"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/runtime"
	"github.com/stakehaven/haven/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Haven",
		Usage:     "Node of the StakeHaven staking pool",
		Copyright: "2025 StakeHaven",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiTimeoutFlag,
			apiOpsLimitFlag,
			enableAPILogsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
		},
		Action: defaultAction,
		Commands: []cli.Command{
			{
				Name:  "solo",
				Usage: "client runs in solo mode for test & dev",
				Flags: []cli.Flag{
					dataDirFlag,
					cacheFlag,
					apiAddrFlag,
					apiCorsFlag,
					apiTimeoutFlag,
					apiOpsLimitFlag,
					enableAPILogsFlag,
					persistFlag,
					verbosityFlag,
					jsonLogsFlag,
					pprofFlag,
					enableMetricsFlag,
					metricsAddrFlag,
				},
				Action: soloAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	gene := selectGenesis(ctx)
	instanceDir := makeInstanceDir(ctx, gene)

	mainDB := openMainDB(ctx, instanceDir)
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	opDB := openOpDB(instanceDir)
	defer func() { log.Info("closing op database..."); opDB.Close() }()

	stater := state.NewStater(mainDB)
	initRecords(gene, mainDB, stater)

	rt := runtime.New(haven.ProgramID, stater, opDB)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
		log.Info("metrics server started", "url", url)
	}

	apiHandler, apiCloser := api.New(rt, stater, opDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		OpsLimit:        ctx.Uint64(apiOpsLimitFlag.Name),
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler, gene.ID())
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	printStartupMessage(gene, instanceDir, apiURL)

	exitSignal := handleExitSignal()
	<-exitSignal.Done()
	return nil
}

func soloAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)
	gene := genesis.NewDevnet()

	var mainDB *lvldb.LevelDB
	var opDB *opdb.OpDB
	var instanceDir string

	if ctx.Bool(persistFlag.Name) {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(ctx, instanceDir)
		opDB = openOpDB(instanceDir)
	} else {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		opDB = openMemOpDB()
	}

	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing op database..."); opDB.Close() }()

	stater := state.NewStater(mainDB)
	initRecords(gene, mainDB, stater)

	rt := runtime.New(haven.ProgramID, stater, opDB)

	soloContext := solo.New(rt, stater, opDB)
	if err := soloContext.Init(); err != nil {
		return err
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc := startMetricsServer(ctx.String(metricsAddrFlag.Name))
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
		log.Info("metrics server started", "url", url)
	}

	apiHandler, apiCloser := api.New(rt, stater, opDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
		OpsLimit:        ctx.Uint64(apiOpsLimitFlag.Name),
	})
	defer func() { log.Info("closing API..."); apiCloser() }()

	apiURL, srvCloser := startAPIServer(ctx, apiHandler, gene.ID())
	defer func() { log.Info("stopping API server..."); srvCloser() }()

	printSoloStartupMessage(gene, instanceDir, apiURL)

	return soloContext.Run(handleExitSignal())
}
