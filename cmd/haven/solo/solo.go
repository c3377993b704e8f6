// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/stakehaven/haven/authority"
	"github.com/stakehaven/haven/co"
	"github.com/stakehaven/haven/genesis"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/log"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/pool"
	"github.com/stakehaven/haven/runtime"
	"github.com/stakehaven/haven/state"
)

var logger = log.WithContext("pkg", "solo")

// Solo mode is the standalone client without an external pool admin.
type Solo struct {
	rt     *runtime.Runtime
	stater *state.Stater
	opDB   *opdb.OpDB
}

// New returns Solo instance
func New(rt *runtime.Runtime, stater *state.Stater, opDB *opdb.OpDB) *Solo {
	return &Solo{
		rt:     rt,
		stater: stater,
		opDB:   opDB,
	}
}

// Init claims the dev pool record unless an earlier run already did.
func (s *Solo) Init() error {
	st := s.stater.NewState()
	p := pool.New(genesis.DevPool, st, ledger.New(haven.LedgerID, st))

	claimed, err := p.Exists()
	if err != nil {
		return errors.Wrap(err, "check pool record")
	}
	if claimed {
		logger.Info("dev pool already claimed", "pool", genesis.DevPool)
		return nil
	}

	signer, nonce, err := authority.Derive(genesis.DevAsset, genesis.DevPool)
	if err != nil {
		return errors.Wrap(err, "derive program signer")
	}

	admin := genesis.DevAccounts()[0]
	op := runtime.MustSign(
		new(runtime.Builder).
			Kind(runtime.KindInitialize).
			Pool(genesis.DevPool).
			Asset(genesis.DevAsset).
			Vault(genesis.DevVault).
			ProgramSigner(signer).
			DerivationNonce(nonce).
			Nonce(rand.Uint64()). //#nosec G404
			Build(),
		admin.PrivateKey,
	)

	receipt, err := s.rt.Execute(op)
	if err != nil {
		return errors.Wrap(err, "claim pool")
	}

	logger.Info("dev pool claimed",
		"id", receipt.ID,
		"pool", genesis.DevPool,
		"signer", signer,
		"nonce", nonce,
	)
	return nil
}

// Run reports committed ops until the context is canceled.
func (s *Solo) Run(ctx context.Context) error {
	goes := &co.Goes{}

	defer func() {
		<-ctx.Done()
		goes.Wait()
	}()

	logger.Info("prepared to watch ops")

	goes.Go(func() {
		s.loop(ctx)
	})

	return nil
}

func (s *Solo) loop(ctx context.Context) {
	lastSeq, err := s.opDB.NewestSeq()
	if err != nil {
		logger.Error("failed to read newest op seq", "err", err)
		return
	}

	feed := s.rt.OpFeed().NewWaiter()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping op watch service......")
			return
		case <-feed.C():
			lastSeq = s.report(ctx, lastSeq)
		}
	}
}

// report logs every op committed after fromSeq and returns the newest
// seq seen, so the caller can resume from there.
func (s *Solo) report(ctx context.Context, fromSeq uint64) uint64 {
	events, err := s.opDB.Filter(ctx, &opdb.Filter{
		Range: &opdb.Range{Unit: opdb.Seq, From: fromSeq + 1},
	})
	if err != nil {
		logger.Error("failed to filter ops", "err", err)
		return fromSeq
	}

	for _, ev := range events {
		logger.Info("op committed",
			"seq", ev.Seq,
			"kind", ev.Kind,
			"id", ev.ID,
			"origin", ev.Origin,
			"amount", ev.Amount,
			"stakedTotal", ev.StakedTotal,
		)
		if ev.Seq > fromSeq {
			fromSeq = ev.Seq
		}
	}
	return fromSeq
}
