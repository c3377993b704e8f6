// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes signed ops against the record store.
//
// The runtime owns the account validation layer: it recovers the op origin
// from the signature, proves record ownership and token account shapes, and
// only then hands over to the pool handlers. Ledger movement and pool
// bookkeeping of one op commit as a single unit. Nothing of a failed op
// reaches the store.
package runtime

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/stakehaven/haven/co"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/log"
	"github.com/stakehaven/haven/metrics"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/pool"
	"github.com/stakehaven/haven/state"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metricOpDuration = metrics.LazyLoadHistogramVec("runtime_op_duration_ms", []string{"kind"}, metrics.Bucket10s)
)

// Receipt is the execution result of a committed op.
type Receipt struct {
	ID          haven.Bytes32
	Kind        Kind
	Origin      haven.Address
	Pool        haven.Address
	Amount      uint64
	StakedTotal uint64
}

// Runtime executes ops serially against the record store.
type Runtime struct {
	program haven.Address
	stater  *state.Stater
	opDB    *opdb.OpDB

	mu     sync.Mutex
	opFeed co.Signal
}

// New creates a runtime whose pool records are owned by the given program
// identity. opDB is optional. If present every committed op is recorded in it.
func New(program haven.Address, stater *state.Stater, opDB *opdb.OpDB) *Runtime {
	return &Runtime{
		program: program,
		stater:  stater,
		opDB:    opDB,
	}
}

// Program returns the identity owning the pool records.
func (rt *Runtime) Program() haven.Address {
	return rt.program
}

// OpFeed returns the signal broadcast on every committed op.
func (rt *Runtime) OpFeed() *co.Signal {
	return &rt.opFeed
}

// Execute verifies and applies the op, committing its state changes on
// success. A failed op leaves the store untouched.
func (rt *Runtime) Execute(op *Op) (receipt *Receipt, err error) {
	startTime := time.Now()
	defer func() {
		metricOpDuration().ObserveWithLabels(
			time.Since(startTime).Milliseconds(),
			map[string]string{"kind": op.Kind().String()},
		)
	}()

	origin, err := op.Origin()
	if err != nil {
		logger.Debug("rejected op", "id", op.ID(), "error", err)
		return nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	st := rt.stater.NewState()
	checkpoint := st.NewCheckpoint()
	receipt, err = rt.apply(st, op, origin)
	if err != nil {
		st.RevertTo(checkpoint)
		return nil, err
	}

	stage, err := st.Stage()
	if err != nil {
		return nil, err
	}
	if err := stage.Commit(); err != nil {
		return nil, err
	}

	rt.record(receipt, op)
	rt.opFeed.Broadcast()
	return receipt, nil
}

func (rt *Runtime) apply(st *state.State, op *Op, origin haven.Address) (*Receipt, error) {
	ldg := ledger.New(haven.LedgerID, st)
	p := pool.New(op.Pool(), st, ldg)

	var err error
	switch op.Kind() {
	case KindInitialize:
		err = rt.applyInitialize(st, ldg, p, op, origin)
	case KindAirdrop:
		err = rt.applyAirdrop(st, ldg, p, op, origin)
	case KindInitializeUser:
		err = p.InitializeUser(origin)
	case KindEnterStaking:
		if err = rt.validateStaking(st, ldg, op, origin); err == nil {
			err = p.EnterStaking(op.Asset(), op.Vault(), origin, op.Account(), op.Amount())
		}
	case KindLeaveStaking:
		if err = rt.validateStaking(st, ldg, op, origin); err == nil {
			err = p.LeaveStaking(op.Asset(), op.Vault(), origin, op.Account(), op.Amount())
		}
	default:
		err = ErrUnknownKind
	}
	if err != nil {
		return nil, err
	}

	total := uint64(0)
	if ps, err := p.State(); err == nil {
		total = ps.StakedTotal
	} else if !errors.Is(err, pool.ErrPoolNotInitialized) {
		return nil, err
	}

	return &Receipt{
		ID:          op.ID(),
		Kind:        op.Kind(),
		Origin:      origin,
		Pool:        op.Pool(),
		Amount:      op.Amount(),
		StakedTotal: total,
	}, nil
}

// applyInitialize claims the pool record for the program after proving the
// asset and vault are set up for the claimed program signer.
func (rt *Runtime) applyInitialize(st *state.State, ldg *ledger.Ledger, p *pool.Pool, op *Op, origin haven.Address) error {
	asset, err := ldg.Asset(op.Asset())
	if err != nil {
		return err
	}
	if asset.MintAuthority != op.ProgramSigner() || asset.FreezeAuthority != origin {
		return pool.ErrInvalidMint
	}

	vault, err := ldg.Account(op.Vault())
	if err != nil {
		return err
	}
	if vault.Asset != op.Asset() || vault.Owner != op.ProgramSigner() {
		return pool.ErrInvalidVault
	}

	exists, err := st.Exists(op.Pool())
	if err != nil {
		return err
	}
	if exists {
		return pool.ErrPoolExists
	}
	if err := st.SetMaster(op.Pool(), rt.program); err != nil {
		return err
	}
	return p.Initialize(op.Asset(), op.Vault(), op.ProgramSigner(), op.DerivationNonce())
}

func (rt *Runtime) applyAirdrop(st *state.State, ldg *ledger.Ledger, p *pool.Pool, op *Op, origin haven.Address) error {
	if err := rt.requireOwned(st, op.Pool()); err != nil {
		return err
	}
	dest, err := ldg.Account(op.Account())
	if err != nil {
		return err
	}
	if dest.Owner != origin {
		return ErrAccountNotOwned
	}
	return p.Airdrop(op.Asset(), op.ProgramSigner(), op.Account(), op.Amount())
}

// validateStaking proves the pool record ownership and the shape of the
// user's token account before a staking handler runs.
func (rt *Runtime) validateStaking(st *state.State, ldg *ledger.Ledger, op *Op, origin haven.Address) error {
	if err := rt.requireOwned(st, op.Pool()); err != nil {
		return err
	}
	acc, err := ldg.Account(op.Account())
	if err != nil {
		return err
	}
	if acc.Owner != origin {
		return ErrAccountNotOwned
	}
	if acc.Asset != op.Asset() {
		return pool.ErrInvalidUserMintAccount
	}
	return nil
}

func (rt *Runtime) requireOwned(st *state.State, addr haven.Address) error {
	master, err := st.GetMaster(addr)
	if err != nil {
		return err
	}
	if master != rt.program {
		return ErrPoolNotOwned
	}
	return nil
}

// record writes the committed op to the op database.
func (rt *Runtime) record(receipt *Receipt, op *Op) {
	if rt.opDB == nil {
		return
	}
	event := &opdb.Event{
		Time:        uint64(time.Now().Unix()),
		Kind:        receipt.Kind.String(),
		ID:          receipt.ID,
		Origin:      receipt.Origin,
		Pool:        receipt.Pool,
		Asset:       op.Asset(),
		Vault:       op.Vault(),
		Account:     op.Account(),
		Amount:      receipt.Amount,
		StakedTotal: receipt.StakedTotal,
	}
	if _, err := rt.opDB.Write(event); err != nil {
		logger.Warn("failed to record op", "id", receipt.ID, "error", err)
	}
}
