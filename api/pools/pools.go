// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehaven/haven/api/utils"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/pool"
	"github.com/stakehaven/haven/state"
)

// Pools exposes pool and staking records over http.
type Pools struct {
	stater *state.Stater
}

func New(stater *state.Stater) *Pools {
	return &Pools{stater}
}

func (p *Pools) openPool(addr haven.Address) *pool.Pool {
	st := p.stater.NewState()
	return pool.New(addr, st, ledger.New(haven.LedgerID, st))
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := haven.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	ps, err := p.openPool(addr).State()
	if err != nil {
		if errors.Is(err, pool.ErrPoolNotInitialized) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertPool(ps))
}

func (p *Pools) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	addr, err := haven.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	user, err := haven.ParseAddress(mux.Vars(req)["user"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "user"))
	}
	us, err := p.openPool(addr).User(user)
	if err != nil {
		return err
	}
	if !us.Initialized {
		return utils.NotFound(pool.ErrUserNotInitialized)
	}
	return utils.WriteJSON(w, convertUser(us))
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{address}/users/{user}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetUser))
}
