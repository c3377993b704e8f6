// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehaven/haven/api/utils"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/ledger"
	"github.com/stakehaven/haven/state"
)

// Ledger exposes asset and token account records over http.
type Ledger struct {
	stater *state.Stater
}

func New(stater *state.Stater) *Ledger {
	return &Ledger{stater}
}

func (l *Ledger) openLedger() *ledger.Ledger {
	return ledger.New(haven.LedgerID, l.stater.NewState())
}

func (l *Ledger) handleGetAsset(w http.ResponseWriter, req *http.Request) error {
	id, err := haven.ParseAddress(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	asset, err := l.openLedger().Asset(id)
	if err != nil {
		if errors.Is(err, ledger.ErrAssetNotFound) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertAsset(asset))
}

func (l *Ledger) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	id, err := haven.ParseAddress(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	acc, err := l.openLedger().Account(id)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, convertAccount(acc))
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/assets/{id}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetAsset))
	sub.Path("/accounts/{id}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetAccount))
}
