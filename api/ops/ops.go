// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ops

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakehaven/haven/api/utils"
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/runtime"
	"github.com/stakehaven/haven/state"
)

// Ops accepts signed ops for execution and serves the committed op history.
type Ops struct {
	rt    *runtime.Runtime
	db    *opdb.OpDB
	limit uint64
}

// New creates the ops endpoint. limit caps the page size of history queries.
func New(rt *runtime.Runtime, db *opdb.OpDB, limit uint64) *Ops {
	return &Ops{
		rt,
		db,
		limit,
	}
}

func (o *Ops) handleSubmitOp(w http.ResponseWriter, req *http.Request) error {
	var raw RawOp
	if err := utils.ParseJSON(req.Body, &raw); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	op, err := raw.decode()
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "raw"))
	}
	if _, err := op.Origin(); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "signature"))
	}

	receipt, err := o.rt.Execute(op)
	if err != nil {
		var stateErr *state.Error
		if errors.As(err, &stateErr) {
			return err
		}
		return utils.Forbidden(err)
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (o *Ops) handleGetOpByID(w http.ResponseWriter, req *http.Request) error {
	id, err := haven.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	event, err := o.db.Get(req.Context(), id)
	if err != nil {
		return err
	}
	if event == nil {
		return utils.WriteJSON(w, nil)
	}
	return utils.WriteJSON(w, convertEvent(event))
}

func (o *Ops) handleFilterOps(w http.ResponseWriter, req *http.Request) error {
	var filter Filter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > o.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", o.limit))
	}
	if filter.Range != nil {
		if filter.Range.Unit != "" && filter.Range.Unit != opdb.Seq && filter.Range.Unit != opdb.Time {
			return utils.BadRequest(fmt.Errorf("range.unit: invalid unit %q", filter.Range.Unit))
		}
		if filter.Range.From > filter.Range.To {
			return utils.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
		}
	}
	if filter.Order != "" && filter.Order != opdb.ASC && filter.Order != opdb.DESC {
		return utils.BadRequest(fmt.Errorf("order: invalid order %q", filter.Order))
	}
	for i, criteria := range filter.CriteriaSet {
		if criteria == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}

	converted := convertFilter(&filter)
	if converted.Options == nil {
		// detect results beyond the page cap
		converted.Options = &opdb.Options{Offset: 0, Limit: o.limit + 1}
	}
	events, err := o.db.Filter(req.Context(), converted)
	if err != nil {
		return err
	}
	if filter.Options == nil && uint64(len(events)) > o.limit {
		return utils.Forbidden(fmt.Errorf("the number of filtered ops exceeds the maximum allowed value of %d, please use pagination", o.limit))
	}

	filtered := make([]*FilteredOp, len(events))
	for i, event := range events {
		filtered[i] = convertEvent(event)
	}
	return utils.WriteJSON(w, filtered)
}

func (o *Ops) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(o.handleSubmitOp))
	sub.Path("/filter").Methods(http.MethodPost).HandlerFunc(utils.WrapHandlerFunc(o.handleFilterOps))
	sub.Path("/{id}").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(o.handleGetOpByID))
}
