// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ops

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/opdb"
	"github.com/stakehaven/haven/runtime"
)

// RawOp carries an rlp encoded op in hex form.
type RawOp struct {
	Raw string `json:"raw"`
}

func (r *RawOp) decode() (*runtime.Op, error) {
	data, err := hexutil.Decode(r.Raw)
	if err != nil {
		return nil, err
	}
	var op runtime.Op
	if err := rlp.DecodeBytes(data, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Receipt is the JSON view of an execution receipt.
type Receipt struct {
	ID          haven.Bytes32 `json:"id"`
	Kind        string        `json:"kind"`
	Origin      haven.Address `json:"origin"`
	Pool        haven.Address `json:"pool"`
	Amount      uint64        `json:"amount"`
	StakedTotal uint64        `json:"stakedTotal"`
}

func convertReceipt(receipt *runtime.Receipt) *Receipt {
	return &Receipt{
		ID:          receipt.ID,
		Kind:        receipt.Kind.String(),
		Origin:      receipt.Origin,
		Pool:        receipt.Pool,
		Amount:      receipt.Amount,
		StakedTotal: receipt.StakedTotal,
	}
}

// FilteredOp is the JSON view of a recorded op event.
type FilteredOp struct {
	Seq         uint64        `json:"seq"`
	Time        uint64        `json:"time"`
	Kind        string        `json:"kind"`
	ID          haven.Bytes32 `json:"id"`
	Origin      haven.Address `json:"origin"`
	Pool        haven.Address `json:"pool"`
	Asset       haven.Address `json:"asset"`
	Vault       haven.Address `json:"vault"`
	Account     haven.Address `json:"account"`
	Amount      uint64        `json:"amount"`
	StakedTotal uint64        `json:"stakedTotal"`
}

func convertEvent(event *opdb.Event) *FilteredOp {
	return &FilteredOp{
		Seq:         event.Seq,
		Time:        event.Time,
		Kind:        event.Kind,
		ID:          event.ID,
		Origin:      event.Origin,
		Pool:        event.Pool,
		Asset:       event.Asset,
		Vault:       event.Vault,
		Account:     event.Account,
		Amount:      event.Amount,
		StakedTotal: event.StakedTotal,
	}
}

// Criteria matches recorded ops. Absent fields match anything.
type Criteria struct {
	Pool   *haven.Address `json:"pool"`
	Origin *haven.Address `json:"origin"`
	Kind   string         `json:"kind,omitempty"`
}

type Range struct {
	Unit opdb.RangeType `json:"unit"`
	From uint64         `json:"from"`
	To   uint64         `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter is the JSON body of an op query.
type Filter struct {
	CriteriaSet []*Criteria `json:"criteriaSet"`
	Range       *Range      `json:"range"`
	Options     *Options    `json:"options"`
	Order       opdb.Order  `json:"order"`
}

func convertFilter(filter *Filter) *opdb.Filter {
	f := &opdb.Filter{
		Order: filter.Order,
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &opdb.Criteria{
			Pool:   c.Pool,
			Origin: c.Origin,
			Kind:   c.Kind,
		})
	}
	if filter.Range != nil {
		f.Range = &opdb.Range{
			Unit: filter.Range.Unit,
			From: filter.Range.From,
			To:   filter.Range.To,
		}
	}
	if filter.Options != nil {
		f.Options = &opdb.Options{
			Offset: filter.Options.Offset,
			Limit:  filter.Options.Limit,
		}
	}
	return f
}
