// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package opdb

import (
	"github.com/stakehaven/haven/haven"
)

// Event represents a committed op that can be stored in db.
type Event struct {
	Seq         uint64
	Time        uint64
	Kind        string
	ID          haven.Bytes32
	Origin      haven.Address
	Pool        haven.Address
	Asset       haven.Address
	Vault       haven.Address
	Account     haven.Address
	Amount      uint64
	StakedTotal uint64
}

type RangeType string

const (
	Seq  RangeType = "seq"
	Time RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Criteria matches events by pool, origin and kind. Nil and empty fields
// match anything.
type Criteria struct {
	Pool   *haven.Address
	Origin *haven.Address
	Kind   string
}

// Filter filter
type Filter struct {
	CriteriaSet []*Criteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
