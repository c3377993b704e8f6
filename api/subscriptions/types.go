// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/opdb"
)

// OpMessage is the subscription payload of one committed op.
type OpMessage struct {
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

func convertEvent(event *opdb.Event) *OpMessage {
	return &OpMessage{
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
