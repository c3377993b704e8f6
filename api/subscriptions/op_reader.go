// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"

	"github.com/stakehaven/haven/opdb"
)

const readBatchLimit = 256

type opReader struct {
	db      *opdb.OpDB
	fromSeq uint64
}

func newOpReader(db *opdb.OpDB, fromSeq uint64) *opReader {
	return &opReader{
		db:      db,
		fromSeq: fromSeq,
	}
}

// Read returns ops recorded after the current position and advances it.
func (r *opReader) Read(ctx context.Context) ([]interface{}, error) {
	events, err := r.db.Filter(ctx, &opdb.Filter{
		Range:   &opdb.Range{Unit: opdb.Seq, From: r.fromSeq + 1},
		Options: &opdb.Options{Offset: 0, Limit: readBatchLimit},
	})
	if err != nil {
		return nil, err
	}
	result := []interface{}{}
	for _, event := range events {
		result = append(result, convertEvent(event))
		r.fromSeq = event.Seq
	}
	return result, nil
}
