// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package opdb stores the committed op history in a sqlite database.
package opdb

import (
	"context"
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/stakehaven/haven/haven"
)

type OpDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open op db at given path.
func New(path string) (opDB *OpDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if opDB == nil {
			db.Close()
		}
	}()
	if _, err := db.Exec(opTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &OpDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create an op db in ram.
func NewMem() (*OpDB, error) {
	return New(":memory:")
}

// Close close the op db.
func (db *OpDB) Close() {
	db.db.Close()
}

func (db *OpDB) Path() string {
	return db.path
}

// Write stores an op event and returns its assigned sequence.
// The sequence is also set on the event.
func (db *OpDB) Write(event *Event) (uint64, error) {
	res, err := db.db.Exec(
		"INSERT INTO op(time, kind, id, origin, pool, asset, vault, account, amount, stakedTotal) VALUES(?,?,?,?,?,?,?,?,?,?)",
		event.Time,
		event.Kind,
		event.ID.Bytes(),
		event.Origin.Bytes(),
		event.Pool.Bytes(),
		event.Asset.Bytes(),
		event.Vault.Bytes(),
		event.Account.Bytes(),
		int64(event.Amount),
		int64(event.StakedTotal),
	)
	if err != nil {
		return 0, err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	event.Seq = uint64(seq)
	return uint64(seq), nil
}

// NewestSeq returns the sequence of the most recently written op, 0 when the
// db is empty.
func (db *OpDB) NewestSeq() (uint64, error) {
	var seq int64
	if err := db.db.QueryRow("SELECT ifnull(max(seq), 0) FROM op").Scan(&seq); err != nil {
		return 0, err
	}
	return uint64(seq), nil
}

// Get returns the newest op event with the given id, or nil when absent.
func (db *OpDB) Get(ctx context.Context, id haven.Bytes32) (*Event, error) {
	events, err := db.queryOps(ctx, "SELECT * FROM op WHERE id = ? ORDER BY seq DESC limit 1", id.Bytes())
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

// Filter returns op events matching the given filter.
func (db *OpDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.queryOps(ctx, "SELECT * FROM op")
	}
	var args []interface{}
	stmt := "SELECT * FROM op WHERE 1"
	condition := "seq"
	if filter.Range != nil {
		if filter.Range.Unit == Time {
			condition = "time"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	length := len(filter.CriteriaSet)
	if length > 0 {
		for i, criteria := range filter.CriteriaSet {
			if i == 0 {
				stmt += " AND (( 1 "
			} else {
				stmt += " OR ( 1 "
			}
			if criteria.Pool != nil {
				args = append(args, criteria.Pool.Bytes())
				stmt += " AND pool = ? "
			}
			if criteria.Origin != nil {
				args = append(args, criteria.Origin.Bytes())
				stmt += " AND origin = ? "
			}
			if criteria.Kind != "" {
				args = append(args, criteria.Kind)
				stmt += " AND kind = ? "
			}
			if i == length-1 {
				stmt += " )) "
			} else {
				stmt += " ) "
			}
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}
	if filter.Options != nil {
		stmt += " limit ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryOps(ctx, stmt, args...)
}

func (db *OpDB) queryOps(ctx context.Context, stmt string, args ...interface{}) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq         int64
			time        uint64
			kind        string
			id          []byte
			origin      []byte
			pool        []byte
			asset       []byte
			vault       []byte
			account     []byte
			amount      int64
			stakedTotal int64
		)
		if err := rows.Scan(
			&seq,
			&time,
			&kind,
			&id,
			&origin,
			&pool,
			&asset,
			&vault,
			&account,
			&amount,
			&stakedTotal,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Seq:         uint64(seq),
			Time:        time,
			Kind:        kind,
			ID:          haven.BytesToBytes32(id),
			Origin:      haven.BytesToAddress(origin),
			Pool:        haven.BytesToAddress(pool),
			Asset:       haven.BytesToAddress(asset),
			Vault:       haven.BytesToAddress(vault),
			Account:     haven.BytesToAddress(account),
			Amount:      uint64(amount),
			StakedTotal: uint64(stakedTotal),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
