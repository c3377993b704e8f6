// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package opdb

// create a table for ops.
// amount and stakedTotal are stored as signed integers, uint64 values
// round-trip via two's complement.
const opTableSchema = `
create table if not exists op (
	seq integer primary key autoincrement,
	time integer,
	kind text,
	id blob(32),
	origin blob(20),
	pool blob(20),
	asset blob(20),
	vault blob(20),
	account blob(20),
	amount integer,
	stakedTotal integer
);

CREATE INDEX if not exists idIndex on op(id);
CREATE INDEX if not exists poolIndex on op(pool);
CREATE INDEX if not exists originIndex on op(origin);
`
