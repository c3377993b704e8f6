// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package haven

// Well-known record owners, addressed by name.
var (
	// ProgramID owns every pool record managed by the staking program.
	ProgramID = BytesToAddress([]byte("haven.pool-program"))

	// LedgerID owns the asset and token account records.
	LedgerID = BytesToAddress([]byte("haven.ledger"))
)
