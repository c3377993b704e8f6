// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/stakehaven/haven/metrics"
)

var (
	metricOpCounter        = metrics.LazyLoadCounterVec("pool_op_count", []string{"op", "status"})
	metricStakedTotalGauge = metrics.LazyLoadGaugeVec("pool_staked_total", []string{"pool"})
)

func countOp(op string, err error) {
	status := "succeeded"
	if err != nil {
		status = "failed"
	}
	metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "status": status})
}
