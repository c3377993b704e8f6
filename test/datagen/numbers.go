// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	mathrand "math/rand"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.Intn(n) //#nosec G404
}

// RandUint64 yields an amount comfortably away from the overflow boundary.
func RandUint64() uint64 {
	return mathrand.Uint64() >> 1 //#nosec G404
}
