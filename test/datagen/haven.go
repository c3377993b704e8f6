// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"

	"github.com/stakehaven/haven/haven"
)

func RandBytes32() (b haven.Bytes32) {
	rand.Read(b[:])
	return
}

func RandAddress() (addr haven.Address) {
	rand.Read(addr[:])
	return
}
