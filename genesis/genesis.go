// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the initial record layout of a haven instance.
//
// The escrow program never allocates records itself. Assets, the vault and
// user token accounts come from the record allocator, so a fresh instance
// needs them laid out before the first operation can run. A Genesis captures
// that layout and writes it to an empty store exactly once.
package genesis

import (
	"github.com/stakehaven/haven/haven"
	"github.com/stakehaven/haven/state"
)

// Genesis describes a named initial record layout.
type Genesis struct {
	builder *Builder
	id      haven.Bytes32
	name    string
}

// Build writes the layout to the stater's store.
func (g *Genesis) Build(stater *state.Stater) error {
	return g.builder.Build(stater)
}

// ID returns the unique identity of the layout.
func (g *Genesis) ID() haven.Bytes32 {
	return g.id
}

// Name returns the name of the layout.
func (g *Genesis) Name() string {
	return g.name
}
