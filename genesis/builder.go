// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/stakehaven/haven/state"
)

// Builder helper to build the initial record layout.
type Builder struct {
	stateProcs []func(st *state.State) error
}

// State adds a state process.
func (b *Builder) State(proc func(st *state.State) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Build runs all state processes and commits the result to the stater's store.
func (b *Builder) Build(stater *state.Stater) error {
	st := stater.NewState()

	for _, proc := range b.stateProcs {
		if err := proc(st); err != nil {
			return errors.Wrap(err, "state process")
		}
	}

	stage, err := st.Stage()
	if err != nil {
		return errors.Wrap(err, "stage")
	}
	if err := stage.Commit(); err != nil {
		return errors.Wrap(err, "commit state")
	}
	return nil
}
