// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/stakehaven/haven/kv"
)

// Stater is the state creator. States created by one stater share a record
// cache, which stays coherent as long as all writes go through their stages.
type Stater struct {
	store  kv.Store
	rcache *lru.ARCCache
}

// NewStater create a new stater.
func NewStater(store kv.Store) *Stater {
	rcache, _ := lru.NewARC(512)
	return &Stater{store, rcache}
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return newState(s.store, s.rcache)
}
