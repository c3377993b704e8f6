// Copyright (c) 2025 The StakeHaven developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides a channel to wait for.
// The value read from the channel tells how the wakeup happened. true for signal, false for broadcast.
type Waiter interface {
	C() <-chan bool
}

// Signal is a rendezvous point for goroutines waiting for or announcing the occurrence
// of an event. Unlike sync.Cond it is channel based, so waiters can select on the
// event along with other channels.
type Signal struct {
	mu sync.Mutex
	ch chan bool
}

func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan bool, 1)
	}
}

// Signal wakes one goroutine that is waiting on s.
func (s *Signal) Signal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	select {
	case s.ch <- true:
	default:
	}
}

// Broadcast wakes all goroutines that are waiting on s.
func (s *Signal) Broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	close(s.ch)
	s.ch = make(chan bool, 1)
}

// NewWaiter creates a Waiter for acquiring a channel to wait on.
func (s *Signal) NewWaiter() Waiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.init()
	ref := s.ch

	return waiterFunc(func() (ch <-chan bool) {
		ch = ref

		// pick up the refreshed channel after a broadcast
		s.mu.Lock()
		ref = s.ch
		s.mu.Unlock()

		return
	})
}

type waiterFunc func() <-chan bool

func (w waiterFunc) C() <-chan bool {
	return w()
}
