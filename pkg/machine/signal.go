// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package machine

// Signal is a coalescing notification. Any number of Notify calls before a
// receive collapse into one pending wakeup.
type Signal struct {
	ch chan struct{}
}

// NewSignal creates a signal with no pending notification
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Notify marks the signal pending
func (s *Signal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns the channel that receives once per pending notification
func (s *Signal) C() <-chan struct{} {
	return s.ch
}

// Consume clears a pending notification and reports whether there was one
func (s *Signal) Consume() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}
