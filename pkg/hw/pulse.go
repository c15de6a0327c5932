// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package hw

import "sync/atomic"

// PulseCounter counts feed encoder edges. It is safe to call Edge from an
// interrupt-like goroutine while readers call Count. The count only grows;
// consumers remember a mark and compute deltas.
type PulseCounter struct {
	n atomic.Uint64
}

// Edge records one encoder edge
func (p *PulseCounter) Edge() {
	p.n.Add(1)
}

// Count returns the total number of edges seen
func (p *PulseCounter) Count() uint64 {
	return p.n.Load()
}

// Since returns the edges seen after mark
func (p *PulseCounter) Since(mark uint64) uint64 {
	return p.n.Load() - mark
}
