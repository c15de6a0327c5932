// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import "sync"

// Memory is a Surface that keeps the latest contents of every region
type Memory struct {
	mu         sync.Mutex
	regions    map[Region][]string
	gauge      Gauge
	gauges     int
	progress   *Progress
	heartbeat  bool
	heartbeats int
}

// NewMemory creates an empty memory surface
func NewMemory() *Memory {
	return &Memory{regions: make(map[Region][]string)}
}

// Text implements Surface
func (m *Memory) Text(r Region, lines []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lines == nil {
		delete(m.regions, r)
		return
	}
	m.regions[r] = append([]string(nil), lines...)
}

// Gauge implements Surface
func (m *Memory) Gauge(g Gauge) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauge = g
	m.gauges++
}

// Progress implements Surface
func (m *Memory) Progress(p *Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p == nil {
		m.progress = nil
		return
	}
	cp := *p
	m.progress = &cp
}

// Heartbeat implements Surface
func (m *Memory) Heartbeat(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.heartbeat = on
	m.heartbeats++
}

// Lines returns the contents of a region
func (m *Memory) Lines(r Region) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.regions[r]...)
}

// LastGauge returns the latest gauge and how many were drawn
func (m *Memory) LastGauge() (Gauge, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gauge, m.gauges
}

// LastProgress returns the progress bar, nil when hidden
func (m *Memory) LastProgress() *Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.progress == nil {
		return nil
	}
	cp := *m.progress
	return &cp
}

// HeartbeatState returns the indicator and how many times it was drawn
func (m *Memory) HeartbeatState() (bool, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heartbeat, m.heartbeats
}
