// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package display defines the drawing surface the telemetry goroutines paint
// and the exclusive section that serializes them.
package display

import (
	"fmt"
	"sync"
)

// Region is an independently redrawn part of the screen
type Region int

// Screen regions
const (
	// RegionBody is the mode screen below the gauge
	RegionBody Region = iota
	// RegionParams is the editable values block of the current mode
	RegionParams
)

// String returns the region name
func (r Region) String() string {
	switch r {
	case RegionBody:
		return "BODY"
	case RegionParams:
		return "PARAMS"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(r))
	}
}

// Level is the colour band of the wire-remaining gauge
type Level int

// Gauge levels
const (
	LevelOK Level = iota
	LevelLow
	LevelCritical
)

// Gauge thresholds in percent of a full spool
const (
	LevelLowBelow      = 50
	LevelCriticalBelow = 25
)

// LevelFor returns the level for a spool percentage
func LevelFor(percent int) Level {
	switch {
	case percent >= LevelLowBelow:
		return LevelOK
	case percent >= LevelCriticalBelow:
		return LevelLow
	default:
		return LevelCritical
	}
}

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "OK"
	case LevelLow:
		return "LOW"
	case LevelCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(l))
	}
}

// Gauge is the wire-remaining readout
type Gauge struct {
	Feet         float64
	Percent      int
	Level        Level
	SpoolPresent bool
}

// Progress is the batch progress readout shown while cutting
type Progress struct {
	Made     int
	Total    int
	Percent  int
	Finished bool
}

// Surface is a drawing target. Implementations need not be safe for
// concurrent use; Screen serializes every call.
type Surface interface {
	// Text replaces the contents of a region; nil clears it
	Text(r Region, lines []string)
	Gauge(g Gauge)
	// Progress shows the batch progress bar; nil hides it
	Progress(p *Progress)
	Heartbeat(on bool)
}

// Screen guards a Surface with a single exclusive section
type Screen struct {
	mu      sync.Mutex
	surface Surface
	draws   uint64
}

// NewScreen wraps surface
func NewScreen(surface Surface) *Screen {
	return &Screen{surface: surface}
}

// Draw runs fn with exclusive access to the surface
func (s *Screen) Draw(fn func(Surface)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.surface)
	s.draws++
}

// Draws returns the number of completed draw sections
func (s *Screen) Draws() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}
