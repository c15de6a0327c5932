// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sim implements the hw collaborators in software. The feeder turns
// a virtual wheel that drives the feed encoder, the cutter travels between
// its limit switches over a configurable time and the guide records every
// position it is sent to.
package sim

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/Thermoquad/wirefactory/pkg/hw"
)

// Config describes the simulated mechanics
type Config struct {
	// Full steps per feeder shaft revolution
	StepsPerRev int
	// Encoder edges per feed wheel revolution (ticks x edges per tick)
	EdgesPerRev int
	// Time for the blade to travel between the limits; 0 moves instantly
	CutterTravel time.Duration
	// Block in Feeder.Step like a real driver does
	Realtime bool
}

// DefaultConfig matches the reference machine: 200 step motor, 4 slot
// encoder wheel read on both edges
func DefaultConfig() Config {
	return Config{
		StepsPerRev:  200,
		EdgesPerRev:  8,
		CutterTravel: 300 * time.Millisecond,
	}
}

// Machine is a complete simulated rig
type Machine struct {
	Feeder  *Feeder
	Cutter  *Cutter
	Guide   *Guide
	Spool   *Spool
	Encoder *hw.PulseCounter
}

// New builds a simulated machine
func New(cfg Config) *Machine {
	enc := &hw.PulseCounter{}
	return &Machine{
		Feeder:  NewFeeder(cfg, enc),
		Cutter:  NewCutter(cfg.CutterTravel),
		Guide:   &Guide{},
		Spool:   NewSpool(true),
		Encoder: enc,
	}
}

// Rig exposes the machine through the hw interfaces
func (m *Machine) Rig() hw.Rig {
	return hw.Rig{
		Feeder:       m.Feeder,
		Cutter:       m.Cutter,
		Guide:        m.Guide,
		UpperLimit:   hw.SwitchFunc(m.Cutter.AtUpper),
		LowerLimit:   hw.SwitchFunc(m.Cutter.AtLower),
		SpoolPresent: m.Spool,
		FeedEncoder:  m.Encoder,
	}
}

// ============================================================
// Feeder
// ============================================================

// Feeder is a simulated stepper driving the feed wheel. Position is tracked
// in sixteenth steps; every edgeSpan sixteenths of travel in either
// direction produces one encoder edge.
type Feeder struct {
	mu       sync.Mutex
	enabled  bool
	realtime bool
	edgeSpan int
	phase    int
	position int64
	steps    uint64
	encoder  *hw.PulseCounter
}

// NewFeeder creates a disabled feeder wired to enc
func NewFeeder(cfg Config, enc *hw.PulseCounter) *Feeder {
	span := 16
	if cfg.StepsPerRev > 0 && cfg.EdgesPerRev > 0 {
		span = cfg.StepsPerRev * 16 / cfg.EdgesPerRev
	}
	if span < 1 {
		span = 1
	}
	return &Feeder{
		realtime: cfg.Realtime,
		edgeSpan: span,
		encoder:  enc,
	}
}

// Step implements hw.Feeder. A disabled driver holds still.
func (f *Feeder) Step(res hw.Resolution, dir hw.Direction, speed float64) {
	if f.realtime && speed > 0 {
		time.Sleep(time.Duration(2 / speed * float64(time.Second)))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.enabled {
		return
	}

	delta := 16 / res.Microsteps()
	if dir == hw.Reverse {
		f.position -= int64(delta)
	} else {
		f.position += int64(delta)
	}
	f.steps++

	f.phase += delta
	for f.phase >= f.edgeSpan {
		f.phase -= f.edgeSpan
		f.encoder.Edge()
	}
}

// Enable implements hw.Feeder
func (f *Feeder) Enable() {
	f.mu.Lock()
	f.enabled = true
	f.mu.Unlock()
	glog.V(3).Info("sim: feeder enabled")
}

// Disable implements hw.Feeder
func (f *Feeder) Disable() {
	f.mu.Lock()
	f.enabled = false
	f.mu.Unlock()
	glog.V(3).Info("sim: feeder disabled")
}

// Enabled reports whether the driver is energized
func (f *Feeder) Enabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enabled
}

// Position returns net travel in sixteenth steps (forward positive)
func (f *Feeder) Position() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

// Steps returns the number of steps that moved the wheel
func (f *Feeder) Steps() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.steps
}

// ============================================================
// Cutter
// ============================================================

// Cutter is a simulated blade motor. Blade height runs from 0 (upper limit)
// to 1 (lower limit) and is integrated lazily from the commanded speed.
type Cutter struct {
	mu      sync.Mutex
	travel  time.Duration
	pos     float64
	speed   float64
	since   time.Time
	now     func() time.Time
	history []float64
	strokes int
}

// NewCutter creates a cutter resting halfway between the limits
func NewCutter(travel time.Duration) *Cutter {
	return &Cutter{
		travel: travel,
		pos:    0.5,
		now:    time.Now,
		since:  time.Now(),
	}
}

// SetSpeed implements hw.Cutter
func (c *Cutter) SetSpeed(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle()
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	c.speed = v
	c.history = append(c.history, v)
	if c.travel <= 0 {
		c.jump()
	}
}

// settle integrates motion up to now. Caller holds mu.
func (c *Cutter) settle() {
	now := c.now()
	if c.travel > 0 && c.speed != 0 {
		moved := c.speed * float64(now.Sub(c.since)) / float64(c.travel)
		c.moveTo(c.pos - moved)
	}
	c.since = now
}

// jump moves straight to the end of travel. Caller holds mu.
func (c *Cutter) jump() {
	switch {
	case c.speed > 0:
		c.moveTo(0)
	case c.speed < 0:
		c.moveTo(1)
	}
}

func (c *Cutter) moveTo(p float64) {
	if p <= 0 {
		p = 0
	}
	if p >= 1 {
		if c.pos < 1 {
			c.strokes++
		}
		p = 1
	}
	c.pos = p
}

// Height returns the blade position, 0 at the upper limit
func (c *Cutter) Height() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle()
	return c.pos
}

// AtUpper reports the upper limit switch
func (c *Cutter) AtUpper() bool {
	return c.Height() <= 0
}

// AtLower reports the lower limit switch
func (c *Cutter) AtLower() bool {
	return c.Height() >= 1
}

// Speed returns the commanded speed
func (c *Cutter) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Strokes counts how many times the blade reached the lower limit
func (c *Cutter) Strokes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settle()
	return c.strokes
}

// History returns every speed command in order
func (c *Cutter) History() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]float64, len(c.history))
	copy(out, c.history)
	return out
}

// ============================================================
// Guide and spool
// ============================================================

// Guide is a simulated servo
type Guide struct {
	mu        sync.Mutex
	positions []int
}

// SetPosition implements hw.Guide
func (g *Guide) SetPosition(angle int) {
	g.mu.Lock()
	g.positions = append(g.positions, angle)
	g.mu.Unlock()
	glog.V(3).Infof("sim: guide -> %d", angle)
}

// Angle returns the last commanded angle, or -1 if none
func (g *Guide) Angle() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.positions) == 0 {
		return -1
	}
	return g.positions[len(g.positions)-1]
}

// Positions returns every commanded angle in order
func (g *Guide) Positions() []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, len(g.positions))
	copy(out, g.positions)
	return out
}

// Spool is the spool-present switch
type Spool struct {
	present atomic.Bool
}

// NewSpool creates the switch in the given state
func NewSpool(present bool) *Spool {
	s := &Spool{}
	s.present.Store(present)
	return s
}

// Asserted implements hw.Switch
func (s *Spool) Asserted() bool { return s.present.Load() }

// Set changes the switch state
func (s *Spool) Set(present bool) { s.present.Store(present) }
