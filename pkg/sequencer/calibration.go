// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sequencer

import (
	"fmt"
	"math"

	"github.com/Thermoquad/wirefactory/pkg/session"
)

// Calibration converts between feed encoder pulses and wire length
type Calibration struct {
	WheelDiameter float64 // in
	TicksPerRev   int     // encoder slots per wheel revolution
	EdgesPerTick  int     // 2 when both edges are counted
}

// DefaultCalibration is the reference feed wheel: 0.5 in diameter, four
// slots, both edges counted
func DefaultCalibration() Calibration {
	return Calibration{
		WheelDiameter: 0.5,
		TicksPerRev:   4,
		EdgesPerTick:  2,
	}
}

// Validate checks that the calibration describes a real wheel
func (c Calibration) Validate() error {
	if c.WheelDiameter <= 0 {
		return fmt.Errorf("wheel diameter must be positive, got %v", c.WheelDiameter)
	}
	if c.TicksPerRev <= 0 {
		return fmt.Errorf("ticks per revolution must be positive, got %d", c.TicksPerRev)
	}
	if c.EdgesPerTick <= 0 {
		return fmt.Errorf("edges per tick must be positive, got %d", c.EdgesPerTick)
	}
	return nil
}

// Circumference of the feed wheel in inches
func (c Calibration) Circumference() float64 {
	return math.Pi * c.WheelDiameter
}

// PulsesPerRev is the number of counted edges per wheel revolution
func (c Calibration) PulsesPerRev() int {
	return c.TicksPerRev * c.EdgesPerTick
}

// PulsesForDistance returns the edge count that corresponds to inches of
// wire, rounded to the nearest edge. Non-positive distances need no pulses.
func (c Calibration) PulsesForDistance(inches float64) uint64 {
	if inches <= 0 {
		return 0
	}
	return uint64(math.Round(inches / c.Circumference() * float64(c.PulsesPerRev())))
}

// DistanceForPulses returns the inches of wire moved by pulses edges
func (c Calibration) DistanceForPulses(pulses uint64) float64 {
	return float64(pulses) / float64(c.PulsesPerRev()) * c.Circumference()
}

// FeetForPulses is DistanceForPulses in spool units
func (c Calibration) FeetForPulses(pulses uint64) float64 {
	return c.DistanceForPulses(pulses) / session.InchesPerFoot
}
