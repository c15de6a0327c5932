// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package hw declares the actuator and sensor collaborators the controller
// drives. Pulse and PWM generation live behind these interfaces; pkg/hw/sim
// provides a simulated implementation.
package hw

import "fmt"

// Resolution is the feeder microstep setting
type Resolution int

// Microstep resolutions supported by the feeder driver
const (
	FullStep      Resolution = 0
	HalfStep      Resolution = 1
	QuarterStep   Resolution = 2
	EighthStep    Resolution = 3
	SixteenthStep Resolution = 7
)

// Microsteps returns the number of microsteps per full step
func (r Resolution) Microsteps() int {
	switch r {
	case FullStep:
		return 1
	case HalfStep:
		return 2
	case QuarterStep:
		return 4
	case EighthStep:
		return 8
	case SixteenthStep:
		return 16
	default:
		return 1
	}
}

// String returns a human-readable resolution
func (r Resolution) String() string {
	switch r {
	case FullStep, HalfStep, QuarterStep, EighthStep, SixteenthStep:
		return fmt.Sprintf("1/%d", r.Microsteps())
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(r))
	}
}

// Direction is the feeder rotation direction
type Direction int

// Feeder directions. Forward pushes wire out of the machine.
const (
	Forward Direction = iota
	Reverse
)

// String returns a human-readable direction
func (d Direction) String() string {
	switch d {
	case Forward:
		return "FWD"
	case Reverse:
		return "REV"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(d))
	}
}

// Feeder is the stepper that pushes wire through the machine
type Feeder interface {
	// Step issues one step and blocks for 2*(1/speed) seconds
	Step(res Resolution, dir Direction, speed float64)
	Enable()
	Disable()
}

// Cutter is the DC blade motor. Speed is in [-1, 1]; positive raises the
// blade toward the upper limit, negative lowers it, 0 stops it.
type Cutter interface {
	SetSpeed(v float64)
}

// Guide is the servo that routes the wire to the strip or cut blade
type Guide interface {
	SetPosition(angle int)
}

// Switch is a binary sensor (limit switch, spool-present switch)
type Switch interface {
	Asserted() bool
}

// SwitchFunc adapts a function to Switch
type SwitchFunc func() bool

// Asserted implements Switch
func (f SwitchFunc) Asserted() bool { return f() }

// Rig bundles every collaborator of one machine
type Rig struct {
	Feeder       Feeder
	Cutter       Cutter
	Guide        Guide
	UpperLimit   Switch
	LowerLimit   Switch
	SpoolPresent Switch
	FeedEncoder  *PulseCounter
}

// Validate reports the first missing collaborator
func (r *Rig) Validate() error {
	switch {
	case r.Feeder == nil:
		return fmt.Errorf("rig: no feeder")
	case r.Cutter == nil:
		return fmt.Errorf("rig: no cutter")
	case r.Guide == nil:
		return fmt.Errorf("rig: no guide")
	case r.UpperLimit == nil || r.LowerLimit == nil:
		return fmt.Errorf("rig: missing cutter limit switch")
	case r.SpoolPresent == nil:
		return fmt.Errorf("rig: no spool switch")
	case r.FeedEncoder == nil:
		return fmt.Errorf("rig: no feed encoder")
	}
	return nil
}
