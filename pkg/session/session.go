// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package session holds the machine's measurement parameters and batch
// progress, the rules that keep them physically consistent, and the store
// that shares them between the control loop and its readers.
package session

import "math"

// InchesPerFoot converts spool length (feet) to cut length (inches)
const InchesPerFoot = 12.0

// Field selects the parameter edited on the cutting parameters screen
type Field int

// Editable fields (numbered as on the pad)
const (
	FieldWireLength Field = iota + 1
	FieldLeftIncision
	FieldRightIncision
	FieldNumWires
)

// Session is the mutable record of measurement parameters and batch progress.
// It is a plain value; share it through a Store.
type Session struct {
	WireLeft          float64 // ft remaining on the spool
	WireLength        float64 // in, target cut length
	LeftIncisionDist  float64 // in, from the left end
	RightIncisionDist float64 // in, from the right end
	NumWires          int     // batch size
	NumWiresLeft      int     // remaining in the current batch
	OptionSelected    Field
	GuideAngle        int    // degrees
	JobID             string // batch in progress, empty when idle
}

// Limits are the physical constants Validate enforces
type Limits struct {
	MaxSpoolFt           float64 // full spool length
	Increment            float64 // in, step for length and incision edits
	MinMidpointClearance float64 // in, minimum gap between an incision and the midpoint
	MaxGuideAngle        int     // degrees
}

// DefaultLimits returns the limits of the reference machine
func DefaultLimits() Limits {
	return Limits{
		MaxSpoolFt:           1000.0,
		Increment:            0.2,
		MinMidpointClearance: 0.5,
		MaxGuideAngle:        180,
	}
}

// New creates the startup session: full spool, empty parameters
func New(lim Limits, guideAngle int) Session {
	return Session{
		WireLeft:       lim.MaxSpoolFt,
		NumWires:       1,
		NumWiresLeft:   0,
		OptionSelected: FieldWireLength,
		GuideAngle:     guideAngle,
	}
}

// Adjust moves the selected field by steps increments (negative to decrease).
// Lengths stay on the increment grid. The result is not validated.
func (s Session) Adjust(steps int, lim Limits) Session {
	delta := float64(steps) * lim.Increment
	switch s.OptionSelected {
	case FieldWireLength:
		s.WireLength = snap(s.WireLength+delta, lim.Increment)
	case FieldLeftIncision:
		s.LeftIncisionDist = snap(s.LeftIncisionDist+delta, lim.Increment)
	case FieldRightIncision:
		s.RightIncisionDist = snap(s.RightIncisionDist+delta, lim.Increment)
	case FieldNumWires:
		s.NumWires += steps
	}
	return s
}

// snap rounds v to the nearest multiple of inc
func snap(v, inc float64) float64 {
	if inc <= 0 {
		return v
	}
	return math.Round(v/inc) * inc
}

// MidSpan is the feed length between the two incisions
func (s Session) MidSpan() float64 {
	return s.WireLength - s.LeftIncisionDist - s.RightIncisionDist
}

// WiresMade is the number of finished wires in the current batch
func (s Session) WiresMade() int {
	return s.NumWires - s.NumWiresLeft
}

// SpoolPercent is the share of the spool remaining, 0-100
func (s Session) SpoolPercent(lim Limits) int {
	if lim.MaxSpoolFt <= 0 {
		return 0
	}
	p := int(100 * s.WireLeft / lim.MaxSpoolFt)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// BatchPercent is the batch progress, 0-100
func (s Session) BatchPercent() int {
	if s.NumWires <= 0 {
		return 0
	}
	return int(100 * (1 - float64(s.NumWiresLeft)/float64(s.NumWires)))
}
