// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import "math"

// roundingSlack absorbs binary representation error of increment multiples
// (10.0/2/0.2 must floor to 25, not 24)
const roundingSlack = 1e-9

// Validate clamps a session into a physically consistent form. It is pure
// and idempotent: Validate(Validate(s)) == Validate(s).
//
// When the wire is too short to fit an incision outside the midpoint
// clearance, both incisions collapse to 0. When the spool cannot supply even
// one wire of the requested length, NumWires drops to 0 so the spool bound
// always holds.
func Validate(s Session, lim Limits) Session {
	if s.WireLeft < 0 {
		s.WireLeft = 0
	}
	if lim.MaxSpoolFt > 0 && s.WireLeft > lim.MaxSpoolFt {
		s.WireLeft = lim.MaxSpoolFt
	}

	if s.WireLength < 0 {
		s.WireLength = 0
	}

	maxIncision := MaxIncision(s.WireLength, lim)
	if s.LeftIncisionDist > maxIncision {
		s.LeftIncisionDist = maxIncision
	}
	if s.RightIncisionDist > maxIncision {
		s.RightIncisionDist = maxIncision
	}
	if s.LeftIncisionDist < 0 {
		s.LeftIncisionDist = 0
	}
	if s.RightIncisionDist < 0 {
		s.RightIncisionDist = 0
	}

	if s.NumWires < 1 {
		s.NumWires = 1
	}
	s.NumWires = capToSpool(s.NumWires, s.WireLength, s.WireLeft)

	if s.NumWiresLeft > s.NumWires {
		s.NumWiresLeft = s.NumWires
	}
	if s.NumWiresLeft < 0 {
		s.NumWiresLeft = 0
	}

	if s.OptionSelected < FieldWireLength {
		s.OptionSelected = FieldWireLength
	}
	if s.OptionSelected > FieldNumWires {
		s.OptionSelected = FieldNumWires
	}

	if s.GuideAngle < 0 {
		s.GuideAngle = 0
	}
	if lim.MaxGuideAngle > 0 && s.GuideAngle > lim.MaxGuideAngle {
		s.GuideAngle = lim.MaxGuideAngle
	}

	return s
}

// MaxIncision is the largest incision distance allowed for a wire length:
// half the length rounded down to the increment, minus the midpoint clearance
func MaxIncision(wireLength float64, lim Limits) float64 {
	half := wireLength / 2
	if lim.Increment > 0 {
		half = lim.Increment * math.Floor(half/lim.Increment+roundingSlack)
	}
	return half - lim.MinMidpointClearance
}

// capToSpool floors numWires so numWires*wireLength <= wireLeft*12
func capToSpool(numWires int, wireLength, wireLeft float64) int {
	available := wireLeft * InchesPerFoot
	if float64(numWires)*wireLength <= available {
		return numWires
	}
	n := int(math.Floor(available / wireLength))
	// Float division can round up across an integer boundary
	for n > 0 && float64(n)*wireLength > available {
		n--
	}
	return n
}
