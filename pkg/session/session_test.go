// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package session

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func randomSession(rng *rand.Rand) Session {
	return Session{
		WireLeft:          rng.Float64()*1200 - 100,
		WireLength:        rng.Float64()*120 - 10,
		LeftIncisionDist:  rng.Float64()*80 - 10,
		RightIncisionDist: rng.Float64()*80 - 10,
		NumWires:          rng.Intn(5000) - 10,
		NumWiresLeft:      rng.Intn(5000) - 10,
		OptionSelected:    Field(rng.Intn(8) - 2),
		GuideAngle:        rng.Intn(400) - 100,
	}
}

func TestValidate_ScenarioUnchanged(t *testing.T) {
	lim := DefaultLimits()
	s := Session{
		WireLength:        10,
		LeftIncisionDist:  2,
		RightIncisionDist: 2,
		NumWires:          5,
		WireLeft:          1000,
		OptionSelected:    FieldWireLength,
		GuideAngle:        142,
	}
	assert.Equal(t, s, Validate(s, lim))
}

func TestValidate_ClampsNegatives(t *testing.T) {
	lim := DefaultLimits()
	s := Validate(Session{
		WireLeft:          500,
		WireLength:        -3,
		LeftIncisionDist:  -1,
		RightIncisionDist: -2,
		NumWires:          -4,
	}, lim)

	assert.Equal(t, 0.0, s.WireLength)
	assert.Equal(t, 0.0, s.LeftIncisionDist)
	assert.Equal(t, 0.0, s.RightIncisionDist)
	assert.Equal(t, 1, s.NumWires)
	assert.Equal(t, FieldWireLength, s.OptionSelected)
}

func TestValidate_IncisionPastMidpoint(t *testing.T) {
	lim := DefaultLimits()
	s := Validate(Session{WireLeft: 1000, WireLength: 10, LeftIncisionDist: 6, RightIncisionDist: 4.9, NumWires: 1}, lim)

	// floor(5 / 0.2) * 0.2 - 0.5
	assert.InDelta(t, 4.5, s.LeftIncisionDist, tolerance)
	assert.InDelta(t, 4.5, s.RightIncisionDist, tolerance)
}

func TestValidate_IncisionRoundsHalfDownToIncrement(t *testing.T) {
	lim := DefaultLimits()
	// half of 9.9 is 4.95, rounded down to the 0.2 grid is 4.8
	s := Validate(Session{WireLeft: 1000, WireLength: 9.9, LeftIncisionDist: 9, NumWires: 1}, lim)
	assert.InDelta(t, 4.3, s.LeftIncisionDist, tolerance)
}

func TestValidate_ShortWireCollapsesIncisions(t *testing.T) {
	lim := DefaultLimits()
	s := Validate(Session{WireLeft: 1000, WireLength: 0.6, LeftIncisionDist: 0.2, RightIncisionDist: 0.4, NumWires: 1}, lim)
	assert.Equal(t, 0.0, s.LeftIncisionDist)
	assert.Equal(t, 0.0, s.RightIncisionDist)
}

func TestValidate_CapsBatchToSpool(t *testing.T) {
	lim := DefaultLimits()
	// 10 ft of spool = 120 in; 25 in wires -> 4 fit
	s := Validate(Session{WireLeft: 10, WireLength: 25, NumWires: 9, NumWiresLeft: 9}, lim)
	assert.Equal(t, 4, s.NumWires)
	assert.Equal(t, 4, s.NumWiresLeft)
}

func TestValidate_SpoolTooShortForOneWire(t *testing.T) {
	lim := DefaultLimits()
	s := Validate(Session{WireLeft: 1, WireLength: 20, NumWires: 3}, lim)
	assert.Equal(t, 0, s.NumWires)
	assert.Equal(t, s, Validate(s, lim))
}

func TestValidate_ClampsSpoolAndGuide(t *testing.T) {
	lim := DefaultLimits()
	s := Validate(Session{WireLeft: -4, NumWires: 1, GuideAngle: 300, OptionSelected: 9}, lim)
	assert.Equal(t, 0.0, s.WireLeft)
	assert.Equal(t, 180, s.GuideAngle)
	assert.Equal(t, FieldNumWires, s.OptionSelected)

	s = Validate(Session{WireLeft: 5000, NumWires: 1}, lim)
	assert.Equal(t, lim.MaxSpoolFt, s.WireLeft)
}

func TestValidate_Properties(t *testing.T) {
	lim := DefaultLimits()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		in := randomSession(rng)
		out := Validate(in, lim)

		require.Equal(t, out, Validate(out, lim), "not idempotent for %+v", in)

		assert.LessOrEqual(t, float64(out.NumWires)*out.WireLength, out.WireLeft*InchesPerFoot, "spool bound for %+v", in)
		assert.GreaterOrEqual(t, out.WireLength, 0.0)
		assert.GreaterOrEqual(t, out.LeftIncisionDist, 0.0)
		assert.GreaterOrEqual(t, out.RightIncisionDist, 0.0)
		assert.LessOrEqual(t, out.NumWiresLeft, out.NumWires)

		if out.WireLength/2 >= lim.MinMidpointClearance {
			bound := out.WireLength/2 - lim.MinMidpointClearance + tolerance
			assert.LessOrEqual(t, out.LeftIncisionDist, bound, "left incision for %+v", in)
			assert.LessOrEqual(t, out.RightIncisionDist, bound, "right incision for %+v", in)
		}
		if out.WireLeft*InchesPerFoot >= out.WireLength {
			assert.GreaterOrEqual(t, out.NumWires, 1)
		}
	}
}

func TestAdjust_SelectedField(t *testing.T) {
	lim := DefaultLimits()
	s := New(lim, 142)

	s = s.Adjust(1, lim)
	s = s.Adjust(1, lim)
	s = s.Adjust(1, lim)
	assert.InDelta(t, 0.6, s.WireLength, tolerance, "stays on the increment grid")

	s.OptionSelected = FieldLeftIncision
	s = s.Adjust(-1, lim)
	assert.InDelta(t, -0.2, s.LeftIncisionDist, tolerance)

	s.OptionSelected = FieldRightIncision
	s = s.Adjust(2, lim)
	assert.InDelta(t, 0.4, s.RightIncisionDist, tolerance)

	s.OptionSelected = FieldNumWires
	s = s.Adjust(1, lim)
	assert.Equal(t, 2, s.NumWires)
}

func TestSession_Percentages(t *testing.T) {
	lim := DefaultLimits()
	s := Session{WireLeft: 250, NumWires: 4, NumWiresLeft: 1}
	assert.Equal(t, 25, s.SpoolPercent(lim))
	assert.Equal(t, 75, s.BatchPercent())
	assert.Equal(t, 3, s.WiresMade())

	assert.Equal(t, 0, Session{WireLeft: -1}.SpoolPercent(lim))
	assert.Equal(t, 0, Session{}.BatchPercent())
}

func TestStore_SnapshotAndVersion(t *testing.T) {
	st := NewStore(Session{WireLeft: 100, NumWires: 1})
	_, v := st.SnapshotVersion()
	assert.Equal(t, uint64(0), v)

	got := st.Update(func(s *Session) { s.WireLeft -= 1.5 })
	assert.Equal(t, 98.5, got.WireLeft)
	snap, v := st.SnapshotVersion()
	assert.Equal(t, 98.5, snap.WireLeft)
	assert.Equal(t, uint64(1), v)

	st.Update(func(s *Session) {})
	_, v = st.SnapshotVersion()
	assert.Equal(t, uint64(2), v, "every write bumps the version")
	assert.Equal(t, 98.5, st.Snapshot().WireLeft)
}

func TestStore_ConcurrentReadersSeeWholeRecords(t *testing.T) {
	st := NewStore(Session{NumWires: 0, NumWiresLeft: 0})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= 2000; i++ {
			st.Update(func(s *Session) {
				s.NumWires = i
				s.NumWiresLeft = i
			})
		}
	}()

	for i := 0; i < 2000; i++ {
		s := st.Snapshot()
		require.Equal(t, s.NumWires, s.NumWiresLeft, "torn snapshot")
	}
	wg.Wait()
}
