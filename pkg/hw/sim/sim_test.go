// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/wirefactory/pkg/hw"
)

func TestFeeder_EncoderEdges(t *testing.T) {
	cfg := Config{StepsPerRev: 200, EdgesPerRev: 8}
	m := New(cfg)

	// Disabled driver holds still
	m.Feeder.Step(hw.EighthStep, hw.Forward, 10000)
	assert.Equal(t, uint64(0), m.Feeder.Steps())

	m.Feeder.Enable()
	// 200*16/8 = 400 sixteenths per edge, an eighth step is 2
	for i := 0; i < 400; i++ {
		m.Feeder.Step(hw.EighthStep, hw.Forward, 10000)
	}
	assert.Equal(t, uint64(2), m.Encoder.Count())
	assert.Equal(t, int64(800), m.Feeder.Position())

	// Encoder counts edges in either direction
	for i := 0; i < 200; i++ {
		m.Feeder.Step(hw.EighthStep, hw.Reverse, 10000)
	}
	assert.Equal(t, uint64(3), m.Encoder.Count())
	assert.Equal(t, int64(400), m.Feeder.Position())
}

func TestCutter_Instant(t *testing.T) {
	c := NewCutter(0)
	assert.False(t, c.AtUpper())
	assert.False(t, c.AtLower())

	c.SetSpeed(-1)
	assert.True(t, c.AtLower())
	c.SetSpeed(1)
	assert.True(t, c.AtUpper())
	c.SetSpeed(0)

	assert.Equal(t, 1, c.Strokes())
	assert.Equal(t, []float64{-1, 1, 0}, c.History())
}

func TestCutter_Travel(t *testing.T) {
	m := New(Config{CutterTravel: 20 * time.Millisecond})
	rig := m.Rig()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	m.Cutter.SetSpeed(-1)
	require.NoError(t, hw.WaitFor(ctx, rig.LowerLimit, time.Millisecond))
	m.Cutter.SetSpeed(1)
	require.NoError(t, hw.WaitFor(ctx, rig.UpperLimit, time.Millisecond))
	m.Cutter.SetSpeed(0)

	assert.True(t, m.Cutter.AtUpper())
	assert.Equal(t, 1, m.Cutter.Strokes())
}

func TestCutter_ClampsSpeed(t *testing.T) {
	c := NewCutter(time.Second)
	c.SetSpeed(4)
	assert.Equal(t, 1.0, c.Speed())
}

func TestGuideAndSpool(t *testing.T) {
	m := New(DefaultConfig())
	assert.Equal(t, -1, m.Guide.Angle())
	m.Guide.SetPosition(155)
	m.Guide.SetPosition(142)
	assert.Equal(t, 142, m.Guide.Angle())
	assert.Equal(t, []int{155, 142}, m.Guide.Positions())

	rig := m.Rig()
	require.NoError(t, rig.Validate())
	assert.True(t, rig.SpoolPresent.Asserted())
	m.Spool.Set(false)
	assert.False(t, rig.SpoolPresent.Asserted())
}
