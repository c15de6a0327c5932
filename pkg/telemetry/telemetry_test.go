// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/wirefactory/pkg/display"
	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/machine"
	"github.com/Thermoquad/wirefactory/pkg/session"
)

type fakeModes struct {
	mode    atomic.Int32
	changed *machine.Signal
	refresh *machine.Signal
}

func newFakeModes(m machine.Mode) *fakeModes {
	f := &fakeModes{changed: machine.NewSignal(), refresh: machine.NewSignal()}
	f.set(m)
	return f
}

func (f *fakeModes) set(m machine.Mode) {
	f.mode.Store(int32(m))
	f.changed.Notify()
}

func (f *fakeModes) Mode() machine.Mode           { return machine.Mode(f.mode.Load()) }
func (f *fakeModes) ModeChanged() *machine.Signal { return f.changed }
func (f *fakeModes) Refresh() *machine.Signal     { return f.refresh }

func paramsSession() session.Session {
	return session.Session{
		WireLeft:          1000,
		WireLength:        10,
		LeftIncisionDist:  2,
		RightIncisionDist: 2,
		NumWires:          5,
		OptionSelected:    session.FieldWireLength,
		GuideAngle:        142,
	}
}

func TestParamLines_CuttingParams(t *testing.T) {
	lines := ParamLines(machine.CuttingParams, paramsSession(), session.DefaultLimits())
	assert.Equal(t, []string{
		">[1]Length:10.0in",
		" [2]L_Cut:  2.0in",
		" [3]R_Cut:  2.0in",
		" [4]Num Wires:   5",
	}, lines)
}

func TestParamLines_ShowsValidatedValues(t *testing.T) {
	s := paramsSession()
	s.LeftIncisionDist = 9
	s.OptionSelected = session.FieldLeftIncision
	lines := ParamLines(machine.CuttingParams, s, session.DefaultLimits())
	assert.Equal(t, ">[2]L_Cut:  4.5in", lines[1])
}

func TestParamLines_Guide(t *testing.T) {
	lines := ParamLines(machine.SettingsGuide, paramsSession(), session.DefaultLimits())
	assert.Equal(t, []string{"Angle: 142"}, lines)
	assert.Nil(t, ParamLines(machine.Menu, paramsSession(), session.DefaultLimits()))
}

func TestBodyLines(t *testing.T) {
	assert.Equal(t, "[1]New Operation", BodyLines(machine.Menu)[1])
	assert.Contains(t, BodyLines(machine.SettingsMenu), "[4]Move GuideMotor")
	assert.Contains(t, BodyLines(machine.CuttingParams), "[L]Back    [R]Next")
	assert.Nil(t, BodyLines(machine.SettingsReset))
}

func TestProgress(t *testing.T) {
	s := session.Session{NumWires: 4, NumWiresLeft: 1}
	p := ProgressFor(s)
	assert.Equal(t, display.Progress{Made: 3, Total: 4, Percent: 75}, p)
	assert.Equal(t, []string{"Wires Made:  3/4", " 75%"}, ProgressLines(p))

	s.NumWiresLeft = 0
	assert.Equal(t, []string{"Wires Made:  4/4", "100%", "[R]Finish"}, ProgressLines(ProgressFor(s)))
}

func TestGauge(t *testing.T) {
	lim := session.DefaultLimits()
	present := hw.SwitchFunc(func() bool { return true })

	g := GaugeFor(session.Session{WireLeft: 300}, lim, present)
	assert.Equal(t, display.Gauge{Feet: 300, Percent: 30, Level: display.LevelLow, SpoolPresent: true}, g)
	assert.Equal(t, []string{"Wire Left:", "300.0 ft", " 30%"}, GaugeLines(g))

	g = GaugeFor(session.Session{WireLeft: 300}, lim, hw.SwitchFunc(func() bool { return false }))
	assert.Equal(t, []string{"Wire Left:", "NO SPOOL"}, GaugeLines(g))

	g = GaugeFor(session.Session{WireLeft: 900}, lim, nil)
	assert.Equal(t, display.LevelOK, g.Level)
	assert.True(t, g.SpoolPresent)
}

func newThreads(modes ModeSource, store *session.Store) (*Threads, *display.Memory) {
	mem := display.NewMemory()
	cfg := Config{
		GaugeInterval:     5 * time.Millisecond,
		HeartbeatInterval: 5 * time.Millisecond,
		RenderInterval:    time.Millisecond,
	}
	return New(cfg, session.DefaultLimits(), display.NewScreen(mem), store, modes, nil), mem
}

func TestRender_ModeChangeAndRefresh(t *testing.T) {
	store := session.NewStore(paramsSession())
	modes := newFakeModes(machine.CuttingParams)
	th, mem := newThreads(modes, store)

	th.Render()
	assert.Equal(t, BodyLines(machine.CuttingParams), mem.Lines(display.RegionBody))
	assert.Equal(t, ">[1]Length:10.0in", mem.Lines(display.RegionParams)[0])

	store.Update(func(s *session.Session) { s.OptionSelected = session.FieldNumWires })
	th.Render()
	assert.Equal(t, ">[1]Length:10.0in", mem.Lines(display.RegionParams)[0], "no refresh pending")

	modes.refresh.Notify()
	th.Render()
	assert.Equal(t, ">[4]Num Wires:   5", mem.Lines(display.RegionParams)[3])

	modes.set(machine.Menu)
	th.Render()
	assert.Equal(t, "Select Option", mem.Lines(display.RegionBody)[0])
	assert.Empty(t, mem.Lines(display.RegionParams))
}

func TestRender_ProgressFollowsStoreWhileCutting(t *testing.T) {
	s := paramsSession()
	s.NumWiresLeft = 5
	store := session.NewStore(s)
	modes := newFakeModes(machine.CuttingRun)
	mem := display.NewMemory()
	screen := display.NewScreen(mem)
	th := New(DefaultConfig(), session.DefaultLimits(), screen, store, modes, nil)

	th.Render()
	require.NotNil(t, mem.LastProgress())
	assert.Equal(t, 0, mem.LastProgress().Made)
	draws := screen.Draws()

	th.Render()
	th.Render()
	assert.Equal(t, draws, screen.Draws(), "unchanged session is not redrawn")

	store.Update(func(s *session.Session) { s.NumWiresLeft = 2 })
	th.Render()
	assert.Equal(t, draws+1, screen.Draws())
	assert.Equal(t, 3, mem.LastProgress().Made)
	assert.False(t, mem.LastProgress().Finished)

	modes.set(machine.Menu)
	th.Render()
	assert.Nil(t, mem.LastProgress())

	modes.set(machine.CuttingRun)
	th.Render()
	require.NotNil(t, mem.LastProgress(), "re-entering the run redraws progress")
	assert.Equal(t, 3, mem.LastProgress().Made)
}

func TestThreads_Run(t *testing.T) {
	store := session.NewStore(session.Session{WireLeft: 100})
	th, mem := newThreads(newFakeModes(machine.Menu), store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- th.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, gauges := mem.LastGauge()
		_, beats := mem.HeartbeatState()
		return gauges >= 2 && beats >= 2 && len(mem.Lines(display.RegionBody)) > 0
	}, time.Second, time.Millisecond)

	g, _ := mem.LastGauge()
	assert.Equal(t, 10, g.Percent)
	assert.Equal(t, display.LevelCritical, g.Level)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}
