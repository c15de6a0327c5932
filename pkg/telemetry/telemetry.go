// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package telemetry runs the background display goroutines: the
// wire-remaining gauge, the heartbeat indicator and the mode screen
// renderer. They only read the session and draw through display.Screen.
package telemetry

import (
	"context"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"github.com/Thermoquad/wirefactory/pkg/display"
	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/machine"
	"github.com/Thermoquad/wirefactory/pkg/session"
)

// Config holds the refresh periods
type Config struct {
	GaugeInterval     time.Duration
	HeartbeatInterval time.Duration
	RenderInterval    time.Duration
}

// DefaultConfig returns the reference refresh periods
func DefaultConfig() Config {
	return Config{
		GaugeInterval:     time.Second,
		HeartbeatInterval: time.Second,
		RenderInterval:    100 * time.Millisecond,
	}
}

// ModeSource is the part of the controller the renderer watches
type ModeSource interface {
	Mode() machine.Mode
	ModeChanged() *machine.Signal
	Refresh() *machine.Signal
}

// Threads bundles the three display goroutines
type Threads struct {
	cfg    Config
	lim    session.Limits
	screen *display.Screen
	store  *session.Store
	modes  ModeSource
	spool  hw.Switch

	// renderer-owned: store version the progress bar was last drawn at
	progressVersion uint64
	progressDrawn   bool
}

// New creates the display goroutines. spool may be nil when the machine has
// no spool-present switch.
func New(cfg Config, lim session.Limits, screen *display.Screen, store *session.Store, modes ModeSource, spool hw.Switch) *Threads {
	return &Threads{
		cfg:    cfg,
		lim:    lim,
		screen: screen,
		store:  store,
		modes:  modes,
		spool:  spool,
	}
}

// Run starts all three goroutines and waits for them to stop
func (t *Threads) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return t.RunGauge(ctx) })
	g.Go(func() error { return t.RunHeartbeat(ctx) })
	g.Go(func() error { return t.RunRenderer(ctx) })
	return g.Wait()
}

// every calls fn immediately and then on every tick until ctx is done
func every(ctx context.Context, d time.Duration, fn func()) error {
	fn()
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn()
		}
	}
}

// RunGauge redraws the wire-remaining gauge every GaugeInterval
func (t *Threads) RunGauge(ctx context.Context) error {
	return every(ctx, t.cfg.GaugeInterval, t.DrawGauge)
}

// DrawGauge draws the gauge once
func (t *Threads) DrawGauge() {
	g := GaugeFor(t.store.Snapshot(), t.lim, t.spool)
	t.screen.Draw(func(s display.Surface) { s.Gauge(g) })
}

// RunHeartbeat toggles the heartbeat indicator every HeartbeatInterval
func (t *Threads) RunHeartbeat(ctx context.Context) error {
	on := false
	return every(ctx, t.cfg.HeartbeatInterval, func() {
		on = !on
		t.screen.Draw(func(s display.Surface) { s.Heartbeat(on) })
	})
}

// RunRenderer redraws the mode screen every RenderInterval
func (t *Threads) RunRenderer(ctx context.Context) error {
	glog.V(1).Info("renderer started")
	return every(ctx, t.cfg.RenderInterval, t.Render)
}

// Render runs one renderer tick: the full screen if the mode changed, the
// parameter block if a refresh is pending, and the cutting progress while
// cutting whenever the session changed since it was last drawn.
func (t *Threads) Render() {
	changed := t.modes.ModeChanged().Consume()
	refresh := t.modes.Refresh().Consume()
	mode := t.modes.Mode()
	snap, version := t.store.SnapshotVersion()

	progress := mode == machine.CuttingRun &&
		(changed || !t.progressDrawn || version != t.progressVersion)
	if !changed && !refresh && !progress {
		return
	}

	t.screen.Draw(func(s display.Surface) {
		if changed {
			s.Text(display.RegionBody, BodyLines(mode))
			s.Progress(nil)
		}
		if changed || refresh {
			s.Text(display.RegionParams, ParamLines(mode, snap, t.lim))
		}
		if progress {
			p := ProgressFor(snap)
			s.Progress(&p)
		}
	})
	if progress {
		t.progressVersion = version
		t.progressDrawn = true
	}
}
