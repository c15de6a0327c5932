// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package sequencer runs the batch cut cycle: feed, strip, feed, strip,
// feed, cut, for every wire left in the batch.
package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/session"
)

// Config holds the motion parameters of the cut cycle
type Config struct {
	Calibration    Calibration
	StripAngle     int // guide angle that routes the wire to the stripping blade
	CutAngle       int // guide angle that routes the wire to the cutting blade
	FeedResolution hw.Resolution
	FeedSpeed      float64
	CutterSpeed    float64
	FeedDwell      time.Duration // pause after each feeder step
	LimitPoll      time.Duration // limit switch polling period
}

// DefaultConfig returns the reference machine's cycle parameters
func DefaultConfig() Config {
	return Config{
		Calibration:    DefaultCalibration(),
		StripAngle:     155,
		CutAngle:       142,
		FeedResolution: hw.EighthStep,
		FeedSpeed:      10000,
		CutterSpeed:    1.0,
		FeedDwell:      5 * time.Millisecond,
		LimitPoll:      10 * time.Millisecond,
	}
}

// Sequencer drives the rig through a batch. Run blocks the caller until the
// batch is done; there is no stop once it starts other than ctx.
type Sequencer struct {
	cfg   Config
	rig   hw.Rig
	store *session.Store

	// OnWire, when set, is called with the session after every finished wire
	OnWire func(session.Session)
}

// New creates a sequencer for rig that records progress in store
func New(cfg Config, rig hw.Rig, store *session.Store) *Sequencer {
	return &Sequencer{cfg: cfg, rig: rig, store: store}
}

// Config returns the sequencer configuration
func (q *Sequencer) Config() Config {
	return q.cfg
}

// Run homes the cutter and makes every wire left in the batch
func (q *Sequencer) Run(ctx context.Context) error {
	start := q.store.Snapshot()
	glog.Infof("batch %s: %d x %.1f in (strip %.1f / %.1f)",
		start.JobID, start.NumWiresLeft, start.WireLength, start.LeftIncisionDist, start.RightIncisionDist)

	if err := q.Home(ctx); err != nil {
		return err
	}

	for i := start.NumWiresLeft; i > 0; i-- {
		if err := q.makeWire(ctx); err != nil {
			return err
		}
	}

	glog.Infof("batch %s: done", start.JobID)
	return nil
}

// Home raises the blade to its upper limit
func (q *Sequencer) Home(ctx context.Context) error {
	q.rig.Cutter.SetSpeed(q.cfg.CutterSpeed)
	defer q.rig.Cutter.SetSpeed(0)
	if err := hw.WaitFor(ctx, q.rig.UpperLimit, q.cfg.LimitPoll); err != nil {
		return fmt.Errorf("homing cutter: %w", err)
	}
	return nil
}

func (q *Sequencer) makeWire(ctx context.Context) error {
	s := q.store.Snapshot()
	mark := q.rig.FeedEncoder.Count()

	if err := q.Feed(ctx, s.LeftIncisionDist); err != nil {
		return err
	}
	q.rig.Guide.SetPosition(q.cfg.StripAngle)
	if err := q.Stroke(ctx); err != nil {
		return err
	}

	if err := q.Feed(ctx, s.MidSpan()); err != nil {
		return err
	}
	if err := q.Stroke(ctx); err != nil {
		return err
	}

	if err := q.Feed(ctx, s.RightIncisionDist); err != nil {
		return err
	}
	q.rig.Guide.SetPosition(q.cfg.CutAngle)
	if err := q.Stroke(ctx); err != nil {
		return err
	}

	pulses := q.rig.FeedEncoder.Since(mark)
	used := q.cfg.Calibration.FeetForPulses(pulses)
	s = q.store.Update(func(s *session.Session) {
		s.WireLeft -= used
		if s.WireLeft < 0 {
			s.WireLeft = 0
		}
		s.NumWiresLeft--
	})
	glog.V(2).Infof("wire done: %d pulses (%.3f ft), %d left, %.1f ft on spool",
		pulses, used, s.NumWiresLeft, s.WireLeft)

	if q.OnWire != nil {
		q.OnWire(s)
	}
	return nil
}

// Feed pushes wire forward until the encoder reports inches of travel
func (q *Sequencer) Feed(ctx context.Context, inches float64) error {
	target := q.cfg.Calibration.PulsesForDistance(inches)
	if target == 0 {
		return nil
	}

	enc := q.rig.FeedEncoder
	mark := enc.Count()
	q.rig.Feeder.Enable()
	defer q.rig.Feeder.Disable()

	for enc.Since(mark) < target {
		q.rig.Feeder.Step(q.cfg.FeedResolution, hw.Forward, q.cfg.FeedSpeed)
		if err := hw.Sleep(ctx, q.cfg.FeedDwell); err != nil {
			return fmt.Errorf("feeding %.2f in: %w", inches, err)
		}
	}
	return nil
}

// Stroke drives the blade to the lower limit and back up
func (q *Sequencer) Stroke(ctx context.Context) error {
	defer q.rig.Cutter.SetSpeed(0)

	q.rig.Cutter.SetSpeed(-q.cfg.CutterSpeed)
	if err := hw.WaitFor(ctx, q.rig.LowerLimit, q.cfg.LimitPoll); err != nil {
		return fmt.Errorf("cutter down: %w", err)
	}
	q.rig.Cutter.SetSpeed(q.cfg.CutterSpeed)
	if err := hw.WaitFor(ctx, q.rig.UpperLimit, q.cfg.LimitPoll); err != nil {
		return fmt.Errorf("cutter up: %w", err)
	}
	return nil
}
