// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package machine

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/padlink"
	"github.com/Thermoquad/wirefactory/pkg/sequencer"
	"github.com/Thermoquad/wirefactory/pkg/session"
)

// Config holds controller timing
type Config struct {
	Poll    time.Duration // mailbox polling period
	JogPoll time.Duration // release polling period while the cutter jogs
	Limits  session.Limits
}

// DefaultConfig returns the reference controller timing
func DefaultConfig() Config {
	return Config{
		Poll:    50 * time.Millisecond,
		JogPoll: 50 * time.Millisecond,
		Limits:  session.DefaultLimits(),
	}
}

// Controller runs the mode state machine against a rig. Only the goroutine
// calling Run (or Step) touches the actuators.
type Controller struct {
	cfg     Config
	rig     hw.Rig
	store   *session.Store
	mailbox *padlink.Mailbox
	seq     *sequencer.Sequencer

	mode        atomic.Int32
	modeChanged *Signal
	refresh     *Signal

	newJobID func() string
}

// New creates a controller in Menu mode
func New(cfg Config, rig hw.Rig, store *session.Store, mailbox *padlink.Mailbox, seq *sequencer.Sequencer) *Controller {
	c := &Controller{
		cfg:         cfg,
		rig:         rig,
		store:       store,
		mailbox:     mailbox,
		seq:         seq,
		modeChanged: NewSignal(),
		refresh:     NewSignal(),
		newJobID:    uuid.NewString,
	}
	c.mode.Store(int32(Menu))
	seq.OnWire = func(session.Session) { c.refresh.Notify() }
	return c
}

// Mode returns the current mode. Safe from any goroutine.
func (c *Controller) Mode() Mode {
	return Mode(c.mode.Load())
}

// ModeChanged fires when the whole screen must be redrawn
func (c *Controller) ModeChanged() *Signal {
	return c.modeChanged
}

// Refresh fires when the parameter region must be redrawn
func (c *Controller) Refresh() *Signal {
	return c.refresh
}

// Store returns the session store the controller mutates
func (c *Controller) Store() *session.Store {
	return c.store
}

// Start parks the guide at the strip position and homes the blade
func (c *Controller) Start(ctx context.Context) error {
	c.rig.Guide.SetPosition(c.seq.Config().StripAngle)
	if err := c.seq.Home(ctx); err != nil {
		return err
	}
	c.modeChanged.Notify()
	c.refresh.Notify()
	glog.Infof("controller ready in %s", c.Mode())
	return nil
}

// Run starts the machine and polls the mailbox until ctx is done
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.cfg.Poll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.Step(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				glog.Errorf("controller: %v", err)
			}
		}
	}
}

// Step runs one poll cycle: finishes any batch in progress, then takes at
// most one pending event and applies it. A taken event is consumed even when
// the current mode ignores it.
func (c *Controller) Step(ctx context.Context) error {
	if c.Mode() == CuttingRun && c.store.Snapshot().NumWiresLeft > 0 {
		if err := c.seq.Run(ctx); err != nil {
			return err
		}
		c.refresh.Notify()
	}

	ev, ok := c.mailbox.Take()
	if !ok {
		return nil
	}
	return c.Dispatch(ctx, ev)
}

// Dispatch applies ev to the current mode and executes the resulting effects
func (c *Controller) Dispatch(ctx context.Context, ev padlink.ButtonEvent) error {
	mode := c.Mode()
	var next Mode
	var effects []Effect
	c.store.Update(func(s *session.Session) {
		next, *s, effects = Transition(mode, *s, ev, c.cfg.Limits)
	})

	if next != mode {
		c.mode.Store(int32(next))
		glog.V(1).Infof("%s: %s -> %s", ev, mode, next)
	} else {
		glog.V(2).Infof("%s in %s", ev, mode)
	}

	for _, e := range effects {
		if err := c.execute(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) execute(ctx context.Context, e Effect) error {
	glog.V(2).Infof("effect %s", e)
	switch e.Kind {
	case EffectRedraw:
		c.modeChanged.Notify()
	case EffectRefresh:
		c.refresh.Notify()
	case EffectEnableFeeder:
		c.rig.Feeder.Enable()
	case EffectDisableFeeder:
		c.rig.Feeder.Disable()
	case EffectMoveGuide:
		c.rig.Guide.SetPosition(e.Angle)
	case EffectJogFeeder:
		return c.jogFeeder(ctx, e)
	case EffectJogCutter:
		return c.jogCutter(ctx, e)
	case EffectStartBatch:
		id := c.newJobID()
		s := c.store.Update(func(s *session.Session) { s.JobID = id })
		glog.Infof("batch %s queued: %d wires", id, s.NumWiresLeft)
	default:
		return errors.New("unknown effect " + e.String())
	}
	return nil
}

// released takes one pending event and reports whether it was want. Other
// events are swallowed while a jog runs.
func (c *Controller) released(want padlink.ButtonEvent) bool {
	ev, ok := c.mailbox.Take()
	if !ok {
		return false
	}
	if ev != want {
		glog.V(2).Infof("jog: dropped %s", ev)
		return false
	}
	return true
}

func (c *Controller) jogFeeder(ctx context.Context, e Effect) error {
	cfg := c.seq.Config()
	for !c.released(e.Until) {
		c.rig.Feeder.Step(cfg.FeedResolution, e.Direction, cfg.FeedSpeed)
		if err := hw.Sleep(ctx, cfg.FeedDwell); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) jogCutter(ctx context.Context, e Effect) error {
	c.rig.Cutter.SetSpeed(e.Speed * c.seq.Config().CutterSpeed)
	defer c.rig.Cutter.SetSpeed(0)
	for !c.released(e.Until) {
		if err := hw.Sleep(ctx, c.cfg.JogPoll); err != nil {
			return err
		}
	}
	return nil
}
