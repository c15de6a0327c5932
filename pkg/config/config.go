// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the machine configuration file. Every value has a
// default matching the reference machine, so the file only needs the keys
// that differ.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/hw/sim"
	"github.com/Thermoquad/wirefactory/pkg/machine"
	"github.com/Thermoquad/wirefactory/pkg/sequencer"
	"github.com/Thermoquad/wirefactory/pkg/session"
	"github.com/Thermoquad/wirefactory/pkg/telemetry"
)

// Config is the root of the configuration file
type Config struct {
	Link        LinkConfig        `yaml:"link"`
	Machine     MachineConfig     `yaml:"machine"`
	Timing      TimingConfig      `yaml:"timing"`
	Sim         SimConfig         `yaml:"sim"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Status      StatusConfig      `yaml:"status"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
}

// LinkConfig selects the command link transport
type LinkConfig struct {
	Port string `yaml:"port"` // serial device
	Baud int    `yaml:"baud"`
	URL  string `yaml:"url"` // WebSocket bridge, takes precedence over port
}

// MachineConfig holds the physical constants
type MachineConfig struct {
	MaxSpoolFt           float64 `yaml:"max_spool_ft"`
	Increment            float64 `yaml:"increment"`
	MinMidpointClearance float64 `yaml:"min_midpoint_clearance"`
	MaxGuideAngle        int     `yaml:"max_guide_angle"`
	StripAngle           int     `yaml:"strip_angle"`
	CutAngle             int     `yaml:"cut_angle"`
	WheelDiameter        float64 `yaml:"wheel_diameter"`
	TicksPerRev          int     `yaml:"ticks_per_rev"`
	EdgesPerTick         int     `yaml:"edges_per_tick"`
	FeedResolution       int     `yaml:"feed_resolution"`
	FeedSpeed            float64 `yaml:"feed_speed"`
	CutterSpeed          float64 `yaml:"cutter_speed"`
}

// TimingConfig holds loop periods
type TimingConfig struct {
	Poll      time.Duration `yaml:"poll"`
	JogPoll   time.Duration `yaml:"jog_poll"`
	FeedDwell time.Duration `yaml:"feed_dwell"`
	LimitPoll time.Duration `yaml:"limit_poll"`
	Gauge     time.Duration `yaml:"gauge"`
	Heartbeat time.Duration `yaml:"heartbeat"`
	Render    time.Duration `yaml:"render"`
}

// SimConfig describes the simulated rig
type SimConfig struct {
	StepsPerRev  int           `yaml:"steps_per_rev"`
	CutterTravel time.Duration `yaml:"cutter_travel"`
	Realtime     bool          `yaml:"realtime"`
}

// PersistenceConfig enables the spool file. Empty path disables it.
type PersistenceConfig struct {
	Path     string        `yaml:"path"`
	Interval time.Duration `yaml:"interval"`
}

// StatusConfig enables the HTTP status server. Empty listen disables it.
type StatusConfig struct {
	Listen         string        `yaml:"listen"`
	StreamInterval time.Duration `yaml:"stream_interval"`
}

// MQTTConfig enables the MQTT publisher. Empty url disables it.
type MQTTConfig struct {
	URL      string        `yaml:"url"`
	Prefix   string        `yaml:"prefix"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the reference machine configuration
func Default() *Config {
	return &Config{
		Link: LinkConfig{
			Baud: 9600,
		},
		Machine: MachineConfig{
			MaxSpoolFt:           1000,
			Increment:            0.2,
			MinMidpointClearance: 0.5,
			MaxGuideAngle:        180,
			StripAngle:           155,
			CutAngle:             142,
			WheelDiameter:        0.5,
			TicksPerRev:          4,
			EdgesPerTick:         2,
			FeedResolution:       int(hw.EighthStep),
			FeedSpeed:            10000,
			CutterSpeed:          1.0,
		},
		Timing: TimingConfig{
			Poll:      50 * time.Millisecond,
			JogPoll:   50 * time.Millisecond,
			FeedDwell: 5 * time.Millisecond,
			LimitPoll: 10 * time.Millisecond,
			Gauge:     time.Second,
			Heartbeat: time.Second,
			Render:    100 * time.Millisecond,
		},
		Sim: SimConfig{
			StepsPerRev:  200,
			CutterTravel: 300 * time.Millisecond,
		},
		Persistence: PersistenceConfig{
			Interval: time.Minute,
		},
		Status: StatusConfig{
			StreamInterval: time.Second,
		},
		MQTT: MQTTConfig{
			Prefix:   "wirefactory",
			Interval: 5 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// Validate reports the first inconsistent value
func (c *Config) Validate() error {
	m := c.Machine
	if m.MaxSpoolFt <= 0 {
		return fmt.Errorf("machine.max_spool_ft must be positive, got %v", m.MaxSpoolFt)
	}
	if m.Increment <= 0 {
		return fmt.Errorf("machine.increment must be positive, got %v", m.Increment)
	}
	if m.MinMidpointClearance < 0 {
		return fmt.Errorf("machine.min_midpoint_clearance must not be negative, got %v", m.MinMidpointClearance)
	}
	if m.MaxGuideAngle <= 0 {
		return fmt.Errorf("machine.max_guide_angle must be positive, got %d", m.MaxGuideAngle)
	}
	for name, angle := range map[string]int{"strip_angle": m.StripAngle, "cut_angle": m.CutAngle} {
		if angle < 0 || angle > m.MaxGuideAngle {
			return fmt.Errorf("machine.%s must be between 0 and %d, got %d", name, m.MaxGuideAngle, angle)
		}
	}
	if err := c.Calibration().Validate(); err != nil {
		return fmt.Errorf("machine: %w", err)
	}
	switch hw.Resolution(m.FeedResolution) {
	case hw.FullStep, hw.HalfStep, hw.QuarterStep, hw.EighthStep, hw.SixteenthStep:
	default:
		return fmt.Errorf("machine.feed_resolution must be one of 0, 1, 2, 3, 7, got %d", m.FeedResolution)
	}
	if m.FeedSpeed <= 0 {
		return fmt.Errorf("machine.feed_speed must be positive, got %v", m.FeedSpeed)
	}
	if m.CutterSpeed <= 0 || m.CutterSpeed > 1 {
		return fmt.Errorf("machine.cutter_speed must be in (0, 1], got %v", m.CutterSpeed)
	}

	t := c.Timing
	for name, d := range map[string]time.Duration{
		"poll":       t.Poll,
		"jog_poll":   t.JogPoll,
		"limit_poll": t.LimitPoll,
		"gauge":      t.Gauge,
		"heartbeat":  t.Heartbeat,
		"render":     t.Render,
	} {
		if d <= 0 {
			return fmt.Errorf("timing.%s must be positive, got %s", name, d)
		}
	}
	if t.FeedDwell < 0 {
		return fmt.Errorf("timing.feed_dwell must not be negative, got %s", t.FeedDwell)
	}

	if c.Sim.StepsPerRev <= 0 {
		return fmt.Errorf("sim.steps_per_rev must be positive, got %d", c.Sim.StepsPerRev)
	}
	if c.Link.Baud <= 0 {
		return fmt.Errorf("link.baud must be positive, got %d", c.Link.Baud)
	}
	if c.Persistence.Path != "" && c.Persistence.Interval <= 0 {
		return fmt.Errorf("persistence.interval must be positive, got %s", c.Persistence.Interval)
	}
	if c.Status.Listen != "" && c.Status.StreamInterval <= 0 {
		return fmt.Errorf("status.stream_interval must be positive, got %s", c.Status.StreamInterval)
	}
	if c.MQTT.URL != "" {
		if c.MQTT.Interval <= 0 {
			return fmt.Errorf("mqtt.interval must be positive, got %s", c.MQTT.Interval)
		}
		if c.MQTT.Prefix == "" {
			return fmt.Errorf("mqtt.prefix must not be empty")
		}
	}
	return nil
}

// Limits returns the validation limits
func (c *Config) Limits() session.Limits {
	return session.Limits{
		MaxSpoolFt:           c.Machine.MaxSpoolFt,
		Increment:            c.Machine.Increment,
		MinMidpointClearance: c.Machine.MinMidpointClearance,
		MaxGuideAngle:        c.Machine.MaxGuideAngle,
	}
}

// Calibration returns the feed wheel calibration
func (c *Config) Calibration() sequencer.Calibration {
	return sequencer.Calibration{
		WheelDiameter: c.Machine.WheelDiameter,
		TicksPerRev:   c.Machine.TicksPerRev,
		EdgesPerTick:  c.Machine.EdgesPerTick,
	}
}

// Sequencer returns the cut cycle parameters
func (c *Config) Sequencer() sequencer.Config {
	return sequencer.Config{
		Calibration:    c.Calibration(),
		StripAngle:     c.Machine.StripAngle,
		CutAngle:       c.Machine.CutAngle,
		FeedResolution: hw.Resolution(c.Machine.FeedResolution),
		FeedSpeed:      c.Machine.FeedSpeed,
		CutterSpeed:    c.Machine.CutterSpeed,
		FeedDwell:      c.Timing.FeedDwell,
		LimitPoll:      c.Timing.LimitPoll,
	}
}

// Controller returns the controller timing
func (c *Config) Controller() machine.Config {
	return machine.Config{
		Poll:    c.Timing.Poll,
		JogPoll: c.Timing.JogPoll,
		Limits:  c.Limits(),
	}
}

// Telemetry returns the display refresh periods
func (c *Config) Telemetry() telemetry.Config {
	return telemetry.Config{
		GaugeInterval:     c.Timing.Gauge,
		HeartbeatInterval: c.Timing.Heartbeat,
		RenderInterval:    c.Timing.Render,
	}
}

// SimRig returns the simulated rig mechanics. The encoder matches the
// configured calibration.
func (c *Config) SimRig() sim.Config {
	return sim.Config{
		StepsPerRev:  c.Sim.StepsPerRev,
		EdgesPerRev:  c.Calibration().PulsesPerRev(),
		CutterTravel: c.Sim.CutterTravel,
		Realtime:     c.Sim.Realtime,
	}
}
