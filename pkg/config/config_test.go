// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/machine"
	"github.com/Thermoquad/wirefactory/pkg/sequencer"
	"github.com/Thermoquad/wirefactory/pkg/session"
	"github.com/Thermoquad/wirefactory/pkg/telemetry"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wirefactory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_MatchesPackageDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, session.DefaultLimits(), cfg.Limits())
	assert.Equal(t, sequencer.DefaultConfig(), cfg.Sequencer())
	assert.Equal(t, machine.DefaultConfig(), cfg.Controller())
	assert.Equal(t, telemetry.DefaultConfig(), cfg.Telemetry())
	assert.Equal(t, 8, cfg.SimRig().EdgesPerRev)
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
link:
  port: /dev/ttyACM0
machine:
  wheel_diameter: 1.0
  feed_resolution: 7
timing:
  poll: 20ms
  feed_dwell: 0s
persistence:
  path: /var/lib/wirefactory/spool.yaml
mqtt:
  url: tcp://broker:1883
`))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM0", cfg.Link.Port)
	assert.Equal(t, 9600, cfg.Link.Baud, "untouched keys keep defaults")
	assert.Equal(t, 1.0, cfg.Calibration().WheelDiameter)
	assert.Equal(t, hw.SixteenthStep, cfg.Sequencer().FeedResolution)
	assert.Equal(t, 20*time.Millisecond, cfg.Controller().Poll)
	assert.Equal(t, time.Duration(0), cfg.Sequencer().FeedDwell)
	assert.Equal(t, time.Minute, cfg.Persistence.Interval)
	assert.Equal(t, "wirefactory", cfg.MQTT.Prefix)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{"unknown key", "machine:\n  wheel_radius: 1\n"},
		{"bad yaml", "timing: [\n"},
		{"bad duration", "timing:\n  poll: soon\n"},
		{"zero increment", "machine:\n  increment: 0\n"},
		{"bad resolution", "machine:\n  feed_resolution: 5\n"},
		{"cutter too fast", "machine:\n  cutter_speed: 2\n"},
		{"strip angle out of range", "machine:\n  strip_angle: 200\n"},
		{"zero poll", "timing:\n  poll: 0s\n"},
		{"no wheel", "machine:\n  wheel_diameter: 0\n"},
		{"mqtt without prefix", "mqtt:\n  url: tcp://x:1883\n  prefix: \"\"\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
