// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package status publishes machine status snapshots over HTTP, a WebSocket
// stream and MQTT.
package status

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/Thermoquad/wirefactory/pkg/display"
	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/machine"
	"github.com/Thermoquad/wirefactory/pkg/padlink"
	"github.com/Thermoquad/wirefactory/pkg/session"
)

// Status is one snapshot of the machine
type Status struct {
	Timestamp int64  `json:"ts"` // unix milliseconds
	Mode      string `json:"mode"`
	JobID     string `json:"job_id,omitempty"`

	WireLeft     float64 `json:"wire_left_ft"`
	SpoolPercent int     `json:"spool_percent"`
	SpoolLevel   string  `json:"spool_level"`
	SpoolPresent bool    `json:"spool_present"`

	WireLength        float64 `json:"wire_length_in"`
	LeftIncisionDist  float64 `json:"left_incision_in"`
	RightIncisionDist float64 `json:"right_incision_in"`
	NumWires          int     `json:"num_wires"`
	NumWiresLeft      int     `json:"num_wires_left"`
	BatchPercent      int     `json:"batch_percent"`
	GuideAngle        int     `json:"guide_angle"`

	Link *LinkStatus `json:"link,omitempty"`
}

// LinkStatus summarizes the command link counters
type LinkStatus struct {
	ValidFrames    uint64  `json:"valid_frames"`
	ChecksumErrors uint64  `json:"checksum_errors"`
	FramingErrors  uint64  `json:"framing_errors"`
	BytesReceived  uint64  `json:"bytes_received"`
	FrameRate      float64 `json:"frame_rate"`
}

// ModeReader reports the current operating mode
type ModeReader interface {
	Mode() machine.Mode
}

// Source assembles snapshots from the running machine. Spool and Link are
// optional.
type Source struct {
	Modes  ModeReader
	Store  *session.Store
	Limits session.Limits
	Spool  hw.Switch
	Link   *padlink.Statistics

	now func() time.Time
}

// Snapshot returns the current status
func (src *Source) Snapshot() Status {
	now := time.Now
	if src.now != nil {
		now = src.now
	}
	s := src.Store.Snapshot()
	percent := s.SpoolPercent(src.Limits)

	st := Status{
		Timestamp:         now().UnixMilli(),
		Mode:              src.Modes.Mode().String(),
		JobID:             s.JobID,
		WireLeft:          s.WireLeft,
		SpoolPercent:      percent,
		SpoolLevel:        display.LevelFor(percent).String(),
		SpoolPresent:      src.Spool == nil || src.Spool.Asserted(),
		WireLength:        s.WireLength,
		LeftIncisionDist:  s.LeftIncisionDist,
		RightIncisionDist: s.RightIncisionDist,
		NumWires:          s.NumWires,
		NumWiresLeft:      s.NumWiresLeft,
		BatchPercent:      s.BatchPercent(),
		GuideAngle:        s.GuideAngle,
	}
	if src.Link != nil {
		ls := src.Link.Snapshot()
		st.Link = &LinkStatus{
			ValidFrames:    ls.ValidFrames,
			ChecksumErrors: ls.ChecksumErrors,
			FramingErrors:  ls.FramingErrors,
			BytesReceived:  ls.BytesReceived,
			FrameRate:      ls.FrameRate,
		}
	}
	return st
}

// EncodeCBOR encodes a snapshot for the binary stream
func EncodeCBOR(st Status) ([]byte, error) {
	data, err := cbor.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("failed to encode CBOR: %w", err)
	}
	return data, nil
}

// DecodeCBOR decodes a snapshot from the binary stream
func DecodeCBOR(data []byte) (Status, error) {
	var st Status
	if len(data) == 0 {
		return st, fmt.Errorf("empty CBOR payload")
	}
	if err := cbor.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("failed to decode CBOR: %w", err)
	}
	return st, nil
}
