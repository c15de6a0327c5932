// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package padlink

import (
	"errors"
	"fmt"
)

// Framing errors reported by DecodeByte. They only feed statistics and
// logging; the decoder has already resynchronized when one is returned.
var (
	ErrUnexpectedByte = errors.New("unexpected byte")
	ErrChecksum       = errors.New("checksum mismatch")
)

// Decoder implements the pad frame decoder state machine
type Decoder struct {
	state     DecoderState
	buttonRaw byte
	hitRaw    byte
}

// NewDecoder creates a new frame decoder in the idle state
func NewDecoder() *Decoder {
	return &Decoder{state: StateIdle}
}

// Reset resets the decoder state to idle
func (d *Decoder) Reset() {
	d.state = StateIdle
	d.buttonRaw = 0
	d.hitRaw = 0
}

// State returns the current decoder state
func (d *Decoder) State() DecoderState {
	return d.state
}

// DecodeByte processes a single byte through the decoder state machine.
// Returns the decoded event and true once a complete frame with a valid
// checksum has been received. A non-nil error means the current frame was
// dropped; the decoder is back in StateIdle either way.
func (d *Decoder) DecodeByte(b byte) (ButtonEvent, bool, error) {
	switch d.state {
	case StateIdle:
		// Anything other than the marker is line noise
		if b == MarkerByte {
			d.state = StateGotMarker
		}
		return EventInvalid, false, nil

	case StateGotMarker:
		// A repeated marker restarts the frame on the latest one
		if b == MarkerByte {
			return EventInvalid, false, nil
		}
		if b != CommandByte {
			d.Reset()
			return EventInvalid, false, fmt.Errorf("%w: 0x%02X after marker, want '%c'", ErrUnexpectedByte, b, CommandByte)
		}
		d.state = StateGotCommandByte
		return EventInvalid, false, nil

	case StateGotCommandByte:
		d.buttonRaw = b
		d.state = StateGotButtonByte
		return EventInvalid, false, nil

	case StateGotButtonByte:
		d.hitRaw = b
		d.state = StateGotHitByte
		return EventInvalid, false, nil

	case StateGotHitByte:
		expected := Checksum(MarkerByte, CommandByte, d.buttonRaw, d.hitRaw)
		button, hit := d.buttonRaw, d.hitRaw
		d.Reset()
		if b != expected {
			return EventInvalid, false, fmt.Errorf("%w: expected 0x%02X, got 0x%02X", ErrChecksum, expected, b)
		}
		return makeEvent(button-'0', hit-'0'), true, nil

	default:
		d.Reset()
		return EventInvalid, false, fmt.Errorf("%w: invalid state %d", ErrUnexpectedByte, d.state)
	}
}

// Decode feeds a buffer through the decoder and returns every event it
// completed, in order. Framing errors are returned alongside so callers can
// count them.
func (d *Decoder) Decode(data []byte) ([]ButtonEvent, []error) {
	var events []ButtonEvent
	var errs []error
	for _, b := range data {
		ev, ok, err := d.DecodeByte(b)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			events = append(events, ev)
		}
	}
	return events, errs
}

func makeEvent(button, hit byte) ButtonEvent {
	return ButtonEvent(button<<4 | hit)
}
