// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package padlink

import "fmt"

// EncodeFrame creates the 5-byte wire frame for a button event
func EncodeFrame(ev ButtonEvent) ([]byte, error) {
	if !ev.Valid() {
		return nil, fmt.Errorf("cannot encode invalid button event 0x%02X", uint8(ev))
	}

	button := byte(ev.Button()) + '0'
	hit := byte(hitReleased) + '0'
	if ev.Pressed() {
		hit = byte(hitPressed) + '0'
	}

	return []byte{
		MarkerByte,
		CommandByte,
		button,
		hit,
		Checksum(MarkerByte, CommandByte, button, hit),
	}, nil
}

// MustEncodeFrame encodes a button event.
// Panics on encoding error (use EncodeFrame for error handling).
func MustEncodeFrame(ev ButtonEvent) []byte {
	frame, err := EncodeFrame(ev)
	if err != nil {
		panic(fmt.Sprintf("padlink: encode error: %v", err))
	}
	return frame
}

// NewEvent builds the event for a button transition
func NewEvent(button Button, pressed bool) ButtonEvent {
	hit := byte(hitReleased)
	if pressed {
		hit = hitPressed
	}
	return makeEvent(byte(button), hit)
}
