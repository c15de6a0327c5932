// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package padlink

import (
	"fmt"
	"time"
)

var buttonNames = map[Button]string{
	ButtonOne:   "ONE",
	ButtonTwo:   "TWO",
	ButtonThree: "THREE",
	ButtonFour:  "FOUR",
	ButtonUp:    "UP",
	ButtonDown:  "DOWN",
	ButtonLeft:  "LEFT",
	ButtonRight: "RIGHT",
}

// Button returns the button half of the event code
func (e ButtonEvent) Button() Button {
	return Button(e >> 4)
}

// Pressed reports whether the event is a press (hit digit 1)
func (e ButtonEvent) Pressed() bool {
	return e&0x0F == hitPressed
}

// Valid reports whether the event is one of the 16 defined codes
func (e ButtonEvent) Valid() bool {
	if e == EventInvalid {
		return false
	}
	hit := e & 0x0F
	if hit != hitPressed && hit != hitReleased {
		return false
	}
	_, ok := buttonNames[e.Button()]
	return ok
}

// String returns a human-readable event name such as UP_PRESSED
func (e ButtonEvent) String() string {
	if !e.Valid() {
		return fmt.Sprintf("INVALID(0x%02X)", uint8(e))
	}
	suffix := "RELEASED"
	if e.Pressed() {
		suffix = "PRESSED"
	}
	return buttonNames[e.Button()] + "_" + suffix
}

// String returns the button name
func (b Button) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BUTTON(%d)", uint8(b))
}

// String returns the decoder state name
func (s DecoderState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateGotMarker:
		return "GOT_MARKER"
	case StateGotCommandByte:
		return "GOT_COMMAND"
	case StateGotButtonByte:
		return "GOT_BUTTON"
	case StateGotHitByte:
		return "GOT_HIT"
	default:
		return "UNKNOWN"
	}
}

// FormatEvent formats a decoded event for log output
func FormatEvent(ev ButtonEvent, at time.Time) string {
	return fmt.Sprintf("[%s] %s (0x%02X)\n", at.Format("15:04:05.000"), ev, uint8(ev))
}
