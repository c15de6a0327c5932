// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"time"

	"github.com/Thermoquad/wirefactory/pkg/padlink"
)

// keyRelease is how long a synthesized key press is held. Terminals report
// presses only, so the release frame follows after this delay.
const keyRelease = 150 * time.Millisecond

// keyButtons maps terminal key names to pad buttons
var keyButtons = map[string]padlink.Button{
	"1":     padlink.ButtonOne,
	"2":     padlink.ButtonTwo,
	"3":     padlink.ButtonThree,
	"4":     padlink.ButtonFour,
	"up":    padlink.ButtonUp,
	"down":  padlink.ButtonDown,
	"left":  padlink.ButtonLeft,
	"right": padlink.ButtonRight,
	"k":     padlink.ButtonUp,
	"j":     padlink.ButtonDown,
	"h":     padlink.ButtonLeft,
	"l":     padlink.ButtonRight,
}

// buttonForKey returns the pad button bound to a key name
func buttonForKey(key string) (padlink.Button, bool) {
	b, ok := keyButtons[key]
	return b, ok
}

const keyHelp = "[1-4] select  [arrows/hjkl] up down back next  [q] quit"
