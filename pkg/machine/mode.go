// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package machine is the operating-mode state machine. Each mode has a pure
// transition function; the Controller polls the pad mailbox, applies the
// transition for the current mode and carries out the effects it returns.
package machine

import "fmt"

// Mode is the top-level operating mode
type Mode int32

// Operating modes
const (
	Menu Mode = iota
	CuttingParams
	CuttingRun
	SettingsMenu
	SettingsReset // declared for screen numbering, never entered
	SettingsFeed
	SettingsCutter
	SettingsGuide
)

var modeNames = map[Mode]string{
	Menu:           "MENU",
	CuttingParams:  "CUTTING_PARAMS",
	CuttingRun:     "CUTTING_RUN",
	SettingsMenu:   "SETTINGS_MENU",
	SettingsReset:  "SETTINGS_RESET",
	SettingsFeed:   "SETTINGS_FEED",
	SettingsCutter: "SETTINGS_CUTTER",
	SettingsGuide:  "SETTINGS_GUIDE",
}

// String returns the mode name
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(m))
}
