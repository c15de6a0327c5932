// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package machine

import (
	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/padlink"
	"github.com/Thermoquad/wirefactory/pkg/session"
)

// TransitionFunc handles one event in one mode. It must not touch hardware:
// anything beyond the session is returned as effects.
type TransitionFunc func(s session.Session, ev padlink.ButtonEvent, lim session.Limits) (Mode, session.Session, []Effect)

var transitions = map[Mode]TransitionFunc{
	Menu:           menuTransition,
	CuttingParams:  cuttingParamsTransition,
	CuttingRun:     cuttingRunTransition,
	SettingsMenu:   settingsMenuTransition,
	SettingsFeed:   settingsFeedTransition,
	SettingsCutter: settingsCutterTransition,
	SettingsGuide:  settingsGuideTransition,
}

// Transition dispatches ev to the handler of mode. Modes without a handler
// ignore every event.
func Transition(mode Mode, s session.Session, ev padlink.ButtonEvent, lim session.Limits) (Mode, session.Session, []Effect) {
	fn, ok := transitions[mode]
	if !ok {
		return mode, s, nil
	}
	return fn(s, ev, lim)
}

func menuTransition(s session.Session, ev padlink.ButtonEvent, _ session.Limits) (Mode, session.Session, []Effect) {
	switch ev {
	case padlink.OneReleased:
		return CuttingParams, s, []Effect{redraw, refresh}
	case padlink.TwoReleased:
		return SettingsMenu, s, []Effect{redraw}
	}
	return Menu, s, nil
}

var fieldButtons = map[padlink.ButtonEvent]session.Field{
	padlink.OneReleased:   session.FieldWireLength,
	padlink.TwoReleased:   session.FieldLeftIncision,
	padlink.ThreeReleased: session.FieldRightIncision,
	padlink.FourReleased:  session.FieldNumWires,
}

func cuttingParamsTransition(s session.Session, ev padlink.ButtonEvent, lim session.Limits) (Mode, session.Session, []Effect) {
	switch ev {
	case padlink.UpPressed:
		return CuttingParams, session.Validate(s.Adjust(1, lim), lim), []Effect{refresh}
	case padlink.DownPressed:
		return CuttingParams, session.Validate(s.Adjust(-1, lim), lim), []Effect{refresh}
	case padlink.OneReleased, padlink.TwoReleased, padlink.ThreeReleased, padlink.FourReleased:
		s.OptionSelected = fieldButtons[ev]
		return CuttingParams, s, []Effect{refresh}
	case padlink.LeftReleased:
		return Menu, s, []Effect{redraw}
	case padlink.RightReleased:
		s = session.Validate(s, lim)
		s.NumWiresLeft = s.NumWires
		return CuttingRun, s, []Effect{startBatch, redraw}
	}
	return CuttingParams, s, nil
}

func cuttingRunTransition(s session.Session, ev padlink.ButtonEvent, _ session.Limits) (Mode, session.Session, []Effect) {
	if ev == padlink.RightReleased && s.NumWiresLeft == 0 {
		s.JobID = ""
		return Menu, s, []Effect{redraw}
	}
	return CuttingRun, s, nil
}

func settingsMenuTransition(s session.Session, ev padlink.ButtonEvent, lim session.Limits) (Mode, session.Session, []Effect) {
	switch ev {
	case padlink.OneReleased:
		s.WireLeft = lim.MaxSpoolFt
		return SettingsMenu, s, nil
	case padlink.TwoReleased:
		return SettingsFeed, s, []Effect{enableFeeder, redraw}
	case padlink.ThreeReleased:
		return SettingsCutter, s, []Effect{redraw}
	case padlink.FourReleased:
		return SettingsGuide, s, []Effect{redraw, refresh}
	case padlink.LeftReleased:
		return Menu, s, []Effect{redraw}
	}
	return SettingsMenu, s, nil
}

func settingsFeedTransition(s session.Session, ev padlink.ButtonEvent, _ session.Limits) (Mode, session.Session, []Effect) {
	switch ev {
	case padlink.UpPressed:
		return SettingsFeed, s, []Effect{jogFeeder(hw.Forward, padlink.UpReleased)}
	case padlink.DownPressed:
		return SettingsFeed, s, []Effect{jogFeeder(hw.Reverse, padlink.DownReleased)}
	case padlink.LeftReleased:
		return SettingsMenu, s, []Effect{disableFeeder, redraw}
	}
	return SettingsFeed, s, nil
}

func settingsCutterTransition(s session.Session, ev padlink.ButtonEvent, _ session.Limits) (Mode, session.Session, []Effect) {
	switch ev {
	case padlink.UpPressed:
		return SettingsCutter, s, []Effect{jogCutter(1, padlink.UpReleased)}
	case padlink.DownPressed:
		return SettingsCutter, s, []Effect{jogCutter(-1, padlink.DownReleased)}
	case padlink.LeftReleased:
		return SettingsMenu, s, []Effect{disableFeeder, redraw}
	}
	return SettingsCutter, s, nil
}

func settingsGuideTransition(s session.Session, ev padlink.ButtonEvent, lim session.Limits) (Mode, session.Session, []Effect) {
	switch ev {
	case padlink.UpReleased, padlink.DownReleased:
		if ev == padlink.UpReleased {
			s.GuideAngle++
		} else {
			s.GuideAngle--
		}
		s = session.Validate(s, lim)
		return SettingsGuide, s, []Effect{moveGuide(s.GuideAngle), refresh}
	case padlink.LeftReleased:
		return SettingsMenu, s, []Effect{redraw}
	}
	return SettingsGuide, s, nil
}
