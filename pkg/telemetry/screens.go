// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package telemetry

import (
	"fmt"

	"github.com/Thermoquad/wirefactory/pkg/display"
	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/machine"
	"github.com/Thermoquad/wirefactory/pkg/session"
)

const (
	footerBack     = "[L]Back"
	footerBackNext = "[L]Back    [R]Next"
	footerFinish   = "[R]Finish"
)

// BodyLines returns the full screen of a mode. Modes with no screen return
// nil.
func BodyLines(mode machine.Mode) []string {
	switch mode {
	case machine.Menu:
		return []string{
			"Select Option",
			"[1]New Operation",
			"[2]Settings",
			"[3]About",
		}
	case machine.CuttingParams:
		return []string{
			"L|==================|R",
			"  <- Length (in.) ->",
			"",
			footerBackNext,
		}
	case machine.CuttingRun:
		return []string{"Progress:"}
	case machine.SettingsMenu:
		return []string{
			"Select Setting",
			"[1]Reset Spool",
			"[2]Feed Wire",
			"[3]Move Cutter",
			"[4]Move GuideMotor",
			"",
			footerBack,
		}
	case machine.SettingsFeed:
		return []string{"[U]Feed FWD", "[D]Feed REV", "", footerBack}
	case machine.SettingsCutter:
		return []string{"[U]Cutter CW", "[D]Cutter CCW", "", footerBack}
	case machine.SettingsGuide:
		return []string{"[U]Inc. Angle", "[D]Dec. Angle", "", footerBack}
	default:
		return nil
	}
}

// ParamLines returns the editable values block of a mode, nil if it has
// none. The session is validated first, so clamped values are what the
// operator sees.
func ParamLines(mode machine.Mode, s session.Session, lim session.Limits) []string {
	s = session.Validate(s, lim)
	switch mode {
	case machine.CuttingParams:
		mark := func(f session.Field) string {
			if s.OptionSelected == f {
				return ">"
			}
			return " "
		}
		return []string{
			fmt.Sprintf("%s[1]Length:%4.1fin", mark(session.FieldWireLength), s.WireLength),
			fmt.Sprintf("%s[2]L_Cut: %4.1fin", mark(session.FieldLeftIncision), s.LeftIncisionDist),
			fmt.Sprintf("%s[3]R_Cut: %4.1fin", mark(session.FieldRightIncision), s.RightIncisionDist),
			fmt.Sprintf("%s[4]Num Wires: %3d", mark(session.FieldNumWires), s.NumWires),
		}
	case machine.SettingsGuide:
		return []string{fmt.Sprintf("Angle: %3d", s.GuideAngle)}
	default:
		return nil
	}
}

// ProgressFor returns the batch progress readout
func ProgressFor(s session.Session) display.Progress {
	return display.Progress{
		Made:     s.WiresMade(),
		Total:    s.NumWires,
		Percent:  s.BatchPercent(),
		Finished: s.NumWiresLeft == 0,
	}
}

// ProgressLines formats progress the way the cutting screen shows it
func ProgressLines(p display.Progress) []string {
	lines := []string{
		fmt.Sprintf("Wires Made:%3d/%d", p.Made, p.Total),
		fmt.Sprintf("%3d%%", p.Percent),
	}
	if p.Finished {
		lines = append(lines, footerFinish)
	}
	return lines
}

// GaugeFor returns the wire-remaining readout
func GaugeFor(s session.Session, lim session.Limits, spool hw.Switch) display.Gauge {
	percent := s.SpoolPercent(lim)
	return display.Gauge{
		Feet:         s.WireLeft,
		Percent:      percent,
		Level:        display.LevelFor(percent),
		SpoolPresent: spool == nil || spool.Asserted(),
	}
}

// GaugeLines formats the gauge readout
func GaugeLines(g display.Gauge) []string {
	if !g.SpoolPresent {
		return []string{"Wire Left:", "NO SPOOL"}
	}
	return []string{
		"Wire Left:",
		fmt.Sprintf("%3.1f ft", g.Feet),
		fmt.Sprintf("%3d%%", g.Percent),
	}
}
