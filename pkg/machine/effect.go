// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package machine

import (
	"fmt"

	"github.com/Thermoquad/wirefactory/pkg/hw"
	"github.com/Thermoquad/wirefactory/pkg/padlink"
)

// EffectKind identifies a side effect requested by a transition
type EffectKind int

// Effect kinds
const (
	// EffectRedraw repaints the whole mode screen
	EffectRedraw EffectKind = iota
	// EffectRefresh repaints the parameter region of the current screen
	EffectRefresh
	EffectEnableFeeder
	EffectDisableFeeder
	// EffectJogFeeder steps the feeder until the Until event arrives
	EffectJogFeeder
	// EffectJogCutter runs the blade motor until the Until event arrives
	EffectJogCutter
	EffectMoveGuide
	// EffectStartBatch tags a new batch before CuttingRun makes it
	EffectStartBatch
)

var effectNames = map[EffectKind]string{
	EffectRedraw:        "REDRAW",
	EffectRefresh:       "REFRESH",
	EffectEnableFeeder:  "ENABLE_FEEDER",
	EffectDisableFeeder: "DISABLE_FEEDER",
	EffectJogFeeder:     "JOG_FEEDER",
	EffectJogCutter:     "JOG_CUTTER",
	EffectMoveGuide:     "MOVE_GUIDE",
	EffectStartBatch:    "START_BATCH",
}

// String returns the effect kind name
func (k EffectKind) String() string {
	if name, ok := effectNames[k]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(k))
}

// Effect is a side effect returned by a transition function. Only the fields
// relevant to Kind are set.
type Effect struct {
	Kind EffectKind

	Direction hw.Direction        // feeder jog
	Speed     float64             // cutter jog direction, scaled by the configured speed
	Until     padlink.ButtonEvent // jogs stop when this event is taken
	Angle     int                 // guide move
}

// String returns a compact description for logs
func (e Effect) String() string {
	switch e.Kind {
	case EffectJogFeeder:
		return fmt.Sprintf("%s(%s until %s)", e.Kind, e.Direction, e.Until)
	case EffectJogCutter:
		return fmt.Sprintf("%s(%+.1f until %s)", e.Kind, e.Speed, e.Until)
	case EffectMoveGuide:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Angle)
	default:
		return e.Kind.String()
	}
}

var (
	redraw        = Effect{Kind: EffectRedraw}
	refresh       = Effect{Kind: EffectRefresh}
	enableFeeder  = Effect{Kind: EffectEnableFeeder}
	disableFeeder = Effect{Kind: EffectDisableFeeder}
	startBatch    = Effect{Kind: EffectStartBatch}
)

func jogFeeder(dir hw.Direction, until padlink.ButtonEvent) Effect {
	return Effect{Kind: EffectJogFeeder, Direction: dir, Until: until}
}

func jogCutter(speed float64, until padlink.ButtonEvent) Effect {
	return Effect{Kind: EffectJogCutter, Speed: speed, Until: until}
}

func moveGuide(angle int) Effect {
	return Effect{Kind: EffectMoveGuide, Angle: angle}
}
