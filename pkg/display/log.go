// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package display

import (
	"strings"

	"github.com/golang/glog"
)

// Log is a headless Surface that writes screen changes to glog. Repeated
// identical contents are not logged again.
type Log struct {
	last     map[Region]string
	gauge    Gauge
	progress Progress
}

// NewLog creates a log surface
func NewLog() *Log {
	return &Log{last: make(map[Region]string)}
}

// Text implements Surface
func (l *Log) Text(r Region, lines []string) {
	text := strings.Join(lines, " | ")
	if l.last[r] == text {
		return
	}
	l.last[r] = text
	if text == "" {
		return
	}
	glog.Infof("[%s] %s", r, text)
}

// Gauge implements Surface
func (l *Log) Gauge(g Gauge) {
	if g == l.gauge {
		return
	}
	l.gauge = g
	if !g.SpoolPresent {
		glog.Warning("[GAUGE] NO SPOOL")
		return
	}
	glog.V(1).Infof("[GAUGE] wire left %.1f ft (%d%%, %s)", g.Feet, g.Percent, g.Level)
}

// Progress implements Surface
func (l *Log) Progress(p *Progress) {
	if p == nil || *p == l.progress {
		return
	}
	l.progress = *p
	if p.Finished {
		glog.Infof("[PROGRESS] wires made %d/%d, [R]Finish", p.Made, p.Total)
		return
	}
	glog.Infof("[PROGRESS] wires made %d/%d (%d%%)", p.Made, p.Total, p.Percent)
}

// Heartbeat implements Surface
func (l *Log) Heartbeat(on bool) {
	glog.V(3).Infof("[HEARTBEAT] %v", on)
}
