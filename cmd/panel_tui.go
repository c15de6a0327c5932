// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Thermoquad/wirefactory/pkg/display"
	"github.com/Thermoquad/wirefactory/pkg/padlink"
)

// Messages
type textMsg struct {
	region display.Region
	lines  []string
}
type gaugeMsg display.Gauge
type progressMsg struct {
	p *display.Progress
}
type heartbeatMsg bool
type releaseMsg padlink.Button
type linkTickMsg time.Time

// panelModel renders the machine screen in the terminal and turns key
// presses into pad events
type panelModel struct {
	linkInfo string
	mailbox  *padlink.Mailbox
	stats    *padlink.Statistics

	body      []string
	params    []string
	gauge     *display.Gauge
	batch     *display.Progress
	heartbeat bool
	link      padlink.StatisticsSnapshot
	lastKey   string

	spoolBar progress.Model
	batchBar progress.Model
	width    int
	quitting bool
}

func newPanelModel(linkInfo string, mb *padlink.Mailbox, stats *padlink.Statistics) panelModel {
	return panelModel{
		linkInfo: linkInfo,
		mailbox:  mb,
		stats:    stats,
		spoolBar: progress.New(progress.WithGradient("#FF5F5F", "#5FFF87"), progress.WithWidth(30)),
		batchBar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		width:    80,
	}
}

func linkTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return linkTickMsg(t)
	})
}

func (m panelModel) Init() tea.Cmd {
	return tea.Batch(linkTickCmd(), tea.EnterAltScreen)
}

func (m panelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		b, ok := buttonForKey(key)
		if !ok {
			return m, nil
		}
		m.lastKey = key
		m.mailbox.Post(padlink.NewEvent(b, true))
		return m, tea.Tick(keyRelease, func(time.Time) tea.Msg { return releaseMsg(b) })

	case releaseMsg:
		m.mailbox.Post(padlink.NewEvent(padlink.Button(msg), false))

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case textMsg:
		switch msg.region {
		case display.RegionBody:
			m.body = msg.lines
		case display.RegionParams:
			m.params = msg.lines
		}

	case gaugeMsg:
		g := display.Gauge(msg)
		m.gauge = &g

	case progressMsg:
		m.batch = msg.p

	case heartbeatMsg:
		m.heartbeat = bool(msg)

	case linkTickMsg:
		if m.stats != nil {
			m.link = m.stats.Snapshot()
		}
		return m, linkTickCmd()
	}
	return m, nil
}

func (m panelModel) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Background(lipgloss.Color("235")).
		Padding(0, 1)

	headerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("10"))

	warningStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("11"))

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")).
		Bold(true)

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Width(28)

	var s strings.Builder

	beat := " "
	if m.heartbeat {
		beat = "●"
	}
	s.WriteString(titleStyle.Render("WIREFACTORY") + " " + valueStyle.Render(beat))
	s.WriteString("\n")
	s.WriteString(headerStyle.Render(fmt.Sprintf("Link: %s", m.linkInfo)))
	s.WriteString("\n\n")

	screen := lipgloss.JoinHorizontal(lipgloss.Top,
		boxStyle.Render(strings.Join(m.body, "\n")),
		boxStyle.Render(strings.Join(m.params, "\n")),
	)
	s.WriteString(screen)
	s.WriteString("\n\n")

	if m.gauge != nil {
		s.WriteString(labelStyle.Render("Spool:  "))
		if !m.gauge.SpoolPresent {
			s.WriteString(errorStyle.Render("NO SPOOL"))
		} else {
			s.WriteString(m.spoolBar.ViewAs(float64(m.gauge.Percent) / 100))
			levelStyle := valueStyle
			switch m.gauge.Level {
			case display.LevelLow:
				levelStyle = warningStyle
			case display.LevelCritical:
				levelStyle = errorStyle
			}
			s.WriteString(" " + levelStyle.Render(fmt.Sprintf("%.1f ft", m.gauge.Feet)))
		}
		s.WriteString("\n")
	}

	if m.batch != nil {
		s.WriteString(labelStyle.Render("Batch:  "))
		s.WriteString(m.batchBar.ViewAs(float64(m.batch.Percent) / 100))
		s.WriteString(" " + valueStyle.Render(fmt.Sprintf("%d/%d", m.batch.Made, m.batch.Total)))
		if m.batch.Finished {
			s.WriteString(" " + warningStyle.Render("press [R] to finish"))
		}
		s.WriteString("\n")
	}

	if m.stats != nil {
		s.WriteString("\n")
		s.WriteString(headerStyle.Render(fmt.Sprintf("Frames: %d valid, %d checksum, %d framing | %.1f frames/s",
			m.link.ValidFrames, m.link.ChecksumErrors, m.link.FramingErrors, m.link.FrameRate)))
	}

	s.WriteString("\n")
	help := keyHelp
	if m.lastKey != "" {
		help += fmt.Sprintf("  (last: %s)", m.lastKey)
	}
	s.WriteString(headerStyle.Render(help))
	s.WriteString("\n")
	return s.String()
}

// panelSurface forwards screen updates to the running program
type panelSurface struct {
	program *tea.Program
}

func (p *panelSurface) Text(r display.Region, lines []string) {
	p.program.Send(textMsg{region: r, lines: append([]string(nil), lines...)})
}

func (p *panelSurface) Gauge(g display.Gauge) {
	p.program.Send(gaugeMsg(g))
}

func (p *panelSurface) Progress(pr *display.Progress) {
	if pr != nil {
		c := *pr
		pr = &c
	}
	p.program.Send(progressMsg{p: pr})
}

func (p *panelSurface) Heartbeat(on bool) {
	p.program.Send(heartbeatMsg(on))
}
