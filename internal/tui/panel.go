// SPDX-License-Identifier: MIT
package tui

import (
	"blockhost/internal/layout"
	"blockhost/internal/module"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	barWidth     = 24
	coarseStep   = 0.05
	fineStep     = 0.005
	statsRefresh = 100 * time.Millisecond
)

type tickMsg time.Time

// PanelModel shows a running module: one knob per parameter, the panel
// layout and the live block statistics. Knobs are turned from the UI
// goroutine; the audio thread picks the values up at the next block.
type PanelModel struct {
	module     *module.Module
	engine     string
	sampleRate float64
	panel      layout.Panel
	selected   int
	stats      module.Stats

	// Status, when set, adds a line below the statistics.
	Status func() string
}

// NewPanelModel builds the panel for m running at sampleRate.
func NewPanelModel(m *module.Module, engine string, sampleRate float64) PanelModel {
	d := m.Descriptor()
	return PanelModel{
		module:     m,
		engine:     engine,
		sampleRate: sampleRate,
		panel:      layout.Plan(d.Inputs, d.Outputs, d.ParamLabels()),
		stats:      m.Stats(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(statsRefresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (p PanelModel) Init() tea.Cmd {
	return tick()
}

func (p PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		p.stats = p.module.Stats()
		return p, tick()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return p, tea.Quit
		}
		if p.module.NumParams() == 0 {
			return p, nil
		}
		param := p.module.Param(p.selected)

		switch {
		case key.Matches(msg, keys.Up):
			if p.selected > 0 {
				p.selected--
			}
		case key.Matches(msg, keys.Down):
			if p.selected < p.module.NumParams()-1 {
				p.selected++
			}
		case key.Matches(msg, keys.Left):
			param.Nudge(-coarseStep)
		case key.Matches(msg, keys.Right):
			param.Nudge(coarseStep)
		case key.Matches(msg, keys.FineLeft):
			param.Nudge(-fineStep)
		case key.Matches(msg, keys.FineRight):
			param.Nudge(fineStep)
		case key.Matches(msg, keys.Reset):
			param.Reset()
		}
	}
	return p, nil
}

// Selected returns the index of the highlighted parameter.
func (p PanelModel) Selected() int { return p.selected }

func (p PanelModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s · %dHP", p.engine, p.panel.WidthHP)))
	sb.WriteString("\n\n")
	sb.WriteString(p.renderPanel())
	sb.WriteString("\n\n")

	if p.module.NumParams() == 0 {
		sb.WriteString(dimStyle.Render("This engine has no parameters."))
		sb.WriteString("\n")
	}
	for i := range p.module.NumParams() {
		sb.WriteString(p.renderKnob(i))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(p.renderStats())
	if p.Status != nil {
		if status := p.Status(); status != "" {
			sb.WriteString("\n")
			sb.WriteString(infoStyle.Render(status))
		}
	}
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("↑/↓: Select • ←/→: Turn • Shift+←/→: Fine • r: Reset • q: Quit"))

	return sb.String()
}

// renderPanel draws the jack and knob columns the way the panel lays them
// out.
func (p PanelModel) renderPanel() string {
	columns := make(map[int][]string)
	last := -1
	add := func(col, row int, text string) {
		cells := columns[col]
		for len(cells) <= row {
			cells = append(cells, "")
		}
		cells[row] = text
		columns[col] = cells
		last = max(last, col)
	}

	for _, j := range p.panel.Inputs {
		add(j.Column, j.Row, "◎ "+j.Label)
	}
	for i, k := range p.panel.Params {
		text := "◉ " + k.Label
		if i == p.selected {
			text = highlightStyle.Render(text)
		}
		add(k.Column, k.Row, text)
	}
	for _, j := range p.panel.Outputs {
		add(j.Column, j.Row, "● "+j.Label)
	}

	blocks := make([]string, 0, last+1)
	for col := 0; col <= last; col++ {
		blocks = append(blocks, lipgloss.NewStyle().Width(layout.ColumnHP*5).Render(strings.Join(columns[col], "\n")))
	}
	return boxStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
}

func (p PanelModel) renderKnob(i int) string {
	param := p.module.Param(i)
	value := param.Value()

	fraction := 0.0
	if span := param.Max - param.Min; span != 0 {
		fraction = (value - param.Min) / span
	}
	filled := int(math.Round(fraction * barWidth))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	cv := "○"
	if p.module.CVInput(i).IsConnected() {
		cv = "●"
	}

	line := fmt.Sprintf("%s %s %s %8.3f %s", runewidth.FillRight(param.Label, module.DisplayWidth), bar, cv, value, param.Unit)
	if i == p.selected {
		return highlightStyle.Render("▶ " + line)
	}
	return "  " + line
}

func (p PanelModel) renderStats() string {
	s := p.stats
	latency := 0.0
	if p.sampleRate > 0 {
		latency = float64(s.BlockLength) / p.sampleRate * 1000
	}

	line := fmt.Sprintf("block %d (%.1f ms) · blocks %d · resizes %d · engine %s (max %s)",
		s.BlockLength, latency, s.Blocks, s.Resizes,
		s.LastBlockTime.Round(time.Microsecond), s.MaxBlockTime.Round(time.Microsecond))
	if s.Overruns > 0 {
		return infoStyle.Render(line) + " " + warnStyle.Render(fmt.Sprintf("overruns %d", s.Overruns))
	}
	return infoStyle.Render(line)
}

// RunPanel shows the panel until the user quits.
func RunPanel(model PanelModel) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
