package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

type modelState int

const (
	stateSelectExport modelState = iota
	stateShowResult
	stateSetTimescale
)

type interactiveModel struct {
	err       error
	session   *session
	filename  string
	memPages  uint32
	exports   []string
	selected  int
	result    string
	timescale textinput.Model
	state     modelState
}

func newInteractiveModel(filename string, memPages uint32) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "game hours per real hour"
	ti.Prompt = "timescale: "
	ti.Width = 24

	return &interactiveModel{
		filename:  filename,
		memPages:  memPages,
		timescale: ti,
		state:     stateSelectExport,
	}
}

type loadedMsg struct {
	err     error
	session *session
	exports []string
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadGuest
}

func (m *interactiveModel) loadGuest() tea.Msg {
	s, err := newSession(context.Background(), m.filename, m.memPages)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{session: s, exports: s.exports()}
}

func (m *interactiveModel) callExport() tea.Msg {
	name := m.exports[m.selected]
	results, err := m.session.inst.Call(context.Background(), name)
	if err != nil {
		return callResultMsg{err: err}
	}
	return callResultMsg{result: fmt.Sprintf("%v", results)}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.state == stateSetTimescale && msg.String() == "q" {
				break
			}
			if m.session != nil {
				m.session.close(context.Background())
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectExport && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectExport && m.selected < len(m.exports)-1 {
				m.selected++
			}

		case "a":
			// advance one game hour, whatever the timescale
			if m.state == stateSelectExport && m.session != nil {
				ts := float64(m.session.cal.Timescale())
				m.session.cal.Advance(3600 / ts)
			}

		case "t":
			if m.state == stateSelectExport {
				m.state = stateSetTimescale
				m.timescale.SetValue("")
				m.timescale.Focus()
				return m, textinput.Blink
			}

		case "enter":
			switch m.state {
			case stateSelectExport:
				if m.session != nil && len(m.exports) > 0 {
					return m, m.callExport
				}
			case stateShowResult:
				m.state = stateSelectExport
				m.result = ""
				m.err = nil
			case stateSetTimescale:
				if v, err := strconv.ParseFloat(m.timescale.Value(), 32); err == nil && v > 0 {
					m.session.cal.SetTimescale(float32(v))
				}
				m.timescale.Blur()
				m.state = stateSelectExport
			}

		case "esc":
			switch m.state {
			case stateShowResult:
				m.state = stateSelectExport
				m.result = ""
				m.err = nil
			case stateSetTimescale:
				m.timescale.Blur()
				m.state = stateSelectExport
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.session = msg.session
		m.exports = msg.exports

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateSetTimescale {
		var cmd tea.Cmd
		m.timescale, cmd = m.timescale.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.session == nil {
		return "Loading script mod..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("modhost"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")
	b.WriteString(m.statePanel())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectExport, stateSetTimescale:
		b.WriteString("Guest exports:\n\n")
		for i, name := range m.exports {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + name))
			} else {
				b.WriteString("  " + funcStyle.Render(name))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if m.state == stateSetTimescale {
			b.WriteString(m.timescale.View())
			b.WriteString("\n\n")
			b.WriteString(helpStyle.Render("enter apply • esc cancel"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • enter call • a advance hour • t timescale • q quit"))
		}

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(m.exports[m.selected])))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) statePanel() string {
	cal := m.session.cal
	unique, shared, weak := m.session.gtHost.Tables()

	var b strings.Builder
	b.WriteString(labelStyle.Render("game time  "))
	b.WriteString(cal.TimeDateString(true, 64))
	b.WriteString(fmt.Sprintf("  (%s)", cal.DayName()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("timescale  "))
	b.WriteString(fmt.Sprintf("%.1f", cal.Timescale()))
	b.WriteString("   ")
	b.WriteString(labelStyle.Render("days passed  "))
	b.WriteString(fmt.Sprintf("%.2f", cal.DaysPassed()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("handles    "))
	b.WriteString(fmt.Sprintf("unique %d • shared %d • weak %d • vectors %d",
		unique, shared, weak, m.session.vecHost.Len()))

	return panelStyle.Render(b.String())
}

func runInteractive(filename string, memPages uint32) error {
	p := tea.NewProgram(newInteractiveModel(filename, memPages), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
