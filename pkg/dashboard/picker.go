package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Interactive dashboard picker, shown when several dashboards are configured
// and none was named on the command line.

// ErrPickerCancelled is returned when the user quits the picker without
// choosing a dashboard.
var ErrPickerCancelled = errors.New("no dashboard selected")

var (
	pickerTitleStyle    = lipgloss.NewStyle().Bold(true)
	pickerSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	pickerDimStyle      = lipgloss.NewStyle().Faint(true)
	pickerHelpStyle     = lipgloss.NewStyle().Faint(true).MarginTop(1)
)

type pickerModel struct {
	dashboards []Dashboard
	input      textinput.Model
	filtered   []int // indexes into dashboards
	selected   int

	choice *Dashboard
	done   bool
}

func newPickerModel(dashboards []Dashboard) pickerModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter..."
	ti.CharLimit = 128
	ti.PromptStyle = ti.PromptStyle.Bold(true)
	ti.Focus()

	m := pickerModel{
		dashboards: dashboards,
		input:      ti,
	}
	m.recomputeFilter()
	return m
}

func (m *pickerModel) recomputeFilter() {
	q := strings.ToLower(strings.TrimSpace(m.input.Value()))
	m.filtered = make([]int, 0, len(m.dashboards))
	for i, d := range m.dashboards {
		if q == "" ||
			strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Description), q) {
			m.filtered = append(m.filtered, i)
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = len(m.filtered) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

// current returns the highlighted dashboard, or nil when the filter matches
// nothing.
func (m *pickerModel) current() *Dashboard {
	if len(m.filtered) == 0 || m.selected < 0 || m.selected >= len(m.filtered) {
		return nil
	}
	return &m.dashboards[m.filtered[m.selected]]
}

func (m pickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			if cur := m.current(); cur != nil {
				m.choice = cur
				m.done = true
				return m, tea.Quit
			}
			return m, nil
		case tea.KeyUp, tea.KeyCtrlP:
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case tea.KeyDown, tea.KeyCtrlN:
			if m.selected < len(m.filtered)-1 {
				m.selected++
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.recomputeFilter()
	return m, cmd
}

func (m pickerModel) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("task-dashboard"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(pickerDimStyle.Render("  no dashboards match"))
		b.WriteString("\n")
	}
	for pos, di := range m.filtered {
		d := m.dashboards[di]
		line := d.Name
		if desc := strings.TrimSpace(d.Description); desc != "" {
			line += "  " + pickerDimStyle.Render(desc)
		}
		line += pickerDimStyle.Render(fmt.Sprintf("  (%d panes)", d.Layout.CountLeaves()))
		if pos == m.selected {
			b.WriteString(pickerSelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString(pickerHelpStyle.Render("enter: start  ↑/↓: move  esc: cancel"))
	b.WriteString("\n")
	return b.String()
}

// PickDashboard runs the interactive picker and returns the chosen
// dashboard. Returns ErrPickerCancelled if the user backs out.
func PickDashboard(cfg *Config) (*Dashboard, error) {
	if cfg == nil || len(cfg.Dashboards) == 0 {
		return nil, errors.New("no dashboards configured")
	}

	m := newPickerModel(cfg.Dashboards)
	p := tea.NewProgram(m, tea.WithAltScreen())
	out, err := p.Run()
	if err != nil {
		return nil, err
	}
	final, ok := out.(pickerModel)
	if !ok || final.choice == nil {
		return nil, ErrPickerCancelled
	}
	return final.choice, nil
}
