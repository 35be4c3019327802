// Package picker provides the interactive search-match selector shown
// when a query resolves to multiple candidate tracks.
package picker

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/songreel/songreel/internal/preview"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0B0B0B")).
				Background(lipgloss.Color("#7FDBFF")).
				Bold(true).
				Padding(0, 1)

	pickerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6ADC8")).
			Faint(true)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#0B0B0B")).
				Background(lipgloss.Color("#00F5D4")).
				Bold(true)

	pickerItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EAEAEA"))
)

type quitMsg struct{}

type pickerModel struct {
	viewport viewport.Model
	query    string
	matches  []preview.Preview
	selected int
	ready    bool
	width    int
	height   int
	quitting bool
}

func newPickerModel(query string, matches []preview.Preview) *pickerModel {
	vp := viewport.New(80, 12)
	vp.MouseWheelEnabled = true
	vp.Style = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#7FDBFF"))

	m := &pickerModel{
		viewport: vp,
		query:    query,
		matches:  matches,
		selected: 0,
		width:    80,
		height:   16,
	}
	vp.SetContent(buildMatchContent(matches, 0))
	m.viewport = vp
	return m
}

func buildMatchContent(matches []preview.Preview, selected int) string {
	var b strings.Builder
	for i, match := range matches {
		line := fmt.Sprintf("%d. %-45s %s", i+1, truncate(match.Title, 45), match.Author)
		if i == selected {
			line = pickerSelectedStyle.Render(line)
		} else {
			line = pickerItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func quitAfterDelay() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(time.Time) tea.Msg {
		return quitMsg{}
	})
}

func (m *pickerModel) Init() tea.Cmd {
	return nil
}

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.quitting {
		switch msg.(type) {
		case quitMsg:
			return m, tea.Quit
		default:
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = min(len(m.matches)+2, msg.Height-4)
		m.viewport, cmd = m.viewport.Update(msg)
		m.ready = true
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			m.selected = -1
			return m, quitAfterDelay()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			} else {
				m.selected = len(m.matches) - 1
			}
			m.viewport.SetContent(buildMatchContent(m.matches, m.selected))
		case "down", "j":
			if m.selected < len(m.matches)-1 {
				m.selected++
			} else {
				m.selected = 0
			}
			m.viewport.SetContent(buildMatchContent(m.matches, m.selected))
		case "enter":
			if m.selected >= 0 {
				m.quitting = true
				return m, quitAfterDelay()
			}
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			n, _ := strconv.Atoi(msg.String())
			if n >= 1 && n <= len(m.matches) {
				m.selected = n - 1
				m.quitting = true
				m.viewport.SetContent(buildMatchContent(m.matches, m.selected))
				return m, quitAfterDelay()
			}
		}
		return m, nil
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case quitMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m *pickerModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Matches for: " + m.query))
	b.WriteString(" ")

	if m.quitting {
		if m.selected >= 0 {
			b.WriteString(pickerHelpStyle.Render(fmt.Sprintf("Selected: %s ✓", m.matches[m.selected].Title)))
		} else {
			b.WriteString(pickerHelpStyle.Render("Cancelled"))
		}
	} else {
		b.WriteString(pickerHelpStyle.Render("↑/↓ select · Enter download · q quit"))
	}
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if !m.quitting {
		b.WriteString(pickerHelpStyle.Render("Press a number to pick a match directly"))
	}
	return b.String()
}

// Pick displays the candidate matches in an interactive selector and
// returns the index of the chosen one. It returns -1 when the user
// cancels without choosing.
func Pick(query string, matches []preview.Preview) (int, error) {
	if len(matches) == 0 {
		return -1, nil
	}
	if len(matches) == 1 {
		return 0, nil
	}

	model := newPickerModel(query, matches)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithOutput(os.Stderr))
	result, err := p.Run()
	if err != nil {
		return -1, err
	}
	if m, ok := result.(*pickerModel); ok {
		return m.selected, nil
	}
	return -1, nil
}
