package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carvekit/carve/pkg/extract"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// WarningListModel is the bubbletea model for browsing run warnings.
// The list shows one warning per line; the detail pane below expands the
// selected warning's path and message.
type WarningListModel struct {
	Warnings []extract.Warning
	Cursor   int
	Height   int
	Offset   int
}

// NewWarningListModel creates a new warning list model.
func NewWarningListModel(warnings []extract.Warning) WarningListModel {
	return WarningListModel{
		Warnings: warnings,
		Cursor:   0,
		Height:   15,
		Offset:   0,
	}
}

func (m WarningListModel) Init() tea.Cmd {
	return nil
}

func (m WarningListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Warnings)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m WarningListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Warnings"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Warnings) {
		end = len(m.Warnings)
	}

	for i := m.Offset; i < end; i++ {
		w := m.Warnings[i]
		line := fmt.Sprintf("[%s] %s", w.Kind, w.Path)
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("› " + line))
		} else {
			b.WriteString(listNormalStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}

	if len(m.Warnings) > 0 {
		w := m.Warnings[m.Cursor]
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(w.Detail))
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(fmt.Sprintf("%d/%d", m.Cursor+1, len(m.Warnings))))
	}

	return b.String()
}

// reviewWarnings opens the interactive warning browser.
func reviewWarnings(warnings []extract.Warning) error {
	p := tea.NewProgram(NewWarningListModel(warnings))
	_, err := p.Run()
	return err
}
