// SPDX-License-Identifier: MIT

// Package tui provides an interactive catalog for browsing the
// registered effects and their parameters.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"beatviz/internal/effect"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C6C6C")).
			Italic(true)
)

// ScreenType defines which screen is currently active.
type ScreenType int

const (
	ListScreen ScreenType = iota
	DetailScreen
)

// CatalogModel is the Bubble Tea model for the effect catalog.
type CatalogModel struct {
	entries       []effect.Entry
	selectedIndex int
	viewport      viewport.Model
	ready         bool
	activeScreen  ScreenType

	// The instantiated effect for the detail screen; its parameter
	// store carries the descriptor defaults.
	detail effect.Effect
}

func NewCatalogModel(registry *effect.Registry) CatalogModel {
	return CatalogModel{
		entries:      registry.List(),
		activeScreen: ListScreen,
	}
}

func (m CatalogModel) Init() tea.Cmd {
	return nil
}

func (m CatalogModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
			m.viewport.SetContent(m.renderList())
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}

	case tea.KeyMsg:
		if key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))) {
			return m, tea.Quit
		}

		if m.activeScreen == ListScreen {
			switch {
			case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
				if m.selectedIndex > 0 {
					m.selectedIndex--
					m.viewport.SetContent(m.renderList())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
				if m.selectedIndex < len(m.entries)-1 {
					m.selectedIndex++
					m.viewport.SetContent(m.renderList())
				}

			case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
				if len(m.entries) > 0 {
					m.activeScreen = DetailScreen
					m.detail = m.entries[m.selectedIndex].Factory()
					m.viewport.SetContent(m.renderDetail())
				}
			}
		} else if m.activeScreen == DetailScreen {
			if key.Matches(msg, key.NewBinding(key.WithKeys("esc"))) {
				m.activeScreen = ListScreen
				m.detail = nil
				m.viewport.SetContent(m.renderList())
			}
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m CatalogModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var title, help string
	if m.activeScreen == ListScreen {
		title = titleStyle.Render("Effect Catalog")
		help = infoStyle.Render("↑/↓: Navigate • Enter: Details • q: Quit")
	} else {
		title = titleStyle.Render("Effect Details")
		help = infoStyle.Render("Esc: Back • q: Quit")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m CatalogModel) renderList() string {
	if len(m.entries) == 0 {
		return "No effects registered."
	}

	var sb strings.Builder
	for i, e := range m.entries {
		info := fmt.Sprintf("%s\n", e.ID)
		info += fmt.Sprintf("    %s\n", e.Meta.Description)
		if len(e.Meta.Tags) > 0 {
			info += tagStyle.Render(fmt.Sprintf("    [%s]", strings.Join(e.Meta.Tags, ", "))) + "\n"
		}

		if i == m.selectedIndex {
			info = highlightStyle.Render(info)
		}
		sb.WriteString(info)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m CatalogModel) renderDetail() string {
	if m.detail == nil {
		return ""
	}
	entry := m.entries[m.selectedIndex]

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s)\n\n", m.detail.Name(), m.detail.ID()))
	sb.WriteString(entry.Meta.Description + "\n")
	if entry.Meta.Variant != "" {
		sb.WriteString("Variant: " + entry.Meta.Variant + "\n")
	}
	if len(entry.Meta.Tags) > 0 {
		sb.WriteString("Tags: " + strings.Join(entry.Meta.Tags, ", ") + "\n")
	}
	sb.WriteString("\nParameters:\n")
	sb.WriteString(renderParameters(m.detail.Parameters()))
	return sb.String()
}

// renderParameters lists every parameter with its kind, default and
// range so an operator can write a config file from the screen.
func renderParameters(values *effect.Values) string {
	params := values.Descriptors()
	if len(params) == 0 {
		return "  (none)\n"
	}

	var sb strings.Builder
	for _, p := range params {
		switch p.Kind {
		case effect.KindSlider:
			unit := p.Unit
			if unit != "" {
				unit = " " + unit
			}
			sb.WriteString(fmt.Sprintf("  %-14s %v%s  [%v..%v, step %v]\n",
				p.Key, p.Default, unit, p.Min, p.Max, p.Step))
		case effect.KindEnum:
			sb.WriteString(fmt.Sprintf("  %-14s %v  (%s)\n",
				p.Key, p.Default, strings.Join(p.Options, "|")))
		default:
			sb.WriteString(fmt.Sprintf("  %-14s %v\n", p.Key, p.Default))
		}
	}
	return sb.String()
}

// StartCatalogUI launches the effect catalog browser.
func StartCatalogUI(registry *effect.Registry) error {
	p := tea.NewProgram(
		NewCatalogModel(registry),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
