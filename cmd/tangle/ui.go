// # cmd/tangle/ui.go
package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tangle/internal/graph"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	cycleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)
)

type item struct {
	title, desc string
	isCycle     bool
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title + i.desc }

type model struct {
	list       list.Model
	nodeCount  int
	edgeCount  int
	circular   []graph.Edge
	lastUpdate time.Time
}

type graphMsg struct {
	graph *graph.Graph
}

func newModel() model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "tangle"
	l.SetShowStatusBar(false)
	return model{list: l}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)
	case graphMsg:
		m.nodeCount = msg.graph.NodeCount()
		m.edgeCount = msg.graph.EdgeCount()
		m.circular = msg.graph.CircularEdges()
		m.lastUpdate = time.Now()

		items := []list.Item{}
		for _, e := range m.circular {
			items = append(items, item{
				title:   "Circular Import",
				desc:    fmt.Sprintf("%s -> %s", e.Source, e.Target),
				isCycle: true,
			})
		}
		for _, n := range msg.graph.Nodes() {
			if len(n.Unresolved) > 0 {
				items = append(items, item{
					title: "Unresolved Imports",
					desc:  fmt.Sprintf("%s: %v", n.ID, n.Unresolved),
				})
			}
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	header := titleStyle("tangle — dependency graph")

	var status string
	if len(m.circular) > 0 {
		status = cycleStyle.Render(fmt.Sprintf("%d circular edges", len(m.circular)))
	} else {
		status = successStyle.Render("no cycles")
	}

	meta := statusStyle.Render(fmt.Sprintf(
		"%d files · %d imports · updated %s",
		m.nodeCount, m.edgeCount, m.lastUpdate.Format("15:04:05"),
	))

	return header + "\n" + docStyle.Render(m.list.View()) + "\n " + status + "  " + meta + "\n"
}
