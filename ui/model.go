package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type statsTickMsg struct{}

func tickStats() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return statsTickMsg{} })
}

// Model is the live crawl view. It only reacts to messages; the crawl itself runs
// elsewhere and reports through ProgramObserver and CrawlDoneMsg.
type Model struct {
	layout *Layout
	stats  CrawlStats
	ready  bool
	done   bool
	result CrawlDoneMsg
}

// NewModel creates the view for a crawl of target
func NewModel(target string, maxDepth int) Model {
	return Model{
		layout: NewLayout(),
		stats: CrawlStats{
			Target:    target,
			MaxDepth:  maxDepth,
			StartTime: time.Now(),
		},
	}
}

// Init is the first function called. It returns an optional initial command.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.layout.Init(), tickStats())
}

// Update handles all the updates and state transitions
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "t":
			m.layout.ToggleTree()
		}

	case statsTickMsg:
		if !m.done {
			cmds = append(cmds, tickStats())
		}

	case PageVisitedMsg:
		m.stats.Visited++
		m.stats.DeepestSeen = max(m.stats.DeepestSeen, msg.Result.Depth)
		m.layout.AddResult(msg.Result)

	case StubEmittedMsg:
		m.stats.Stubs++
		m.layout.AddResult(msg.Result)

	case LinkDroppedMsg:
		m.stats.Dropped++

	case LogLineMsg:
		m.layout.Log(msg.Text, msg.Level)

	case CrawlDoneMsg:
		m.done = true
		m.result = msg
		m.stats.Finished = time.Now()
		if msg.Err != nil {
			m.layout.AddError(fmt.Sprintf("Crawl failed: %v", msg.Err))
		} else {
			m.layout.AddInfo(fmt.Sprintf("Crawl finished with %d nodes. t: toggle tree, q: quit", msg.Root.Count()))
			m.layout.ShowTree(RenderTree(msg.Root))
		}
	}

	m.layout.UpdateStats(m.stats)

	_, cmd := m.layout.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View returns a string representation of the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing...\n"
	}
	return m.layout.View()
}

// Done reports whether the crawl has finished
func (m Model) Done() bool { return m.done }

// Result returns the finished crawl, valid once Done is true
func (m Model) Result() CrawlDoneMsg { return m.result }
