package ui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Base component interface
type Component interface {
	Init() tea.Cmd
	Update(tea.Msg) (Component, tea.Cmd)
	View() string
	SetSize(width, height int)
}

var (
	_ Component = (*ResultsPanel)(nil)
	_ Component = (*ConsolePanel)(nil)
	_ Component = (*TreePanel)(nil)
)

// Define common styles
var (
	borderStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			PaddingLeft(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	stubStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))
)

type ResultsPanel struct {
	style  lipgloss.Style
	title  string
	width  int
	height int
	table  *ResultsTable
}

func NewResultsPanel() *ResultsPanel {
	return &ResultsPanel{
		title: "Crawled Pages",
		style: borderStyle.BorderForeground(lipgloss.Color("35")),
		table: NewResultsTable(),
	}
}

func (r *ResultsPanel) Init() tea.Cmd {
	return nil
}

func (r *ResultsPanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	cmd := r.table.Update(msg)
	return r, cmd
}

func (r *ResultsPanel) View() string {
	return r.style.Width(r.width).Height(r.height).Render(
		titleStyle.Render(r.title) + "\n" + r.table.View(),
	)
}

func (r *ResultsPanel) SetSize(width, height int) {
	r.width = width
	r.height = height
	r.table.SetSize(width-4, height-4)
}

func (r *ResultsPanel) AddResult(result CrawlResult) {
	r.table.AddResult(result)
}

type ConsolePanel struct {
	style   lipgloss.Style
	width   int
	height  int
	console *ErrorConsole
}

func NewConsolePanel() *ConsolePanel {
	return &ConsolePanel{
		style:   borderStyle.BorderForeground(lipgloss.Color("196")),
		console: NewErrorConsole(),
	}
}

func (e *ConsolePanel) Init() tea.Cmd {
	return nil
}

func (e *ConsolePanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	cmd := e.console.Update(msg)
	return e, cmd
}

func (e *ConsolePanel) View() string {
	return e.style.Width(e.width).Height(e.height).Render(e.console.View())
}

func (e *ConsolePanel) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.console.SetSize(width-4, height-4)
}

// TreePanel shows the finished crawl tree
type TreePanel struct {
	viewport viewport.Model
	style    lipgloss.Style
	width    int
	height   int
}

func NewTreePanel() *TreePanel {
	return &TreePanel{
		viewport: viewport.New(0, 0),
		style:    borderStyle.BorderForeground(lipgloss.Color("99")),
	}
}

func (t *TreePanel) Init() tea.Cmd {
	return nil
}

func (t *TreePanel) Update(msg tea.Msg) (Component, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

func (t *TreePanel) View() string {
	return t.style.Width(t.width).Height(t.height).Render(t.viewport.View())
}

func (t *TreePanel) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = width - 4
	t.viewport.Height = height - 2
}

func (t *TreePanel) SetContent(s string) {
	t.viewport.SetContent(s)
	t.viewport.GotoTop()
}

// Layout manager
type Layout struct {
	results  *ResultsPanel
	console  *ConsolePanel
	stats    *StatsPanel
	tree     *TreePanel
	showTree bool
	width    int
	height   int
}

// NewLayout creates and initializes a new layout with all panels
func NewLayout() *Layout {
	return &Layout{
		results: NewResultsPanel(),
		console: NewConsolePanel(),
		stats:   NewStatsPanel(),
		tree:    NewTreePanel(),
	}
}

// SetSize adjusts the layout and all components to the given dimensions
func (l *Layout) SetSize(width, height int) {
	l.width = width
	l.height = height

	statsWidth := width / 3
	topHeight := height * 2 / 3

	l.results.SetSize(width-statsWidth, topHeight)
	l.tree.SetSize(width-statsWidth, topHeight)
	l.stats.SetSize(statsWidth, topHeight)
	l.console.SetSize(width, height-topHeight)
}

// Init initializes all panels
func (l *Layout) Init() tea.Cmd {
	return tea.Batch(
		l.results.Init(),
		l.console.Init(),
		l.tree.Init(),
	)
}

// Update processes messages and updates components
func (l *Layout) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		l.SetSize(msg.Width, msg.Height)
	}

	var cmd tea.Cmd
	if l.showTree {
		_, cmd = l.tree.Update(msg)
	} else {
		_, cmd = l.results.Update(msg)
	}
	cmds = append(cmds, cmd)

	_, cmd = l.console.Update(msg)
	cmds = append(cmds, cmd)

	return l, tea.Batch(cmds...)
}

// View renders the complete layout
func (l *Layout) View() string {
	body := l.results.View()
	if l.showTree {
		body = l.tree.View()
	}
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, body, l.stats.View())
	return lipgloss.JoinVertical(lipgloss.Left, topRow, l.console.View())
}

// AddResult adds a crawl result to the results panel
func (l *Layout) AddResult(result CrawlResult) {
	l.results.AddResult(result)
	if !result.Stub {
		l.stats.AddVisitedURL(result.URL)
	}
}

// ShowTree replaces the results table with a rendered tree
func (l *Layout) ShowTree(rendered string) {
	l.tree.SetContent(rendered)
	l.showTree = true
}

// ToggleTree switches between the table and the tree once a tree is set
func (l *Layout) ToggleTree() {
	if l.tree.viewport.TotalLineCount() > 0 {
		l.showTree = !l.showTree
	}
}

// AddError adds an error message to the console
func (l *Layout) AddError(msg string) {
	l.console.console.AddEntry(LevelError, msg)
}

// AddInfo adds an info message to the console
func (l *Layout) AddInfo(msg string) {
	l.console.console.AddEntry(LevelInfo, msg)
}

// Log adds a message with the specified level to the console
func (l *Layout) Log(msg string, level LogLevel) {
	l.console.console.AddEntry(level, msg)
}

func (l *Layout) UpdateStats(stats CrawlStats) {
	l.stats.UpdateStats(stats)
}
