package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

// CrawlResult is one row of the results table: a visited page or a stub
type CrawlResult struct {
	URL      string
	Title    string
	Category common.Category
	Depth    int
	Links    int
	Stub     bool
}

// ResultFromNode builds a row from a crawl node
func ResultFromNode(n *common.CrawlNode, depth int) CrawlResult {
	r := CrawlResult{
		URL:      n.URL,
		Category: n.Category,
		Depth:    depth,
		Links:    len(n.MainMenuLinks) + len(n.MainLinks) + len(n.HeaderLinks) + len(n.FooterLinks) + len(n.OtherContentLinks),
		Stub:     n.IsStub(),
	}
	if n.Title != nil {
		r.Title = *n.Title
	}
	return r
}

// ResultsTable manages the crawl results display
type ResultsTable struct {
	viewport    viewport.Model
	results     []CrawlResult
	width       int
	height      int
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
}

// NewResultsTable creates a new results table
func NewResultsTable() *ResultsTable {
	t := &ResultsTable{
		results: make([]CrawlResult, 0),
		headerStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")),
		cellStyle: lipgloss.NewStyle().
			PaddingLeft(1).
			PaddingRight(1),
	}
	t.viewport = viewport.New(0, 0)
	return t
}

// SetSize updates the table dimensions
func (t *ResultsTable) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.Width = width
	t.viewport.Height = max(height-2, 1)
	t.refresh()
}

// Update handles UI updates
func (t *ResultsTable) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			t.viewport.LineUp(1)
		case "down", "j":
			t.viewport.LineDown(1)
		case "pgup":
			t.viewport.HalfViewUp()
		case "pgdown":
			t.viewport.HalfViewDown()
		}
	}

	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

// View renders the table
func (t *ResultsTable) View() string {
	if len(t.results) == 0 {
		return infoStyle.Render("No pages yet")
	}

	summary := fmt.Sprintf("Pages: %d | Stubs: %d", t.pageCount(), len(t.results)-t.pageCount())
	return t.viewport.View() + "\n" + infoStyle.Render(summary)
}

// AddResult adds a new crawl result
func (t *ResultsTable) AddResult(result CrawlResult) {
	atBottom := t.viewport.AtBottom()
	t.results = append(t.results, result)
	t.refresh()
	if atBottom {
		t.viewport.GotoBottom()
	}
}

func (t *ResultsTable) refresh() {
	urlWidth := max(min(50, t.width/2), 10)
	titleWidth := max(min(30, t.width/4), 8)

	header := t.headerStyle.Render(fmt.Sprintf(
		"%-*s %-*s %5s %5s %-18s",
		urlWidth, "URL",
		titleWidth, "Title",
		"Depth",
		"Links",
		"Category",
	))

	rows := make([]string, 0, len(t.results)+1)
	rows = append(rows, header)
	for _, result := range t.results {
		title := result.Title
		depth := fmt.Sprintf("%d", result.Depth)
		if result.Stub {
			title = "-"
			depth = "-"
		}
		row := t.cellStyle.Render(fmt.Sprintf(
			"%-*s %-*s %5s %5d %-18s",
			urlWidth, truncate(result.URL, urlWidth),
			titleWidth, truncate(title, titleWidth),
			depth,
			result.Links,
			result.Category,
		))
		if result.Stub {
			row = stubStyle.Render(row)
		}
		rows = append(rows, row)
	}
	t.viewport.SetContent(strings.Join(rows, "\n"))
}

func (t *ResultsTable) pageCount() int {
	count := 0
	for _, r := range t.results {
		if !r.Stub {
			count++
		}
	}
	return count
}

func truncate(s string, w int) string {
	if len(s) <= w {
		return s
	}
	if w <= 3 {
		return s[:w]
	}
	return s[:w-3] + "..."
}
