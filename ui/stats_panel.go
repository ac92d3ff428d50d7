package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const recentURLs = 5

// CrawlStats holds crawling statistics
type CrawlStats struct {
	Target      string
	MaxDepth    int
	Visited     int
	Stubs       int
	Dropped     int
	DeepestSeen int
	StartTime   time.Time
	Finished    time.Time
}

// StatsPanel displays crawling statistics
type StatsPanel struct {
	stats      CrawlStats
	recent     []string
	width      int
	height     int
	style      lipgloss.Style
	labelStyle lipgloss.Style
	valueStyle lipgloss.Style
}

func NewStatsPanel() *StatsPanel {
	return &StatsPanel{
		recent: make([]string, 0, recentURLs),
		style:  borderStyle.BorderForeground(lipgloss.Color("99")),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Bold(true),
		valueStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
	}
}

func (s *StatsPanel) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func (s *StatsPanel) View() string {
	elapsed := s.elapsed()

	pagesPerMinute := 0.0
	if elapsed > 0 {
		pagesPerMinute = float64(s.stats.Visited) / elapsed.Minutes()
	}

	stats := []struct {
		label string
		value string
	}{
		{"Target", s.stats.Target},
		{"Max Depth", fmt.Sprintf("%d", s.stats.MaxDepth)},
		{"Pages", fmt.Sprintf("%d", s.stats.Visited)},
		{"Stubs", fmt.Sprintf("%d", s.stats.Stubs)},
		{"Beyond Depth", fmt.Sprintf("%d", s.stats.Dropped)},
		{"Deepest", fmt.Sprintf("%d", s.stats.DeepestSeen)},
		{"Pages/Minute", fmt.Sprintf("%.1f", pagesPerMinute)},
		{"Elapsed Time", formatElapsed(elapsed)},
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("Crawl Statistics") + "\n\n")

	columnWidth := max((s.width-8)/2, 12)
	for _, stat := range stats {
		content.WriteString(fmt.Sprintf("%-*s %s\n",
			columnWidth,
			s.labelStyle.Render(stat.label+":"),
			s.valueStyle.Render(stat.value),
		))
	}

	if len(s.recent) > 0 {
		content.WriteString("\nRecent Pages:\n")
		for _, url := range s.recent {
			content.WriteString(infoStyle.Render("• "+truncate(url, max(s.width-8, 10))) + "\n")
		}
	}

	return s.style.Width(s.width).Height(s.height).Render(content.String())
}

// UpdateStats replaces the counters
func (s *StatsPanel) UpdateStats(stats CrawlStats) {
	s.stats = stats
}

// AddVisitedURL keeps the last few visited pages
func (s *StatsPanel) AddVisitedURL(url string) {
	s.recent = append(s.recent, url)
	if len(s.recent) > recentURLs {
		s.recent = s.recent[1:]
	}
}

func (s *StatsPanel) elapsed() time.Duration {
	if s.stats.StartTime.IsZero() {
		return 0
	}
	end := s.stats.Finished
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.stats.StartTime)
}

func formatElapsed(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d",
		int(d.Hours()),
		int(d.Minutes())%60,
		int(d.Seconds())%60,
	)
}
