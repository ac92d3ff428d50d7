package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// LogLevel represents the severity of a console entry
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
)

// LevelFromLog maps a logger level onto a console level
func LevelFromLog(l log.Level) LogLevel {
	switch {
	case l >= log.ErrorLevel:
		return LevelError
	case l >= log.WarnLevel:
		return LevelWarning
	case l >= log.InfoLevel:
		return LevelInfo
	default:
		return LevelDebug
	}
}

// LogEntry represents a single console line
type LogEntry struct {
	timestamp time.Time
	level     LogLevel
	message   string
}

// ErrorConsole collects log lines and crawl errors
type ErrorConsole struct {
	viewport  viewport.Model
	entries   []LogEntry
	width     int
	height    int
	showLevel LogLevel // only entries at or above this level are shown
}

var (
	errorLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	infoLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("110"))

	debugLogStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242")).
			Italic(true)
)

// NewErrorConsole creates a new console
func NewErrorConsole() *ErrorConsole {
	e := &ErrorConsole{
		entries:   make([]LogEntry, 0),
		showLevel: LevelInfo,
	}
	e.viewport = viewport.New(0, 0)
	return e
}

// SetSize updates the console dimensions
func (e *ErrorConsole) SetSize(width, height int) {
	e.width = width
	e.height = height
	e.viewport.Width = width
	e.viewport.Height = max(height-2, 1)
	e.updateContent()
}

// AddEntry adds a new console entry
func (e *ErrorConsole) AddEntry(level LogLevel, msg string) {
	e.entries = append(e.entries, LogEntry{
		timestamp: time.Now(),
		level:     level,
		message:   msg,
	})
	e.updateContent()
}

// Update handles the level filter keys and scrolling
func (e *ErrorConsole) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "pgup":
			e.viewport.HalfViewUp()
		case "pgdown":
			e.viewport.HalfViewDown()
		case "0":
			e.setFilter(LevelDebug)
		case "1":
			e.setFilter(LevelInfo)
		case "2":
			e.setFilter(LevelWarning)
		case "3":
			e.setFilter(LevelError)
		}
	}

	var cmd tea.Cmd
	e.viewport, cmd = e.viewport.Update(msg)
	return cmd
}

// View renders the console
func (e *ErrorConsole) View() string {
	footer := fmt.Sprintf(
		"Filter: %s (0:Debug 1:Info 2:Warn 3:Error) | Errors: %d | Warnings: %d",
		levelString(e.showLevel),
		e.countByLevel(LevelError),
		e.countByLevel(LevelWarning),
	)
	return e.viewport.View() + "\n" + infoStyle.Render(footer)
}

func (e *ErrorConsole) setFilter(level LogLevel) {
	e.showLevel = level
	e.updateContent()
}

func (e *ErrorConsole) updateContent() {
	var sb strings.Builder
	for _, entry := range e.entries {
		if entry.level < e.showLevel {
			continue
		}
		sb.WriteString(fmt.Sprintf(
			"%s [%s] %s\n",
			timestampStyle.Render(entry.timestamp.Format("15:04:05")),
			levelStyle(entry.level).Render(levelString(entry.level)),
			entry.message,
		))
	}

	atBottom := e.viewport.AtBottom()
	e.viewport.SetContent(sb.String())
	if atBottom {
		e.viewport.GotoBottom()
	}
}

func levelStyle(level LogLevel) lipgloss.Style {
	switch level {
	case LevelError:
		return errorLogStyle
	case LevelWarning:
		return warningLogStyle
	case LevelInfo:
		return infoLogStyle
	default:
		return debugLogStyle
	}
}

func levelString(level LogLevel) string {
	switch level {
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARN"
	case LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func (e *ErrorConsole) countByLevel(level LogLevel) int {
	count := 0
	for _, entry := range e.entries {
		if entry.level == level {
			count++
		}
	}
	return count
}
