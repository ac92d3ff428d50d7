package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

// Message types. Crawl events carry a copy of the node so the program never
// reads a node the crawl is still building.
type PageVisitedMsg struct {
	Result CrawlResult
	At     time.Time
}

type StubEmittedMsg struct {
	Result CrawlResult
}

type LinkDroppedMsg struct {
	URL string
}

type CrawlDoneMsg struct {
	Root *common.CrawlNode
	Err  error
}

type LogLineMsg struct {
	Level LogLevel
	Text  string
}

// Sender is satisfied by *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramObserver forwards crawl events to a running program
type ProgramObserver struct {
	Program Sender
}

func (o ProgramObserver) PageVisited(node *common.CrawlNode, depth int) {
	o.Program.Send(PageVisitedMsg{Result: ResultFromNode(node, depth), At: time.Now()})
}

func (o ProgramObserver) StubEmitted(node *common.CrawlNode) {
	o.Program.Send(StubEmittedMsg{Result: ResultFromNode(node, 0)})
}

func (o ProgramObserver) LinkDropped(url string) {
	o.Program.Send(LinkDroppedMsg{URL: url})
}

// NewLogger returns a logger whose entries end up in the console panel
func NewLogger(p Sender, level log.Level) *log.Logger {
	return log.NewWithOptions(&logWriter{program: p}, log.Options{
		Formatter: log.JSONFormatter,
		Level:     level,
	})
}

// logWriter decodes JSON log lines into LogLineMsg
type logWriter struct {
	program Sender
}

func (w *logWriter) Write(b []byte) (int, error) {
	for _, line := range bytes.Split(b, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		w.program.Send(parseLogLine(line))
	}
	return len(b), nil
}

var _ io.Writer = (*logWriter)(nil)

func parseLogLine(line []byte) LogLineMsg {
	fields := map[string]any{}
	if err := json.Unmarshal(line, &fields); err != nil {
		return LogLineMsg{Level: LevelInfo, Text: string(line)}
	}

	level := LevelInfo
	if s, ok := fields["level"].(string); ok {
		if l, err := log.ParseLevel(s); err == nil {
			level = LevelFromLog(l)
		}
	}
	msg, _ := fields["msg"].(string)
	delete(fields, "level")
	delete(fields, "msg")
	delete(fields, "time")

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{msg}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, fields[k]))
	}
	return LogLineMsg{Level: level, Text: strings.Join(parts, " ")}
}
