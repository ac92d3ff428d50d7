// Package progress renders crawl progress on a terminal line
package progress

import (
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

const maxURLLen = 40

// Tracker is a crawl observer driving a spinner with a progress bar suffix.
// The total is only known once the root page reports its region links.
type Tracker struct {
	spin   *spinner.Spinner
	bar    progress.Model
	logger *log.Logger

	mu        sync.Mutex
	total     int
	processed int
	stubs     int
	dropped   int
	last      string
}

// New creates a Tracker drawing on w
func New(w io.Writer, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Default()
	}
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " starting"
	return &Tracker{
		spin:   s,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		logger: logger,
	}
}

// Start shows the spinner. It stays silent when w is not a terminal.
func (t *Tracker) Start() { t.spin.Start() }

// Stop hides the spinner
func (t *Tracker) Stop() { t.spin.Stop() }

// PageVisited counts a fetched page. The root page sets the expected total to
// itself plus every link found in its regions.
func (t *Tracker) PageVisited(node *common.CrawlNode, depth int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.processed++
	if depth == 0 {
		t.total = 1 + linkCount(node)
	}
	if t.processed > t.total {
		t.total = t.processed
	}
	t.last = node.URL
	t.refresh()
	t.logger.Debug("Page visited", "url", node.URL, "depth", depth, "processed", t.processed)
}

// StubEmitted counts a link that was recorded without being opened
func (t *Tracker) StubEmitted(node *common.CrawlNode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stubs++
	if t.total > t.processed {
		// the stub will never be visited
		t.total--
	}
	t.refresh()
}

// LinkDropped counts a same-origin link left out by the depth bound
func (t *Tracker) LinkDropped(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dropped++
	if t.total > t.processed {
		t.total--
	}
	t.refresh()
	t.logger.Debug("Link beyond max depth", "url", url)
}

// Percent returns processed pages over the expected total
func (t *Tracker) Percent() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.percent()
}

// Summary describes the counters in one line
func (t *Tracker) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fmt.Sprintf("%d pages visited, %d stubs, %d beyond max depth", t.processed, t.stubs, t.dropped)
}

func (t *Tracker) percent() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.processed) / float64(t.total)
}

func (t *Tracker) refresh() {
	msg := fmt.Sprintf(" %s %d/%d %s", t.bar.ViewAs(t.percent()), t.processed, t.total, shortenURL(t.last))
	t.spin.Lock()
	t.spin.Suffix = msg
	t.spin.Unlock()
}

func linkCount(n *common.CrawlNode) int {
	return len(n.MainMenuLinks) + len(n.MainLinks) + len(n.HeaderLinks) + len(n.FooterLinks) + len(n.OtherContentLinks)
}

// shortenURL keeps the host and the tail of the path
func shortenURL(raw string) string {
	if len(raw) <= maxURLLen {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "..." + raw[len(raw)-maxURLLen:]
	}
	host, path := u.Host, u.Path
	if keep := maxURLLen - len(host) - 3; keep > 0 && len(path) > keep {
		path = "..." + path[len(path)-keep:]
	}
	return host + path
}
