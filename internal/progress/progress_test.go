package progress

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

func newTracker() *Tracker {
	return New(&bytes.Buffer{}, log.New(io.Discard))
}

func TestTracker_Counts(t *testing.T) {
	tr := newTracker()
	assert.Zero(t, tr.Percent())

	root := &common.CrawlNode{
		URL:           "https://example.com/",
		MainMenuLinks: []string{"https://example.com/a", "https://example.com/b"},
		FooterLinks:   []string{"mailto:x@example.com"},
	}
	tr.PageVisited(root, 0)
	assert.InDelta(t, 0.25, tr.Percent(), 1e-9)

	tr.PageVisited(&common.CrawlNode{URL: "https://example.com/a"}, 1)
	tr.StubEmitted(common.NewStub("mailto:x@example.com", common.FooterLinks))
	assert.InDelta(t, 2.0/3.0, tr.Percent(), 1e-9)

	tr.PageVisited(&common.CrawlNode{URL: "https://example.com/b"}, 1)
	assert.InDelta(t, 1.0, tr.Percent(), 1e-9)
	assert.Equal(t, "3 pages visited, 1 stubs, 0 beyond max depth", tr.Summary())
}

func TestTracker_DroppedLinksCompleteTheBar(t *testing.T) {
	tr := newTracker()
	root := &common.CrawlNode{
		URL:       "https://example.com/",
		MainLinks: []string{"https://example.com/a", "https://example.com/b", "https://other.example/"},
	}
	tr.PageVisited(root, 0)
	assert.InDelta(t, 0.25, tr.Percent(), 1e-9)

	tr.LinkDropped("https://example.com/a")
	tr.LinkDropped("https://example.com/b")
	tr.StubEmitted(common.NewStub("https://other.example/", common.MainContentLinks))

	assert.InDelta(t, 1.0, tr.Percent(), 1e-9)
	assert.Contains(t, tr.spin.Suffix, "1/1")
	assert.Equal(t, "1 pages visited, 1 stubs, 2 beyond max depth", tr.Summary())
}

func TestTracker_NeverExceedsOne(t *testing.T) {
	tr := newTracker()
	tr.PageVisited(&common.CrawlNode{URL: "https://example.com/"}, 0)
	tr.PageVisited(&common.CrawlNode{URL: "https://example.com/late"}, 1)
	assert.InDelta(t, 1.0, tr.Percent(), 1e-9)
}

func TestTracker_SuffixShowsLastURL(t *testing.T) {
	tr := newTracker()
	tr.PageVisited(&common.CrawlNode{URL: "https://example.com/"}, 0)
	assert.Contains(t, tr.spin.Suffix, "1/1 https://example.com/")
}

func TestShortenURL(t *testing.T) {
	assert.Equal(t, "https://example.com/a", shortenURL("https://example.com/a"))

	long := "https://example.com/a/very/long/path/that/keeps/going/and/going"
	got := shortenURL(long)
	assert.LessOrEqual(t, len(got), maxURLLen)
	assert.Equal(t, "example.com...", got[:len("example.com...")])
	assert.Equal(t, "going", got[len(got)-len("going"):])
}
