package crawl

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

type fakePage struct {
	meta  common.PageMetadata
	links common.RegionLinks
}

type fakeHandle struct {
	id  string
	url string
}

func (h *fakeHandle) ID() string { return h.id }

// fakeSite is an in-memory BrowserSession and PageInspector
type fakeSite struct {
	pages map[string]fakePage

	opened     int
	closed     int
	navigated  []string
	linkCalls  []string
	sessionOff bool
}

func newFakeSite() *fakeSite {
	return &fakeSite{pages: make(map[string]fakePage)}
}

func (s *fakeSite) page(url, title string, links common.RegionLinks) *fakeSite {
	s.pages[url] = fakePage{
		meta:  common.PageMetadata{Title: title, H1: title + " heading", Description: title + " description", ResolvedURL: url},
		links: links,
	}
	return s
}

func (s *fakeSite) backend() *Backend {
	return &Backend{Session: s, Inspector: s}
}

func (s *fakeSite) factory() BackendFactory {
	return func(ctx context.Context) (*Backend, error) { return s.backend(), nil }
}

func (s *fakeSite) OpenPage(ctx context.Context) (PageHandle, error) {
	s.opened++
	return &fakeHandle{id: strconv.Itoa(s.opened)}, nil
}

func (s *fakeSite) Navigate(ctx context.Context, p PageHandle, url string) error {
	s.navigated = append(s.navigated, url)
	if _, ok := s.pages[url]; !ok {
		return fmt.Errorf("page load error net::ERR_NAME_NOT_RESOLVED")
	}
	p.(*fakeHandle).url = url
	return nil
}

func (s *fakeSite) ClosePage(p PageHandle) error {
	s.closed++
	return nil
}

func (s *fakeSite) Close() error {
	s.sessionOff = true
	return nil
}

func (s *fakeSite) Metadata(ctx context.Context, p PageHandle) (common.PageMetadata, error) {
	return s.pages[p.(*fakeHandle).url].meta, nil
}

func (s *fakeSite) LinksBySelectors(ctx context.Context, p PageHandle, sel common.SelectorConfig) (common.RegionLinks, error) {
	url := p.(*fakeHandle).url
	s.linkCalls = append(s.linkCalls, url)
	out := common.RegionLinks{}
	for _, r := range common.Regions {
		if sel.Selector(r) == "" {
			out[r] = []string{}
			continue
		}
		out[r] = s.pages[url].links[r]
	}
	return out, nil
}

type recordingSink struct {
	trees []*common.CrawlNode
}

func (r *recordingSink) WriteTree(root *common.CrawlNode) error {
	r.trees = append(r.trees, root)
	return nil
}

type recordingObserver struct {
	visited    []string
	categories []common.Category
	stubs      []string
	dropped    []string
}

func (o *recordingObserver) PageVisited(n *common.CrawlNode, depth int) {
	o.visited = append(o.visited, n.URL)
	o.categories = append(o.categories, n.Category)
}

func (o *recordingObserver) StubEmitted(n *common.CrawlNode) {
	o.stubs = append(o.stubs, n.URL)
}

func (o *recordingObserver) LinkDropped(url string) {
	o.dropped = append(o.dropped, url)
}

// asyncObserver reads every reported node on another goroutine, the way a
// terminal UI does.
type asyncObserver struct {
	nodes chan *common.CrawlNode
	done  chan struct{}
	seen  []string
}

func newAsyncObserver() *asyncObserver {
	o := &asyncObserver{nodes: make(chan *common.CrawlNode, 64), done: make(chan struct{})}
	go func() {
		defer close(o.done)
		for n := range o.nodes {
			title := ""
			if n.Title != nil {
				title = *n.Title
			}
			o.seen = append(o.seen, fmt.Sprintf("%s|%s|%s|%d", n.URL, n.Category, title, len(n.MainMenuLinks)))
		}
	}()
	return o
}

func (o *asyncObserver) PageVisited(n *common.CrawlNode, depth int) { o.nodes <- n }

func (o *asyncObserver) StubEmitted(n *common.CrawlNode) { o.nodes <- n }

func (o *asyncObserver) LinkDropped(url string) {}

// wait stops the reader and returns what it saw
func (o *asyncObserver) wait() []string {
	close(o.nodes)
	<-o.done
	return o.seen
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

var allSelectors = common.SelectorConfig{
	MainMenu:     "nav",
	Main:         "main",
	Header:       "header",
	Footer:       "footer",
	OtherContent: "aside",
}
