package crawl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

// PageDelay is the pause after every page that is actually opened
const PageDelay = 2 * time.Second

// Crawler walks a site depth-first from a seed page. A Crawler serves exactly one
// request: it owns the visited set and borrows the request's backend.
type Crawler struct {
	backend    *Backend
	classifier *LinkClassifier
	visited    *VisitedSet
	seed       string
	maxDepth   int
	selectors  common.SelectorConfig
	delay      time.Duration
	observer   Observer
	logger     *log.Logger
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithObserver reports visited pages, stubs and links beyond the depth bound as they are produced.
func WithObserver(o Observer) Option { return func(c *Crawler) { c.observer = o } }

// WithLogger sets the logger. Nil keeps the default.
func WithLogger(l *log.Logger) Option {
	return func(c *Crawler) {
		if l != nil {
			c.logger = l
		}
	}
}

func withPageDelay(d time.Duration) Option { return func(c *Crawler) { c.delay = d } }

// NewCrawler prepares a crawl of req using backend
func NewCrawler(backend *Backend, req common.CrawlRequest, opts ...Option) (*Crawler, error) {
	if backend == nil || backend.Session == nil || backend.Inspector == nil {
		return nil, fmt.Errorf("crawler needs a session and an inspector")
	}
	classifier, err := NewLinkClassifier(strings.TrimSpace(req.URL))
	if err != nil {
		return nil, err
	}
	// the seed goes through the same normalization as every discovered link
	seedURL, err := classifier.Resolve(req.URL)
	if err != nil {
		return nil, err
	}
	seed := seedURL.String()

	c := &Crawler{
		backend:    backend,
		classifier: classifier,
		visited:    NewVisitedSet(),
		seed:       seed,
		maxDepth:   req.MaxDepth,
		selectors:  req.Selectors,
		delay:      PageDelay,
		logger:     log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Visited returns the URLs accepted so far
func (c *Crawler) Visited() []string {
	return c.visited.URLs()
}

// Run crawls from the seed and returns the root node. The first error aborts the
// whole traversal and no partial tree is returned.
func (c *Crawler) Run(ctx context.Context) (*common.CrawlNode, error) {
	c.logger.Info("Starting crawl", "url", c.seed, "origin", c.classifier.Origin(), "maxDepth", c.maxDepth)

	root, err := c.crawl(ctx, c.seed, 0, common.RootSeed)
	if err != nil {
		return nil, err
	}
	if root != nil && root.IsStub() {
		root.Category = common.RootSeed
	}

	c.logger.Info("Crawl completed", "url", c.seed, "visited", c.visited.Len(), "nodes", root.Count())
	return root, nil
}

// crawl visits target and, at the root, its region links. category is set on a
// visited node before observers see it; contact leaves are relabelled by the caller.
func (c *Crawler) crawl(ctx context.Context, target string, depth int, category common.Category) (*common.CrawlNode, error) {
	if depth > c.maxDepth || c.visited.Has(target) {
		return nil, nil
	}
	c.visited.Add(target)

	if isContactURL(target) {
		return common.NewStub(target, common.StubLinks), nil
	}

	node, links, err := c.visit(ctx, target, depth)
	if err != nil {
		return nil, err
	}
	node.Category = category
	if c.observer != nil {
		c.observer.PageVisited(node, depth)
	}

	if err := c.pause(ctx); err != nil {
		return nil, err
	}

	for _, region := range common.Regions {
		filtered, err := c.classifier.Filter(links[region])
		if err != nil {
			return nil, err
		}
		children, err := c.crawlLinks(ctx, filtered, region.Category(), depth)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, children...)
	}
	return node, nil
}

// visit opens target and reads its metadata. Region links are only extracted on
// the root page; deeper pages report none.
func (c *Crawler) visit(ctx context.Context, target string, depth int) (*common.CrawlNode, common.RegionLinks, error) {
	session, inspector := c.backend.Session, c.backend.Inspector

	page, err := session.OpenPage(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("open page for %s: %w", target, err)
	}
	defer func() {
		if err := session.ClosePage(page); err != nil {
			c.logger.Warn("Error closing page", "url", target, "err", err)
		}
	}()

	c.logger.Debug("Visiting page", "url", target, "depth", depth)
	if err := session.Navigate(ctx, page, target); err != nil {
		return nil, nil, fmt.Errorf("navigate to %s: %w", target, err)
	}

	meta, err := inspector.Metadata(ctx, page)
	if err != nil {
		return nil, nil, fmt.Errorf("read metadata of %s: %w", target, err)
	}

	links := common.RegionLinks{}
	if depth == 0 {
		links, err = inspector.LinksBySelectors(ctx, page, c.selectors)
		if err != nil {
			return nil, nil, fmt.Errorf("extract links from %s: %w", target, err)
		}
	}

	title := meta.Title
	node := &common.CrawlNode{
		URL:         meta.ResolvedURL,
		Title:       &title,
		H1:          meta.H1,
		Description: meta.Description,
		Children:    []*common.CrawlNode{},
	}
	if node.URL == "" {
		node.URL = target
	}
	for _, region := range common.Regions {
		node.SetRegionLinks(region, links[region])
	}
	return node, links, nil
}

func (c *Crawler) crawlLinks(ctx context.Context, links []string, category common.Category, depth int) ([]*common.CrawlNode, error) {
	children := make([]*common.CrawlNode, 0, len(links))
	for _, link := range links {
		href, followable, err := c.classifier.Classify(link)
		if err != nil {
			return nil, err
		}

		if followable && !c.visited.Has(href) {
			child, err := c.crawl(ctx, href, depth+1, category)
			if err != nil {
				return nil, err
			}
			if child == nil {
				c.logger.Debug("Link beyond max depth", "url", href, "category", category)
				if c.observer != nil {
					c.observer.LinkDropped(href)
				}
				continue
			}
			if child.IsStub() {
				child.Category = category
				c.notifyStub(child)
			}
			children = append(children, child)
			continue
		}

		stub := common.NewStub(href, category)
		children = append(children, stub)
		c.notifyStub(stub)
	}
	return children, nil
}

func (c *Crawler) notifyStub(n *common.CrawlNode) {
	c.logger.Debug("Stub link", "url", n.URL, "category", n.Category)
	if c.observer != nil {
		c.observer.StubEmitted(n)
	}
}

func (c *Crawler) pause(ctx context.Context) error {
	if c.delay <= 0 {
		return nil
	}
	t := time.NewTimer(c.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
