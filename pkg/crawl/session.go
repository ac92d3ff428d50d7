package crawl

import (
	"context"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

// PageHandle identifies a page opened by a BrowserSession. Only the session and
// inspector of the same backend know its concrete type.
type PageHandle interface {
	ID() string
}

// BrowserSession opens, navigates and closes isolated pages. One session serves a
// whole crawl request.
type BrowserSession interface {
	OpenPage(ctx context.Context) (PageHandle, error)
	// Navigate returns once the DOM is parsed, without waiting for subresources
	Navigate(ctx context.Context, page PageHandle, url string) error
	ClosePage(page PageHandle) error
	Close() error
}

// PageInspector reads metadata and region links from a loaded page
type PageInspector interface {
	Metadata(ctx context.Context, page PageHandle) (common.PageMetadata, error)
	// LinksBySelectors returns absolute hrefs per region. Unset or unmatched
	// selectors yield an empty list.
	LinksBySelectors(ctx context.Context, page PageHandle, selectors common.SelectorConfig) (common.RegionLinks, error)
}

// Backend pairs a session with the inspector that understands its pages
type Backend struct {
	Session   BrowserSession
	Inspector PageInspector
}

// BackendFactory launches a fresh backend for one crawl request
type BackendFactory func(ctx context.Context) (*Backend, error)

// OutputSink persists the finished tree
type OutputSink interface {
	WriteTree(root *common.CrawlNode) error
}

// Observer is notified as the traversal produces nodes. A node passed to
// PageVisited already carries its URL, title, metadata, region links and category;
// its Children are still being filled and must not be read until the crawl returns.
// LinkDropped reports a followable link that was not opened because of the depth bound.
type Observer interface {
	PageVisited(node *common.CrawlNode, depth int)
	StubEmitted(node *common.CrawlNode)
	LinkDropped(url string)
}
