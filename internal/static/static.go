// Package static is a browserless backend: pages are fetched with net/http and
// inspected with goquery. Scripts never run, so it only sees server-rendered markup.
package static

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/go-scripts/sitecrawl/pkg/crawl"
)

const defaultUserAgent = "sitecrawl/1.0"

// Session fetches pages over plain HTTP
type Session struct {
	client    *http.Client
	userAgent string
	next      atomic.Int64
}

// document is the PageHandle of the static backend
type document struct {
	id  string
	url string
	doc *goquery.Document
}

func (d *document) ID() string { return d.id }

// New creates a session. A nil client uses a client with a 30s timeout.
func New(client *http.Client, userAgent string) *Session {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Session{client: client, userAgent: userAgent}
}

// NewBackendFactory returns a factory building one static session per request
func NewBackendFactory(client *http.Client, userAgent string) crawl.BackendFactory {
	return func(ctx context.Context) (*crawl.Backend, error) {
		return &crawl.Backend{Session: New(client, userAgent), Inspector: Inspector{}}, nil
	}
}

// OpenPage returns an empty page
func (s *Session) OpenPage(ctx context.Context) (crawl.PageHandle, error) {
	return &document{id: strconv.FormatInt(s.next.Add(1), 10)}, nil
}

// Navigate fetches url and parses the response as HTML
func (s *Session) Navigate(ctx context.Context, p crawl.PageHandle, url string) error {
	d, err := asDocument(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if ct != "" && !strings.Contains(ct, "html") {
		return fmt.Errorf("unsupported content type %q", ct)
	}

	root, err := html.Parse(resp.Body)
	if err != nil {
		return fmt.Errorf("parse html: %w", err)
	}

	d.doc = goquery.NewDocumentFromNode(root)
	d.doc.Url = resp.Request.URL
	d.url = resp.Request.URL.String()
	return nil
}

// ClosePage drops the parsed document
func (s *Session) ClosePage(p crawl.PageHandle) error {
	d, err := asDocument(p)
	if err != nil {
		return err
	}
	d.doc = nil
	return nil
}

// Close is a no-op; idle connections belong to the shared client
func (s *Session) Close() error {
	return nil
}

func asDocument(p crawl.PageHandle) (*document, error) {
	d, ok := p.(*document)
	if !ok || d == nil {
		return nil, fmt.Errorf("page %T was not opened by a static session", p)
	}
	return d, nil
}
