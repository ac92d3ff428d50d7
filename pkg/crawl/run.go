package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

// NoSelectorsMessage is reported when a request names no region selector
const NoSelectorsMessage = "Please provide at least one CSS selector."

// Validation errors. They are returned before any browser work starts.
var (
	ErrNoSelectors  = errors.New(NoSelectorsMessage)
	ErrInvalidURL   = errors.New("invalid start URL")
	ErrInvalidDepth = errors.New("depth must be a non-negative integer")
)

// IsValidationError reports whether err rejected the request before crawling
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoSelectors) || errors.Is(err, ErrInvalidURL) || errors.Is(err, ErrInvalidDepth)
}

// Validate checks a request before any resource is acquired
func Validate(req common.CrawlRequest) error {
	if req.Selectors.Empty() {
		return ErrNoSelectors
	}
	u, err := url.Parse(strings.TrimSpace(req.URL))
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: %q", ErrInvalidURL, req.URL)
	}
	if req.MaxDepth < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDepth, req.MaxDepth)
	}
	return nil
}

// Runner executes crawl requests end to end: validate, launch a backend, crawl,
// close the backend and persist the tree.
type Runner struct {
	NewBackend BackendFactory
	Sink       OutputSink
	Logger     *log.Logger
	Observer   Observer

	opts []Option
}

// Run performs one crawl request. Nothing is written to the sink unless the whole
// crawl succeeds.
func (r *Runner) Run(ctx context.Context, req common.CrawlRequest) (*common.CrawlNode, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	if err := Validate(req); err != nil {
		return nil, err
	}

	backend, err := r.NewBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if err := backend.Session.Close(); err != nil {
			logger.Warn("Error closing browser session", "err", err)
		}
	}()

	opts := append([]Option{WithLogger(logger), WithObserver(r.Observer)}, r.opts...)
	crawler, err := NewCrawler(backend, req, opts...)
	if err != nil {
		return nil, err
	}

	root, err := crawler.Run(ctx)
	if err != nil {
		logger.Error("Crawl failed", "url", req.URL, "err", err)
		return nil, err
	}

	if r.Sink != nil {
		if err := r.Sink.WriteTree(root); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
	}
	return root, nil
}
