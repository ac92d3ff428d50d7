// Package browser drives a headless Chrome through chromedp. Each crawl request
// gets its own browser; every page is a tab created from the shared browser context.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/go-scripts/sitecrawl/pkg/crawl"
)

// Options configures the Chrome allocator
type Options struct {
	Headless  bool
	UserAgent string
}

// Session is a running Chrome instance
type Session struct {
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

// tab is the PageHandle for a Chrome target
type tab struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
}

func (t *tab) ID() string { return t.id }

// Launch starts Chrome. The browser outlives ctx cancellation; call Close to stop it.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	return &Session{
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// NewBackendFactory returns a factory launching one Chrome per crawl request
func NewBackendFactory(opts Options) crawl.BackendFactory {
	return func(ctx context.Context) (*crawl.Backend, error) {
		s, err := Launch(ctx, opts)
		if err != nil {
			return nil, err
		}
		return &crawl.Backend{Session: s, Inspector: Inspector{}}, nil
	}
}

// OpenPage creates a new tab
func (s *Session) OpenPage(ctx context.Context) (crawl.PageHandle, error) {
	tabCtx, cancel := chromedp.NewContext(s.browserCtx)
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	t := &tab{ctx: tabCtx, cancel: cancel}
	if c := chromedp.FromContext(tabCtx); c != nil && c.Target != nil {
		t.id = string(c.Target.TargetID)
	}
	return t, nil
}

// Navigate loads url in the tab and returns on DOMContentLoaded. Cancelling ctx
// closes the tab and aborts the navigation.
func (s *Session) Navigate(ctx context.Context, p crawl.PageHandle, url string) error {
	t, err := asTab(p)
	if err != nil {
		return err
	}
	return runTab(ctx, t, navigateDOMReady(url))
}

// ClosePage closes the tab
func (s *Session) ClosePage(p crawl.PageHandle) error {
	t, err := asTab(p)
	if err != nil {
		return err
	}
	t.cancel()
	return nil
}

// Close shuts the browser down
func (s *Session) Close() error {
	err := chromedp.Cancel(s.browserCtx)
	s.browserCancel()
	s.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// navigateDOMReady issues Page.navigate and waits for the DOM to be parsed rather
// than for the load event that chromedp.Navigate waits on.
func navigateDOMReady(url string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		lctx, cancel := context.WithCancel(ctx)
		defer cancel()

		ready := make(chan struct{})
		var once sync.Once
		chromedp.ListenTarget(lctx, func(ev any) {
			if _, ok := ev.(*page.EventDomContentEventFired); ok {
				once.Do(func() { close(ready) })
			}
		})

		var res page.NavigateReturns
		if err := cdp.Execute(ctx, page.CommandNavigate, page.Navigate(url), &res); err != nil {
			return err
		}
		if res.ErrorText != "" {
			return fmt.Errorf("page load error %s", res.ErrorText)
		}

		select {
		case <-ready:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runTab runs actions on the tab while watching ctx. The tab context outlives the
// request, so a cancelled ctx closes the tab to stop the actions.
func runTab(ctx context.Context, t *tab, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, t.cancel)
	defer stop()

	err := chromedp.Run(t.ctx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func asTab(p crawl.PageHandle) (*tab, error) {
	t, ok := p.(*tab)
	if !ok || t == nil {
		return nil, fmt.Errorf("page %T was not opened by a chrome session", p)
	}
	return t, nil
}
