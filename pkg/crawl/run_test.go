package crawl

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

func newTestRunner(site *fakeSite, sink OutputSink) (*Runner, *int) {
	launches := 0
	factory := site.factory()
	return &Runner{
		NewBackend: func(ctx context.Context) (*Backend, error) {
			launches++
			return factory(ctx)
		},
		Sink:   sink,
		Logger: quietLogger(),
		opts:   []Option{withPageDelay(0)},
	}, &launches
}

func TestValidate(t *testing.T) {
	ok := common.CrawlRequest{URL: "https://example.com", MaxDepth: 1, Selectors: common.SelectorConfig{Footer: "footer"}}
	assert.NoError(t, Validate(ok))

	noSel := ok
	noSel.Selectors = common.SelectorConfig{}
	assert.ErrorIs(t, Validate(noSel), ErrNoSelectors)
	assert.Equal(t, "Please provide at least one CSS selector.", Validate(noSel).Error())

	badURL := ok
	badURL.URL = "example.com/page"
	assert.ErrorIs(t, Validate(badURL), ErrInvalidURL)

	badDepth := ok
	badDepth.MaxDepth = -1
	assert.ErrorIs(t, Validate(badDepth), ErrInvalidDepth)

	assert.True(t, IsValidationError(Validate(badDepth)))
	assert.False(t, IsValidationError(errors.New("boom")))
}

func TestRunner_NoSelectorsTouchesNothing(t *testing.T) {
	site := newFakeSite().page(seed, "Home", nil)
	sink := &recordingSink{}
	runner, launches := newTestRunner(site, sink)

	_, err := runner.Run(context.Background(), common.CrawlRequest{URL: seed, MaxDepth: 2})

	assert.ErrorIs(t, err, ErrNoSelectors)
	assert.Zero(t, *launches)
	assert.Zero(t, site.opened)
	assert.Empty(t, site.navigated)
	assert.Empty(t, sink.trees)
}

func TestRunner_PersistsTreeOnSuccess(t *testing.T) {
	site := newFakeSite().
		page(seed, "Home", common.RegionLinks{common.RegionMain: {"https://site.test/a"}}).
		page("https://site.test/a", "A", nil)
	sink := &recordingSink{}
	runner, launches := newTestRunner(site, sink)

	root, err := runner.Run(context.Background(), common.CrawlRequest{URL: seed, MaxDepth: 1, Selectors: allSelectors})

	require.NoError(t, err)
	assert.Equal(t, 1, *launches)
	require.Len(t, sink.trees, 1)
	assert.Same(t, root, sink.trees[0])
	assert.Equal(t, 2, root.Count())
	assert.True(t, site.sessionOff)
}

func TestRunner_NavigationFailureWritesNothing(t *testing.T) {
	site := newFakeSite()
	sink := &recordingSink{}
	runner, _ := newTestRunner(site, sink)

	root, err := runner.Run(context.Background(), common.CrawlRequest{
		URL:       "https://unreachable.invalid/",
		MaxDepth:  1,
		Selectors: allSelectors,
	})

	require.Error(t, err)
	assert.Nil(t, root)
	assert.Contains(t, err.Error(), "ERR_NAME_NOT_RESOLVED")
	assert.Empty(t, sink.trees)
	assert.True(t, site.sessionOff, "session is closed on the failure path too")
}

func TestRunner_LaunchFailure(t *testing.T) {
	sink := &recordingSink{}
	runner := &Runner{
		NewBackend: func(ctx context.Context) (*Backend, error) { return nil, errors.New("chrome not found") },
		Sink:       sink,
		Logger:     quietLogger(),
	}

	_, err := runner.Run(context.Background(), common.CrawlRequest{URL: seed, Selectors: allSelectors})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not found")
	assert.Empty(t, sink.trees)
}

func TestRunner_SinkFailure(t *testing.T) {
	site := newFakeSite().page(seed, "Home", nil)
	runner, _ := newTestRunner(site, failingSink{})

	_, err := runner.Run(context.Background(), common.CrawlRequest{URL: seed, Selectors: allSelectors})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write output")
}

type failingSink struct{}

func (failingSink) WriteTree(*common.CrawlNode) error { return errors.New("disk full") }
