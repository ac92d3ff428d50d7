//go:build e2e

package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

const homePage = `<!doctype html>
<html>
<head><title>Browser Home</title><meta name="description" content="rendered"></head>
<body>
  <nav id="menu"><a href="/a">A</a><a>none</a></nav>
  <main><h1>Hello</h1></main>
  <script>
    document.querySelector('main').insertAdjacentHTML('beforeend', '<a href="/late">late</a>');
  </script>
  <img src="/slow.png">
</body>
</html>`

func TestSession_EndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, homePage)
	})
	mux.HandleFunc("/slow.png", func(w http.ResponseWriter, r *http.Request) {
		// navigation must not wait for subresources
		select {
		case <-time.After(10 * time.Second):
		case <-r.Context().Done():
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backend, err := NewBackendFactory(Options{Headless: true})(ctx)
	require.NoError(t, err)
	defer backend.Session.Close()

	p, err := backend.Session.OpenPage(ctx)
	require.NoError(t, err)
	defer backend.Session.ClosePage(p)

	start := time.Now()
	require.NoError(t, backend.Session.Navigate(ctx, p, srv.URL+"/"))
	assert.Less(t, time.Since(start), 8*time.Second)

	meta, err := backend.Inspector.Metadata(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Browser Home", meta.Title)
	assert.Equal(t, "Hello", meta.H1)
	assert.Equal(t, "rendered", meta.Description)
	assert.Equal(t, srv.URL+"/", meta.ResolvedURL)

	links, err := backend.Inspector.LinksBySelectors(ctx, p, common.SelectorConfig{
		MainMenu: "#menu",
		Main:     "main",
		Footer:   "footer",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + "/a", ""}, links[common.RegionMainMenu])
	assert.Equal(t, []string{srv.URL + "/late"}, links[common.RegionMain])
	assert.Empty(t, links[common.RegionFooter])
}

func TestSession_NavigateError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Launch(ctx, Options{Headless: true})
	require.NoError(t, err)
	defer s.Close()

	p, err := s.OpenPage(ctx)
	require.NoError(t, err)
	err = s.Navigate(ctx, p, "http://unresolvable.invalid/")
	assert.Error(t, err)
	assert.NoError(t, s.ClosePage(p))
}

func TestSession_NavigateStopsWithRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Launch(ctx, Options{Headless: true})
	require.NoError(t, err)
	defer s.Close()

	p, err := s.OpenPage(ctx)
	require.NoError(t, err)
	defer s.ClosePage(p)

	reqCtx, reqCancel := context.WithTimeout(ctx, time.Second)
	defer reqCancel()

	start := time.Now()
	err = s.Navigate(reqCtx, p, srv.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}
