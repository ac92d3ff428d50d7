// Package server exposes the crawl as an HTTP endpoint and serves the public
// directory that holds the crawl output.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/go-scripts/sitecrawl/pkg/common"
	"github.com/go-scripts/sitecrawl/pkg/crawl"
)

// CrawlRunner performs a complete crawl request
type CrawlRunner interface {
	Run(ctx context.Context, req common.CrawlRequest) (*common.CrawlNode, error)
}

// StartCrawlRequest is the body of POST /start-crawl
type StartCrawlRequest struct {
	URL                  string          `json:"url"`
	Depth                json.RawMessage `json:"depth"`
	MainMenuSelector     string          `json:"mainMenuSelector"`
	MainSelector         string          `json:"mainSelector"`
	HeaderSelector       string          `json:"headerSelector"`
	FooterSelector       string          `json:"footerSelector"`
	OtherContentSelector string          `json:"otherContentSelector"`
}

// Response is returned for every crawl request; the HTTP status is always 200
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Server routes crawl requests to a runner
type Server struct {
	runner    CrawlRunner
	logger    *log.Logger
	publicDir string
}

// New creates a Server. An empty publicDir disables static file serving.
func New(runner CrawlRunner, logger *log.Logger, publicDir string) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger, publicDir: publicDir}
}

// Routes builds the chi router
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/start-crawl", s.handleStartCrawl)
	if s.publicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.publicDir)))
	}
	return r
}

func (s *Server) handleStartCrawl(w http.ResponseWriter, r *http.Request) {
	var body StartCrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respond(w, Response{Success: false, Message: fmt.Sprintf("invalid request body: %v", err)})
		return
	}

	selectors := body.Selectors()
	if selectors.Empty() {
		s.respond(w, Response{Success: false, Message: crawl.NoSelectorsMessage})
		return
	}

	depth, err := ParseDepth(body.Depth)
	if err != nil {
		s.respond(w, Response{Success: false, Message: err.Error()})
		return
	}

	req := common.CrawlRequest{URL: body.URL, MaxDepth: depth, Selectors: selectors}
	logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
	logger.Info("Crawl requested", "url", req.URL, "depth", req.MaxDepth)

	if _, err := s.runner.Run(r.Context(), req); err != nil {
		if !crawl.IsValidationError(err) {
			logger.Error("Crawl failed", "url", req.URL, "err", err)
		}
		s.respond(w, Response{Success: false, Message: err.Error()})
		return
	}

	logger.Info("Crawl finished", "url", req.URL)
	s.respond(w, Response{Success: true})
}

func (s *Server) respond(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("Error writing response", "err", err)
	}
}

// Selectors maps the request fields onto the region selector config
func (b StartCrawlRequest) Selectors() common.SelectorConfig {
	return common.SelectorConfig{
		MainMenu:     b.MainMenuSelector,
		Main:         b.MainSelector,
		Header:       b.HeaderSelector,
		Footer:       b.FooterSelector,
		OtherContent: b.OtherContentSelector,
	}
}

// ParseDepth accepts depth as a JSON number or a numeric string
func ParseDepth(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, fmt.Errorf("%w: missing", crawl.ErrInvalidDepth)
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return checkDepth(n)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("%w: %s", crawl.ErrInvalidDepth, raw)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", crawl.ErrInvalidDepth, s)
	}
	return checkDepth(n)
}

func checkDepth(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: %d", crawl.ErrInvalidDepth, n)
	}
	return n, nil
}

// ListenAndServe serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Routes()}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server is running", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		return srv.Shutdown(context.WithoutCancel(ctx))
	}
}
