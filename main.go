package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/go-scripts/sitecrawl/internal/browser"
	"github.com/go-scripts/sitecrawl/internal/config"
	"github.com/go-scripts/sitecrawl/internal/progress"
	"github.com/go-scripts/sitecrawl/internal/server"
	"github.com/go-scripts/sitecrawl/internal/static"
	"github.com/go-scripts/sitecrawl/internal/writer"
	"github.com/go-scripts/sitecrawl/pkg/common"
	"github.com/go-scripts/sitecrawl/pkg/crawl"
	"github.com/go-scripts/sitecrawl/ui"
)

// app is bound into every command's Run method
type app struct {
	ctx    context.Context
	cfg    *config.Configuration
	logger *log.Logger
}

// loadConfig loads the configuration file and applies the global flags
func loadConfig(cli *CLI) (*config.Configuration, error) {
	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		return nil, err
	}
	cli.apply(cfg)
	return cfg, nil
}

func newLogger(debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// newBackendFactory picks the page backend named in the configuration
func newBackendFactory(cfg *config.Configuration) crawl.BackendFactory {
	if cfg.Backend == config.BackendHTTP {
		return static.NewBackendFactory(nil, cfg.UserAgent)
	}
	return browser.NewBackendFactory(browser.Options{
		Headless:  cfg.Headless,
		UserAgent: cfg.UserAgent,
	})
}

// Run serves the crawl API until interrupted
func (s *ServeCmd) Run(a *app) error {
	s.apply(a.cfg)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	sink, err := writer.New(a.cfg.Output)
	if err != nil {
		return err
	}
	runner := &crawl.Runner{
		NewBackend: newBackendFactory(a.cfg),
		Sink:       sink,
		Logger:     a.logger,
	}

	a.logger.Info("Serving crawl API", "backend", a.cfg.Backend, "output", sink.Path(), "public", a.cfg.PublicDir)
	return server.New(runner, a.logger, a.cfg.PublicDir).ListenAndServe(a.ctx, a.cfg.Listen)
}

// Run performs one crawl and prints the tree
func (c *CrawlCmd) Run(a *app) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	req := c.request(a.cfg.Crawl)
	if err := crawl.Validate(req); err != nil {
		return err
	}

	sink, err := writer.New(a.cfg.Output)
	if err != nil {
		return err
	}
	runner := &crawl.Runner{
		NewBackend: newBackendFactory(a.cfg),
		Sink:       sink,
		Logger:     a.logger,
	}

	var root *common.CrawlNode
	if c.TUI {
		root, err = c.runTUI(a, runner, req)
	} else {
		root, err = c.runPlain(a, runner, req)
	}
	if err != nil {
		return err
	}

	if c.Tree {
		fmt.Println(ui.RenderTree(root))
	}
	return nil
}

func (c *CrawlCmd) runPlain(a *app, runner *crawl.Runner, req common.CrawlRequest) (*common.CrawlNode, error) {
	tracker := progress.New(os.Stderr, a.logger)
	runner.Observer = tracker

	tracker.Start()
	root, err := runner.Run(a.ctx, req)
	tracker.Stop()
	if err != nil {
		return nil, err
	}

	a.logger.Info("Crawl saved", "path", a.cfg.Output, "summary", tracker.Summary())
	return root, nil
}

// runTUI runs the crawl in the background while the live view owns the terminal.
// Quitting the view cancels the crawl.
func (c *CrawlCmd) runTUI(a *app, runner *crawl.Runner, req common.CrawlRequest) (*common.CrawlNode, error) {
	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	p := tea.NewProgram(ui.NewModel(req.URL, req.MaxDepth), tea.WithAltScreen(), tea.WithContext(ctx))
	runner.Logger = ui.NewLogger(p, a.logger.GetLevel())
	runner.Observer = ui.ProgramObserver{Program: p}

	done := make(chan struct{})
	go func() {
		defer close(done)
		root, err := runner.Run(ctx, req)
		p.Send(ui.CrawlDoneMsg{Root: root, Err: err})
	}()

	final, err := p.Run()
	cancel()
	<-done
	if err != nil {
		return nil, fmt.Errorf("run live view: %w", err)
	}

	m, ok := final.(ui.Model)
	if !ok || !m.Done() {
		return nil, fmt.Errorf("crawl interrupted")
	}
	res := m.Result()
	if res.Err != nil {
		return nil, res.Err
	}
	a.logger.Info("Crawl saved", "path", a.cfg.Output, "nodes", res.Root.Count())
	return res.Root, nil
}

func main() {
	var cli CLI

	kctx := kong.Parse(&cli,
		kong.Name("sitecrawl"),
		kong.Description("Crawl a site by page region and record the link tree."),
		kong.UsageOnError(),
	)

	cfg, err := loadConfig(&cli)
	if err != nil {
		log.Fatal("Error loading configuration", "err", err)
	}
	logger := newLogger(cfg.Debug)
	log.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&app{ctx: ctx, cfg: cfg, logger: logger}); err != nil {
		logger.Error("Command failed", "command", kctx.Command(), "err", err)
		stop()
		os.Exit(1)
	}
}
