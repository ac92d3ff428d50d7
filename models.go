package main

import (
	"github.com/go-scripts/sitecrawl/internal/config"
	"github.com/go-scripts/sitecrawl/pkg/common"
)

// CLI flags structure
type CLI struct {
	ConfigFile string `help:"Path to configuration file" default:"config.yaml" name:"config" short:"c"`
	Debug      bool   `help:"Enable debug mode" default:"false"`
	Backend    string `help:"Page backend: chrome or http"`
	Output     string `help:"Path to output file" short:"o"`

	Serve ServeCmd `cmd:"" default:"1" help:"Serve POST /start-crawl and the public directory"`
	Crawl CrawlCmd `cmd:"" help:"Crawl a site once and write the tree"`
}

// ServeCmd runs the HTTP service
type ServeCmd struct {
	Listen    string `help:"Address to listen on" short:"l"`
	PublicDir string `help:"Directory served at /" name:"public-dir"`
}

// CrawlCmd runs one crawl from the command line
type CrawlCmd struct {
	URL          string `arg:"" optional:"" help:"Starting URL for the crawler"`
	MaxDepth     int    `help:"Maximum crawl depth, -1 keeps the configured value" default:"-1" short:"d" name:"depth"`
	MainMenu     string `help:"CSS selector of the main menu" name:"main-menu"`
	Main         string `help:"CSS selector of the main content"`
	Header       string `help:"CSS selector of the header"`
	Footer       string `help:"CSS selector of the footer"`
	OtherContent string `help:"CSS selector of other content" name:"other-content"`
	TUI          bool   `help:"Show the live crawl view" name:"tui"`
	Tree         bool   `help:"Print the finished tree" default:"true" negatable:""`
}

// apply overrides configuration values with the flags that were set
func (c *CLI) apply(cfg *config.Configuration) {
	if c.Debug {
		cfg.Debug = true
	}
	if c.Backend != "" {
		cfg.Backend = c.Backend
	}
	if c.Output != "" {
		cfg.Output = c.Output
	}
}

func (s *ServeCmd) apply(cfg *config.Configuration) {
	if s.Listen != "" {
		cfg.Listen = s.Listen
	}
	if s.PublicDir != "" {
		cfg.PublicDir = s.PublicDir
	}
}

// request builds the crawl request from the configured crawl settings and the
// flags. A selector flag replaces the configured selector for that region only.
func (c *CrawlCmd) request(settings config.CrawlSettings) common.CrawlRequest {
	req := settings.Request()
	if c.URL != "" {
		req.URL = c.URL
	}
	if c.MaxDepth >= 0 {
		req.MaxDepth = c.MaxDepth
	}

	override(&req.Selectors.MainMenu, c.MainMenu)
	override(&req.Selectors.Main, c.Main)
	override(&req.Selectors.Header, c.Header)
	override(&req.Selectors.Footer, c.Footer)
	override(&req.Selectors.OtherContent, c.OtherContent)
	return req
}

func override(dst *string, flag string) {
	if flag != "" {
		*dst = flag
	}
}
