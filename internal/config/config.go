// Package config loads the crawler configuration from a YAML file. Command line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-scripts/sitecrawl/pkg/common"
)

// Backend names
const (
	BackendChrome = "chrome"
	BackendHTTP   = "http"
)

var (
	ErrUnknownBackend = errors.New("unknown backend: must be chrome or http")
	ErrNoListen       = errors.New("listen address is required")
	ErrNoOutput       = errors.New("output path is required")
)

// Configuration holds all the settings for the crawler
type Configuration struct {
	Listen    string `yaml:"listen"`
	Output    string `yaml:"output"`
	PublicDir string `yaml:"public_dir"`
	Backend   string `yaml:"backend"`
	Headless  bool   `yaml:"headless"`
	UserAgent string `yaml:"user_agent"`
	Debug     bool   `yaml:"debug"`

	// Crawl holds the request used by the one-shot crawl command
	Crawl CrawlSettings `yaml:"crawl"`
}

// CrawlSettings describes a crawl request in the config file
type CrawlSettings struct {
	StartURL  string                `yaml:"start_url"`
	MaxDepth  int                   `yaml:"max_depth"`
	Selectors common.SelectorConfig `yaml:"selectors"`
}

// Request converts the settings into a crawl request
func (s CrawlSettings) Request() common.CrawlRequest {
	return common.CrawlRequest{
		URL:       s.StartURL,
		MaxDepth:  s.MaxDepth,
		Selectors: s.Selectors,
	}
}

// Default returns the configuration used when no file is present
func Default() *Configuration {
	return &Configuration{
		Listen:    ":3000",
		Output:    "public/output.json",
		PublicDir: "public",
		Backend:   BackendChrome,
		Headless:  true,
		UserAgent: "sitecrawl/1.0",
		Crawl: CrawlSettings{
			MaxDepth: 1,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Configuration, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the settings shared by every command
func (c *Configuration) Validate() error {
	switch c.Backend {
	case BackendChrome, BackendHTTP:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if c.Listen == "" {
		return ErrNoListen
	}
	if c.Output == "" {
		return ErrNoOutput
	}
	return nil
}
