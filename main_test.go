package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-scripts/sitecrawl/internal/config"
	"github.com/go-scripts/sitecrawl/internal/static"
	"github.com/go-scripts/sitecrawl/pkg/common"
)

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("sitecrawl"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestCLI_DefaultsToServe(t *testing.T) {
	cli, kctx := parse(t)
	assert.Equal(t, "serve", kctx.Command())
	assert.Equal(t, "config.yaml", cli.ConfigFile)
	assert.Empty(t, cli.Serve.Listen)
}

func TestCLI_CrawlFlags(t *testing.T) {
	cli, kctx := parse(t,
		"--backend", "http", "-o", "out/tree.json",
		"crawl", "https://example.com/", "-d", "2",
		"--main-menu", "nav.primary", "--footer", "footer", "--no-tree",
	)
	assert.Equal(t, "crawl <url>", kctx.Command())
	assert.False(t, cli.Crawl.Tree)

	cfg := config.Default()
	cfg.Crawl.Selectors.Main = "main"
	cli.apply(cfg)
	assert.Equal(t, config.BackendHTTP, cfg.Backend)
	assert.Equal(t, "out/tree.json", cfg.Output)

	req := cli.Crawl.request(cfg.Crawl)
	assert.Equal(t, common.CrawlRequest{
		URL:      "https://example.com/",
		MaxDepth: 2,
		Selectors: common.SelectorConfig{
			MainMenu: "nav.primary",
			Main:     "main",
			Footer:   "footer",
		},
	}, req)
}

func TestCrawlCmd_RequestKeepsConfiguredValues(t *testing.T) {
	settings := config.CrawlSettings{
		StartURL:  "https://configured.example/",
		MaxDepth:  3,
		Selectors: common.SelectorConfig{Header: "header"},
	}
	cmd := CrawlCmd{MaxDepth: -1}
	assert.Equal(t, settings.Request(), cmd.request(settings))

	cmd = CrawlCmd{MaxDepth: 0, Header: "#top"}
	req := cmd.request(settings)
	assert.Zero(t, req.MaxDepth)
	assert.Equal(t, "#top", req.Selectors.Header)
}

func TestServeCmd_Apply(t *testing.T) {
	cfg := config.Default()
	(&ServeCmd{}).apply(cfg)
	assert.Equal(t, ":3000", cfg.Listen)
	assert.Equal(t, "public", cfg.PublicDir)

	(&ServeCmd{Listen: "127.0.0.1:8080", PublicDir: "web"}).apply(cfg)
	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "web", cfg.PublicDir)
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cli := &CLI{ConfigFile: filepath.Join(t.TempDir(), "absent.yaml"), Debug: true}
	cfg, err := loadConfig(cli)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, config.BackendChrome, cfg.Backend)
}

func TestNewBackendFactory_HTTP(t *testing.T) {
	cfg := config.Default()
	cfg.Backend = config.BackendHTTP

	backend, err := newBackendFactory(cfg)(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &static.Session{}, backend.Session)
	assert.IsType(t, static.Inspector{}, backend.Inspector)
	assert.NoError(t, backend.Session.Close())
}

func TestCrawlCmd_RejectsRequestWithoutSelectors(t *testing.T) {
	cfg := config.Default()
	cfg.Output = filepath.Join(t.TempDir(), "output.json")
	a := &app{ctx: context.Background(), cfg: cfg, logger: newLogger(false)}

	err := (&CrawlCmd{URL: "https://example.com/", MaxDepth: -1}).Run(a)
	require.Error(t, err)
	assert.Equal(t, "Please provide at least one CSS selector.", err.Error())
	assert.NoFileExists(t, cfg.Output)
}
