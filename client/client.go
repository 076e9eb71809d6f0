package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"github.com/xackery/launchdemo/config"
	"golang.org/x/time/rate"
)

// Client owns the install root and talks to the patch server.
// It is meant to drive one reconciliation and download sequence at a time.
type Client struct {
	cfg        *config.Config
	baseURL    string
	root       string
	fs         afero.Fs
	httpClient *http.Client
	limiter    *rate.Limiter
	progress   ProgressFunc
	state      TransferState
	log        *slog.Logger
}

// Option configures a Client
type Option func(c *Client)

// WithFs replaces the operating system filesystem, mostly for tests.
func WithFs(fs afero.Fs) Option {
	return func(c *Client) {
		c.fs = fs
	}
}

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithProgress sets the callback invoked for every downloaded chunk.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) {
		c.progress = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a new client
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if cfg.InstallDir == "" {
		return nil, fmt.Errorf("install dir is empty")
	}

	root, err := filepath.Abs(cfg.InstallDir)
	if err != nil {
		return nil, fmt.Errorf("install dir: %w", err)
	}

	c := &Client{
		cfg:     cfg,
		baseURL: cfg.BaseURL,
		root:    root,
		fs:      afero.NewOsFs(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(slog.String("item", "Client"))

	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < chunkSize {
			burst = chunkSize
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// Root returns the install directory.
func (c *Client) Root() string {
	return c.root
}

// Subscribe sets the progress callback for following update runs.
func (c *Client) Subscribe(fn ProgressFunc) {
	c.progress = fn
}

// IsUpdated scans the install root and compares its aggregate size with the manifest.
// An unreachable or malformed manifest is reported as not updated without error.
func (c *Client) IsUpdated(ctx context.Context) (bool, error) {
	local, err := Scan(c.fs, c.root)
	if err != nil {
		return false, fmt.Errorf("scan: %w", err)
	}
	for path := range local {
		c.log.Debug("Local entry", slog.String("path", path))
	}

	m, err := c.manifest(ctx)
	if err != nil {
		c.log.Warn("Cannot check update status, skipping", slog.Any("error", err))
		return false, nil
	}

	if !IsUpToDate(local, m) {
		c.log.Info(fmt.Sprintf("Not equals. Sum %d/Total: %d", local.Total(), m.TotalSize))
		return false, nil
	}
	c.log.Info("We are up to date")
	return true, nil
}

// UpdateGame deletes orphaned entries and downloads missing or stale files.
// When the manifest cannot be fetched the run is skipped and a nil report is returned.
func (c *Client) UpdateGame(ctx context.Context) (*Report, error) {
	start := time.Now()
	c.state = TransferState{}

	m, err := c.manifest(ctx)
	if err != nil {
		c.log.Warn("Cannot fetch manifest, skipping update", slog.Any("error", err))
		return nil, nil
	}

	local, err := Scan(c.fs, c.root)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	deleted, toFetch, err := c.Plan(local, m)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}

	results := c.Fetch(ctx, toFetch)
	report := newReport(start, m, deleted, results, c.state)
	c.log.Info(report.Summary())
	return report, nil
}
