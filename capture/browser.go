// Package capture produces VisualTreeAnalysis snapshots: the extraction
// collaborator in front of the pure core. It drives headless Chrome through
// Rod to extract rendered element records, scores their importance, and
// runs the grouping engine over the result. A static HTTP path provides a
// structure-only fallback when no browser is available.
package capture

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// BrowserConfig configures the Chrome lifecycle.
type BrowserConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless toggles headless mode for locally launched Chrome.
	Headless bool

	Logger *slog.Logger
}

func (c *BrowserConfig) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser manages one Chrome connection shared by captures.
type Browser struct {
	cfg    BrowserConfig
	mu     sync.Mutex
	rod    *rod.Browser
	lnch   *launcher.Launcher
	closed bool
}

// NewBrowser creates a Browser. Call Start before capturing.
func NewBrowser(cfg BrowserConfig) *Browser {
	cfg.defaults()
	if cfg.RemoteURL == "" {
		cfg.Headless = true
	}
	return &Browser{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (b *Browser) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("capture: browser is closed")
	}
	if b.rod != nil {
		return nil
	}

	wsURL := b.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(b.cfg.Headless)
		l = l.Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("capture: launch chrome: %w", err)
		}
		wsURL = u
		b.lnch = l
		b.cfg.Logger.Info("capture: launched local chrome", "url", wsURL)
	} else {
		b.cfg.Logger.Info("capture: connecting to remote chrome", "url", wsURL)
	}

	br := rod.New().ControlURL(wsURL)
	if err := br.Connect(); err != nil {
		return fmt.Errorf("capture: connect: %w", err)
	}
	b.rod = br
	return nil
}

// Rod returns the underlying handle, starting the browser on first use.
func (b *Browser) Rod() (*rod.Browser, error) {
	b.mu.Lock()
	started := b.rod != nil
	b.mu.Unlock()
	if !started {
		if err := b.Start(); err != nil {
			return nil, err
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rod, nil
}

// Close shuts down the connection and any locally launched Chrome.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.rod != nil {
		if err := b.rod.Close(); err != nil {
			return err
		}
		b.rod = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return nil
}
