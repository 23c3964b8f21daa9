// Package checker orchestrates the full regression loop: capture a page,
// load its baseline and calibrated tolerances from the store, run the
// comparator, and persist the results. The HTTP service, the MCP tools, and
// the CLI all drive this package.
package checker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vizdrift/vizdrift/calibrate"
	"github.com/vizdrift/vizdrift/capture"
	"github.com/vizdrift/vizdrift/compare"
	"github.com/vizdrift/vizdrift/flakiness"
	"github.com/vizdrift/vizdrift/store"
	"github.com/vizdrift/vizdrift/vistree"
)

// Checker owns the browser, the store, and the comparison policy.
type Checker struct {
	cfg     *Config
	store   *store.Store
	browser *capture.Browser
	logger  *slog.Logger
}

// New opens the store and prepares the browser connection (lazily started).
func New(cfg *Config, logger *slog.Logger) (*Checker, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, err
	}

	return &Checker{
		cfg:   cfg,
		store: st,
		browser: capture.NewBrowser(capture.BrowserConfig{
			RemoteURL: cfg.Browser.Remote,
			Logger:    logger,
		}),
		logger: logger,
	}, nil
}

// Store exposes the persistence layer to the HTTP service.
func (c *Checker) Store() *store.Store { return c.store }

// Close releases the browser and the store.
func (c *Checker) Close() {
	if err := c.browser.Close(); err != nil {
		c.logger.Warn("checker: browser close", "error", err)
	}
	if err := c.store.Close(); err != nil {
		c.logger.Warn("checker: store close", "error", err)
	}
}

func (c *Checker) captureOpts(pageID string) capture.Options {
	return capture.Options{
		PageID: pageID,
		Viewport: vistree.Viewport{
			Width:  c.cfg.Viewport.Width,
			Height: c.cfg.Viewport.Height,
		},
	}
}

// Snapshot captures the page and persists the result.
func (c *Checker) Snapshot(ctx context.Context, pageID, url string) (*vistree.VisualTreeAnalysis, error) {
	var a *vistree.VisualTreeAnalysis
	var err error
	if c.cfg.Browser.Static {
		a, err = capture.FetchStatic(ctx, nil, url, c.captureOpts(pageID))
	} else {
		a, err = c.browser.Capture(ctx, url, c.captureOpts(pageID))
	}
	if err != nil {
		return nil, err
	}
	if err := c.store.InsertSnapshot(ctx, a); err != nil {
		return nil, err
	}
	c.logger.Info("checker: snapshot stored",
		"page_id", pageID, "url", url, "elements", len(a.Elements),
		"groups", a.Statistics.GroupCount)
	return a, nil
}

// CheckReport is the outcome of one regression check.
type CheckReport struct {
	PageID     string                     `json:"pageId"`
	BaselineID string                     `json:"baselineId,omitempty"`
	CurrentID  string                     `json:"currentId"`
	FirstRun   bool                       `json:"firstRun"`
	Settings   vistree.ComparisonSettings `json:"settings"`
	Result     *vistree.ComparisonResult  `json:"result,omitempty"`
}

// Check captures the page, compares it against the stored baseline with the
// page's calibrated tolerances, and persists the run. The first capture of
// a page becomes its baseline and reports FirstRun.
func (c *Checker) Check(ctx context.Context, pageID, url string) (*CheckReport, error) {
	baseline, err := c.store.LatestSnapshot(ctx, pageID)
	if err != nil {
		return nil, err
	}

	current, err := c.Snapshot(ctx, pageID, url)
	if err != nil {
		return nil, err
	}

	if baseline == nil {
		return &CheckReport{
			PageID:    pageID,
			CurrentID: current.ID,
			FirstRun:  true,
			Settings:  vistree.DefaultSettings(),
		}, nil
	}

	settings, err := c.store.LatestSettings(ctx, pageID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		def := vistree.DefaultSettings()
		settings = &def
	}

	result := c.CompareSnapshots(baseline, current, *settings)

	if _, err := c.store.InsertComparison(ctx, pageID, baseline.ID, current.ID, result); err != nil {
		return nil, err
	}

	c.logger.Info("checker: check complete",
		"page_id", pageID, "similarity", result.Similarity,
		"differences", len(result.Differences))

	return &CheckReport{
		PageID:     pageID,
		BaselineID: baseline.ID,
		CurrentID:  current.ID,
		Settings:   *settings,
		Result:     result,
	}, nil
}

// CompareSnapshots runs the settings round-trip: ignore selectors are
// applied to both sides before the comparator sees them.
func (c *Checker) CompareSnapshots(baseline, current *vistree.VisualTreeAnalysis, settings vistree.ComparisonSettings) *vistree.ComparisonResult {
	baseline = compare.ApplyIgnore(baseline, settings.IgnoreElements)
	current = compare.ApplyIgnore(current, settings.IgnoreElements)
	return compare.Snapshots(baseline, current, compare.Options{Settings: settings})
}

// sample captures N snapshots of the page, separated by the sample delay.
func (c *Checker) sample(ctx context.Context, pageID, url string, n int) ([]*vistree.VisualTreeAnalysis, error) {
	if n < flakiness.MinSamples {
		n = c.cfg.Samples
	}
	samples := make([]*vistree.VisualTreeAnalysis, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			select {
			case <-time.After(c.cfg.SampleDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		a, err := c.Snapshot(ctx, pageID, url)
		if err != nil {
			return nil, fmt.Errorf("checker: sample %d/%d: %w", i+1, n, err)
		}
		samples = append(samples, a)
	}
	return samples, nil
}

// CalibratePage captures repeated samples, derives a tolerance profile, and
// persists it for later checks.
func (c *Checker) CalibratePage(ctx context.Context, pageID, url string, samples int) (*calibrate.Result, error) {
	set, err := c.sample(ctx, pageID, url, samples)
	if err != nil {
		return nil, err
	}

	res, err := calibrate.Calibrate(set, calibrate.Options{
		Strictness:            calibrate.Strictness(c.cfg.Strictness),
		DetectDynamicElements: true,
	})
	if err != nil {
		return nil, err
	}

	if _, err := c.store.InsertCalibration(ctx, pageID, c.cfg.Strictness,
		len(set), res.Confidence, &res.Settings); err != nil {
		return nil, err
	}

	c.logger.Info("checker: calibration stored",
		"page_id", pageID, "samples", len(set),
		"confidence", res.Confidence,
		"position_tolerance", res.Settings.PositionTolerance,
		"size_tolerance", res.Settings.SizeTolerance,
		"dynamic_paths", len(res.DynamicPaths))

	return res, nil
}

// Flakiness captures repeated samples and reports per-path variance without
// deriving settings.
func (c *Checker) Flakiness(ctx context.Context, pageID, url string, samples int) (*vistree.FlakinessAnalysis, error) {
	set, err := c.sample(ctx, pageID, url, samples)
	if err != nil {
		return nil, err
	}
	return flakiness.Detect(set, flakiness.Options{})
}
