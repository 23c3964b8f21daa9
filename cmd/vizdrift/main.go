// Command vizdrift captures structural layout snapshots and compares them
// against calibrated baselines.
//
// Usage:
//
//	vizdrift -capture https://example.com            # capture and store a snapshot
//	vizdrift -check https://example.com              # compare against the baseline
//	vizdrift -calibrate https://example.com          # derive tolerances from samples
//	vizdrift -flaky https://example.com              # report unstable elements
//	vizdrift -serve :8080                            # run the HTTP API
//	vizdrift -config vizdrift.yaml -check-all        # check every configured page
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/vizdrift/vizdrift/checker"
	"github.com/vizdrift/vizdrift/service"
)

func main() {
	configPath := flag.String("config", "", "path to vizdrift.yaml config file")
	captureURL := flag.String("capture", "", "capture a single URL and store the snapshot")
	checkURL := flag.String("check", "", "capture a URL and compare against its baseline")
	calibrateURL := flag.String("calibrate", "", "sample a URL repeatedly and derive tolerances")
	flakyURL := flag.String("flaky", "", "sample a URL repeatedly and report unstable elements")
	checkAll := flag.Bool("check-all", false, "check every page listed in the config")
	serveAddr := flag.String("serve", "", "listen address for the HTTP API (e.g. :8080)")
	pageID := flag.String("page", "", "page identifier (defaults to the URL)")
	samples := flag.Int("samples", 0, "captures per calibration run (default from config)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("vizdrift: config", "error", err)
		os.Exit(1)
	}

	ck, err := checker.New(cfg, logger)
	if err != nil {
		logger.Error("vizdrift: init", "error", err)
		os.Exit(1)
	}
	defer ck.Close()

	if err := run(ctx, logger, ck, cfg, runFlags{
		captureURL:   *captureURL,
		checkURL:     *checkURL,
		calibrateURL: *calibrateURL,
		flakyURL:     *flakyURL,
		checkAll:     *checkAll,
		serveAddr:    *serveAddr,
		pageID:       *pageID,
		samples:      *samples,
	}); err != nil {
		logger.Error("vizdrift: fatal", "error", err)
		os.Exit(1)
	}
}

type runFlags struct {
	captureURL   string
	checkURL     string
	calibrateURL string
	flakyURL     string
	checkAll     bool
	serveAddr    string
	pageID       string
	samples      int
}

func loadConfig(path string) (*checker.Config, error) {
	if path == "" {
		return &checker.Config{}, nil
	}
	return checker.LoadConfigFile(path)
}

func run(ctx context.Context, logger *slog.Logger, ck *checker.Checker, cfg *checker.Config, f runFlags) error {
	page := func(url string) string {
		if f.pageID != "" {
			return f.pageID
		}
		return url
	}

	switch {
	case f.captureURL != "":
		a, err := ck.Snapshot(ctx, page(f.captureURL), f.captureURL)
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		return printJSON(a)

	case f.checkURL != "":
		report, err := ck.Check(ctx, page(f.checkURL), f.checkURL)
		if err != nil {
			return fmt.Errorf("check: %w", err)
		}
		return printJSON(report)

	case f.calibrateURL != "":
		res, err := ck.CalibratePage(ctx, page(f.calibrateURL), f.calibrateURL, f.samples)
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
		return printJSON(res)

	case f.flakyURL != "":
		res, err := ck.Flakiness(ctx, page(f.flakyURL), f.flakyURL, f.samples)
		if err != nil {
			return fmt.Errorf("flakiness: %w", err)
		}
		return printJSON(res)

	case f.checkAll:
		return runCheckAll(ctx, logger, ck, cfg)

	case f.serveAddr != "":
		return runServe(ctx, logger, ck, f.serveAddr)
	}

	fmt.Fprintln(os.Stderr, "usage: vizdrift -capture <url> | -check <url> | -calibrate <url> | -flaky <url> | -check-all | -serve <addr>")
	os.Exit(1)
	return nil
}

// runCheckAll checks every configured page, continuing past per-page errors,
// and fails if any page regressed or errored.
func runCheckAll(ctx context.Context, logger *slog.Logger, ck *checker.Checker, cfg *checker.Config) error {
	if len(cfg.Pages) == 0 {
		return errors.New("check-all: no pages configured")
	}

	failed := 0
	for _, p := range cfg.Pages {
		report, err := ck.Check(ctx, p.ID, p.URL)
		if err != nil {
			logger.Error("vizdrift: page check failed", "page_id", p.ID, "error", err)
			failed++
			continue
		}
		if report.FirstRun {
			logger.Info("vizdrift: baseline created", "page_id", p.ID)
			continue
		}
		if !report.Result.Identical() {
			logger.Warn("vizdrift: page changed",
				"page_id", p.ID,
				"similarity", report.Result.Similarity,
				"differences", len(report.Result.Differences))
			failed++
		}
		printJSON(report)
	}

	if failed > 0 {
		return fmt.Errorf("check-all: %d of %d pages failed", failed, len(cfg.Pages))
	}
	return nil
}

func runServe(ctx context.Context, logger *slog.Logger, ck *checker.Checker, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: service.NewServer(ck, logger),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("vizdrift: http listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	os.Stdout.Write([]byte("\n"))
	return nil
}
