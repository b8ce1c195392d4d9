package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/andresuchdata/inventory-abc/internal/analysis"
	"github.com/andresuchdata/inventory-abc/internal/cache"
	"github.com/andresuchdata/inventory-abc/internal/config"
	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/drive"
	"github.com/andresuchdata/inventory-abc/internal/notify"
	"github.com/andresuchdata/inventory-abc/internal/report"
	"github.com/andresuchdata/inventory-abc/internal/service"
	"github.com/andresuchdata/inventory-abc/internal/source"
	"github.com/andresuchdata/inventory-abc/internal/storage"
	"github.com/andresuchdata/inventory-abc/internal/watcher"
	"github.com/andresuchdata/inventory-abc/pkg/logger"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const appKey ctxKey = "app"

// app holds what every command shares once configuration is loaded.
type app struct {
	cfg       *config.Config
	cache     cache.AnalysisCache
	inventory *service.InventoryService
	alerts    *service.AlertService
}

func setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := c.String("log-level")
	if level == "" {
		level = cfg.LogLevel
	}
	logger.SetLevel(level)

	analysisCache, err := cache.NewAnalysisCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("analysis cache unavailable, continuing without cache")
		analysisCache = cache.NewNoopAnalysisCache()
	}

	notifier := notify.NewNotifier(notify.NewMailer(cfg.Mail), cfg.Alert.Concurrency)
	a := &app{
		cfg:   cfg,
		cache: analysisCache,
		inventory: service.NewInventoryService(
			analysis.NewAnalyzer(cfg.Analysis),
			report.NewPNGRenderer(),
			analysisCache,
		),
		alerts: service.NewAlertService(notifier, cfg.Alert.Recipient),
	}

	c.Context = context.WithValue(c.Context, appKey, a)
	return nil
}

func appFrom(c *cli.Context) (*app, error) {
	a, ok := c.Context.Value(appKey).(*app)
	if !ok || a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func (a *app) objectStorage() (storage.ObjectStorage, error) {
	if a.cfg.Storage.Endpoint == "" {
		return nil, nil
	}
	client, err := storage.NewMinioClient(a.cfg.Storage)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) sourceDeps(ctx context.Context, uri string) (source.Dependencies, error) {
	var deps source.Dependencies

	if strings.HasPrefix(uri, "s3://") {
		store, err := a.objectStorage()
		if err != nil {
			return deps, err
		}
		deps.Storage = store
	}
	if strings.HasPrefix(uri, "drive://") && a.cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, a.cfg.Drive.CredentialsJSON)
		if err != nil {
			return deps, err
		}
		deps.Drive = driveService
	}
	return deps, nil
}

// resolveSource expands db:<table> into a postgres URL on dbURL.
func resolveSource(uri, dbURL string) (string, error) {
	table, ok := strings.CutPrefix(uri, "db:")
	if !ok {
		return uri, nil
	}
	if dbURL == "" {
		return "", fmt.Errorf("source %s needs --db-url or DATABASE_URL", uri)
	}

	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("invalid database url: %w", err)
	}
	if table != "" {
		q := u.Query()
		q.Set("table", table)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (a *app) loadItems(c *cli.Context) ([]domain.InventoryItem, error) {
	uri, err := resolveSource(c.String("source"), c.String("db-url"))
	if err != nil {
		return nil, err
	}

	deps, err := a.sourceDeps(c.Context, uri)
	if err != nil {
		return nil, err
	}

	loader, err := source.Open(uri, deps)
	if err != nil {
		return nil, err
	}

	items, err := loader.Load(c.Context)
	if err != nil {
		return nil, err
	}
	logger.Log.Debug().Str("source", c.String("source")).Int("items", len(items)).Msg("inventory loaded")
	return items, nil
}

func runAnalyze(c *cli.Context) error {
	a, err := appFrom(c)
	if err != nil {
		return err
	}
	defer a.cache.Close()

	items, err := a.loadItems(c)
	if err != nil {
		return err
	}

	rep, err := a.inventory.Analyze(c.Context, items)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		logger.Log.Info().Str("file", out).Msg("report written")
	} else {
		fmt.Fprintln(c.App.Writer, string(data))
	}

	charts, err := decodeCharts(rep)
	if err != nil {
		return err
	}

	if dir := c.String("charts-dir"); dir != "" {
		if err := writeCharts(dir, charts); err != nil {
			return err
		}
	}

	if prefix := c.String("upload-prefix"); prefix != "" {
		if err := a.upload(c.Context, prefix, data, charts); err != nil {
			return err
		}
	}

	if c.Bool("alert") {
		return a.sendAlerts(c.Context, rep)
	}
	return nil
}

func runAlert(c *cli.Context) error {
	a, err := appFrom(c)
	if err != nil {
		return err
	}
	defer a.cache.Close()

	items, err := a.loadItems(c)
	if err != nil {
		return err
	}

	rep, err := a.inventory.Analyze(c.Context, items)
	if err != nil {
		return err
	}
	return a.sendAlerts(c.Context, rep)
}

func (a *app) sendAlerts(ctx context.Context, rep *domain.AnalysisReport) error {
	critical := rep.CriticalItems()
	if len(critical) == 0 {
		logger.Log.Info().Msg("no items at or below their reorder point")
		return nil
	}

	ctx, cancel := signalContext(ctx)
	defer cancel()

	alertReport, err := a.alerts.SendAlerts(ctx, critical)
	if err != nil {
		return err
	}

	for _, r := range alertReport.Results {
		if !r.AlertSent {
			logger.Log.Warn().Str("item", r.Item).Str("error", r.Error).Msg("alert not sent")
		}
	}
	logger.Log.Info().
		Int("critical_items", len(critical)).
		Int("sent", alertReport.Sent).
		Msgf("%d alerts sent", alertReport.Sent)
	return nil
}

func runWatch(c *cli.Context) error {
	a, err := appFrom(c)
	if err != nil {
		return err
	}
	defer a.cache.Close()

	var alerts watcher.AlertSender
	if c.Bool("alert") {
		alerts = a.alerts
	}

	ctx, cancel := signalContext(c.Context)
	defer cancel()

	return watcher.New(c.String("dir"), a.inventory, alerts, c.Duration("debounce")).Run(ctx)
}

func runCacheClear(c *cli.Context) error {
	a, err := appFrom(c)
	if err != nil {
		return err
	}
	defer a.cache.Close()

	if !a.cfg.Cache.Enabled {
		logger.Log.Info().Msg("cache is disabled, nothing to clear")
		return nil
	}
	if err := a.cache.InvalidateAll(c.Context); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	logger.Log.Info().Msg("analysis cache cleared")
	return nil
}

type chartFile struct {
	name string
	data []byte
}

func decodeCharts(rep *domain.AnalysisReport) ([]chartFile, error) {
	bar, err := report.DecodeDataURI(rep.BarChart)
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	curve, err := report.DecodeDataURI(rep.CumulativeChart)
	if err != nil {
		return nil, fmt.Errorf("cumulative chart: %w", err)
	}
	return []chartFile{
		{name: "bar_chart.png", data: bar},
		{name: "cumulative_chart.png", data: curve},
	}, nil
}

func writeCharts(dir string, charts []chartFile) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create charts dir: %w", err)
	}
	for _, chart := range charts {
		p := filepath.Join(dir, chart.name)
		if err := os.WriteFile(p, chart.data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
		logger.Log.Info().Str("file", p).Msg("chart written")
	}
	return nil
}

func (a *app) upload(ctx context.Context, prefix string, reportJSON []byte, charts []chartFile) error {
	store, err := a.objectStorage()
	if err != nil {
		return err
	}
	if store == nil {
		return fmt.Errorf("--upload-prefix needs STORAGE_ENDPOINT to be configured")
	}

	if err := store.UploadObject(ctx, path.Join(prefix, "report.json"), reportJSON, "application/json"); err != nil {
		return err
	}
	for _, chart := range charts {
		if err := store.UploadObject(ctx, path.Join(prefix, chart.name), chart.data, "image/png"); err != nil {
			return err
		}
	}
	logger.Log.Info().Str("prefix", prefix).Msg("report uploaded")
	return nil
}
