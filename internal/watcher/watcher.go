// Package watcher analyzes inventory files as they are dropped into a
// directory.
package watcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/source"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const (
	DefaultDebounce = 2 * time.Second
	reportSuffix    = ".report.json"
)

type Analyzer interface {
	Analyze(ctx context.Context, items []domain.InventoryItem) (*domain.AnalysisReport, error)
}

type AlertSender interface {
	SendAlerts(ctx context.Context, items []domain.CriticalItem) (*domain.AlertReport, error)
}

// Watcher runs an analysis for every .csv or .xlsx file created or written
// in Dir and stores the report next to it.
type Watcher struct {
	dir      string
	analyzer Analyzer
	alerts   AlertSender
	debounce time.Duration
}

// New creates a watcher. A nil alerts sender disables notifications.
func New(dir string, analyzer Analyzer, alerts AlertSender, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		analyzer: analyzer,
		alerts:   alerts,
		debounce: debounce,
	}
}

// Run blocks until ctx is cancelled. Files are processed one at a time;
// failures are logged and the watcher keeps going.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	log.Info().Str("dir", w.dir).Dur("debounce", w.debounce).Msg("watching for inventory files")

	ready := make(chan string)
	var (
		mu     sync.Mutex
		timers = make(map[string]*time.Timer)
	)
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()

		if t, ok := timers[path]; ok {
			t.Reset(w.debounce)
			return
		}
		timers[path] = time.AfterFunc(w.debounce, func() {
			mu.Lock()
			delete(timers, path)
			mu.Unlock()

			select {
			case ready <- path:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("dir", w.dir).Msg("watcher stopped")
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if shouldHandle(event) {
				schedule(event.Name)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Str("dir", w.dir).Msg("watcher error")

		case path := <-ready:
			if err := w.Process(ctx, path); err != nil {
				log.Error().Err(err).Str("file", path).Msg("inventory file analysis failed")
			}
		}
	}
}

// Process analyzes a single file and writes its report.
func (w *Watcher) Process(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	items, err := source.Parse(path, f)
	f.Close()
	if err != nil {
		return err
	}

	report, err := w.analyzer.Analyze(ctx, items)
	if err != nil {
		return err
	}

	out := ReportPath(path)
	if err := WriteReport(out, report); err != nil {
		return err
	}

	critical := report.CriticalItems()
	alertsSent := 0
	if w.alerts != nil && len(critical) > 0 {
		alertReport, err := w.alerts.SendAlerts(ctx, critical)
		if err != nil {
			return fmt.Errorf("send alerts for %s: %w", path, err)
		}
		alertsSent = alertReport.Sent
	}

	log.Info().
		Str("file", path).
		Str("report", out).
		Str("analysis_id", report.AnalysisID).
		Int("total_items", report.Summary.TotalItems).
		Int("critical_items", len(critical)).
		Int("alerts_sent", alertsSent).
		Msg("inventory file analyzed")
	return nil
}

// ReportPath returns where the report for an inventory file is written:
// stock.csv becomes stock.report.json.
func ReportPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + reportSuffix
}

// WriteReport stores report as indented JSON.
func WriteReport(path string, report *domain.AnalysisReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

func shouldHandle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return source.IsInventoryFile(base)
}
