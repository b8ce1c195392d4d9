package watcher

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/fsnotify/fsnotify"
)

type stubAnalyzer struct {
	mu    sync.Mutex
	calls int
	items []domain.InventoryItem
	err   error
}

func (s *stubAnalyzer) Analyze(_ context.Context, items []domain.InventoryItem) (*domain.AnalysisReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.items = items
	if s.err != nil {
		return nil, s.err
	}

	results := make([]domain.AnalyzedItem, len(items))
	for i, item := range items {
		results[i] = domain.AnalyzedItem{InventoryItem: item, ReorderPoint: 50}
	}
	return &domain.AnalysisReport{
		AnalysisID: "test",
		Results:    results,
		Summary:    domain.Summary{TotalItems: len(items)},
	}, nil
}

func (s *stubAnalyzer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubAlerts struct {
	items []domain.CriticalItem
}

func (s *stubAlerts) SendAlerts(_ context.Context, items []domain.CriticalItem) (*domain.AlertReport, error) {
	s.items = items
	return &domain.AlertReport{Sent: len(items)}, nil
}

const inventoryCSV = "Item_Name,Quantity,Unit_Cost,Lead_Time_Days\nLow,10,5,7\nHigh,500,1,7\n"

func TestReportPath(t *testing.T) {
	testCases := map[string]string{
		"stock.csv":         "stock.report.json",
		"/data/in/May.XLSX": "/data/in/May.report.json",
		"dir/file.name.csv": "dir/file.name.report.json",
	}
	for in, want := range testCases {
		if got := ReportPath(in); got != want {
			t.Errorf("ReportPath(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestShouldHandle(t *testing.T) {
	testCases := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "/in/stock.csv", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/in/stock.xlsx", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "/in/stock.csv", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/in/stock.csv", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "/in/stock.report.json", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/in/.stock.csv", Op: fsnotify.Create}, false},
		{fsnotify.Event{Name: "/in/~$stock.xlsx", Op: fsnotify.Create}, false},
	}
	for _, tc := range testCases {
		if got := shouldHandle(tc.event); got != tc.want {
			t.Errorf("shouldHandle(%v): expected %v, got %v", tc.event, tc.want, got)
		}
	}
}

func TestProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.csv")
	if err := os.WriteFile(path, []byte(inventoryCSV), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	analyzer := &stubAnalyzer{}
	alerts := &stubAlerts{}
	w := New(dir, analyzer, alerts, time.Millisecond)

	if err := w.Process(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stock.report.json"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	var report domain.AnalysisReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid report json: %v", err)
	}
	if report.Summary.TotalItems != 2 {
		t.Errorf("Expected 2 items in report, got %d", report.Summary.TotalItems)
	}

	if len(alerts.items) != 1 || alerts.items[0].Name != "Low" {
		t.Errorf("Expected one alert for Low, got %+v", alerts.items)
	}
}

func TestProcess_NoAlertsWhenDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.csv")
	if err := os.WriteFile(path, []byte(inventoryCSV), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	w := New(dir, &stubAnalyzer{}, nil, 0)
	if w.debounce != DefaultDebounce {
		t.Errorf("Expected default debounce, got %v", w.debounce)
	}
	if err := w.Process(context.Background(), path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestProcess_AnalyzeError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stock.csv")
	if err := os.WriteFile(path, []byte(inventoryCSV), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	boom := errors.New("boom")
	w := New(dir, &stubAnalyzer{err: boom}, nil, time.Millisecond)
	if err := w.Process(context.Background(), path); !errors.Is(err, boom) {
		t.Fatalf("Expected analyzer error, got %v", err)
	}
	if _, err := os.Stat(ReportPath(path)); !os.IsNotExist(err) {
		t.Error("report should not be written when analysis fails")
	}
}

func TestRun_AnalyzesNewFile(t *testing.T) {
	dir := t.TempDir()
	analyzer := &stubAnalyzer{}
	w := New(dir, analyzer, nil, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	reportPath := filepath.Join(dir, "drop.report.json")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		// Rewrite until the watcher is registered and picks the file up.
		if err := os.WriteFile(filepath.Join(dir, "drop.csv"), []byte(inventoryCSV), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(100 * time.Millisecond)
		if _, err := os.Stat(reportPath); err == nil {
			break
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Fatalf("Expected report to be written: %v", err)
	}
	if analyzer.callCount() == 0 {
		t.Error("Expected analyzer to be called")
	}
}
