package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/andresuchdata/inventory-abc/internal/config"
	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/shopspring/decimal"
)

// Result is an annotated inventory table and its summary
type Result struct {
	Items   []domain.AnalyzedItem
	Summary domain.Summary
}

// Analyzer runs the classifier and the economics calculator over a table.
type Analyzer struct {
	cfg        config.AnalysisConfig
	classifier *Classifier
	economics  EconomicsCalculator
}

// NewAnalyzer creates an analyzer for the given constants.
func NewAnalyzer(cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		cfg:        cfg,
		classifier: NewClassifier(cfg.ClassABoundary, cfg.ClassBBoundary),
		economics: EconomicsCalculator{
			SafetyStock:  cfg.SafetyStock,
			OrderingCost: cfg.OrderingCost,
			HoldingRate:  cfg.HoldingRate,
		},
	}
}

// Config returns the constants the analyzer was built with.
func (a *Analyzer) Config() config.AnalysisConfig {
	return a.cfg
}

// Analyze validates every item, classifies the table and computes the order
// economics. Any invalid item fails the whole table.
func (a *Analyzer) Analyze(items []domain.InventoryItem) (*Result, error) {
	for i, item := range items {
		if err := Validate(item); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	analyzed := a.classifier.Classify(items)
	for i := range analyzed {
		if err := a.economics.Apply(&analyzed[i]); err != nil {
			return nil, err
		}
		if err := checkDerived(analyzed[i]); err != nil {
			return nil, err
		}
	}

	summary := Summarize(analyzed)
	if !isFinite(summary.TotalValue) {
		return nil, fmt.Errorf("%w: total value out of range", domain.ErrInvalidItem)
	}

	return &Result{
		Items:   analyzed,
		Summary: summary,
	}, nil
}

// checkDerived rejects items whose finite inputs still overflow a computed field.
func checkDerived(item domain.AnalyzedItem) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"Annual_Usage", item.AnnualUsage},
		{"Cumulative_Percentage", item.CumulativePercentage},
		{"Reorder_Point", item.ReorderPoint},
		{"Holding_Cost", item.HoldingCost},
		{"EOQ", item.EOQ},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return fmt.Errorf("%w: %q: derived value %s out of range", domain.ErrInvalidItem, item.Name, f.name)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate rejects items with an empty name or negative / non-finite numbers.
func Validate(item domain.InventoryItem) error {
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: Item_Name is required", domain.ErrInvalidItem)
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"Quantity", item.Quantity},
		{"Unit_Cost", item.UnitCost},
		{"Lead_Time_Days", item.LeadTimeDays},
	}
	for _, f := range fields {
		if !isFinite(f.value) {
			return fmt.Errorf("%w: %q: %s must be a finite number", domain.ErrInvalidItem, item.Name, f.name)
		}
		if f.value < 0 {
			return fmt.Errorf("%w: %q: %s cannot be negative, got %v", domain.ErrInvalidItem, item.Name, f.name, f.value)
		}
	}
	return nil
}

// Summarize counts items per class and totals their annual usage.
func Summarize(items []domain.AnalyzedItem) domain.Summary {
	summary := domain.Summary{TotalItems: len(items)}
	total := decimal.Zero

	for _, item := range items {
		switch item.Class {
		case domain.ClassA:
			summary.AItems++
		case domain.ClassB:
			summary.BItems++
		case domain.ClassC:
			summary.CItems++
		}
		total = total.Add(AnnualUsage(item.InventoryItem))
	}

	summary.TotalValue = total.InexactFloat64()
	return summary
}
