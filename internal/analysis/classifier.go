package analysis

import (
	"sort"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Classifier assigns ABC classes from each item's share of cumulative annual usage.
type Classifier struct {
	boundaryA float64
	boundaryB float64
}

// NewClassifier creates a classifier. Items whose cumulative percentage is at
// most boundaryA are class A, at most boundaryB class B, everything else C.
func NewClassifier(boundaryA, boundaryB float64) *Classifier {
	return &Classifier{
		boundaryA: boundaryA,
		boundaryB: boundaryB,
	}
}

// Classify returns the items annotated with annual usage, cumulative
// percentage and class, sorted by annual usage descending. Ties keep their
// input order.
//
// When the total annual usage is zero there is no value to rank by, so every
// item is reported at 100% and classified C.
func (c *Classifier) Classify(items []domain.InventoryItem) []domain.AnalyzedItem {
	if len(items) == 0 {
		return []domain.AnalyzedItem{}
	}

	// Usage is summed in decimal so the last running total equals the grand
	// total exactly and the final percentage is exactly 100.
	usage := make([]decimal.Decimal, len(items))
	total := decimal.Zero
	for i, item := range items {
		usage[i] = AnnualUsage(item)
		total = total.Add(usage[i])
	}

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return usage[order[i]].GreaterThan(usage[order[j]])
	})

	analyzed := make([]domain.AnalyzedItem, len(items))
	running := decimal.Zero
	for rank, idx := range order {
		item := domain.AnalyzedItem{
			InventoryItem: items[idx],
			AnnualUsage:   usage[idx].InexactFloat64(),
		}

		if total.IsZero() {
			item.CumulativePercentage = 100
			item.Class = domain.ClassC
		} else {
			running = running.Add(usage[idx])
			item.CumulativePercentage = running.Div(total).Mul(hundred).InexactFloat64()
			item.Class = c.ClassOf(item.CumulativePercentage)
		}

		analyzed[rank] = item
	}

	return analyzed
}

// ClassOf maps a cumulative percentage to its class.
func (c *Classifier) ClassOf(cumulativePercentage float64) domain.ABCClass {
	switch {
	case cumulativePercentage <= c.boundaryA:
		return domain.ClassA
	case cumulativePercentage <= c.boundaryB:
		return domain.ClassB
	default:
		return domain.ClassC
	}
}

// AnnualUsage is quantity times unit cost.
func AnnualUsage(item domain.InventoryItem) decimal.Decimal {
	return decimal.NewFromFloat(item.Quantity).Mul(decimal.NewFromFloat(item.UnitCost))
}
