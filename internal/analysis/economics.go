package analysis

import (
	"fmt"
	"math"

	"github.com/andresuchdata/inventory-abc/internal/domain"
)

// demandPeriodDays converts the quantity into a daily demand rate.
const demandPeriodDays = 30

// EconomicsCalculator computes reorder points and economic order quantities.
// Every item is computed on its own; order does not matter.
type EconomicsCalculator struct {
	SafetyStock  float64
	OrderingCost float64
	HoldingRate  float64
}

// ReorderPoint = (quantity / 30) × lead time + safety stock
func (e EconomicsCalculator) ReorderPoint(item domain.InventoryItem) float64 {
	return (item.Quantity/demandPeriodDays)*item.LeadTimeDays + e.SafetyStock
}

// HoldingCost is the yearly cost of holding one unit.
func (e EconomicsCalculator) HoldingCost(item domain.InventoryItem) float64 {
	return item.UnitCost * e.HoldingRate
}

// EOQ = sqrt(2 × quantity × ordering cost / holding cost)
func (e EconomicsCalculator) EOQ(item domain.InventoryItem) (float64, error) {
	holdingCost := e.HoldingCost(item)
	if holdingCost == 0 {
		return 0, fmt.Errorf("%w: item %q", domain.ErrUndefinedEOQ, item.Name)
	}
	return math.Sqrt((2 * item.Quantity * e.OrderingCost) / holdingCost), nil
}

// Apply fills the reorder point, holding cost and EOQ fields of item.
func (e EconomicsCalculator) Apply(item *domain.AnalyzedItem) error {
	eoq, err := e.EOQ(item.InventoryItem)
	if err != nil {
		return err
	}

	item.ReorderPoint = e.ReorderPoint(item.InventoryItem)
	item.HoldingCost = e.HoldingCost(item.InventoryItem)
	item.EOQ = eoq
	return nil
}
