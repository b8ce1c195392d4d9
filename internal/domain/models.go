// internal/domain/models.go
package domain

import (
	"fmt"
	"strings"
)

// InventoryItem is a single input row
type InventoryItem struct {
	Name         string  `json:"Item_Name"`
	Quantity     float64 `json:"Quantity"`
	UnitCost     float64 `json:"Unit_Cost"`
	LeadTimeDays float64 `json:"Lead_Time_Days"`
}

// AnalyzedItem is an input row annotated with its ABC and order economics fields
type AnalyzedItem struct {
	InventoryItem

	AnnualUsage          float64  `json:"Annual_Usage"`
	CumulativePercentage float64  `json:"Cumulative_Percentage"`
	Class                ABCClass `json:"ABC_Class"`
	ReorderPoint         float64  `json:"Reorder_Point"`
	HoldingCost          float64  `json:"Holding_Cost"`
	EOQ                  float64  `json:"EOQ"`
}

// Critical reports whether stock on hand is at or below the reorder point.
func (a AnalyzedItem) Critical() bool {
	return a.Quantity <= a.ReorderPoint
}

// Summary aggregates class counts and total value of an analysis
type Summary struct {
	TotalItems int     `json:"total_items"`
	AItems     int     `json:"a_items"`
	BItems     int     `json:"b_items"`
	CItems     int     `json:"c_items"`
	TotalValue float64 `json:"total_value"`
}

// Count returns the number of items in the given class.
func (s Summary) Count(class ABCClass) int {
	switch class {
	case ClassA:
		return s.AItems
	case ClassB:
		return s.BItems
	case ClassC:
		return s.CItems
	}
	return 0
}

// AnalysisReport is the full Analyze response payload
type AnalysisReport struct {
	AnalysisID      string         `json:"analysis_id"`
	Results         []AnalyzedItem `json:"results"`
	BarChart        string         `json:"bar_chart"`
	CumulativeChart string         `json:"cumulative_chart"`
	Summary         Summary        `json:"summary"`
}

// CriticalItems returns the analyzed items that should trigger a low stock alert.
func (r *AnalysisReport) CriticalItems() []CriticalItem {
	var items []CriticalItem
	for _, item := range r.Results {
		if item.Critical() {
			items = append(items, CriticalItem{
				Name:         item.Name,
				Quantity:     item.Quantity,
				ReorderPoint: item.ReorderPoint,
			})
		}
	}
	return items
}

// ItemInput mirrors InventoryItem with optional fields so that missing JSON
// keys can be told apart from zero values.
type ItemInput struct {
	Name         *string  `json:"Item_Name"`
	Quantity     *float64 `json:"Quantity"`
	UnitCost     *float64 `json:"Unit_Cost"`
	LeadTimeDays *float64 `json:"Lead_Time_Days"`
}

// ToItem converts the input into an InventoryItem, failing when a required
// field is absent. index is the row position used in the error message.
func (in ItemInput) ToItem(index int) (InventoryItem, error) {
	var missing []string
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		missing = append(missing, "Item_Name")
	}
	if in.Quantity == nil {
		missing = append(missing, "Quantity")
	}
	if in.UnitCost == nil {
		missing = append(missing, "Unit_Cost")
	}
	if in.LeadTimeDays == nil {
		missing = append(missing, "Lead_Time_Days")
	}
	if len(missing) > 0 {
		return InventoryItem{}, fmt.Errorf("%w: row %d: missing %s", ErrInvalidItem, index, strings.Join(missing, ", "))
	}

	return InventoryItem{
		Name:         strings.TrimSpace(*in.Name),
		Quantity:     *in.Quantity,
		UnitCost:     *in.UnitCost,
		LeadTimeDays: *in.LeadTimeDays,
	}, nil
}

// CriticalItem is an item whose stock fell to or below its reorder point
type CriticalItem struct {
	Name         string  `json:"Item_Name"`
	Quantity     float64 `json:"Quantity"`
	ReorderPoint float64 `json:"Reorder_Point"`
}

// AlertResult reports the delivery outcome for one critical item
type AlertResult struct {
	Item      string `json:"item"`
	AlertSent bool   `json:"alert_sent"`
	Error     string `json:"error,omitempty"`
}

// AlertReport is the Send alerts response payload
type AlertReport struct {
	Sent    int           `json:"sent"`
	Results []AlertResult `json:"results"`
}
