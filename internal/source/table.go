package source

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/inventory-abc/internal/domain"
)

const (
	colName     = "item_name"
	colQuantity = "quantity"
	colUnitCost = "unit_cost"
	colLeadTime = "lead_time_days"
)

var requiredColumns = []string{colName, colQuantity, colUnitCost, colLeadTime}

// normalizeColumn maps "Item Name", "ITEM_NAME" and "item-name" to item_name.
func normalizeColumn(col string) string {
	col = strings.ToLower(strings.TrimSpace(col))
	col = strings.TrimPrefix(col, "\ufeff")
	return strings.NewReplacer(" ", "_", "-", "_").Replace(col)
}

func columnIndex(header []string) (map[string]int, error) {
	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[normalizeColumn(col)] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := colMap[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required column(s): %s", strings.Join(missing, ", "))
	}
	return colMap, nil
}

// parseTable converts a header and its data rows into items. Row numbers in
// errors are 1-based and count the header line.
func parseTable(header []string, rows [][]string) ([]domain.InventoryItem, error) {
	colMap, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	items := make([]domain.InventoryItem, 0, len(rows))
	for i, record := range rows {
		if isBlank(record) {
			continue
		}
		line := i + 2

		cell := func(col string) string {
			idx := colMap[col]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		name := cell(colName)
		if name == "" {
			return nil, fmt.Errorf("%w: row %d: missing %s", domain.ErrInvalidItem, line, colName)
		}

		item := domain.InventoryItem{Name: name}
		numbers := []struct {
			col  string
			dest *float64
		}{
			{colQuantity, &item.Quantity},
			{colUnitCost, &item.UnitCost},
			{colLeadTime, &item.LeadTimeDays},
		}
		for _, n := range numbers {
			raw := cell(n.col)
			if raw == "" {
				return nil, fmt.Errorf("%w: row %d: missing %s", domain.ErrInvalidItem, line, n.col)
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: invalid %s %q", domain.ErrInvalidItem, line, n.col, raw)
			}
			*n.dest = v
		}

		items = append(items, item)
	}

	return items, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
