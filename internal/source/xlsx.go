package source

import (
	"fmt"
	"io"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet of a workbook. The first row is the header.
func parseXLSX(r io.Reader) ([]domain.InventoryItem, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty: missing header", sheet)
	}

	return parseTable(rows[0], rows[1:])
}
