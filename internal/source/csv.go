package source

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/andresuchdata/inventory-abc/internal/domain"
)

func parseCSV(r io.Reader) ([]domain.InventoryItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV records: %w", err)
	}

	return parseTable(header, records)
}
