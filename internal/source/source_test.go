package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	"github.com/andresuchdata/inventory-abc/internal/drive"
	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Item_Name,Quantity,Unit_Cost,Lead_Time_Days
Widget,100,5.5,7
Gadget,20,30,14
`

func TestParseCSV(t *testing.T) {
	items, err := Parse("items.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []domain.InventoryItem{
		{Name: "Widget", Quantity: 100, UnitCost: 5.5, LeadTimeDays: 7},
		{Name: "Gadget", Quantity: 20, UnitCost: 30, LeadTimeDays: 14},
	}
	if len(items) != len(expected) {
		t.Fatalf("Expected %d items, got %d", len(expected), len(items))
	}
	for i := range expected {
		if items[i] != expected[i] {
			t.Errorf("item %d: expected %+v, got %+v", i, expected[i], items[i])
		}
	}
}

func TestParseCSV_HeaderVariants(t *testing.T) {
	data := "\ufefflead time days, item name ,UNIT_COST,quantity,notes\n" +
		"3,Bolt,0.25,500,loose\n" +
		",,,,\n"

	items, err := Parse("items.CSV", strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected blank rows to be skipped, got %d items", len(items))
	}
	want := domain.InventoryItem{Name: "Bolt", Quantity: 500, UnitCost: 0.25, LeadTimeDays: 3}
	if items[0] != want {
		t.Errorf("Expected %+v, got %+v", want, items[0])
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	items, err := Parse("items.csv", strings.NewReader("Item_Name,Quantity,Unit_Cost,Lead_Time_Days\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no items, got %d", len(items))
	}
}

func TestParseCSV_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		data        string
		invalidItem bool
		expectError string
	}{
		{"empty file", "", false, "missing header"},
		{"missing column", "Item_Name,Quantity,Unit_Cost\nA,1,2\n", false, "lead_time_days"},
		{"bad number", "Item_Name,Quantity,Unit_Cost,Lead_Time_Days\nA,ten,2,3\n", true, "row 2: invalid quantity"},
		{"missing value", "Item_Name,Quantity,Unit_Cost,Lead_Time_Days\nA,1,2,3\nB,1,,3\n", true, "row 3: missing unit_cost"},
		{"short row", "Item_Name,Quantity,Unit_Cost,Lead_Time_Days\nA,1\n", true, "row 2: missing unit_cost"},
		{"missing name", "Item_Name,Quantity,Unit_Cost,Lead_Time_Days\n ,1,2,3\n", true, "missing item_name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("items.csv", strings.NewReader(tc.data))
			if err == nil {
				t.Fatalf("Expected error containing %q", tc.expectError)
			}
			if !strings.Contains(err.Error(), tc.expectError) {
				t.Errorf("Expected error containing %q, got %v", tc.expectError, err)
			}
			if got := errors.Is(err, domain.ErrInvalidItem); got != tc.invalidItem {
				t.Errorf("Expected errors.Is(ErrInvalidItem) = %v, got %v", tc.invalidItem, got)
			}
		})
	}
}

func TestParse_UnsupportedExtension(t *testing.T) {
	if _, err := Parse("items.txt", strings.NewReader(sampleCSV)); err == nil {
		t.Fatal("Expected error for .txt file")
	}
}

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestParseXLSX(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"Item_Name", "Quantity", "Unit_Cost", "Lead_Time_Days"},
		{"Widget", 100, 5.5, 7},
		{"Gadget", 20, 30, 14},
	})

	items, err := Parse("stock.xlsx", buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(items))
	}
	if items[0].Name != "Widget" || items[0].UnitCost != 5.5 || items[1].LeadTimeDays != 14 {
		t.Errorf("unexpected items %+v", items)
	}
}

func TestParseXLSX_Empty(t *testing.T) {
	buf := buildWorkbook(t, nil)
	if _, err := Parse("stock.xlsx", buf); err == nil {
		t.Fatal("Expected error for empty sheet")
	}
}

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) GetObject(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (m *memoryStorage) UploadObject(_ context.Context, key string, data []byte, _ string) error {
	m.objects[key] = data
	return nil
}

type fakeDrive struct {
	name    string
	content string
}

func (f *fakeDrive) File(_ context.Context, fileID string) (*drive.File, error) {
	return &drive.File{ID: fileID, Name: f.name}, nil
}

func (f *fakeDrive) Download(_ context.Context, _ string, w io.Writer) error {
	_, err := io.WriteString(w, f.content)
	return err
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	deps := Dependencies{
		Storage: &memoryStorage{objects: map[string][]byte{"uploads/items.csv": []byte(sampleCSV)}},
		Drive:   &fakeDrive{name: "items.csv", content: sampleCSV},
	}

	for _, uri := range []string{path, "s3://uploads/items.csv", "drive://abc123"} {
		t.Run(uri, func(t *testing.T) {
			loader, err := Open(uri, deps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			items, err := loader.Load(context.Background())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(items) != 2 {
				t.Errorf("Expected 2 items, got %d", len(items))
			}
		})
	}
}

func TestOpen_Errors(t *testing.T) {
	testCases := []struct {
		name string
		uri  string
		deps Dependencies
	}{
		{"s3 without storage", "s3://items.csv", Dependencies{}},
		{"drive without client", "drive://abc", Dependencies{}},
		{"unknown scheme", "ftp://host/items.csv", Dependencies{}},
		{"unknown extension", "items.json", Dependencies{}},
		{"bad table name", "postgres://localhost/db?table=items%20drop", Dependencies{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Open(tc.uri, tc.deps); err == nil {
				t.Errorf("Expected error for %s", tc.uri)
			}
		})
	}
}

func TestDriveLoader_RejectsUnsupportedFile(t *testing.T) {
	loader, err := Open("drive://abc", Dependencies{Drive: &fakeDrive{name: "notes.pdf"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := loader.Load(context.Background()); err == nil {
		t.Error("Expected error for a non-tabular drive file")
	}
}

func TestNewPostgresLoader(t *testing.T) {
	loader, err := NewPostgresLoader("postgres://user:pw@localhost:5432/inv?sslmode=disable&table=public.stock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.table != "public.stock" {
		t.Errorf("Expected table public.stock, got %s", loader.table)
	}
	if strings.Contains(loader.dsn, "table=") {
		t.Errorf("table parameter should be stripped from dsn, got %s", loader.dsn)
	}
	if !strings.Contains(loader.dsn, "sslmode=disable") {
		t.Errorf("other parameters should be kept, got %s", loader.dsn)
	}

	loader, err = NewPostgresLoader("postgres://localhost/inv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loader.table != defaultTable {
		t.Errorf("Expected default table, got %s", loader.table)
	}
}

func TestIsInventoryFile(t *testing.T) {
	testCases := map[string]bool{
		"a.csv":         true,
		"B.XLSX":        true,
		"a.xls":         false,
		"a.report.json": false,
		".csv.swp":      false,
	}
	for name, want := range testCases {
		if got := IsInventoryFile(name); got != want {
			t.Errorf("IsInventoryFile(%q): expected %v, got %v", name, want, got)
		}
	}
}
