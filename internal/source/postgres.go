package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"

	"github.com/andresuchdata/inventory-abc/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const defaultTable = "inventory_items"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type itemRow struct {
	Name         sql.NullString  `db:"item_name"`
	Quantity     sql.NullFloat64 `db:"quantity"`
	UnitCost     sql.NullFloat64 `db:"unit_cost"`
	LeadTimeDays sql.NullFloat64 `db:"lead_time_days"`
}

// PostgresLoader reads items from a table with item_name, quantity,
// unit_cost and lead_time_days columns.
type PostgresLoader struct {
	dsn   string
	table string
}

// NewPostgresLoader parses a postgres URL. The table is taken from the
// "table" query parameter, which is removed before connecting.
func NewPostgresLoader(rawURL string) (*PostgresLoader, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database url: %w", err)
	}

	q := u.Query()
	table := q.Get("table")
	if table == "" {
		table = defaultTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	q.Del("table")
	u.RawQuery = q.Encode()

	return &PostgresLoader{dsn: u.String(), table: table}, nil
}

func (l *PostgresLoader) Load(ctx context.Context) ([]domain.InventoryItem, error) {
	db, err := sqlx.ConnectContext(ctx, "pgx", l.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return loadItems(ctx, db, l.table)
}

func loadItems(ctx context.Context, db *sqlx.DB, table string) ([]domain.InventoryItem, error) {
	query := fmt.Sprintf(`
		SELECT item_name, quantity, unit_cost, lead_time_days
		FROM %s
		ORDER BY item_name
	`, table)

	var rows []itemRow
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("error loading inventory items from %s: %w", table, err)
	}

	items := make([]domain.InventoryItem, 0, len(rows))
	for i, row := range rows {
		if !row.Name.Valid || !row.Quantity.Valid || !row.UnitCost.Valid || !row.LeadTimeDays.Valid {
			return nil, fmt.Errorf("%w: %s row %d has NULL fields", domain.ErrInvalidItem, table, i+1)
		}
		items = append(items, domain.InventoryItem{
			Name:         row.Name.String,
			Quantity:     row.Quantity.Float64,
			UnitCost:     row.UnitCost.Float64,
			LeadTimeDays: row.LeadTimeDays.Float64,
		})
	}
	return items, nil
}
