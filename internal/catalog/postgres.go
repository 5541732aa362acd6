package catalog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Nehra4u/Crystal-Ecommerce/pkg/database"
	apperrors "github.com/Nehra4u/Crystal-Ecommerce/pkg/errors"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrations returns the catalog schema migrations rooted at the migration
// directory, ready for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

const itemColumns = `id, name, slug, category, price, currency, in_stock, image_url`

// PostgresCatalog reads items from the catalog_items table.
type PostgresCatalog struct {
	db database.DBTX
}

// NewPostgresCatalog creates a catalog backed by db.
func NewPostgresCatalog(db database.DBTX) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// Get returns the item with the given id.
func (c *PostgresCatalog) Get(ctx context.Context, id string) (_ *Item, err error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetCatalogItem", query)
	defer func() { end(err) }()

	var it Item
	err = c.db.QueryRow(ctx, query, id).Scan(
		&it.ID, &it.Name, &it.Slug, &it.Category, &it.Price, &it.Currency, &it.InStock, &it.ImageURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("catalog item", id)
		}
		return nil, fmt.Errorf("get catalog item: %w", err)
	}
	return &it, nil
}

// List returns items matching f ordered by position, with the total match
// count computed in the same query.
func (c *PostgresCatalog) List(ctx context.Context, f Filter) (_ []Item, _ int, err error) {
	var (
		conditions []string
		args       []any
	)
	if f.Category != "" {
		args = append(args, f.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.InStockOnly {
		conditions = append(conditions, "in_stock")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := "ALL"
	if f.Limit > 0 {
		limit = fmt.Sprintf("%d", f.Limit)
	}
	args = append(args, max(f.Offset, 0))

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM catalog_items
		%s
		ORDER BY position, id
		LIMIT %s OFFSET $%d`,
		itemColumns, where, limit, len(args),
	)

	ctx, end := database.TraceQuery(ctx, "ListCatalogItems", query)
	defer func() { end(err) }()

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	total := 0
	for rows.Next() {
		var it Item
		if err = rows.Scan(
			&it.ID, &it.Name, &it.Slug, &it.Category, &it.Price, &it.Currency, &it.InStock, &it.ImageURL, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate catalog items: %w", err)
	}
	return items, total, nil
}
