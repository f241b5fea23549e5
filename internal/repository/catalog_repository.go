package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/pickup-service/internal/domain"
	"github.com/fjod/go_cart/pickup-service/internal/store"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported SQL drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// CatalogRepository reads products and stock records from a SQL database
type CatalogRepository struct {
	db     *sql.DB
	driver string
}

type CatalogInterface interface {
	store.ProductReader
	store.InventorySearcher
	UpsertProduct(ctx context.Context, product domain.Product) error
	SetStock(ctx context.Context, productID, fulfillmentCenterID string, quantity int64) error
	RunMigrations(migrationsPath string) error
	Close() error
}

func NewCatalogRepository(driver, dsn string) (*CatalogRepository, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if driver == DriverSQLite {
		// every sqlite connection to :memory: opens its own database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(100)
		db.SetMaxIdleConns(10)
	}
	return &CatalogRepository{db: db, driver: driver}, nil
}

func (r *CatalogRepository) RunMigrations(migrationsPath string) error {
	var (
		driver database.Driver
		err    error
	)
	switch r.driver {
	case DriverPostgres:
		driver, err = postgres.WithInstance(r.db, &postgres.Config{MigrationsTable: "pickup_schema_migrations"})
	default:
		driver, err = sqlite.WithInstance(r.db, &sqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", migrationsPath),
		r.driver,
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

// GetProducts returns the products found among the ids, unknown ids are skipped
func (r *CatalogRepository) GetProducts(ctx context.Context, productIDs []string) ([]domain.Product, error) {
	if len(productIDs) == 0 {
		return []domain.Product{}, nil
	}

	query := fmt.Sprintf(`
		SELECT id, name, track_inventory
		FROM products
		WHERE id IN (%s)
		ORDER BY id
	`, placeholders(len(productIDs), 1))

	rows, err := r.db.QueryContext(ctx, query, args(productIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0, len(productIDs))
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.TrackInventory); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

// SearchInventories returns the stock records of the products ordered by
// product and fulfillment center
func (r *CatalogRepository) SearchInventories(ctx context.Context, productIDs []string, inStockOnly bool) ([]domain.InventoryRecord, error) {
	if len(productIDs) == 0 {
		return []domain.InventoryRecord{}, nil
	}

	query := fmt.Sprintf(`
		SELECT product_id, fulfillment_center_id, in_stock_quantity
		FROM inventories
		WHERE product_id IN (%s)
	`, placeholders(len(productIDs), 1))
	if inStockOnly {
		query += " AND in_stock_quantity > 0"
	}
	query += " ORDER BY product_id, fulfillment_center_id"

	rows, err := r.db.QueryContext(ctx, query, args(productIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventories: %w", err)
	}
	defer rows.Close()

	records := make([]domain.InventoryRecord, 0)
	for rows.Next() {
		var rec domain.InventoryRecord
		if err := rows.Scan(&rec.ProductID, &rec.FulfillmentCenterID, &rec.InStockQuantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return records, nil
}

func (r *CatalogRepository) UpsertProduct(ctx context.Context, product domain.Product) error {
	query := `INSERT INTO products (id, name, track_inventory)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (id) DO UPDATE SET name = excluded.name, track_inventory = excluded.track_inventory`

	if _, err := r.db.ExecContext(ctx, query, product.ID, product.Name, product.TrackInventory); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (r *CatalogRepository) SetStock(ctx context.Context, productID, fulfillmentCenterID string, quantity int64) error {
	if quantity < 0 {
		return store.ErrNegativeStock
	}

	query := `INSERT INTO inventories (product_id, fulfillment_center_id, in_stock_quantity)
	          VALUES ($1, $2, $3)
	          ON CONFLICT (product_id, fulfillment_center_id) DO UPDATE SET in_stock_quantity = excluded.in_stock_quantity`

	if _, err := r.db.ExecContext(ctx, query, productID, fulfillmentCenterID, quantity); err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	return nil
}

func (r *CatalogRepository) Close() error {
	return r.db.Close()
}

// placeholders renders "$start, $start+1, ..." for n arguments
func placeholders(n, start int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}

func args(values []string) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}
