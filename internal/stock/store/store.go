package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/database"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectProductColumns = `
	id, tenant_id, sku, name, category, price, stock, min_stock, created_at, updated_at
`

func scanProduct(s scanner) (*stock.Product, error) {
	var p stock.Product

	if err := s.Scan(
		&p.ID, &p.TenantID, &p.SKU, &p.Name, &p.Category, &p.Price, &p.Stock, &p.MinStock,
		&p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *stock.Product) error {
	query := `
		INSERT INTO products (tenant_id, sku, name, category, price, stock, min_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		p.TenantID, p.SKU, p.Name, p.Category, p.Price, p.Stock, p.MinStock,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return stock.ErrDuplicateSKU
		}

		return fmt.Errorf("creating product: %w", err)
	}

	return nil
}

func (s *Store) GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*stock.Product, error) {
	return s.getProduct(ctx, tenantID, id, "")
}

func (s *Store) GetProductForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*stock.Product, error) {
	return s.getProduct(ctx, tenantID, id, " FOR UPDATE")
}

func (s *Store) getProduct(ctx context.Context, tenantID string, id uuid.UUID, lock string) (*stock.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE tenant_id = $1 AND id = $2` + lock

	p, err := scanProduct(database.Conn(ctx, s.db).QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, stock.ErrProductNotFound
		}

		return nil, fmt.Errorf("getting product: %w", err)
	}

	return p, nil
}

func (s *Store) ListProducts(ctx context.Context, tenantID string, filter stock.ListFilter) ([]*stock.Product, error) {
	query := `SELECT ` + selectProductColumns + ` FROM products WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}

	if filter.LowStockOnly {
		query += " AND stock <= min_stock"
	}

	query += " ORDER BY name ASC"

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var products []*stock.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	return products, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, p *stock.Product) error {
	query := `
		UPDATE products
		SET name = $3, category = $4, price = $5, stock = $6, min_stock = $7, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		p.TenantID, p.ID, p.Name, p.Category, p.Price, p.Stock, p.MinStock,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stock.ErrProductNotFound
		}

		if database.IsCheckViolation(err) {
			return &stock.InsufficientStockError{ProductID: p.ID, Name: p.Name}
		}

		return fmt.Errorf("updating product: %w", err)
	}

	return nil
}

func (s *Store) DeleteProduct(ctx context.Context, tenantID string, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted product: %w", err)
	}

	if n == 0 {
		return stock.ErrProductNotFound
	}

	return nil
}

func (s *Store) CreateMovement(ctx context.Context, m *stock.Movement) error {
	query := `
		INSERT INTO stock_movements (tenant_id, product_id, product_sku, product_name, type, change, new_stock, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, created_at
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		m.TenantID, m.ProductID, m.ProductSKU, m.ProductName, m.Type, m.Change, m.NewStock, m.Note,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating stock movement: %w", err)
	}

	return nil
}

func (s *Store) ListMovements(ctx context.Context, tenantID string, filter stock.MovementFilter) ([]*stock.Movement, error) {
	var (
		conditions = []string{"tenant_id = $1"}
		args       = []any{tenantID}
	)

	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", len(args)))
	}

	if filter.Type != nil {
		args = append(args, *filter.Type)
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}

	query := `
		SELECT id, tenant_id, product_id, product_sku, product_name, type, change, new_stock, note, created_at
		FROM stock_movements
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stock movements: %w", err)
	}
	defer rows.Close()

	var movements []*stock.Movement

	for rows.Next() {
		var (
			m   stock.Movement
			typ string
		)

		if err := rows.Scan(
			&m.ID, &m.TenantID, &m.ProductID, &m.ProductSKU, &m.ProductName, &typ, &m.Change, &m.NewStock,
			&m.Note, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning stock movement: %w", err)
		}

		m.Type = stock.MovementType(typ)
		movements = append(movements, &m)
	}

	return movements, rows.Err()
}
