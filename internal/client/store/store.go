package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	"github.com/MrJamesThe3rd/facturador/internal/database"
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

const selectClientColumns = `
	id, tenant_id, name, doc_type, doc_number, iva_condition, email, phone, address, active, created_at, updated_at
`

func scanClient(s scanner) (*client.Client, error) {
	var (
		c                client.Client
		docType, ivaCond string
	)

	if err := s.Scan(
		&c.ID, &c.TenantID, &c.Name, &docType, &c.DocNumber, &ivaCond, &c.Email, &c.Phone, &c.Address,
		&c.Active, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	c.DocType = client.DocType(docType)
	c.IVACondition = client.IVACondition(ivaCond)

	return &c, nil
}

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	query := `
		INSERT INTO clients (tenant_id, name, doc_type, doc_number, iva_condition, email, phone, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		c.TenantID, c.Name, c.DocType, c.DocNumber, c.IVACondition, c.Email, c.Phone, c.Address, c.Active,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return client.ErrDuplicateDocument
		}

		return fmt.Errorf("creating client: %w", err)
	}

	return nil
}

func (s *Store) GetClient(ctx context.Context, tenantID string, id uuid.UUID) (*client.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients WHERE tenant_id = $1 AND id = $2`

	c, err := scanClient(database.Conn(ctx, s.db).QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, client.ErrNotFound
		}

		return nil, fmt.Errorf("getting client: %w", err)
	}

	return c, nil
}

func (s *Store) ListClients(ctx context.Context, tenantID string, filter client.ListFilter) ([]*client.Client, error) {
	query := `SELECT ` + selectClientColumns + ` FROM clients WHERE tenant_id = $1`
	args := []any{tenantID}

	if filter.ActiveOnly {
		query += " AND active"
	}

	if filter.DocType != nil {
		args = append(args, *filter.DocType)
		query += fmt.Sprintf(" AND doc_type = $%d", len(args))
	}

	query += " ORDER BY name ASC"

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	defer rows.Close()

	var clients []*client.Client

	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning client: %w", err)
		}

		clients = append(clients, c)
	}

	return clients, rows.Err()
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	query := `
		UPDATE clients
		SET name = $3, doc_type = $4, doc_number = $5, iva_condition = $6, email = $7, phone = $8, address = $9,
			active = $10, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`

	err := database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		c.TenantID, c.ID, c.Name, c.DocType, c.DocNumber, c.IVACondition, c.Email, c.Phone, c.Address, c.Active,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return client.ErrNotFound
		}

		if database.IsUniqueViolation(err) {
			return client.ErrDuplicateDocument
		}

		return fmt.Errorf("updating client: %w", err)
	}

	return nil
}
