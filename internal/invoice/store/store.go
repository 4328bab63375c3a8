package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/facturador/internal/database"
	"github.com/MrJamesThe3rd/facturador/internal/invoice"
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

// itemRecord is the JSONB shape of a line item.
type itemRecord struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Description string          `json:"description"`
	Qty         int64           `json:"qty"`
	UnitPrice   int64           `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    int64           `json:"subtotal"`
}

func encodeItems(items []invoice.LineItem) ([]byte, error) {
	records := make([]itemRecord, len(items))
	for i, it := range items {
		records[i] = itemRecord(it)
	}

	return json.Marshal(records)
}

func decodeItems(raw []byte) ([]invoice.LineItem, error) {
	var records []itemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	items := make([]invoice.LineItem, len(records))
	for i, r := range records {
		items[i] = invoice.LineItem(r)
	}

	return items, nil
}

const selectInvoiceColumns = `
	id, tenant_id, type, concept, pos, number, client_id, client_name, client_doc_type, client_doc_number,
	items, net, tax, total, payment_method, status, cae, cae_due, created_at, updated_at
`

func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var (
		inv                           invoice.Invoice
		typ, concept, payment, status string
		rawItems                      []byte
		cae                           sql.NullString
		caeDue                        *time.Time
	)

	if err := s.Scan(
		&inv.ID, &inv.TenantID, &typ, &concept, &inv.POS, &inv.Number,
		&inv.ClientID, &inv.ClientName, &inv.ClientDocType, &inv.ClientDocNumber,
		&rawItems, &inv.Totals.Net, &inv.Totals.Tax, &inv.Totals.Total,
		&payment, &status, &cae, &caeDue, &inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	items, err := decodeItems(rawItems)
	if err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}

	inv.Type = invoice.Type(typ)
	inv.Concept = invoice.Concept(concept)
	inv.PaymentMethod = invoice.PaymentMethod(payment)
	inv.Status = invoice.Status(status)
	inv.Items = items
	inv.CAE = cae.String
	inv.CAEDue = caeDue

	return &inv, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	query := `
		INSERT INTO invoices (
			tenant_id, type, concept, pos, number, client_id, client_name, client_doc_type, client_doc_number,
			items, net, tax, total, payment_method, status, cae, cae_due, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		inv.TenantID, inv.Type, inv.Concept, inv.POS, inv.Number,
		inv.ClientID, inv.ClientName, inv.ClientDocType, inv.ClientDocNumber,
		items, inv.Totals.Net, inv.Totals.Tax, inv.Totals.Total,
		inv.PaymentMethod, inv.Status, nullString(inv.CAE), inv.CAEDue,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, tenantID string, id uuid.UUID) (*invoice.Invoice, error) {
	return s.getInvoice(ctx, tenantID, id, "")
}

func (s *Store) GetInvoiceForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*invoice.Invoice, error) {
	return s.getInvoice(ctx, tenantID, id, " FOR UPDATE")
}

func (s *Store) getInvoice(ctx context.Context, tenantID string, id uuid.UUID, lock string) (*invoice.Invoice, error) {
	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2` + lock

	inv, err := scanInvoice(database.Conn(ctx, s.db).QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, tenantID string, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	var (
		conditions = []string{"tenant_id = $1"}
		args       = []any{tenantID}
	)

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", len(args)))
	}

	query := `SELECT ` + selectInvoiceColumns + ` FROM invoices WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC`

	rows, err := database.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	return invoices, rows.Err()
}

func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	query := `
		UPDATE invoices
		SET type = $3, concept = $4, pos = $5, number = $6, client_id = $7, client_name = $8,
			client_doc_type = $9, client_doc_number = $10, items = $11, net = $12, tax = $13, total = $14,
			payment_method = $15, status = $16, cae = $17, cae_due = $18, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING updated_at
	`

	err = database.Conn(ctx, s.db).QueryRowContext(ctx, query,
		inv.TenantID, inv.ID, inv.Type, inv.Concept, inv.POS, inv.Number, inv.ClientID, inv.ClientName,
		inv.ClientDocType, inv.ClientDocNumber, items, inv.Totals.Net, inv.Totals.Tax, inv.Totals.Total,
		inv.PaymentMethod, inv.Status, nullString(inv.CAE), inv.CAEDue,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, tenantID string, id uuid.UUID) error {
	res, err := database.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM invoices WHERE tenant_id = $1 AND id = $2 AND status = 'DRAFT'`, tenantID, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking deleted invoice: %w", err)
	}

	if n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}
