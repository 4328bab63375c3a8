package memstore

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/invoice"
)

var errDuplicateNumber = errors.New("invoice number already issued for this point of sale")

// Invoices implements invoice.Repository.
type Invoices struct {
	db *DB
}

func cloneInvoice(inv invoice.Invoice) invoice.Invoice {
	out := inv
	out.Items = append([]invoice.LineItem(nil), inv.Items...)

	if inv.ClientID != nil {
		id := *inv.ClientID
		out.ClientID = &id
	}

	if inv.CAEDue != nil {
		due := *inv.CAEDue
		out.CAEDue = &due
	}

	return out
}

func (s *Invoices) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	defer s.db.lock(ctx)()

	inv.ID = uuid.New()
	inv.CreatedAt, inv.UpdatedAt = s.db.timestamp()
	s.db.st.invoices[inv.ID] = invoiceRow{seq: s.db.nextSeq(), inv: cloneInvoice(*inv)}

	return nil
}

func (s *Invoices) get(tenantID string, id uuid.UUID) (*invoice.Invoice, error) {
	row, ok := s.db.st.invoices[id]
	if !ok || row.inv.TenantID != tenantID {
		return nil, invoice.ErrNotFound
	}

	inv := cloneInvoice(row.inv)

	return &inv, nil
}

func (s *Invoices) GetInvoice(ctx context.Context, tenantID string, id uuid.UUID) (*invoice.Invoice, error) {
	defer s.db.lock(ctx)()

	return s.get(tenantID, id)
}

func (s *Invoices) GetInvoiceForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*invoice.Invoice, error) {
	return s.GetInvoice(ctx, tenantID, id)
}

// ListInvoices returns newest first.
func (s *Invoices) ListInvoices(ctx context.Context, tenantID string, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	defer s.db.lock(ctx)()

	var rows []invoiceRow

	for _, row := range s.db.st.invoices {
		if row.inv.TenantID != tenantID {
			continue
		}

		if filter.Status != nil && row.inv.Status != *filter.Status {
			continue
		}

		if filter.ClientID != nil && (row.inv.ClientID == nil || *row.inv.ClientID != *filter.ClientID) {
			continue
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	invoices := make([]*invoice.Invoice, 0, len(rows))
	for _, row := range rows {
		inv := cloneInvoice(row.inv)
		invoices = append(invoices, &inv)
	}

	return invoices, nil
}

func (s *Invoices) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	defer s.db.lock(ctx)()

	row, ok := s.db.st.invoices[inv.ID]
	if !ok || row.inv.TenantID != inv.TenantID {
		return invoice.ErrNotFound
	}

	if inv.Status != invoice.StatusDraft {
		for id, other := range s.db.st.invoices {
			if id != inv.ID && other.inv.TenantID == inv.TenantID && other.inv.Status != invoice.StatusDraft &&
				other.inv.POS == inv.POS && other.inv.Number == inv.Number {
				return errDuplicateNumber
			}
		}
	}

	_, inv.UpdatedAt = s.db.timestamp()
	row.inv = cloneInvoice(*inv)
	s.db.st.invoices[inv.ID] = row

	return nil
}

func (s *Invoices) DeleteInvoice(ctx context.Context, tenantID string, id uuid.UUID) error {
	defer s.db.lock(ctx)()

	row, ok := s.db.st.invoices[id]
	if !ok || row.inv.TenantID != tenantID || row.inv.Status != invoice.StatusDraft {
		return invoice.ErrNotFound
	}

	delete(s.db.st.invoices, id)

	return nil
}
