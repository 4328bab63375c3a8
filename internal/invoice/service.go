package invoice

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	"github.com/MrJamesThe3rd/facturador/internal/fiscal"
	"github.com/MrJamesThe3rd/facturador/internal/numbering"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

const DefaultPOS = "0001"

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	GetInvoice(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error)
	// GetInvoiceForUpdate reads the invoice and locks it until the surrounding transaction ends.
	GetInvoiceForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, tenantID string, filter ListFilter) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	DeleteInvoice(ctx context.Context, tenantID string, id uuid.UUID) error
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Numbering interface {
	PeekNext(ctx context.Context, tenantID, pos string) (string, error)
	AllocateNext(ctx context.Context, tenantID, pos string) (string, error)
}

type StockLedger interface {
	GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*stock.Product, error)
	Adjust(ctx context.Context, tenantID string, params stock.AdjustParams) (*stock.Movement, error)
}

type ClientDirectory interface {
	Get(ctx context.Context, tenantID string, id uuid.UUID) (*client.Client, error)
}

type Authorizer interface {
	Authorize(ctx context.Context, pos, number string) (fiscal.Authorization, error)
}

type Service struct {
	repo       Repository
	tx         Transactor
	numbering  Numbering
	stock      StockLedger
	clients    ClientDirectory
	authorizer Authorizer
}

func NewService(
	repo Repository,
	tx Transactor,
	numbers Numbering,
	ledger StockLedger,
	clients ClientDirectory,
	authorizer Authorizer,
) *Service {
	return &Service{
		repo:       repo,
		tx:         tx,
		numbering:  numbers,
		stock:      ledger,
		clients:    clients,
		authorizer: authorizer,
	}
}

type ListFilter struct {
	Status   *Status
	ClientID *uuid.UUID
}

// ItemParams describes a line item. A nil UnitPrice takes the product's
// current price, an empty Description its name and a nil TaxRate the general rate.
type ItemParams struct {
	ProductID   uuid.UUID
	Description string
	Qty         int64
	UnitPrice   *int64
	TaxRate     *decimal.Decimal
}

type DraftParams struct {
	Type          Type
	Concept       Concept
	POS           string
	ClientID      *uuid.UUID
	Items         []ItemParams
	PaymentMethod PaymentMethod
}

// UpdateParams changes a draft. Nil fields are left as they are; a non-nil
// Items replaces the whole item list.
type UpdateParams struct {
	Type          *Type
	Concept       *Concept
	POS           *string
	ClientID      *uuid.UUID
	RemoveClient  bool
	Items         *[]ItemParams
	PaymentMethod *PaymentMethod
}

// CreateDraft stores a new DRAFT invoice. Its number is only a preview of the
// next free number for the point of sale and is replaced at issuance.
func (s *Service) CreateDraft(ctx context.Context, tenantID string, params DraftParams) (*Invoice, error) {
	inv := &Invoice{
		TenantID:      tenantID,
		Type:          params.Type,
		Concept:       params.Concept,
		POS:           strings.TrimSpace(params.POS),
		PaymentMethod: params.PaymentMethod,
		Status:        StatusDraft,
		Items:         []LineItem{},
	}

	if inv.Type == "" {
		inv.Type = TypeB
	}

	if inv.Concept == "" {
		inv.Concept = ConceptProducts
	}

	if inv.POS == "" {
		inv.POS = DefaultPOS
	}

	if inv.PaymentMethod == "" {
		inv.PaymentMethod = PaymentCash
	}

	if err := validateHeader(inv); err != nil {
		return nil, err
	}

	if params.ClientID != nil {
		if err := s.attachClient(ctx, inv, *params.ClientID); err != nil {
			return nil, err
		}
	}

	if len(params.Items) > 0 {
		items, err := s.buildItems(ctx, tenantID, params.Items)
		if err != nil {
			return nil, err
		}

		inv.Items = items
	}

	totals, err := ComputeTotals(inv.Items)
	if err != nil {
		return nil, err
	}

	inv.Totals = totals

	number, err := s.numbering.PeekNext(ctx, tenantID, inv.POS)
	if err != nil {
		return nil, fmt.Errorf("previewing invoice number: %w", err)
	}

	inv.Number = number

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) Get(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) ([]*Invoice, error) {
	return s.repo.ListInvoices(ctx, tenantID, filter)
}

func (s *Service) HasInvoicesForClient(ctx context.Context, tenantID string, clientID uuid.UUID) (bool, error) {
	invoices, err := s.repo.ListInvoices(ctx, tenantID, ListFilter{ClientID: &clientID})
	if err != nil {
		return false, err
	}

	return len(invoices) > 0, nil
}

// UpdateDraft applies params to a DRAFT invoice and recomputes its totals.
func (s *Service) UpdateDraft(ctx context.Context, tenantID string, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	var inv *Invoice

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error

		inv, err = s.repo.GetInvoiceForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}

		if inv.Status != StatusDraft {
			return &StateError{ID: inv.ID, Status: inv.Status, Op: "update"}
		}

		if err := s.applyUpdate(ctx, inv, params); err != nil {
			return err
		}

		inv.Items, inv.Totals, err = priceItems(inv.Items)
		if err != nil {
			return err
		}

		return s.repo.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return nil, fmt.Errorf("updating invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) applyUpdate(ctx context.Context, inv *Invoice, params UpdateParams) error {
	if params.Type != nil {
		inv.Type = *params.Type
	}

	if params.Concept != nil {
		inv.Concept = *params.Concept
	}

	if params.PaymentMethod != nil {
		inv.PaymentMethod = *params.PaymentMethod
	}

	posChanged := params.POS != nil && strings.TrimSpace(*params.POS) != inv.POS
	if posChanged {
		inv.POS = strings.TrimSpace(*params.POS)
	}

	if err := validateHeader(inv); err != nil {
		return err
	}

	switch {
	case params.RemoveClient:
		inv.ClientID = nil
		inv.ClientName, inv.ClientDocType, inv.ClientDocNumber = "", "", ""
	case params.ClientID != nil:
		if err := s.attachClient(ctx, inv, *params.ClientID); err != nil {
			return err
		}
	}

	if params.Items != nil {
		items, err := s.buildItems(ctx, inv.TenantID, *params.Items)
		if err != nil {
			return err
		}

		inv.Items = items
	}

	if posChanged {
		number, err := s.numbering.PeekNext(ctx, inv.TenantID, inv.POS)
		if err != nil {
			return fmt.Errorf("previewing invoice number: %w", err)
		}

		inv.Number = number
	}

	return nil
}

// RemoveDraft deletes a DRAFT invoice.
func (s *Service) RemoveDraft(ctx context.Context, tenantID string, id uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		inv, err := s.repo.GetInvoiceForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}

		if inv.Status != StatusDraft {
			return &StateError{ID: inv.ID, Status: inv.Status, Op: "delete"}
		}

		return s.repo.DeleteInvoice(ctx, tenantID, id)
	})
}

// Cancel moves an ISSUED invoice to CANCELLED. Stock sold by the invoice is not returned.
func (s *Service) Cancel(ctx context.Context, tenantID string, id uuid.UUID) (*Invoice, error) {
	var inv *Invoice

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error

		inv, err = s.repo.GetInvoiceForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}

		if !inv.Status.CanTransition(StatusCancelled) {
			return &StateError{ID: inv.ID, Status: inv.Status, Op: "cancel"}
		}

		inv.Status = StatusCancelled

		return s.repo.UpdateInvoice(ctx, inv)
	})
	if err != nil {
		return nil, fmt.Errorf("cancelling invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) attachClient(ctx context.Context, inv *Invoice, clientID uuid.UUID) error {
	c, err := s.clients.Get(ctx, inv.TenantID, clientID)
	if err != nil {
		return fmt.Errorf("getting client: %w", err)
	}

	inv.ClientID = &c.ID
	inv.ClientName = c.Name
	inv.ClientDocType = string(c.DocType)
	inv.ClientDocNumber = c.DocNumber

	return nil
}

func (s *Service) buildItems(ctx context.Context, tenantID string, params []ItemParams) ([]LineItem, error) {
	items := make([]LineItem, 0, len(params))

	for i, p := range params {
		field := fmt.Sprintf("items[%d]", i)

		if p.Qty <= 0 {
			return nil, validation.New(field+".qty", "must be greater than zero")
		}

		if p.UnitPrice != nil && *p.UnitPrice < 0 {
			return nil, validation.New(field+".unit_price", "must not be negative")
		}

		rate := TaxRateGeneral
		if p.TaxRate != nil {
			rate = *p.TaxRate
		}

		if !ValidTaxRate(rate) {
			return nil, validation.New(field+".tax_rate", "must be 0, 10.5 or 21")
		}

		item := LineItem{
			ProductID:   p.ProductID,
			Description: strings.TrimSpace(p.Description),
			Qty:         p.Qty,
			TaxRate:     rate,
		}

		prod, err := s.stock.GetProduct(ctx, tenantID, p.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}

		item.UnitPrice = prod.Price
		if p.UnitPrice != nil {
			item.UnitPrice = *p.UnitPrice
		}

		if item.Description == "" {
			item.Description = prod.Name
		}

		sub, err := LineSubtotal(item.Qty, item.UnitPrice)
		if err != nil {
			return nil, validation.New(field, "quantity times unit price exceeds the supported range")
		}

		item.Subtotal = sub
		items = append(items, item)
	}

	return items, nil
}

func validateHeader(inv *Invoice) error {
	if !inv.Type.Valid() {
		return validation.New("type", "unknown invoice type "+string(inv.Type))
	}

	if !inv.Concept.Valid() {
		return validation.New("concept", "unknown concept "+string(inv.Concept))
	}

	if !inv.PaymentMethod.Valid() {
		return validation.New("payment_method", "unknown payment method "+string(inv.PaymentMethod))
	}

	if err := numbering.ValidatePOS(inv.POS); err != nil {
		return validation.New("pos", err.Error())
	}

	return nil
}
