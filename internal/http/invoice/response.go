package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/facturador/internal/invoice"
)

type invoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	Type          invoice.Type          `json:"type"`
	Concept       invoice.Concept       `json:"concept"`
	POS           string                `json:"pos"`
	Number        string                `json:"number"`
	Client        *clientResponse       `json:"client,omitempty"`
	Items         []itemResponse        `json:"items"`
	Totals        totalsResponse        `json:"totals"`
	PaymentMethod invoice.PaymentMethod `json:"payment_method"`
	Status        invoice.Status        `json:"status"`
	CAE           string                `json:"cae,omitempty"`
	CAEDue        *time.Time            `json:"cae_due,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     *time.Time            `json:"updated_at,omitempty"`
}

type clientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	DocType   string    `json:"doc_type"`
	DocNumber string    `json:"doc_number"`
}

type itemResponse struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Description string          `json:"description"`
	Qty         int64           `json:"qty"`
	UnitPrice   int64           `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Subtotal    int64           `json:"subtotal"`
}

type totalsResponse struct {
	Net   int64 `json:"net"`
	Tax   int64 `json:"tax"`
	Total int64 `json:"total"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:            inv.ID,
		Type:          inv.Type,
		Concept:       inv.Concept,
		POS:           inv.POS,
		Number:        inv.Number,
		Items:         make([]itemResponse, len(inv.Items)),
		Totals:        totalsResponse(inv.Totals),
		PaymentMethod: inv.PaymentMethod,
		Status:        inv.Status,
		CAE:           inv.CAE,
		CAEDue:        inv.CAEDue,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}

	if inv.ClientID != nil {
		resp.Client = &clientResponse{
			ID:        *inv.ClientID,
			Name:      inv.ClientName,
			DocType:   inv.ClientDocType,
			DocNumber: inv.ClientDocNumber,
		}
	}

	for i, it := range inv.Items {
		resp.Items[i] = itemResponse(it)
	}

	return resp
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}
