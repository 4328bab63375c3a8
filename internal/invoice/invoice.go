package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusIssued    Status = "ISSUED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusIssued || s == StatusCancelled
}

// CanTransition reports whether an invoice in status s may move to next.
// The only edges are DRAFT -> ISSUED and ISSUED -> CANCELLED.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusIssued
	case StatusIssued:
		return next == StatusCancelled
	}

	return false
}

// Type is the fiscal category of the invoice.
type Type string

const (
	TypeA Type = "A"
	TypeB Type = "B"
	TypeC Type = "C"
)

func (t Type) Valid() bool {
	return t == TypeA || t == TypeB || t == TypeC
}

type Concept string

const (
	ConceptProducts            Concept = "PRODUCTOS"
	ConceptServices            Concept = "SERVICIOS"
	ConceptProductsAndServices Concept = "PRODUCTOS_Y_SERVICIOS"
)

func (c Concept) Valid() bool {
	return c == ConceptProducts || c == ConceptServices || c == ConceptProductsAndServices
}

type PaymentMethod string

const (
	PaymentCash           PaymentMethod = "CASH"
	PaymentCard           PaymentMethod = "CARD"
	PaymentTransfer       PaymentMethod = "TRANSFER"
	PaymentCurrentAccount PaymentMethod = "CURRENT_ACCOUNT"
	PaymentCheck          PaymentMethod = "CHECK"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCurrentAccount, PaymentCheck:
		return true
	}

	return false
}

// LineItem is one product line of an invoice. Amounts are in cents and
// TaxRate is a percentage (21 means 21%).
type LineItem struct {
	ProductID   uuid.UUID
	Description string
	Qty         int64
	UnitPrice   int64
	TaxRate     decimal.Decimal
	Subtotal    int64
}

// Totals are in cents.
type Totals struct {
	Net   int64
	Tax   int64
	Total int64
}

type Invoice struct {
	ID              uuid.UUID
	TenantID        string
	Type            Type
	Concept         Concept
	POS             string
	Number          string // preview while DRAFT, final once ISSUED
	ClientID        *uuid.UUID
	ClientName      string
	ClientDocType   string
	ClientDocNumber string
	Items           []LineItem
	Totals          Totals
	PaymentMethod   PaymentMethod
	Status          Status
	CAE             string
	CAEDue          *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
