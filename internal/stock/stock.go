package stock

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock change in the audit trail.
type MovementType string

const (
	MovementCreation         MovementType = "creation"
	MovementSale             MovementType = "sale"
	MovementManualAdjustment MovementType = "manual_adjustment"
	MovementPurchase         MovementType = "purchase"
	MovementDeletion         MovementType = "deletion"
)

func (t MovementType) Valid() bool {
	switch t {
	case MovementCreation, MovementSale, MovementManualAdjustment, MovementPurchase, MovementDeletion:
		return true
	}

	return false
}

// Product is an inventory item of one tenant.
type Product struct {
	ID        uuid.UUID
	TenantID  string
	SKU       string
	Name      string
	Category  string
	Price     int64 // Price in cents
	Stock     int64
	MinStock  int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}

func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// Movement is an append-only record of a single stock change.
// NewStock is the product's stock right after the change was applied.
type Movement struct {
	ID          uuid.UUID
	TenantID    string
	ProductID   uuid.UUID
	ProductSKU  string
	ProductName string
	Type        MovementType
	Change      int64
	NewStock    int64
	Note        string
	CreatedAt   time.Time
}
