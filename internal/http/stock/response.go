package stock

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/stock"
)

type productResponse struct {
	ID        uuid.UUID  `json:"id"`
	SKU       string     `json:"sku"`
	Name      string     `json:"name"`
	Category  string     `json:"category,omitempty"`
	Price     int64      `json:"price"`
	Stock     int64      `json:"stock"`
	MinStock  int64      `json:"min_stock"`
	LowStock  bool       `json:"low_stock"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type movementResponse struct {
	ID          uuid.UUID          `json:"id"`
	ProductID   uuid.UUID          `json:"product_id"`
	ProductSKU  string             `json:"product_sku"`
	ProductName string             `json:"product_name"`
	Type        stock.MovementType `json:"type"`
	Change      int64              `json:"change"`
	NewStock    int64              `json:"new_stock"`
	Note        string             `json:"note,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

func toProductResponse(p *stock.Product) productResponse {
	return productResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Category:  p.Category,
		Price:     p.Price,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		LowStock:  p.IsLowStock(),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toProductResponseList(ps []*stock.Product) []productResponse {
	resp := make([]productResponse, len(ps))
	for i, p := range ps {
		resp[i] = toProductResponse(p)
	}

	return resp
}

func toMovementResponse(m *stock.Movement) movementResponse {
	return movementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductSKU:  m.ProductSKU,
		ProductName: m.ProductName,
		Type:        m.Type,
		Change:      m.Change,
		NewStock:    m.NewStock,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
	}
}

func toMovementResponseList(ms []*stock.Movement) []movementResponse {
	resp := make([]movementResponse, len(ms))
	for i, m := range ms {
		resp[i] = toMovementResponse(m)
	}

	return resp
}
