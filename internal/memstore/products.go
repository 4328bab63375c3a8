package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/stock"
)

// Products implements stock.Repository.
type Products struct {
	db *DB
}

func (p *Products) CreateProduct(ctx context.Context, prod *stock.Product) error {
	defer p.db.lock(ctx)()

	for _, existing := range p.db.st.products {
		if existing.TenantID == prod.TenantID && existing.SKU == prod.SKU {
			return stock.ErrDuplicateSKU
		}
	}

	prod.ID = uuid.New()
	prod.CreatedAt, prod.UpdatedAt = p.db.timestamp()
	p.db.st.products[prod.ID] = *prod

	return nil
}

func (p *Products) get(tenantID string, id uuid.UUID) (*stock.Product, error) {
	prod, ok := p.db.st.products[id]
	if !ok || prod.TenantID != tenantID {
		return nil, stock.ErrProductNotFound
	}

	return &prod, nil
}

func (p *Products) GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*stock.Product, error) {
	defer p.db.lock(ctx)()

	return p.get(tenantID, id)
}

// GetProductForUpdate needs no row lock: the enclosing transaction holds the store mutex.
func (p *Products) GetProductForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*stock.Product, error) {
	return p.GetProduct(ctx, tenantID, id)
}

func (p *Products) ListProducts(ctx context.Context, tenantID string, filter stock.ListFilter) ([]*stock.Product, error) {
	defer p.db.lock(ctx)()

	var products []*stock.Product

	for _, prod := range p.db.st.products {
		if prod.TenantID != tenantID {
			continue
		}

		if filter.Category != nil && prod.Category != *filter.Category {
			continue
		}

		if filter.LowStockOnly && !prod.IsLowStock() {
			continue
		}

		products = append(products, &prod)
	}

	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })

	return products, nil
}

func (p *Products) UpdateProduct(ctx context.Context, prod *stock.Product) error {
	defer p.db.lock(ctx)()

	current, err := p.get(prod.TenantID, prod.ID)
	if err != nil {
		return err
	}

	if prod.Stock < 0 {
		return &stock.InsufficientStockError{ProductID: prod.ID, Name: prod.Name, Available: current.Stock}
	}

	_, prod.UpdatedAt = p.db.timestamp()
	p.db.st.products[prod.ID] = *prod

	return nil
}

func (p *Products) DeleteProduct(ctx context.Context, tenantID string, id uuid.UUID) error {
	defer p.db.lock(ctx)()

	if _, err := p.get(tenantID, id); err != nil {
		return err
	}

	delete(p.db.st.products, id)

	return nil
}

func (p *Products) CreateMovement(ctx context.Context, m *stock.Movement) error {
	defer p.db.lock(ctx)()

	m.ID = uuid.New()
	m.CreatedAt, _ = p.db.timestamp()
	p.db.st.movements = append(p.db.st.movements, *m)

	return nil
}

// ListMovements returns newest first.
func (p *Products) ListMovements(ctx context.Context, tenantID string, filter stock.MovementFilter) ([]*stock.Movement, error) {
	defer p.db.lock(ctx)()

	var movements []*stock.Movement

	for i := len(p.db.st.movements) - 1; i >= 0; i-- {
		m := p.db.st.movements[i]

		if m.TenantID != tenantID {
			continue
		}

		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}

		if filter.Type != nil && m.Type != *filter.Type {
			continue
		}

		movements = append(movements, &m)

		if filter.Limit > 0 && len(movements) == filter.Limit {
			break
		}
	}

	return movements, nil
}
