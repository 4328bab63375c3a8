package stock

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=stock
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*Product, error)
	// GetProductForUpdate reads the product and locks it until the surrounding transaction ends.
	GetProductForUpdate(ctx context.Context, tenantID string, id uuid.UUID) (*Product, error)
	ListProducts(ctx context.Context, tenantID string, filter ListFilter) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, tenantID string, id uuid.UUID) error

	CreateMovement(ctx context.Context, mv *Movement) error
	ListMovements(ctx context.Context, tenantID string, filter MovementFilter) ([]*Movement, error)
}

type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	repo Repository
	tx   Transactor
}

func NewService(repo Repository, tx Transactor) *Service {
	return &Service{repo: repo, tx: tx}
}

var tracer = otel.Tracer("github.com/MrJamesThe3rd/facturador/internal/stock")

type ListFilter struct {
	Category     *string
	LowStockOnly bool
}

type MovementFilter struct {
	ProductID *uuid.UUID
	Type      *MovementType
	Limit     int
}

type CreateParams struct {
	SKU      string
	Name     string
	Category string
	Price    int64
	Stock    int64
	MinStock int64
}

type UpdateParams struct {
	Name     *string
	Category *string
	Price    *int64
	MinStock *int64
	Stock    *int64
	Note     string
}

type AdjustParams struct {
	ProductID uuid.UUID
	Delta     int64
	Type      MovementType
	Note      string
}

func (p CreateParams) validate() error {
	switch {
	case strings.TrimSpace(p.SKU) == "":
		return validation.New("sku", "is required")
	case strings.TrimSpace(p.Name) == "":
		return validation.New("name", "is required")
	case p.Price < 0:
		return validation.New("price", "must not be negative")
	case p.Stock < 0:
		return validation.New("stock", "must not be negative")
	case p.MinStock < 0:
		return validation.New("min_stock", "must not be negative")
	}

	return nil
}

// CreateProduct stores a new product together with its initial "creation" movement.
func (s *Service) CreateProduct(ctx context.Context, tenantID string, params CreateParams) (*Product, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	p := &Product{
		TenantID: tenantID,
		SKU:      strings.TrimSpace(params.SKU),
		Name:     strings.TrimSpace(params.Name),
		Category: strings.TrimSpace(params.Category),
		Price:    params.Price,
		Stock:    params.Stock,
		MinStock: params.MinStock,
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateProduct(ctx, p); err != nil {
			return err
		}

		return s.repo.CreateMovement(ctx, newMovement(p, MovementCreation, p.Stock, "product created"))
	})
	if err != nil {
		return nil, fmt.Errorf("creating product: %w", err)
	}

	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, tenantID string, id uuid.UUID) (*Product, error) {
	return s.repo.GetProduct(ctx, tenantID, id)
}

func (s *Service) ListProducts(ctx context.Context, tenantID string, filter ListFilter) ([]*Product, error) {
	return s.repo.ListProducts(ctx, tenantID, filter)
}

// LowStock lists products whose stock is at or below their minimum.
func (s *Service) LowStock(ctx context.Context, tenantID string) ([]*Product, error) {
	return s.repo.ListProducts(ctx, tenantID, ListFilter{LowStockOnly: true})
}

// History returns movements newest first.
func (s *Service) History(ctx context.Context, tenantID string, filter MovementFilter) ([]*Movement, error) {
	return s.repo.ListMovements(ctx, tenantID, filter)
}

// Adjust applies delta to the product's stock and records one movement for it,
// both in the same transaction. A change that would leave stock negative is
// rejected with *InsufficientStockError and nothing is written.
func (s *Service) Adjust(ctx context.Context, tenantID string, params AdjustParams) (*Movement, error) {
	ctx, span := tracer.Start(ctx, "stock.Adjust", trace.WithAttributes(
		attribute.String("product_id", params.ProductID.String()),
		attribute.Int64("delta", params.Delta),
		attribute.String("type", string(params.Type)),
	))
	defer span.End()

	if params.Delta == 0 {
		return nil, validation.New("delta", "must not be zero")
	}

	if !params.Type.Valid() || params.Type == MovementCreation || params.Type == MovementDeletion {
		return nil, validation.New("type", fmt.Sprintf("unsupported movement type %q", params.Type))
	}

	var mv *Movement

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetProductForUpdate(ctx, tenantID, params.ProductID)
		if err != nil {
			return err
		}

		if params.Delta > math.MaxInt64-p.Stock {
			return validation.New("delta", "resulting stock exceeds the supported range")
		}

		next := p.Stock + params.Delta
		if next < 0 {
			return &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: -params.Delta,
				Available: p.Stock,
			}
		}

		p.Stock = next

		if err := s.repo.UpdateProduct(ctx, p); err != nil {
			return err
		}

		mv = newMovement(p, params.Type, params.Delta, params.Note)

		return s.repo.CreateMovement(ctx, mv)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return nil, fmt.Errorf("adjusting stock of %s: %w", params.ProductID, err)
	}

	span.SetAttributes(attribute.Int64("new_stock", mv.NewStock))

	return mv, nil
}

// UpdateProduct changes product attributes. A stock change is recorded as a
// manual adjustment movement with the difference; an unchanged stock records none.
func (s *Service) UpdateProduct(ctx context.Context, tenantID string, id uuid.UUID, params UpdateParams) (*Product, error) {
	var p *Product

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error

		p, err = s.repo.GetProductForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}

		if err := applyUpdate(p, params); err != nil {
			return err
		}

		delta := int64(0)
		if params.Stock != nil {
			delta = *params.Stock - p.Stock
			p.Stock = *params.Stock
		}

		if err := s.repo.UpdateProduct(ctx, p); err != nil {
			return err
		}

		if delta == 0 {
			return nil
		}

		note := params.Note
		if note == "" {
			note = "manual stock update"
		}

		return s.repo.CreateMovement(ctx, newMovement(p, MovementManualAdjustment, delta, note))
	})
	if err != nil {
		return nil, fmt.Errorf("updating product: %w", err)
	}

	return p, nil
}

func applyUpdate(p *Product, params UpdateParams) error {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return validation.New("name", "is required")
		}

		p.Name = name
	}

	if params.Category != nil {
		p.Category = strings.TrimSpace(*params.Category)
	}

	if params.Price != nil {
		if *params.Price < 0 {
			return validation.New("price", "must not be negative")
		}

		p.Price = *params.Price
	}

	if params.MinStock != nil {
		if *params.MinStock < 0 {
			return validation.New("min_stock", "must not be negative")
		}

		p.MinStock = *params.MinStock
	}

	if params.Stock != nil && *params.Stock < 0 {
		return validation.New("stock", "must not be negative")
	}

	return nil
}

// DeleteProduct removes the product and records a "deletion" movement that
// takes its remaining stock to zero.
func (s *Service) DeleteProduct(ctx context.Context, tenantID string, id uuid.UUID) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetProductForUpdate(ctx, tenantID, id)
		if err != nil {
			return err
		}

		change := -p.Stock
		p.Stock = 0

		if err := s.repo.CreateMovement(ctx, newMovement(p, MovementDeletion, change, "product deleted")); err != nil {
			return err
		}

		return s.repo.DeleteProduct(ctx, tenantID, id)
	})
	if err != nil {
		return fmt.Errorf("deleting product: %w", err)
	}

	return nil
}

func newMovement(p *Product, typ MovementType, change int64, note string) *Movement {
	return &Movement{
		TenantID:    p.TenantID,
		ProductID:   p.ID,
		ProductSKU:  p.SKU,
		ProductName: p.Name,
		Type:        typ,
		Change:      change,
		NewStock:    p.Stock,
		Note:        note,
	}
}
