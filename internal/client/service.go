package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=client
type Repository interface {
	// CreateClient and UpdateClient report ErrDuplicateDocument when another
	// client of the tenant already holds the same document.
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, tenantID string, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context, tenantID string, filter ListFilter) ([]*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type ListFilter struct {
	ActiveOnly bool
	DocType    *DocType
}

type CreateParams struct {
	Name         string
	DocType      DocType
	DocNumber    string
	IVACondition IVACondition
	Email        string
	Phone        string
	Address      string
}

type UpdateParams struct {
	Name         *string
	DocType      *DocType
	DocNumber    *string
	IVACondition *IVACondition
	Email        *string
	Phone        *string
	Address      *string
	Active       *bool
}

func (s *Service) Create(ctx context.Context, tenantID string, params CreateParams) (*Client, error) {
	c := &Client{
		TenantID:     tenantID,
		Name:         strings.TrimSpace(params.Name),
		DocType:      params.DocType,
		DocNumber:    NormalizeDocNumber(params.DocNumber),
		IVACondition: params.IVACondition,
		Email:        strings.TrimSpace(params.Email),
		Phone:        strings.TrimSpace(params.Phone),
		Address:      strings.TrimSpace(params.Address),
		Active:       true,
	}

	if c.DocType == "" {
		c.DocType = DocDNI
	}

	if c.IVACondition == "" {
		c.IVACondition = IVAFinalConsumer
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return c, nil
}

func (s *Service) Get(ctx context.Context, tenantID string, id uuid.UUID) (*Client, error) {
	return s.repo.GetClient(ctx, tenantID, id)
}

func (s *Service) List(ctx context.Context, tenantID string, filter ListFilter) ([]*Client, error) {
	return s.repo.ListClients(ctx, tenantID, filter)
}

func (s *Service) Update(ctx context.Context, tenantID string, id uuid.UUID, params UpdateParams) (*Client, error) {
	c, err := s.repo.GetClient(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = strings.TrimSpace(*params.Name)
	}

	if params.DocType != nil {
		c.DocType = *params.DocType
	}

	if params.DocNumber != nil {
		c.DocNumber = NormalizeDocNumber(*params.DocNumber)
	}

	if params.IVACondition != nil {
		c.IVACondition = *params.IVACondition
	}

	if params.Email != nil {
		c.Email = strings.TrimSpace(*params.Email)
	}

	if params.Phone != nil {
		c.Phone = strings.TrimSpace(*params.Phone)
	}

	if params.Address != nil {
		c.Address = strings.TrimSpace(*params.Address)
	}

	if params.Active != nil {
		c.Active = *params.Active
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("updating client: %w", err)
	}

	return c, nil
}

func validate(c *Client) error {
	if c.Name == "" {
		return validation.New("name", "is required")
	}

	if !c.IVACondition.Valid() {
		return validation.New("iva_condition", "unknown condition "+string(c.IVACondition))
	}

	return ValidateDocument(c.DocType, c.DocNumber)
}
