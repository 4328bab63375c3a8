package client

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/client"
	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
	"github.com/MrJamesThe3rd/facturador/internal/http/respond"
)

type Handler struct {
	svc *client.Service
}

func NewHandler(svc *client.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
}

type clientResponse struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	DocType      client.DocType      `json:"doc_type"`
	DocNumber    string              `json:"doc_number,omitempty"`
	IVACondition client.IVACondition `json:"iva_condition"`
	Email        string              `json:"email,omitempty"`
	Phone        string              `json:"phone,omitempty"`
	Address      string              `json:"address,omitempty"`
	Active       bool                `json:"active"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    *time.Time          `json:"updated_at,omitempty"`
}

func toResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:           c.ID,
		Name:         c.Name,
		DocType:      c.DocType,
		DocNumber:    c.DocNumber,
		IVACondition: c.IVACondition,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		Active:       c.Active,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

type createClientRequest struct {
	Name         string              `json:"name" validate:"required,max=200"`
	DocType      client.DocType      `json:"doc_type" validate:"omitempty,oneof=DNI CUIT CUIL SD"`
	DocNumber    string              `json:"doc_number"`
	IVACondition client.IVACondition `json:"iva_condition"`
	Email        string              `json:"email" validate:"omitempty,email"`
	Phone        string              `json:"phone" validate:"max=50"`
	Address      string              `json:"address" validate:"max=300"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createClientRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.Create(r.Context(), auth.TenantFrom(r.Context()), client.CreateParams{
		Name:         req.Name,
		DocType:      req.DocType,
		DocNumber:    req.DocNumber,
		IVACondition: req.IVACondition,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := client.ListFilter{}

	if s := r.URL.Query().Get("active"); s != "" {
		active, err := strconv.ParseBool(s)
		if err != nil {
			respond.BadRequest(w, r, "active")
			return
		}

		filter.ActiveOnly = active
	}

	if s := r.URL.Query().Get("doc_type"); s != "" {
		filter.DocType = new(client.DocType(s))
	}

	cs, err := h.svc.List(r.Context(), auth.TenantFrom(r.Context()), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]clientResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	c, err := h.svc.Get(r.Context(), auth.TenantFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

type updateClientRequest struct {
	Name         *string              `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	DocType      *client.DocType      `json:"doc_type,omitempty" validate:"omitempty,oneof=DNI CUIT CUIL SD"`
	DocNumber    *string              `json:"doc_number,omitempty"`
	IVACondition *client.IVACondition `json:"iva_condition,omitempty"`
	Email        *string              `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string              `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address      *string              `json:"address,omitempty" validate:"omitempty,max=300"`
	Active       *bool                `json:"active,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	var req updateClientRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	c, err := h.svc.Update(r.Context(), auth.TenantFrom(r.Context()), id, client.UpdateParams(req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}
