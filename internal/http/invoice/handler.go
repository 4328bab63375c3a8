package invoice

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
	"github.com/MrJamesThe3rd/facturador/internal/http/respond"
	"github.com/MrJamesThe3rd/facturador/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/issue", h.issue)
	r.Post("/{id}/cancel", h.cancel)
}

type itemRequest struct {
	ProductID   uuid.UUID        `json:"product_id"`
	Description string           `json:"description" validate:"max=200"`
	Qty         int64            `json:"qty" validate:"gt=0"`
	UnitPrice   *int64           `json:"unit_price,omitempty" validate:"omitempty,gte=0"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

func (req itemRequest) toParams() invoice.ItemParams {
	return invoice.ItemParams{
		ProductID:   req.ProductID,
		Description: req.Description,
		Qty:         req.Qty,
		UnitPrice:   req.UnitPrice,
		TaxRate:     req.TaxRate,
	}
}

func toItemParams(items []itemRequest) []invoice.ItemParams {
	params := make([]invoice.ItemParams, len(items))
	for i, it := range items {
		params[i] = it.toParams()
	}

	return params
}

type createInvoiceRequest struct {
	Type          invoice.Type          `json:"type" validate:"omitempty,oneof=A B C"`
	Concept       invoice.Concept       `json:"concept"`
	POS           string                `json:"pos"`
	ClientID      *uuid.UUID            `json:"client_id,omitempty"`
	Items         []itemRequest         `json:"items" validate:"dive"`
	PaymentMethod invoice.PaymentMethod `json:"payment_method"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	inv, err := h.svc.CreateDraft(r.Context(), auth.TenantFrom(r.Context()), invoice.DraftParams{
		Type:          req.Type,
		Concept:       req.Concept,
		POS:           req.POS,
		ClientID:      req.ClientID,
		Items:         toItemParams(req.Items),
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := invoice.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := invoice.Status(s)
		if !status.Valid() {
			respond.BadRequest(w, r, "status")
			return
		}

		filter.Status = &status
	}

	if s := r.URL.Query().Get("client_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respond.BadRequest(w, r, "client_id")
			return
		}

		filter.ClientID = &id
	}

	invs, err := h.svc.List(r.Context(), auth.TenantFrom(r.Context()), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(invs))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	inv, err := h.svc.Get(r.Context(), auth.TenantFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

type updateInvoiceRequest struct {
	Type          *invoice.Type          `json:"type,omitempty" validate:"omitempty,oneof=A B C"`
	Concept       *invoice.Concept       `json:"concept,omitempty"`
	POS           *string                `json:"pos,omitempty"`
	ClientID      *uuid.UUID             `json:"client_id,omitempty"`
	RemoveClient  bool                   `json:"remove_client,omitempty"`
	Items         *[]itemRequest         `json:"items,omitempty" validate:"omitempty,dive"`
	PaymentMethod *invoice.PaymentMethod `json:"payment_method,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	var req updateInvoiceRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	params := invoice.UpdateParams{
		Type:          req.Type,
		Concept:       req.Concept,
		POS:           req.POS,
		ClientID:      req.ClientID,
		RemoveClient:  req.RemoveClient,
		PaymentMethod: req.PaymentMethod,
	}

	if req.Items != nil {
		params.Items = new(toItemParams(*req.Items))
	}

	inv, err := h.svc.UpdateDraft(r.Context(), auth.TenantFrom(r.Context()), id, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	if err := h.svc.RemoveDraft(r.Context(), auth.TenantFrom(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) issue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	inv, err := h.svc.Issue(r.Context(), auth.TenantFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	inv, err := h.svc.Cancel(r.Context(), auth.TenantFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(inv))
}
