package stock

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
	"github.com/MrJamesThe3rd/facturador/internal/http/respond"
	"github.com/MrJamesThe3rd/facturador/internal/stock"
)

const maxMovements = 500

type Handler struct {
	svc *stock.Service
}

func NewHandler(svc *stock.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the product endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/low-stock", h.lowStock)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/adjustments", h.adjust)
	r.Get("/{id}/movements", h.productMovements)
}

// MovementRoutes mounts the tenant-wide movement history.
func (h *Handler) MovementRoutes(r chi.Router) {
	r.Get("/", h.movements)
}

type createProductRequest struct {
	SKU      string `json:"sku" validate:"required,max=64"`
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"max=100"`
	Price    int64  `json:"price" validate:"gte=0"`
	Stock    int64  `json:"stock" validate:"gte=0"`
	MinStock int64  `json:"min_stock" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.CreateProduct(r.Context(), auth.TenantFrom(r.Context()), stock.CreateParams{
		SKU:      req.SKU,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		MinStock: req.MinStock,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := stock.ListFilter{}

	if s := r.URL.Query().Get("category"); s != "" {
		filter.Category = &s
	}

	if s := r.URL.Query().Get("low_stock"); s != "" {
		low, err := strconv.ParseBool(s)
		if err != nil {
			respond.BadRequest(w, r, "low_stock")
			return
		}

		filter.LowStockOnly = low
	}

	ps, err := h.svc.ListProducts(r.Context(), auth.TenantFrom(r.Context()), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProductResponseList(ps))
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	ps, err := h.svc.LowStock(r.Context(), auth.TenantFrom(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProductResponseList(ps))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	p, err := h.svc.GetProduct(r.Context(), auth.TenantFrom(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProductResponse(p))
}

type updateProductRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category *string `json:"category,omitempty" validate:"omitempty,max=100"`
	Price    *int64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	MinStock *int64  `json:"min_stock,omitempty" validate:"omitempty,gte=0"`
	Stock    *int64  `json:"stock,omitempty" validate:"omitempty,gte=0"`
	Note     string  `json:"note" validate:"max=200"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	var req updateProductRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	p, err := h.svc.UpdateProduct(r.Context(), auth.TenantFrom(r.Context()), id, stock.UpdateParams{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		MinStock: req.MinStock,
		Stock:    req.Stock,
		Note:     req.Note,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	if err := h.svc.DeleteProduct(r.Context(), auth.TenantFrom(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adjustRequest struct {
	Delta int64              `json:"delta" validate:"ne=0"`
	Type  stock.MovementType `json:"type" validate:"required,oneof=sale manual_adjustment purchase"`
	Note  string             `json:"note" validate:"max=200"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	var req adjustRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	mv, err := h.svc.Adjust(r.Context(), auth.TenantFrom(r.Context()), stock.AdjustParams{
		ProductID: id,
		Delta:     req.Delta,
		Type:      req.Type,
		Note:      req.Note,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toMovementResponse(mv))
}

func (h *Handler) productMovements(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.BadRequest(w, r, "id")
		return
	}

	filter, ok := movementFilter(w, r)
	if !ok {
		return
	}

	filter.ProductID = &id

	h.writeHistory(w, r, filter)
}

func (h *Handler) movements(w http.ResponseWriter, r *http.Request) {
	filter, ok := movementFilter(w, r)
	if !ok {
		return
	}

	if s := r.URL.Query().Get("product_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			respond.BadRequest(w, r, "product_id")
			return
		}

		filter.ProductID = &id
	}

	h.writeHistory(w, r, filter)
}

func (h *Handler) writeHistory(w http.ResponseWriter, r *http.Request, filter stock.MovementFilter) {
	ms, err := h.svc.History(r.Context(), auth.TenantFrom(r.Context()), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toMovementResponseList(ms))
}

func movementFilter(w http.ResponseWriter, r *http.Request) (stock.MovementFilter, bool) {
	filter := stock.MovementFilter{}

	if s := r.URL.Query().Get("type"); s != "" {
		typ := stock.MovementType(s)
		if !typ.Valid() {
			respond.BadRequest(w, r, "type")
			return filter, false
		}

		filter.Type = &typ
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 1 || limit > maxMovements {
			respond.BadRequest(w, r, "limit")
			return filter, false
		}

		filter.Limit = limit
	}

	return filter, true
}
