package numbering

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/facturador/internal/http/auth"
	"github.com/MrJamesThe3rd/facturador/internal/http/respond"
	"github.com/MrJamesThe3rd/facturador/internal/numbering"
)

type Handler struct {
	svc *numbering.Service
}

func NewHandler(svc *numbering.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{pos}/next", h.peek)
}

type nextResponse struct {
	POS  string `json:"pos"`
	Next string `json:"next"`
}

// peek previews the next number of a point of sale without consuming it.
func (h *Handler) peek(w http.ResponseWriter, r *http.Request) {
	pos := chi.URLParam(r, "pos")

	next, err := h.svc.PeekNext(r.Context(), auth.TenantFrom(r.Context()), pos)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, nextResponse{POS: pos, Next: next})
}
