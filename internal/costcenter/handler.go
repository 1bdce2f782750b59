package costcenter

import (
	"context"
	"net/http"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context) ([]*CostCenter, error)
	Get(ctx context.Context, id string) (*CostCenter, error)
	Create(ctx context.Context, caller *internal.Principal, dto CreateCostCenterDTO) (*CostCenter, error)
	Update(ctx context.Context, caller *internal.Principal, id string, dto UpdateCostCenterDTO) (*CostCenter, error)
	Delete(ctx context.Context, caller *internal.Principal, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		Service:     svc,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cc, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var dto CreateCostCenterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	cc, err := h.Service.Create(r.Context(), p, dto)
	if err != nil {
		h.Logger.Warn("CreateCostCenter: failed", "error", err)
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, cc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateCostCenterDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	cc, err := h.Service.Update(r.Context(), p, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, cc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := internal.PrincipalFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		h.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
