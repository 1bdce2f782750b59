package dashboard

import (
	"context"
	"net/http"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
)

type ServiceAPI interface {
	Get(ctx context.Context, caller *internal.Principal) (*Stats, error)
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

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := internal.PrincipalFromContext(r.Context())
	stats, err := h.Service.Get(r.Context(), p)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, stats)
}
