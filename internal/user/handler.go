package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
)

type ServiceAPI interface {
	GetProfile(ctx context.Context, id string) (*Profile, error)
	ListWorkers(ctx context.Context, caller *internal.Principal) ([]*Profile, error)
	ListAdmins(ctx context.Context, caller *internal.Principal) ([]*Profile, error)
	CreateWorker(ctx context.Context, caller *internal.Principal, dto CreateWorkerDTO) (string, error)
	UpdateWorker(ctx context.Context, caller *internal.Principal, dto UpdateWorkerDTO) error
	DeleteWorker(ctx context.Context, caller *internal.Principal, dto DeleteWorkerDTO) error
	CreateAdmin(ctx context.Context, caller *internal.Principal, dto CreateAdminDTO) (string, error)
	DeleteAdmin(ctx context.Context, caller *internal.Principal, dto DeleteAdminDTO) error
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

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.HandleError(w, internal.ErrMissingToken)
		return
	}

	profile, err := h.Service.GetProfile(r.Context(), p.UserID)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	p, _ := internal.PrincipalFromContext(r.Context())
	workers, err := h.Service.ListWorkers(r.Context(), p)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, workers)
}

func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	p, _ := internal.PrincipalFromContext(r.Context())
	admins, err := h.Service.ListAdmins(r.Context(), p)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, admins)
}

// CreateWorker handles POST /functions/create-worker
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var dto CreateWorkerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteFunctionError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	id, err := h.Service.CreateWorker(r.Context(), p, dto)
	if err != nil {
		h.Logger.Warn("CreateWorker: failed", "error", err)
		h.WriteFunctionError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FunctionResponse{Success: true, UserID: id})
}

func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	var dto UpdateWorkerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteFunctionError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	if err := h.Service.UpdateWorker(r.Context(), p, dto); err != nil {
		h.Logger.Warn("UpdateWorker: failed", "worker_id", dto.WorkerID, "error", err)
		h.WriteFunctionError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FunctionResponse{Success: true})
}

func (h *Handler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	var dto DeleteWorkerDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteFunctionError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	if err := h.Service.DeleteWorker(r.Context(), p, dto); err != nil {
		h.Logger.Warn("DeleteWorker: failed", "worker_id", dto.WorkerID, "error", err)
		h.WriteFunctionError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FunctionResponse{Success: true})
}

func (h *Handler) CreateAdmin(w http.ResponseWriter, r *http.Request) {
	var dto CreateAdminDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteFunctionError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	id, err := h.Service.CreateAdmin(r.Context(), p, dto)
	if err != nil {
		h.Logger.Warn("CreateAdmin: failed", "error", err)
		h.WriteFunctionError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FunctionResponse{Success: true, UserID: id})
}

func (h *Handler) DeleteAdmin(w http.ResponseWriter, r *http.Request) {
	var dto DeleteAdminDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteFunctionError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	if err := h.Service.DeleteAdmin(r.Context(), p, dto); err != nil {
		h.Logger.Warn("DeleteAdmin: failed", "user_id", dto.UserID, "error", err)
		h.WriteFunctionError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, FunctionResponse{Success: true})
}
