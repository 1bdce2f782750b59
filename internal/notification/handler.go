package notification

import (
	"context"
	"net/http"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
)

type ServiceAPI interface {
	SendDocumentEmail(ctx context.Context, email DocumentEmail) (Receipt, error)
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

type sendResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SendDocumentEmail handles POST /functions/send-document-email
func (h *Handler) SendDocumentEmail(w http.ResponseWriter, r *http.Request) {
	var email DocumentEmail
	if err := h.DecodeJSON(r, &email); err != nil {
		h.fail(w, err)
		return
	}

	receipt, err := h.Service.SendDocumentEmail(r.Context(), email)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, sendResponse{Success: true, ID: receipt.ID})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	if appErr, ok := internal.IsAppError(err); ok {
		status = appErr.StatusCode
		message = appErr.GetDetailedMessage()
	}
	h.Logger.Warn("SendDocumentEmail: failed", "status", status, "error", err)
	h.WriteJSON(w, status, sendResponse{Success: false, Error: message})
}
