package company

import (
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
)

const maxLogoBytes = 5 << 20

type ServiceAPI interface {
	Get(ctx context.Context) (*Settings, error)
	Update(ctx context.Context, caller *internal.Principal, dto UpdateSettingsDTO) (*Settings, error)
	UploadLogo(ctx context.Context, caller *internal.Principal, r io.Reader, contentType string) (*Settings, error)
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

// Get is public so the login page can be branded.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.Get(r.Context())
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, settings)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var dto UpdateSettingsDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleError(w, err)
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	settings, err := h.Service.Update(r.Context(), p, dto)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, settings)
}

// UploadLogo expects multipart/form-data with a "logo" file part.
func (h *Handler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid multipart form", internal.ErrCodeInvalidFile).WithCause(err))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		h.HandleError(w, internal.NewValidationFieldError("logo", "logo file is required", internal.ErrCodeInvalidFile))
		return
	}
	defer file.Close()

	p, _ := internal.PrincipalFromContext(r.Context())
	settings, err := h.Service.UploadLogo(r.Context(), p, file, header.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.Warn("UploadLogo: failed", "error", err)
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, settings)
}
