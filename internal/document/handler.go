package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ListForWorker(ctx context.Context, caller *internal.Principal, filter Filter) (*WorkerListing, error)
	Open(ctx context.Context, caller *internal.Principal, id string) (*Document, io.ReadCloser, error)
	Upload(ctx context.Context, caller *internal.Principal, in UploadInput) (*UploadResult, error)
	ListAll(ctx context.Context, caller *internal.Principal) ([]*AdminDocument, error)
	Delete(ctx context.Context, caller *internal.Principal, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	MaxUploadBytes int64
}

func NewHandler(base *transport.BaseHandler, svc ServiceAPI, maxUploadBytes int64) *Handler {
	return &Handler{
		BaseHandler:    base,
		Service:        svc,
		MaxUploadBytes: maxUploadBytes,
	}
}

// ListMine handles GET /me/documents?search=&category=&month=
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
		Month:    q.Get("month"),
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	listing, err := h.Service.ListForWorker(r.Context(), p, filter)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, listing)
}

// Download streams the file as an attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, _ := internal.PrincipalFromContext(r.Context())
	doc, body, err := h.Service.Open(r.Context(), p, id)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.FileType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if doc.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.Logger.Warn("Download: stream interrupted", "document_id", id, "error", err)
	}
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	p, _ := internal.PrincipalFromContext(r.Context())
	docs, err := h.Service.ListAll(r.Context(), p)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, docs)
}

// Upload expects multipart/form-data with a "file" part and the metadata as
// form values: title, description, category, user_id, cost_center_id, notify.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid multipart form", internal.ErrCodeInvalidFile).WithCause(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleError(w, internal.NewValidationFieldError("file", "file is required", internal.ErrCodeInvalidFile))
		return
	}
	defer file.Close()

	notify, _ := strconv.ParseBool(r.FormValue("notify"))
	in := UploadInput{
		File:         file,
		FileName:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Title:        r.FormValue("title"),
		Description:  formValue(r, "description"),
		Category:     formValue(r, "category"),
		UserID:       formValue(r, "user_id"),
		CostCenterID: formValue(r, "cost_center_id"),
		Notify:       notify,
	}
	if in.ContentType == "" {
		in.ContentType = "application/octet-stream"
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	result, err := h.Service.Upload(r.Context(), p, in)
	if err != nil {
		h.Logger.Warn("Upload: failed", "file_name", header.Filename, "error", err)
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, _ := internal.PrincipalFromContext(r.Context())
	if err := h.Service.Delete(r.Context(), p, id); err != nil {
		h.HandleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func formValue(r *http.Request, key string) *string {
	if _, ok := r.MultipartForm.Value[key]; !ok {
		return nil
	}
	v := r.FormValue(key)
	return &v
}
