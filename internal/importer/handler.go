package importer

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
)

const maxCSVBytes = 2 << 20

type ServiceAPI interface {
	ImportDocuments(ctx context.Context, caller *internal.Principal, files []File, meta DocumentMeta, notify bool) (*DocumentReport, error)
	ImportWorkers(ctx context.Context, caller *internal.Principal, csvText string) (*WorkerReport, error)
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

// ImportDocuments handles POST /imports/documents. The form carries one or
// more "files" parts plus title, description, category and notify.
func (h *Handler) ImportDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.HandleError(w, internal.NewValidationError("invalid multipart form", internal.ErrCodeInvalidFile).WithCause(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		h.HandleError(w, internal.NewValidationFieldError("files", "at least one file is required", internal.ErrCodeInvalidFile))
		return
	}

	files := make([]File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, fileFromHeader(fh))
	}

	meta := DocumentMeta{Title: r.FormValue("title")}
	if v := r.FormValue("description"); v != "" {
		meta.Description = &v
	}
	if v := r.FormValue("category"); v != "" {
		meta.Category = &v
	}
	notify, _ := strconv.ParseBool(r.FormValue("notify"))

	p, _ := internal.PrincipalFromContext(r.Context())
	report, err := h.Service.ImportDocuments(r.Context(), p, files, meta, notify)
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

// ImportWorkers handles POST /imports/workers with either a raw text/csv body
// or a multipart "file" part.
func (h *Handler) ImportWorkers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCSVBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.HandleError(w, internal.NewValidationFieldError("file", "csv file is required", internal.ErrCodeInvalidFile))
			return
		}
		defer file.Close()
		src = file
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		h.HandleError(w, internal.NewValidationError("could not read csv", internal.ErrCodeInvalidFile).WithCause(err))
		return
	}
	if strings.TrimSpace(string(raw)) == "" {
		h.HandleError(w, internal.NewValidationFieldError("file", "csv is empty", internal.ErrCodeInvalidFile))
		return
	}

	p, _ := internal.PrincipalFromContext(r.Context())
	report, err := h.Service.ImportWorkers(r.Context(), p, string(raw))
	if err != nil {
		h.HandleError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, report)
}

func fileFromHeader(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
