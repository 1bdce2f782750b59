package importer_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/importer"
	"github.com/frahmantamala/docportal/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type capturedFile struct {
	name        string
	contentType string
	size        int64
	body        string
}

type fakeImportService struct {
	files   []capturedFile
	meta    importer.DocumentMeta
	notify  bool
	csv     string
	caller  *internal.Principal
	calls   int
	failErr error
}

func (f *fakeImportService) ImportDocuments(_ context.Context, caller *internal.Principal, files []importer.File, meta importer.DocumentMeta, notify bool) (*importer.DocumentReport, error) {
	f.calls++
	if f.failErr != nil {
		return nil, f.failErr
	}
	f.caller = caller
	f.meta = meta
	f.notify = notify
	for _, file := range files {
		rc, err := file.Open()
		Expect(err).NotTo(HaveOccurred())
		body, _ := io.ReadAll(rc)
		_ = rc.Close()
		f.files = append(f.files, capturedFile{name: file.Name, contentType: file.ContentType, size: file.Size, body: string(body)})
	}
	return &importer.DocumentReport{Results: []importer.FileResult{}, Excluded: []string{}}, nil
}

func (f *fakeImportService) ImportWorkers(_ context.Context, caller *internal.Principal, csvText string) (*importer.WorkerReport, error) {
	f.calls++
	if f.failErr != nil {
		return nil, f.failErr
	}
	f.caller = caller
	f.csv = csvText
	return &importer.WorkerReport{}, nil
}

type formPart struct {
	field, fileName, contentType, body string
}

func multipartBody(fields map[string]string, parts ...formPart) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		Expect(mw.WriteField(k, v)).To(Succeed())
	}
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.fileName+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		Expect(err).NotTo(HaveOccurred())
		_, _ = io.WriteString(w, p.body)
	}
	Expect(mw.Close()).To(Succeed())
	return buf, mw.FormDataContentType()
}

var _ = Describe("Handler", func() {
	var (
		svc    *fakeImportService
		h      *importer.Handler
		caller *internal.Principal
	)

	BeforeEach(func() {
		svc = &fakeImportService{}
		h = importer.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), svc, 10<<20)
		caller = &internal.Principal{UserID: "a1", Role: internal.RoleAdmin}
	})

	withCaller := func(req *http.Request) *http.Request {
		return req.WithContext(internal.ContextWithPrincipal(req.Context(), caller))
	}

	Describe("ImportDocuments", func() {
		It("maps every file part and the shared form fields", func() {
			body, ct := multipartBody(map[string]string{
				"title":       "Liquidación",
				"description": "Octubre",
				"category":    "informes",
				"notify":      "true",
			},
				formPart{"files", "Juan_Perez.pdf", "application/pdf", "%PDF-1"},
				formPart{"files", "foto.png", "image/png", "png"},
			)
			req := httptest.NewRequest(http.MethodPost, "/imports/documents", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()

			h.ImportDocuments(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusOK))

			Expect(svc.caller).To(Equal(caller))
			Expect(svc.notify).To(BeTrue())
			Expect(svc.meta.Title).To(Equal("Liquidación"))
			Expect(*svc.meta.Description).To(Equal("Octubre"))
			Expect(*svc.meta.Category).To(Equal("informes"))
			Expect(svc.files).To(Equal([]capturedFile{
				{name: "Juan_Perez.pdf", contentType: "application/pdf", size: 6, body: "%PDF-1"},
				{name: "foto.png", contentType: "image/png", size: 3, body: "png"},
			}))
		})

		It("treats a missing or malformed notify flag as false and leaves optional fields unset", func() {
			for _, notify := range []string{"", "maybe"} {
				svc.files = nil
				fields := map[string]string{"title": "X"}
				if notify != "" {
					fields["notify"] = notify
				}
				body, ct := multipartBody(fields, formPart{"files", "a.pdf", "application/pdf", "%PDF"})
				req := httptest.NewRequest(http.MethodPost, "/imports/documents", body)
				req.Header.Set("Content-Type", ct)
				rec := httptest.NewRecorder()

				h.ImportDocuments(rec, withCaller(req))
				Expect(rec.Code).To(Equal(http.StatusOK))
				Expect(svc.notify).To(BeFalse())
				Expect(svc.meta.Description).To(BeNil())
				Expect(svc.meta.Category).To(BeNil())
			}
		})

		It("requires at least one file", func() {
			body, ct := multipartBody(map[string]string{"title": "X"})
			req := httptest.NewRequest(http.MethodPost, "/imports/documents", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()

			h.ImportDocuments(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.calls).To(BeZero())
		})

		It("rejects a body that is not multipart", func() {
			req := httptest.NewRequest(http.MethodPost, "/imports/documents", strings.NewReader("{}"))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			h.ImportDocuments(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.calls).To(BeZero())
		})
	})

	Describe("ImportWorkers", func() {
		const csv = "Nombre,Email,Telefono\nAna Rojas,ana@example.com,\n"

		It("reads a raw text/csv body", func() {
			req := httptest.NewRequest(http.MethodPost, "/imports/workers", strings.NewReader(csv))
			req.Header.Set("Content-Type", "text/csv")
			rec := httptest.NewRecorder()

			h.ImportWorkers(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(svc.csv).To(Equal(csv))
			Expect(svc.caller).To(Equal(caller))
		})

		It("reads the multipart file part", func() {
			body, ct := multipartBody(nil, formPart{"file", "trabajadores.csv", "text/csv", csv})
			req := httptest.NewRequest(http.MethodPost, "/imports/workers", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()

			h.ImportWorkers(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(svc.csv).To(Equal(csv))
		})

		It("requires the file part in multipart mode", func() {
			body, ct := multipartBody(map[string]string{"other": "x"})
			req := httptest.NewRequest(http.MethodPost, "/imports/workers", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()

			h.ImportWorkers(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.calls).To(BeZero())
		})

		It("rejects an empty csv without calling the service", func() {
			req := httptest.NewRequest(http.MethodPost, "/imports/workers", strings.NewReader("  \n"))
			req.Header.Set("Content-Type", "text/csv")
			rec := httptest.NewRecorder()

			h.ImportWorkers(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(svc.calls).To(BeZero())
		})

		It("renders service errors with their status", func() {
			svc.failErr = internal.ErrAdminRequired
			req := httptest.NewRequest(http.MethodPost, "/imports/workers", strings.NewReader(csv))
			rec := httptest.NewRecorder()

			h.ImportWorkers(rec, withCaller(req))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})
	})
})
