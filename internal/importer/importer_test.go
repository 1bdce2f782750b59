package importer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/costcenter"
	"github.com/frahmantamala/docportal/internal/document"
	"github.com/frahmantamala/docportal/internal/importer"
	"github.com/frahmantamala/docportal/internal/notification"
	"github.com/frahmantamala/docportal/internal/storage"
	"github.com/frahmantamala/docportal/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
)

func TestImporter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Importer Suite")
}

type mockDocuments struct {
	inserted  []*document.Document
	removed   []string
	insertErr error
	// slowFile makes the insert of that file wait for the item deadline.
	slowFile string
}

func (m *mockDocuments) Insert(ctx context.Context, doc *document.Document) error {
	if m.slowFile != "" && doc.FileName == m.slowFile {
		<-ctx.Done()
		return ctx.Err()
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	doc.ID = fmt.Sprintf("doc-%d", len(m.inserted)+1)
	m.inserted = append(m.inserted, doc)
	return nil
}

func (m *mockDocuments) Remove(_ context.Context, id string) error {
	m.removed = append(m.removed, id)
	return nil
}

type mockWorkers struct {
	workers []*user.Profile
	created []user.CreateWorkerDTO
	emails  map[string]bool
}

func (m *mockWorkers) ListWorkers(_ context.Context, _ *internal.Principal) ([]*user.Profile, error) {
	return m.workers, nil
}

func (m *mockWorkers) CreateWorker(_ context.Context, _ *internal.Principal, dto user.CreateWorkerDTO) (string, error) {
	if err := dto.Validate(6); err != nil {
		return "", err
	}
	if m.emails[dto.Email] {
		return "", internal.ErrEmailAlreadyRegistered
	}
	m.emails[dto.Email] = true
	m.created = append(m.created, dto)
	return fmt.Sprintf("w-%d", len(m.created)), nil
}

type mockCostCenters []*costcenter.CostCenter

func (m mockCostCenters) List(_ context.Context) ([]*costcenter.CostCenter, error) {
	return m, nil
}

type mockMailer struct {
	sent []notification.DocumentEmail
	err  error
}

func (m *mockMailer) SendDocumentEmail(_ context.Context, email notification.DocumentEmail) (notification.Receipt, error) {
	if m.err != nil {
		return notification.Receipt{}, m.err
	}
	m.sent = append(m.sent, email)
	return notification.Receipt{ID: "msg-1"}, nil
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func brokenPDF(name string) importer.File {
	return importer.File{
		Name:        name,
		ContentType: "application/pdf",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(failingReader{}), nil
		},
	}
}

func pdf(name string) importer.File {
	return importer.File{
		Name:        name,
		ContentType: "application/pdf",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("%PDF")), nil
		},
	}
}

var _ = Describe("Importer", func() {
	var (
		fs        afero.Fs
		docs      *mockDocuments
		workers   *mockWorkers
		mailer    *mockMailer
		im        *importer.Importer
		admin     *internal.Principal
		ctx       context.Context
		discarded *slog.Logger
	)

	BeforeEach(func() {
		fs = afero.NewMemMapFs()
		docs = &mockDocuments{}
		workers = &mockWorkers{
			emails: map[string]bool{},
			workers: []*user.Profile{
				{ID: "w1", Role: internal.RoleWorker, FullName: "Juan Pérez", Email: "juan@example.com"},
				{ID: "w2", Role: internal.RoleWorker, FullName: "María José Soto"},
			},
		}
		mailer = &mockMailer{}
		discarded = slog.New(slog.NewTextHandler(io.Discard, nil))
		centers := mockCostCenters{{ID: "cc-1", Name: "Ventas"}}
		im = importer.New(storage.NewStore(fs, "http://files/documents"), docs, workers, centers, mailer, nil, importer.Config{}, discarded)
		admin = &internal.Principal{UserID: "a1", Role: internal.RoleAdmin}
		ctx = context.Background()
	})

	Describe("ImportDocuments", func() {
		It("matches files to workers and reports each outcome", func() {
			report, err := im.ImportDocuments(ctx, admin, []importer.File{
				pdf("Juan_Perez_contrato.pdf"),
				pdf("factura_2024.pdf"),
				pdf("soto maria jose.pdf"),
				{Name: "foto.png", ContentType: "image/png"},
			}, importer.DocumentMeta{Title: "Contrato"}, true)
			Expect(err).NotTo(HaveOccurred())

			Expect(report.Excluded).To(ConsistOf("foto.png"))
			Expect(report.Results).To(HaveLen(3))
			Expect(report.Summary).To(Equal(importer.Summary{Succeeded: 2, Failed: 1}))

			Expect(report.Results[0].Success).To(BeTrue())
			Expect(report.Results[0].WorkerID).To(Equal("w1"))
			Expect(report.Results[0].Message).To(Equal("associated with Juan Pérez (email sent to juan@example.com)"))

			Expect(report.Results[1].Success).To(BeFalse())
			Expect(report.Results[1].Message).To(Equal("no associable worker"))

			Expect(report.Results[2].WorkerID).To(Equal("w2"))
			Expect(report.Results[2].Message).To(HaveSuffix("(no email configured)"))

			Expect(docs.inserted).To(HaveLen(2))
			Expect(*docs.inserted[0].UserID).To(Equal("w1"))
			Expect(docs.inserted[0].CostCenterID).To(BeNil())
			Expect(*docs.inserted[0].UploadedBy).To(Equal("a1"))
			Expect(docs.inserted[0].FileURL).To(HavePrefix("http://files/documents/w1/"))
			Expect(mailer.sent).To(HaveLen(1))
		})

		It("removes the uploaded blob when the insert fails", func() {
			docs.insertErr = errors.New("db down")

			report, err := im.ImportDocuments(ctx, admin, []importer.File{pdf("Juan_Perez.pdf")}, importer.DocumentMeta{Title: "X"}, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Summary.Failed).To(Equal(1))
			Expect(report.Results[0].Message).To(HavePrefix("database insert failed"))

			entries, _ := afero.ReadDir(fs, "w1")
			Expect(entries).To(BeEmpty())
		})

		It("records a storage failure without a row and moves on", func() {
			report, err := im.ImportDocuments(ctx, admin, []importer.File{
				brokenPDF("Juan_Perez_roto.pdf"),
				pdf("Juan_Perez_bueno.pdf"),
			}, importer.DocumentMeta{Title: "X"}, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Summary).To(Equal(importer.Summary{Succeeded: 1, Failed: 1}))

			Expect(report.Results[0].Success).To(BeFalse())
			Expect(report.Results[0].Message).To(HavePrefix("upload failed"))
			Expect(report.Results[1].Success).To(BeTrue())

			Expect(docs.inserted).To(HaveLen(1))
			Expect(docs.inserted[0].FileName).To(Equal("Juan_Perez_bueno.pdf"))
			entries, _ := afero.ReadDir(fs, "w1")
			Expect(entries).To(HaveLen(1))
		})

		It("never inserts rows when the store rejects every write", func() {
			readOnly := importer.New(storage.NewStore(afero.NewReadOnlyFs(fs), "http://files/documents"), docs, workers, nil, mailer, nil, importer.Config{}, discarded)

			report, err := readOnly.ImportDocuments(ctx, admin, []importer.File{
				pdf("Juan_Perez.pdf"),
				pdf("soto maria jose.pdf"),
			}, importer.DocumentMeta{Title: "X"}, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Summary).To(Equal(importer.Summary{Succeeded: 0, Failed: 2}))
			for _, r := range report.Results {
				Expect(r.Message).To(HavePrefix("upload failed"))
			}
			Expect(docs.inserted).To(BeEmpty())
			Expect(mailer.sent).To(BeEmpty())
		})

		It("fails a slow item after the item timeout and still imports the next one", func() {
			docs.slowFile = "Juan_Perez_lento.pdf"
			timed := importer.New(storage.NewStore(fs, "http://files/documents"), docs, workers, nil, mailer, nil, importer.Config{ItemTimeout: 50 * time.Millisecond}, discarded)

			report, err := timed.ImportDocuments(ctx, admin, []importer.File{
				pdf("Juan_Perez_lento.pdf"),
				pdf("Juan_Perez_rapido.pdf"),
			}, importer.DocumentMeta{Title: "X"}, false)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Summary).To(Equal(importer.Summary{Succeeded: 1, Failed: 1}))

			Expect(report.Results[0].Message).To(HavePrefix("database insert failed"))
			Expect(report.Results[0].Message).To(ContainSubstring(context.DeadlineExceeded.Error()))
			Expect(report.Results[1].Success).To(BeTrue())

			entries, _ := afero.ReadDir(fs, "w1")
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(HaveSuffix("_Juan_Perez_rapido.pdf"))
		})

		It("keeps the document when the email fails", func() {
			mailer.err = errors.New("smtp down")

			report, err := im.ImportDocuments(ctx, admin, []importer.File{pdf("juanperez.pdf")}, importer.DocumentMeta{Title: "X"}, true)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Results[0].Success).To(BeTrue())
			Expect(report.Results[0].Message).To(ContainSubstring("(email not sent: smtp down)"))
		})

		It("requires a title before touching storage", func() {
			_, err := im.ImportDocuments(ctx, admin, []importer.File{pdf("juanperez.pdf")}, importer.DocumentMeta{Title: "  "}, false)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(docs.inserted).To(BeEmpty())
		})

		It("rejects non admin callers", func() {
			worker := &internal.Principal{UserID: "w1", Role: internal.RoleWorker}
			_, err := im.ImportDocuments(ctx, worker, []importer.File{pdf("juanperez.pdf")}, importer.DocumentMeta{Title: "X"}, false)
			Expect(err).To(MatchError(internal.ErrAdminRequired))
		})
	})

	Describe("ImportWorkers", func() {
		const csv = "Nombre,Email,Telefono,Centro\n" +
			"Ana Rojas, ana@example.com, 555-1, ventas\n" +
			"\n" +
			"Luis Díaz,luis@example.com,\n" +
			"Solo Nombre,solo@example.com\n" +
			"Eva Paz,eva@example.com,555-3,Desconocido\n"

		It("creates valid rows and reports malformed ones by row number", func() {
			report, err := im.ImportWorkers(ctx, admin, csv)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Summary).To(Equal(importer.Summary{Succeeded: 3, Failed: 1}))

			Expect(report.Results).To(HaveLen(4))
			Expect(report.Results[0].Row).To(Equal(2))
			Expect(report.Results[2].Row).To(Equal(4))
			Expect(report.Results[2].Success).To(BeFalse())
			Expect(report.Results[2].Message).To(ContainSubstring("row 4"))
			Expect(report.Results[3].Success).To(BeTrue())

			Expect(workers.created).To(HaveLen(3))
			Expect(*workers.created[0].CostCenterID).To(Equal("cc-1"))
			Expect(*workers.created[0].Phone).To(Equal("555-1"))
			Expect(workers.created[1].Phone).To(BeNil())
			Expect(workers.created[2].CostCenterID).To(BeNil())
			Expect(workers.created[0].Rut).To(BeEmpty())

			for _, r := range []importer.RowResult{report.Results[0], report.Results[1], report.Results[3]} {
				Expect(r.GeneratedPassword).To(HaveLen(12))
			}
		})

		It("reports conflicts when the same file is imported again", func() {
			_, err := im.ImportWorkers(ctx, admin, csv)
			Expect(err).NotTo(HaveOccurred())

			report, err := im.ImportWorkers(ctx, admin, csv)
			Expect(err).NotTo(HaveOccurred())
			Expect(report.Summary).To(Equal(importer.Summary{Succeeded: 0, Failed: 4}))
			Expect(report.Results[0].Message).To(ContainSubstring("already been registered"))
			Expect(report.Results[0].GeneratedPassword).To(BeEmpty())
			Expect(workers.created).To(HaveLen(3))
		})

		It("rejects non admin callers without creating anyone", func() {
			_, err := im.ImportWorkers(ctx, &internal.Principal{UserID: "w1", Role: internal.RoleWorker}, csv)
			Expect(err).To(MatchError(internal.ErrAdminRequired))
			Expect(workers.created).To(BeEmpty())
		})
	})

	Describe("ParseWorkerCSV", func() {
		It("skips the header and blank lines", func() {
			rows := importer.ParseWorkerCSV("h1,h2,h3\r\n\r\n a , b , c \n")
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Number).To(Equal(2))
			Expect(rows[0].Fields).To(Equal([]string{"a", "b", "c"}))
		})
	})
})

var _ = Describe("Pipeline", func() {
	It("rolls back completed steps in reverse order", func() {
		var calls []string
		step := func(name string, fail bool) importer.Step {
			return importer.Step{
				Name: name,
				Run: func(context.Context) error {
					calls = append(calls, "run "+name)
					if fail {
						return errors.New("boom")
					}
					return nil
				},
				Rollback: func(context.Context) error {
					calls = append(calls, "undo "+name)
					return nil
				},
			}
		}

		p := importer.NewPipeline(slog.New(slog.NewTextHandler(io.Discard, nil)),
			step("a", false), step("b", false), step("c", true))
		err := p.Run(context.Background())

		var stepErr *importer.StepError
		Expect(errors.As(err, &stepErr)).To(BeTrue())
		Expect(stepErr.Step).To(Equal("c"))
		Expect(calls).To(Equal([]string{"run a", "run b", "run c", "undo b", "undo a"}))
	})
})
