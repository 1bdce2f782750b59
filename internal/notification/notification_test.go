package notification_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/company"
	"github.com/frahmantamala/docportal/internal/notification"
	"github.com/frahmantamala/docportal/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type recordingSender struct {
	mu   sync.Mutex
	sent []*notification.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg *notification.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "msg-1", nil
}

type staticBranding struct {
	settings *company.Settings
	err      error
	calls    int32
}

func (b *staticBranding) Get(context.Context) (*company.Settings, error) {
	atomic.AddInt32(&b.calls, 1)
	return b.settings, b.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func validEmail() notification.DocumentEmail {
	return notification.DocumentEmail{
		To:            "ana@example.com",
		WorkerName:    "Ana Rojas",
		DocumentTitle: "Liquidación Marzo",
		DocumentURL:   "https://files.example.com/documents/w1/1_liq.pdf",
		FileName:      "liq.pdf",
	}
}

var _ = Describe("Renderer", func() {
	It("renders branding and escapes content", func() {
		r, err := notification.NewRenderer()
		Expect(err).NotTo(HaveOccurred())

		email := validEmail()
		email.WorkerName = "<script>x</script>"
		subject, body, err := r.Render(email, notification.Branding{CompanyName: "Andes", PrimaryColor: "#112233", ButtonColor: "red;}"})
		Expect(err).NotTo(HaveOccurred())
		Expect(subject).To(Equal("Nuevo documento: Liquidación Marzo"))
		Expect(body).To(ContainSubstring("<h1>Andes</h1>"))
		Expect(body).To(ContainSubstring("#112233"))
		Expect(body).NotTo(ContainSubstring("red;}"))
		Expect(body).NotTo(ContainSubstring("<script>x</script>"))
		Expect(body).To(ContainSubstring(email.DocumentURL))
	})

	It("lets the request override the company name", func() {
		r, err := notification.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
		email := validEmail()
		email.CompanyName = "Override SA"
		_, body, err := r.Render(email, notification.BrandingFrom(nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(body).To(ContainSubstring("Override SA"))
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		sender   *recordingSender
		branding *staticBranding
		d        *notification.Dispatcher
	)

	BeforeEach(func() {
		r, err := notification.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
		sender = &recordingSender{}
		branding = &staticBranding{settings: company.Defaults()}
		d = notification.NewDispatcher(sender, r, branding, notification.DispatcherConfig{FromEmail: "no-reply@example.com", FromName: "Portal"}, discard)
	})

	It("loads branding for every send", func() {
		_, err := d.SendDocumentEmail(context.Background(), validEmail())
		Expect(err).NotTo(HaveOccurred())
		branding.settings = &company.Settings{Name: "Nueva Marca", PrimaryColor: "#000000", ButtonColor: "#FFFFFF"}
		receipt, err := d.SendDocumentEmail(context.Background(), validEmail())
		Expect(err).NotTo(HaveOccurred())
		Expect(receipt.ID).To(Equal("msg-1"))

		Expect(branding.calls).To(Equal(int32(2)))
		Expect(sender.sent[0].HTML).To(ContainSubstring("Sistema Documental"))
		Expect(sender.sent[1].HTML).To(ContainSubstring("Nueva Marca"))
		Expect(sender.sent[1].From).To(Equal("Portal <no-reply@example.com>"))
	})

	It("validates required fields before sending", func() {
		email := validEmail()
		email.DocumentURL = ""
		_, err := d.SendDocumentEmail(context.Background(), email)
		Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		Expect(sender.sent).To(BeEmpty())
	})

	It("reports sender failures as dependency errors", func() {
		sender.err = errors.New("smtp down")
		_, err := d.SendDocumentEmail(context.Background(), validEmail())
		Expect(internal.IsType(err, internal.ErrorTypeExternal)).To(BeTrue())
	})

	It("uses default branding when settings cannot be loaded", func() {
		branding.err = errors.New("db down")
		_, err := d.SendDocumentEmail(context.Background(), validEmail())
		Expect(err).NotTo(HaveOccurred())
		Expect(sender.sent[0].HTML).To(ContainSubstring("Sistema Documental"))
	})
})

type funcSender func(ctx context.Context, e notification.DocumentEmail) (notification.Receipt, error)

func (f funcSender) SendDocumentEmail(ctx context.Context, e notification.DocumentEmail) (notification.Receipt, error) {
	return f(ctx, e)
}

var _ = Describe("Pool", func() {
	It("delivers queued jobs and reports the outcome", func() {
		pool := notification.NewPool(funcSender(func(ctx context.Context, e notification.DocumentEmail) (notification.Receipt, error) {
			return notification.Receipt{ID: "id-" + e.To}, nil
		}), notification.PoolConfig{Workers: 2, QueueSize: 4}, discard)
		defer pool.Shutdown(context.Background())

		results := make(chan string, 3)
		for _, to := range []string{"a", "b", "c"} {
			Expect(pool.Enqueue(notification.Job{
				Email: notification.DocumentEmail{To: to},
				Done:  func(r notification.Receipt, err error) { results <- r.ID },
			})).To(Succeed())
		}

		var got []string
		for i := 0; i < 3; i++ {
			var id string
			Eventually(results).Should(Receive(&id))
			got = append(got, id)
		}
		Expect(got).To(ConsistOf("id-a", "id-b", "id-c"))
	})

	It("rejects jobs when the queue is full", func() {
		release := make(chan struct{})
		pool := notification.NewPool(funcSender(func(ctx context.Context, e notification.DocumentEmail) (notification.Receipt, error) {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return notification.Receipt{}, nil
		}), notification.PoolConfig{Workers: 1, QueueSize: 1}, discard)
		defer pool.Shutdown(context.Background())
		defer close(release)

		var rejected bool
		for i := 0; i < 5; i++ {
			if err := pool.Enqueue(notification.Job{Email: notification.DocumentEmail{To: "x"}}); errors.Is(err, notification.ErrQueueFull) {
				rejected = true
				break
			}
			time.Sleep(5 * time.Millisecond)
		}
		Expect(rejected).To(BeTrue())
	})

	It("refuses work after shutdown", func() {
		pool := notification.NewPool(funcSender(func(ctx context.Context, e notification.DocumentEmail) (notification.Receipt, error) {
			return notification.Receipt{}, nil
		}), notification.PoolConfig{Workers: 1, QueueSize: 1}, discard)
		pool.Shutdown(context.Background())
		Expect(pool.Enqueue(notification.Job{})).To(MatchError(context.Canceled))
	})

	It("delivers queued jobs before shutting down", func() {
		var sent atomic.Int32
		pool := notification.NewPool(funcSender(func(ctx context.Context, e notification.DocumentEmail) (notification.Receipt, error) {
			time.Sleep(10 * time.Millisecond)
			sent.Add(1)
			return notification.Receipt{ID: e.To}, nil
		}), notification.PoolConfig{Workers: 1, QueueSize: 4}, discard)

		outcomes := make(chan error, 3)
		for _, to := range []string{"a", "b", "c"} {
			Expect(pool.Enqueue(notification.Job{
				Email: notification.DocumentEmail{To: to},
				Done:  func(_ notification.Receipt, err error) { outcomes <- err },
			})).To(Succeed())
		}

		pool.Shutdown(context.Background())
		Expect(sent.Load()).To(Equal(int32(3)))
		for i := 0; i < 3; i++ {
			Expect(<-outcomes).NotTo(HaveOccurred())
		}
	})

	It("reports every pending job as cancelled when the drain deadline passes", func() {
		pool := notification.NewPool(funcSender(func(ctx context.Context, e notification.DocumentEmail) (notification.Receipt, error) {
			<-ctx.Done()
			return notification.Receipt{}, ctx.Err()
		}), notification.PoolConfig{Workers: 1, QueueSize: 4}, discard)

		outcomes := make(chan error, 3)
		for _, to := range []string{"a", "b", "c"} {
			Expect(pool.Enqueue(notification.Job{
				Email: notification.DocumentEmail{To: to},
				Done:  func(_ notification.Receipt, err error) { outcomes <- err },
			})).To(Succeed())
		}

		deadline, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		pool.Shutdown(deadline)

		Expect(outcomes).To(HaveLen(3))
		for i := 0; i < 3; i++ {
			Expect(<-outcomes).To(MatchError(context.Canceled))
		}
	})
})

var _ = Describe("Handler", func() {
	It("returns success with the message id", func() {
		r, err := notification.NewRenderer()
		Expect(err).NotTo(HaveOccurred())
		d := notification.NewDispatcher(&recordingSender{}, r, &staticBranding{}, notification.DispatcherConfig{}, discard)
		h := notification.NewHandler(transport.NewBaseHandler(discard), d)

		raw, _ := json.Marshal(validEmail())
		rec := httptest.NewRecorder()
		h.SendDocumentEmail(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(raw)))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"id":"msg-1"`))

		rec = httptest.NewRecorder()
		h.SendDocumentEmail(rec, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"to":"ana@example.com"}`))))
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(`"success":false`))
	})
})
