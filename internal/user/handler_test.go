package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
	"github.com/frahmantamala/docportal/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		h   *user.Handler
		idp *mockIdentity
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		idp = newMockIdentity()
		svc := user.NewService(newMockProfiles(), idp, nil, lg)
		h = user.NewHandler(transport.NewBaseHandler(lg), svc)
	})

	call := func(fn http.HandlerFunc, p *internal.Principal, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/functions/x", bytes.NewReader(raw))
		if p != nil {
			req = req.WithContext(internal.ContextWithPrincipal(context.Background(), p))
		}
		rec := httptest.NewRecorder()
		fn(rec, req)

		var out map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return rec, out
	}

	It("returns success with the new user id", func() {
		rec, out := call(h.CreateWorker, admin, map[string]string{
			"email": "ana@example.com", "password": "secret123", "full_name": "Ana Rojas",
		})
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(out).To(HaveKeyWithValue("success", true))
		Expect(out).To(HaveKeyWithValue("user_id", "acc-1"))
	})

	It("renders failures as a flat error string", func() {
		rec, out := call(h.CreateWorker, worker, map[string]string{
			"email": "ana@example.com", "password": "secret123", "full_name": "Ana Rojas",
		})
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(out).To(HaveKeyWithValue("error", "Admin role required"))
		Expect(idp.creates).To(BeZero())
	})

	It("lists every validation message", func() {
		rec, out := call(h.CreateAdmin, admin, map[string]string{"email": "bad"})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(out["error"]).To(ContainSubstring("email must be a valid email address"))
		Expect(out["error"]).To(ContainSubstring("rut is required"))
	})

	It("returns 404 when deleting an unknown worker", func() {
		rec, _ := call(h.DeleteWorker, admin, map[string]string{"worker_id": "ghost"})
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})
})
