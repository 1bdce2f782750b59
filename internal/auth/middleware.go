package auth

import (
	"net/http"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/transport"
	"github.com/frahmantamala/docportal/pkg/logger"
)

type Middleware struct {
	*transport.BaseHandler
	gate *Gate
}

func NewMiddleware(base *transport.BaseHandler, gate *Gate) *Middleware {
	return &Middleware{BaseHandler: base, gate: gate}
}

// Authenticate loads the principal into the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return m.authenticate(next, m.HandleError, false)
}

// RequireAdmin authenticates and rejects non-admin callers.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.authenticate(next, m.HandleError, true)
}

// RequireAdminFunction is RequireAdmin with the flat {"error": "..."} body.
func (m *Middleware) RequireAdminFunction(next http.Handler) http.Handler {
	return m.authenticate(next, m.WriteFunctionError, true)
}

func (m *Middleware) authenticate(next http.Handler, fail func(http.ResponseWriter, error), adminOnly bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.ExtractTokenFromHeader(r)

		var (
			p   *internal.Principal
			err error
		)
		if adminOnly {
			p, err = m.gate.AuthorizeAdmin(r.Context(), token)
		} else {
			p, err = m.gate.Authenticate(r.Context(), token)
		}
		if err != nil {
			fail(w, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), p)
		ctx = logger.WithCaller(ctx, p.UserID, string(p.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
