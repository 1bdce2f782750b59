package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/docportal/internal/auth"
	"github.com/frahmantamala/docportal/internal/company"
	"github.com/frahmantamala/docportal/internal/costcenter"
	"github.com/frahmantamala/docportal/internal/dashboard"
	"github.com/frahmantamala/docportal/internal/document"
	"github.com/frahmantamala/docportal/internal/identity"
	"github.com/frahmantamala/docportal/internal/importer"
	"github.com/frahmantamala/docportal/internal/notification"
	"github.com/frahmantamala/docportal/internal/transport/middleware"
	"github.com/frahmantamala/docportal/internal/transport/swagger"
	"github.com/frahmantamala/docportal/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups everything RegisterAllRoutes mounts. Nil handlers are skipped.
type Handlers struct {
	Auth         *auth.Middleware
	Identity     *identity.Handler
	User         *user.Handler
	Company      *company.Handler
	CostCenter   *costcenter.Handler
	Document     *document.Handler
	Import       *importer.Handler
	Dashboard    *dashboard.Handler
	Notification *notification.Handler
	Health       *HealthHandler
	OpenAPI      http.Handler

	// Files maps a public path prefix under /files to the blob store serving it.
	Files map[string]http.Handler

	AllowedOrigins string
}

func RegisterAllRoutes(router chi.Router, h Handlers, logger *slog.Logger) {
	router.Use(middleware.CORS(h.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if h.OpenAPI != nil {
		router.Handle(swagger.SpecURL, h.OpenAPI)
		router.Handle("/swagger/*", swagger.Handler())
	}

	for prefix, handler := range h.Files {
		router.Handle("/files/"+prefix+"/*", http.StripPrefix("/files/"+prefix, handler))
	}

	router.Route("/api/v1", func(r chi.Router) {
		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		if h.Identity != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Identity.Login)
				sr.Post("/refresh", h.Identity.RefreshToken)
				sr.Post("/logout", h.Identity.Logout)
			})
		}

		// Branding is needed before login.
		if h.Company != nil {
			r.Get("/company", h.Company.Get)
		}

		if h.Auth == nil {
			return
		}

		// Any signed in user
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Authenticate)

			if h.User != nil {
				pr.Get("/me", h.User.Me)
			}
			if h.Document != nil {
				pr.Get("/me/documents", h.Document.ListMine)
				pr.Get("/me/documents/{id}/download", h.Document.Download)
			}
		})

		// Admins
		r.Group(func(ar chi.Router) {
			ar.Use(h.Auth.RequireAdmin)

			if h.Company != nil {
				ar.Put("/company", h.Company.Update)
				ar.Post("/company/logo", h.Company.UploadLogo)
			}
			if h.CostCenter != nil {
				ar.Route("/cost-centers", func(cr chi.Router) {
					cr.Get("/", h.CostCenter.List)
					cr.Post("/", h.CostCenter.Create)
					cr.Get("/{id}", h.CostCenter.Get)
					cr.Put("/{id}", h.CostCenter.Update)
					cr.Delete("/{id}", h.CostCenter.Delete)
				})
			}
			if h.User != nil {
				ar.Get("/workers", h.User.ListWorkers)
				ar.Get("/admins", h.User.ListAdmins)
			}
			if h.Document != nil {
				ar.Get("/documents", h.Document.ListAll)
				ar.Post("/documents", h.Document.Upload)
				ar.Delete("/documents/{id}", h.Document.Delete)
			}
			if h.Import != nil {
				ar.Post("/imports/documents", h.Import.ImportDocuments)
				ar.Post("/imports/workers", h.Import.ImportWorkers)
			}
			if h.Dashboard != nil {
				ar.Get("/dashboard", h.Dashboard.Get)
			}
		})

		// Privileged functions answer with a flat {"error": "..."} body.
		r.Route("/functions", func(fr chi.Router) {
			fr.Use(h.Auth.RequireAdminFunction)

			if h.User != nil {
				fr.Post("/create-worker", h.User.CreateWorker)
				fr.Post("/update-worker", h.User.UpdateWorker)
				fr.Post("/delete-worker", h.User.DeleteWorker)
				fr.Post("/create-admin", h.User.CreateAdmin)
				fr.Post("/delete-admin", h.User.DeleteAdmin)
			}
			if h.Notification != nil {
				fr.Post("/send-document-email", h.Notification.SendDocumentEmail)
			}
		})
	})
}
