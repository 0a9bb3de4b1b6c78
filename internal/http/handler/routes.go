package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"patientdocs/internal/http/middleware"
	"patientdocs/internal/service"
)

// PublicDocumentsPath prefixes the QR routes, whose last segment is a bearer token.
const PublicDocumentsPath = "/public/documents"

// IsCapabilityRequest reports whether the raw request path carries a QR token.
// Tracing skips these requests since span attributes record the full URL.
func IsCapabilityRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), PublicDocumentsPath+"/")
}

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB        *sql.DB
	Documents service.DocumentService
	Auth      service.AuthService
	Tokens    middleware.TokenVerifier
	// Limiter guards the auth and public QR routes. Nil disables it.
	Limiter fiber.Handler
	// Gatherer backs /metrics. Nil skips the route.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := d.Limiter
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	authGroup := app.Group("/auth", limit)
	authGroup.Post("/register", Register(d.Auth, logger))
	authGroup.Post("/login", Login(d.Auth, logger))

	public := app.Group(PublicDocumentsPath, limit)
	public.Get("/access/:token", AccessViaQR(d.Documents, logger))
	public.Get("/download/:token", DownloadViaQR(d.Documents, logger))

	docs := app.Group("/documents", middleware.Authenticate(d.Tokens))
	docs.Post("/upload", UploadDocument(d.Documents, logger))
	docs.Get("/stats", DocumentStats(d.Documents, logger))
	docs.Get("/patient/:patientId", ListPatientDocuments(d.Documents, logger))
	docs.Get("/download/:documentId", DownloadDocument(d.Documents, logger))
	docs.Post("/:documentId/qr-code", IssueQRCode(d.Documents, logger))
	docs.Post("/:documentId/share", ShareDocument(d.Documents, logger))
	docs.Delete("/:documentId", DeleteDocument(d.Documents, logger))
}
