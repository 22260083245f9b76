// Package api provides the HTTP API for CareJournal.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/api/handler"
	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/auth"
	"github.com/carejournal/carejournal/internal/department"
	"github.com/carejournal/carejournal/internal/device"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientjournal"
	"github.com/carejournal/carejournal/internal/patientmedicine"
	"github.com/carejournal/carejournal/internal/patienttodo"
	"github.com/carejournal/carejournal/internal/provider/resilience"
	"github.com/carejournal/carejournal/internal/user"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string

	// HTTPMetrics records OpenTelemetry request metrics. Optional.
	HTTPMetrics *middleware.Metrics

	// Metrics holds the Prometheus domain counters. Optional.
	Metrics *metrics.Metrics

	// MetricsHandler serves GET /metrics. Optional.
	MetricsHandler http.Handler

	// AllowedOrigins lists the browser origins allowed by CORS. Empty allows
	// any origin.
	AllowedOrigins []string

	// RequireTLS rejects plain HTTP requests forwarded by a load balancer.
	RequireTLS bool

	// FirstUserToken enables POST /api/first-user/{token} when set.
	FirstUserToken string

	// DB is pinged by the readiness check. Nil on in-memory storage.
	DB        handler.Pinger
	Providers *resilience.Registry

	AuthService            *auth.Service
	UserService            *user.Service
	DeviceService          *device.Service
	DepartmentService      *department.Service
	MedicineService        *medicine.Service
	PatientService         *patient.Service
	PatientMedicineService *patientmedicine.Service
	PatientTodoService     *patienttodo.Service
	PatientJournalService  *patientjournal.Service
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "carejournal-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))                    // Structured logging
	r.Use(middleware.Recovery(cfg.Logger))                  // Panic recovery
	r.Use(chimiddleware.RealIP)                             // Real IP extraction
	r.Use(middleware.SecurityHeaders)                       // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))            // TLS enforcement
	r.Use(middleware.CORS(cfg.AllowedOrigins...))           // Browser clients
	r.Use(middleware.ContentTypeJSON)                       // JSON content type
	r.Use(middleware.Identity(cfg.AuthService, cfg.Logger)) // Resolve the caller, if any

	// Initialize handlers
	errs := handler.NewErrors(cfg.Logger, cfg.Metrics)
	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		DB:        cfg.DB,
		Providers: cfg.Providers,
	})
	authHandler := handler.NewAuthHandler(cfg.AuthService, errs)
	userHandler := handler.NewUserHandler(handler.UserHandlerConfig{
		Users:          cfg.UserService,
		Devices:        cfg.DeviceService,
		FirstUserToken: cfg.FirstUserToken,
		Errors:         errs,
	})
	departmentHandler := handler.NewDepartmentHandler(cfg.DepartmentService, errs)
	medicineHandler := handler.NewMedicineHandler(cfg.MedicineService, errs)
	patientHandler := handler.NewPatientHandler(cfg.PatientService, errs)
	patientMedicineHandler := handler.NewPatientMedicineHandler(cfg.PatientMedicineService, errs)
	patientTodoHandler := handler.NewPatientTodoHandler(cfg.PatientTodoService, errs)
	patientJournalHandler := handler.NewPatientJournalHandler(cfg.PatientJournalService, errs)

	// Guards
	authenticated := middleware.RequireAuthenticated(cfg.Metrics)
	adminOnly := middleware.RequireAdmin(cfg.Metrics, cfg.Logger)

	// Create rate limit middleware for different endpoint categories
	authRateLimit := middleware.RateLimitByIP(middleware.AuthRateLimit, cfg.Metrics)
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit, cfg.Metrics)
	userRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit, cfg.Metrics)

	// Ops endpoints (public)
	r.Route("/ops", func(r chi.Router) {
		r.Get("/health", opsHandler.HealthCheck)
		r.Get("/ready", opsHandler.ReadinessCheck)
	})
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireJSON)

		// Credential endpoints - strict rate limiting
		r.With(authRateLimit).Post("/login", authHandler.Login)
		r.With(authRateLimit, authenticated).Post("/signOut", authHandler.SignOut)
		r.With(authRateLimit).Post("/first-user/{token}", userHandler.CreateFirst)

		r.Group(func(r chi.Router) {
			r.Use(authenticated)
			r.Use(userRateLimit)

			r.Route("/users", func(r chi.Router) {
				r.With(adminOnly).Get("/", userHandler.List)
				r.With(adminOnly).Post("/", userHandler.Create)
				r.Get("/current", userHandler.Current)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", departmentHandler.List)
				r.Post("/", departmentHandler.Create)
				r.Get("/{id}", departmentHandler.Get)
				r.Put("/{id}", departmentHandler.Update)
				r.Delete("/{id}", departmentHandler.Delete)
			})

			r.Route("/medicines", func(r chi.Router) {
				r.Get("/", medicineHandler.List)
				r.Post("/", medicineHandler.Create)
				r.Get("/{id}", medicineHandler.Get)
				r.Put("/{id}", medicineHandler.Update)
				r.Delete("/{id}", medicineHandler.Delete)
			})

			r.Route("/patients", func(r chi.Router) {
				r.Get("/", patientHandler.List)
				r.Post("/", patientHandler.Create)
				r.Get("/ssn/{ssn}", patientHandler.GetBySSN)
				r.Get("/{id}", patientHandler.Get)
				r.Put("/{id}", patientHandler.Update)
				r.Delete("/{id}", patientHandler.Delete)
			})

			// Assigning a medicine sends push notifications.
			r.Route("/patient-medicines", func(r chi.Router) {
				r.Get("/", patientMedicineHandler.List)
				r.With(expensiveRateLimit).Post("/", patientMedicineHandler.Create)
				r.Get("/{id}", patientMedicineHandler.Get)
				r.Put("/{id}", patientMedicineHandler.Update)
				r.Delete("/{id}", patientMedicineHandler.Delete)
			})

			r.Route("/patient-todos", func(r chi.Router) {
				r.Get("/", patientTodoHandler.List)
				r.Post("/", patientTodoHandler.Create)
				r.Get("/{id}", patientTodoHandler.Get)
				r.Put("/{id}", patientTodoHandler.Update)
				r.Delete("/{id}", patientTodoHandler.Delete)
			})

			r.Route("/patient-journals", func(r chi.Router) {
				r.Get("/", patientJournalHandler.List)
				r.Post("/", patientJournalHandler.Create)
				r.Get("/{id}", patientJournalHandler.Get)
				r.Put("/{id}", patientJournalHandler.Update)
				r.Delete("/{id}", patientJournalHandler.Delete)
			})
		})
	})

	return r
}
