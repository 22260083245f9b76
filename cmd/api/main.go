// Package main provides the entrypoint for the CareJournal API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/carejournal/carejournal/internal/api"
	"github.com/carejournal/carejournal/internal/api/handler"
	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/auth"
	"github.com/carejournal/carejournal/internal/config"
	"github.com/carejournal/carejournal/internal/database"
	"github.com/carejournal/carejournal/internal/department"
	"github.com/carejournal/carejournal/internal/device"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/memory"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientjournal"
	"github.com/carejournal/carejournal/internal/patientmedicine"
	"github.com/carejournal/carejournal/internal/patienttodo"
	"github.com/carejournal/carejournal/internal/provider/resilience"
	"github.com/carejournal/carejournal/internal/push"
	"github.com/carejournal/carejournal/internal/telemetry"
	"github.com/carejournal/carejournal/internal/user"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// repositories holds one storage backend for every entity.
type repositories struct {
	users           user.Repository
	devices         device.Repository
	departments     department.Repository
	medicines       medicine.Repository
	patients        patient.Repository
	patientMedicine patientmedicine.Repository
	patientTodos    patienttodo.Repository
	patientJournals patientjournal.Repository
}

func postgresRepositories(pool *pgxpool.Pool) repositories {
	return repositories{
		users:           user.NewPostgresRepository(pool),
		devices:         device.NewPostgresRepository(pool),
		departments:     department.NewPostgresRepository(pool),
		medicines:       medicine.NewPostgresRepository(pool),
		patients:        patient.NewPostgresRepository(pool),
		patientMedicine: patientmedicine.NewPostgresRepository(pool),
		patientTodos:    patienttodo.NewPostgresRepository(pool),
		patientJournals: patientjournal.NewPostgresRepository(pool),
	}
}

func memoryRepositories() repositories {
	mem := memory.New()
	return repositories{
		users:           mem.Users,
		devices:         mem.Devices,
		departments:     mem.Departments,
		medicines:       mem.Medicines,
		patients:        mem.Patients,
		patientMedicine: mem.PatientMedicines,
		patientTodos:    mem.PatientTodos,
		patientJournals: mem.PatientJournals,
	}
}

func main() {
	const serviceName = "carejournal-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting CareJournal API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.UsesDevSecret() {
		log.Warn().Msg("using default JWT secret - not secure for production")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTel.Endpoint,
		Enabled:        cfg.OTel.Enabled,
		SampleRatio:    cfg.OTel.SampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.OTel.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTel.Endpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	domainMetrics := metrics.New(metrics.NewRegistry())

	// Storage
	var (
		repos repositories
		db    handler.Pinger
	)
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn().Msg("using in-memory storage - data is lost on restart")
		repos = memoryRepositories()
	default:
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Database).
			Msg("database connected")

		if err := database.Migrate(ctx, pool, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		repos = postgresRepositories(pool)
		db = pool
	}

	providers := resilience.NewRegistry()

	// Push delivery
	sender, closeSender := newSender(ctx, cfg, providers, log)
	defer closeSender()

	// Domain services
	hasher := auth.NewBcryptHasher()
	userService := user.NewService(user.ServiceConfig{Repo: repos.users, Hasher: hasher})
	deviceService := device.NewService(repos.devices)
	departmentService := department.NewService(department.ServiceConfig{
		Repo:     repos.departments,
		Users:    userService,
		Patients: repos.patients,
	})
	patientService := patient.NewService(patient.ServiceConfig{
		Repo:        repos.patients,
		Departments: departmentService,
	})
	medicineService := medicine.NewService(repos.medicines)
	notifier := push.NewNotifier(push.NotifierConfig{
		Users:   userService,
		Devices: deviceService,
		Sender:  sender,
		Metrics: domainMetrics,
		Logger:  log,
	})
	patientMedicineService := patientmedicine.NewService(patientmedicine.ServiceConfig{
		Repo:      repos.patientMedicine,
		Patients:  patientService,
		Medicines: medicineService,
		Notifier:  notifier,
		Logger:    log,
	})
	patientTodoService := patienttodo.NewService(patienttodo.ServiceConfig{
		Repo:        repos.patientTodos,
		Assignments: patientMedicineService,
	})
	patientJournalService := patientjournal.NewService(patientjournal.ServiceConfig{
		Repo:     repos.patientJournals,
		Patients: patientService,
	})
	log.Info().Msg("domain services initialized")

	// Auth
	authConfig := auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{SigningKey: cfg.JWTSecret}),
		Users:      userService,
		Devices:    deviceService,
		Passwords:  hasher,
		Metrics:    domainMetrics,
		Logger:     log,
	}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable - login throttle disabled")
		} else {
			authConfig.Throttle = auth.NewRedisThrottle(auth.ThrottleConfig{
				Client:      rdb,
				MaxFailures: cfg.Redis.LoginMaxFailures,
				Lockout:     cfg.Redis.LoginLockout,
			})
			log.Info().Str("addr", cfg.Redis.Addr).Msg("login throttle enabled")
		}
		cancel()
	}
	authService := auth.NewService(authConfig)
	log.Info().Msg("auth service initialized")

	if cfg.FirstUserToken == "" {
		log.Info().Msg("first user bootstrap disabled")
	}

	var allowedOrigins []string
	if cfg.FrontendURL != "" {
		allowedOrigins = []string{cfg.FrontendURL}
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		ServiceName:    serviceName,
		HTTPMetrics:    httpMetrics,
		Metrics:        domainMetrics,
		MetricsHandler: domainMetrics.Handler(),
		AllowedOrigins: allowedOrigins,
		RequireTLS:     cfg.RequireTLS,
		FirstUserToken: cfg.FirstUserToken,
		DB:             db,
		Providers:      providers,

		AuthService:            authService,
		UserService:            userService,
		DeviceService:          deviceService,
		DepartmentService:      departmentService,
		MedicineService:        medicineService,
		PatientService:         patientService,
		PatientMedicineService: patientMedicineService,
		PatientTodoService:     patientTodoService,
		PatientJournalService:  patientJournalService,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}

// newSender picks the push transport: Pub/Sub when a topic is configured,
// FCM when credentials are present, logging otherwise.
func newSender(ctx context.Context, cfg *config.Config, providers *resilience.Registry, log zerolog.Logger) (push.Sender, func()) {
	switch {
	case cfg.Push.Async():
		publisher, err := push.NewPubSubPublisher(ctx, push.PubSubConfig{
			ProjectID: cfg.Push.GCPProjectID,
			Topic:     cfg.Push.Topic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create pubsub publisher")
		}
		log.Info().Str("topic", cfg.Push.Topic).Msg("push messages are queued on pubsub")
		return publisher, func() {
			if err := publisher.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close pubsub publisher")
			}
		}

	case cfg.Push.FirebaseCredentialsFile != "":
		client, err := push.NewFCMMessagingClient(ctx, cfg.Push.FirebaseCredentialsFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize firebase messaging")
		}
		log.Info().Msg("push messages are sent through FCM")
		return push.NewFCMSender(push.FCMConfig{
			Client: client,
			Guard:  resilience.GuardConfig{Name: "fcm", Registry: providers},
			Logger: log,
		}), func() {}

	default:
		log.Warn().Msg("push delivery not configured - notifications are only logged")
		return push.NewLogSender(log), func() {}
	}
}
