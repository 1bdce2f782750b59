package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/auth"
	"github.com/frahmantamala/docportal/internal/company"
	companyPostgres "github.com/frahmantamala/docportal/internal/company/postgres"
	"github.com/frahmantamala/docportal/internal/core/events"
	"github.com/frahmantamala/docportal/internal/costcenter"
	costcenterPostgres "github.com/frahmantamala/docportal/internal/costcenter/postgres"
	"github.com/frahmantamala/docportal/internal/dashboard"
	"github.com/frahmantamala/docportal/internal/document"
	documentPostgres "github.com/frahmantamala/docportal/internal/document/postgres"
	"github.com/frahmantamala/docportal/internal/identity"
	identityPostgres "github.com/frahmantamala/docportal/internal/identity/postgres"
	"github.com/frahmantamala/docportal/internal/importer"
	"github.com/frahmantamala/docportal/internal/notification"
	"github.com/frahmantamala/docportal/internal/storage"
	"github.com/frahmantamala/docportal/internal/transport"
	"github.com/frahmantamala/docportal/internal/transport/rest"
	"github.com/frahmantamala/docportal/internal/transport/swagger"
	"github.com/frahmantamala/docportal/internal/user"
	userPostgres "github.com/frahmantamala/docportal/internal/user/postgres"
	"github.com/frahmantamala/docportal/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

// Dependencies is the wired application. The server and the one-shot
// commands share it so every entry point runs the same services.
type Dependencies struct {
	Config *internal.Config
	Logger *slog.Logger
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Redis  *redis.Client
	Bus    *events.EventBus
	Pool   *notification.Pool

	DocumentStore *storage.FSStore
	LogoStore     *storage.FSStore

	Identity    *identity.Service
	Users       *user.Service
	CostCenters *costcenter.Service
	Company     *company.Service
	Dispatcher  *notification.Dispatcher
	Documents   *document.Service
	Importer    *importer.Importer
	Dashboard   *dashboard.Service
}

func startHTTPServer() {
	config, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	deps, err := initializeDependencies(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	router, err := setupRoutes(deps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		deps.Close(context.Background())
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.Close(ctx)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			deps.Close(context.Background())
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) (*chi.Mux, error) {
	cfg := deps.Config
	base := transport.NewBaseHandler(deps.Logger)

	spec, err := swagger.Load(context.Background(), cfg.Server.OpenAPIPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi document: %w", err)
	}

	checkers := []rest.Checker{rest.DBChecker(deps.DB.DB)}
	if deps.Redis != nil {
		checkers = append(checkers, rest.RedisChecker(deps.Redis))
	}

	gate := auth.NewGate(deps.Identity, deps.Users, deps.Logger)
	maxUpload := cfg.Storage.MaxUploadBytes

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Auth:         auth.NewMiddleware(base, gate),
		Identity:     identity.NewHandler(base, deps.Identity),
		User:         user.NewHandler(base, deps.Users),
		Company:      company.NewHandler(base, deps.Company),
		CostCenter:   costcenter.NewHandler(base, deps.CostCenters),
		Document:     document.NewHandler(base, deps.Documents, maxUpload),
		Import:       importer.NewHandler(base, deps.Importer, maxUpload),
		Dashboard:    dashboard.NewHandler(base, deps.Dashboard),
		Notification: notification.NewHandler(base, deps.Dispatcher),
		Health:       rest.NewHealthHandler(checkers...),
		OpenAPI:      spec,
		Files: map[string]http.Handler{
			documentsPrefix: deps.DocumentStore.Handler(),
			logosPrefix:     deps.LogoStore.Handler(),
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, deps.Logger)

	return router, nil
}

const (
	documentsPrefix = "documents"
	logosPrefix     = "company-logos"
)

func initializeDependencies(cfg *internal.Config) (*Dependencies, error) {
	lg := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config: cfg,
		Logger: lg,
		DB:     db,
		Gorm:   gdb,
		Bus:    events.NewEventBus(lg),
	}

	var cache company.Cache = company.NoCache{}
	if cfg.Cache.RedisAddr != "" {
		client, err := initRedis(cfg.Cache)
		if err != nil {
			lg.Warn("redis unavailable, company settings are read from the database", "error", err)
		} else {
			deps.Redis = client
			cache = company.NewRedisCache(client, cfg.Cache.TTL)
		}
	}

	publicBase := strings.TrimRight(cfg.Storage.PublicBaseURL, "/")
	deps.DocumentStore, err = storage.NewFSStore(filepath.Join(cfg.Storage.Root, documentsPrefix), publicBase+"/"+documentsPrefix)
	if err != nil {
		deps.Close(context.Background())
		return nil, fmt.Errorf("failed to open document store: %w", err)
	}
	deps.LogoStore, err = storage.NewFSStore(filepath.Join(cfg.Storage.Root, logosPrefix), publicBase+"/"+logosPrefix)
	if err != nil {
		deps.Close(context.Background())
		return nil, fmt.Errorf("failed to open logo store: %w", err)
	}

	tokens := identity.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	deps.Identity = identity.NewService(identityPostgres.NewAccountRepository(gdb), tokens, identity.Options{
		BCryptCost:        cfg.Security.BCryptCost,
		MinPasswordLength: cfg.Security.MinPasswordLength,
	}, lg)

	deps.Users = user.NewService(userPostgres.NewProfileRepository(gdb), deps.Identity, deps.Bus, lg)
	deps.CostCenters = costcenter.NewService(costcenterPostgres.NewCostCenterRepository(gdb), lg)
	deps.Company = company.NewService(companyPostgres.NewSettingsRepository(gdb), cache, deps.LogoStore, deps.Bus, lg)

	renderer, err := notification.NewRenderer()
	if err != nil {
		deps.Close(context.Background())
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	var sender notification.Sender
	if cfg.Notification.SMTPEnabled() {
		sender = notification.NewSMTPSender(notification.SMTPConfig{
			Host:     cfg.Notification.SMTPHost,
			Port:     cfg.Notification.SMTPPort,
			Username: cfg.Notification.SMTPUsername,
			Password: cfg.Notification.SMTPPassword,
		})
	} else {
		lg.Warn("smtp_host not set, emails are written to the log only")
		sender = notification.NewLogSender(lg)
	}
	deps.Dispatcher = notification.NewDispatcher(sender, renderer, deps.Company, notification.DispatcherConfig{
		FromEmail:   cfg.Notification.FromEmail,
		FromName:    cfg.Notification.FromName,
		SendTimeout: cfg.Notification.SendTimeout,
	}, lg)
	deps.Pool = notification.NewPool(deps.Dispatcher, notification.PoolConfig{
		Workers:   cfg.Notification.Workers,
		QueueSize: cfg.Notification.QueueSize,
	}, lg)

	deps.Documents = document.NewService(
		documentPostgres.NewDocumentRepository(gdb),
		deps.DocumentStore,
		deps.Users,
		deps.Pool,
		deps.Bus,
		document.Options{IncludeSharedScopes: cfg.Documents.IncludeSharedScopes},
		lg,
	)
	deps.Importer = importer.New(
		deps.DocumentStore,
		deps.Documents,
		deps.Users,
		deps.CostCenters,
		deps.Dispatcher,
		deps.Bus,
		importer.Config{ItemTimeout: cfg.Import.ItemTimeout},
		lg,
	)
	deps.Dashboard = dashboard.NewService(dashboard.NewRepository(db), lg)

	registerEventHandlers(deps.Bus, lg)

	return deps, nil
}

// Close drains background work before releasing connections.
func (d *Dependencies) Close(ctx context.Context) {
	if d.Pool != nil {
		d.Pool.Shutdown(ctx)
	}
	if d.Bus != nil {
		if err := d.Bus.Wait(ctx); err != nil {
			slog.Warn("event handlers still running at shutdown", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			slog.Error("Redis close error", "error", err)
		}
	}
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	}
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx pool with gorm so both see the same connections.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
}

func initRedis(cfg internal.CacheConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func registerEventHandlers(bus *events.EventBus, lg *slog.Logger) {
	audit := func(ctx context.Context, event events.Event) error {
		lg.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	for _, t := range []string{
		events.EventTypeWorkerCreated,
		events.EventTypeWorkerDeleted,
		events.EventTypeDocumentCreated,
		events.EventTypeDocumentDeleted,
		events.EventTypeDocumentDownloaded,
		events.EventTypeCompanyUpdated,
	} {
		bus.Subscribe(t, audit)
	}
}
