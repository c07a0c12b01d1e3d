package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/designxcel/storefront/internal"
	"github.com/designxcel/storefront/internal/auth"
	authPostgres "github.com/designxcel/storefront/internal/auth/postgres"
	"github.com/designxcel/storefront/internal/core/events"
	"github.com/designxcel/storefront/internal/permission"
	permissionPostgres "github.com/designxcel/storefront/internal/permission/postgres"
	"github.com/designxcel/storefront/internal/product"
	productPostgres "github.com/designxcel/storefront/internal/product/postgres"
	"github.com/designxcel/storefront/internal/transport"
	"github.com/designxcel/storefront/internal/transport/middleware"
	"github.com/designxcel/storefront/internal/transport/rest"
	"github.com/designxcel/storefront/internal/user"
	userPostgres "github.com/designxcel/storefront/internal/user/postgres"
	"github.com/designxcel/storefront/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	eventBus := events.NewEventBus(lg)
	events.RegisterAuditSubscribers(eventBus, lg)

	codec := auth.NewCodec(cfg.Security)
	authRepo := authPostgres.NewRepository(deps.GormDB)
	authService := auth.NewService(authRepo, codec, eventBus, cfg.Security.BCryptCost)
	authHandler := auth.NewHandler(authService, cfg.Security.SessionCookieName)

	matrixStore := permissionPostgres.NewMatrixStore(deps.DB)
	permissionHandler := permission.NewHandler(matrixStore)

	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	userService := user.NewService(userRepo, lg, cfg.Security.BCryptCost)
	userHandler := user.NewHandler(base, userService)

	productRepo := productPostgres.NewProductRepository(deps.GormDB)
	productService := product.NewService(productRepo, lg)
	productHandler := product.NewHandler(base, productService)

	session := middleware.NewSessionMiddleware(codec, cfg.Security.SessionCookieName, lg)
	roles := middleware.NewRoleGate(lg)
	permissions := middleware.NewPermissionGate(matrixStore, eventBus, cfg.Server.ForbiddenPath, lg)

	rest.RegisterAllRoutes(deps.Router, rest.RouterDeps{
		DB:                deps.DB.DB,
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		ProductHandler:    productHandler,
		PermissionHandler: permissionHandler,
		Session:           session,
		Roles:             roles,
		Permissions:       permissions,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		Logger:            lg,
	})
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
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

// initGormDB opens gorm over the already-pooled connection so both layers
// share one pool.
func initGormDB(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}
