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

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/thanhhle/salesops-management/internal"
	"github.com/thanhhle/salesops-management/internal/auth"
	authstore "github.com/thanhhle/salesops-management/internal/auth/postgres"
	"github.com/thanhhle/salesops-management/internal/core/events"
	"github.com/thanhhle/salesops-management/internal/export"
	"github.com/thanhhle/salesops-management/internal/plan"
	planstore "github.com/thanhhle/salesops-management/internal/plan/postgres"
	"github.com/thanhhle/salesops-management/internal/report"
	"github.com/thanhhle/salesops-management/internal/transport/rest"
	"github.com/thanhhle/salesops-management/internal/transport/swagger"
	"github.com/thanhhle/salesops-management/internal/user"
	userstore "github.com/thanhhle/salesops-management/internal/user/postgres"
	"github.com/thanhhle/salesops-management/pkg/logger"
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
	DB     *gorm.DB
	SQLDB  *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
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
		if err := deps.SQLDB.Close(); err != nil {
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

func setupRoutes(deps *Dependencies) error {
	// A broken OpenAPI document should fail startup, not Swagger UI.
	if _, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return err
	}

	eventBus := events.NewEventBus(deps.Logger)
	events.NewAuditSubscriber(deps.Logger).Register(eventBus)

	authRepo := authstore.NewAuthRepository(deps.DB)
	userRepo := userstore.NewUserRepository(deps.DB)
	planRepo := planstore.NewPlanRepository(deps.DB)

	tokenGen := auth.NewJWTTokenGenerator(
		deps.Config.Security.AccessTokenSecret,
		deps.Config.Security.RefreshTokenSecret,
		deps.Config.Security.AccessTokenDuration,
		deps.Config.Security.RefreshTokenDuration,
	)

	authService := auth.NewService(authRepo, tokenGen, deps.Config.Security.BCryptCost, deps.Logger)
	planService := plan.NewService(planRepo, ownerDirectory{users: userRepo}, eventBus, deps.Logger)
	userService := user.NewService(userRepo, planRepo, deps.Config.Security.BCryptCost, deps.Logger)

	handlers := rest.Handlers{
		Auth:   auth.NewHandler(authService),
		User:   user.NewHandler(userService),
		Plan:   plan.NewHandler(planService),
		Report: report.NewHandler(planService),
		Export: export.NewHandler(planService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.SQLDB.DB, handlers, deps.Config.Server.AllowedOrigins, deps.Logger)
	return nil
}

// ownerDirectory adapts the user repository to the plan service's
// snapshot lookup.
type ownerDirectory struct {
	users user.Repository
}

func (d ownerDirectory) OwnerProfile(employeeID string) (plan.OwnerProfile, error) {
	u, err := d.users.GetByEmployeeID(employeeID)
	if err != nil {
		return plan.OwnerProfile{}, err
	}
	return plan.OwnerProfile{Position: u.Position, ManagementArea: u.ManagementArea}, nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	gormDB, sqlDB, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     gormDB,
		SQLDB:  sqlDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the record store. Postgres goes through the pgx stdlib
// driver with sqlx handling the pool; sqlite serves single-node local
// deployments from a file.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if cfg.Driver == "sqlite" {
		gormDB, err := gorm.Open(gormsqlite.Open(cfg.Source), gormConfig)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, err
		}
		return gormDB, sqlx.NewDb(sqlDB, "sqlite"), nil
	}

	dbConn, err := sqlx.Connect("pgx", cfg.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: dbConn.DB}), gormConfig)
	if err != nil {
		_ = dbConn.Close()
		return nil, nil, fmt.Errorf("failed to wrap db connection: %w", err)
	}

	return gormDB, dbConn, nil
}
