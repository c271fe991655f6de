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

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/auth"
	authpg "github.com/frahmantamala/leave-management/internal/auth/postgres"
	"github.com/frahmantamala/leave-management/internal/core/events"
	"github.com/frahmantamala/leave-management/internal/document"
	"github.com/frahmantamala/leave-management/internal/leave"
	leavepg "github.com/frahmantamala/leave-management/internal/leave/postgres"
	"github.com/frahmantamala/leave-management/internal/notification"
	"github.com/frahmantamala/leave-management/internal/transport/rest"
	"github.com/frahmantamala/leave-management/internal/user"
	userpg "github.com/frahmantamala/leave-management/internal/user/postgres"
	"github.com/frahmantamala/leave-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
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
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	AuthService *auth.Service
	Mailer      *notification.Mailer
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sweeperCtx, stopSweeper := context.WithCancel(context.Background())
	go sweepSessions(sweeperCtx, deps.AuthService, deps.Logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		stopSweeper()
		deps.Mailer.Shutdown()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		stopSweeper()
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

// sweepSessions removes expired sessions hourly so the sessions table
// does not grow without bound.
func sweepSessions(ctx context.Context, svc *auth.Service, log *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := svc.SweepExpiredSessions(); err != nil {
				log.Error("session sweep failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	dbx, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(dbx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	authRepo := authpg.NewRepository(gdb)
	authService := auth.NewService(authRepo, config.Security.SessionTTL, config.Security.BCryptCost, log)
	authHandler := auth.NewHandler(authService, auth.CookieConfig{
		Name:   config.Security.SessionCookie,
		Secure: config.Security.CookieSecure,
		TTL:    config.Security.SessionTTL,
	})

	userRepo := userpg.NewUserRepository(gdb, dbx)
	userService := user.NewService(userRepo, log)
	userHandler := user.NewHandler(userService)

	bus := events.NewEventBus(log)
	mailer := notification.NewMailer(config.Mailer, log)
	resolver := notification.ResolverFunc(func(userID int64) (string, string, error) {
		u, err := userRepo.GetByID(userID)
		if err != nil {
			return "", "", err
		}
		return u.Name, u.Email, nil
	})
	notification.RegisterSubscribers(bus, mailer, resolver, log)
	notifier := notification.NewNotifier(bus, log)

	leaveRepo := leavepg.NewLeaveRepository(gdb)
	leaveService := leave.NewService(leaveRepo, notifier, log)
	leaveHandler := leave.NewHandler(leaveService)

	documentService, err := document.NewService(config.Uploads, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize document storage: %w", err)
	}
	documentHandler := document.NewHandler(documentService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, dbx.DB, authHandler, userHandler, leaveHandler, documentHandler, log)

	return &Dependencies{
		Config: config,
		DB:     dbx,
		Gorm:   gdb,
		Router: router,
		Logger: log,

		AuthService: authService,
		Mailer:      mailer,
	}, nil
}

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

// initGorm layers GORM over the existing pgx connection pool so both
// access paths share one set of connections.
func initGorm(dbx *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn: dbx.DB,
	}), &gorm.Config{})
}
