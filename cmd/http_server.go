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
	"gorm.io/gorm"

	"github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/card"
	cardpg "github.com/frahmantamala/invoice-payments/internal/card/postgres"
	"github.com/frahmantamala/invoice-payments/internal/core/events"
	"github.com/frahmantamala/invoice-payments/internal/directdebit"
	directdebitpg "github.com/frahmantamala/invoice-payments/internal/directdebit/postgres"
	"github.com/frahmantamala/invoice-payments/internal/dispatch"
	"github.com/frahmantamala/invoice-payments/internal/location"
	"github.com/frahmantamala/invoice-payments/internal/paymentgateway"
	"github.com/frahmantamala/invoice-payments/internal/paymentoption"
	paymentoptionpg "github.com/frahmantamala/invoice-payments/internal/paymentoption/postgres"
	"github.com/frahmantamala/invoice-payments/internal/transport/rest"
	"github.com/frahmantamala/invoice-payments/internal/user"
	"github.com/frahmantamala/invoice-payments/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle invoice processing and user lifecycle hooks`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config          *internal.Config
	DB              *sqlx.DB
	Router          *chi.Mux
	EventBus        *events.EventBus
	DispatchHandler *dispatch.Handler
	OptionHandler   *paymentoption.Handler
	Logger          *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.DispatchHandler, deps.OptionHandler, deps.Logger)

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

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	log := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already-pooled pgx connection
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	eventBus := events.NewEventBus(log)

	userClient := user.NewClient(config.Directory, log)
	locationClient := location.NewClient(config.Directory, log)
	directDebitClient := paymentgateway.NewDirectDebitClient(config.Providers.DirectDebit, log)
	cardClient := paymentgateway.NewCardClient(config.Providers.CardGateway, log)

	optionRepo := paymentoptionpg.NewPaymentOptionRepository(gormDB)
	auditRepo := directdebitpg.NewAuditRepository(gormDB)
	historyRepo := cardpg.NewTransactionHistoryRepository(gormDB)

	directDebitService := directdebit.NewService(userClient, locationClient, optionRepo, directDebitClient, auditRepo, log)
	cardService := card.NewService(userClient, locationClient, cardClient, historyRepo, log)
	dispatchService := dispatch.NewService(optionRepo, directDebitService, cardService, eventBus, log)
	optionService := paymentoption.NewService(optionRepo, eventBus, log)

	dispatchEventHandler := dispatch.NewEventHandler(dispatchService, log)
	dispatchEventHandler.RegisterEventHandlers(eventBus)
	optionEventHandler := paymentoption.NewEventHandler(optionService, log)
	optionEventHandler.RegisterEventHandlers(eventBus)

	return &Dependencies{
		Config:          config,
		Logger:          log,
		DB:              db,
		Router:          chi.NewRouter(),
		EventBus:        eventBus,
		DispatchHandler: dispatch.NewHandler(dispatchService, log),
		OptionHandler:   paymentoption.NewHandler(optionService, log),
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
