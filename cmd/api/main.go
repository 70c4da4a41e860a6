package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	paymentUseCase "github.com/oumasdelicacy/mpesa-bridge/internal/domain/usecase/payment"
	reconcileUseCase "github.com/oumasdelicacy/mpesa-bridge/internal/domain/usecase/reconcile"

	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/api/handler"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/api/routes"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/database"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/email"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/logger"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/metrics"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/mpesa"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/receipt"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/repository"
	timeProvider "github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/adapter/time"
	"github.com/oumasdelicacy/mpesa-bridge/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Set Gin mode based on environment
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create logger
	appLogger := logger.NewZapLogger(cfg.Environment == "production")

	// Setup database configuration
	dbConfig := &database.Config{
		Driver:          "postgres",
		Host:            cfg.Database.Host,
		Port:            database.ParsePort(cfg.Database.Port),
		Username:        cfg.Database.Username,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		LogLevel:        cfg.Logger.Level,
		RetryAttempts:   cfg.Database.RetryAttempts,
		RetryDelay:      int(cfg.Database.RetryDelay / time.Second),
	}

	// Initialize time provider
	tp := timeProvider.NewRealTimeProvider()

	// Connect to the database
	dbManager := database.NewManager(dbConfig, appLogger, tp)
	if _, err = dbManager.Connect(); err != nil {
		appLogger.Error("Failed to connect to database", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	defer func() { _ = dbManager.Close() }()

	// Run migrations
	if err = dbManager.MigrationManager().MigrateAll(); err != nil {
		appLogger.Error("Failed to run migrations", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}

	// Initialize repositories
	transactionRepo := repository.NewTransactionRepository(dbManager.DB(), appLogger)
	orderRepo := repository.NewOrderRepository(dbManager.DB(), tp, appLogger)
	receiptRepo := repository.NewReceiptRepository(dbManager.DB(), appLogger)

	// Initialize the Daraja gateway client
	gatewayClient := mpesa.NewClient(&mpesa.Config{
		Environment:    cfg.Mpesa.Environment,
		ConsumerKey:    cfg.Mpesa.ConsumerKey,
		ConsumerSecret: cfg.Mpesa.ConsumerSecret,
		ShortCode:      cfg.Mpesa.ShortCode,
		Passkey:        cfg.Mpesa.Passkey,
		CallbackURL:    cfg.Mpesa.CallbackURL,
		Timeout:        cfg.Mpesa.Timeout,
	}, tp, appLogger)

	// Receipt emitter: persists receipts and emails them through Resend
	emailSender := email.NewResendSender(&email.ResendConfig{
		APIKey:  cfg.Email.APIKey,
		Timeout: cfg.Email.Timeout,
	}, appLogger)
	receiptEmitter := receipt.NewEmitter(orderRepo, receiptRepo, emailSender, tp, appLogger, receipt.BusinessInfo{
		Name:  cfg.Business.Name,
		Phone: cfg.Business.Phone,
		Email: cfg.Business.Email,
		From:  cfg.Email.From,
	})

	// Payment metrics
	paymentMetrics := metrics.NewPaymentMetrics()

	// Initialize use cases
	reconciler := reconcileUseCase.NewEngine(
		transactionRepo,
		orderRepo,
		receiptEmitter,
		tp,
		appLogger,
		paymentMetrics,
		cfg.Mpesa.ShortCode,
	)
	paymentService := paymentUseCase.NewService(
		gatewayClient,
		transactionRepo,
		reconciler,
		tp,
		appLogger,
		paymentMetrics,
		cfg.Mpesa.ShortCode,
	)

	// Initialize API handlers
	paymentHandler := handler.NewPaymentHandler(paymentService, appLogger)
	callbackHandler := handler.NewCallbackHandler(reconciler, appLogger)

	// Initialize Gin router
	router := gin.New()

	// Setup middlewares
	routes.SetupMiddlewares(router, appLogger)

	// Setup routes
	routes.SetupRoutes(router, paymentHandler, callbackHandler)

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"port": cfg.Server.Port,
			"env":  cfg.Environment,
		})

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	// Create a deadline to wait for
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// validateConfig ensures all required configuration values are present
func validateConfig(cfg *config.Config) error {
	var missingConfigs []string

	// Validate server configuration
	if cfg.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}

	if cfg.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}

	if cfg.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}

	if cfg.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}

	// Validate database configuration
	if cfg.Database.Host == "" {
		if cfg.Environment == config.Production && os.Getenv("MB_DB_HOST") == "" {
			missingConfigs = append(missingConfigs, "database.host (or MB_DB_HOST environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.host")
		}
	}

	if cfg.Database.Port == "" {
		if cfg.Environment == config.Production && os.Getenv("MB_DB_PORT") == "" {
			missingConfigs = append(missingConfigs, "database.port (or MB_DB_PORT environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.port")
		}
	}

	if cfg.Database.Username == "" {
		if cfg.Environment == config.Production && os.Getenv("MB_DB_USERNAME") == "" {
			missingConfigs = append(missingConfigs, "database.username (or MB_DB_USERNAME environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.username")
		}
	}

	if cfg.Database.Password == "" {
		if cfg.Environment == config.Production && os.Getenv("MB_DB_PASSWORD") == "" {
			missingConfigs = append(missingConfigs, "database.password (or MB_DB_PASSWORD environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.password")
		}
	}

	if cfg.Database.Database == "" {
		if cfg.Environment == config.Production && os.Getenv("MB_DB_NAME") == "" {
			missingConfigs = append(missingConfigs, "database.database (or MB_DB_NAME environment variable)")
		} else if cfg.Environment != config.Production {
			missingConfigs = append(missingConfigs, "database.database")
		}
	}

	if cfg.Database.QueryTimeout == 0 {
		missingConfigs = append(missingConfigs, "database.queryTimeout")
	}

	// Validate M-Pesa configuration
	if cfg.Mpesa.ConsumerKey == "" {
		missingConfigs = append(missingConfigs, "mpesa.consumerKey (or MB_MPESA_CONSUMER_KEY environment variable)")
	}
	if cfg.Mpesa.ConsumerSecret == "" {
		missingConfigs = append(missingConfigs, "mpesa.consumerSecret (or MB_MPESA_CONSUMER_SECRET environment variable)")
	}
	if cfg.Mpesa.ShortCode == "" {
		missingConfigs = append(missingConfigs, "mpesa.shortCode (or MB_MPESA_SHORT_CODE environment variable)")
	}
	if cfg.Mpesa.Passkey == "" {
		missingConfigs = append(missingConfigs, "mpesa.passkey (or MB_MPESA_PASSKEY environment variable)")
	}
	if cfg.Mpesa.CallbackURL == "" {
		missingConfigs = append(missingConfigs, "mpesa.callbackUrl (or MB_MPESA_CALLBACK_URL environment variable)")
	}
	if cfg.Mpesa.Environment != "sandbox" && cfg.Mpesa.Environment != "production" {
		return fmt.Errorf("invalid mpesa.environment value: %s, must be sandbox or production", cfg.Mpesa.Environment)
	}

	// Environment should be set with a valid value
	if cfg.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if cfg.Environment != config.Development &&
		cfg.Environment != config.Production &&
		cfg.Environment != config.Test {
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			cfg.Environment, config.Development, config.Production, config.Test)
	}

	// Logger configuration
	if cfg.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}

	// Return error with list of missing configurations
	if len(missingConfigs) > 0 {
		return fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	// If we're in production, do additional validation for sensitive settings
	if cfg.Environment == config.Production {
		var warnings []string

		if strings.ToLower(cfg.Database.SSLMode) != "require" && strings.ToLower(cfg.Database.SSLMode) != "verify-ca" && strings.ToLower(cfg.Database.SSLMode) != "verify-full" {
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}

		if cfg.Server.ReadTimeout < 5*time.Second {
			warnings = append(warnings, "server.readTimeout is too low for production")
		}

		if cfg.Server.WriteTimeout < 5*time.Second {
			warnings = append(warnings, "server.writeTimeout is too low for production")
		}

		if cfg.Email.APIKey == "" {
			warnings = append(warnings, "email.apiKey not set, receipts will be stored but not emailed")
		}

		if len(warnings) > 0 {
			log.Printf("Warning: potential issues in production configuration: %v", warnings)
		}
	}

	return nil
}
