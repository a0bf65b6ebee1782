/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the personnel roster server. Handles
  configuration, dependency injection, and graceful shutdown.

COMMANDS:
  serve    Start the HTTP server (default)
  seed     Load a starter dataset into the database

STARTUP SEQUENCE:
  1. Load configuration (roster_config.yaml or defaults)
  2. Initialize logger
  3. Open SQLite store
  4. Create API handler with dependencies
  5. Start server with graceful shutdown

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server serve --db=./data/roster.db

  # Run with in-memory database
  ./server serve --db=:memory:

  # Seed a fresh database
  ./server seed --db=./data/roster.db

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dsaude/roster-engine/api"
	"github.com/dsaude/roster-engine/config"
	"github.com/dsaude/roster-engine/store/sqlite"
)

var (
	flagConfig string
	flagAddr   string
	flagDB     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "server",
		Short: "Personnel roster and shift-cycle server",
		Long:  "HTTP server for personnel management, shift-cycle forecasting, extra-duty rotation and time-bank ledgers.",
	}
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")

	rootCmd.AddCommand(serveCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			handler := api.NewHandler(store, logger)
			router := api.NewRouter(handler, cfg.AllowedOrigins)

			server := &http.Server{
				Addr:         cfg.ListenAddr,
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				logger.Info("server starting",
					zap.String("addr", cfg.ListenAddr),
					zap.String("db", cfg.DatabasePath))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("server failed", zap.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			logger.Info("shutting down server")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logger.Info("server stopped")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a starter dataset into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			store, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			n, err := seed(cmd.Context(), store)
			if err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
			logger.Info("database seeded",
				zap.Int("soldiers", n),
				zap.String("db", cfg.DatabasePath))
			return nil
		},
	}
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFromPath(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, err
	}

	if flagAddr != "" {
		cfg.ListenAddr = flagAddr
	}
	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}
