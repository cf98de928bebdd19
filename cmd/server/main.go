/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the travel-expense engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file + environment, via viper)
  2. Build the zap logger
  3. Open the SQLite store
  4. Load the active settings snapshot (seed defaults on first run)
  5. Wire calculator, handlers, router
  6. Start the server with graceful shutdown

CONFIGURATION:
  Read from the file named by -config (default config.yaml, optional) and
  the environment. Keys:
    server.port    HTTP port                        (default 8080)
    database.path  SQLite path, ":memory:" allowed  (default travel.db)
    log.level      zap level                        (default info)
    seed.countries path of a countries JSON file loaded at startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/warp/travel-engine/api"
	"github.com/warp/travel-engine/calc"
	"github.com/warp/travel-engine/factory"
	"github.com/warp/travel-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file path")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(*configPath)
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "travel.db")
	v.SetDefault("log.level", "info")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and environment apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	logger, err := buildLogger(v.GetString("log.level"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := sqlite.New(v.GetString("database.path"))
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	settings, err := loadOrSeedSettings(ctx, store, logger)
	if err != nil {
		logger.Fatal("failed to load settings", zap.Error(err))
	}
	if path := v.GetString("seed.countries"); path != "" {
		if err := seedCountries(ctx, store, path); err != nil {
			logger.Fatal("failed to seed countries", zap.String("path", path), zap.Error(err))
		}
	}

	calculator := calc.New(store, settings)
	handler := api.NewHandler(store, calculator, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", v.GetInt("server.port")),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func buildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg.Level = lvl
	return cfg.Build()
}

// loadOrSeedSettings returns the stored settings snapshot, writing the
// statutory defaults on a fresh database.
func loadOrSeedSettings(ctx context.Context, store *sqlite.Store, logger *zap.Logger) (calc.Settings, error) {
	settings, err := store.LoadSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, sqlite.ErrNoSettings) {
		return calc.Settings{}, err
	}
	settings = factory.DefaultSettings()
	if err := store.SaveSettings(ctx, settings); err != nil {
		return calc.Settings{}, err
	}
	logger.Info("seeded default settings", zap.String("currency", settings.Currency))
	return settings, nil
}

func seedCountries(ctx context.Context, store *sqlite.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	countries, err := factory.ParseCountries(data)
	if err != nil {
		return err
	}
	for _, c := range countries {
		if err := store.UpsertCountry(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
