package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"parley/internal/api"
	"parley/internal/catalog"
	"parley/internal/llm"
	"parley/internal/logging"
	"parley/internal/metrics"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := loadConfig()
	if err := applyFlags(&cfg, os.Args[1:]); err != nil {
		os.Exit(2)
	}
	logBuffer := logging.NewLogBuffer(logging.DefaultBufferSize)
	logger := logging.NewLogger(logBuffer, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Error("catalog setup failed", map[string]string{
			"error": err.Error(),
		})
		os.Exit(1)
	}
	logger.Info("catalog loaded", map[string]string{
		"suppliers": strconv.Itoa(len(store.Suppliers())),
		"products":  strconv.Itoa(len(store.Products())),
	})

	generator := llm.NewOpenAIClient(llm.OpenAIOptions{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, api.RoutesConfig{
		Catalog:        store,
		Generator:      generator,
		Rounds:         cfg.Rounds,
		AuthToken:      cfg.AuthToken,
		AllowedOrigins: cfg.AllowedOrigins,
		StaticDir:      cfg.StaticDir,
		Logger:         logger,
		Metrics:        metrics.Default,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("parley listening", map[string]string{
			"addr": server.Addr,
		})
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown incomplete", map[string]string{
				"error": err.Error(),
			})
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", map[string]string{
				"error": err.Error(),
			})
			os.Exit(1)
		}
	}
}

// buildCatalog assembles the supplier roster and product catalog from
// configured files, falling back to the built-in defaults. A configured
// products file is also watched for hot reload.
func buildCatalog(ctx context.Context, cfg Config, logger *logging.Logger) (*catalog.Store, error) {
	suppliers := catalog.DefaultSuppliers()
	if cfg.RosterPath != "" {
		loaded, err := catalog.LoadRoster(cfg.RosterPath)
		if err != nil {
			return nil, err
		}
		suppliers = loaded
	}

	products := catalog.DefaultProducts()
	if cfg.ProductsPath != "" {
		loaded, err := catalog.LoadProducts(cfg.ProductsPath)
		if err != nil {
			return nil, err
		}
		products = loaded
	}

	store := catalog.NewStore(suppliers, products, logger)

	if cfg.ProductsPath != "" {
		if err := store.WatchProducts(ctx, cfg.ProductsPath); err != nil {
			logger.Warn("product catalog watch unavailable", map[string]string{
				"path":  cfg.ProductsPath,
				"error": err.Error(),
			})
		}
	}

	return store, nil
}
