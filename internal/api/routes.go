package api

import (
	"net/http"

	"parley/internal/catalog"
	"parley/internal/llm"
	"parley/internal/logging"
	"parley/internal/metrics"
)

type RoutesConfig struct {
	Catalog        *catalog.Store
	Generator      llm.Client
	Rounds         int
	AuthToken      string
	AllowedOrigins []string
	StaticDir      string
	Logger         *logging.Logger
	Metrics        *metrics.Registry
}

func RegisterRoutes(mux *http.ServeMux, config RoutesConfig) {
	rest := NewRestHandler(config.Catalog, config.Logger, config.Metrics, config.Rounds)

	mux.Handle("/ws/negotiate", securityHeadersMiddleware(cacheControlNoStore, &NegotiateHandler{
		Catalog:        config.Catalog,
		Generator:      config.Generator,
		Rounds:         config.Rounds,
		Logger:         config.Logger,
		Metrics:        config.Metrics,
		AuthToken:      config.AuthToken,
		AllowedOrigins: config.AllowedOrigins,
	}))
	mux.Handle("/ws/logs", securityHeadersMiddleware(cacheControlNoStore, &LogsHandler{
		Logger:         config.Logger,
		AuthToken:      config.AuthToken,
		AllowedOrigins: config.AllowedOrigins,
	}))

	// Health stays unauthenticated for probes; everything else under
	// /api requires the token when one is configured.
	mux.Handle("/api/health", restHandler("", config.Logger, rest.handleHealth))
	mux.Handle("/api/suppliers", restHandler(config.AuthToken, config.Logger, rest.handleSuppliers))
	mux.Handle("/api/products", restHandler(config.AuthToken, config.Logger, rest.handleProducts))
	mux.Handle("/metrics", restHandler(config.AuthToken, config.Logger, rest.handleMetrics))
	mux.Handle("/api/", securityHeadersMiddleware(cacheControlNoStore, http.NotFoundHandler()))

	if config.StaticDir != "" {
		mux.Handle("/", NewSPAHandler(config.StaticDir))
		return
	}

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w, cacheControlNoCache)
		if config.AuthToken != "" {
			w.Header().Set("X-Parley-Auth", "required")
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("parley ok\n"))
	})
}
