package api

import (
	"net/http"
	"time"

	"parley/internal/catalog"
	"parley/internal/logging"
	"parley/internal/metrics"
)

type RestHandler struct {
	Catalog *catalog.Store
	Logger  *logging.Logger
	Metrics *metrics.Registry
	Rounds  int
	started time.Time
}

func NewRestHandler(store *catalog.Store, logger *logging.Logger, registry *metrics.Registry, rounds int) *RestHandler {
	return &RestHandler{
		Catalog: store,
		Logger:  logger,
		Metrics: registry,
		Rounds:  rounds,
		started: time.Now().UTC(),
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Suppliers     int    `json:"suppliers"`
	Products      int    `json:"products"`
	Rounds        int    `json:"rounds"`
}

type suppliersResponse struct {
	Suppliers []catalog.Supplier `json:"suppliers"`
}

type productsResponse struct {
	Products []catalog.Product `json:"products"`
}

func (h *RestHandler) requireCatalog() *apiError {
	if h.Catalog == nil {
		return &apiError{Status: http.StatusInternalServerError, Message: "catalog unavailable"}
	}
	return nil
}

func (h *RestHandler) handleHealth(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	if err := h.requireCatalog(); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Suppliers:     len(h.Catalog.Suppliers()),
		Products:      len(h.Catalog.Products()),
		Rounds:        h.Rounds,
	})
	return nil
}

func (h *RestHandler) handleSuppliers(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	if err := h.requireCatalog(); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, suppliersResponse{Suppliers: h.Catalog.Suppliers()})
	return nil
}

func (h *RestHandler) handleProducts(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	if err := h.requireCatalog(); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, productsResponse{Products: h.Catalog.Products()})
	return nil
}

func (h *RestHandler) handleMetrics(w http.ResponseWriter, r *http.Request) *apiError {
	if r.Method != http.MethodGet {
		return methodNotAllowed(w, http.MethodGet)
	}
	registry := h.Metrics
	if registry == nil {
		registry = metrics.Default
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	_ = registry.WritePrometheus(w)
	return nil
}
