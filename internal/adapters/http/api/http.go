// Package api declares HTTP contracts and route registration for the
// pricing service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/repository"
	service "github.com/xsmartbartx/system-rezerwacji/internal/app"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps the
// handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Quote computes a fresh price without reading the stored table.
	Quote(ctx context.Context, propertyID string, day time.Time) (int64, error)

	// Read operations over materialized prices.
	PriceOn(ctx context.Context, propertyID string, day time.Time) (model.DynamicPrice, model.Property, error)
	PriceRange(ctx context.Context, propertyID string, from, to time.Time) ([]model.DynamicPrice, error)
	Analytics(ctx context.Context, propertyID string) (repository.PriceAnalytics, error)

	// Batch control.
	RefreshAll(ctx context.Context) (*service.RunReport, error)
	LastReport() *service.RunReport
}

// StatsProvider exposes service statistics for the /stats endpoint.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// Server wires HTTP routes for the pricing API.
//
// Route map:
//
//	GET  /healthz                              Prometheus metrics
//	GET  /stats                                service statistics
//	POST /refresh                              manual batch trigger
//	GET  /properties/{id}/price?date=          stored price for a date
//	GET  /properties/{id}/prices?from=&to=     stored price series
//	GET  /properties/{id}/quote?date=          freshly computed price
//	GET  /properties/{id}/analytics            min/avg/max aggregates
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	pricesHandler    *PricesHandler
	analyticsHandler *AnalyticsHandler
	refreshHandler   *RefreshHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		pricesHandler:    NewPricesHandler(deps),
		analyticsHandler: NewAnalyticsHandler(deps),
		refreshHandler:   NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Post("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))

	r.Route("/properties/{propertyID}", func(r chi.Router) {
		r.Get("/price", MetricsMiddleware(s.pricesHandler.HandleGetPrice, "price"))
		r.Get("/prices", MetricsMiddleware(s.pricesHandler.HandleGetPrices, "prices"))
		r.Get("/quote", MetricsMiddleware(s.pricesHandler.HandleGetQuote, "quote"))
		r.Get("/analytics", MetricsMiddleware(s.analyticsHandler.HandleGetAnalytics, "analytics"))
	})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseDay parses a YYYY-MM-DD query value.
func parseDay(raw string) (time.Time, error) {
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	return day, nil
}
