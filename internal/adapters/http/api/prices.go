package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/repository"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/pricing"
)

// PricesHandler serves materialized and freshly computed prices.
type PricesHandler struct {
	deps Dependencies
}

// NewPricesHandler creates a new prices handler.
func NewPricesHandler(deps Dependencies) *PricesHandler {
	return &PricesHandler{deps: deps}
}

// priceResponse is the wire shape for a single nightly price. ChangePercent
// compares the dynamic price against the property's base price.
type priceResponse struct {
	PropertyID    string    `json:"property_id"`
	Date          string    `json:"date"`
	Price         int64     `json:"price"`
	BasePrice     float64   `json:"base_price"`
	ChangePercent float64   `json:"change_percent"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type pricePoint struct {
	Date  string `json:"date"`
	Price int64  `json:"price"`
}

type priceSeriesResponse struct {
	PropertyID string       `json:"property_id"`
	Prices     []pricePoint `json:"prices"`
}

type quoteResponse struct {
	PropertyID string `json:"property_id"`
	Date       string `json:"date"`
	Price      int64  `json:"price"`
}

// HandleGetPrice handles GET /properties/{propertyID}/price?date=YYYY-MM-DD.
func (h *PricesHandler) HandleGetPrice(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	price, prop, err := h.deps.PriceOn(r.Context(), propertyID, day)
	if err != nil {
		writeRepositoryError(w, err)
		return
	}

	change := 0.0
	if prop.Price > 0 {
		change = (float64(price.Price) - prop.Price) / prop.Price * 100
	}

	writeJSON(w, http.StatusOK, priceResponse{
		PropertyID:    price.PropertyID,
		Date:          price.Date.Format(time.DateOnly),
		Price:         price.Price,
		BasePrice:     prop.Price,
		ChangePercent: change,
		UpdatedAt:     price.UpdatedAt,
	})
}

// HandleGetPrices handles GET /properties/{propertyID}/prices?from=&to=.
func (h *PricesHandler) HandleGetPrices(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	from, err := parseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	to, err := parseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if to.Before(from) {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("to precedes from"))
		return
	}

	prices, err := h.deps.PriceRange(r.Context(), propertyID, from, to)
	if err != nil {
		writeRepositoryError(w, err)
		return
	}

	resp := priceSeriesResponse{PropertyID: propertyID, Prices: make([]pricePoint, 0, len(prices))}
	for _, p := range prices {
		resp.Prices = append(resp.Prices, pricePoint{Date: p.Date.Format(time.DateOnly), Price: p.Price})
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleGetQuote handles GET /properties/{propertyID}/quote?date=YYYY-MM-DD.
// Unlike /price it computes the price from live booking data instead of
// reading the materialized table.
func (h *PricesHandler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	propertyID := chi.URLParam(r, "propertyID")

	day, err := parseDay(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	price, err := h.deps.Quote(r.Context(), propertyID, day)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeRepositoryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quoteResponse{
		PropertyID: propertyID,
		Date:       day.Format(time.DateOnly),
		Price:      price,
	})
}

// writeRepositoryError maps repository sentinels to HTTP statuses.
func writeRepositoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
