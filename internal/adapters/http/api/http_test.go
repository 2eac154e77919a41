package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/http/api"
	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/repository"
	service "github.com/xsmartbartx/system-rezerwacji/internal/app"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/pricing"
	"github.com/xsmartbartx/system-rezerwacji/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// Mock implementations for testing
type mockDeps struct {
	quote    int64
	quoteErr error

	price    model.DynamicPrice
	property model.Property
	priceErr error

	prices    []model.DynamicPrice
	pricesErr error

	analytics    repository.PriceAnalytics
	analyticsErr error

	report     *service.RunReport
	refreshErr error
	lastReport *service.RunReport
}

func (m *mockDeps) Quote(ctx context.Context, propertyID string, day time.Time) (int64, error) {
	return m.quote, m.quoteErr
}

func (m *mockDeps) PriceOn(ctx context.Context, propertyID string, day time.Time) (model.DynamicPrice, model.Property, error) {
	return m.price, m.property, m.priceErr
}

func (m *mockDeps) PriceRange(ctx context.Context, propertyID string, from, to time.Time) ([]model.DynamicPrice, error) {
	return m.prices, m.pricesErr
}

func (m *mockDeps) Analytics(ctx context.Context, propertyID string) (repository.PriceAnalytics, error) {
	return m.analytics, m.analyticsErr
}

func (m *mockDeps) RefreshAll(ctx context.Context) (*service.RunReport, error) {
	return m.report, m.refreshErr
}

func (m *mockDeps) LastReport() *service.RunReport {
	return m.lastReport
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newRouter(deps *mockDeps, stats *mockStatsProvider) chi.Router {
	if stats == nil {
		stats = &mockStatsProvider{stats: map[string]interface{}{}}
	}
	r := chi.NewRouter()
	api.NewServer(deps, stats).Register(r)
	return r
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &mockDeps{
			quote:    120,
			price:    model.DynamicPrice{PropertyID: "p1", Date: day(2024, 3, 10), Price: 110},
			property: model.Property{ID: "p1", Price: 100},
			report:   &service.RunReport{Properties: 2, Attempted: 4, Succeeded: 4},
		}
		router := newRouter(deps, &mockStatsProvider{stats: map[string]interface{}{"running": true}})

		Convey("Then the health endpoint serves metrics", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves the provider's map", func() {
			req := httptest.NewRequest(http.MethodGet, "/stats", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"running":true`)
		})

		Convey("Then unknown paths 404", func() {
			req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_GetPrice(t *testing.T) {
	Convey("Given a stored price", t, func() {
		deps := &mockDeps{
			price:    model.DynamicPrice{PropertyID: "p1", Date: day(2024, 3, 10), Price: 110},
			property: model.Property{ID: "p1", Price: 100},
		}
		router := newRouter(deps, nil)

		Convey("When requesting it with a valid date", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/price?date=2024-03-10", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the response carries the price and the change against base", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["property_id"], ShouldEqual, "p1")
				So(resp["date"], ShouldEqual, "2024-03-10")
				So(resp["price"], ShouldEqual, 110)
				So(resp["base_price"], ShouldEqual, 100)
				So(resp["change_percent"], ShouldAlmostEqual, 10.0)
			})
		})

		Convey("When the date parameter is malformed", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/price?date=10-03-2024", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the date parameter is missing", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/price", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When no price is stored", func() {
			deps.priceErr = repository.ErrNotFound
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/price?date=2024-03-10", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the handler answers 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(w.Body.String(), ShouldContainSubstring, "not_found")
			})
		})

		Convey("When the database is unreachable", func() {
			deps.priceErr = repository.ErrUnavailable
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/price?date=2024-03-10", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the handler answers 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})
	})
}

func TestServer_GetPrices(t *testing.T) {
	Convey("Given a stored price series", t, func() {
		deps := &mockDeps{
			prices: []model.DynamicPrice{
				{PropertyID: "p1", Date: day(2024, 3, 10), Price: 100},
				{PropertyID: "p1", Date: day(2024, 3, 11), Price: 120},
			},
		}
		router := newRouter(deps, nil)

		Convey("When requesting a valid range", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/prices?from=2024-03-10&to=2024-03-11", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the response lists date and price pairs", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					PropertyID string `json:"property_id"`
					Prices     []struct {
						Date  string `json:"date"`
						Price int64  `json:"price"`
					} `json:"prices"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.PropertyID, ShouldEqual, "p1")
				So(len(resp.Prices), ShouldEqual, 2)
				So(resp.Prices[0].Date, ShouldEqual, "2024-03-10")
				So(resp.Prices[1].Price, ShouldEqual, 120)
			})
		})

		Convey("When the range is inverted", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/prices?from=2024-03-11&to=2024-03-10", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "to precedes from")
			})
		})

		Convey("When a bound is malformed", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/prices?from=2024-03-10&to=soon", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestServer_GetQuote(t *testing.T) {
	Convey("Given a quoting backend", t, func() {
		deps := &mockDeps{quote: 130}
		router := newRouter(deps, nil)

		Convey("When requesting a quote", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/quote?date=2024-07-06", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the freshly computed price is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp map[string]interface{}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp["price"], ShouldEqual, 130)
				So(resp["date"], ShouldEqual, "2024-07-06")
			})
		})

		Convey("When the pricing input is invalid", func() {
			deps.quoteErr = pricing.ErrInvalidInput
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/quote?date=2024-07-06", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the request is rejected, not treated as a server fault", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the property does not exist", func() {
			deps.quoteErr = repository.ErrNotFound
			req := httptest.NewRequest(http.MethodGet, "/properties/ghost/quote?date=2024-07-06", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_GetAnalytics(t *testing.T) {
	Convey("Given price aggregates", t, func() {
		deps := &mockDeps{
			analytics: repository.PriceAnalytics{Min: 90, Max: 140, Avg: 112.5, Count: 30},
		}
		router := newRouter(deps, nil)

		Convey("When requesting analytics", func() {
			req := httptest.NewRequest(http.MethodGet, "/properties/p1/analytics", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the aggregates are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp repository.PriceAnalytics
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Min, ShouldEqual, 90)
				So(resp.Max, ShouldEqual, 140)
				So(resp.Avg, ShouldAlmostEqual, 112.5)
				So(resp.Count, ShouldEqual, 30)
			})
		})
	})
}

func TestServer_Refresh(t *testing.T) {
	Convey("Given a refresh backend", t, func() {
		deps := &mockDeps{
			report: &service.RunReport{Properties: 2, Attempted: 62, Succeeded: 62},
		}
		router := newRouter(deps, nil)

		Convey("When triggering a refresh", func() {
			req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the run report is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp service.RunReport
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Attempted, ShouldEqual, 62)
				So(resp.Succeeded, ShouldEqual, 62)
			})
		})

		Convey("When a run is already in flight", func() {
			deps.refreshErr = service.ErrRefreshInProgress
			req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Convey("Then the trigger is refused with 409", func() {
				So(w.Code, ShouldEqual, http.StatusConflict)
				So(w.Body.String(), ShouldContainSubstring, "refresh_in_progress")
			})
		})

		Convey("When the properties fetch fails", func() {
			deps.report = nil
			deps.refreshErr = repository.ErrUnavailable
			req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}
