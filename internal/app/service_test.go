package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/xsmartbartx/system-rezerwacji/internal/adapters/repository"
	service "github.com/xsmartbartx/system-rezerwacji/internal/app"
	"github.com/xsmartbartx/system-rezerwacji/internal/domain/model"
	"github.com/xsmartbartx/system-rezerwacji/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixedClock anchors the refresh horizon for deterministic windows.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newStore(t *testing.T) *repository.GormStore {
	t.Helper()
	store, err := repository.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "pricing.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func startService(t *testing.T, store repository.Store, opts ...service.Option) *service.Service {
	t.Helper()
	opts = append([]service.Option{
		service.WithStore(store),
		service.WithImmediateRefresh(false),
	}, opts...)
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service over an in-memory store", t, func() {
		store := newStore(t)
		svc := service.New(
			service.WithStore(store),
			service.WithImmediateRefresh(false),
		)

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				So(svc.GetStats()["started"], ShouldEqual, true)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})

			Convey("And stopping marks it stopped", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_RefreshAll(t *testing.T) {
	Convey("Given two properties and a 31-day refresh window", t, func() {
		store := newStore(t)
		props := []model.Property{
			{ID: "p1", Title: "Studio", Price: 100},
			{ID: "p2", Title: "Loft", Price: 200},
		}
		So(store.DB().Create(&props).Error, ShouldBeNil)

		// 2024-03-31 anchors a window through 2024-04-30: 31 days.
		svc := startService(t, store, service.WithClock(fixedClock(day(2024, 3, 31))))

		Convey("When running a full refresh", func() {
			report, err := svc.RefreshAll(context.Background())

			Convey("Then every (property, date) pair is processed exactly once", func() {
				So(err, ShouldBeNil)
				So(report.Properties, ShouldEqual, 2)
				So(report.Attempted, ShouldEqual, 62)
				So(report.Succeeded, ShouldEqual, 62)
				So(report.Failures, ShouldBeEmpty)

				var count int64
				So(store.DB().Model(&model.DynamicPrice{}).Count(&count).Error, ShouldBeNil)
				So(count, ShouldEqual, 62)
			})

			Convey("And a second run overwrites instead of duplicating", func() {
				report2, err := svc.RefreshAll(context.Background())
				So(err, ShouldBeNil)
				So(report2.Succeeded, ShouldEqual, 62)

				var count int64
				So(store.DB().Model(&model.DynamicPrice{}).Count(&count).Error, ShouldBeNil)
				So(count, ShouldEqual, 62)
			})

			Convey("And the report is recorded as the last run", func() {
				So(svc.LastReport(), ShouldNotBeNil)
				So(svc.LastReport().Attempted, ShouldEqual, 62)
				So(svc.GetStats()["lastRunSucceeded"], ShouldEqual, 62)
			})
		})

		Convey("When the materialized prices are read back", func() {
			_, err := svc.RefreshAll(context.Background())
			So(err, ShouldBeNil)

			Convey("Then PriceOn returns a price for a window date", func() {
				price, prop, err := svc.PriceOn(context.Background(), "p1", day(2024, 4, 15))
				So(err, ShouldBeNil)
				So(prop.Price, ShouldEqual, 100.0)
				So(price.Price, ShouldBeGreaterThan, 0)
			})

			Convey("And PriceRange returns the ordered series", func() {
				prices, err := svc.PriceRange(context.Background(), "p2", day(2024, 4, 1), day(2024, 4, 10))
				So(err, ShouldBeNil)
				So(prices, ShouldHaveLength, 10)
				So(prices[0].Date.Before(prices[9].Date), ShouldBeTrue)
			})

			Convey("And Analytics aggregates the stored prices", func() {
				analytics, err := svc.Analytics(context.Background(), "p1")
				So(err, ShouldBeNil)
				So(analytics.Count, ShouldEqual, 31)
				So(analytics.Min, ShouldBeLessThanOrEqualTo, analytics.Max)
			})
		})
	})
}

// flakyStore fails upserts for one specific date.
type flakyStore struct {
	repository.Store
	failOn time.Time
}

func (f *flakyStore) UpsertPrice(ctx context.Context, price model.DynamicPrice) error {
	if price.Date.Equal(f.failOn) {
		return errors.New("simulated write failure")
	}
	return f.Store.UpsertPrice(ctx, price)
}

func TestService_RefreshAllPartialFailure(t *testing.T) {
	Convey("Given a store that fails writes for one date", t, func() {
		inner := newStore(t)
		So(inner.DB().Create(&model.Property{ID: "p1", Price: 100}).Error, ShouldBeNil)

		store := &flakyStore{Store: inner, failOn: day(2024, 4, 10)}
		svc := startService(t, store, service.WithClock(fixedClock(day(2024, 3, 31))))

		Convey("When running a full refresh", func() {
			report, err := svc.RefreshAll(context.Background())

			Convey("Then the run continues past the failed task", func() {
				So(err, ShouldBeNil)
				So(report.Attempted, ShouldEqual, 31)
				So(report.Succeeded, ShouldEqual, 30)
				So(report.Failures, ShouldHaveLength, 1)
				So(report.Failures[0].Task.Date, ShouldResemble, day(2024, 4, 10))
				So(report.Failures[0].Reason, ShouldContainSubstring, "upsert")
			})

			Convey("And the failed subset can be retried on its own", func() {
				store.failOn = time.Time{} // heal the store
				retry, err := svc.RefreshTasks(context.Background(), []service.Task{report.Failures[0].Task})
				So(err, ShouldBeNil)
				So(retry.Attempted, ShouldEqual, 1)
				So(retry.Succeeded, ShouldEqual, 1)

				var count int64
				So(inner.DB().Model(&model.DynamicPrice{}).Count(&count).Error, ShouldBeNil)
				So(count, ShouldEqual, 31)
			})
		})
	})
}

// gatedStore blocks the property listing until released, to hold a refresh
// run open while assertions run.
type gatedStore struct {
	repository.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Properties(ctx context.Context) ([]model.Property, error) {
	close(g.entered)
	<-g.release
	return g.Store.Properties(ctx)
}

func TestService_RefreshOverlapGuard(t *testing.T) {
	Convey("Given a refresh run held in flight", t, func() {
		inner := newStore(t)
		store := &gatedStore{
			Store:   inner,
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		svc := startService(t, store, service.WithClock(fixedClock(day(2024, 3, 31))))

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = svc.RefreshAll(context.Background())
		}()
		<-store.entered

		Convey("When a second trigger arrives", func() {
			_, err := svc.RefreshAll(context.Background())

			Convey("Then it is skipped with ErrRefreshInProgress", func() {
				So(errors.Is(err, service.ErrRefreshInProgress), ShouldBeTrue)
			})
		})

		close(store.release)
		<-done
	})
}

func TestService_Quote(t *testing.T) {
	Convey("Given a catalog with one property", t, func() {
		store := newStore(t)
		So(store.DB().Create(&model.Property{ID: "p1", Price: 100}).Error, ShouldBeNil)

		svc := startService(t, store)

		Convey("When quoting a low-season weekday", func() {
			// 2024-01-10 is a Wednesday.
			price, err := svc.Quote(context.Background(), "p1", day(2024, 1, 10))

			Convey("Then the neutral multiplier keeps the base price", func() {
				So(err, ShouldBeNil)
				So(price, ShouldEqual, 100)
			})
		})

		Convey("When quoting an unknown property", func() {
			_, err := svc.Quote(context.Background(), "ghost", day(2024, 1, 10))

			Convey("Then it reports not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}
