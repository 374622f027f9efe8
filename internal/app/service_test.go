package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	service "github.com/okian/dfspersona/internal/app"
	"github.com/okian/dfspersona/internal/adapters/ingest"
	"github.com/okian/dfspersona/internal/adapters/repository"
	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/pipeline"
	"github.com/okian/dfspersona/internal/domain/types"
	"github.com/okian/dfspersona/pkg/logger"
)

const draftKingsCSV = `Entry ID,Contest Name,Entry Fee,Winnings,Points,Sport,Date Entered
DK1001,NFL $20K Shot [20 Entry Max],$5.00,$0.00,142.36,NFL,2024-09-08 13:00:00
DK1002,NFL Head-to-Head,$10.00,$18.00,151.20,NFL,2024-09-08 13:00:00
DK1003,NBA 50/50,$3.00,$5.40,288.75,NBA,2024-10-22 19:30:00
DK1004,NFL Millionaire Maker,$20.00,$0.00,120.10,NFL,2024-09-15 13:00:00
DK1005,MLB Double Up,$5.00,$9.00,98.50,MLB,2024-08-02 18:05:00
`

const fanDuelCSV = `Entry Id,Contest,Entry Fee,Winnings,Sport,Entered
FD-1,NBA Single Entry,$2.00,$3.60,NBA,10/22/2024 19:30
FD-2,NBA Mega Tournament,$4.00,$0.00,NBA,10/23/2024 19:30
FD-3,NFL Sunday Million,$9.00,$0.00,NFL,11/03/2024 13:00
`

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fixedClock() func() time.Time {
	at := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{service.WithClock(fixedClock()), service.WithLogger(logger.Nop())}
	return service.New(append(base, opts...)...)
}

func TestService_New(t *testing.T) {
	Convey("Given a service with custom options", t, func() {
		svc := newService(
			service.WithWorkerCount(8),
			service.WithQueueSize(64),
			service.WithDedupeSize(100),
			service.WithStoreDriver(repository.DriverMemory, ""),
		)

		Convey("Then stats reflect the configuration before start", func() {
			stats := svc.GetStats(context.Background())
			So(stats.Started, ShouldBeFalse)
			So(stats.Workers, ShouldEqual, 8)
			So(stats.QueueSize, ShouldEqual, 64)
			So(stats.DedupeSize, ShouldEqual, 100)
			So(stats.StoreDriver, ShouldEqual, repository.DriverMemory)
		})

		Convey("Then non-positive values keep the defaults", func() {
			other := newService(service.WithWorkerCount(0), service.WithQueueSize(-1))
			stats := other.GetStats(context.Background())
			So(stats.Workers, ShouldEqual, 4)
			So(stats.QueueSize, ShouldEqual, 1024)
		})
	})
}

func TestService_Parse(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that was never started", t, func() {
		svc := newService()

		Convey("When a DraftKings export is parsed", func() {
			a, err := svc.Parse(ctx, "history.csv", []byte(draftKingsCSV))

			Convey("Then the analysis describes the upload", func() {
				So(err, ShouldBeNil)
				So(a.ProfileID, ShouldBeNil)
				So(a.Filename, ShouldEqual, "history.csv")
				So(a.Platform, ShouldEqual, model.PlatformDraftKings)
				So(a.EntriesCount, ShouldEqual, 5)
				So(a.Metrics.TotalEntries, ShouldEqual, 5)
				So(a.DateRange.Start, ShouldEqual, "2024-08-02T18:05:00")
				So(a.DateRange.End, ShouldEqual, "2024-10-22T19:30:00")
				So(a.Warnings, ShouldBeNil)
				So(a.WeightExplanations, ShouldNotBeEmpty)
			})

			Convey("Then persona scores sum to one", func() {
				p := a.PersonaScores
				So(p.Bettor().Add(p.Fantasy()).Add(p.StatsNerd()).Equal(decimal.NewFromInt(1)), ShouldBeTrue)
			})
		})

		Convey("When a FanDuel export is parsed", func() {
			a, err := svc.Parse(ctx, "FD.CSV", []byte(fanDuelCSV))
			So(err, ShouldBeNil)
			So(a.Platform, ShouldEqual, model.PlatformFanDuel)
			So(a.EntriesCount, ShouldEqual, 3)
		})

		Convey("When some rows are malformed", func() {
			body := draftKingsCSV + "DK9,Broken,abc,$0.00,1,NFL,2024-09-01 10:00:00\n"
			a, err := svc.Parse(ctx, "history.csv", []byte(body))

			Convey("Then they become warnings", func() {
				So(err, ShouldBeNil)
				So(a.EntriesCount, ShouldEqual, 5)
				So(a.Warnings, ShouldHaveLength, 1)
				So(a.Warnings[0], ShouldStartWith, "Row 5: Skipping due to error")
			})
		})

		Convey("When the entry fees are too large for a float", func() {
			body := strings.ReplaceAll(draftKingsCSV, "$5.00", "1e400")
			var (
				a   types.Analysis
				err error
			)
			So(func() { a, err = svc.Parse(ctx, "history.csv", []byte(body)) }, ShouldNotPanic)

			Convey("Then the analysis still completes with finite metrics", func() {
				So(err, ShouldBeNil)
				So(a.EntriesCount, ShouldEqual, 5)
				So(a.Metrics.StakeVariance.IsNegative(), ShouldBeFalse)
				So(a.Metrics.TotalFees.GreaterThan(decimal.RequireFromString("1e400")), ShouldBeTrue)
			})
		})

		Convey("When the filename is not a CSV", func() {
			_, err := svc.Parse(ctx, "history.xlsx", []byte(draftKingsCSV))
			So(errors.Is(err, service.ErrNotCSV), ShouldBeTrue)
		})

		Convey("When every row is malformed", func() {
			body := "Entry ID,Contest Name,Entry Fee,Winnings,Sport,Date Entered\nDK1,NFL,$x,$0,NFL,2024-09-01\n"
			_, err := svc.Parse(ctx, "history.csv", []byte(body))
			So(errors.Is(err, pipeline.ErrNoEntries), ShouldBeTrue)
		})

		Convey("When the headers match no platform", func() {
			_, err := svc.Parse(ctx, "history.csv", []byte("a,b,c\n1,2,3\n"))
			So(errors.Is(err, ingest.ErrUnknownPlatform), ShouldBeTrue)
		})

		Convey("When the body exceeds the upload limit", func() {
			small := newService(service.WithMaxUploadBytes(16))
			_, err := small.Parse(ctx, "history.csv", []byte(draftKingsCSV))
			So(errors.Is(err, ingest.ErrFileTooLarge), ShouldBeTrue)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service that was never started", t, func() {
		svc := newService()

		Convey("Then store backed operations are refused", func() {
			_, err := svc.Analyze(ctx, "history.csv", []byte(draftKingsCSV))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, _, err = svc.Submit(ctx, "history.csv", []byte(draftKingsCSV))
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)

			_, err = svc.Profile(ctx, uuid.New())
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})

		Convey("When it is started twice and stopped twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.GetStats(ctx).Started, ShouldBeTrue)

			svc.Stop()
			svc.Stop()

			Convey("Then it ends stopped", func() {
				So(svc.GetStats(ctx).Started, ShouldBeFalse)
			})

			Convey("Then it can start again", func() {
				So(svc.Start(ctx), ShouldBeNil)
				defer svc.Stop()
				_, err := svc.Analyze(ctx, "history.csv", []byte(draftKingsCSV))
				So(err, ShouldBeNil)
			})
		})

		Convey("When the store driver is unknown", func() {
			bad := newService(service.WithStoreDriver("mysql", "dsn"))
			err := bad.Start(ctx)
			So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
		})
	})
}

func TestService_Profiles(t *testing.T) {
	ctx := context.Background()

	Convey("Given a started service", t, func() {
		svc := newService()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(svc.Stop)

		Convey("When an upload is analyzed", func() {
			a, err := svc.Analyze(ctx, "history.csv", []byte(draftKingsCSV))
			So(err, ShouldBeNil)
			So(a.ProfileID, ShouldNotBeNil)

			Convey("Then the profile is stored", func() {
				p, err := svc.Profile(ctx, *a.ProfileID)
				So(err, ShouldBeNil)
				So(p.TotalEntries, ShouldEqual, 5)
				So(p.Platforms, ShouldResemble, []model.Platform{model.PlatformDraftKings})
				So(p.DateRangeStart.Equal(time.Date(2024, 8, 2, 18, 5, 0, 0, time.UTC)), ShouldBeTrue)
				So(p.DateRangeEnd.Equal(time.Date(2024, 10, 22, 19, 30, 0, 0, time.UTC)), ShouldBeTrue)
				So(p.LastUpload.Equal(fixedClock()()), ShouldBeTrue)
				So(p.Confidence.Equal(a.Metrics.ConfidenceScore), ShouldBeTrue)
				So(p.Personas.Primary(), ShouldEqual, a.PersonaScores.Primary())
				So(svc.GetStats(ctx).Profiles, ShouldEqual, 1)
			})

			Convey("Then it can be deleted once", func() {
				existed, err := svc.DeleteProfile(ctx, *a.ProfileID)
				So(err, ShouldBeNil)
				So(existed, ShouldBeTrue)

				existed, err = svc.DeleteProfile(ctx, *a.ProfileID)
				So(err, ShouldBeNil)
				So(existed, ShouldBeFalse)

				_, err = svc.Profile(ctx, *a.ProfileID)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an unknown job is requested", func() {
			_, err := svc.Job("missing")
			So(errors.Is(err, service.ErrJobNotFound), ShouldBeTrue)
		})
	})
}
