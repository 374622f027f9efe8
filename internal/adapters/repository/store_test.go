package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dfspersona/internal/adapters/repository"
	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/pkg/logger"
)

var dbSeq atomic.Int64

// stepClock advances one minute per call.
func stepClock() func() time.Time {
	base := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	var n atomic.Int64
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Minute)
	}
}

func sampleProfile() model.UserProfile {
	personas, err := model.NewPersonaScore(
		decimal.RequireFromString("0.407"),
		decimal.Zero,
		decimal.RequireFromString("0.593"))
	if err != nil {
		panic(err)
	}
	metrics, err := model.NewBehavioralMetrics(model.BehavioralMetrics{
		TotalEntries:         5,
		EntriesBySport:       map[string]int{"NFL": 3, "NBA": 2},
		EntriesByContestType: map[model.ContestType]int{model.ContestGPP: 3, model.ContestCash: 2},
		TotalFees:            decimal.NewFromInt(48),
		TotalWinnings:        decimal.RequireFromString("89.4"),
		AvgEntryFee:          decimal.RequireFromString("9.6"),
		ROI:                  decimal.RequireFromString("86.25"),
		GPPPercentage:        decimal.RequireFromString("0.6"),
		CashPercentage:       decimal.RequireFromString("0.4"),
		SportDiversity:       decimal.RequireFromString("0.961"),
		StakeVariance:        decimal.RequireFromString("0.8375"),
		EntriesPerWeek:       decimal.RequireFromString("1.25"),
		MostActiveDay:        "Tuesday",
		RecencyScore:         decimal.RequireFromString("0.865"),
		ConfidenceScore:      decimal.RequireFromString("0.5"),
	})
	if err != nil {
		panic(err)
	}
	return model.UserProfile{
		TotalEntries:   5,
		DateRangeStart: time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC),
		DateRangeEnd:   time.Date(2024, 9, 24, 0, 0, 0, 0, time.UTC),
		Platforms:      []model.Platform{model.PlatformDraftKings},
		Metrics:        metrics,
		Personas:       personas,
		Weights:        model.DefaultPatternWeights(),
		LastUpload:     time.Date(2024, 10, 1, 9, 30, 0, 0, time.UTC),
		Confidence:     decimal.RequireFromString("0.5"),
	}
}

type storeFactory struct {
	name string
	open func() repository.Store
}

func factories() []storeFactory {
	return []storeFactory{
		{"memory", func() repository.Store {
			return repository.NewMemoryStore(repository.WithClock(stepClock()), repository.WithLogger(logger.Nop()))
		}},
		{"sqlite", func() repository.Store {
			dsn := fmt.Sprintf("file:profiles_%d?mode=memory&cache=shared", dbSeq.Add(1))
			s, err := repository.Open(context.Background(), repository.DriverSQLite, dsn,
				repository.WithClock(stepClock()), repository.WithLogger(logger.Nop()))
			if err != nil {
				panic(err)
			}
			return s
		}},
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for _, f := range factories() {
		Convey(fmt.Sprintf("Given an empty %s store", f.name), t, func() {
			s := f.open()
			Reset(func() { _ = s.Close() })

			n, err := s.Count(ctx)
			So(err, ShouldBeNil)
			So(n, ShouldEqual, 0)

			Convey("When a new profile is saved", func() {
				p := sampleProfile()
				So(s.Save(ctx, &p), ShouldBeNil)

				Convey("Then it gets an id and timestamps", func() {
					So(p.ID, ShouldNotEqual, uuid.Nil)
					So(p.CreatedAt.IsZero(), ShouldBeFalse)
					So(p.UpdatedAt.Equal(p.CreatedAt), ShouldBeTrue)
				})

				Convey("Then it reads back intact", func() {
					got, err := s.Get(ctx, p.ID)
					So(err, ShouldBeNil)
					So(got.ID, ShouldEqual, p.ID)
					So(got.TotalEntries, ShouldEqual, 5)
					So(got.Platforms, ShouldResemble, []model.Platform{model.PlatformDraftKings})
					So(got.DateRangeStart.Equal(p.DateRangeStart), ShouldBeTrue)
					So(got.LastUpload.Equal(p.LastUpload), ShouldBeTrue)
					So(got.Confidence.Equal(decimal.RequireFromString("0.5")), ShouldBeTrue)
					So(got.Metrics.ROI.Equal(decimal.RequireFromString("86.25")), ShouldBeTrue)
					So(got.Metrics.EntriesBySport, ShouldResemble, map[string]int{"NFL": 3, "NBA": 2})
					So(got.Metrics.MostActiveDay, ShouldEqual, "Tuesday")
					So(got.Personas.Primary(), ShouldEqual, model.PersonaStatsNerd)
					So(got.Personas.Bettor().Equal(decimal.RequireFromString("0.407")), ShouldBeTrue)
					So(got.Weights.Equal(model.DefaultPatternWeights()), ShouldBeTrue)
				})

				Convey("Then the caller cannot mutate the stored copy", func() {
					p.Platforms[0] = model.PlatformFanDuel
					p.Metrics.EntriesBySport["NFL"] = 99
					got, err := s.Get(ctx, p.ID)
					So(err, ShouldBeNil)
					So(got.Platforms[0], ShouldEqual, model.PlatformDraftKings)
					So(got.Metrics.EntriesBySport["NFL"], ShouldEqual, 3)
				})

				Convey("And saved again with changes", func() {
					created := p.CreatedAt
					p.TotalEntries = 7
					p.Platforms = append(p.Platforms, model.PlatformFanDuel)
					So(s.Save(ctx, &p), ShouldBeNil)

					Convey("Then it is updated in place", func() {
						got, err := s.Get(ctx, p.ID)
						So(err, ShouldBeNil)
						So(got.TotalEntries, ShouldEqual, 7)
						So(got.Platforms, ShouldHaveLength, 2)
						So(got.CreatedAt.Equal(created), ShouldBeTrue)
						So(got.UpdatedAt.After(created), ShouldBeTrue)

						n, err := s.Count(ctx)
						So(err, ShouldBeNil)
						So(n, ShouldEqual, 1)
					})
				})

				Convey("And deleted", func() {
					existed, err := s.Delete(ctx, p.ID)
					So(err, ShouldBeNil)
					So(existed, ShouldBeTrue)

					Convey("Then it is gone", func() {
						_, err := s.Get(ctx, p.ID)
						So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)

						again, err := s.Delete(ctx, p.ID)
						So(err, ShouldBeNil)
						So(again, ShouldBeFalse)
					})
				})
			})

			Convey("When a profile with a caller supplied id is saved", func() {
				p := sampleProfile()
				p.ID = uuid.MustParse("6f1c2e0a-3b7d-4c1e-9a55-1f0d2c3b4a59")
				So(s.Save(ctx, &p), ShouldBeNil)

				got, err := s.Get(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.ID.String(), ShouldEqual, "6f1c2e0a-3b7d-4c1e-9a55-1f0d2c3b4a59")
			})

			Convey("When an unknown id is requested", func() {
				_, err := s.Get(ctx, uuid.New())
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("When the store is closed", func() {
				So(s.Close(), ShouldBeNil)
				p := sampleProfile()
				So(errors.Is(s.Save(ctx, &p), repository.ErrStoreClosed), ShouldBeTrue)
				_, err := s.Get(ctx, uuid.New())
				So(errors.Is(err, repository.ErrStoreClosed), ShouldBeTrue)
			})
		})
	}
}

func TestOpen(t *testing.T) {
	Convey("Given store drivers", t, func() {
		ctx := context.Background()

		Convey("When the memory driver is requested", func() {
			s, err := repository.Open(ctx, repository.DriverMemory, "")
			So(err, ShouldBeNil)
			_, ok := s.(*repository.MemoryStore)
			So(ok, ShouldBeTrue)
		})

		Convey("When an unknown driver is requested", func() {
			_, err := repository.Open(ctx, "mysql", "dsn")
			So(errors.Is(err, repository.ErrUnsupportedDriver), ShouldBeTrue)
		})
	})
}
