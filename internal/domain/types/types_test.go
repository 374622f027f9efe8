package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/pipeline"
	types "github.com/okian/dfspersona/internal/domain/types"
)

func entry(id, contest string, day int, fee, won string) model.Entry {
	e, err := model.NewEntry(model.Entry{
		ID:          id,
		Date:        time.Date(2024, 9, day, 13, 0, 0, 0, time.UTC),
		Sport:       "NFL",
		Fee:         decimal.RequireFromString(fee),
		Winnings:    decimal.RequireFromString(won),
		Platform:    model.PlatformDraftKings,
		ContestName: contest,
	})
	if err != nil {
		panic(err)
	}
	return e
}

func TestNewAnalysis(t *testing.T) {
	Convey("Given a pipeline result", t, func() {
		entries := []model.Entry{
			entry("2", "NFL 50/50", 20, "5", "9"),
			entry("1", "NFL $20K GPP", 3, "20", "0"),
			entry("3", "NFL Head-to-Head", 12, "10", "18"),
		}
		p := pipeline.New()
		res, err := p.Run(entries)
		So(err, ShouldBeNil)

		Convey("When there are no warnings", func() {
			a := types.NewAnalysis(model.PlatformDraftKings, res, nil)

			Convey("Then the summary fields are filled", func() {
				So(a.Platform, ShouldEqual, model.PlatformDraftKings)
				So(a.EntriesCount, ShouldEqual, 3)
				So(a.DateRange.Start, ShouldEqual, "2024-09-03T13:00:00")
				So(a.DateRange.End, ShouldEqual, "2024-09-20T13:00:00")
				So(a.WeightExplanations, ShouldHaveLength, len(model.Patterns()))
				So(a.WeightExplanations[0].Pattern, ShouldEqual, model.Patterns()[0].String())
			})

			Convey("Then warnings encode as null", func() {
				raw, err := json.Marshal(a)
				So(err, ShouldBeNil)
				var decoded map[string]json.RawMessage
				So(json.Unmarshal(raw, &decoded), ShouldBeNil)
				So(string(decoded["warnings"]), ShouldEqual, "null")
				_, hasProfile := decoded["profile_id"]
				So(hasProfile, ShouldBeFalse)
			})
		})

		Convey("When rows were skipped", func() {
			a := types.NewAnalysis(model.PlatformDraftKings, res, []string{"Row 4: Skipping due to error - bad"})
			So(a.Warnings, ShouldResemble, []string{"Row 4: Skipping due to error - bad"})
		})
	})
}
