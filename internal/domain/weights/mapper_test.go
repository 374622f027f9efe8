package weights_test

import (
	"math/rand/v2"
	"testing"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/weights"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scores(b, f, s string) model.PersonaScore {
	p, err := model.NewPersonaScore(dec(b), dec(f), dec(s))
	if err != nil {
		panic(err)
	}
	return p
}

func TestMapper(t *testing.T) {
	m := weights.NewMapper()

	Convey("Given a pure bettor", t, func() {
		w, err := m.Map(scores("1", "0", "0"))
		So(err, ShouldBeNil)

		Convey("Then the bettor modifier vector is reproduced exactly", func() {
			So(w.Equal(weights.DefaultModifiers().Bettor), ShouldBeTrue)
			So(w.Weight(model.PatternLineMovement).Equal(dec("1.5")), ShouldBeTrue)
			So(w.Weight(model.PatternPlayerCorrelations).Equal(dec("0.7")), ShouldBeTrue)
		})
	})

	Convey("Given a pure stats nerd", t, func() {
		w, err := m.Map(scores("0", "0", "1"))
		So(err, ShouldBeNil)
		So(w.Equal(weights.DefaultModifiers().StatsNerd), ShouldBeTrue)
	})

	Convey("Given a mostly bettor profile", t, func() {
		w, err := m.Map(scores("0.90", "0.05", "0.05"))
		So(err, ShouldBeNil)

		Convey("Then the blend is exact", func() {
			// 0.9*1.5 + 0.05*0.8 + 0.05*0.7
			So(w.Weight(model.PatternLineMovement).Equal(dec("1.425")), ShouldBeTrue)
			// 0.9*1.4 + 0.05*0.6 + 0.05*0.5
			So(w.Weight(model.PatternLiveOddsDelta).Equal(dec("1.315")), ShouldBeTrue)
		})
	})

	Convey("Given a hybrid profile", t, func() {
		w, err := m.Map(scores("0.40", "0.40", "0.20"))
		So(err, ShouldBeNil)

		Convey("Then weights fall between the persona extremes", func() {
			So(w.Weight(model.PatternLineMovement).Equal(dec("1.06")), ShouldBeTrue)
			So(w.Weight(model.PatternPlayerCorrelations).Equal(dec("1.16")), ShouldBeTrue)
			for _, pw := range w.All() {
				So(pw.Weight.IsNegative(), ShouldBeFalse)
			}
		})

		Convey("Then ranking puts the strongest weight first", func() {
			ranked := w.Ranked()
			So(ranked[0].Weight.GreaterThanOrEqual(ranked[len(ranked)-1].Weight), ShouldBeTrue)
		})
	})

	Convey("Given the fallback distribution", t, func() {
		w, err := m.Map(scores("0.33", "0.33", "0.34"))
		So(err, ShouldBeNil)
		So(w.Weight(model.PatternSituationalStats).Equal(dec("1.303")), ShouldBeTrue)
	})

	Convey("Given custom modifiers", t, func() {
		neutral := model.DefaultPatternWeights()
		custom := weights.NewMapper(weights.WithModifiers(weights.Modifiers{
			Bettor: neutral, Fantasy: neutral, StatsNerd: neutral,
		}))
		w, err := custom.Map(scores("0.5", "0.3", "0.2"))
		So(err, ShouldBeNil)
		So(w.Equal(model.DefaultPatternWeights()), ShouldBeTrue)
	})
}

func TestExplain(t *testing.T) {
	m := weights.NewMapper()

	Convey("Given a pure bettor", t, func() {
		p := scores("1", "0", "0")
		w, err := m.Map(p)
		So(err, ShouldBeNil)
		ex := m.Explain(p, w)

		Convey("Then each pattern gets a label", func() {
			So(ex, ShouldHaveLength, 8)
			So(ex[model.PatternLineMovement].Text, ShouldEqual, "Boosted by Bettor persona (1.50x)")
			So(ex[model.PatternHistoricalTrends].Text, ShouldEqual, "Neutral weight (0.90x)")
			So(ex[model.PatternWeatherFactors].Text, ShouldEqual, "Deprioritized for your profile (0.80x)")
			So(ex[model.PatternContrarianPlays].Text, ShouldEqual, "Neutral weight (1.10x)")
		})
	})

	Convey("Given a stats nerd primary", t, func() {
		p := scores("0.05", "0.05", "0.90")
		w, err := m.Map(p)
		So(err, ShouldBeNil)
		ex := m.Explain(p, w)
		// 0.05*0.9 + 0.05*1.1 + 0.9*1.5 = 1.45
		So(ex[model.PatternHistoricalTrends].Text, ShouldEqual, "Boosted by Stats Nerd persona (1.45x)")
	})

	Convey("Given a weight on a rounding boundary", t, func() {
		p := scores("1", "0", "0")
		w, err := model.NewPatternWeights(map[model.Pattern]decimal.Decimal{model.PatternInjuryImpact: dec("1.125")})
		So(err, ShouldBeNil)
		ex := m.Explain(p, w)
		So(ex[model.PatternInjuryImpact].Text, ShouldEqual, "Boosted by Bettor persona (1.12x)")
	})
}

func TestMapperInvariants(t *testing.T) {
	Convey("Given random persona distributions from a fixed seed", t, func() {
		r := rand.New(rand.NewPCG(29, 31))
		m := weights.NewMapper()

		for i := 0; i < 300; i++ {
			p, err := model.PersonaScoreFromRaw(r.Float64(), r.Float64(), r.Float64())
			So(err, ShouldBeNil)

			w, err := m.Map(p)
			So(err, ShouldBeNil)
			for _, pw := range w.All() {
				So(pw.Weight.IsNegative(), ShouldBeFalse)
			}
			So(m.Explain(p, w), ShouldHaveLength, len(model.Patterns()))
		}
	})
}
