package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPersonaScore(t *testing.T) {
	Convey("Given a clear bettor distribution", t, func() {
		p, err := model.NewPersonaScore(dec("0.70"), dec("0.20"), dec("0.10"))
		So(err, ShouldBeNil)

		Convey("Then bettor is primary with a 0.60 spread", func() {
			So(p.Primary(), ShouldEqual, model.PersonaBettor)
			So(p.Secondary(), ShouldEqual, model.PersonaFantasy)
			So(p.IsHybrid(), ShouldBeFalse)
			So(p.Confidence().Equal(dec("0.60")), ShouldBeTrue)
		})
	})

	Convey("Given a hybrid distribution", t, func() {
		p, err := model.NewPersonaScore(dec("0.45"), dec("0.40"), dec("0.15"))
		So(err, ShouldBeNil)
		So(p.IsHybrid(), ShouldBeTrue)
		So(p.Primary(), ShouldEqual, model.PersonaBettor)
	})

	Convey("Given tied scores", t, func() {
		p, err := model.NewPersonaScore(dec("0.2"), dec("0.4"), dec("0.4"))
		So(err, ShouldBeNil)

		Convey("Then fantasy wins the tie over stats nerd", func() {
			So(p.Primary(), ShouldEqual, model.PersonaFantasy)
			So(p.Secondary(), ShouldEqual, model.PersonaStatsNerd)
			ranked := p.Ranked()
			So(ranked[2].Persona, ShouldEqual, model.PersonaBettor)
		})
	})

	Convey("Given invalid scores", t, func() {
		Convey("When a score is above one", func() {
			_, err := model.NewPersonaScore(dec("1.2"), dec("0"), dec("0"))
			So(errors.Is(err, model.ErrInvalidPersonaScore), ShouldBeTrue)
		})

		Convey("When a score is negative", func() {
			_, err := model.NewPersonaScore(dec("-0.1"), dec("0.6"), dec("0.5"))
			So(errors.Is(err, model.ErrInvalidPersonaScore), ShouldBeTrue)
		})

		Convey("When the sum misses one by more than the tolerance", func() {
			_, err := model.NewPersonaScore(dec("0.5"), dec("0.3"), dec("0.1"))
			So(errors.Is(err, model.ErrInvalidPersonaScore), ShouldBeTrue)
		})

		Convey("When the sum is within tolerance", func() {
			_, err := model.NewPersonaScore(dec("0.5"), dec("0.3"), dec("0.2005"))
			So(err, ShouldBeNil)
		})
	})
}

func TestPersonaScoreFromRaw(t *testing.T) {
	Convey("Given raw persona scores", t, func() {
		Convey("When they are all zero", func() {
			p, err := model.PersonaScoreFromRaw(0, 0, 0)
			So(err, ShouldBeNil)

			Convey("Then the fallback distribution is returned", func() {
				So(p.Bettor().Equal(dec("0.33")), ShouldBeTrue)
				So(p.Fantasy().Equal(dec("0.33")), ShouldBeTrue)
				So(p.StatsNerd().Equal(dec("0.34")), ShouldBeTrue)
			})
		})

		Convey("When they are uneven", func() {
			p, err := model.PersonaScoreFromRaw(2, 1, 1)
			So(err, ShouldBeNil)

			Convey("Then the shares are rounded and sum exactly to one", func() {
				So(p.Bettor().Equal(dec("0.5")), ShouldBeTrue)
				So(p.Fantasy().Equal(dec("0.25")), ShouldBeTrue)
				So(p.StatsNerd().Equal(dec("0.25")), ShouldBeTrue)
			})
		})

		Convey("When thirds need rounding", func() {
			p, err := model.PersonaScoreFromRaw(1, 1, 1)
			So(err, ShouldBeNil)
			So(p.Bettor().Equal(dec("0.333")), ShouldBeTrue)
			So(p.Fantasy().Equal(dec("0.333")), ShouldBeTrue)
			So(p.StatsNerd().Equal(dec("0.334")), ShouldBeTrue)
		})

		Convey("When both leading shares round up", func() {
			p, err := model.PersonaScoreFromRaw(0.4995, 0.5005, 0)
			So(err, ShouldBeNil)
			So(p.StatsNerd().IsNegative(), ShouldBeFalse)
			So(p.Bettor().Add(p.Fantasy()).Add(p.StatsNerd()).Equal(dec("1")), ShouldBeTrue)
		})

		Convey("When a raw score is negative", func() {
			_, err := model.PersonaScoreFromRaw(-1, 1, 1)
			So(errors.Is(err, model.ErrInvalidPersonaScore), ShouldBeTrue)
		})

		Convey("When a raw score is not finite", func() {
			for _, raw := range [][3]float64{
				{math.NaN(), 1, 1},
				{1, math.Inf(1), 1},
				{1, 1, math.Inf(-1)},
			} {
				var err error
				So(func() { _, err = model.PersonaScoreFromRaw(raw[0], raw[1], raw[2]) }, ShouldNotPanic)
				So(errors.Is(err, model.ErrInvalidPersonaScore), ShouldBeTrue)
			}
		})

		Convey("When the raw sum overflows", func() {
			p, err := model.PersonaScoreFromRaw(math.MaxFloat64, math.MaxFloat64, 0)
			So(err, ShouldBeNil)
			So(p.Bettor().Equal(dec("0.5")), ShouldBeTrue)
			So(p.Fantasy().Equal(dec("0.5")), ShouldBeTrue)
			So(p.StatsNerd().IsZero(), ShouldBeTrue)
		})
	})
}

func TestPersonaScoreFromRawInvariants(t *testing.T) {
	Convey("Given random raw scores from a fixed seed", t, func() {
		r := rand.New(rand.NewPCG(3, 5))
		pick := func() float64 {
			switch r.IntN(4) {
			case 0:
				return 0
			case 1:
				return r.Float64() * 1e-300
			}
			return r.Float64()
		}

		for i := 0; i < 500; i++ {
			p, err := model.PersonaScoreFromRaw(pick(), pick(), pick())
			So(err, ShouldBeNil)
			sum := p.Bettor().Add(p.Fantasy()).Add(p.StatsNerd())
			So(sum.Sub(dec("1")).Abs().GreaterThan(dec("0.001")), ShouldBeFalse)
			for _, share := range []decimal.Decimal{p.Bettor(), p.Fantasy(), p.StatsNerd()} {
				So(share.IsNegative(), ShouldBeFalse)
				So(share.GreaterThan(dec("1")), ShouldBeFalse)
			}
		}
	})
}

func TestPersonaScoreJSON(t *testing.T) {
	Convey("Given a serialized persona score", t, func() {
		p, err := model.NewPersonaScore(dec("0.45"), dec("0.40"), dec("0.15"))
		So(err, ShouldBeNil)
		data, err := json.Marshal(p)
		So(err, ShouldBeNil)

		Convey("Then derived fields are included", func() {
			var raw map[string]interface{}
			So(json.Unmarshal(data, &raw), ShouldBeNil)
			So(raw["primary_persona"], ShouldEqual, "BETTOR")
			So(raw["is_hybrid"], ShouldEqual, true)
			So(raw["confidence"], ShouldEqual, "0.3")
		})

		Convey("Then decoding recovers identical scores", func() {
			var back model.PersonaScore
			So(json.Unmarshal(data, &back), ShouldBeNil)
			So(back.Bettor().Equal(p.Bettor()), ShouldBeTrue)
			So(back.Fantasy().Equal(p.Fantasy()), ShouldBeTrue)
			So(back.StatsNerd().Equal(p.StatsNerd()), ShouldBeTrue)
		})

		Convey("Then decoding rejects scores that do not sum to one", func() {
			var back model.PersonaScore
			err := json.Unmarshal([]byte(`{"bettor":"0.9","fantasy":"0.9","stats_nerd":"0"}`), &back)
			So(errors.Is(err, model.ErrInvalidPersonaScore), ShouldBeTrue)
		})
	})
}
