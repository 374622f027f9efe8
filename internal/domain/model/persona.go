package model

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Persona names one of the three behavior archetypes.
type Persona string

// Persona archetypes in tie-break priority order.
const (
	PersonaBettor    Persona = "BETTOR"
	PersonaFantasy   Persona = "FANTASY"
	PersonaStatsNerd Persona = "STATS_NERD"
)

// Personas returns the archetypes in tie-break priority order.
func Personas() []Persona {
	return []Persona{PersonaBettor, PersonaFantasy, PersonaStatsNerd}
}

// DisplayName returns the label used in user facing text.
func (p Persona) DisplayName() string {
	switch p {
	case PersonaBettor:
		return "Bettor"
	case PersonaFantasy:
		return "Fantasy"
	case PersonaStatsNerd:
		return "Stats Nerd"
	}
	return string(p)
}

// ParsePersona accepts the tag or display name in any case.
func ParsePersona(s string) (Persona, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	switch Persona(norm) {
	case PersonaBettor, PersonaFantasy, PersonaStatsNerd:
		return Persona(norm), nil
	case "STATSNERD":
		return PersonaStatsNerd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPersona, s)
}

// HybridThreshold is the score a persona must exceed to count towards a hybrid profile.
var HybridThreshold = decimal.RequireFromString("0.3")

var (
	sumTolerance = decimal.RequireFromString("0.001")
	one          = decimal.NewFromInt(1)
)

// PersonaScore holds the normalized confidence for each archetype.
type PersonaScore struct {
	bettor    decimal.Decimal
	fantasy   decimal.Decimal
	statsNerd decimal.Decimal
}

// PersonaRank pairs a persona with its score.
type PersonaRank struct {
	Persona Persona
	Score   decimal.Decimal
}

// NewPersonaScore validates that each score is in [0,1] and that they sum to one.
func NewPersonaScore(bettor, fantasy, statsNerd decimal.Decimal) (PersonaScore, error) {
	for _, s := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"bettor", bettor},
		{"fantasy", fantasy},
		{"stats_nerd", statsNerd},
	} {
		if s.value.IsNegative() || s.value.GreaterThan(one) {
			return PersonaScore{}, fmt.Errorf("%w: %s score must be between 0 and 1, got: %s", ErrInvalidPersonaScore, s.name, s.value)
		}
	}
	total := bettor.Add(fantasy).Add(statsNerd)
	if total.Sub(one).Abs().GreaterThan(sumTolerance) {
		return PersonaScore{}, fmt.Errorf("%w: scores must sum to 1.0, got: %s", ErrInvalidPersonaScore, total)
	}
	return PersonaScore{bettor: bettor, fantasy: fantasy, statsNerd: statsNerd}, nil
}

// PersonaScoreFromRaw normalizes finite, non-negative raw scores into a
// distribution. Bettor and fantasy are rounded half-up to three places and stats nerd takes
// the remainder. All-zero input yields 0.33/0.33/0.34.
func PersonaScoreFromRaw(bettor, fantasy, statsNerd float64) (PersonaScore, error) {
	for _, v := range []float64{bettor, fantasy, statsNerd} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return PersonaScore{}, fmt.Errorf("%w: raw scores must be finite: %v/%v/%v", ErrInvalidPersonaScore, bettor, fantasy, statsNerd)
		}
	}
	if bettor < 0 || fantasy < 0 || statsNerd < 0 {
		return PersonaScore{}, fmt.Errorf("%w: raw scores cannot be negative: %v/%v/%v", ErrInvalidPersonaScore, bettor, fantasy, statsNerd)
	}
	total := bettor + fantasy + statsNerd
	if math.IsInf(total, 0) {
		top := math.Max(bettor, math.Max(fantasy, statsNerd))
		bettor, fantasy, statsNerd = bettor/top, fantasy/top, statsNerd/top
		total = bettor + fantasy + statsNerd
	}
	if total == 0 {
		return NewPersonaScore(
			decimal.RequireFromString("0.33"),
			decimal.RequireFromString("0.33"),
			decimal.RequireFromString("0.34"),
		)
	}
	b := decimal.NewFromFloat(bettor / total).Round(3)
	f := decimal.NewFromFloat(fantasy / total).Round(3)
	if b.Add(f).GreaterThan(one) {
		f = one.Sub(b)
	}
	return NewPersonaScore(b, f, one.Sub(b).Sub(f))
}

// Bettor returns the bettor share.
func (p PersonaScore) Bettor() decimal.Decimal { return p.bettor }

// Fantasy returns the fantasy share.
func (p PersonaScore) Fantasy() decimal.Decimal { return p.fantasy }

// StatsNerd returns the stats nerd share.
func (p PersonaScore) StatsNerd() decimal.Decimal { return p.statsNerd }

// Score returns the share for persona.
func (p PersonaScore) Score(persona Persona) (decimal.Decimal, error) {
	switch persona {
	case PersonaBettor:
		return p.bettor, nil
	case PersonaFantasy:
		return p.fantasy, nil
	case PersonaStatsNerd:
		return p.statsNerd, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %q", ErrUnknownPersona, persona)
}

// Ranked returns the personas ordered by descending score. Ties keep the
// bettor, fantasy, stats nerd order.
func (p PersonaScore) Ranked() []PersonaRank {
	ranked := []PersonaRank{
		{PersonaBettor, p.bettor},
		{PersonaFantasy, p.fantasy},
		{PersonaStatsNerd, p.statsNerd},
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.GreaterThan(ranked[j].Score)
	})
	return ranked
}

// Primary returns the highest scoring persona.
func (p PersonaScore) Primary() Persona {
	return p.Ranked()[0].Persona
}

// Secondary returns the second highest scoring persona.
func (p PersonaScore) Secondary() Persona {
	return p.Ranked()[1].Persona
}

// IsHybrid reports whether at least two scores exceed HybridThreshold.
func (p PersonaScore) IsHybrid() bool {
	n := 0
	for _, s := range []decimal.Decimal{p.bettor, p.fantasy, p.statsNerd} {
		if s.GreaterThan(HybridThreshold) {
			n++
		}
	}
	return n >= 2
}

// Confidence is the spread between the highest and lowest score.
func (p PersonaScore) Confidence() decimal.Decimal {
	ranked := p.Ranked()
	return ranked[0].Score.Sub(ranked[len(ranked)-1].Score)
}

func (p PersonaScore) String() string {
	return fmt.Sprintf("PersonaScore(bettor=%s, fantasy=%s, stats_nerd=%s, primary=%s, hybrid=%t)",
		p.bettor, p.fantasy, p.statsNerd, p.Primary(), p.IsHybrid())
}

type personaJSON struct {
	Bettor     decimal.Decimal `json:"bettor"`
	Fantasy    decimal.Decimal `json:"fantasy"`
	StatsNerd  decimal.Decimal `json:"stats_nerd"`
	Primary    Persona         `json:"primary_persona,omitempty"`
	IsHybrid   bool            `json:"is_hybrid"`
	Confidence decimal.Decimal `json:"confidence"`
}

// MarshalJSON renders the scores with their derived fields.
func (p PersonaScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(personaJSON{
		Bettor:     p.bettor,
		Fantasy:    p.fantasy,
		StatsNerd:  p.statsNerd,
		Primary:    p.Primary(),
		IsHybrid:   p.IsHybrid(),
		Confidence: p.Confidence(),
	})
}

// UnmarshalJSON decodes and validates the three scores.
func (p *PersonaScore) UnmarshalJSON(data []byte) error {
	var raw personaJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := NewPersonaScore(raw.Bettor, raw.Fantasy, raw.StatsNerd)
	if err != nil {
		return err
	}
	*p = out
	return nil
}
