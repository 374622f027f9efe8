// Package weights blends per-persona modifier tables into personalized
// pattern weights.
package weights

import (
	"fmt"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/shopspring/decimal"
)

var (
	boostThreshold  = decimal.RequireFromString("1.1")
	dampenThreshold = decimal.RequireFromString("0.9")
)

// Modifiers holds one multiplier vector per persona.
type Modifiers struct {
	Bettor    model.PatternWeights
	Fantasy   model.PatternWeights
	StatsNerd model.PatternWeights
}

// DefaultModifiers returns the standard modifier tables.
func DefaultModifiers() Modifiers {
	return Modifiers{
		Bettor:    vector("1.5", "0.9", "1.3", "0.8", "0.7", "1.0", "1.4", "1.1"),
		Fantasy:   vector("0.8", "1.1", "1.5", "1.0", "1.6", "1.3", "0.6", "1.4"),
		StatsNerd: vector("0.7", "1.5", "0.9", "1.3", "1.2", "1.6", "0.5", "1.3"),
	}
}

// vector builds weights from values listed in pattern table order.
func vector(values ...string) model.PatternWeights {
	patterns := model.Patterns()
	if len(values) != len(patterns) {
		panic(fmt.Sprintf("weights: %d modifiers for %d patterns", len(values), len(patterns)))
	}
	m := make(map[model.Pattern]decimal.Decimal, len(patterns))
	for i, p := range patterns {
		m[p] = decimal.RequireFromString(values[i])
	}
	w, err := model.NewPatternWeights(m)
	if err != nil {
		panic(err)
	}
	return w
}

// Option applies a configuration option to the Mapper.
type Option func(*Mapper)

// WithModifiers replaces the modifier tables.
func WithModifiers(m Modifiers) Option {
	return func(mp *Mapper) {
		mp.modifiers = m
	}
}

// Mapper turns persona scores into pattern weights. It is safe for concurrent use.
type Mapper struct {
	modifiers Modifiers
}

// NewMapper creates a mapper using DefaultModifiers unless overridden.
func NewMapper(opts ...Option) *Mapper {
	m := &Mapper{modifiers: DefaultModifiers()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Modifiers returns the tables in use.
func (m *Mapper) Modifiers() Modifiers {
	return m.modifiers
}

// Map blends the modifier tables by persona share. The result is not normalized.
func (m *Mapper) Map(scores model.PersonaScore) (model.PatternWeights, error) {
	out := make(map[model.Pattern]decimal.Decimal)
	for _, p := range model.Patterns() {
		out[p] = scores.Bettor().Mul(m.modifiers.Bettor.Weight(p)).
			Add(scores.Fantasy().Mul(m.modifiers.Fantasy.Weight(p))).
			Add(scores.StatsNerd().Mul(m.modifiers.StatsNerd.Weight(p)))
	}
	return model.NewPatternWeights(out)
}

// Explanation describes one pattern weight for end users.
type Explanation struct {
	Pattern model.Pattern
	Weight  decimal.Decimal
	Text    string
}

// Explain labels each weight as boosted by the primary persona, deprioritized
// or neutral. Weights are shown with two decimals, rounding half to even.
func (m *Mapper) Explain(scores model.PersonaScore, w model.PatternWeights) []Explanation {
	primary := scores.Primary()
	out := make([]Explanation, 0, len(model.Patterns()))
	for _, pw := range w.All() {
		shown := pw.Weight.StringFixedBank(2)
		var text string
		switch {
		case pw.Weight.GreaterThan(boostThreshold):
			text = fmt.Sprintf("Boosted by %s persona (%sx)", primary.DisplayName(), shown)
		case pw.Weight.LessThan(dampenThreshold):
			text = fmt.Sprintf("Deprioritized for your profile (%sx)", shown)
		default:
			text = fmt.Sprintf("Neutral weight (%sx)", shown)
		}
		out = append(out, Explanation{Pattern: pw.Pattern, Weight: pw.Weight, Text: text})
	}
	return out
}
