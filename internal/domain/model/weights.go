package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Pattern is one of the fixed downstream insight categories.
type Pattern int

// Pattern categories in table order.
const (
	PatternLineMovement Pattern = iota
	PatternHistoricalTrends
	PatternInjuryImpact
	PatternWeatherFactors
	PatternPlayerCorrelations
	PatternSituationalStats
	PatternLiveOddsDelta
	PatternContrarianPlays

	patternCount
)

var patternNames = [patternCount]string{
	PatternLineMovement:       "line_movement",
	PatternHistoricalTrends:   "historical_trends",
	PatternInjuryImpact:       "injury_impact",
	PatternWeatherFactors:     "weather_factors",
	PatternPlayerCorrelations: "player_correlations",
	PatternSituationalStats:   "situational_stats",
	PatternLiveOddsDelta:      "live_odds_delta",
	PatternContrarianPlays:    "contrarian_plays",
}

// Patterns returns every pattern category in table order.
func Patterns() []Pattern {
	out := make([]Pattern, patternCount)
	for i := range out {
		out[i] = Pattern(i)
	}
	return out
}

func (p Pattern) String() string {
	if p < 0 || p >= patternCount {
		return fmt.Sprintf("pattern(%d)", int(p))
	}
	return patternNames[p]
}

// ParsePattern resolves a snake_case pattern name.
func ParsePattern(name string) (Pattern, error) {
	for i, n := range patternNames {
		if n == name {
			return Pattern(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
}

// PatternWeights is a multiplier per pattern category. The zero value is not
// meaningful; use DefaultPatternWeights or NewPatternWeights.
type PatternWeights struct {
	values [patternCount]decimal.Decimal
}

// PatternWeight pairs a pattern with its multiplier.
type PatternWeight struct {
	Pattern Pattern
	Weight  decimal.Decimal
}

// DefaultPatternWeights returns neutral weights of 1.0.
func DefaultPatternWeights() PatternWeights {
	var w PatternWeights
	for i := range w.values {
		w.values[i] = one
	}
	return w
}

// NewPatternWeights builds weights from explicit values. Categories missing
// from values stay neutral; negative weights are rejected.
func NewPatternWeights(values map[Pattern]decimal.Decimal) (PatternWeights, error) {
	w := DefaultPatternWeights()
	for p, v := range values {
		if p < 0 || p >= patternCount {
			return PatternWeights{}, fmt.Errorf("%w: %d", ErrUnknownPattern, int(p))
		}
		if v.IsNegative() {
			return PatternWeights{}, fmt.Errorf("%w: %s cannot be negative, got: %s", ErrInvalidWeights, p, v)
		}
		w.values[p] = v
	}
	return w, nil
}

// Weight returns the multiplier for p, neutral for an unknown category.
func (w PatternWeights) Weight(p Pattern) decimal.Decimal {
	if p < 0 || p >= patternCount {
		return one
	}
	return w.values[p]
}

// Apply multiplies base by the weight of p.
func (w PatternWeights) Apply(p Pattern, base decimal.Decimal) decimal.Decimal {
	return base.Mul(w.Weight(p))
}

// All returns the weights in table order.
func (w PatternWeights) All() []PatternWeight {
	out := make([]PatternWeight, patternCount)
	for i, v := range w.values {
		out[i] = PatternWeight{Pattern: Pattern(i), Weight: v}
	}
	return out
}

// Ranked returns the weights by descending value, ties in table order.
func (w PatternWeights) Ranked() []PatternWeight {
	out := w.All()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Weight.GreaterThan(out[j].Weight)
	})
	return out
}

// Top returns the boosted categories (weight > 1), strongest first.
func (w PatternWeights) Top() []Pattern {
	var out []Pattern
	for _, pw := range w.Ranked() {
		if pw.Weight.GreaterThan(one) {
			out = append(out, pw.Pattern)
		}
	}
	return out
}

// Deprioritized returns the damped categories (weight < 1), weakest first.
func (w PatternWeights) Deprioritized() []Pattern {
	all := w.All()
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Weight.LessThan(all[j].Weight)
	})
	var out []Pattern
	for _, pw := range all {
		if pw.Weight.LessThan(one) {
			out = append(out, pw.Pattern)
		}
	}
	return out
}

// Equal reports whether both vectors hold numerically equal weights.
func (w PatternWeights) Equal(o PatternWeights) bool {
	for i := range w.values {
		if !w.values[i].Equal(o.values[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON renders the weights as an object keyed by pattern name.
func (w PatternWeights) MarshalJSON() ([]byte, error) {
	m := make(map[string]decimal.Decimal, patternCount)
	for i, v := range w.values {
		m[patternNames[i]] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by pattern name.
func (w *PatternWeights) UnmarshalJSON(data []byte) error {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	values := make(map[Pattern]decimal.Decimal, len(raw))
	for name, v := range raw {
		p, err := ParsePattern(name)
		if err != nil {
			return err
		}
		values[p] = v
	}
	out, err := NewPatternWeights(values)
	if err != nil {
		return err
	}
	*w = out
	return nil
}
