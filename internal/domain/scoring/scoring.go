// Package scoring reduces a batch of entries to behavioral metrics.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Default scoring constants.
const (
	DefaultRecencyHalfLifeDays = 90.0

	fullConfidenceEntries = 50.0
	staleAfterDays        = 365.0
	contestTypeBreadth    = 4.0

	confidenceWeightVolume    = 0.5
	confidenceWeightRecency   = 0.3
	confidenceWeightDiversity = 0.2

	hoursPerDay = 24
	daysPerWeek = 7
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithReferenceTime pins "now" for recency and confidence calculations.
func WithReferenceTime(t time.Time) Option {
	return func(s *Scorer) {
		if !t.IsZero() {
			s.now = func() time.Time { return t }
		}
	}
}

// WithClock sets the function used to read the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRecencyHalfLife sets the decay constant, in days, of the recency score.
func WithRecencyHalfLife(days float64) Option {
	return func(s *Scorer) {
		if days > 0 {
			s.halfLifeDays = days
		}
	}
}

// Scorer computes BehavioralMetrics. It holds no mutable state and is safe
// for concurrent use.
type Scorer struct {
	now          func() time.Time
	halfLifeDays float64
}

// NewScorer creates a scorer reading wall-clock time unless a reference time is set.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		now:          time.Now,
		halfLifeDays: DefaultRecencyHalfLifeDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the metrics for entries. An empty batch yields the empty
// sentinel. Entries must already carry their contest type.
func (s *Scorer) Score(entries []model.Entry) (model.BehavioralMetrics, error) {
	if len(entries) == 0 {
		return model.EmptyMetrics(), nil
	}
	ref := s.now()
	n := len(entries)

	bySport := make(map[string]int)
	byType := make(map[model.ContestType]int)
	totalFees := decimal.Zero
	totalWinnings := decimal.Zero
	for _, e := range entries {
		bySport[e.Sport]++
		byType[e.ContestType]++
		totalFees = totalFees.Add(e.Fee)
		totalWinnings = totalWinnings.Add(e.Winnings)
	}

	diversity, err := SportDiversity(bySport, n)
	if err != nil {
		return model.BehavioralMetrics{}, err
	}
	variance, err := StakeVariance(entries)
	if err != nil {
		return model.BehavioralMetrics{}, err
	}
	perWeek, err := EntriesPerWeek(entries)
	if err != nil {
		return model.BehavioralMetrics{}, err
	}
	recency, err := s.recency(entries, ref)
	if err != nil {
		return model.BehavioralMetrics{}, err
	}
	conf, err := confidence(entries, byType, ref)
	if err != nil {
		return model.BehavioralMetrics{}, err
	}

	return model.NewBehavioralMetrics(model.BehavioralMetrics{
		TotalEntries:         n,
		EntriesBySport:       bySport,
		EntriesByContestType: byType,
		TotalFees:            totalFees,
		TotalWinnings:        totalWinnings,
		AvgEntryFee:          totalFees.Div(decimal.NewFromInt(int64(n))),
		ROI:                  ROI(totalFees, totalWinnings),
		GPPPercentage:        share(byType[model.ContestGPP], n),
		CashPercentage:       share(byType[model.ContestCash], n),
		H2HPercentage:        share(byType[model.ContestH2H], n),
		MultiEntryRate:       MultiEntryRate(entries),
		SportDiversity:       diversity,
		StakeVariance:        variance,
		EntriesPerWeek:       perWeek,
		MostActiveDay:        MostActiveDay(entries),
		RecencyScore:         recency,
		ConfidenceScore:      conf,
	})
}

// ROI returns (winnings - fees) / fees * 100, zero when nothing was staked.
func ROI(fees, winnings decimal.Decimal) decimal.Decimal {
	if fees.IsZero() {
		return decimal.Zero
	}
	return winnings.Sub(fees).Div(fees).Mul(decimal.NewFromInt(100))
}

func share(count, total int) decimal.Decimal {
	return decimal.NewFromFloat(float64(count) / float64(total))
}

// MultiEntryRate is the mean number of entries per contest name. Only empty
// names are ignored, so a blank-looking name still forms a group. With no
// names at all the rate is 1.
func MultiEntryRate(entries []model.Entry) decimal.Decimal {
	groups := make(map[string]int)
	for _, e := range entries {
		if e.ContestName == "" {
			continue
		}
		groups[e.ContestName]++
	}
	if len(groups) == 0 {
		return decimal.NewFromInt(1)
	}
	total := 0
	for _, c := range groups {
		total += c
	}
	return decimal.NewFromFloat(float64(total) / float64(len(groups)))
}

// SportDiversity is the Shannon entropy of the sport distribution divided by
// its maximum, rounded to four places. A single sport scores 0.
func SportDiversity(bySport map[string]int, total int) (decimal.Decimal, error) {
	if len(bySport) <= 1 || total == 0 {
		return decimal.Zero, nil
	}
	// Fixed key order keeps the float sum reproducible.
	sports := make([]string, 0, len(bySport))
	for s := range bySport {
		sports = append(sports, s)
	}
	sort.Strings(sports)

	entropy := 0.0
	for _, s := range sports {
		if c := bySport[s]; c > 0 {
			p := float64(c) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}
	return round(entropy/math.Log2(float64(len(bySport))), 4)
}

// StakeVariance is the coefficient of variation (population standard
// deviation over mean) of entry fees, rounded to four places. Fees too large
// for a float are scaled by the largest fee first; the ratio is unchanged.
func StakeVariance(entries []model.Entry) (decimal.Decimal, error) {
	if len(entries) < 2 {
		return decimal.Zero, nil
	}
	fees := make([]float64, len(entries))
	for i, e := range entries {
		fees[i] = e.Fee.InexactFloat64()
	}
	cv, ok := coefficientOfVariation(fees)
	if !ok {
		maxFee := entries[0].Fee
		for _, e := range entries[1:] {
			maxFee = decimal.Max(maxFee, e.Fee)
		}
		for i, e := range entries {
			fees[i] = e.Fee.Div(maxFee).InexactFloat64()
		}
		cv, _ = coefficientOfVariation(fees)
	}
	return round(cv, 4)
}

// coefficientOfVariation reports false when an intermediate overflowed.
func coefficientOfVariation(fees []float64) (float64, bool) {
	sum := 0.0
	for _, f := range fees {
		sum += f
	}
	mean := sum / float64(len(fees))
	if math.IsInf(mean, 0) || math.IsNaN(mean) {
		return 0, false
	}
	if mean == 0 {
		return 0, true
	}
	sq := 0.0
	for _, f := range fees {
		sq += (f - mean) * (f - mean)
	}
	cv := math.Sqrt(sq/float64(len(fees))) / mean
	return cv, !math.IsInf(cv, 0) && !math.IsNaN(cv)
}

// EntriesPerWeek divides the entry count by the observed span in weeks,
// never less than one week, rounded to two places.
func EntriesPerWeek(entries []model.Entry) (decimal.Decimal, error) {
	if len(entries) == 0 {
		return decimal.Zero, nil
	}
	first, last := entries[0].Date, entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.Before(first) {
			first = e.Date
		}
		if e.Date.After(last) {
			last = e.Date
		}
	}
	weeks := math.Max(wholeDays(last.Sub(first))/daysPerWeek, 1)
	return round(float64(len(entries))/weeks, 2)
}

// MostActiveDay returns the weekday with the most entries. Equal counts go
// to the weekday seen first.
func MostActiveDay(entries []model.Entry) string {
	if len(entries) == 0 {
		return ""
	}
	counts := make(map[time.Weekday]int, daysPerWeek)
	order := make([]time.Weekday, 0, daysPerWeek)
	for _, e := range entries {
		d := e.Date.Weekday()
		if _, ok := counts[d]; !ok {
			order = append(order, d)
		}
		counts[d]++
	}
	best := order[0]
	for _, d := range order[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best.String()
}

func (s *Scorer) recency(entries []model.Entry, ref time.Time) (decimal.Decimal, error) {
	total := 0.0
	for _, e := range entries {
		days := math.Max(0, wholeDays(ref.Sub(e.Date)))
		total += math.Exp(-days / s.halfLifeDays)
	}
	return round(math.Min(total/float64(len(entries)), 1), 4)
}

func confidence(entries []model.Entry, byType map[model.ContestType]int, ref time.Time) (decimal.Decimal, error) {
	volume := math.Min(float64(len(entries))/fullConfidenceEntries, 1)

	latest := entries[0].Date
	for _, e := range entries[1:] {
		if e.Date.After(latest) {
			latest = e.Date
		}
	}
	daysOld := math.Max(0, wholeDays(ref.Sub(latest)))
	recency := math.Max(0, 1-daysOld/staleAfterDays)

	known := 0
	for ct := range byType {
		if ct != model.ContestUnknown {
			known++
		}
	}
	breadth := math.Min(float64(known)/contestTypeBreadth, 1)

	return round(confidenceWeightVolume*volume+
		confidenceWeightRecency*recency+
		confidenceWeightDiversity*breadth, 4)
}

// wholeDays floors a duration to whole days, towards negative infinity.
func wholeDays(d time.Duration) float64 {
	return math.Floor(d.Hours() / hoursPerDay)
}

// round formats x to places digits. Ties on the exact binary value go to
// the even digit, so 1.125 becomes 1.12.
func round(x float64, places int) (decimal.Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero, fmt.Errorf("%w: metric is not finite: %v", model.ErrInvalidMetrics, x)
	}
	return decimal.NewFromString(strconv.FormatFloat(x, 'f', places, 64))
}
