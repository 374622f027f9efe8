package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	half       = decimal.RequireFromString("0.5")
	twoHundred = decimal.NewFromInt(200)
)

// BehavioralMetrics aggregates a batch of entries into volume, financial,
// behavioral, temporal and confidence signals. Percentage fields are in [0,1].
type BehavioralMetrics struct {
	TotalEntries         int
	EntriesBySport       map[string]int
	EntriesByContestType map[ContestType]int

	TotalFees     decimal.Decimal
	TotalWinnings decimal.Decimal
	AvgEntryFee   decimal.Decimal
	ROI           decimal.Decimal

	GPPPercentage  decimal.Decimal
	CashPercentage decimal.Decimal
	H2HPercentage  decimal.Decimal
	MultiEntryRate decimal.Decimal
	SportDiversity decimal.Decimal
	StakeVariance  decimal.Decimal

	EntriesPerWeek decimal.Decimal
	MostActiveDay  string
	RecencyScore   decimal.Decimal

	ConfidenceScore decimal.Decimal
}

// EmptyMetrics returns the sentinel for a batch with no entries.
func EmptyMetrics() BehavioralMetrics {
	return BehavioralMetrics{
		EntriesBySport:       map[string]int{},
		EntriesByContestType: map[ContestType]int{},
	}
}

// NewBehavioralMetrics validates m and returns it with non-nil count maps.
func NewBehavioralMetrics(m BehavioralMetrics) (BehavioralMetrics, error) {
	if m.EntriesBySport == nil {
		m.EntriesBySport = map[string]int{}
	}
	if m.EntriesByContestType == nil {
		m.EntriesByContestType = map[ContestType]int{}
	}
	if err := m.Validate(); err != nil {
		return BehavioralMetrics{}, err
	}
	return m, nil
}

// Validate checks count, money and percentage ranges.
func (m BehavioralMetrics) Validate() error {
	if m.TotalEntries < 0 {
		return fmt.Errorf("%w: total_entries cannot be negative: %d", ErrInvalidMetrics, m.TotalEntries)
	}
	for ct := range m.EntriesByContestType {
		if !ct.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidMetrics, ErrUnknownContestType, ct)
		}
	}
	nonNegative := []struct {
		name  string
		value decimal.Decimal
	}{
		{"total_invested", m.TotalFees},
		{"total_winnings", m.TotalWinnings},
		{"avg_entry_fee", m.AvgEntryFee},
		{"multi_entry_rate", m.MultiEntryRate},
		{"stake_variance", m.StakeVariance},
		{"entries_per_week", m.EntriesPerWeek},
	}
	for _, f := range nonNegative {
		if f.value.IsNegative() {
			return fmt.Errorf("%w: %s cannot be negative, got: %s", ErrInvalidMetrics, f.name, f.value)
		}
	}
	percentages := []struct {
		name  string
		value decimal.Decimal
	}{
		{"gpp_percentage", m.GPPPercentage},
		{"cash_percentage", m.CashPercentage},
		{"h2h_percentage", m.H2HPercentage},
		{"sport_diversity", m.SportDiversity},
		{"recency_score", m.RecencyScore},
		{"confidence_score", m.ConfidenceScore},
	}
	for _, f := range percentages {
		if f.value.IsNegative() || f.value.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: %s must be between 0 and 1, got: %s", ErrInvalidMetrics, f.name, f.value)
		}
	}
	return nil
}

// NetProfit is total winnings minus total fees.
func (m BehavioralMetrics) NetProfit() decimal.Decimal {
	return m.TotalWinnings.Sub(m.TotalFees)
}

// IsProfitable reports a positive net profit.
func (m BehavioralMetrics) IsProfitable() bool {
	return m.TotalWinnings.GreaterThan(m.TotalFees)
}

// WinRate estimates the share of winning entries from the overall ROI.
func (m BehavioralMetrics) WinRate() decimal.Decimal {
	rate := half.Add(m.ROI.Div(twoHundred))
	if rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.NewFromInt(1)
	}
	if rate.IsNegative() {
		return decimal.Zero
	}
	return rate
}

// PrimarySport returns the most played sport, UNKNOWN when there is none.
// Equal counts resolve to the lexically smallest code.
func (m BehavioralMetrics) PrimarySport() string {
	return argmax(m.EntriesBySport)
}

// PrimaryContestType returns the most played contest type.
func (m BehavioralMetrics) PrimaryContestType() ContestType {
	counts := make(map[string]int, len(m.EntriesByContestType))
	for k, v := range m.EntriesByContestType {
		counts[string(k)] = v
	}
	return ContestType(argmax(counts))
}

func argmax(counts map[string]int) string {
	if len(counts) == 0 {
		return string(ContestUnknown)
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return best
}

type metricsJSON struct {
	TotalEntries         int                 `json:"total_entries"`
	EntriesBySport       map[string]int      `json:"entries_by_sport"`
	EntriesByContestType map[ContestType]int `json:"entries_by_contest_type"`
	TotalFees            decimal.Decimal     `json:"total_invested"`
	TotalWinnings        decimal.Decimal     `json:"total_winnings"`
	AvgEntryFee          decimal.Decimal     `json:"avg_entry_fee"`
	ROI                  decimal.Decimal     `json:"roi_overall"`
	NetProfit            decimal.Decimal     `json:"net_profit"`
	IsProfitable         bool                `json:"is_profitable"`
	GPPPercentage        decimal.Decimal     `json:"gpp_percentage"`
	CashPercentage       decimal.Decimal     `json:"cash_percentage"`
	H2HPercentage        decimal.Decimal     `json:"h2h_percentage"`
	MultiEntryRate       decimal.Decimal     `json:"multi_entry_rate"`
	SportDiversity       decimal.Decimal     `json:"sport_diversity"`
	StakeVariance        decimal.Decimal     `json:"stake_variance"`
	EntriesPerWeek       decimal.Decimal     `json:"entries_per_week"`
	MostActiveDay        string              `json:"most_active_day"`
	RecencyScore         decimal.Decimal     `json:"recency_score"`
	ConfidenceScore      decimal.Decimal     `json:"confidence_score"`
	PrimarySport         string              `json:"primary_sport"`
	PrimaryContestType   ContestType         `json:"primary_contest_type"`
}

// MarshalJSON renders the metrics with decimals as exact strings.
func (m BehavioralMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricsJSON{
		TotalEntries:         m.TotalEntries,
		EntriesBySport:       nonNilSports(m.EntriesBySport),
		EntriesByContestType: nonNilTypes(m.EntriesByContestType),
		TotalFees:            m.TotalFees,
		TotalWinnings:        m.TotalWinnings,
		AvgEntryFee:          m.AvgEntryFee,
		ROI:                  m.ROI,
		NetProfit:            m.NetProfit(),
		IsProfitable:         m.IsProfitable(),
		GPPPercentage:        m.GPPPercentage,
		CashPercentage:       m.CashPercentage,
		H2HPercentage:        m.H2HPercentage,
		MultiEntryRate:       m.MultiEntryRate,
		SportDiversity:       m.SportDiversity,
		StakeVariance:        m.StakeVariance,
		EntriesPerWeek:       m.EntriesPerWeek,
		MostActiveDay:        m.MostActiveDay,
		RecencyScore:         m.RecencyScore,
		ConfidenceScore:      m.ConfidenceScore,
		PrimarySport:         m.PrimarySport(),
		PrimaryContestType:   m.PrimaryContestType(),
	})
}

// UnmarshalJSON decodes and validates metrics. Derived fields are ignored.
func (m *BehavioralMetrics) UnmarshalJSON(data []byte) error {
	var raw metricsJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := NewBehavioralMetrics(BehavioralMetrics{
		TotalEntries:         raw.TotalEntries,
		EntriesBySport:       raw.EntriesBySport,
		EntriesByContestType: raw.EntriesByContestType,
		TotalFees:            raw.TotalFees,
		TotalWinnings:        raw.TotalWinnings,
		AvgEntryFee:          raw.AvgEntryFee,
		ROI:                  raw.ROI,
		GPPPercentage:        raw.GPPPercentage,
		CashPercentage:       raw.CashPercentage,
		H2HPercentage:        raw.H2HPercentage,
		MultiEntryRate:       raw.MultiEntryRate,
		SportDiversity:       raw.SportDiversity,
		StakeVariance:        raw.StakeVariance,
		EntriesPerWeek:       raw.EntriesPerWeek,
		MostActiveDay:        raw.MostActiveDay,
		RecencyScore:         raw.RecencyScore,
		ConfidenceScore:      raw.ConfidenceScore,
	})
	if err != nil {
		return err
	}
	*m = out
	return nil
}

func nonNilSports(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}

func nonNilTypes(m map[ContestType]int) map[ContestType]int {
	if m == nil {
		return map[ContestType]int{}
	}
	return m
}
