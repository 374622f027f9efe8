package persona

import (
	"fmt"
	"math"

	"github.com/okian/dfspersona/internal/domain/model"
)

// Metric names a behavioral signal the detector reads.
type Metric int

// Signals read from BehavioralMetrics.
const (
	MetricGPPPercentage Metric = iota
	MetricCashPercentage
	MetricAvgEntryFee
	MetricSportDiversity
	MetricMultiEntryRate
	MetricEntriesPerWeek
	MetricStakeVariance
	MetricROI
)

func (m Metric) String() string {
	switch m {
	case MetricGPPPercentage:
		return "gpp_percentage"
	case MetricCashPercentage:
		return "cash_percentage"
	case MetricAvgEntryFee:
		return "avg_entry_fee"
	case MetricSportDiversity:
		return "sport_diversity"
	case MetricMultiEntryRate:
		return "multi_entry_rate"
	case MetricEntriesPerWeek:
		return "entries_per_week"
	case MetricStakeVariance:
		return "stake_variance"
	case MetricROI:
		return "roi_overall"
	}
	return fmt.Sprintf("metric(%d)", int(m))
}

// Value reads the signal from bm as a float.
func (m Metric) Value(bm model.BehavioralMetrics) (float64, error) {
	switch m {
	case MetricGPPPercentage:
		return bm.GPPPercentage.InexactFloat64(), nil
	case MetricCashPercentage:
		return bm.CashPercentage.InexactFloat64(), nil
	case MetricAvgEntryFee:
		return bm.AvgEntryFee.InexactFloat64(), nil
	case MetricSportDiversity:
		return bm.SportDiversity.InexactFloat64(), nil
	case MetricMultiEntryRate:
		return bm.MultiEntryRate.InexactFloat64(), nil
	case MetricEntriesPerWeek:
		return bm.EntriesPerWeek.InexactFloat64(), nil
	case MetricStakeVariance:
		return bm.StakeVariance.InexactFloat64(), nil
	case MetricROI:
		return bm.ROI.InexactFloat64(), nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, m)
}

// Range is an interpolation window for a signal.
type Range struct {
	Min float64
	Max float64
}

// Signal scores one metric over a range. Inverted signals score 1 - s.
type Signal struct {
	Metric   Metric
	Range    Range
	Inverted bool
}

// Calibration holds the signal tables for each persona.
type Calibration struct {
	Bettor    []Signal
	Fantasy   []Signal
	StatsNerd []Signal
	// FantasyROIBand scores ROI close to zero; outside the band it scores 0.
	FantasyROIBand Range
}

// DefaultCalibration returns the standard signal tables.
func DefaultCalibration() Calibration {
	return Calibration{
		Bettor: []Signal{
			{Metric: MetricGPPPercentage, Range: Range{0.7, 1.0}},
			{Metric: MetricAvgEntryFee, Range: Range{10, 999}},
			{Metric: MetricSportDiversity, Range: Range{0.0, 0.5}, Inverted: true},
			{Metric: MetricMultiEntryRate, Range: Range{1.0, 2.0}, Inverted: true},
		},
		Fantasy: []Signal{
			{Metric: MetricCashPercentage, Range: Range{0.4, 1.0}},
			{Metric: MetricMultiEntryRate, Range: Range{3.0, 20.0}},
			{Metric: MetricEntriesPerWeek, Range: Range{20, 100}},
		},
		StatsNerd: []Signal{
			{Metric: MetricSportDiversity, Range: Range{0.7, 1.0}},
			{Metric: MetricStakeVariance, Range: Range{0.5, 2.0}},
			{Metric: MetricAvgEntryFee, Range: Range{0, 5}, Inverted: true},
		},
		FantasyROIBand: Range{-20, 20},
	}
}

// Validate checks that every range is ordered and finite.
func (c Calibration) Validate() error {
	check := func(name string, r Range) error {
		if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
			return fmt.Errorf("%w: %s range is not finite", ErrInvalidCalibration, name)
		}
		if r.Min > r.Max {
			return fmt.Errorf("%w: %s range min %v exceeds max %v", ErrInvalidCalibration, name, r.Min, r.Max)
		}
		return nil
	}
	for _, table := range [][]Signal{c.Bettor, c.Fantasy, c.StatsNerd} {
		for _, s := range table {
			if err := check(s.Metric.String(), s.Range); err != nil {
				return err
			}
			if _, err := s.Metric.Value(model.EmptyMetrics()); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidCalibration, err)
			}
		}
	}
	if err := check("fantasy roi band", c.FantasyROIBand); err != nil {
		return err
	}
	if c.FantasyROIBand.Min == 0 && c.FantasyROIBand.Max == 0 {
		return fmt.Errorf("%w: fantasy roi band is empty", ErrInvalidCalibration)
	}
	return nil
}
