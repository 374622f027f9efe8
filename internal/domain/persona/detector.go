// Package persona maps behavioral metrics onto the bettor, fantasy and
// stats nerd archetypes.
package persona

import (
	"math"

	"github.com/okian/dfspersona/internal/domain/model"
)

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithCalibration replaces the signal tables. Invalid tables are ignored.
func WithCalibration(c Calibration) Option {
	return func(d *Detector) {
		if c.Validate() == nil {
			d.calibration = c
		}
	}
}

// Detector scores metrics against each persona. It is safe for concurrent use.
type Detector struct {
	calibration Calibration
}

// RawScores are the unnormalized per-persona means, each in [0,1].
type RawScores struct {
	Bettor    float64
	Fantasy   float64
	StatsNerd float64
}

// NewDetector creates a detector using DefaultCalibration unless overridden.
func NewDetector(opts ...Option) *Detector {
	d := &Detector{calibration: DefaultCalibration()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Calibration returns the signal tables in use.
func (d *Detector) Calibration() Calibration {
	return d.calibration
}

// Detect returns the normalized persona distribution for m.
func (d *Detector) Detect(m model.BehavioralMetrics) (model.PersonaScore, error) {
	raw, err := d.RawScores(m)
	if err != nil {
		return model.PersonaScore{}, err
	}
	return model.PersonaScoreFromRaw(raw.Bettor, raw.Fantasy, raw.StatsNerd)
}

// RawScores computes the mean signal score for each persona.
func (d *Detector) RawScores(m model.BehavioralMetrics) (RawScores, error) {
	bettor, err := meanSignals(m, d.calibration.Bettor)
	if err != nil {
		return RawScores{}, err
	}
	fantasy, err := meanSignals(m, d.calibration.Fantasy, moderateROI(m.ROI.InexactFloat64(), d.calibration.FantasyROIBand))
	if err != nil {
		return RawScores{}, err
	}
	statsNerd, err := meanSignals(m, d.calibration.StatsNerd)
	if err != nil {
		return RawScores{}, err
	}
	return RawScores{Bettor: bettor, Fantasy: fantasy, StatsNerd: statsNerd}, nil
}

func meanSignals(m model.BehavioralMetrics, signals []Signal, extra ...float64) (float64, error) {
	scores := make([]float64, 0, len(signals)+len(extra))
	for _, s := range signals {
		v, err := s.Metric.Value(m)
		if err != nil {
			return 0, err
		}
		score := ScoreSignal(v, s.Range)
		if s.Inverted {
			score = 1 - score
		}
		scores = append(scores, score)
	}
	scores = append(scores, extra...)
	if len(scores) == 0 {
		return 0, nil
	}
	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// ScoreSignal interpolates value over r: 0 below Min, 1 above Max, linear
// in between. A degenerate range scores 1 for an in-range value.
func ScoreSignal(value float64, r Range) float64 {
	switch {
	case value < r.Min:
		return 0
	case value > r.Max:
		return 1
	case r.Max == r.Min:
		return 1
	}
	return (value - r.Min) / (r.Max - r.Min)
}

// moderateROI peaks at zero ROI and falls linearly to the band edge.
func moderateROI(roi float64, band Range) float64 {
	if roi < band.Min || roi > band.Max {
		return 0
	}
	maxDeviation := math.Max(math.Abs(band.Min), math.Abs(band.Max))
	return 1 - math.Abs(roi)/maxDeviation
}
