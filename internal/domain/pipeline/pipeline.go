// Package pipeline runs classification, scoring, persona detection and
// weight mapping over one batch of entries.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/okian/dfspersona/internal/domain/classifier"
	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/persona"
	"github.com/okian/dfspersona/internal/domain/scoring"
	"github.com/okian/dfspersona/internal/domain/weights"
)

// ErrNoEntries is returned when a batch has nothing to analyze.
var ErrNoEntries = errors.New("no entries to analyze")

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithScorer sets the metrics scorer.
func WithScorer(s *scoring.Scorer) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.scorer = s
		}
	}
}

// WithDetector sets the persona detector.
func WithDetector(d *persona.Detector) Option {
	return func(p *Pipeline) {
		if d != nil {
			p.detector = d
		}
	}
}

// WithMapper sets the weight mapper.
func WithMapper(m *weights.Mapper) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.mapper = m
		}
	}
}

// Result carries every stage output of one run.
type Result struct {
	Entries      []model.Entry
	Metrics      model.BehavioralMetrics
	Personas     model.PersonaScore
	Weights      model.PatternWeights
	Explanations []weights.Explanation
}

// Pipeline is stateless between runs and safe for concurrent use.
type Pipeline struct {
	scorer   *scoring.Scorer
	detector *persona.Detector
	mapper   *weights.Mapper
}

// New creates a pipeline with default stages unless overridden.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		scorer:   scoring.NewScorer(),
		detector: persona.NewDetector(),
		mapper:   weights.NewMapper(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run analyzes entries. The input slice is not modified.
func (p *Pipeline) Run(entries []model.Entry) (Result, error) {
	if len(entries) == 0 {
		return Result{}, ErrNoEntries
	}
	classified := classifier.ClassifyEntries(entries)

	metrics, err := p.scorer.Score(classified)
	if err != nil {
		return Result{}, fmt.Errorf("score metrics: %w", err)
	}
	personas, err := p.detector.Detect(metrics)
	if err != nil {
		return Result{}, fmt.Errorf("detect personas: %w", err)
	}
	w, err := p.mapper.Map(personas)
	if err != nil {
		return Result{}, fmt.Errorf("map weights: %w", err)
	}
	return Result{
		Entries:      classified,
		Metrics:      metrics,
		Personas:     personas,
		Weights:      w,
		Explanations: p.mapper.Explain(personas, w),
	}, nil
}
