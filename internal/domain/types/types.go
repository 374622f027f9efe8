// Package types contains the response shapes shared by the service, the HTTP
// API and the CLI.
package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/pipeline"
)

// TimeLayout renders naive timestamps the way exports carry them.
const TimeLayout = "2006-01-02T15:04:05"

// Health is the liveness payload.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// DateRange spans the analyzed entries.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeightExplanation is one line of the pattern weight report.
type WeightExplanation struct {
	Pattern     string `json:"pattern"`
	Weight      string `json:"weight"`
	Explanation string `json:"explanation"`
}

// Analysis is the outcome of parsing and scoring one upload.
type Analysis struct {
	ProfileID          *uuid.UUID              `json:"profile_id,omitempty"`
	Filename           string                  `json:"filename,omitempty"`
	Platform           model.Platform          `json:"platform"`
	EntriesCount       int                     `json:"entries_count"`
	DateRange          DateRange               `json:"date_range"`
	Metrics            model.BehavioralMetrics `json:"metrics"`
	PersonaScores      model.PersonaScore      `json:"persona_scores"`
	PatternWeights     model.PatternWeights    `json:"pattern_weights"`
	WeightExplanations []WeightExplanation     `json:"weight_explanations"`
	// Warnings is null when every row parsed.
	Warnings []string `json:"warnings"`
}

// NewAnalysis assembles the response for a pipeline run.
func NewAnalysis(platform model.Platform, res pipeline.Result, warnings []string) Analysis { //nolint:gocritic // read once
	a := Analysis{
		Platform:       platform,
		EntriesCount:   len(res.Entries),
		Metrics:        res.Metrics,
		PersonaScores:  res.Personas,
		PatternWeights: res.Weights,
	}
	if len(warnings) > 0 {
		a.Warnings = warnings
	}
	if len(res.Entries) > 0 {
		start, end := res.Entries[0].Date, res.Entries[0].Date
		for _, e := range res.Entries[1:] {
			if e.Date.Before(start) {
				start = e.Date
			}
			if e.Date.After(end) {
				end = e.Date
			}
		}
		a.DateRange = DateRange{Start: start.Format(TimeLayout), End: end.Format(TimeLayout)}
	}
	a.WeightExplanations = make([]WeightExplanation, 0, len(res.Explanations))
	for _, ex := range res.Explanations {
		a.WeightExplanations = append(a.WeightExplanations, WeightExplanation{
			Pattern:     ex.Pattern.String(),
			Weight:      ex.Weight.StringFixed(3),
			Explanation: ex.Text,
		})
	}
	return a
}

// JobState is the lifecycle of an async upload.
type JobState string

const (
	JobQueued     JobState = "queued"
	JobProcessing JobState = "processing"
	JobDone       JobState = "done"
	JobFailed     JobState = "failed"
)

// Job reports an async upload.
type Job struct {
	ID          string     `json:"job_id"`
	Filename    string     `json:"filename"`
	State       JobState   `json:"status"`
	SubmittedAt time.Time  `json:"submitted_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	ProfileID   *uuid.UUID `json:"profile_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
}

// Stats is the service snapshot served at /stats.
type Stats struct {
	Started     bool             `json:"started"`
	StoreDriver string           `json:"store_driver"`
	Workers     int              `json:"worker_count"`
	QueueSize   int              `json:"queue_size"`
	QueueLength int              `json:"queue_length"`
	DedupeSize  int              `json:"dedupe_size"`
	Digests     int              `json:"dedupe_entries"`
	Profiles    int64            `json:"profiles"`
	Jobs        map[JobState]int `json:"jobs"`
}
