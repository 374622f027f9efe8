package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UserProfile is the persisted outcome of analyzing one upload.
type UserProfile struct {
	ID             uuid.UUID         `json:"user_id"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	TotalEntries   int               `json:"total_entries_parsed"`
	DateRangeStart time.Time         `json:"date_range_start"`
	DateRangeEnd   time.Time         `json:"date_range_end"`
	Platforms      []Platform        `json:"platforms"`
	Metrics        BehavioralMetrics `json:"behavioral_metrics"`
	Personas       PersonaScore      `json:"persona_scores"`
	Weights        PatternWeights    `json:"pattern_weights"`
	LastUpload     time.Time         `json:"last_csv_upload"`
	Confidence     decimal.Decimal   `json:"confidence_score"`
}

// Clone returns a copy that shares no maps or slices with p.
func (p UserProfile) Clone() UserProfile {
	out := p
	out.Platforms = append([]Platform(nil), p.Platforms...)
	out.Metrics.EntriesBySport = make(map[string]int, len(p.Metrics.EntriesBySport))
	for k, v := range p.Metrics.EntriesBySport {
		out.Metrics.EntriesBySport[k] = v
	}
	out.Metrics.EntriesByContestType = make(map[ContestType]int, len(p.Metrics.EntriesByContestType))
	for k, v := range p.Metrics.EntriesByContestType {
		out.Metrics.EntriesByContestType[k] = v
	}
	return out
}
