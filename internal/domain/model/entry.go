// Package model contains the domain records passed between the ingest,
// scoring, persona and weighting stages.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ContestType tags the structure of a contest.
type ContestType string

// Supported contest types.
const (
	ContestGPP     ContestType = "GPP"
	ContestCash    ContestType = "CASH"
	ContestH2H     ContestType = "H2H"
	ContestMulti   ContestType = "MULTI"
	ContestUnknown ContestType = "UNKNOWN"
)

// ContestTypes returns every contest type in declaration order.
func ContestTypes() []ContestType {
	return []ContestType{ContestGPP, ContestCash, ContestH2H, ContestMulti, ContestUnknown}
}

// Valid reports whether c is one of the enumerated contest types.
func (c ContestType) Valid() bool {
	switch c {
	case ContestGPP, ContestCash, ContestH2H, ContestMulti, ContestUnknown:
		return true
	}
	return false
}

// ParseContestType resolves a case-insensitive contest type tag.
func ParseContestType(s string) (ContestType, error) {
	c := ContestType(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownContestType, s)
	}
	return c, nil
}

// Platform identifies the DFS site an entry was exported from.
type Platform string

// Supported platforms.
const (
	PlatformDraftKings Platform = "DRAFTKINGS"
	PlatformFanDuel    Platform = "FANDUEL"
)

// Valid reports whether p is a supported platform.
func (p Platform) Valid() bool {
	return p == PlatformDraftKings || p == PlatformFanDuel
}

// DisplayName returns the human readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformDraftKings:
		return "DraftKings"
	case PlatformFanDuel:
		return "FanDuel"
	}
	return string(p)
}

// ParsePlatform resolves a case-insensitive platform tag.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
	}
	return p, nil
}

var hundred = decimal.NewFromInt(100)

// Entry is one contest entry normalized across platforms.
// Values are built with NewEntry and treated as immutable afterwards.
type Entry struct {
	ID          string
	Date        time.Time
	Sport       string
	ContestType ContestType
	Fee         decimal.Decimal
	Winnings    decimal.Decimal
	Points      decimal.Decimal
	Platform    Platform
	ContestName string
}

// NewEntry validates e and returns its canonical form: the sport code is
// resolved through the alias table and an empty contest type becomes UNKNOWN.
func NewEntry(e Entry) (Entry, error) {
	e.Sport = CanonicalSport(e.Sport)
	if e.ContestType == "" {
		e.ContestType = ContestUnknown
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Validate checks the entry invariants.
func (e Entry) Validate() error {
	if e.Fee.IsNegative() {
		return fmt.Errorf("%w: entry fee cannot be negative: %s", ErrInvalidEntry, e.Fee)
	}
	if e.Winnings.IsNegative() {
		return fmt.Errorf("%w: winnings cannot be negative: %s", ErrInvalidEntry, e.Winnings)
	}
	if !e.Platform.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrUnknownPlatform, e.Platform)
	}
	if !e.ContestType.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidEntry, ErrUnknownContestType, e.ContestType)
	}
	return nil
}

// WithContestType returns a copy of e tagged with c.
func (e Entry) WithContestType(c ContestType) Entry {
	e.ContestType = c
	return e
}

// ROI returns the return on investment as a percentage, zero for free entries.
func (e Entry) ROI() decimal.Decimal {
	if e.Fee.IsZero() {
		return decimal.Zero
	}
	return e.Winnings.Sub(e.Fee).Div(e.Fee).Mul(hundred)
}

// Profit returns winnings minus the entry fee.
func (e Entry) Profit() decimal.Decimal {
	return e.Winnings.Sub(e.Fee)
}

// IsWinning reports whether the entry paid out more than it cost.
func (e Entry) IsWinning() bool {
	return e.Winnings.GreaterThan(e.Fee)
}

type entryJSON struct {
	ID          string          `json:"entry_id"`
	Date        time.Time       `json:"date"`
	Sport       string          `json:"sport"`
	ContestType ContestType     `json:"contest_type"`
	Fee         decimal.Decimal `json:"entry_fee"`
	Winnings    decimal.Decimal `json:"winnings"`
	Points      decimal.Decimal `json:"points"`
	Platform    Platform        `json:"source"`
	ContestName string          `json:"contest_name,omitempty"`
	ROI         decimal.Decimal `json:"roi"`
	Profit      decimal.Decimal `json:"profit"`
	IsWinning   bool            `json:"is_winning_entry"`
}

// MarshalJSON renders the entry with its derived fields.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ID:          e.ID,
		Date:        e.Date,
		Sport:       e.Sport,
		ContestType: e.ContestType,
		Fee:         e.Fee,
		Winnings:    e.Winnings,
		Points:      e.Points,
		Platform:    e.Platform,
		ContestName: e.ContestName,
		ROI:         e.ROI(),
		Profit:      e.Profit(),
		IsWinning:   e.IsWinning(),
	})
}

// UnmarshalJSON decodes and validates an entry. Derived fields are ignored.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out, err := NewEntry(Entry{
		ID:          raw.ID,
		Date:        raw.Date,
		Sport:       raw.Sport,
		ContestType: raw.ContestType,
		Fee:         raw.Fee,
		Winnings:    raw.Winnings,
		Points:      raw.Points,
		Platform:    raw.Platform,
		ContestName: raw.ContestName,
	})
	if err != nil {
		return err
	}
	*e = out
	return nil
}
