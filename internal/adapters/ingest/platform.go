package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/dfspersona/internal/domain/model"
)

// Column roles shared by every platform layout.
const (
	colEntryID = iota
	colContest
	colFee
	colWinnings
	colSport
	colDate
	colPoints
	colCount
)

// layout names the export columns of one platform, indexed by role.
type layout struct {
	platform model.Platform
	columns  [colCount]string
}

var layouts = []layout{ //nolint:gochecknoglobals // fixed export formats
	{
		platform: model.PlatformDraftKings,
		columns:  [colCount]string{"Entry ID", "Contest Name", "Entry Fee", "Winnings", "Sport", "Date Entered", "Points"},
	},
	{
		platform: model.PlatformFanDuel,
		columns:  [colCount]string{"Entry Id", "Contest", "Entry Fee", "Winnings", "Sport", "Entered", "Points"},
	},
}

// required lists the mandatory columns; Points is optional.
func (l layout) required() []string {
	return l.columns[:colPoints]
}

func (l layout) missing(present map[string]struct{}) []string {
	var out []string
	for _, c := range l.required() {
		if _, ok := present[c]; !ok {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}

func layoutFor(p model.Platform) (layout, bool) {
	for _, l := range layouts {
		if l.platform == p {
			return l, true
		}
	}
	return layout{}, false
}

// Columns returns the export header for p: entry id, contest, fee,
// winnings, sport, date, then the optional points column.
func Columns(p model.Platform) ([]string, error) {
	l, ok := layoutFor(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, p)
	}
	return append([]string(nil), l.columns[:]...), nil
}

func headerSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		set[strings.TrimSpace(h)] = struct{}{}
	}
	return set
}

// DetectPlatform identifies the export format from its header row.
// A platform matches when at most one of its required columns is absent;
// DraftKings is checked before FanDuel.
func DetectPlatform(headers []string) (model.Platform, error) {
	present := headerSet(headers)
	for _, l := range layouts {
		if len(l.missing(present)) <= 1 {
			return l.platform, nil
		}
	}

	found := make([]string, 0, len(present))
	for h := range present {
		found = append(found, h)
	}
	sort.Strings(found)
	if len(found) > 5 {
		found = found[:5]
	}
	return "", fmt.Errorf("%w: found %v, for %s missing %v, for %s missing %v",
		ErrUnknownPlatform, found,
		layouts[0].platform.DisplayName(), layouts[0].missing(present),
		layouts[1].platform.DisplayName(), layouts[1].missing(present))
}
