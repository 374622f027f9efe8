// Package classifier tags contest names with a contest type using an
// ordered, first-match list of case-insensitive patterns.
package classifier

import (
	"regexp"
	"strings"

	"github.com/okian/dfspersona/internal/domain/model"
)

type rule struct {
	contestType model.ContestType
	patterns    []*regexp.Regexp
}

// Priority runs from most specific to most general.
var rules = []rule{
	{model.ContestH2H, compile(
		`\bH2H\b`,
		`\bhead[\s-]*to[\s-]*head\b`,
		`\bheads?\s*up\b`,
		`\b1v1\b`,
		`\bone\s*on\s*one\b`,
	)},
	{model.ContestCash, compile(
		`\b50/50\b`,
		`\bfifty[\s-]*fifty\b`,
		`\bdouble[\s-]*up\b`,
		`\bcash\s*game\b`,
		`\bsingle[\s-]*entry\b.*\bcash\b`,
	)},
	{model.ContestMulti, compile(
		`\b(\d+)[\s-]*max\b`,
		`\bmulti[\s-]*entry\b`,
		`\b\d+[\s-]*entry\b`,
		`\bunlimited\b.*\bentry\b`,
	)},
	{model.ContestGPP, compile(
		`\bGPP\b`,
		`\btournament\b`,
		`\$[\d,]+K\b`,
		`\bguaranteed\b`,
		`\bGTD\b`,
		`\bmillion\b`,
		`\bfreeroll\b`,
		`\bshowdown\b`,
		`\bclassic\b`,
		`\bshot\b`,
		`\bslate\b`,
	)},
}

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

func match(name string) (model.ContestType, *regexp.Regexp) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.ContestUnknown, nil
	}
	for _, r := range rules {
		for _, re := range r.patterns {
			if re.MatchString(name) {
				return r.contestType, re
			}
		}
	}
	return model.ContestUnknown, nil
}

// Classify returns the contest type for a contest name, UNKNOWN when nothing matches.
func Classify(name string) model.ContestType {
	ct, _ := match(name)
	return ct
}

// Match returns the source of the pattern that decided the classification.
func Match(name string) (string, bool) {
	_, re := match(name)
	if re == nil {
		return "", false
	}
	return strings.TrimPrefix(re.String(), `(?i)`), true
}

// ClassifyEntry returns a copy of e tagged from its contest name.
func ClassifyEntry(e model.Entry) model.Entry {
	return e.WithContestType(Classify(e.ContestName))
}

// ClassifyEntries tags every entry and returns a new slice.
func ClassifyEntries(entries []model.Entry) []model.Entry {
	out := make([]model.Entry, len(entries))
	for i, e := range entries {
		out[i] = ClassifyEntry(e)
	}
	return out
}
