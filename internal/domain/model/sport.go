package model

import "strings"

var sportAliases = map[string]string{
	"FOOTBALL":           "NFL",
	"BASKETBALL":         "NBA",
	"BASEBALL":           "MLB",
	"HOCKEY":             "NHL",
	"GOLF":               "PGA",
	"UFC":                "MMA",
	"NCAAB":              "CBB",
	"NCAAF":              "CFB",
	"COLLEGE BASKETBALL": "CBB",
	"COLLEGE FOOTBALL":   "CFB",
}

// CanonicalSport upper-cases a sport label and resolves known aliases.
func CanonicalSport(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if alias, ok := sportAliases[s]; ok {
		return alias
	}
	return s
}
