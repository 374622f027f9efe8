package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/internal/domain/types"
)

var (
	heading = color.New(color.Bold, color.FgCyan)
	label   = color.New(color.Faint)
	boosted = color.New(color.FgGreen)
	damped  = color.New(color.FgYellow)
)

func renderReport(w io.Writer, path string, a *types.Analysis) {
	m := a.Metrics
	p := a.PersonaScores

	_, _ = heading.Fprintf(w, "%s\n", path)
	row(w, "platform", a.Platform.DisplayName())
	row(w, "entries", fmt.Sprintf("%d", a.EntriesCount))
	row(w, "date range", a.DateRange.Start+" .. "+a.DateRange.End)
	for _, warn := range a.Warnings {
		row(w, "warning", damped.Sprint(warn))
	}

	_, _ = heading.Fprintln(w, "\nPersona")
	primary := color.New(color.Bold).Sprint(p.Primary().DisplayName())
	if p.IsHybrid() {
		primary += fmt.Sprintf(" (hybrid with %s)", p.Secondary().DisplayName())
	}
	row(w, "primary", primary)
	row(w, "confidence", percent(p.Confidence()))
	for _, r := range p.Ranked() {
		row(w, r.Persona.DisplayName(), fmt.Sprintf("%s %s", r.Score.StringFixed(3), bar(r.Score)))
	}

	_, _ = heading.Fprintln(w, "\nBehavior")
	row(w, "fees / winnings", fmt.Sprintf("%s / %s", formatMoney(m.TotalFees), formatMoney(m.TotalWinnings)))
	row(w, "avg entry fee", formatMoney(m.AvgEntryFee))
	row(w, "roi", m.ROI.StringFixed(2)+"%")
	row(w, "gpp / cash / h2h", fmt.Sprintf("%s / %s / %s",
		percent(m.GPPPercentage), percent(m.CashPercentage), percent(m.H2HPercentage)))
	row(w, "multi-entry rate", percent(m.MultiEntryRate))
	row(w, "sport diversity", m.SportDiversity.StringFixed(3))
	row(w, "stake variance", m.StakeVariance.StringFixed(3))
	row(w, "entries / week", m.EntriesPerWeek.StringFixed(2))
	row(w, "most active day", m.MostActiveDay)
	row(w, "recency", m.RecencyScore.StringFixed(3))

	_, _ = heading.Fprintln(w, "\nContent weights")
	row(w, "boost", joinPatterns(a.PatternWeights.Top(), boosted))
	row(w, "dampen", joinPatterns(a.PatternWeights.Deprioritized(), damped))
	for _, ex := range a.WeightExplanations {
		_, _ = fmt.Fprintf(w, "  %-22s %s  %s\n", ex.Pattern, ex.Weight, label.Sprint(ex.Explanation))
	}
}

func row(w io.Writer, name, value string) {
	_, _ = fmt.Fprintf(w, "  %s %s\n", label.Sprintf("%-18s", name), value)
}

func percent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// bar draws a twenty cell gauge for a score in [0, 1].
func bar(score decimal.Decimal) string {
	n := int(score.Mul(decimal.NewFromInt(20)).Round(0).IntPart())
	n = max(0, min(20, n))
	return strings.Repeat("#", n) + strings.Repeat(".", 20-n)
}

func joinPatterns(ps []model.Pattern, c *color.Color) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = c.Sprint(p.String())
	}
	return strings.Join(names, ", ")
}
