package cli

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/okian/dfspersona/internal/adapters/ingest"
	"github.com/okian/dfspersona/internal/domain/model"
)

// GenerateConfig describes a synthetic contest history.
type GenerateConfig struct {
	Persona  model.Persona
	Platform model.Platform
	Entries  int
	Seed     uint64
	End      time.Time
}

// Output date layouts per platform; both are accepted by the ingest parser.
var dateLayouts = map[model.Platform]string{ //nolint:gochecknoglobals // read-only
	model.PlatformDraftKings: "2006-01-02 15:04:05",
	model.PlatformFanDuel:    "01/02/2006 3:04 PM",
}

// contestKind is one line of a persona's contest menu.
type contestKind struct {
	name     string // fmt pattern taking a sport and a contest number
	share    float64
	winP     float64
	minPay   float64
	maxPay   float64
	perEntry int // entries placed per contest instance
}

// behavior is the shape of a persona's history.
type behavior struct {
	sports      []string
	sportShares []float64
	contests    []contestKind
	fee         func(r *rand.Rand) float64
	entriesWeek float64
}

func personaBehavior(p model.Persona) (behavior, error) {
	switch p {
	case model.PersonaBettor:
		return behavior{
			sports:      []string{"NFL"},
			sportShares: []float64{1},
			contests: []contestKind{
				{name: "%s $250K Tournament #%d", share: 0.7, winP: 0.12, minPay: 2, maxPay: 20, perEntry: 1},
				{name: "%s $1M Sunday GTD #%d", share: 0.3, winP: 0.08, minPay: 3, maxPay: 40, perEntry: 1},
			},
			fee:         func(r *rand.Rand) float64 { return 25 + r.Float64()*125 },
			entriesWeek: 6,
		}, nil
	case model.PersonaFantasy:
		return behavior{
			sports:      []string{"NBA", "NFL"},
			sportShares: []float64{0.7, 0.3},
			contests: []contestKind{
				{name: "%s 50/50 #%d", share: 0.5, winP: 0.55, minPay: 1.8, maxPay: 1.8, perEntry: 5},
				{name: "%s Double Up #%d", share: 0.35, winP: 0.5, minPay: 2, maxPay: 2, perEntry: 5},
				{name: "%s H2H #%d", share: 0.15, winP: 0.5, minPay: 1.8, maxPay: 1.8, perEntry: 1},
			},
			fee:         func(r *rand.Rand) float64 { return 5 + r.Float64()*20 },
			entriesWeek: 50,
		}, nil
	case model.PersonaStatsNerd:
		return behavior{
			sports:      []string{"NFL", "NBA", "MLB", "NHL", "PGA", "MMA", "CBB", "SOCCER"},
			sportShares: []float64{1, 1, 1, 1, 1, 1, 1, 1},
			contests: []contestKind{
				{name: "%s Classic Tournament #%d", share: 0.5, winP: 0.2, minPay: 1.5, maxPay: 8, perEntry: 1},
				{name: "%s 50/50 #%d", share: 0.5, winP: 0.5, minPay: 1.8, maxPay: 1.8, perEntry: 1},
			},
			fee: func(r *rand.Rand) float64 {
				if r.Float64() < 0.7 {
					return 0.25 + r.Float64()*0.75
				}
				return 3 + r.Float64()*2
			},
			entriesWeek: 10,
		}, nil
	}
	return behavior{}, fmt.Errorf("%w: %q", model.ErrUnknownPersona, p)
}

// GenerateCSV writes a synthetic export that the pipeline scores toward
// cfg.Persona. The same config always produces the same bytes.
func GenerateCSV(w io.Writer, cfg GenerateConfig) error {
	if cfg.Entries <= 0 {
		return fmt.Errorf("entries must be positive, got %d", cfg.Entries)
	}
	b, err := personaBehavior(cfg.Persona)
	if err != nil {
		return err
	}
	header, err := ingest.Columns(cfg.Platform)
	if err != nil {
		return err
	}

	var seed [32]byte
	binary.LittleEndian.PutUint64(seed[:], cfg.Seed)
	src := rand.NewChaCha8(seed)
	r := rand.New(src)

	span := time.Duration(float64(cfg.Entries)/b.entriesWeek*7*24) * time.Hour
	layout := dateLayouts[cfg.Platform]

	out := csv.NewWriter(w)
	if err := out.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	contestNo := 1000
	for written := 0; written < cfg.Entries; {
		kind := b.contests[pick(r, contestShares(b.contests))]
		sport := b.sports[pick(r, b.sportShares)]
		contestNo++
		name := fmt.Sprintf(kind.name, sport, contestNo)
		fee := decimal.NewFromFloat(b.fee(r)).Round(2)
		placed := r.Int64N(int64(span/time.Minute) + 1)
		at := cfg.End.Add(-time.Duration(placed) * time.Minute)

		for i := 0; i < kind.perEntry && written < cfg.Entries; i++ {
			id, err := uuid.NewRandomFromReader(src)
			if err != nil {
				return fmt.Errorf("entry id: %w", err)
			}
			winnings := decimal.Zero
			if r.Float64() < kind.winP {
				mult := kind.minPay + r.Float64()*(kind.maxPay-kind.minPay)
				winnings = fee.Mul(decimal.NewFromFloat(mult)).Round(2)
			}
			record := []string{
				id.String(),
				name,
				formatMoney(fee),
				formatMoney(winnings),
				sport,
				at.Format(layout),
				fmt.Sprintf("%.2f", 40+r.Float64()*200),
			}
			if err := out.Write(record); err != nil {
				return fmt.Errorf("write row %d: %w", written, err)
			}
			written++
		}
	}
	out.Flush()
	return out.Error()
}

func contestShares(kinds []contestKind) []float64 {
	shares := make([]float64, len(kinds))
	for i, k := range kinds {
		shares[i] = k.share
	}
	return shares
}

// pick returns an index drawn with probability proportional to weights.
func pick(r *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	x := r.Float64() * total
	for i, w := range weights {
		if x < w {
			return i
		}
		x -= w
	}
	return len(weights) - 1
}

// formatMoney renders d as "$1,234.50".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return "$" + b.String() + "." + frac
}
