// Package ingest turns DraftKings and FanDuel contest history exports into
// normalized entries.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/okian/dfspersona/internal/domain/model"
	"github.com/okian/dfspersona/pkg/logger"
	"github.com/okian/dfspersona/pkg/metrics"
)

// DefaultMaxBytes is the default upload cap (10 MB).
const DefaultMaxBytes int64 = 10 << 20

const unknownSport = "UNKNOWN"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF} //nolint:gochecknoglobals // constant bytes

// Result is the outcome of parsing one export.
type Result struct {
	Platform model.Platform
	Entries  []model.Entry
	// Warnings holds one line per skipped row.
	Warnings []string
	// Rows counts data rows read, skipped ones included.
	Rows int
}

// DateRange returns the earliest and latest entry dates.
// ok is false when there are no entries.
func (r Result) DateRange() (start, end time.Time, ok bool) {
	for i, e := range r.Entries {
		if i == 0 || e.Date.Before(start) {
			start = e.Date
		}
		if i == 0 || e.Date.After(end) {
			end = e.Date
		}
	}
	return start, end, len(r.Entries) > 0
}

// Parser reads contest history CSV exports. It is safe for concurrent use.
type Parser struct {
	maxBytes int64
	layouts  []string
	log      logger.Logger
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		maxBytes: DefaultMaxBytes,
		layouts:  DateLayouts,
		log:      logger.Get().Named("ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads a whole export from r. Malformed rows are skipped and reported
// in Result.Warnings; header problems fail the whole file.
func (p *Parser) Parse(ctx context.Context, r io.Reader) (Result, error) {
	start := time.Now()
	defer func() { metrics.RecordParseDuration(time.Since(start)) }()

	body, err := p.readBody(r)
	if err != nil {
		return Result{}, err
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, ErrEmptyFile
	}
	if err != nil {
		return Result{}, fmt.Errorf("read header: %w", err)
	}

	platform, err := DetectPlatform(header)
	if err != nil {
		return Result{}, err
	}
	l, _ := layoutFor(platform)
	present := headerSet(header)
	if missing := l.missing(present); len(missing) > 0 {
		return Result{}, fmt.Errorf("%w for %s: %v", ErrMissingColumns, platform, missing)
	}
	index := columnIndex(header, l)

	res := Result{Platform: platform}
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		res.Rows++
		if err == nil {
			var entry model.Entry
			entry, err = p.parseRow(record, index, platform)
			if err == nil {
				res.Entries = append(res.Entries, entry)
				continue
			}
		}
		warning := fmt.Sprintf("Row %d: Skipping due to error - %v", row, err)
		res.Warnings = append(res.Warnings, warning)
		p.log.Warn(ctx, "skipping malformed row",
			logger.Int("row", row),
			logger.String("platform", string(platform)),
			logger.Error(err))
	}

	metrics.RecordEntriesParsed(string(platform), len(res.Entries))
	metrics.RecordRowsSkipped(string(platform), len(res.Warnings))
	return res, nil
}

func (p *Parser) readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > p.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, p.maxBytes)
	}
	body = bytes.TrimPrefix(body, utf8BOM)
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrEmptyFile
	}
	return norm.NFC.Bytes(body), nil
}

// columnIndex maps column roles to record positions; -1 marks an absent column.
func columnIndex(header []string, l layout) [colCount]int {
	var idx [colCount]int
	for role := range idx {
		idx[role] = -1
	}
	for pos, h := range header {
		h = strings.TrimSpace(h)
		for role, name := range l.columns {
			if h == name && idx[role] < 0 {
				idx[role] = pos
			}
		}
	}
	return idx
}

func field(record []string, pos int) string {
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func (p *Parser) parseRow(record []string, idx [colCount]int, platform model.Platform) (model.Entry, error) {
	id := field(record, idx[colEntryID])
	if id == "" {
		return model.Entry{}, ErrMissingEntryID
	}
	fee, err := ParseCurrency(field(record, idx[colFee]))
	if err != nil {
		return model.Entry{}, err
	}
	winnings, err := ParseCurrency(field(record, idx[colWinnings]))
	if err != nil {
		return model.Entry{}, err
	}
	date, err := parseDate(field(record, idx[colDate]), p.layouts)
	if err != nil {
		return model.Entry{}, err
	}
	sport := field(record, idx[colSport])
	if sport == "" {
		sport = unknownSport
	}

	return model.NewEntry(model.Entry{
		ID:          id,
		Date:        date,
		Sport:       sport,
		ContestType: model.ContestUnknown,
		Fee:         fee,
		Winnings:    winnings,
		Points:      ParsePoints(field(record, idx[colPoints])),
		Platform:    platform,
		ContestName: field(record, idx[colContest]),
	})
}
