// Package tokenizer splits statement lines into fields and canonicalizes header names.
package tokenizer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ErrNoData is returned when a header row carries no usable column names.
// Callers report it as an informational outcome, not a failure.
var ErrNoData = errors.New("no data: header row is empty")

const bom = "\uFEFF"

// StripBOM removes a leading byte-order mark.
func StripBOM(s string) string {
	return strings.TrimPrefix(s, bom)
}

// Tokenize splits a single line into trimmed fields. Quoted fields may
// contain the delimiter and a doubled quote decodes to a literal quote.
func Tokenize(line string, delimiter rune) ([]string, error) {
	line = strings.TrimRight(StripBOM(line), "\r\n")
	if strings.TrimSpace(line) == "" {
		return nil, nil
	}

	r := newCSVReader(strings.NewReader(line), delimiter)
	fields, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("tokenize line: %w", err)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields, nil
}

// Reader yields tokenized records from a delimited stream together with the
// 1-based source line each record started on.
type Reader struct {
	csv       *csv.Reader
	lineShift int
}

// NewReader wraps r. firstLine is the source line number of the first byte of r.
func NewReader(r io.Reader, delimiter rune, firstLine int) *Reader {
	return &Reader{csv: newCSVReader(r, delimiter), lineShift: firstLine - 1}
}

// Read returns the next non-blank record and its starting line. It returns io.EOF at the end.
func (r *Reader) Read() ([]string, int, error) {
	for {
		fields, err := r.csv.Read()
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, perr.StartLine + r.lineShift, err
			}
			return nil, 0, err
		}
		line, _ := r.csv.FieldPos(0)
		if isBlank(fields) {
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		return fields, line + r.lineShift, nil
	}
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	if delimiter == 0 {
		delimiter = ','
	}
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	return cr
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// NormalizeHeader lowercases and trims a header cell and collapses runs of
// whitespace and underscores into single spaces.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(StripBOM(h)))
	h = strings.Trim(h, `"'`)
	h = strings.TrimSuffix(h, ":")
	h = strings.Map(func(r rune) rune {
		switch r {
		case '_', '\t', ' ':
			return ' '
		}
		return r
	}, h)
	return strings.Join(strings.Fields(h), " ")
}

// NormalizeHeaders canonicalizes every header cell. Colliding names are kept
// with an incrementing suffix ("amount", "amount_2") and a warning is logged.
// Blank cells become "column_N". A row with no non-blank cell yields ErrNoData.
func NormalizeHeaders(raw []string, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(raw) == 0 || isBlank(raw) {
		return nil, ErrNoData
	}

	out := make([]string, len(raw))
	seen := make(map[string]int, len(raw))
	for i, cell := range raw {
		name := NormalizeHeader(cell)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			renamed := fmt.Sprintf("%s_%d", name, n)
			for seen[renamed] > 0 {
				n++
				renamed = fmt.Sprintf("%s_%d", name, n)
			}
			seen[renamed]++
			logger.Warn("duplicate header renamed",
				slog.String("header", name),
				slog.String("renamed", renamed),
				slog.Int("column", i+1),
			)
			name = renamed
		}
		out[i] = name
	}
	return out, nil
}

// FitWidth pads or truncates fields to width. The second return is true when
// the record had to be changed.
func FitWidth(fields []string, width int) ([]string, bool) {
	switch {
	case len(fields) == width:
		return fields, false
	case len(fields) > width:
		return fields[:width], true
	default:
		padded := make([]string, width)
		copy(padded, fields)
		return padded, true
	}
}
