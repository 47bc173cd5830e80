// Package sniffer provides automatic detection of delimited statement layouts.
// It identifies the delimiter, the header row and any metadata preamble above it,
// and fingerprints the header for bank recognition.
package sniffer

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/import/tokenizer"
)

// maxHeaderSearch bounds how far below the top of the file the header may sit.
const maxHeaderSearch = 20

// Common bank statement header keywords (multi-language)
var headerKeywords = []string{
	// English
	"date", "description", "amount", "debit", "credit", "balance", "category", "merchant",
	"payee", "memo", "details", "transaction", "reference", "withdrawal", "deposit",
	// Portuguese
	"data mov", "descrição", "descricao", "débito", "debito", "crédito", "credito",
	"data valor", "saldo", "categoria", "valor",
	// Spanish
	"fecha", "descripción", "descripcion", "importe", "cargo", "abono", "concepto",
	// German / Dutch / French / Italian
	"datum", "buchungstag", "betrag", "verwendungszweck", "bedrag", "omschrijving",
	"montant", "libellé", "libelle", "importo",
	// Chinese / Japanese / Korean
	"日期", "交易", "金额", "摘要", "取引日", "金額", "利用日", "거래일", "금액",
}

// FileConfig holds the detected layout of a delimited statement
type FileConfig struct {
	Delimiter   rune     // The field delimiter (';', ',', '\t', '|')
	SkipLines   int      // Number of lines before the header row
	Headers     []string // Header cells as they appear in the file
	Preamble    []string // Non-blank lines above the header (account metadata)
	Fingerprint string   // SHA256 hash of normalized headers
}

// DetectOptions allows callers to override header row or delimiter detection.
type DetectOptions struct {
	// HeaderRowIndex is a 0-based index for the header row. Set to -1 to auto-detect.
	HeaderRowIndex int
	// Delimiter overrides the detected delimiter when non-zero.
	Delimiter rune
}

var (
	ErrEmptyFile        = errors.New("file is empty")
	ErrNoHeadersFound   = errors.New("could not find data headers")
	ErrInvalidDelimiter = errors.New("could not detect valid delimiter")
)

// DetectConfig analyzes a delimited file and returns its configuration
func DetectConfig(data []byte) (*FileConfig, error) {
	return DetectConfigWithOptions(data, nil)
}

// DetectConfigWithOptions analyzes a delimited file with optional overrides.
func DetectConfigWithOptions(data []byte, opts *DetectOptions) (*FileConfig, error) {
	if len(strings.TrimSpace(tokenizer.StripBOM(string(data)))) == 0 {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(string(data), "\n")

	var (
		delimiter rune
		skipLines int
		err       error
	)
	if opts != nil && opts.HeaderRowIndex >= 0 {
		if opts.HeaderRowIndex >= len(lines) {
			return nil, ErrNoHeadersFound
		}
		skipLines = opts.HeaderRowIndex
		delimiter = opts.Delimiter
		if delimiter == 0 {
			delimiter, _ = detectDelimiter(cleanLine(lines[skipLines], skipLines == 0))
			if delimiter == 0 {
				return nil, ErrInvalidDelimiter
			}
		}
	} else {
		delimiter, skipLines, err = findHeaderRow(lines)
		if err != nil {
			return nil, err
		}
		if opts != nil && opts.Delimiter != 0 {
			delimiter = opts.Delimiter
		}
	}

	headers, err := tokenizer.Tokenize(cleanLine(lines[skipLines], skipLines == 0), delimiter)
	if err != nil {
		return nil, err
	}

	var preamble []string
	for i := 0; i < skipLines; i++ {
		if line := cleanLine(lines[i], i == 0); line != "" {
			preamble = append(preamble, line)
		}
	}

	return &FileConfig{
		Delimiter:   delimiter,
		SkipLines:   skipLines,
		Headers:     headers,
		Preamble:    preamble,
		Fingerprint: generateFingerprint(headers),
	}, nil
}

// findHeaderRow locates the header row and its delimiter. Only lines whose
// cells are all text qualify; among those, a line carrying header keywords
// wins (more columns first, then earliest), else the first qualifying line.
func findHeaderRow(lines []string) (rune, int, error) {
	keywordIndex, keywordDelimiter, keywordCount := -1, rune(0), 0
	fallbackIndex, fallbackDelimiter := -1, rune(0)

	for i, raw := range lines {
		if i >= maxHeaderSearch {
			break
		}
		line := cleanLine(raw, i == 0)
		if line == "" {
			continue
		}

		delimiter, count := detectDelimiter(line)
		if count < 1 {
			continue
		}
		cells, err := tokenizer.Tokenize(line, delimiter)
		if err != nil || len(cells) < 2 || !isHeaderLike(cells) {
			continue
		}

		if keywordMatches(line) > 0 {
			if keywordIndex == -1 || len(cells) > keywordCount {
				keywordIndex, keywordDelimiter, keywordCount = i, delimiter, len(cells)
			}
		} else if fallbackIndex == -1 {
			fallbackIndex, fallbackDelimiter = i, delimiter
		}
	}

	if keywordIndex >= 0 {
		return keywordDelimiter, keywordIndex, nil
	}
	if fallbackIndex >= 0 {
		return fallbackDelimiter, fallbackIndex, nil
	}
	return 0, 0, ErrNoHeadersFound
}

func keywordMatches(line string) int {
	lineLower := strings.ToLower(line)
	n := 0
	for _, kw := range headerKeywords {
		if strings.Contains(lineLower, kw) {
			n++
		}
	}
	return n
}

var (
	dateLikeRe   = regexp.MustCompile(`^\d{1,4}[/.\-]\d{1,2}[/.\-]\d{1,4}`)
	amountLikeRe = regexp.MustCompile(`^[(\-+]?\s*\D{0,3}\s*[\d][\d.,\s]*\)?\s*[a-zA-Z]{0,3}$`)
)

// isHeaderLike reports whether no cell looks like a date or an amount.
func isHeaderLike(cells []string) bool {
	for _, c := range cells {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if dateLikeRe.MatchString(c) || amountLikeRe.MatchString(c) {
			return false
		}
	}
	return true
}

func cleanLine(line string, firstLine bool) string {
	line = strings.TrimRight(line, "\r")
	if firstLine {
		line = tokenizer.StripBOM(line)
	}
	return strings.TrimSpace(line)
}

func detectDelimiter(line string) (rune, int) {
	delimiters := []rune{';', '\t', ',', '|'}
	bestDelimiter := rune(0)
	bestCount := 0
	for _, d := range delimiters {
		count := strings.Count(line, string(d))
		if count > bestCount {
			bestCount = count
			bestDelimiter = d
		}
	}
	return bestDelimiter, bestCount
}

// generateFingerprint creates a unique hash from header names
func generateFingerprint(headers []string) string {
	var normalized []string
	for _, h := range headers {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return unicode.ToLower(r)
			}
			return -1
		}, h)
		if clean != "" {
			normalized = append(normalized, clean)
		}
	}

	joined := strings.Join(normalized, "|")
	hash := sha256.Sum256([]byte(joined))
	return hex.EncodeToString(hash[:])
}
