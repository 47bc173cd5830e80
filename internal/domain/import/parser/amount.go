package parser

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aksumit1/budgetbuddy-backend/pkg/money"
)

// AmountResult is the outcome of parsing one amount cell.
type AmountResult struct {
	Amount   decimal.Decimal
	OK       bool   // false when the cell was empty or not numeric
	Currency string // ISO code, defaulted to USD
	Clamped  bool   // magnitude exceeded the statement limit and was saturated
	Split    bool   // built from separate debit and credit columns
}

var (
	europeanGroupedRe = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d{1,2}$`)
	europeanPlainRe   = regexp.MustCompile(`^\d+,\d{1,2}$`)
	plainNumberRe     = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
)

var spaceReplacer = strings.NewReplacer(
	" ", "", "\t", "", "\u00a0", "", "\u202f", "", "\u2009", "", "'", "", "\u2019", "",
)

// ParseAmount parses an amount cell. Currency comes from symbols or codes in
// the value, then from headerLine/filename hints. Parentheses, a leading or
// trailing minus, or a DR suffix make the amount negative.
func ParseAmount(text, headerLine, filename string) AmountResult {
	s := strings.TrimSpace(text)
	code, marker, _ := DetectCurrency(s, headerLine, filename)
	res := AmountResult{Currency: code}
	if s == "" {
		return res
	}

	if marker != "" {
		s = strings.ReplaceAll(s, marker, "")
	}
	s = stripCurrencyMarkers(s)
	s = spaceReplacer.Replace(s)

	negative := false
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "DR"):
		negative = true
		s = s[:len(s)-2]
	case strings.HasSuffix(upper, "CR"):
		s = s[:len(s)-2]
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = !negative
		s = s[1 : len(s)-1]
	}
	s = strings.ReplaceAll(s, "\u2212", "-")
	switch {
	case strings.HasPrefix(s, "-"):
		negative = !negative
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = !negative
		s = s[:len(s)-1]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	// a currency marker may sit between the sign and the digits
	s = strings.Trim(s, "()")

	if europeanGroupedRe.MatchString(s) || europeanPlainRe.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	if !plainNumberRe.MatchString(s) {
		return res
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return res
	}
	if negative {
		d = d.Neg()
	}

	res.Amount, res.Clamped = money.Normalize(d)
	res.OK = true
	return res
}

// stripCurrencyMarkers removes every known symbol and any three-letter ISO code.
func stripCurrencyMarkers(s string) string {
	for _, cs := range currencySymbols {
		s = strings.ReplaceAll(s, cs.symbol, "")
	}
	for {
		c := currencyCodeIn(s)
		if c == "" {
			return s
		}
		s = removeFold(s, c)
	}
}

// removeFold deletes all case-insensitive occurrences of an ASCII token.
func removeFold(s, token string) string {
	lower := strings.ToLower(s)
	t := strings.ToLower(token)
	var b strings.Builder
	for {
		i := strings.Index(lower, t)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(t):]
		lower = lower[i+len(t):]
	}
}
