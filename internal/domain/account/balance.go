package account

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/aksumit1/budgetbuddy-backend/pkg/money"
)

var (
	maxBalance = decimal.RequireFromString("999999999999.99")

	creditMarkerRe   = regexp.MustCompile(`(?i)\b(cr|credit|crédit|crédito|guthaben|haben)\b`)
	debitMarkerRe    = regexp.MustCompile(`(?i)\b(dr|debit|débit|débito|debet|soll)\b`)
	balanceNoiseRe   = regexp.MustCompile(`[^\d.,+\-]`)
	europeanBalances = regexp.MustCompile(`^\d{1,3}(\.\d{3})+,\d{1,2}$|^\d+,\d{1,2}$`)
)

// ExtractBalanceFromValue parses a running-balance cell. A CR marker keeps
// the value positive, DR or parentheses make it negative. Values outside
// ±999,999,999,999.99 are rejected as misparsed dates or references.
func ExtractBalanceFromValue(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, false
	}

	isCredit := creditMarkerRe.MatchString(s)
	isDebit := !isCredit && debitMarkerRe.MatchString(s)
	s = creditMarkerRe.ReplaceAllString(s, "")
	s = debitMarkerRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = balanceNoiseRe.ReplaceAllString(s, "")
	if strings.HasPrefix(s, "-") {
		negative = true
	}
	s = strings.TrimLeft(s, "+-")
	s = strings.TrimRight(s, "-")
	if s == "" {
		return decimal.Zero, false
	}

	if europeanBalances.MatchString(s) {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if negative || isDebit {
		value = value.Neg()
	}
	if value.Abs().GreaterThan(maxBalance) {
		return decimal.Zero, false
	}
	return money.RoundHalfUp(value, money.StatementPlaces), true
}
