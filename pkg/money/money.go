// Package money provides currency-safe amount handling for imported statements.
// Amounts are carried as shopspring/decimal values and validated against the
// ISO-4217 table shipped with go-money.
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Common currency codes (ISO-4217)
const (
	USD = "USD" // US Dollar
	EUR = "EUR" // Euro
	GBP = "GBP" // British Pound
	BRL = "BRL" // Brazilian Real
	JPY = "JPY" // Japanese Yen (no decimal places)
	CNY = "CNY" // Chinese Yuan
	INR = "INR" // Indian Rupee
	CAD = "CAD" // Canadian Dollar
	AUD = "AUD" // Australian Dollar
	CHF = "CHF" // Swiss Franc
)

// StatementPlaces is the fractional precision every imported amount is rounded to.
const StatementPlaces = 2

// MaxStatementAmount is the largest magnitude an imported amount may carry.
var MaxStatementAmount = decimal.RequireFromString("999999999.99")

// IsKnownCurrency reports whether code is an ISO-4217 code go-money knows about.
func IsKnownCurrency(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return false
	}
	return money.GetCurrency(code) != nil
}

// Fraction returns the number of minor-unit digits for code, 2 when unknown.
func Fraction(code string) int {
	c := money.GetCurrency(strings.ToUpper(code))
	if c == nil {
		return StatementPlaces
	}
	return c.Fraction
}

// RoundHalfUp rounds d to places fractional digits, ties away from zero.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// Clamp bounds d to [-limit, limit]. The second return is true when d was
// outside the range and got saturated.
func Clamp(d, limit decimal.Decimal) (decimal.Decimal, bool) {
	limit = limit.Abs()
	if d.GreaterThan(limit) {
		return limit, true
	}
	if d.LessThan(limit.Neg()) {
		return limit.Neg(), true
	}
	return d, false
}

// Normalize clamps d to MaxStatementAmount and rounds it to StatementPlaces.
func Normalize(d decimal.Decimal) (decimal.Decimal, bool) {
	clamped, saturated := Clamp(d, MaxStatementAmount)
	return RoundHalfUp(clamped, StatementPlaces), saturated
}

// Money represents a monetary value with currency.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New creates Money from a decimal amount. Unknown currency codes fall back to USD.
func New(amount decimal.Decimal, currencyCode string) Money {
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if !IsKnownCurrency(code) {
		code = USD
	}
	return Money{amount: amount, currency: code}
}

// NewFromString parses a plain decimal string such as "1234.56".
func NewFromString(amount, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return New(d, currencyCode), nil
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the ISO-4217 currency code
func (m Money) Currency() string {
	if m.currency == "" {
		return USD
	}
	return m.currency
}

// Negate returns the negated value
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// MinorUnits returns the amount in minor units of its currency (cents for USD).
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(int32(Fraction(m.Currency()))).Round(0).IntPart()
}

// Display returns a formatted string for display (e.g., "$1,234.56")
func (m Money) Display() string {
	return money.New(m.MinorUnits(), m.Currency()).Display()
}

// String returns the amount with its currency (e.g., "1234.56 USD")
func (m Money) String() string {
	return m.amount.StringFixed(int32(Fraction(m.Currency()))) + " " + m.Currency()
}

type moneyJSON struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON encodes the amount as a fixed-point string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{
		Amount:   m.amount.StringFixed(int32(Fraction(m.Currency()))),
		Currency: m.Currency(),
	})
}

// UnmarshalJSON decodes the representation produced by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewFromString(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
