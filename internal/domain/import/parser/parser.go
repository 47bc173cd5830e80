// Package parser turns normalized statement rows into transactions.
// It resolves header synonyms, dates, amounts and currencies for CSV and Excel input.
package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aksumit1/budgetbuddy-backend/pkg/money"
)

// ParsedTransaction is the canonical record produced for one statement row.
type ParsedTransaction struct {
	RowNumber                int              `json:"rowNumber"`
	Date                     time.Time        `json:"date"`
	Amount                   decimal.Decimal  `json:"amount"`
	CurrencyCode             string           `json:"currencyCode"`
	Description              string           `json:"description"`
	MerchantName             string           `json:"merchantName"`
	CategoryPrimary          string           `json:"categoryPrimary"`
	CategoryDetailed         string           `json:"categoryDetailed"`
	ImporterCategoryPrimary  string           `json:"importerCategoryPrimary,omitempty"`
	ImporterCategoryDetailed string           `json:"importerCategoryDetailed,omitempty"`
	PaymentChannel           string           `json:"paymentChannel,omitempty"`
	DebitCreditIndicator     string           `json:"debitCreditIndicator,omitempty"`
	TransactionType          string           `json:"transactionType"`
	AccountID                string           `json:"accountId,omitempty"`
	CheckNumber              string           `json:"checkNumber,omitempty"`
	Balance                  *decimal.Decimal `json:"balance,omitempty"`
	Fingerprint              string           `json:"fingerprint"`
	Clamped                  bool             `json:"-"`
	// Oriented is set when a debit/credit marker or split debit and credit
	// columns fixed the sign, so no account-level reversal applies.
	Oriented                 bool             `json:"-"`
}

// ParseError represents a parsing error for a specific row
type ParseError struct {
	Row     int
	Column  string
	Message string
	RawData string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
}

// ParserConfig carries the file-level context amount parsing needs.
type ParserConfig struct {
	HeaderLine      string // raw header line, used for currency hints
	Filename        string // original filename, used for currency hints
	DefaultCurrency string // used when neither value nor context names a currency
}

// DefaultConfig returns a parser config with sensible defaults
func DefaultConfig() ParserConfig {
	return ParserConfig{DefaultCurrency: money.USD}
}

// Parser converts RawRows into ParsedTransactions. It is safe for concurrent use.
type Parser struct {
	config ParserConfig
}

// NewParser creates a new parser with the given configuration
func NewParser(config ParserConfig) *Parser {
	if config.DefaultCurrency == "" {
		config.DefaultCurrency = money.USD
	}
	return &Parser{config: config}
}

// ParseRow extracts date, amount and descriptive fields from a row. Category
// and transaction type are left for the classifier.
func (p *Parser) ParseRow(row RawRow, rowNum int) (*ParsedTransaction, *ParseError) {
	dateStr := row.Get(DateColumns...)
	if dateStr == "" {
		return nil, &ParseError{Row: rowNum, Column: "date", Message: "missing date"}
	}
	date, ok := ParseDate(dateStr)
	if !ok {
		return nil, &ParseError{
			Row:     rowNum,
			Column:  "date",
			Message: fmt.Sprintf("unrecognized date %q", dateStr),
			RawData: dateStr,
		}
	}

	amount, perr := p.parseRowAmount(row, rowNum)
	if perr != nil {
		return nil, perr
	}

	indicator := row.Get(IndicatorColumns...)
	var marked bool
	amount.Amount, marked = applyIndicator(amount.Amount, indicator)

	currency := amount.Currency
	if c := strings.ToUpper(row.Get(CurrencyColumns...)); money.IsKnownCurrency(c) {
		currency = c
	}

	tx := &ParsedTransaction{
		RowNumber:                rowNum,
		Date:                     date,
		Amount:                   amount.Amount,
		CurrencyCode:             currency,
		Description:              cleanDescription(row.Get(DescriptionColumns...)),
		MerchantName:             cleanDescription(row.Get(MerchantColumns...)),
		ImporterCategoryPrimary:  row.Get(CategoryColumns...),
		ImporterCategoryDetailed: row.Get(DetailedCategoryColumns...),
		PaymentChannel:           row.Get(ChannelColumns...),
		DebitCreditIndicator:     indicator,
		CheckNumber:              row.Get(CheckNumberColumns...),
		Clamped:                  amount.Clamped,
		Oriented:                 marked || amount.Split,
	}
	if tx.Description == "" {
		tx.Description = tx.MerchantName
	}
	if tx.ImporterCategoryPrimary == "" && isTypeCode(row.Get("type", "transaction type")) {
		tx.ImporterCategoryPrimary = row.Get("type", "transaction type")
	}
	if bal := row.Get(BalanceColumns...); bal != "" {
		if b := ParseAmount(bal, p.config.HeaderLine, p.config.Filename); b.OK {
			tx.Balance = &b.Amount
		}
	}
	return tx, nil
}

// parseRowAmount reads a single amount column, or credit minus debit when
// the statement splits them.
func (p *Parser) parseRowAmount(row RawRow, rowNum int) (AmountResult, *ParseError) {
	if amountStr := row.Get(AmountColumns...); amountStr != "" {
		res := ParseAmount(amountStr, p.config.HeaderLine, p.config.Filename)
		if !res.OK {
			return res, &ParseError{
				Row:     rowNum,
				Column:  "amount",
				Message: fmt.Sprintf("unparseable amount %q", amountStr),
				RawData: amountStr,
			}
		}
		p.defaultCurrency(&res, amountStr)
		return res, nil
	}

	debitStr, creditStr := row.Get(DebitColumns...), row.Get(CreditColumns...)
	if debitStr == "" && creditStr == "" {
		return AmountResult{}, &ParseError{Row: rowNum, Column: "amount", Message: "missing amount"}
	}
	res, ok := p.parseDebitCredit(debitStr, creditStr)
	if !ok {
		return res, &ParseError{
			Row:     rowNum,
			Column:  "amount",
			Message: "unparseable debit/credit amount",
			RawData: debitStr + "|" + creditStr,
		}
	}
	return res, nil
}

// parseDebitCredit handles double-entry bookkeeping columns
func (p *Parser) parseDebitCredit(debitStr, creditStr string) (AmountResult, bool) {
	var out AmountResult
	parsedAny := false
	total := decimal.Zero

	if debitStr != "" {
		res := ParseAmount(debitStr, p.config.HeaderLine, p.config.Filename)
		if res.OK {
			parsedAny = true
			total = total.Sub(res.Amount.Abs())
			out.Currency = res.Currency
			out.Clamped = res.Clamped
			p.defaultCurrency(&out, debitStr)
		}
	}
	if creditStr != "" {
		res := ParseAmount(creditStr, p.config.HeaderLine, p.config.Filename)
		if res.OK {
			parsedAny = true
			total = total.Add(res.Amount.Abs())
			if out.Currency == "" {
				out.Currency = res.Currency
				p.defaultCurrency(&out, creditStr)
			}
			out.Clamped = out.Clamped || res.Clamped
		}
	}
	if !parsedAny {
		return out, false
	}
	out.Amount, _ = money.Normalize(total)
	out.OK = true
	out.Split = true
	return out, true
}

// defaultCurrency swaps the built-in USD fallback for the configured default
// when the value and context named no currency.
func (p *Parser) defaultCurrency(res *AmountResult, value string) {
	if _, _, found := DetectCurrency(value, p.config.HeaderLine, p.config.Filename); !found {
		res.Currency = p.config.DefaultCurrency
	}
}

// applyIndicator orients an unsigned amount by an explicit debit/credit
// marker and reports whether the marker was recognized.
func applyIndicator(amount decimal.Decimal, indicator string) (decimal.Decimal, bool) {
	switch strings.ToLower(strings.TrimSpace(indicator)) {
	case "debit", "dr", "d", "withdrawal", "soll", "af", "借", "支出":
		return amount.Abs().Neg(), true
	case "credit", "cr", "c", "deposit", "haben", "bij", "贷", "收入":
		return amount.Abs(), true
	}
	return amount, false
}

// isTypeCode reports whether a "type" cell looks like an institution code such
// as ACH_CREDIT or FEE_TRANSACTION rather than a debit/credit marker.
func isTypeCode(v string) bool {
	if v == "" || strings.ContainsAny(v, " ") && !strings.Contains(v, "_") {
		return false
	}
	switch strings.ToLower(v) {
	case "debit", "credit", "dr", "cr", "d", "c":
		return false
	}
	return strings.ToUpper(v) == v
}

// cleanDescription normalizes a transaction description
func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
