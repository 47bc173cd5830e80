package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
)

// ErrNoTransactions is returned when an aggregator payload carries no
// transactions at all.
var ErrNoTransactions = errors.New("payload has no transactions")

const plaidDateLayout = "2006-01-02"

// PersonalFinanceCategory is the aggregator's two-level category.
type PersonalFinanceCategory struct {
	Primary  string `json:"primary"`
	Detailed string `json:"detailed"`
}

// PlaidTransaction is one transaction of a Plaid style transactions payload.
// The aggregator reports outflows as positive amounts.
type PlaidTransaction struct {
	TransactionID           string                   `json:"transaction_id"`
	AccountIDValue          string                   `json:"account_id"`
	AmountValue             decimal.Decimal          `json:"amount"`
	IsoCurrencyCode         string                   `json:"iso_currency_code"`
	UnofficialCurrencyCode  string                   `json:"unofficial_currency_code"`
	DateValue               string                   `json:"date"`
	Name                    string                   `json:"name"`
	MerchantNameValue       string                   `json:"merchant_name"`
	PaymentChannelValue     string                   `json:"payment_channel"`
	PendingValue            bool                     `json:"pending"`
	PersonalFinanceCategory *PersonalFinanceCategory `json:"personal_finance_category"`
}

var _ Transaction = (*PlaidTransaction)(nil)

func (p *PlaidTransaction) ExternalID() string { return p.TransactionID }
func (p *PlaidTransaction) AccountID() string  { return p.AccountIDValue }

// Date returns the posted date. An unparseable date reads as the zero time.
func (p *PlaidTransaction) Date() time.Time {
	t, err := time.Parse(plaidDateLayout, strings.TrimSpace(p.DateValue))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Amount flips the aggregator sign so that outflows are negative.
func (p *PlaidTransaction) Amount() decimal.Decimal {
	return p.AmountValue.Neg().Round(2)
}

func (p *PlaidTransaction) CurrencyCode() string {
	switch {
	case p.IsoCurrencyCode != "":
		return strings.ToUpper(p.IsoCurrencyCode)
	case p.UnofficialCurrencyCode != "":
		return strings.ToUpper(p.UnofficialCurrencyCode)
	}
	return "USD"
}

func (p *PlaidTransaction) Description() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.MerchantNameValue != "":
		return p.MerchantNameValue
	}
	return "Transaction"
}

func (p *PlaidTransaction) MerchantName() string { return p.MerchantNameValue }

func (p *PlaidTransaction) CategoryPrimary() string {
	if p.PersonalFinanceCategory == nil {
		return ""
	}
	return p.PersonalFinanceCategory.Primary
}

func (p *PlaidTransaction) CategoryDetailed() string {
	if p.PersonalFinanceCategory == nil {
		return ""
	}
	return p.PersonalFinanceCategory.Detailed
}

func (p *PlaidTransaction) PaymentChannel() string       { return p.PaymentChannelValue }
func (p *PlaidTransaction) DebitCreditIndicator() string { return "" }
func (p *PlaidTransaction) Pending() bool                { return p.PendingValue }

func (p *PlaidTransaction) Source() categorization.ImportSource {
	return categorization.SourcePlaid
}

// DecodePlaid reads either a bare JSON array of transactions or an object
// with a "transactions" field, as returned by the sync endpoints.
func DecodePlaid(r io.Reader) ([]Transaction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrNoTransactions
	}

	var txs []*PlaidTransaction
	if data[0] == '[' {
		if err := json.Unmarshal(data, &txs); err != nil {
			return nil, fmt.Errorf("failed to decode transactions: %w", err)
		}
	} else {
		var envelope struct {
			Transactions []*PlaidTransaction `json:"transactions"`
			Added        []*PlaidTransaction `json:"added"`
		}
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode transactions: %w", err)
		}
		txs = append(envelope.Transactions, envelope.Added...)
	}
	if len(txs) == 0 {
		return nil, ErrNoTransactions
	}

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			out = append(out, tx)
		}
	}
	return out, nil
}
