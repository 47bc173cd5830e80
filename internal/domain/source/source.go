// Package source adapts transactions from different origins (aggregator
// feeds, imported statement rows) to one read-only shape that the
// categorization unifier understands.
package source

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
)

// Transaction is a transaction as reported by its origin. Amount uses the
// canonical sign: money leaving the account is negative.
type Transaction interface {
	ExternalID() string
	AccountID() string
	Date() time.Time
	Amount() decimal.Decimal
	CurrencyCode() string
	Description() string
	MerchantName() string
	CategoryPrimary() string
	CategoryDetailed() string
	PaymentChannel() string
	DebitCreditIndicator() string
	Pending() bool
	Source() categorization.ImportSource
}

// Account is the account context a transaction is unified against.
type Account struct {
	Type    string
	Subtype string
}

// Unified is a transaction with its persisted category and type decided.
type Unified struct {
	ExternalID   string                          `json:"externalId,omitempty"`
	AccountID    string                          `json:"accountId,omitempty"`
	Date         time.Time                       `json:"date"`
	Amount       decimal.Decimal                 `json:"amount"`
	CurrencyCode string                          `json:"currencyCode"`
	Description  string                          `json:"description"`
	MerchantName string                          `json:"merchantName,omitempty"`
	Pending      bool                            `json:"pending,omitempty"`
	Category     categorization.CategoryDecision `json:"category"`
	Type         categorization.TypeDecision     `json:"type"`
}

// UnifyInput maps tx onto the unifier input.
func UnifyInput(tx Transaction, acct Account) categorization.UnifyInput {
	return categorization.UnifyInput{
		ImporterPrimary:      tx.CategoryPrimary(),
		ImporterDetailed:     tx.CategoryDetailed(),
		AccountType:          acct.Type,
		AccountSubtype:       acct.Subtype,
		Merchant:             tx.MerchantName(),
		Description:          tx.Description(),
		Amount:               tx.Amount(),
		PaymentChannel:       tx.PaymentChannel(),
		DebitCreditIndicator: tx.DebitCreditIndicator(),
		Source:               tx.Source(),
	}
}

// Unify decides category and type for every transaction. accounts maps an
// account id to its context; transactions on unknown accounts are unified
// without one.
func Unify(ctx context.Context, u *categorization.Unifier, txs []Transaction, accounts map[string]Account) []Unified {
	out := make([]Unified, 0, len(txs))
	for _, tx := range txs {
		in := UnifyInput(tx, accounts[tx.AccountID()])
		cat := u.DetermineCategory(ctx, in)
		typ := u.DetermineType(in, cat.Primary, cat.Detailed)
		out = append(out, Unified{
			ExternalID:   tx.ExternalID(),
			AccountID:    tx.AccountID(),
			Date:         tx.Date(),
			Amount:       tx.Amount(),
			CurrencyCode: tx.CurrencyCode(),
			Description:  tx.Description(),
			MerchantName: tx.MerchantName(),
			Pending:      tx.Pending(),
			Category:     cat,
			Type:         typ,
		})
	}
	return out
}
