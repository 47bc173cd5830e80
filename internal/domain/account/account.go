// Package account infers which account a statement belongs to and matches it
// against the user's existing accounts.
package account

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Normalized account types
const (
	TypeDepository = "depository"
	TypeCredit     = "credit"
	TypeLoan       = "loan"
	TypeInvestment = "investment"
)

// Account subtypes set by the detector
const (
	SubtypeChecking   = "checking"
	SubtypeSavings    = "savings"
	SubtypeCreditCard = "credit card"
)

// DetectedAccount is the account identity inferred from one statement file.
type DetectedAccount struct {
	InstitutionName  string           `json:"institution_name,omitempty"`
	AccountNumber    string           `json:"account_number,omitempty"`
	AccountName      string           `json:"account_name,omitempty"`
	AccountType      string           `json:"account_type,omitempty"`
	AccountSubtype   string           `json:"account_subtype,omitempty"`
	Balance          *decimal.Decimal `json:"balance,omitempty"`
	BalanceDate      *time.Time       `json:"balance_date,omitempty"`
	MatchedAccountID string           `json:"matched_account_id,omitempty"`
	Tally            Tally            `json:"-"`
}

// Empty reports whether no identifying field was detected.
func (a *DetectedAccount) Empty() bool {
	if a == nil {
		return true
	}
	return a.InstitutionName == "" && a.AccountNumber == "" && a.AccountName == "" &&
		a.AccountType == "" && a.Balance == nil
}

// IsCredit reports whether the account is any flavour of credit account
// ("credit", "creditCard", "credit_card", "Credit Card", "credit_line").
func (a *DetectedAccount) IsCredit() bool {
	return a != nil && strings.Contains(strings.ToLower(a.AccountType), "credit")
}

// IsDepository reports whether the account is a checking or savings style account.
func (a *DetectedAccount) IsDepository() bool {
	if a == nil {
		return false
	}
	t := strings.ToLower(a.AccountType)
	return t == TypeDepository || t == SubtypeChecking || t == SubtypeSavings || t == "moneymarket"
}

// ObserveBalance records a running balance seen on a dated row. The most
// recent date wins; on a tie the later row wins.
func (a *DetectedAccount) ObserveBalance(balance decimal.Decimal, date time.Time) {
	if a.BalanceDate != nil && date.Before(*a.BalanceDate) {
		return
	}
	b := balance
	d := date
	a.Balance = &b
	a.BalanceDate = &d
}

// merge fills the empty identity fields of a from other. Names are
// generated once all fields are known.
func (a *DetectedAccount) merge(other *DetectedAccount) {
	if other == nil {
		return
	}
	if a.InstitutionName == "" {
		a.InstitutionName = other.InstitutionName
	}
	if a.AccountNumber == "" {
		a.AccountNumber = other.AccountNumber
	}
	if a.AccountType == "" {
		a.AccountType = other.AccountType
		a.AccountSubtype = other.AccountSubtype
	}
	if a.Balance == nil {
		a.Balance = other.Balance
	}
}

// Merge fills the empty fields of a from other, then names the account when
// institution and type are both known.
func (a *DetectedAccount) Merge(other *DetectedAccount) {
	a.merge(other)
	if a.AccountName == "" && a.InstitutionName != "" && a.AccountType != "" {
		a.AccountName = generateAccountName(a.InstitutionName, a.AccountType, a.AccountSubtype, a.AccountNumber)
	}
}

// generateAccountName builds a display name such as "Chase checking 1234".
func generateAccountName(institution, accountType, subtype, number string) string {
	parts := make([]string, 0, 3)
	if institution != "" {
		parts = append(parts, institution)
	}
	switch {
	case subtype != "":
		parts = append(parts, subtype)
	case accountType != "":
		parts = append(parts, accountType)
	}
	if number != "" {
		parts = append(parts, number)
	}
	if len(parts) == 0 {
		return "Unknown Account"
	}
	return strings.Join(parts, " ")
}
