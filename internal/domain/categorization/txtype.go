package categorization

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionType is the coarse money-flow direction of a transaction.
type TransactionType string

const (
	TypeIncome     TransactionType = "INCOME"
	TypeInvestment TransactionType = "INVESTMENT"
	TypePayment    TransactionType = "PAYMENT"
	TypeExpense    TransactionType = "EXPENSE"
)

var (
	investmentAccountMarkers = []string{
		"investment", "401k", "401(k)", "ira", "hsa", "529", "certificate", "cd", "bond",
		"treasury", "money market", "moneymarket", "brokerage", "retirement",
	}
	loanAccountMarkers = []string{
		"loan", "mortgage", "credit card", "creditcard", "student loan", "studentloan", "home loan", "homeloan",
	}
	investmentDetailed = map[string]bool{
		"cd": true, "stocks": true, "bonds": true, "treasury": true, "tbills": true,
		"municipalbonds": true, "mutualfunds": true, "etf": true, "ira": true, "fourzeroonek": true,
		"fivetwonine": true, "otherinvestment": true, "preciousmetals": true, "crypto": true,
		"moneymarket": true,
	}
	incomeDetailed = map[string]bool{
		"interest": true, "salary": true, "dividend": true, "stipend": true, "rentincome": true,
		"tips": true, "otherincome": true, "deposit": true,
	}
	expenseCategories = map[string]bool{
		"groceries": true, "dining": true, "transportation": true, "shopping": true, "entertainment": true,
		"utilities": true, "rent": true, "healthcare": true, "travel": true, "subscriptions": true,
		"other": true,
	}
)

// DetermineType derives the transaction type from the account and the
// category labels. Account kind wins over category, category wins over the
// amount sign.
func DetermineType(accountType, accountSubtype, categoryPrimary, categoryDetailed string, amount decimal.Decimal) TransactionType {
	if accountType == "" && accountSubtype == "" && categoryPrimary == "" && categoryDetailed == "" {
		return TypeExpense
	}

	primary := strings.ToLower(strings.TrimSpace(categoryPrimary))
	detailed := strings.ToLower(strings.TrimSpace(categoryDetailed))

	switch {
	case primary == "income" && detailed == "deposit":
		return TypeIncome
	case isInvestmentAccount(accountType, accountSubtype):
		return TypeInvestment
	case strings.HasPrefix(primary, strings.ToLower(CategoryInvestment)) || investmentDetailed[detailed]:
		return TypeInvestment
	case primary == CategoryIncome:
		return TypeIncome
	case incomeDetailed[detailed]:
		return TypeIncome
	}

	if amount.IsPositive() {
		if primary == "" || !(expenseCategories[primary] || expenseCategories[detailed]) || primary == CategoryOther {
			return TypeIncome
		}
	}
	return TypeExpense
}

// isInvestmentAccount checks the account type first; the subtype only counts
// once a type is known.
func isInvestmentAccount(accountType, accountSubtype string) bool {
	if accountType == "" {
		return false
	}
	t := strings.ToLower(accountType)
	if containsAny(t, investmentAccountMarkers...) {
		return true
	}
	st := strings.ToLower(accountSubtype)
	// "investment" is a type, never a subtype marker
	return containsAny(st, investmentAccountMarkers[1:]...)
}

// isLoanAccount covers loans, mortgages and credit cards.
func isLoanAccount(accountType, accountSubtype string) bool {
	if accountType == "" {
		return false
	}
	return containsAny(strings.ToLower(accountType), loanAccountMarkers...) ||
		containsAny(strings.ToLower(accountSubtype), loanAccountMarkers...)
}

func isCreditCardAccount(accountType, accountSubtype string) bool {
	t := strings.ToLower(strings.TrimSpace(accountType))
	st := strings.ToLower(accountSubtype)
	return t == "credit" || containsAny(t+" "+st, "credit card", "creditcard", "credit_card")
}

func isCheckingAccount(accountType, accountSubtype string) bool {
	all := strings.ToLower(accountType + " " + accountSubtype)
	return containsAny(all, "checking", "depository", "savings")
}
