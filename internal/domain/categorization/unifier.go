package categorization

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// ImportSource says where a transaction came from.
type ImportSource string

const (
	SourcePlaid ImportSource = "PLAID"
	SourceCSV   ImportSource = "CSV"
	SourceExcel ImportSource = "EXCEL"
	SourcePDF   ImportSource = "PDF"
)

// Decision sources reported by the Unifier
const (
	DecisionFallback         = "FALLBACK"
	DecisionRuleOverride     = "RULE_OVERRIDE"
	DecisionPlaid            = "PLAID"
	DecisionHybrid           = "HYBRID"
	DecisionML               = "ML"
	DecisionParser           = "PARSER"
	DecisionAccount          = "ACCOUNT"
	DecisionImporter         = "IMPORTER"
	DecisionDefault          = "DEFAULT"
	DecisionAccountType      = "ACCOUNT_TYPE"
	DecisionCategory         = "CATEGORY"
	DecisionCategoryOverride = "CATEGORY_OVERRIDE"
	DecisionAmount           = "AMOUNT"
)

// mlConfidence is the detector confidence above which its suggestion is
// trusted on its own.
const mlConfidence = 0.8

// CategoryDecision is the category picked for persistence and how it was
// reached.
type CategoryDecision struct {
	Primary    string
	Detailed   string
	Source     string
	Confidence float64
}

// TypeDecision is the transaction type picked for persistence.
type TypeDecision struct {
	Type       TransactionType
	Source     string
	Confidence float64
}

// UnifyInput is one transaction as seen at persistence time. Amounts use the
// canonical sign: money leaving the account is negative, for card accounts too.
type UnifyInput struct {
	ImporterPrimary      string
	ImporterDetailed     string
	AccountType          string
	AccountSubtype       string
	Merchant             string
	Description          string
	Amount               decimal.Decimal
	PaymentChannel       string
	DebitCreditIndicator string
	Source               ImportSource
}

var (
	specificIncomeCategories = []string{
		"deposit", "interest", "dividend", "salary", "stipend", "rentincome", "tips", "otherincome", "payroll",
	}
	fallbackInterestKeywords = []string{"interest", "intrst", "intr ", "intrest", "intr payment", "intrst pymnt", "intr pymnt"}
	rewardKeywords           = []string{"reward", "rebate", "cash back", "cashback"}
	rentalKeywords           = []string{"rental income", "rent income", "rent payment", "sigonfile"}
	rentalMerchantKeywords   = []string{"rental", "property management"}
	utilityHints             = []string{"electric", "electricity", "water", "gas", "internet", "phone", "cable", "utility", "utilities"}
	transferHints            = []string{"check", "wire", "transfer"}
	loanPaymentKeywords      = []string{
		"credit card", "creditcard", "cc payment", "card payment", "visa payment", "mastercard payment",
		"amex payment", "american express", "discover payment", "chase payment", "capital one", "citi payment",
		"mortgage", "home loan payment", "house payment", "property loan", "real estate loan",
		"student loan", "studentloan", "education loan", "navient", "sallie mae",
		"car loan", "auto loan", "vehicle loan", "auto payment", "car payment", "car financing",
		"personal loan", "unsecured loan", "signature loan", "ploc",
		"home equity", "heloc", "second mortgage",
		"loan payment", "loanpay", "loan pay", "installment loan", "payday loan", "title loan", "business loan",
	}
)

// Unifier reconciles the category reported by an importer (a bank aggregator
// or the statement itself) with the internal classifier, the detector and the
// account, and picks the transaction type to persist.
type Unifier struct {
	classifier *Classifier
	detector   Detector
	logger     *slog.Logger
}

// NewUnifier creates a unifier. detector may be nil.
func NewUnifier(classifier *Classifier, detector Detector, logger *slog.Logger) *Unifier {
	if classifier == nil {
		classifier = NewClassifier()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Unifier{classifier: classifier, detector: detector, logger: logger}
}

// DetermineCategory picks the category to persist.
func (u *Unifier) DetermineCategory(ctx context.Context, in UnifyInput) CategoryDecision {
	importerPrimary, importerDetailed := in.ImporterPrimary, in.ImporterDetailed
	if in.Source == SourcePlaid && (importerPrimary != "" || importerDetailed != "") {
		importerPrimary, importerDetailed = mapAggregatorCategory(importerPrimary, importerDetailed)
	}

	// file imports were classified by the import service already
	var parser string
	switch in.Source {
	case SourceCSV, SourceExcel, SourcePDF:
		parser = in.ImporterPrimary
	default:
		parser = u.classifier.Classify(ctx, Input{
			RawCategory:          in.ImporterDetailed,
			Description:          in.Description,
			Merchant:             in.Merchant,
			Amount:               in.Amount,
			PaymentChannel:       in.PaymentChannel,
			DebitCreditIndicator: in.DebitCreditIndicator,
			AccountType:          in.AccountType,
			AccountSubtype:       in.AccountSubtype,
		})
	}

	var ml Detection
	if u.detector != nil {
		ml = u.detector.Detect(in.Merchant, in.Description, in.Amount, in.PaymentChannel, "")
	}

	if fb := fallbackCategory(in, importerPrimary, importerDetailed, parser); fb != "" {
		return CategoryDecision{Primary: fb, Detailed: fb, Source: DecisionFallback, Confidence: 0.9}
	}

	d := u.reason(in, importerPrimary, importerDetailed, parser, ml)
	u.logger.Debug("category unified",
		"source", d.Source,
		"primary", d.Primary,
		"importer", importerPrimary,
		"parser", parser,
	)
	return d
}

func (u *Unifier) reason(in UnifyInput, importerPrimary, importerDetailed, parser string, ml Detection) CategoryDecision {
	desc := normalizeText(in.Description)
	merchant := normalizeText(in.Merchant)
	text := strings.TrimSpace(merchant + " " + desc)
	saysPayment := strings.EqualFold(importerPrimary, CategoryPayment) ||
		strings.EqualFold(parser, CategoryPayment) || strings.EqualFold(ml.Category, CategoryPayment)

	checking := isCheckingAccount(in.AccountType, in.AccountSubtype) ||
		(in.AccountType == "" && (strings.EqualFold(in.PaymentChannel, "ach") || strings.EqualFold(in.PaymentChannel, "online")))

	if in.Amount.IsPositive() && checking && saysPayment {
		switch {
		case containsAny(text, salaryKeywords...) || (strings.Contains(merchant, "amazon") && strings.Contains(text, "svcs")):
			return CategoryDecision{CategoryIncome, CategorySalary, DecisionRuleOverride, 0.95}
		case containsAny(text, rentalKeywords...) || containsAny(merchant, rentalMerchantKeywords...):
			return CategoryDecision{CategoryIncome, CategoryRentIncome, DecisionRuleOverride, 0.95}
		case containsAny(text, rewardKeywords...):
			return CategoryDecision{CategoryIncome, CategoryIncome, DecisionRuleOverride, 0.95}
		case !containsAny(text, "payment", "autopay", "credit card"):
			return CategoryDecision{CategoryDeposit, CategoryDeposit, DecisionRuleOverride, 0.95}
		}
	}

	if saysPayment && containsAnyWord(text, utilityHints...) {
		return CategoryDecision{CategoryUtilities, CategoryUtilities, DecisionRuleOverride, 0.95}
	}
	if saysPayment && containsAnyWord(text, transferHints...) {
		return CategoryDecision{CategoryTransfer, CategoryTransfer, DecisionRuleOverride, 0.95}
	}

	importerKnown := importerPrimary != "" && importerPrimary != CategoryOther && importerPrimary != "UNKNOWN_CATEGORY"
	if importerKnown && in.Source == SourcePlaid {
		return CategoryDecision{importerPrimary, orDefault(importerDetailed, importerPrimary), DecisionPlaid, 0.9}
	}
	if parser != "" && strings.EqualFold(parser, importerPrimary) {
		return CategoryDecision{parser, parser, DecisionHybrid, 0.95}
	}
	if ml.Category != "" && ml.Confidence > mlConfidence && strings.EqualFold(ml.Category, parser) {
		return CategoryDecision{ml.Category, ml.Category, DecisionML, ml.Confidence}
	}
	if parser != "" && parser != CategoryOther && importerPrimary == CategoryOther {
		return CategoryDecision{parser, parser, DecisionParser, 0.85}
	}
	if hint := accountCategoryHint(in.AccountType, in.AccountSubtype); hint != "" {
		return CategoryDecision{hint, hint, DecisionAccount, 0.9}
	}
	if ml.Category != "" && ml.Confidence > mlConfidence {
		return CategoryDecision{ml.Category, ml.Category, DecisionML, ml.Confidence}
	}
	if parser != "" && !importerKnown {
		return CategoryDecision{parser, parser, DecisionParser, 0.8}
	}
	if importerPrimary != "" {
		return CategoryDecision{importerPrimary, orDefault(importerDetailed, importerPrimary), DecisionImporter, 0.7}
	}
	if parser != "" {
		return CategoryDecision{parser, parser, DecisionParser, 0.7}
	}
	return CategoryDecision{CategoryOther, CategoryOther, DecisionDefault, 0.5}
}

// fallbackCategory catches income credits that arrive with a generic label.
func fallbackCategory(in UnifyInput, importerPrimary, importerDetailed, parser string) string {
	desc := normalizeText(in.Description)
	merchant := normalizeText(in.Merchant)
	text := strings.TrimSpace(merchant + " " + desc)

	if strings.EqualFold(in.PaymentChannel, "ach") && in.Amount.IsPositive() &&
		!isSpecificIncome(importerPrimary, importerDetailed, parser) {
		return incomeCategoryFromText(text)
	}

	if containsAny(text, fallbackInterestKeywords...) && !containsAny(text, "cd interest", "certificate") {
		if strings.EqualFold(importerPrimary, CategoryOther) || strings.EqualFold(parser, CategoryOther) ||
			strings.EqualFold(importerPrimary, CategoryIncome) {
			return CategoryInterest
		}
	}
	return ""
}

func isSpecificIncome(labels ...string) bool {
	for _, l := range labels {
		l = strings.ToLower(l)
		for _, c := range specificIncomeCategories {
			if l == c {
				return true
			}
		}
	}
	return false
}

func incomeCategoryFromText(text string) string {
	switch {
	case containsAny(text, salaryKeywords...):
		return CategorySalary
	case containsAny(text, fallbackInterestKeywords...) && !containsAny(text, "cd interest", "certificate"):
		return CategoryInterest
	case containsAny(text, "dividend", "div "):
		return CategoryDividend
	case strings.Contains(text, "stipend"):
		return CategoryStipend
	case containsAny(text, "rent income", "rental income", "rent payment"):
		return CategoryRentIncome
	case containsWord(text, "tip") || containsWord(text, "tips"):
		return CategoryTips
	}
	return CategoryDeposit
}

// mapAggregatorCategory turns aggregator category names such as
// FOOD_AND_DRINK into internal labels. Unknown names are kept.
func mapAggregatorCategory(primary, detailed string) (string, string) {
	mapped := ""
	for _, raw := range []string{detailed, primary} {
		if cat, ok := lookupStatic(raw); ok {
			mapped = cat
			break
		}
	}
	if mapped == "" {
		return primary, detailed
	}
	return mapped, mapped
}

func accountCategoryHint(accountType, accountSubtype string) string {
	switch {
	case isInvestmentAccount(accountType, accountSubtype):
		return CategoryInvestment
	case isLoanAccount(accountType, accountSubtype) || isCreditCardAccount(accountType, accountSubtype):
		return CategoryPayment
	}
	return ""
}

// DetermineType picks the transaction type to persist for a transaction whose
// category has been decided.
func (u *Unifier) DetermineType(in UnifyInput, primary, detailed string) TypeDecision {
	amount := in.Amount
	desc := normalizeText(in.Description)
	hasAccount := strings.TrimSpace(in.AccountType) != ""

	if hasAccount {
		switch {
		case isCreditCardAccount(in.AccountType, in.AccountSubtype):
			if amount.IsNegative() {
				return TypeDecision{TypeExpense, DecisionAccountType, 0.95}
			}
			if amount.IsPositive() {
				return TypeDecision{TypePayment, DecisionAccountType, 0.95}
			}
		case isInvestmentAccount(in.AccountType, in.AccountSubtype):
			return TypeDecision{TypeInvestment, DecisionAccountType, 0.95}
		case isLoanAccount(in.AccountType, in.AccountSubtype):
			return TypeDecision{TypePayment, DecisionAccountType, 0.95}
		case isCheckingAccount(in.AccountType, in.AccountSubtype):
			if amount.IsPositive() {
				return TypeDecision{TypeIncome, DecisionAccountType, 0.95}
			}
			if amount.IsNegative() {
				if isCardPayment(desc) {
					return TypeDecision{TypePayment, DecisionAccountType, 0.95}
				}
				return TypeDecision{TypeExpense, DecisionAccountType, 0.95}
			}
		}
	}

	p := strings.ToLower(primary)
	dl := strings.ToLower(detailed)
	switch {
	case p == CategoryPayment:
		if isCheckingAccount(in.AccountType, in.AccountSubtype) && amount.IsPositive() {
			return TypeDecision{TypeIncome, DecisionCategoryOverride, 0.95}
		}
		if dl == CategoryUtilities || containsAny(desc, transferHints...) {
			return TypeDecision{TypeExpense, DecisionCategoryOverride, 0.95}
		}
		if isLoanPayment(desc, in.AccountType, in.AccountSubtype) {
			return TypeDecision{TypePayment, DecisionCategory, 0.95}
		}
		return TypeDecision{TypeExpense, DecisionCategoryOverride, 0.95}
	case p == CategoryDeposit && amount.IsPositive():
		return TypeDecision{TypeIncome, DecisionCategory, 0.95}
	case strings.HasPrefix(p, strings.ToLower(CategoryInvestment)):
		return TypeDecision{TypeInvestment, DecisionCategory, 0.95}
	case p == CategoryIncome || p == CategorySalary:
		return TypeDecision{TypeIncome, DecisionCategory, 0.95}
	case p == CategoryUtilities || dl == CategoryUtilities:
		return TypeDecision{TypeExpense, DecisionCategory, 0.95}
	}

	if isLoanPayment(desc, in.AccountType, in.AccountSubtype) || isCardPayment(desc) {
		return TypeDecision{TypePayment, DecisionHybrid, 0.95}
	}

	base := DetermineType(in.AccountType, in.AccountSubtype, primary, detailed, amount)
	if base != TypeInvestment && base != TypePayment {
		switch indicatorDirection(in.DebitCreditIndicator) {
		case -1:
			return TypeDecision{TypeExpense, DecisionHybrid, 0.95}
		case 1:
			return TypeDecision{TypeIncome, DecisionHybrid, 0.95}
		}
	}

	switch {
	case hasAccount:
		return TypeDecision{base, DecisionAccount, 0.9}
	case primary != "":
		return TypeDecision{base, DecisionCategory, 0.8}
	case amount.IsPositive():
		return TypeDecision{base, DecisionAmount, 0.7}
	}
	return TypeDecision{base, DecisionDefault, 0.7}
}

// indicatorDirection reads a debit/credit column: -1 for debits, 1 for
// credits, 0 when unknown.
func indicatorDirection(indicator string) int {
	v := normalizeText(indicator)
	if v == "" {
		return 0
	}
	first := strings.Fields(v)[0]
	switch {
	case strings.Contains(v, "debit") || first == "dr" || first == "db":
		return -1
	case strings.Contains(v, "credit") || first == "cr":
		return 1
	}
	return 0
}

func isCardPayment(text string) bool {
	return containsAnyWord(text, cardIssuers...) && containsAnyWord(text, cardPaymentKeywords...)
}

func isLoanPayment(text, accountType, accountSubtype string) bool {
	if containsAny(text, loanPaymentKeywords...) {
		return true
	}
	return isLoanAccount(accountType, accountSubtype)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
