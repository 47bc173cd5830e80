package categorization

import (
	"regexp"
	"strings"
)

var checkNumberRe = regexp.MustCompile(checkNumberPattern)

// Stage is one step of the classification cascade. Fn reports the category and
// whether the stage decided.
type Stage struct {
	Name string
	Fn   func(*Context) (string, bool)
}

// Context carries the normalized fields of one transaction through the stages.
type Context struct {
	Input

	raw       string
	desc      string
	merchant  string
	channel   string
	indicator string
	text      string // description and merchant together

	positive   bool
	negative   bool
	investment bool

	c *Classifier
}

func newContext(c *Classifier, in Input) *Context {
	x := &Context{
		Input:     in,
		raw:       normalizeText(in.RawCategory),
		desc:      normalizeText(in.Description),
		merchant:  normalizeText(in.Merchant),
		channel:   normalizeText(in.PaymentChannel),
		indicator: normalizeText(in.DebitCreditIndicator),
		positive:  in.Amount.IsPositive(),
		negative:  in.Amount.IsNegative(),
		c:         c,
	}
	x.text = strings.TrimSpace(x.desc + " " + x.merchant)
	x.investment = strings.EqualFold(in.TransactionType, string(TypeInvestment)) ||
		isInvestmentAccount(in.AccountType, in.AccountSubtype)
	return x
}

// defaultStages returns the cascade in evaluation order. The first stage that
// decides wins.
func defaultStages() []Stage {
	return []Stage{
		{"zero_amount", stageZeroAmount},
		{"ach_credit", stageACHCredit},
		{"fee", stageFee},
		{"cash", stageCash},
		{"check", stageCheck},
		{"provider", stageProvider},
		{"utility_bill", stageUtilityBill},
		{"interest", stageInterest},
		{"dividend", stageDividend},
		{"rsu", stageRSU},
		{"credit_card_payment", stageCreditCardPayment},
		{"loan", stageLoan},
		{"investment_transfer", stageInvestmentTransfer},
		{"transfer", stageTransfer},
		{"account_context", stageAccountContext},
		{"merchant_rules", stageMerchantRules},
		{"detector", stageDetector},
		{"merchant_table", stageMerchantTable},
		{"description_keywords", stageDescriptionKeywords},
		{"ach_deposit_default", stageACHDepositDefault},
		{"static_map", stageStaticMap},
		{"default", func(*Context) (string, bool) { return CategoryOther, true }},
	}
}

func stageZeroAmount(x *Context) (string, bool) {
	if !x.Amount.IsZero() {
		return "", false
	}
	all := x.raw + " " + x.text
	switch {
	case containsAnyWord(all, feeAdjustmentKeywords...):
		return CategoryOther, true
	case containsAnyWord(all, transferKeywords...):
		return CategoryPayment, true
	}
	if x.raw != "" && !strings.Contains(x.raw, "fee") {
		if cat, ok := lookupStatic(x.raw); ok {
			return cat, true
		}
	}
	return CategoryOther, true
}

func stageACHCredit(x *Context) (string, bool) {
	if !x.positive || !strings.Contains(x.raw, "ach credit") {
		return "", false
	}
	if containsAny(x.text, salaryKeywords...) {
		return CategorySalary, true
	}
	return CategoryDeposit, true
}

func stageFee(x *Context) (string, bool) {
	if containsWord(x.raw, "fee") || strings.Contains(x.raw, "service charge") ||
		strings.Contains(x.desc, "safe deposit box") {
		return CategoryFee, true
	}
	return "", false
}

func stageCash(x *Context) (string, bool) {
	for _, f := range []string{x.raw, x.channel, x.indicator, x.desc, x.merchant} {
		if f == "" || containsAny(f, "cash advance", "cash adv") {
			continue
		}
		if containsAnyWord(f, cashKeywords...) {
			return CategoryCash, true
		}
	}
	// teller withdrawals carry no ATM marker
	if x.negative && !x.investment && containsWord(x.desc, "withdrawal") &&
		!containsAnyWord(x.text, transferKeywords...) && !containsWord(x.text, "ach") {
		return CategoryCash, true
	}
	return "", false
}

func stageCheck(x *Context) (string, bool) {
	isCheck := x.indicator == "check" || x.indicator == "chk" ||
		containsWord(x.raw, "check") || checkNumberRe.MatchString(x.desc)
	if !isCheck {
		return "", false
	}
	if x.positive && containsAny(x.text+" "+x.raw, "deposit") {
		return "", false
	}
	return CategoryPayment, true
}

func stageProvider(x *Context) (string, bool) {
	if x.c.providers.Match(x.text) != nil {
		return CategoryUtilities, true
	}
	if strings.Contains(x.text, "city of") && strings.Contains(x.text, "utilit") {
		return CategoryUtilities, true
	}
	return "", false
}

func stageUtilityBill(x *Context) (string, bool) {
	if containsAnyWord(x.text, utilityKeywords...) &&
		containsAnyWord(x.text, billPayKeywords...) &&
		!containsAnyWord(x.text, cardIssuers...) {
		return CategoryUtilities, true
	}
	return "", false
}

func stageInterest(x *Context) (string, bool) {
	matched := strings.Contains(x.raw, "interest") ||
		(x.positive && containsAnyWord(x.text, interestKeywords...) &&
			!containsAny(x.text, "cd interest", "certificate"))
	if !matched {
		return "", false
	}
	if x.investment {
		return CategoryInvestmentInterest, true
	}
	return CategoryInterest, true
}

func stageDividend(x *Context) (string, bool) {
	if !strings.Contains(x.raw, "dividend") && !containsAnyWord(x.text, dividendKeywords...) {
		return "", false
	}
	if x.investment {
		return CategoryInvestmentDividend, true
	}
	return CategoryDividend, true
}

func stageRSU(x *Context) (string, bool) {
	if x.positive && (containsWord(x.text, "rsu") || containsAny(x.text, rsuKeywords...)) {
		return CategoryRSU, true
	}
	return "", false
}

func stageCreditCardPayment(x *Context) (string, bool) {
	if containsAnyWord(x.text, cardIssuers...) && containsAnyWord(x.text, cardPaymentKeywords...) {
		return CategoryPayment, true
	}
	if isCreditCardAccount(x.AccountType, x.AccountSubtype) &&
		containsAny(x.desc, "payment thank you", "autopay payment", "payment received") {
		return CategoryPayment, true
	}
	return "", false
}

func stageLoan(x *Context) (string, bool) {
	if !containsAnyWord(x.text, loanKeywords...) {
		return "", false
	}
	switch {
	case containsAny(x.text, escrowKeywords...):
		return CategoryLoanEscrow, true
	case containsAnyWord(x.text, billKeywords...):
		return CategoryLoanBills, true
	}
	return CategoryPayment, true
}

func stageInvestmentTransfer(x *Context) (string, bool) {
	if !containsAnyWord(x.text, brokerages...) || !containsAnyWord(x.text, transferKeywords...) {
		return "", false
	}
	if x.negative {
		return CategoryInvestmentTransfer, true
	}
	return CategoryDeposit, true
}

func stageTransfer(x *Context) (string, bool) {
	if containsAnyWord(x.text, transferKeywords...) && !containsWord(x.text, "fee") {
		return CategoryTransfer, true
	}
	return "", false
}

func stageAccountContext(x *Context) (string, bool) {
	if x.investment {
		switch {
		case x.negative && containsAnyWord(x.text, investmentFeeKeywords...):
			return CategoryInvestmentFees, true
		case x.negative && containsAnyWord(x.text, investmentPurchaseKeywords...):
			return CategoryInvestmentPurchase, true
		case x.positive && containsAnyWord(x.text, investmentSaleKeywords...):
			return CategoryInvestmentSold, true
		case x.positive && containsAny(x.text, transferInKeywords...):
			return CategoryDeposit, true
		}
		return "", false
	}

	if !x.positive || !strings.EqualFold(x.TransactionType, string(TypeIncome)) {
		return "", false
	}
	switch {
	case containsAny(x.text, salaryKeywords...):
		return CategorySalary, true
	case containsAnyWord(x.text, stipendKeywords...):
		return CategoryStipend, true
	case containsAny(x.text, rentIncomeKeywords...):
		return CategoryRentIncome, true
	case containsAnyWord(x.text, tipsKeywords...):
		return CategoryTips, true
	case containsWord(x.text, "ach") || containsAny(x.text, depositWords...):
		return CategoryDeposit, true
	}
	return "", false
}

func stageMerchantRules(x *Context) (string, bool) {
	if x.c.rules.IsEmpty() {
		return "", false
	}
	for _, s := range []string{x.merchant, x.desc} {
		if m := x.c.rules.Match(s); m != nil {
			return m.Category, true
		}
	}
	return "", false
}

func stageDetector(x *Context) (string, bool) {
	if x.c.detector == nil {
		return "", false
	}
	d := x.c.detector.Detect(x.Merchant, x.Description, x.Amount, x.PaymentChannel, x.RawCategory)
	if d.Category == "" {
		return "", false
	}
	threshold := 0.55
	if d.Method == MethodFuzzyMatch {
		threshold = 0.50
	}
	if d.Confidence < threshold {
		return "", false
	}
	// airport luggage carts and wheelchairs get confused with power utilities
	if d.Category == CategoryUtilities &&
		containsAny(x.text, airportKeywords...) && containsAny(x.text, airportCartKeywords...) {
		return "", false
	}
	return d.Category, true
}

func stageMerchantTable(x *Context) (string, bool) {
	for _, s := range []string{x.merchant, x.desc} {
		if m := x.c.merchants.Match(s); m != nil {
			return m.Category, true
		}
	}
	return "", false
}

func stageDescriptionKeywords(x *Context) (string, bool) {
	if m := x.c.keywords.Match(x.text); m != nil {
		return m.Category, true
	}
	return "", false
}

func stageACHDepositDefault(x *Context) (string, bool) {
	if !x.positive {
		return "", false
	}
	if x.channel == "ach" || containsWord(x.text, "ach") || containsAny(x.text, depositWords...) {
		if containsAny(x.text, salaryKeywords...) {
			return CategorySalary, true
		}
		return CategoryDeposit, true
	}
	return "", false
}

func stageStaticMap(x *Context) (string, bool) {
	return lookupStatic(x.raw)
}
