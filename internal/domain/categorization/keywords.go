package categorization

import (
	"sort"
	"strings"
)

// Keyword lists shared by the classifier stages. All entries are lowercase.
var (
	salaryKeywords = []string{"payroll", "salary", "paycheck", "direct deposit", "dir dep", "wage", "compensation"}

	feeAdjustmentKeywords = []string{"fee", "adjustment", "adj", "reversal", "refund of fee", "waive"}

	cashKeywords = []string{"atm", "cash withdrawal", "cash wdl", "atm withdrawal", "atm wd"}

	depositWords = []string{"deposit", "dep ", "mobile deposit", "remote deposit", "branch deposit"}

	interestKeywords = []string{"interest", "int earned", "int pymt", "int paid", "intrst", "apy"}

	dividendKeywords = []string{"dividend", "div reinv", "qualified div", "ordinary div"}

	rsuKeywords = []string{"restricted stock", "stock vest", "shares vested", "vesting", "vested"}

	cardIssuers = []string{
		"chase", "amex", "american express", "citi", "citibank", "citicard", "capital one", "capitalone",
		"discover", "barclays", "barclaycard", "synchrony", "wells fargo card", "wf credit card",
		"bank of america", "bofa", "us bank", "usaa", "apple card", "goldman sachs", "credit card",
		"credit crd", "card services", "cardmember", "storecrd", "store card",
	}

	cardPaymentKeywords = []string{
		"autopay", "auto pay", "auto-pay", "epay", "e-payment", "epayment", "payment", "pmt", "thank you", "pymt",
	}

	loanKeywords = []string{"loan", "mortgage", "heloc", "home equity", "auto finance", "student ln", "sallie mae", "navient", "nelnet"}

	escrowKeywords = []string{"escrow", "property tax", "prop tax", "homeowners ins", "hazard ins", "insurance"}

	billKeywords = []string{"bill", "utility", "utilities", "hoa", "water", "sewer"}

	utilityKeywords = []string{
		"electric", "energy", "ener", "power", "gas co", "water", "sewer", "utility", "utilities",
		"trash", "garbage", "waste", "internet", "cable", "broadband", "wireless", "phone", "light",
	}

	billPayKeywords = []string{"billpay", "bill pay", "bill pmt", "billpmt", "webpay", "web pay", "autopay", "auto pay", "ppd", "payment"}

	brokerages = []string{
		"fidelity", "vanguard", "schwab", "charles schwab", "morgan stanley", "morganstanley", "etrade",
		"e*trade", "e-trade", "td ameritrade", "robinhood", "merrill", "interactive brokers", "webull",
		"wealthfront", "betterment", "m1 finance", "sofi invest", "public.com", "ally invest", "tastytrade",
		"computershare", "stash", "acorns",
	}

	transferKeywords = []string{
		"transfer", "xfer", "trnsfr", "wire", "zelle", "venmo", "cash app", "cashapp", "wise",
		"remitly", "western union", "moneygram", "xoom", "revolut", "acct xfer", "online transfer",
	}

	investmentFeeKeywords      = []string{"fee", "commission", "advisory", "management charge", "expense"}
	investmentPurchaseKeywords = []string{"buy", "bought", "purchase", "contribution", "reinvest", "reinvestment", "subscription"}
	investmentSaleKeywords     = []string{"sell", "sold", "sale", "redemption", "redeem", "distribution", "withdrawal", "liquidation", "maturity"}
	transferInKeywords         = []string{"transfer in", "transfer from", "journal", "deposit", "incoming"}

	stipendKeywords    = []string{"stipend", "scholarship", "fellowship", "grant"}
	rentIncomeKeywords = []string{"rent received", "rental income", "tenant", "rent from"}
	tipsKeywords       = []string{"tip", "tips", "gratuity"}

	airportCartKeywords = []string{"smarte carte", "smartecarte", "luggage cart", "baggage cart", "cart", "wheelchair", "chair"}
	airportKeywords     = []string{"airport", "sea-tac", "seatac", "seattleap", "intl airport", "terminal", "smarte carte", "smartecarte"}
)

// checkNumberPattern matches "check 176", "chk #1042" and "cheque no. 55".
const checkNumberPattern = `\b(check|chk|cheque)\s*(#|no\.?|number)?\s*\d+`

// staticCategoryMap resolves raw category codes and common importer category
// names. Keys are normalized (lowercase, underscores as spaces).
var staticCategoryMap = map[string]string{
	// bank transaction type codes
	"acct xfer":        CategoryTransfer,
	"account transfer": CategoryTransfer,
	"check paid":       CategoryPayment,
	"check":            CategoryPayment,
	"ach debit":        CategoryPayment,
	"ach credit":       CategoryDeposit,
	"fee transaction":  CategoryFee,
	"loan pmt":         CategoryPayment,
	"loan payment":     CategoryPayment,
	"quickpay debit":   CategoryTransfer,
	"quickpay credit":  CategoryTransfer,
	"wire outgoing":    CategoryTransfer,
	"wire incoming":    CategoryTransfer,
	"atm":              CategoryCash,
	"atm withdrawal":   CategoryCash,
	"misc debit":       CategoryOther,
	"misc credit":      CategoryDeposit,
	"deposit":          CategoryDeposit,
	"dep":              CategoryDeposit,
	"interest":         CategoryInterest,
	"dividend":         CategoryDividend,
	"credit":           CategoryIncome,
	"debit card":       CategoryShopping,
	"bill payment":     CategoryPayment,
	"refund":           CategoryOther,
	"adjustment":       CategoryOther,
	"service charge":   CategoryFee,
	"overdraft":        CategoryFee,
	"payroll":          CategorySalary,
	"direct deposit":   CategorySalary,
	"paycheck":         CategorySalary,

	// aggregator and card issuer category names
	"food and drink":        CategoryDining,
	"food & drink":          CategoryDining,
	"restaurants":           CategoryDining,
	"restaurant":            CategoryDining,
	"dining":                CategoryDining,
	"coffee shop":           CategoryDining,
	"fast food":             CategoryDining,
	"groceries":             CategoryGroceries,
	"grocery":               CategoryGroceries,
	"supermarkets":          CategoryGroceries,
	"rent and utilities":    CategoryUtilities,
	"utilities":             CategoryUtilities,
	"bills & utilities":     CategoryUtilities,
	"bills and utilities":   CategoryUtilities,
	"bank fees":             CategoryFee,
	"fees & adjustments":    CategoryFee,
	"fees and adjustments":  CategoryFee,
	"general merchandise":   CategoryShopping,
	"shopping":              CategoryShopping,
	"merchandise":           CategoryShopping,
	"home":                  CategoryShopping,
	"home improvement":      CategoryShopping,
	"loan payments":         CategoryPayment,
	"transfer in":           CategoryTransfer,
	"transfer out":          CategoryTransfer,
	"transfer":              CategoryTransfer,
	"medical":               CategoryHealth,
	"health & wellness":     CategoryHealth,
	"health and wellness":   CategoryHealth,
	"personal care":         CategoryHealth,
	"health":                CategoryHealth,
	"gas":                   CategoryTransportation,
	"gas stations":          CategoryTransportation,
	"automotive":            CategoryTransportation,
	"transportation":        CategoryTransportation,
	"travel":                CategoryTravel,
	"airlines":              CategoryTravel,
	"lodging":               CategoryTravel,
	"entertainment":         CategoryEntertainment,
	"general services":      CategoryOther,
	"gifts & donations":     CategoryCharity,
	"gifts and donations":   CategoryCharity,
	"education":             CategoryEducation,
	"professional services": CategoryOther,
	"income":                CategoryIncome,
	"payment":               CategoryPayment,
	"payment/credit":        CategoryPayment,
	"bills":                 CategoryUtilities,
	"insurance":             CategoryInsurance,
	"pets":                  CategoryPet,
	"subscriptions":         CategorySubscriptions,
	"software":              CategoryTech,
	"electronics":           CategoryShopping,
	"investment":            CategoryInvestment,
	"cash":                  CategoryCash,

	"government and non profit": CategoryCharity,
}

// staticKeysByLength lists the map keys longest first for substring lookups.
var staticKeysByLength = func() []string {
	keys := make([]string, 0, len(staticCategoryMap))
	for k := range staticCategoryMap {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// lookupStatic maps a raw category through staticCategoryMap. An exact match
// wins, then the longest key found on word boundaries. The bare "credit" entry
// is skipped for ACH codes, which are handled by dedicated stages.
func lookupStatic(raw string) (string, bool) {
	key := normalizeText(raw)
	if key == "" {
		return "", false
	}
	if cat, ok := staticCategoryMap[key]; ok {
		return cat, true
	}
	for _, k := range staticKeysByLength {
		if k == "credit" && strings.Contains(key, "ach") {
			continue
		}
		if containsWord(key, k) {
			return staticCategoryMap[k], true
		}
	}
	return "", false
}
