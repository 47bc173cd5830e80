package account

import "strings"

// institutionKeywords are matched against filenames and free text. Order
// matters: longer names come before their abbreviations so "bank of america"
// is found before "boa".
var institutionKeywords = []string{
	// US major banks
	"bank of america", "wells fargo", "citibank", "citicards", "us bank", "capital one",
	"american express", "jpmorgan chase", "jpmorgan", "chase", "citi", "discover", "synchrony",
	"amex", "jpmc", "jpm", "bofa", "usbank", "capone",
	// US regional banks and credit unions
	"pnc", "truist", "citizens bank", "fifth third", "keybank", "huntington", "regions bank",
	"m&t bank", "comerica", "zions bank", "first citizens", "east west bank", "eastwest bank",
	"cathay bank", "bank of the west", "first republic", "silicon valley bank", "svb",
	"navy federal", "penfed", "alliant", "ally bank", "chime",
	// US brokerages
	"fidelity", "schwab", "vanguard", "morgan stanley", "goldman sachs", "merrill lynch",
	"edward jones", "raymond james", "ameriprise", "td ameritrade", "etrade", "robinhood",
	"interactive brokers", "webull", "m1 finance",
	// UK
	"hsbc", "barclays", "lloyds", "natwest", "royal bank of scotland", "santander uk",
	"halifax", "nationwide", "first direct", "monzo", "revolut", "starling",
	// Europe
	"bnp paribas", "credit agricole", "societe generale", "credit mutuel", "la banque postale",
	"deutsche bank", "commerzbank", "sparkasse", "volksbank", "postbank", "comdirect",
	"unicredit", "intesa sanpaolo", "bbva", "santander", "caixa", "sabadell", "bankinter",
	"rabobank", "abn amro", "ubs", "credit suisse", "postfinance", "kbc", "belfius",
	"danske bank", "nordea", "handelsbanken", "swedbank", "raiffeisen", "boursorama", "degiro",
	// India
	"state bank of india", "sbi", "icici", "hdfc", "axis bank", "punjab national bank",
	"kotak", "yes bank", "indusind", "bank of baroda", "paytm", "phonepe", "zerodha", "groww",
	// China and Japan
	"industrial and commercial bank", "china construction bank", "bank of china",
	"china merchants bank", "icbc", "mufg", "mizuho", "smbc", "sumitomo mitsui", "resona",
	// Asia Pacific
	"dbs", "ocbc", "uob", "maybank", "cimb", "commonwealth bank", "westpac", "anz",
	"macquarie", "kiwibank",
	// Canada
	"rbc", "td canada", "scotiabank", "bmo", "cibc", "desjardins", "tangerine",
	// Latin America
	"banco do brasil", "itau", "bradesco", "nubank", "banorte", "bancolombia",
	// Card networks
	"mastercard", "visa", "jcb", "unionpay", "diners club", "rupay",
}

// institutionNames maps matched keywords to display names.
var institutionNames = map[string]string{
	"bofa":             "Bank of America",
	"bank of america":  "Bank of America",
	"wf":               "Wells Fargo",
	"wells fargo":      "Wells Fargo",
	"usbank":           "U.S. Bank",
	"us bank":          "U.S. Bank",
	"capone":           "Capital One",
	"capitol one":      "Capital One",
	"capital one":      "Capital One",
	"jpm":              "JPMorgan Chase",
	"jpmc":             "JPMorgan Chase",
	"jpmorgan":         "JPMorgan Chase",
	"jpmorgan chase":   "JPMorgan Chase",
	"amex":             "American Express",
	"american express": "American Express",
	"chase":            "Chase",
	"citi":             "Citibank",
	"citibank":         "Citibank",
	"citicards":        "Citibank",
	"east west bank":   "East West Bank",
	"eastwest bank":    "East West Bank",
}

// accountTypePattern maps a keyword to a normalized account type.
type accountTypePattern struct {
	keyword     string
	accountType string
}

// accountTypePatterns is checked in order. Multi-word and card phrases come
// before the short ambiguous keywords.
var accountTypePatterns = []accountTypePattern{
	{"credit card", TypeCredit},
	{"creditcard", TypeCredit},
	{"line of credit", TypeLoan},
	{"credit line", TypeLoan},
	{"home equity", TypeLoan},
	{"heloc", TypeLoan},
	{"mortgage", TypeLoan},
	{"home loan", TypeLoan},
	{"car loan", TypeLoan},
	{"auto loan", TypeLoan},
	{"student loan", TypeLoan},
	{"personal loan", TypeLoan},
	{"overdraft", TypeLoan},
	{"loan", TypeLoan},
	{"certificate of deposit", TypeDepository},
	{"money market", TypeDepository},
	{"fixed deposit", TypeDepository},
	{"term deposit", TypeDepository},
	{"time deposit", TypeDepository},
	{"checking", TypeDepository},
	{"savings", TypeDepository},
	{"saving", TypeDepository},
	{"current", TypeDepository},
	{"giro", TypeDepository},
	{"brokerage", TypeInvestment},
	{"investment", TypeInvestment},
	{"retirement", TypeInvestment},
	{"rothira", TypeInvestment},
	{"roth", TypeInvestment},
	{"401k", TypeInvestment},
	{"403b", TypeInvestment},
	{"ira", TypeInvestment},
	{"pension", TypeInvestment},
	{"superannuation", TypeInvestment},
	{"mutual fund", TypeInvestment},
	{"demat", TypeInvestment},
	{"trading", TypeInvestment},
	{"stocks", TypeInvestment},
	{"crypto", TypeInvestment},
	{"credit", TypeCredit},
	{"card", TypeCredit},
	{"visa", TypeCredit},
	{"mastercard", TypeCredit},
	{"amex", TypeCredit},
	{"american express", TypeCredit},
}

var accountNumberKeywords = []string{
	"account number", "account #", "account no", "accountno", "acct number", "acct #", "acct no",
	"card number", "card #", "card no", "credit card number", "credit card #", "credit card no",
	"debit card number", "debit card #", "debit card no",
	"savings account number", "savings account #", "checking account number", "checking account #",
	"savings #", "checking #",
	"investment account number", "investment account #", "brokerage account number",
	"brokerage account #", "investment #", "brokerage #", "investment account", "brokerage account",
	"loan account number", "loan account #", "loan number", "loan #", "loan no",
	"mortgage account number", "mortgage account #", "mortgage number", "mortgage #",
	"account ending", "card ending", "acct ending", "account ending in", "card ending in",
	"acct ending in", "account ending with", "card ending with", "acct ending with",
	"last 4 digits", "last 4 numbers", "last four digits", "last four numbers",
	"account identifier", "account id", "account code",
}

var institutionHeaderKeywords = []string{
	"institution", "institution name", "bank", "bank name", "financial institution",
	"issuer", "issuer name", "card issuer", "banking institution",
}

var productNameKeywords = []string{
	"product name", "product", "card name", "account product", "card product",
	"product description", "account description", "card description",
	"product type", "card type", "account type name",
}

var accountTypeKeywords = []string{
	"account type", "type", "account category", "category",
	"product type", "card type", "account classification",
}

// accountNumberColumnAliases are short column names used by exports that
// repeat the account on every row.
var accountNumberColumnAliases = []string{
	"account", "card", "card no.", "card last 4", "card ending in", "iban",
	"konto", "kontonummer", "conta", "numero de cuenta",
}

// transactionColumnKeywords mark a header row as a transaction table.
var transactionColumnKeywords = []string{
	"date", "posting date", "transaction date", "value date",
	"amount", "debit", "credit", "balance",
	"description", "details", "memo", "notes",
	"type", "transaction type", "category",
	"check", "check number", "check or slip", "reference", "ref",
}

// AccountNumberKeywords returns the header names that carry an account or card number.
func AccountNumberKeywords() []string {
	return append([]string(nil), accountNumberKeywords...)
}

// InstitutionKeywords returns the header names that carry an institution or product name.
func InstitutionKeywords() []string {
	out := make([]string, 0, len(institutionHeaderKeywords)+len(productNameKeywords))
	out = append(out, institutionHeaderKeywords...)
	return append(out, productNameKeywords...)
}

// AccountTypeKeywords returns the header names that carry an account type.
func AccountTypeKeywords() []string {
	return append([]string(nil), accountTypeKeywords...)
}

func accountNumberColumns() []string {
	out := make([]string, 0, len(accountNumberKeywords)+len(accountNumberColumnAliases))
	out = append(out, accountNumberKeywords...)
	return append(out, accountNumberColumnAliases...)
}

// rowAccountTypeColumns drops the generic names that mean transaction type
// or category inside a transaction table.
func rowAccountTypeColumns() []string {
	out := make([]string, 0, len(accountTypeKeywords))
	for _, k := range accountTypeKeywords {
		if k != "type" && k != "category" {
			out = append(out, k)
		}
	}
	return out
}

// normalizeInstitutionName maps a matched keyword to its display name.
func normalizeInstitutionName(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ""
	}
	if name, ok := institutionNames[strings.ToLower(keyword)]; ok {
		return name
	}
	return strings.ToUpper(keyword[:1]) + keyword[1:]
}
