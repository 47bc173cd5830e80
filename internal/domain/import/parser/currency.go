package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aksumit1/budgetbuddy-backend/pkg/money"
)

type currencySymbol struct {
	symbol string
	code   string // empty means resolved from context (yen/yuan)
}

// Multi-character dollar forms precede the bare "$".
var currencySymbols = []currencySymbol{
	{"R$", "BRL"},
	{"AU$", "AUD"},
	{"A$", "AUD"},
	{"CA$", "CAD"},
	{"C$", "CAD"},
	{"NZ$", "NZD"},
	{"HK$", "HKD"},
	{"S$", "SGD"},
	{"US$", "USD"},
	{"MX$", "MXN"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"₹", "INR"},
	{"Rs.", "INR"},
	{"₽", "RUB"},
	{"₩", "KRW"},
	{"₺", "TRY"},
	{"₫", "VND"},
	{"₪", "ILS"},
	{"฿", "THB"},
	{"₱", "PHP"},
	{"¥", ""},
	{"￥", ""},
	{"元", "CNY"},
	{"円", "JPY"},
	{"$", "USD"},
}

var chinaKeywords = []string{
	"china", "chinese", "cny", "rmb", "yuan", "unionpay", "alipay", "wechat", "icbc", "citic",
	"交易", "人民币",
}

type contextCurrency struct {
	code     string
	keywords []string
}

// Institution and country hints found in header lines or filenames.
var contextCurrencies = []contextCurrency{
	{money.CNY, chinaKeywords},
	{money.JPY, []string{"jcb", "mufg", "smbc", "mizuho", "rakuten", "japan", "japanese", "jpy", "取引日", "金額", "円"}},
	{money.INR, []string{"hdfc", "icici", "sbi", "axis bank", "kotak", "india", "indian", "rupee", "inr", "zerodha", "paytm"}},
	{money.GBP, []string{"barclays", "hsbc uk", "lloyds", "natwest", "monzo", "halifax", "santander uk", "starling", "gbp", "sterling"}},
	{money.EUR, []string{"comdirect", "boursorama", "sparkasse", "commerzbank", "deutsche bank", "n26", "bnp", "societe generale", "credit agricole", "eur", "euro", "betrag", "montant", "importe"}},
	{money.BRL, []string{"nubank", "itau", "itaú", "bradesco", "banco do brasil", "brl", "reais"}},
	{money.CAD, []string{"rbc", "td canada", "scotiabank", "bmo", "cibc", "tangerine", "desjardins", "cad", "canada"}},
	{money.AUD, []string{"commbank", "westpac", "anz", "nab", "aud", "australia"}},
	{"KRW", []string{"kookmin", "shinhan", "woori", "krw", "korea", "거래일", "금액"}},
}

var contextMatchers = buildContextMatchers()

type contextMatcher struct {
	code string
	res  []*regexp.Regexp
	subs []string
}

func buildContextMatchers() []contextMatcher {
	out := make([]contextMatcher, 0, len(contextCurrencies))
	for _, cc := range contextCurrencies {
		m := contextMatcher{code: cc.code}
		for _, kw := range cc.keywords {
			if isASCII(kw) {
				m.res = append(m.res, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
			} else {
				m.subs = append(m.subs, kw)
			}
		}
		out = append(out, m)
	}
	return out
}

func (m contextMatcher) match(text string) bool {
	for _, s := range m.subs {
		if strings.Contains(text, s) {
			return true
		}
	}
	for _, re := range m.res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// contextText joins header line and filename into a lowercase string where
// filename separators read as word breaks.
func contextText(headerLine, filename string) string {
	name := strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(filename)
	return strings.ToLower(headerLine + " " + name)
}

// DetectCurrency resolves the currency of an amount cell. It returns the ISO
// code and the marker found in the value (symbol or code), which the caller
// strips before numeric parsing. found is false when the code is a default.
func DetectCurrency(value, headerLine, filename string) (code, marker string, found bool) {
	for _, cs := range currencySymbols {
		if !strings.Contains(value, cs.symbol) {
			continue
		}
		if cs.code != "" {
			return cs.code, cs.symbol, true
		}
		if matchesAny(contextText(headerLine, filename), chinaKeywords) {
			return money.CNY, cs.symbol, true
		}
		return money.JPY, cs.symbol, true
	}

	if c := currencyCodeIn(value); c != "" {
		return c, c, true
	}

	ctx := contextText(headerLine, filename)
	for _, m := range contextMatchers {
		if m.match(ctx) {
			return m.code, "", true
		}
	}
	return money.USD, "", false
}

// currencyCodeIn returns the first three-letter run in value that is a known ISO code.
func currencyCodeIn(value string) string {
	runs := strings.FieldsFunc(value, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z')
	})
	for _, run := range runs {
		if len(run) != 3 {
			continue
		}
		upper := strings.ToUpper(run)
		if money.IsKnownCurrency(upper) {
			return upper
		}
	}
	return ""
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
