package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		header       string
		filename     string
		wantAmount   string
		wantCurrency string
	}{
		{"dollar with thousands", "$1,234.56", "", "", "1234.56", "USD"},
		{"code prefix", "USD 1234.56", "", "", "1234.56", "USD"},
		{"code suffix", "1,234.56 USD", "", "", "1234.56", "USD"},
		{"european decimal", "1.234,56", "", "", "1234.56", "USD"},
		{"european with euro", "€1.234,56", "", "", "1234.56", "EUR"},
		{"european comma only", "-4,50", "", "", "-4.5", "USD"},
		{"parentheses negative", "(200.00)", "", "", "-200", "USD"},
		{"parentheses with symbol", "($45.10)", "", "", "-45.1", "USD"},
		{"leading minus before symbol", "-$50", "", "", "-50", "USD"},
		{"minus after symbol", "$-50", "", "", "-50", "USD"},
		{"trailing minus", "75.00-", "", "", "-75", "USD"},
		{"debit suffix", "120.00 DR", "", "", "-120", "USD"},
		{"credit suffix", "120.00 CR", "", "", "120", "USD"},
		{"explicit plus", "+10", "", "", "10", "USD"},
		{"pound", "£12.30", "", "", "12.3", "GBP"},
		{"rupee with thousands", "₹1,234.56", "", "", "1234.56", "INR"},
		{"real", "R$ 1.234,56", "", "", "1234.56", "BRL"},
		{"canadian", "C$20", "", "", "20", "CAD"},
		{"yen defaults to JPY", "¥5,000", "", "", "5000", "JPY"},
		{"yen with china header", "¥5,000", "交易日期,交易描述,金额", "unionpay_credit.csv", "5000", "CNY"},
		{"yen with japanese header", "¥5,000", "取引日,摘要,金額", "jcb_credit_card.csv", "5000", "JPY"},
		{"context only china", "88.00", "交易日期,交易描述,金额", "statement.csv", "88", "CNY"},
		{"context filename", "10.00", "Date,Amount", "barclays_export.csv", "10", "GBP"},
		{"rounds half up", "10.125", "", "", "10.13", "USD"},
		{"non breaking space", "1 234,56 €", "", "", "1234.56", "EUR"},
		{"swiss apostrophe", "CHF 1'234.50", "", "", "1234.5", "CHF"},
		{"zero", "0.00", "", "", "0", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input, tt.header, tt.filename)
			require.True(t, got.OK, "failed to parse %q", tt.input)
			assert.Equal(t, tt.wantAmount, got.Amount.String())
			assert.Equal(t, tt.wantCurrency, got.Currency)
			assert.False(t, got.Clamped)
		})
	}
}

func TestParseAmount_CurrencyStrippingIsConsistent(t *testing.T) {
	inputs := []string{"$1,234.56", "USD 1234.56", "1,234.56 USD"}
	for _, in := range inputs {
		got := ParseAmount(in, "", "")
		require.True(t, got.OK)
		assert.Equal(t, "1234.56", got.Amount.StringFixed(2))
		assert.Equal(t, "USD", got.Currency)
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "$", "1.2.3", "--5", "n/a"} {
		t.Run(in, func(t *testing.T) {
			got := ParseAmount(in, "", "")
			assert.False(t, got.OK)
			assert.NotEmpty(t, got.Currency)
		})
	}
}

func TestParseAmount_Clamps(t *testing.T) {
	got := ParseAmount("5,000,000,000.00", "", "")
	require.True(t, got.OK)
	assert.True(t, got.Clamped)
	assert.Equal(t, "999999999.99", got.Amount.StringFixed(2))

	got = ParseAmount("-5000000000", "", "")
	require.True(t, got.OK)
	assert.True(t, got.Clamped)
	assert.Equal(t, "-999999999.99", got.Amount.StringFixed(2))
}

func TestDetectCurrency(t *testing.T) {
	code, marker, found := DetectCurrency("A$10", "", "")
	assert.Equal(t, "AUD", code)
	assert.Equal(t, "A$", marker)
	assert.True(t, found)

	code, _, found = DetectCurrency("10.00", "Date,Amount", "chase_checking.csv")
	assert.Equal(t, "USD", code)
	assert.False(t, found)

	code, marker, found = DetectCurrency("10.00 eur", "", "")
	assert.Equal(t, "EUR", code)
	assert.Equal(t, "EUR", marker)
	assert.True(t, found)

	code, _, _ = DetectCurrency("500", "Date,Description,Amount", "hdfc_savings.csv")
	assert.Equal(t, "INR", code)
}
