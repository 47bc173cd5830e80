package account

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDetector() *Detector {
	return NewDetector(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ============================================================================
// Filename Tests
// ============================================================================

func TestDetectFromFilename(t *testing.T) {
	d := testDetector()

	tests := []struct {
		name        string
		filename    string
		institution string
		accountType string
		subtype     string
		number      string
	}{
		{"institution type and number", "chase_checking_1234.csv", "Chase", TypeDepository, SubtypeChecking, "1234"},
		{"abbreviated institution", "bofa_credit_card_5678.csv", "Bank of America", TypeCredit, SubtypeCreditCard, "5678"},
		{"digits glued to name", "Chase3100.CSV", "Chase", "", "", "3100"},
		{"savings with dashes", "wells-fargo-savings.xlsx", "Wells Fargo", TypeDepository, SubtypeSavings, ""},
		{"brokerage", "fidelity_brokerage.csv", "Fidelity", TypeInvestment, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.DetectFromFilename(tt.filename)
			require.NotNil(t, got)
			assert.Equal(t, tt.institution, got.InstitutionName)
			assert.Equal(t, tt.accountType, got.AccountType)
			assert.Equal(t, tt.subtype, got.AccountSubtype)
			assert.Equal(t, tt.number, got.AccountNumber)
		})
	}
}

func TestDetectFromFilename_AccountName(t *testing.T) {
	got := testDetector().DetectFromFilename("chase_checking_1234.csv")
	require.NotNil(t, got)
	assert.Equal(t, "Chase checking 1234", got.AccountName)
}

func TestDetectFromFilename_Skipped(t *testing.T) {
	d := testDetector()
	for _, name := range []string{
		"",
		"   ",
		"unknown.csv",
		"import_20240101.csv",
		"3f2b8c1e-9a4d-4e5f-8b6a-1c2d3e4f5a6b.csv",
		"statement.csv",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, d.DetectFromFilename(name))
		})
	}
}

func TestDetectFromFilename_ShortKeywordsNeedWordBoundaries(t *testing.T) {
	got := testDetector().DetectFromFilename("subscriptions_export.csv")
	assert.Nil(t, got, "ubs must not match inside subscriptions")
}

// ============================================================================
// Header Tests
// ============================================================================

func TestIsTransactionTable(t *testing.T) {
	assert.True(t, IsTransactionTable([]string{"Date", "Description", "Amount"}))
	assert.True(t, IsTransactionTable([]string{"Details", "Posting Date", "Description", "Amount", "Type", "Balance", "Check or Slip #"}))
	assert.False(t, IsTransactionTable([]string{"Account Number: 1234", "Institution: Chase"}))
	assert.False(t, IsTransactionTable(nil))
}

func TestDetectFromHeaders_TransactionTableUsesFilename(t *testing.T) {
	headers := []string{"Posting Date", "Description", "Amount", "Type"}
	got := testDetector().DetectFromHeaders(headers, "chase_checking_1234.csv")
	require.NotNil(t, got)
	assert.Equal(t, "Chase", got.InstitutionName)
	assert.Equal(t, TypeDepository, got.AccountType)
	assert.Equal(t, SubtypeChecking, got.AccountSubtype)
	assert.Equal(t, "1234", got.AccountNumber)
}

func TestDetectFromHeaders_TransactionTableIgnoresPayeeValues(t *testing.T) {
	headers := []string{"Date", "Description", "Amount", "Category"}
	assert.Nil(t, testDetector().DetectFromHeaders(headers, "statement.csv"))
}

func TestDetectFromHeaders_Metadata(t *testing.T) {
	headers := []string{"Account Number: ****5678", "Institution Name: Wells Fargo", "Account Type: Savings"}
	got := testDetector().DetectFromHeaders(headers, "")
	require.NotNil(t, got)
	assert.Equal(t, "5678", got.AccountNumber)
	assert.Equal(t, "Wells Fargo", got.InstitutionName)
	assert.Equal(t, TypeDepository, got.AccountType)
	assert.Equal(t, SubtypeSavings, got.AccountSubtype)
}

func TestDetectFromPreamble(t *testing.T) {
	lines := []string{
		"Chase Sapphire Preferred Card",
		"Account Number: XXXX XXXX XXXX 4666",
		"Closing Balance: $1,234.56",
	}
	got := testDetector().DetectFromPreamble(lines)
	require.NotNil(t, got)
	assert.Equal(t, "Chase", got.InstitutionName)
	assert.Equal(t, "4666", got.AccountNumber)
	assert.Equal(t, TypeCredit, got.AccountType)
	require.NotNil(t, got.Balance)
	assert.Equal(t, "1234.56", got.Balance.StringFixed(2))
}

func TestDetect_MergesPreambleAndName(t *testing.T) {
	got := testDetector().Detect(
		[]string{"Account ending in 9876"},
		[]string{"Date", "Description", "Amount"},
		"chase_checking.csv",
	)
	require.NotNil(t, got)
	assert.Equal(t, "Chase", got.InstitutionName)
	assert.Equal(t, "9876", got.AccountNumber)
	assert.Equal(t, "Chase checking 9876", got.AccountName)
}

// ============================================================================
// Row Tests
// ============================================================================

func TestDetectFromRows(t *testing.T) {
	d := testDetector()

	tests := []struct {
		name        string
		headers     []string
		rows        [][]string
		institution string
		accountType string
		subtype     string
		number      string
	}{
		{
			name:        "masked card number type and bank",
			headers:     []string{"date", "amount", "card no.", "account type", "bank name"},
			rows:        [][]string{{"03/01/2024", "5.40", "XXXX-XXXX-XXXX-4321", "Credit Card", "Chase"}},
			institution: "Chase",
			accountType: TypeCredit,
			subtype:     SubtypeCreditCard,
			number:      "4321",
		},
		{
			name:    "first usable value wins",
			headers: []string{"date", "amount", "account number"},
			rows: [][]string{
				{"03/01/2024", "1.00", ""},
				{"03/02/2024", "2.00", "****7788"},
				{"03/03/2024", "3.00", "****9999"},
			},
			number: "7788",
		},
		{
			name:        "unknown institution is kept as printed",
			headers:     []string{"date", "amount", "institution"},
			rows:        [][]string{{"03/01/2024", "1.00", "Lakeside Mutual"}},
			institution: "Lakeside Mutual",
		},
		{
			name:        "checking account type",
			headers:     []string{"date", "amount", "account type"},
			rows:        [][]string{{"03/01/2024", "1.00", "Checking"}},
			accountType: TypeDepository,
			subtype:     SubtypeChecking,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.DetectFromRows(tt.headers, tt.rows)
			require.NotNil(t, got)
			assert.Equal(t, tt.institution, got.InstitutionName)
			assert.Equal(t, tt.accountType, got.AccountType)
			assert.Equal(t, tt.subtype, got.AccountSubtype)
			assert.Equal(t, tt.number, got.AccountNumber)
		})
	}
}

func TestDetectFromRows_Nothing(t *testing.T) {
	d := testDetector()

	tests := []struct {
		name    string
		headers []string
		rows    [][]string
	}{
		{"no rows", []string{"date", "amount", "card no."}, nil},
		{"no headers", nil, [][]string{{"03/01/2024", "1.00"}}},
		{"transaction type column", []string{"date", "amount", "type"}, [][]string{{"03/01/2024", "1.00", "Credit Card"}}},
		{"category column", []string{"date", "amount", "category"}, [][]string{{"03/01/2024", "1.00", "Checking"}}},
		{"short number", []string{"date", "amount", "card"}, [][]string{{"03/01/2024", "1.00", "**12"}}},
		{"blank cells", []string{"date", "amount", "account number"}, [][]string{{"03/01/2024", "1.00", " "}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, d.DetectFromRows(tt.headers, tt.rows))
		})
	}
}

func TestDetectFromRows_SampleCap(t *testing.T) {
	headers := []string{"date", "amount", "card"}
	rows := make([][]string, 0, DefaultSampleMax+1)
	for i := 0; i < DefaultSampleMax; i++ {
		rows = append(rows, []string{"03/01/2024", "1.00", ""})
	}
	rows = append(rows, []string{"03/01/2024", "1.00", "****4321"})

	assert.Nil(t, testDetector().DetectFromRows(headers, rows))
}

func TestKeywordAccessorsReturnCopies(t *testing.T) {
	kw := AccountNumberKeywords()
	require.NotEmpty(t, kw)
	kw[0] = "changed"
	assert.NotEqual(t, "changed", AccountNumberKeywords()[0])

	assert.Contains(t, InstitutionKeywords(), "bank name")
	assert.Contains(t, InstitutionKeywords(), "product name")
	assert.Contains(t, AccountTypeKeywords(), "account type")
}

func TestNormalizeInstitutionName(t *testing.T) {
	assert.Equal(t, "Bank of America", normalizeInstitutionName("BofA"))
	assert.Equal(t, "Capital One", normalizeInstitutionName("capone"))
	assert.Equal(t, "Monzo", normalizeInstitutionName("monzo"))
	assert.Equal(t, "", normalizeInstitutionName("  "))
}
