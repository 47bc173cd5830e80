package money

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic statement data using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a new test data generator with a random seed.
func NewTestDataGenerator() *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(0), // Random seed
	}
}

// NewTestDataGeneratorWithSeed creates a generator with a specific seed for reproducibility.
func NewTestDataGeneratorWithSeed(seed int64) *TestDataGenerator {
	return &TestDataGenerator{
		faker: gofakeit.New(seed),
	}
}

// ============================================================================
// Statement Rows
// ============================================================================

// StatementRow is one generated line of a bank export.
type StatementRow struct {
	Date        time.Time
	Description string
	Amount      Money
}

// Row generates a single random statement row between start and end.
func (g *TestDataGenerator) Row(currency string, start, end time.Time) StatementRow {
	if g.faker.Number(0, 9) == 0 {
		return StatementRow{
			Date:        g.faker.DateRange(start, end),
			Description: incomeDescriptions[g.faker.Number(0, len(incomeDescriptions)-1)],
			Amount:      g.RandomAmount(currency, 100000, 1000000),
		}
	}
	return StatementRow{
		Date:        g.faker.DateRange(start, end),
		Description: g.PurchaseDescription(),
		Amount:      g.RandomAmount(currency, 100, 50000).Negate(),
	}
}

// Rows generates count statement rows dated within the last year.
func (g *TestDataGenerator) Rows(currency string, count int) []StatementRow {
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(-1, 0, 0)
	rows := make([]StatementRow, count)
	for i := range rows {
		rows[i] = g.Row(currency, start, end)
	}
	return rows
}

// RandomAmount generates a random Money value within a cent range.
func (g *TestDataGenerator) RandomAmount(currency string, minCents, maxCents int64) Money {
	if minCents > maxCents {
		minCents, maxCents = maxCents, minCents
	}
	cents := g.faker.Int64() % (maxCents - minCents + 1)
	if cents < 0 {
		cents = -cents
	}
	return New(decimal.New(minCents+cents, -2), currency)
}

// PurchaseDescription returns a merchant-style card description such as
// "STARBUCKS #4821 SEATTLE WA".
func (g *TestDataGenerator) PurchaseDescription() string {
	merchant := merchants[g.faker.Number(0, len(merchants)-1)]
	return fmt.Sprintf("%s #%04d %s", strings.ToUpper(merchant), g.faker.Number(1, 9999), strings.ToUpper(g.faker.City()))
}

// ============================================================================
// CSV Output
// ============================================================================

// WriteCSV writes rows as a "Date,Description,Amount" statement with US
// month/day dates. Descriptions are quoted so embedded commas survive.
func WriteCSV(w io.Writer, rows []StatementRow) error {
	if _, err := io.WriteString(w, "Date,Description,Amount\n"); err != nil {
		return err
	}
	for _, r := range rows {
		desc := strings.ReplaceAll(r.Description, `"`, `""`)
		line := fmt.Sprintf("%s,\"%s\",%s\n", r.Date.Format("01/02/2006"), desc, r.Amount.Amount().StringFixed(2))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

var merchants = []string{
	"Amazon", "Walmart", "Target", "Costco Whse", "Starbucks",
	"McDonald's", "Uber", "Lyft", "Netflix", "Spotify",
	"Whole Foods", "Trader Joe's", "Safeway", "Chipotle",
	"CVS Pharmacy", "Walgreens", "Shell", "Chevron", "Exxon",
	"Home Depot", "Best Buy", "IKEA", "Sephora",
}

var incomeDescriptions = []string{
	"PAYROLL DIRECT DEPOSIT",
	"ACME CORP PAYROLL",
	"INTEREST PAYMENT",
	"DIVIDEND RECEIVED",
	"MOBILE DEPOSIT",
}
