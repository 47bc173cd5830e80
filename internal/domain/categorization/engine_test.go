package categorization

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test basic matching functionality
func TestEngine_Match(t *testing.T) {
	rules := []MerchantRule{
		{Pattern: "%REVOLUT%", Name: "Revolut", Category: CategoryTransfer},
	}
	merchants := []MerchantRule{
		{Pattern: "starbucks", Name: "Starbucks", Category: CategoryDining},
	}

	engine := NewEngine(rules, merchants)

	t.Run("matches rule pattern", func(t *testing.T) {
		result := engine.Match("CARD PURCHASE 27/12/2025 CAR WAL CRT DEB REVOLUT LONDON GB")
		require.NotNil(t, result)
		assert.Equal(t, "Revolut", result.Name)
		assert.Equal(t, "revolut", result.Pattern)
		assert.True(t, result.IsRule)
	})

	t.Run("matches merchant pattern", func(t *testing.T) {
		result := engine.Match("POS STARBUCKS COFFEE #1234")
		require.NotNil(t, result)
		assert.Equal(t, "Starbucks", result.Name)
		assert.Equal(t, CategoryDining, result.Category)
		assert.False(t, result.IsRule)
	})

	t.Run("returns nil for no match", func(t *testing.T) {
		assert.Nil(t, engine.Match("RANDOM TRANSACTION WITH NO MATCH"))
	})

	t.Run("case insensitive matching", func(t *testing.T) {
		result := engine.Match("payment to revolut for subscription")
		require.NotNil(t, result)
		assert.Equal(t, "Revolut", result.Name)
	})
}

// Test priority handling
func TestEngine_Priority(t *testing.T) {
	t.Run("rule wins over merchant for the same pattern", func(t *testing.T) {
		rules := []MerchantRule{{Pattern: "netflix", Name: "Netflix (Rule)", Category: CategorySubscriptions}}
		merchants := []MerchantRule{{Pattern: "netflix", Name: "Netflix", Category: CategoryEntertainment}}

		result := NewEngine(rules, merchants).Match("NETFLIX.COM")
		require.NotNil(t, result)
		assert.Equal(t, CategorySubscriptions, result.Category)
		assert.True(t, result.IsRule)
	})

	t.Run("earlier table entry wins", func(t *testing.T) {
		merchants := []MerchantRule{
			{Pattern: "costco gas", Category: CategoryTransportation},
			{Pattern: "costco", Category: CategoryGroceries},
		}

		result := NewEngine(nil, merchants).Match("COSTCO GAS #1234 ISSAQUAH WA")
		require.NotNil(t, result)
		assert.Equal(t, CategoryTransportation, result.Category)
		assert.Equal(t, "costco gas", result.Name)
	})

	t.Run("built-in table prefers costco gas", func(t *testing.T) {
		engine := NewEngine(nil, DefaultMerchantRules())

		gas := engine.Match("COSTCO GAS #0123")
		require.NotNil(t, gas)
		assert.Equal(t, CategoryTransportation, gas.Category)

		whse := engine.Match("COSTCO WHSE #0001")
		require.NotNil(t, whse)
		assert.Equal(t, CategoryGroceries, whse.Category)
	})
}

func TestEngine_ShortPatternBoundary(t *testing.T) {
	engine := NewEngine(nil, []MerchantRule{
		{Pattern: "att", Name: "AT&T", Category: CategoryUtilities},
		{Pattern: "arco", Category: CategoryTransportation},
	})

	tests := []struct {
		name  string
		text  string
		match bool
	}{
		{"standalone word", "ATT*BILL PAYMENT", true},
		{"inside a longer word", "MATT'S BARBERSHOP", false},
		{"followed by digits", "ARCO#42891 SEATTLE", true},
		{"prefix of a word", "ARCOS TACOS", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Match(tt.text)
			if tt.match {
				assert.NotNil(t, result)
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

// Test empty engine
func TestEngine_Empty(t *testing.T) {
	engine := NewEngine(nil, nil)
	assert.True(t, engine.IsEmpty())
	assert.Equal(t, 0, engine.PatternCount())
	assert.Nil(t, engine.Match("ANY TEXT"))

	engine.Build([]MerchantRule{{Pattern: "costco", Category: CategoryShopping}}, nil)
	assert.False(t, engine.IsEmpty())
}

func TestKeywordEngine_WholeWords(t *testing.T) {
	engine := NewKeywordEngine([]MerchantRule{
		{Pattern: "market", Category: CategoryGroceries},
		{Pattern: "burger", Category: CategoryDining},
		{Pattern: "restaur", Category: CategoryDining},
	})

	tests := []struct {
		name  string
		text  string
		match bool
	}{
		{"standalone word", "FARMERS MARKET SEATTLE", true},
		{"plural", "BOB'S BURGERS", true},
		{"followed by digits", "MARKET#22", true},
		{"truncated descriptor", "JOE'S RESTAUR", true},
		{"longer word", "ACME MARKETING LLC", false},
		{"prefix of a name", "BURGERVILLE 17", false},
		{"suffix of a word", "SUPERMARKET 12", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Match(tt.text)
			if tt.match {
				assert.NotNil(t, result)
			} else {
				assert.Nil(t, result)
			}
		})
	}
}

func TestEngine_SkipsIncompleteEntries(t *testing.T) {
	engine := NewEngine(nil, []MerchantRule{
		{Pattern: "", Category: CategoryDining},
		{Pattern: "%%", Category: CategoryDining},
		{Pattern: "chipotle", Category: ""},
		{Pattern: "panera", Category: CategoryDining},
	})
	assert.Equal(t, 1, engine.PatternCount())
}

// Test rebuilding
func TestEngine_Rebuild(t *testing.T) {
	engine := NewEngine(nil, []MerchantRule{{Pattern: "amazon", Category: CategoryShopping}})
	assert.Equal(t, 1, engine.PatternCount())

	engine.Build(nil, []MerchantRule{
		{Pattern: "amazon", Category: CategoryShopping},
		{Pattern: "walmart", Category: CategoryShopping},
	})
	assert.Equal(t, 2, engine.PatternCount())
	assert.NotNil(t, engine.Match("WALMART SUPERCENTER"))
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func benchmarkMerchants(n int) []MerchantRule {
	merchants := make([]MerchantRule, n)
	for i := 0; i < n; i++ {
		merchants[i] = MerchantRule{
			Pattern:  fmt.Sprintf("merchant_%d", i),
			Name:     fmt.Sprintf("Merchant %d", i),
			Category: CategoryShopping,
		}
	}
	// a real one to find in the middle
	merchants[n/2] = MerchantRule{Pattern: "revolut", Name: "Revolut", Category: CategoryTransfer}
	return merchants
}

// Benchmark: Aho-Corasick with 1,000 patterns
func BenchmarkCategorization(b *testing.B) {
	engine := NewEngine(nil, benchmarkMerchants(1000))

	// A typical messy bank string
	input := "CARD PURCHASE 27/12/2025 CAR WAL CRT DEB REVOLUT LONDON GB"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = engine.Match(input)
	}
}

// Benchmark: Naive approach for comparison
func BenchmarkNaiveCategorization(b *testing.B) {
	patterns := make([]string, 1000)
	for i := 0; i < 1000; i++ {
		patterns[i] = fmt.Sprintf("merchant_%d", i)
	}
	patterns[500] = "revolut"

	input := strings.ToLower("CARD PURCHASE 27/12/2025 CAR WAL CRT DEB REVOLUT LONDON GB")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, pattern := range patterns {
			if strings.Contains(input, pattern) {
				break
			}
		}
	}
}

func BenchmarkScaling(b *testing.B) {
	input := "CARD PURCHASE 27/12/2025 CAR WAL CRT DEB REVOLUT LONDON GB"
	for _, size := range []int{100, 1000, 10000} {
		engine := NewEngine(nil, benchmarkMerchants(size))
		b.Run(fmt.Sprintf("patterns_%d", size), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = engine.Match(input)
			}
		})
	}
}
