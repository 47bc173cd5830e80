package categorization

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuzzyMatcher_Match(t *testing.T) {
	merchants := []MerchantRule{
		{Pattern: "starbucks", Name: "Starbucks", Category: CategoryDining},
		{Pattern: "amazon", Name: "Amazon", Category: CategoryShopping},
		{Pattern: "mendocino farms", Name: "Mendocino Farms", Category: CategoryDining},
	}

	matcher := NewFuzzyMatcher(nil, merchants)

	t.Run("exact match", func(t *testing.T) {
		result := matcher.Match("STARBUCKS", minFuzzyRatio)
		require.NotNil(t, result)
		assert.Equal(t, "Starbucks", result.Name)
		assert.Equal(t, 1.0, result.Ratio)
		assert.Equal(t, 0, result.Distance)
	})

	t.Run("variation with store number", func(t *testing.T) {
		result := matcher.Match("STARBUCKS 001 LONDON", minFuzzyRatio)
		require.NotNil(t, result)
		assert.Equal(t, "Starbucks", result.Name)
	})

	t.Run("fuzzy match with typo", func(t *testing.T) {
		result := matcher.Match("STARBACKS", minFuzzyRatio)
		require.NotNil(t, result)
		assert.Equal(t, "Starbucks", result.Name)
		assert.Equal(t, 1, result.Distance)
		assert.Less(t, result.Ratio, 1.0)
	})

	t.Run("run-together words", func(t *testing.T) {
		result := matcher.Match("MEDOCINOFARMS", minFuzzyRatio)
		require.NotNil(t, result)
		assert.Equal(t, CategoryDining, result.Category)
		assert.Equal(t, "mendocino farms", result.Pattern)
	})

	t.Run("no match below threshold", func(t *testing.T) {
		assert.Nil(t, matcher.Match("COMPLETELY DIFFERENT", minFuzzyRatio))
	})

	t.Run("empty text", func(t *testing.T) {
		assert.Nil(t, matcher.Match("   ", minFuzzyRatio))
	})
}

func TestFuzzyMatcher_Priority(t *testing.T) {
	rules := []MerchantRule{{Pattern: "starbucks", Name: "My Coffee", Category: CategoryEntertainment}}
	merchants := []MerchantRule{{Pattern: "starbucks", Name: "Starbucks", Category: CategoryDining}}

	result := NewFuzzyMatcher(rules, merchants).Match("STARBUCKS", minFuzzyRatio)
	require.NotNil(t, result)
	assert.True(t, result.IsRule)
	assert.Equal(t, CategoryEntertainment, result.Category)
}

func TestFuzzyMatcher_SkipsShortPatterns(t *testing.T) {
	matcher := NewFuzzyMatcher(nil, []MerchantRule{
		{Pattern: "bp", Category: CategoryTransportation},
		{Pattern: "tpd", Category: CategoryDining},
		{Pattern: "shell", Category: CategoryTransportation},
	})
	assert.Equal(t, 1, matcher.PatternCount())
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b     string
		ratio    float64
		distance int
	}{
		{"kitten", "kitten", 1, 0},
		{"kitten", "sitten", 1 - 1.0/6, 1},
		{"", "", 0, 0},
		{"abcd", "", 0, 4},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s_%s", tt.a, tt.b), func(t *testing.T) {
			ratio, dist := similarity(tt.a, tt.b)
			assert.InDelta(t, tt.ratio, ratio, 1e-9)
			assert.Equal(t, tt.distance, dist)
		})
	}
}

// ============================================================================
// DETECTOR
// ============================================================================

func TestFuzzyDetector_Detect(t *testing.T) {
	detector := NewFuzzyDetector(nil, nil, nil)

	t.Run("misspelled merchant", func(t *testing.T) {
		d := detector.Detect("STARBACKS", "", decimal.NewFromInt(-5), "card", "")
		assert.Equal(t, MethodFuzzyMatch, d.Method)
		assert.Equal(t, CategoryDining, d.Category)
		assert.GreaterOrEqual(t, d.Confidence, minFuzzyRatio)
	})

	t.Run("description used when merchant is empty", func(t *testing.T) {
		d := detector.Detect("", "Medocinofarms", decimal.NewFromInt(-18), "card", "")
		assert.Equal(t, MethodFuzzyMatch, d.Method)
		assert.Equal(t, CategoryDining, d.Category)
	})

	t.Run("user rule is considered", func(t *testing.T) {
		withRule := NewFuzzyDetector([]MerchantRule{{Pattern: "grisalin", Category: CategoryRentIncome}}, nil, nil)
		d := withRule.Detect("GRISALIM", "", decimal.NewFromInt(2000), "ach", "")
		assert.Equal(t, MethodFuzzyMatch, d.Method)
		assert.Equal(t, CategoryRentIncome, d.Category)
	})

	t.Run("too short", func(t *testing.T) {
		d := detector.Detect("BP", "", decimal.NewFromInt(-40), "card", "")
		assert.Equal(t, MethodNone, d.Method)
		assert.Empty(t, d.Category)
	})

	t.Run("nothing close and no index", func(t *testing.T) {
		d := detector.Detect("ZZQX", "", decimal.NewFromInt(-10), "card", "")
		assert.Equal(t, MethodNone, d.Method)
	})
}

func TestFuzzyDetector_SearchFallback(t *testing.T) {
	index, err := NewSearchIndex("")
	require.NoError(t, err)
	defer index.Close()

	require.NoError(t, index.IndexRules(nil, []MerchantRule{
		{Pattern: "lyft", Name: "Lyft", Category: CategoryTransportation},
	}))

	detector := NewFuzzyDetector(nil, index, nil)

	// one edit on a four letter name is below the matcher ratio, the index
	// still finds it
	d := detector.Detect("LYFX", "", decimal.NewFromInt(-23), "card", "")
	assert.Equal(t, MethodSearchMatch, d.Method)
	assert.Equal(t, CategoryTransportation, d.Category)
	assert.Greater(t, d.Confidence, 0.0)
	assert.Less(t, d.Confidence, 1.0)
}

// ============================================================================
// BENCHMARKS
// ============================================================================

func BenchmarkFuzzyMatch(b *testing.B) {
	matcher := NewFuzzyMatcher(nil, DefaultMerchantRules())
	input := "STARBACKS STORE 01234 SEATTLE WA"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = matcher.Match(input, minFuzzyRatio)
	}
}

func BenchmarkCompare_AhoCorasick_vs_Fuzzy(b *testing.B) {
	input := "STARBUCKS STORE 01234 SEATTLE WA"

	b.Run("AhoCorasick", func(b *testing.B) {
		engine := NewEngine(nil, DefaultMerchantRules())
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = engine.Match(input)
		}
	})

	b.Run("Fuzzy", func(b *testing.B) {
		matcher := NewFuzzyMatcher(nil, DefaultMerchantRules())
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = matcher.Match(input, minFuzzyRatio)
		}
	})
}
