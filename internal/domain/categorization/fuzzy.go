package categorization

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
)

const (
	// minFuzzyRatio is the lowest word-window similarity accepted as a match.
	minFuzzyRatio = 0.8
	// minFuzzyPatternLen keeps very short names out of fuzzy matching.
	minFuzzyPatternLen = 4
)

// FuzzyMatchResult represents a fuzzy match with its similarity ratio
type FuzzyMatchResult struct {
	Pattern  string  // The pattern that matched
	Name     string  // The merchant display name
	Category string  // The category to assign
	Ratio    float64 // Similarity in [0, 1], 1 is an exact match
	Distance int     // Levenshtein distance of the best window
	IsRule   bool    // True if from a user rule
}

// FuzzyMatcher compares merchant text against known names with Levenshtein
// distance. It catches variations like "STARBUKS 001" or "Medocinofarms".
type FuzzyMatcher struct {
	patterns []fuzzyPattern
	mu       sync.RWMutex
}

type fuzzyPattern struct {
	normalized string // lowercased pattern
	words      int
	name       string
	category   string
	isRule     bool
}

// NewFuzzyMatcher creates a new fuzzy matcher from rules and the merchant table
func NewFuzzyMatcher(rules []MerchantRule, merchants []MerchantRule) *FuzzyMatcher {
	fm := &FuzzyMatcher{}
	fm.Build(rules, merchants)
	return fm
}

// Build constructs the fuzzy matcher. Rules come first so they win ties.
func (fm *FuzzyMatcher) Build(rules []MerchantRule, merchants []MerchantRule) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	fm.patterns = make([]fuzzyPattern, 0, len(rules)+len(merchants))
	add := func(list []MerchantRule, isRule bool) {
		for _, r := range list {
			p := normalizeText(strings.Trim(r.Pattern, "%"))
			if len(p) < minFuzzyPatternLen || r.Category == "" {
				continue
			}
			name := r.Name
			if name == "" {
				name = p
			}
			fm.patterns = append(fm.patterns, fuzzyPattern{
				normalized: p,
				words:      len(strings.Fields(p)),
				name:       name,
				category:   r.Category,
				isRule:     isRule,
			})
		}
	}
	add(rules, true)
	add(merchants, false)
}

// Match finds the best fuzzy match for text. Returns nil if nothing reaches
// the minimum ratio. Earlier patterns win ties.
func (fm *FuzzyMatcher) Match(text string, minRatio float64) *FuzzyMatchResult {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	words := strings.Fields(normalizeText(text))
	if len(words) == 0 {
		return nil
	}

	var best *FuzzyMatchResult
	for _, p := range fm.patterns {
		ratio, dist := windowRatio(words, p)
		if ratio < minRatio {
			continue
		}
		if best == nil || ratio > best.Ratio {
			best = &FuzzyMatchResult{
				Pattern:  p.normalized,
				Name:     p.name,
				Category: p.category,
				Ratio:    ratio,
				Distance: dist,
				IsRule:   p.isRule,
			}
		}
	}
	return best
}

// PatternCount returns the number of patterns in the matcher
func (fm *FuzzyMatcher) PatternCount() int {
	fm.mu.RLock()
	defer fm.mu.RUnlock()
	return len(fm.patterns)
}

// windowRatio slides a window of the pattern's word count over words and
// returns the best similarity ratio with its edit distance. The window is also
// compared with its spaces removed so "medocino farms" meets "medocinofarms".
func windowRatio(words []string, p fuzzyPattern) (float64, int) {
	n := p.words
	if n > len(words) {
		n = len(words)
	}
	compact := strings.ReplaceAll(p.normalized, " ", "")

	bestRatio, bestDist := 0.0, -1
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		for _, cand := range [2][2]string{{window, p.normalized}, {strings.ReplaceAll(window, " ", ""), compact}} {
			r, d := similarity(cand[0], cand[1])
			if r > bestRatio {
				bestRatio, bestDist = r, d
			}
		}
	}
	return bestRatio, bestDist
}

// similarity returns 1 - distance/maxLen together with the distance.
func similarity(a, b string) (float64, int) {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0, 0
	}
	d := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(d)/float64(maxLen), d
}

// FuzzyDetector implements Detector with the fuzzy matcher and, when an index
// is supplied, a Bleve fuzzy search as a second chance.
type FuzzyDetector struct {
	matcher *FuzzyMatcher
	index   *SearchIndex
	logger  *slog.Logger
}

// NewFuzzyDetector builds a detector over rules and the curated merchant table.
// index may be nil.
func NewFuzzyDetector(rules []MerchantRule, index *SearchIndex, logger *slog.Logger) *FuzzyDetector {
	if logger == nil {
		logger = slog.Default()
	}
	matcher := NewFuzzyMatcher(rules, DefaultMerchantRules())
	logger.Debug("fuzzy detector ready", "patterns", matcher.PatternCount(), "search_index", index != nil)
	return &FuzzyDetector{
		matcher: matcher,
		index:   index,
		logger:  logger,
	}
}

// Detect suggests a category for the merchant (or the description when the
// merchant is empty).
func (d *FuzzyDetector) Detect(merchant, description string, _ decimal.Decimal, _, _ string) Detection {
	name := strings.TrimSpace(merchant)
	if name == "" {
		name = strings.TrimSpace(description)
	}
	if len(name) < minFuzzyPatternLen {
		return Detection{Method: MethodNone}
	}

	if m := d.matcher.Match(name, minFuzzyRatio); m != nil {
		return Detection{Category: m.Category, Confidence: m.Ratio, Method: MethodFuzzyMatch}
	}

	if d.index == nil {
		return Detection{Method: MethodNone}
	}
	// first token carries the brand in most statement descriptors
	fields := strings.Fields(normalizeText(name))
	if len(fields) == 0 || len(fields[0]) < minFuzzyPatternLen {
		return Detection{Method: MethodNone}
	}
	hits, err := d.index.SearchFuzzy(fields[0], 1, 1)
	if err != nil {
		d.logger.Warn("merchant search failed", "error", err)
		return Detection{Method: MethodNone}
	}
	if len(hits) == 0 || hits[0].Document.Category == "" {
		return Detection{Method: MethodNone}
	}
	return Detection{
		Category:   hits[0].Document.Category,
		Confidence: hits[0].Score / (hits[0].Score + 1),
		Method:     MethodSearchMatch,
	}
}
