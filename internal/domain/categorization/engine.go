package categorization

import (
	"strings"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// shortPatternLen is the longest pattern that must match on word boundaries.
// Longer patterns are distinctive enough to match anywhere in the text.
const shortPatternLen = 5

// userRulePriority is added to user supplied rules so they always beat the
// curated table.
const userRulePriority = 1000

// MatchResult represents a single pattern match with its associated metadata
type MatchResult struct {
	Pattern  string // The pattern that matched, lowercased
	Name     string // Display name of the merchant
	Category string // Category label to assign
	Priority int    // Higher priority matches take precedence
	IsRule   bool   // True if this came from a user rule, false if from the table
}

// Engine is a high-performance pattern matching engine using the Aho-Corasick algorithm.
// It can match thousands of patterns simultaneously in a single pass through the text.
// Time complexity: O(n + m) where n = text length, m = total matches
type Engine struct {
	matcher  *ahocorasick.Matcher
	patterns []string        // Unique patterns in same order as matcher
	metadata [][]MatchResult // Metadata for each pattern (may have multiple entries for same pattern)
	words    bool            // every pattern must match a whole word, plural allowed
	mu       sync.RWMutex    // Protects rebuilding the matcher
}

// NewEngine creates a new engine from user rules and the ordered merchant table.
// Earlier table entries win over later ones.
func NewEngine(rules []MerchantRule, merchants []MerchantRule) *Engine {
	e := &Engine{}
	e.Build(rules, merchants)
	return e
}

// NewKeywordEngine creates an engine over dictionary words such as "market"
// or "pharmacy". They only match whole words or their plural, so "market"
// stays out of "marketing".
func NewKeywordEngine(keywords []MerchantRule) *Engine {
	e := &Engine{words: true}
	e.Build(nil, keywords)
	return e
}

// Build constructs the Aho-Corasick matcher. It can be called again to rebuild
// the engine when rules change. Duplicate patterns are grouped together.
func (e *Engine) Build(rules []MerchantRule, merchants []MerchantRule) {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := len(rules) + len(merchants)
	if total == 0 {
		e.matcher = nil
		e.patterns = nil
		e.metadata = nil
		return
	}

	patternToIndex := make(map[string]int)
	patterns := make([]string, 0, total)
	metadata := make([][]MatchResult, 0, total)

	addPattern := func(cleanPattern string, result MatchResult) {
		if idx, exists := patternToIndex[cleanPattern]; exists {
			metadata[idx] = append(metadata[idx], result)
			return
		}
		patternToIndex[cleanPattern] = len(patterns)
		patterns = append(patterns, cleanPattern)
		metadata = append(metadata, []MatchResult{result})
	}

	add := func(list []MerchantRule, base int, isRule bool) {
		for i, r := range list {
			// SQL LIKE wildcards are accepted for rules coming from the database
			cleanPattern := strings.ToLower(strings.Trim(strings.TrimSpace(r.Pattern), "%"))
			if cleanPattern == "" || r.Category == "" {
				continue
			}
			name := r.Name
			if name == "" {
				name = cleanPattern
			}
			addPattern(cleanPattern, MatchResult{
				Pattern:  cleanPattern,
				Name:     name,
				Category: r.Category,
				Priority: base + len(list) - i,
				IsRule:   isRule,
			})
		}
	}

	add(rules, userRulePriority+len(merchants), true)
	add(merchants, 0, false)

	e.patterns = patterns
	e.metadata = metadata

	bytePatterns := make([][]byte, len(patterns))
	for i, p := range patterns {
		bytePatterns[i] = []byte(p)
	}
	e.matcher = ahocorasick.NewMatcher(bytePatterns)
}

// Match finds all matching patterns in the text and returns the best match.
// Returns nil if no patterns match.
func (e *Engine) Match(text string) *MatchResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.match(strings.ToLower(text))
}

func (e *Engine) match(lower string) *MatchResult {
	if e.matcher == nil || lower == "" {
		return nil
	}

	var best *MatchResult
	for _, idx := range e.matcher.Match([]byte(lower)) {
		if idx < 0 || idx >= len(e.metadata) || !e.accept(idx, lower) {
			continue
		}
		for i := range e.metadata[idx] {
			m := &e.metadata[idx][i]
			if best == nil || m.Priority > best.Priority {
				cp := *m
				best = &cp
			}
		}
	}
	return best
}

// accept applies the word boundary requirement for short patterns, so "att"
// does not fire inside "matt". Keyword engines apply it to every pattern.
func (e *Engine) accept(idx int, lower string) bool {
	p := e.patterns[idx]
	if e.words {
		return containsWordOrPlural(lower, p)
	}
	if len(p) > shortPatternLen {
		return true
	}
	return containsWord(lower, p)
}

// PatternCount returns the number of patterns loaded in the engine.
func (e *Engine) PatternCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.patterns)
}

// IsEmpty returns true if the engine has no patterns loaded.
func (e *Engine) IsEmpty() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.matcher == nil || len(e.patterns) == 0
}
