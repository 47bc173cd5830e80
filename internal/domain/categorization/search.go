package categorization

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// SearchDocument represents a searchable merchant rule
type SearchDocument struct {
	ID          string  `json:"id"`
	Pattern     string  `json:"pattern"`     // Original pattern (for exact matching)
	Name        string  `json:"name"`        // Display name
	Description string  `json:"description"` // Full text for search
	Category    string  `json:"category"`    // Category label
	Type        string  `json:"type"`        // "rule" or "merchant"
	Priority    float64 `json:"priority"`    // For boosting results
}

// SearchResult represents a search hit with relevance score
type SearchResult struct {
	Document SearchDocument
	Score    float64 // Relevance score from Bleve
	IsRule   bool
}

// SearchIndex provides full-text search over merchant rules using Bleve.
// It backs the fuzzy detector when a merchant name is misspelled or truncated.
type SearchIndex struct {
	index   bleve.Index
	indexMu sync.RWMutex
	path    string // Path to index storage (empty for in-memory)
}

// NewSearchIndex creates a new search index.
// If path is empty, creates an in-memory index.
// If path is provided, creates/opens a persistent index.
func NewSearchIndex(path string) (*SearchIndex, error) {
	si := &SearchIndex{path: path}

	var index bleve.Index
	var err error

	indexMapping := buildIndexMapping()

	if path == "" {
		index, err = bleve.NewMemOnly(indexMapping)
	} else {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
				return nil, fmt.Errorf("failed to create index directory: %w", mkdirErr)
			}
			index, err = bleve.New(path, indexMapping)
		} else {
			index, err = bleve.Open(path)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	si.index = index
	return si, nil
}

// buildIndexMapping creates the Bleve index mapping for merchant documents
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = simple.Name

	keywordFieldMapping := bleve.NewTextFieldMapping()
	keywordFieldMapping.Analyzer = keyword.Name

	numericFieldMapping := bleve.NewNumericFieldMapping()

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("pattern", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("name", textFieldMapping)
	docMapping.AddFieldMappingsAt("description", textFieldMapping)
	docMapping.AddFieldMappingsAt("category", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("priority", numericFieldMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = simple.Name

	return indexMapping
}

// IndexRules indexes user rules and the merchant table in one batch
func (si *SearchIndex) IndexRules(rules []MerchantRule, merchants []MerchantRule) error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	batch := si.index.NewBatch()

	add := func(kind string, list []MerchantRule, base int) error {
		for i, r := range list {
			if r.Pattern == "" {
				continue
			}
			name := r.Name
			if name == "" {
				name = r.Pattern
			}
			doc := SearchDocument{
				ID:          fmt.Sprintf("%s_%d", kind, i),
				Pattern:     strings.ToLower(r.Pattern),
				Name:        name,
				Description: fmt.Sprintf("%s %s", r.Pattern, name),
				Category:    r.Category,
				Type:        kind,
				Priority:    float64(base + len(list) - i),
			}
			if err := batch.Index(doc.ID, doc); err != nil {
				return fmt.Errorf("failed to index %s %q: %w", kind, r.Pattern, err)
			}
		}
		return nil
	}

	if err := add("rule", rules, userRulePriority+len(merchants)); err != nil {
		return err
	}
	if err := add("merchant", merchants, 0); err != nil {
		return err
	}

	if err := si.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch index: %w", err)
	}

	return nil
}

// Search performs a full-text search and returns matching documents
func (si *SearchIndex) Search(query string, limit int) ([]SearchResult, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	matchQuery := bleve.NewMatchQuery(query)
	matchQuery.SetFuzziness(1)

	searchRequest := bleve.NewSearchRequest(matchQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return si.convertResults(searchResults), nil
}

// SearchFuzzy performs a fuzzy term search with configurable edit distance
func (si *SearchIndex) SearchFuzzy(term string, fuzziness int, limit int) ([]SearchResult, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 10
	}
	if fuzziness < 0 {
		fuzziness = 0
	}
	if fuzziness > 2 {
		fuzziness = 2 // Bleve max is 2
	}

	// term queries skip analysis
	fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(term))
	fuzzyQuery.SetFuzziness(fuzziness)
	fuzzyQuery.SetField("name")

	searchRequest := bleve.NewSearchRequest(fuzzyQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("fuzzy search failed: %w", err)
	}

	return si.convertResults(searchResults), nil
}

// SearchByCategory lists the merchants assigned to one category
func (si *SearchIndex) SearchByCategory(category string, limit int) ([]SearchResult, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	termQuery := bleve.NewTermQuery(category)
	termQuery.SetField("category")

	searchRequest := bleve.NewSearchRequest(termQuery)
	searchRequest.Size = limit
	searchRequest.Fields = []string{"*"}

	searchResults, err := si.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("category search failed: %w", err)
	}

	return si.convertResults(searchResults), nil
}

// convertResults converts Bleve search results to our SearchResult type
func (si *SearchIndex) convertResults(searchResults *bleve.SearchResult) []SearchResult {
	results := make([]SearchResult, 0, len(searchResults.Hits))

	for _, hit := range searchResults.Hits {
		doc := SearchDocument{ID: hit.ID}

		if pattern, ok := hit.Fields["pattern"].(string); ok {
			doc.Pattern = pattern
		}
		if name, ok := hit.Fields["name"].(string); ok {
			doc.Name = name
		}
		if description, ok := hit.Fields["description"].(string); ok {
			doc.Description = description
		}
		if category, ok := hit.Fields["category"].(string); ok {
			doc.Category = category
		}
		if docType, ok := hit.Fields["type"].(string); ok {
			doc.Type = docType
		}
		if priority, ok := hit.Fields["priority"].(float64); ok {
			doc.Priority = priority
		}

		results = append(results, SearchResult{
			Document: doc,
			Score:    hit.Score,
			IsRule:   doc.Type == "rule",
		})
	}

	return results
}

// Close closes the index
func (si *SearchIndex) Close() error {
	si.indexMu.Lock()
	defer si.indexMu.Unlock()

	if si.index != nil {
		return si.index.Close()
	}
	return nil
}

// DocumentCount returns the number of documents in the index
func (si *SearchIndex) DocumentCount() (uint64, error) {
	si.indexMu.RLock()
	defer si.indexMu.RUnlock()

	return si.index.DocCount()
}

// NewIndexedDetector builds an in-memory index over rules and the merchant
// table and returns a fuzzy detector backed by it. Callers close the index.
func NewIndexedDetector(rules []MerchantRule, logger *slog.Logger) (*FuzzyDetector, *SearchIndex, error) {
	index, err := NewSearchIndex("")
	if err != nil {
		return nil, nil, err
	}
	if err := index.IndexRules(rules, DefaultMerchantRules()); err != nil {
		_ = index.Close()
		return nil, nil, err
	}
	return NewFuzzyDetector(rules, index, logger), index, nil
}
