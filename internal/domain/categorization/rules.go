package categorization

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidRule is returned for rules without a pattern or with an unknown category
var ErrInvalidRule = errors.New("invalid merchant rule")

// RuleSet is the top-level YAML structure of a rules file:
//
//	rules:
//	  - pattern: "blue bottle"
//	    name: Blue Bottle Coffee
//	    category: dining
//
// Rules earlier in the file win over later ones.
type RuleSet struct {
	Rules []MerchantRule `yaml:"rules"`
}

var knownCategories = map[string]bool{
	CategoryOther: true, CategoryGroceries: true, CategoryDining: true, CategoryTransportation: true,
	CategoryUtilities: true, CategoryEntertainment: true, CategoryHealth: true, CategoryShopping: true,
	CategoryTech: true, CategoryTravel: true, CategorySubscriptions: true, CategoryPet: true,
	CategoryCharity: true, CategoryEducation: true, CategoryInsurance: true, CategoryRent: true,
	CategoryIncome: true, CategorySalary: true, CategoryDeposit: true, CategoryStipend: true,
	CategoryRentIncome: true, CategoryTips: true, CategoryInterest: true, CategoryDividend: true,
	CategoryRSU: true, CategoryFee: true, CategoryCash: true, CategoryPayment: true,
	CategoryTransfer: true, CategoryLoanEscrow: true, CategoryLoanBills: true,
	CategoryInvestment: true, CategoryInvestmentInterest: true, CategoryInvestmentDividend: true,
	CategoryInvestmentTransfer: true, CategoryInvestmentFees: true, CategoryInvestmentPurchase: true,
	CategoryInvestmentSold: true,
}

// IsKnownCategory reports whether label is one the classifier can produce
func IsKnownCategory(label string) bool {
	return knownCategories[label]
}

// LoadRules parses a YAML rule set. Patterns are lowercased.
func LoadRules(r io.Reader) ([]MerchantRule, error) {
	var set RuleSet
	if err := yaml.NewDecoder(r).Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse YAML rules: %w", err)
	}

	rules := make([]MerchantRule, 0, len(set.Rules))
	for i, rule := range set.Rules {
		rule.Pattern = strings.ToLower(strings.TrimSpace(rule.Pattern))
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %d (%s): pattern cannot be empty: %w", i, rule.Name, ErrInvalidRule)
		}
		if !IsKnownCategory(rule.Category) {
			return nil, fmt.Errorf("rule %d (%s): unknown category %q: %w", i, rule.Name, rule.Category, ErrInvalidRule)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// LoadRulesFile loads rules from a filesystem path
func LoadRulesFile(path string) ([]MerchantRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	defer f.Close()

	rules, err := LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return rules, nil
}
