// Package normalizer provides merchant name sanitization for statement descriptions.
package normalizer

import (
	"regexp"
	"strings"
)

// MerchantInfo contains normalized merchant information
type MerchantInfo struct {
	OriginalName   string `json:"original_name"`
	NormalizedName string `json:"normalized_name"`
}

// MerchantPattern maps a raw description pattern to a canonical merchant name
type MerchantPattern struct {
	Pattern *regexp.Regexp
	Name    string
}

// MerchantSanitizer normalizes merchant names. Patterns are fixed after
// construction, so a sanitizer is safe for concurrent use once built.
type MerchantSanitizer struct {
	patterns []MerchantPattern
}

// NewMerchantSanitizer creates a new sanitizer with common merchant patterns
func NewMerchantSanitizer() *MerchantSanitizer {
	return &MerchantSanitizer{
		patterns: defaultMerchantPatterns(),
	}
}

// Sanitize normalizes a merchant name
func (s *MerchantSanitizer) Sanitize(rawMerchant string) MerchantInfo {
	result := MerchantInfo{
		OriginalName:   rawMerchant,
		NormalizedName: rawMerchant,
	}

	cleaned := cleanMerchantName(rawMerchant)
	if cleaned == "" {
		result.NormalizedName = ""
		return result
	}

	upper := strings.ToUpper(cleaned)
	for _, pattern := range s.patterns {
		if pattern.Pattern.MatchString(upper) {
			result.NormalizedName = pattern.Name
			return result
		}
	}

	// Fallback: title case the cleaned name
	result.NormalizedName = titleCase(cleaned)
	return result
}

// AddPattern adds a custom merchant pattern. Custom patterns take precedence
// over the built-in list.
func (s *MerchantSanitizer) AddPattern(pattern, name string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	s.patterns = append([]MerchantPattern{{Pattern: re, Name: name}}, s.patterns...)
	return nil
}

var (
	processorPrefixRe = regexp.MustCompile(`^(?i)(TST\s*\*|SQ\s*\*|SP\s*\*|PP\s*\*|PAYPAL\s*\*|IN\s*\*|DD\s*\*|BT\s*\*|PY\s*\*)\s*`)
	refPattern        = regexp.MustCompile(`\s+#?\d{4,}$`)
	storeNumPattern   = regexp.MustCompile(`\s+#\s?\d+`)
	datePattern       = regexp.MustCompile(`\s+\d{1,2}/\d{1,2}(/\d{2,4})?$`)
	stateZipPattern   = regexp.MustCompile(`\s+[A-Z]{2}(\s+\d{5})?$`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// cleanMerchantName removes common noise from merchant names
func cleanMerchantName(raw string) string {
	result := spacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")

	prefixes := []string{
		"DEBIT CARD PURCHASE ", "POS PURCHASE ", "POS DEBIT ", "CHECKCARD ", "CHECK CARD ",
		"PURCHASE AUTHORIZED ON ", "RECURRING PAYMENT ", "DEBIT PURCHASE ",
		"VISA ", "MASTERCARD ", "MAESTRO ", "PURCHASE ", "POS ",
		"COMPRA ", "COMPRAS ", "PAGAMENTO ", "TRANSFERENCIA ",
	}
	upper := strings.ToUpper(result)
	for _, prefix := range prefixes {
		if strings.HasPrefix(upper, prefix) {
			result = result[len(prefix):]
			break
		}
	}
	result = processorPrefixRe.ReplaceAllString(result, "")

	result = datePattern.ReplaceAllString(result, "")
	result = refPattern.ReplaceAllString(result, "")
	result = storeNumPattern.ReplaceAllString(result, "")
	if strings.ToUpper(result) == result {
		result = stateZipPattern.ReplaceAllString(result, "")
	}
	result = strings.Trim(result, " *-")

	return spacePattern.ReplaceAllString(strings.TrimSpace(result), " ")
}

// titleCase converts a string to title case
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(string(word[0])) + strings.ToLower(word[1:])
		}
	}
	return strings.Join(words, " ")
}

// defaultMerchantPatterns returns canonical names for frequently seen merchants
func defaultMerchantPatterns() []MerchantPattern {
	return []MerchantPattern{
		// Delivery before rideshare so "UBER EATS" wins over "UBER"
		{regexp.MustCompile(`UBER\s*EATS`), "Uber Eats"},
		{regexp.MustCompile(`\bUBER\b`), "Uber"},
		{regexp.MustCompile(`\bLYFT\b`), "Lyft"},
		{regexp.MustCompile(`DOORDASH`), "DoorDash"},
		{regexp.MustCompile(`GRUBHUB`), "Grubhub"},

		{regexp.MustCompile(`AMZN\s*MKTP|AMAZON\.COM|AMAZON\s*MKTPL|\bAMZN\b`), "Amazon"},
		{regexp.MustCompile(`AMAZON\s*FRESH`), "Amazon Fresh"},
		{regexp.MustCompile(`COSTCO\s*GAS`), "Costco Gas"},
		{regexp.MustCompile(`COSTCO`), "Costco"},
		{regexp.MustCompile(`WAL-?MART|WM\s*SUPERCENTER`), "Walmart"},
		{regexp.MustCompile(`TARGET`), "Target"},
		{regexp.MustCompile(`WHOLE\s*FOODS|WHOLEFDS`), "Whole Foods"},
		{regexp.MustCompile(`TRADER\s*JOE`), "Trader Joe's"},
		{regexp.MustCompile(`SAFEWAY`), "Safeway"},

		{regexp.MustCompile(`STARBUCKS`), "Starbucks"},
		{regexp.MustCompile(`MC\s*DONALDS|MCDONALD`), "McDonald's"},
		{regexp.MustCompile(`CHIPOTLE`), "Chipotle"},

		{regexp.MustCompile(`NETFLIX`), "Netflix"},
		{regexp.MustCompile(`SPOTIFY`), "Spotify"},
		{regexp.MustCompile(`DISNEY\s*\+|DISNEYPLUS`), "Disney+"},
		{regexp.MustCompile(`\bHULU\b`), "Hulu"},
		{regexp.MustCompile(`APPLE\.COM/BILL|APPLE\s*MUSIC`), "Apple"},
		{regexp.MustCompile(`OPENAI|CHATGPT`), "OpenAI"},

		{regexp.MustCompile(`COMCAST|XFINITY`), "Xfinity"},
		{regexp.MustCompile(`T-MOBILE|TMOBILE`), "T-Mobile"},
		{regexp.MustCompile(`VERIZON`), "Verizon"},

		{regexp.MustCompile(`PAYPAL`), "PayPal"},
		{regexp.MustCompile(`VENMO`), "Venmo"},
		{regexp.MustCompile(`ZELLE`), "Zelle"},
	}
}
