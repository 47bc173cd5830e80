package categorization

import "strings"

// containsAny reports whether s contains any of the keywords as a plain substring.
func containsAny(s string, keywords ...string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// containsAnyWord is containsAny with word boundaries on both ends.
func containsAnyWord(s string, keywords ...string) bool {
	for _, k := range keywords {
		if containsWord(s, k) {
			return true
		}
	}
	return false
}

// containsWord reports whether keyword occurs in s without a letter directly
// before or after it, so "atm" does not match "treatment".
func containsWord(s, keyword string) bool {
	if keyword == "" {
		return false
	}
	for start := 0; start < len(s); {
		idx := strings.Index(s[start:], keyword)
		if idx < 0 {
			return false
		}
		i := start + idx
		j := i + len(keyword)
		if (i == 0 || !isLetter(s[i-1])) && (j == len(s) || !isLetter(s[j])) {
			return true
		}
		start = i + 1
	}
	return false
}

// containsWordOrPlural is containsWord that also accepts an "s" or "es"
// suffix, so "burger" matches "burgers" but not "burgerville".
func containsWordOrPlural(s, keyword string) bool {
	if keyword == "" {
		return false
	}
	for start := 0; start < len(s); {
		idx := strings.Index(s[start:], keyword)
		if idx < 0 {
			return false
		}
		i := start + idx
		if i == 0 || !isLetter(s[i-1]) {
			rest := s[i+len(keyword):]
			for _, suffix := range []string{"", "s", "es"} {
				tail, ok := strings.CutPrefix(rest, suffix)
				if ok && (tail == "" || !isLetter(tail[0])) {
					return true
				}
			}
		}
		start = i + 1
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// normalizeText lowercases s and turns underscores into spaces so that
// "ACH_CREDIT" and "ach credit" compare equal.
func normalizeText(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}
