package account

import (
	"regexp"
	"strings"
)

// Default sample window for statistical type inference
const (
	DefaultSampleMin = 3
	DefaultSampleMax = 20
)

var (
	debitIndicatorRe    = regexp.MustCompile(`debit|\bdb\b|\bdr\b`)
	creditIndicatorRe   = regexp.MustCompile(`credit|\bcr\b`)
	creditCardRe        = regexp.MustCompile(`credit\s?card`)
	checkIndicatorRe    = regexp.MustCompile(`\b(check|chk|cheque)\b`)
	achIndicatorRe      = regexp.MustCompile(`\bach\b|automated clearing|direct\s?deposit`)
	atmIndicatorRe      = regexp.MustCompile(`\batm\b|cash withdrawal`)
	transferIndicatorRe = regexp.MustCompile(`transfer|\bxfer\b`)
)

// Tally counts account-type indicators over an early sample of rows. It is a
// value type: Observe returns the next tally and leaves the receiver alone.
type Tally struct {
	Debits    int `json:"debits"`
	Credits   int `json:"credits"`
	Checks    int `json:"checks"`
	ACH       int `json:"ach"`
	ATM       int `json:"atm"`
	Transfers int `json:"transfers"`
	Sampled   int `json:"sampled"`

	min int
	max int
}

// NewTally creates a tally with a custom sample window. Non-positive bounds
// fall back to the defaults.
func NewTally(min, max int) Tally {
	return Tally{min: min, max: max}
}

func (t Tally) sampleMin() int {
	if t.min <= 0 {
		return DefaultSampleMin
	}
	return t.min
}

func (t Tally) sampleMax() int {
	if t.max <= 0 {
		return DefaultSampleMax
	}
	return t.max
}

// Full reports whether the sample cap has been reached.
func (t Tally) Full() bool {
	return t.Sampled >= t.sampleMax()
}

// Ready reports whether enough rows were sampled to infer a type.
func (t Tally) Ready() bool {
	return t.Sampled >= t.sampleMin()
}

// Observe folds one row into the tally. Rows past the sample cap are ignored.
func (t Tally) Observe(description, typeColumn string) Tally {
	if t.Full() {
		return t
	}
	t.Sampled++

	text := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(description + " " + typeColumn))
	if strings.TrimSpace(text) == "" {
		return t
	}

	if debitIndicatorRe.MatchString(text) {
		t.Debits++
	}
	if creditIndicatorRe.MatchString(text) && !creditCardRe.MatchString(text) {
		t.Credits++
	}
	if checkIndicatorRe.MatchString(text) {
		t.Checks++
	}
	if achIndicatorRe.MatchString(text) {
		t.ACH++
	}
	if atmIndicatorRe.MatchString(text) {
		t.ATM++
	}
	if transferIndicatorRe.MatchString(text) {
		t.Transfers++
	}
	return t
}

// Infer resolves the account type from the counts. Checks mean a checking
// account; ATM, ACH or transfer activity means a depository account whose
// subtype may stay unresolved. Anything else is not conclusive.
func (t Tally) Infer() (accountType, subtype string, ok bool) {
	if !t.Ready() {
		return "", "", false
	}
	if t.Checks > 0 {
		return TypeDepository, SubtypeChecking, true
	}
	if t.ATM > 0 || t.ACH > 0 || t.Transfers > 0 {
		return TypeDepository, t.depositorySubtype(), true
	}
	return "", "", false
}

func (t Tally) depositorySubtype() string {
	switch {
	case t.Checks > 0:
		return SubtypeChecking
	case t.Debits > t.Credits && t.Debits > 2:
		return SubtypeChecking
	case t.ATM > 0:
		return SubtypeChecking
	case t.ACH > 2:
		return SubtypeChecking
	case t.Transfers > 0 && t.Debits > 0:
		return SubtypeChecking
	case t.Credits > t.Debits && t.Credits > 2:
		return SubtypeSavings
	}
	return ""
}
