package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func observeAll(t Tally, descriptions ...string) Tally {
	for _, d := range descriptions {
		t = t.Observe(d, "")
	}
	return t
}

func TestTally_Infer(t *testing.T) {
	tests := []struct {
		name     string
		rows     []string
		wantType string
		wantSub  string
		wantOK   bool
	}{
		{
			name:     "checks and atm",
			rows:     []string{"CHECK #1021", "CHECK #1022", "ATM WITHDRAWAL"},
			wantType: TypeDepository,
			wantSub:  SubtypeChecking,
			wantOK:   true,
		},
		{
			name:     "atm only",
			rows:     []string{"ATM WITHDRAWAL 1", "ATM WITHDRAWAL 2", "ATM WITHDRAWAL 3"},
			wantType: TypeDepository,
			wantSub:  SubtypeChecking,
			wantOK:   true,
		},
		{
			name:     "ach heavy",
			rows:     []string{"ACH CREDIT PAYROLL", "ACH CREDIT PAYROLL", "ACH CREDIT PAYROLL"},
			wantType: TypeDepository,
			wantSub:  SubtypeChecking,
			wantOK:   true,
		},
		{
			name:     "credit dominant with transfer",
			rows:     []string{"Interest credit", "Interest credit", "Interest credit", "Transfer from checking"},
			wantType: TypeDepository,
			wantSub:  SubtypeSavings,
			wantOK:   true,
		},
		{
			name:     "single transfer stays unresolved subtype",
			rows:     []string{"Online transfer", "Coffee", "Groceries"},
			wantType: TypeDepository,
			wantSub:  "",
			wantOK:   true,
		},
		{
			name:   "purchases only",
			rows:   []string{"AMAZON", "STARBUCKS", "SHELL"},
			wantOK: false,
		},
		{
			name:   "below minimum sample",
			rows:   []string{"CHECK #1", "CHECK #2"},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountType, subtype, ok := observeAll(Tally{}, tt.rows...).Infer()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantType, accountType)
			assert.Equal(t, tt.wantSub, subtype)
		})
	}
}

func TestTally_ObserveIsAFold(t *testing.T) {
	start := Tally{}
	next := start.Observe("ATM WITHDRAWAL", "")
	assert.Equal(t, 0, start.Sampled)
	assert.Equal(t, 0, start.ATM)
	assert.Equal(t, 1, next.Sampled)
	assert.Equal(t, 1, next.ATM)
}

func TestTally_SampleCap(t *testing.T) {
	tally := NewTally(3, 5)
	for i := 0; i < 10; i++ {
		tally = tally.Observe("CHECK #100", "")
	}
	assert.Equal(t, 5, tally.Sampled)
	assert.Equal(t, 5, tally.Checks)
	assert.True(t, tally.Full())
}

func TestTally_Indicators(t *testing.T) {
	tally := Tally{}.Observe("", "ACH_CREDIT")
	assert.Equal(t, 1, tally.ACH)
	assert.Equal(t, 1, tally.Credits)

	tally = Tally{}.Observe("CREDIT CARD PAYMENT", "")
	assert.Equal(t, 0, tally.Credits, "credit card payments are not credits")

	tally = Tally{}.Observe("TRANSFER TO CHECKING", "")
	assert.Equal(t, 0, tally.Checks, "checking is not a check")
	assert.Equal(t, 1, tally.Transfers)

	tally = Tally{}.Observe("COACH OUTLET", "")
	assert.Equal(t, 0, tally.ACH)
}
