package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by Store lookups that match nothing.
var ErrNotFound = errors.New("account not found")

// Account is a stored user account
type Account struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	InstitutionName string
	AccountName     string
	AccountNumber   string
	AccountType     string
	AccountSubtype  string
	PlaidAccountID  string
	PlaidItemID     string
}

// CompositeKey identifies a previously imported transaction that has no
// external source id.
type CompositeKey struct {
	UserID      uuid.UUID
	AccountID   string
	Amount      decimal.Decimal
	Date        time.Time
	Description string
}

// Store is the persistence collaborator used for matching and dedup.
type Store interface {
	FindByPlaidAccountID(ctx context.Context, userID uuid.UUID, plaidAccountID string) (*Account, error)
	FindByPlaidItemID(ctx context.Context, userID uuid.UUID, plaidItemID string) ([]Account, error)
	FindByAccountNumberAndInstitution(ctx context.Context, userID uuid.UUID, number, institution string) (*Account, error)
	FindByAccountNumber(ctx context.Context, userID uuid.UUID, number string) (*Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Account, error)
	FindDuplicate(ctx context.Context, key CompositeKey) (string, error)
}

// Matcher links a detected account to one the user already has.
type Matcher struct {
	store  Store
	logger *slog.Logger
}

// NewMatcher creates a matcher over store
func NewMatcher(store Store, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{store: store, logger: logger}
}

// MatchToExisting tries, in order: number and institution, number alone
// (exact then normalized), institution and type. It returns "" when nothing
// matches. Lookup failures are logged and the next strategy is tried.
func (m *Matcher) MatchToExisting(ctx context.Context, userID uuid.UUID, detected *DetectedAccount) (string, error) {
	if m == nil || m.store == nil || detected == nil || userID == uuid.Nil {
		return "", nil
	}

	if detected.AccountNumber != "" && detected.InstitutionName != "" {
		acc, err := m.store.FindByAccountNumberAndInstitution(ctx, userID, detected.AccountNumber, detected.InstitutionName)
		if id, done := m.found(acc, err, "number_and_institution"); done {
			return id, nil
		}
	}

	number := normalizeAccountNumber(detected.AccountNumber)
	if number != "" {
		acc, err := m.store.FindByAccountNumber(ctx, userID, detected.AccountNumber)
		if id, done := m.found(acc, err, "number"); done {
			return id, nil
		}
	}

	if number != "" || (detected.InstitutionName != "" && detected.AccountType != "") {
		accounts, err := m.store.ListByUser(ctx, userID)
		if err != nil {
			m.logger.Warn("failed to list accounts for matching", slog.Any("error", err))
		}
		if number != "" {
			for _, acc := range accounts {
				if normalizeAccountNumber(acc.AccountNumber) == number {
					m.logger.Info("matched account by normalized number", slog.String("account_id", acc.ID.String()))
					return acc.ID.String(), nil
				}
			}
		}
		if detected.InstitutionName != "" && detected.AccountType != "" {
			for _, acc := range accounts {
				if !strings.EqualFold(acc.InstitutionName, detected.InstitutionName) || acc.AccountType != detected.AccountType {
					continue
				}
				if number == "" || normalizeAccountNumber(acc.AccountNumber) == number {
					m.logger.Info("matched account by institution and type", slog.String("account_id", acc.ID.String()))
					return acc.ID.String(), nil
				}
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "", nil
}

func (m *Matcher) found(acc *Account, err error, strategy string) (string, bool) {
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("account lookup failed", slog.String("strategy", strategy), slog.Any("error", err))
		}
		return "", false
	}
	if acc == nil {
		return "", false
	}
	m.logger.Info("matched detected account", slog.String("strategy", strategy), slog.String("account_id", acc.ID.String()))
	return acc.ID.String(), true
}

// normalizeAccountNumber keeps the last four digits of a number in any format
// ("8-41007", "**** 1007").
func normalizeAccountNumber(number string) string {
	digits := maskChars.ReplaceAllString(number, "")
	if len(digits) > 4 {
		return digits[len(digits)-4:]
	}
	return digits
}
