package account

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aksumit1/budgetbuddy-backend/pkg/db"
)

var accountColumns = []string{
	"id", "user_id", "institution_name", "account_name", "account_number",
	"account_type", "account_subtype", "plaid_account_id", "plaid_item_id",
}

// PostgresStore implements Store on Postgres
type PostgresStore struct {
	db db.Querier
}

// NewPostgresStore creates a store over a pool or any compatible querier
func NewPostgresStore(q db.Querier) *PostgresStore {
	return &PostgresStore{db: q}
}

func selectAccounts(userID uuid.UUID) sq.SelectBuilder {
	return sq.Select(accountColumns...).
		From("accounts").
		Where(sq.Eq{"user_id": userID.String()})
}

// FindByPlaidAccountID looks up an account by its aggregator account id
func (s *PostgresStore) FindByPlaidAccountID(ctx context.Context, userID uuid.UUID, plaidAccountID string) (*Account, error) {
	return s.one(ctx, selectAccounts(userID).Where(sq.Eq{"plaid_account_id": plaidAccountID}))
}

// FindByPlaidItemID returns every account linked through one aggregator item
func (s *PostgresStore) FindByPlaidItemID(ctx context.Context, userID uuid.UUID, plaidItemID string) ([]Account, error) {
	return s.many(ctx, selectAccounts(userID).Where(sq.Eq{"plaid_item_id": plaidItemID}).OrderBy("created_at"))
}

// FindByAccountNumberAndInstitution matches number exactly and institution case-insensitively
func (s *PostgresStore) FindByAccountNumberAndInstitution(ctx context.Context, userID uuid.UUID, number, institution string) (*Account, error) {
	query := selectAccounts(userID).
		Where(sq.Eq{"account_number": number}).
		Where(sq.Expr("LOWER(institution_name) = LOWER(?)", institution))
	return s.one(ctx, query)
}

// FindByAccountNumber matches the stored number exactly
func (s *PostgresStore) FindByAccountNumber(ctx context.Context, userID uuid.UUID, number string) (*Account, error) {
	return s.one(ctx, selectAccounts(userID).Where(sq.Eq{"account_number": number}))
}

// ListByUser returns all accounts of a user
func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]Account, error) {
	return s.many(ctx, selectAccounts(userID).OrderBy("created_at"))
}

// FindDuplicate returns the id of an already imported transaction with the
// same account, amount, date and description.
func (s *PostgresStore) FindDuplicate(ctx context.Context, key CompositeKey) (string, error) {
	query := sq.Select("id").
		From("transactions").
		Where(sq.Eq{"user_id": key.UserID.String()}).
		Where(sq.Eq{"transaction_date": key.Date.Format("2006-01-02")}).
		Where(sq.Eq{"amount": key.Amount.StringFixed(2)}).
		Where(sq.Expr("LOWER(description) = LOWER(?)", key.Description))
	if key.AccountID != "" {
		query = query.Where(sq.Eq{"account_id": key.AccountID})
	}

	var id uuid.UUID
	if err := db.SelectOne(ctx, s.db, query, &id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find duplicate transaction: %w", err)
	}
	return id.String(), nil
}

func (s *PostgresStore) one(ctx context.Context, query sq.SelectBuilder) (*Account, error) {
	var (
		acc      Account
		nullable [7]*string
	)
	dest := []any{&acc.ID, &acc.UserID}
	for i := range nullable {
		dest = append(dest, &nullable[i])
	}
	if err := db.SelectOne(ctx, s.db, query, dest...); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	fill(&acc, nullable)
	return &acc, nil
}

func (s *PostgresStore) many(ctx context.Context, query sq.SelectBuilder) ([]Account, error) {
	var accounts []Account
	err := db.Select(ctx, s.db, query, func(rows pgx.Rows) error {
		var (
			acc      Account
			nullable [7]*string
		)
		dest := []any{&acc.ID, &acc.UserID}
		for i := range nullable {
			dest = append(dest, &nullable[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		fill(&acc, nullable)
		accounts = append(accounts, acc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func fill(acc *Account, v [7]*string) {
	acc.InstitutionName = deref(v[0])
	acc.AccountName = deref(v[1])
	acc.AccountNumber = deref(v[2])
	acc.AccountType = deref(v[3])
	acc.AccountSubtype = deref(v[4])
	acc.PlaidAccountID = deref(v[5])
	acc.PlaidItemID = deref(v[6])
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
