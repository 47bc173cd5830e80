package categorization

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aksumit1/budgetbuddy-backend/pkg/db"
)

// Rule is a user-defined merchant rule as stored in the database
type Rule struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Priority int
	MerchantRule
}

// RuleStore is the persistence the rule service depends on
type RuleStore interface {
	ListRules(ctx context.Context, userID uuid.UUID) ([]Rule, error)
	FindRuleByPattern(ctx context.Context, userID uuid.UUID, pattern string) (*Rule, error)
	CreateRule(ctx context.Context, rule *Rule) error
	UpdateRule(ctx context.Context, rule *Rule) error
	UpdateTransactionsCategory(ctx context.Context, userID uuid.UUID, pattern, category string) (int64, error)
}

var ruleColumns = []string{"id", "user_id", "pattern", "name", "category", "priority"}

// Repository handles database operations for merchant rules
type Repository struct {
	db db.Querier
}

// NewRepository creates a new categorization repository
func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

// ListRules fetches all rules of a user, highest priority first
func (r *Repository) ListRules(ctx context.Context, userID uuid.UUID) ([]Rule, error) {
	query := sq.Select(ruleColumns...).
		From("merchant_rules").
		Where(sq.Eq{"user_id": userID.String()}).
		OrderBy("priority DESC", "created_at DESC")

	var rules []Rule
	err := db.Select(ctx, r.db, query, func(rows pgx.Rows) error {
		rule, err := scanRule(rows)
		if err != nil {
			return err
		}
		rules = append(rules, rule)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list merchant rules: %w", err)
	}
	return rules, nil
}

// FindRuleByPattern returns the rule for a pattern, or nil when there is none
func (r *Repository) FindRuleByPattern(ctx context.Context, userID uuid.UUID, pattern string) (*Rule, error) {
	query := sq.Select(ruleColumns...).
		From("merchant_rules").
		Where(sq.Eq{"user_id": userID.String()}).
		Where(sq.Eq{"pattern": strings.ToLower(pattern)})

	var (
		rule Rule
		name *string
	)
	err := db.SelectOne(ctx, r.db, query,
		&rule.ID, &rule.UserID, &rule.Pattern, &name, &rule.Category, &rule.Priority)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find merchant rule: %w", err)
	}
	if name != nil {
		rule.Name = *name
	}
	return &rule, nil
}

// CreateRule inserts a rule and sets its ID
func (r *Repository) CreateRule(ctx context.Context, rule *Rule) error {
	var name *string
	if rule.Name != "" {
		name = &rule.Name
	}
	query := sq.Insert("merchant_rules").
		Columns("user_id", "pattern", "name", "category", "priority").
		Values(rule.UserID.String(), strings.ToLower(rule.Pattern), name, rule.Category, rule.Priority).
		Suffix("RETURNING id")

	if err := db.InsertReturning(ctx, r.db, query, &rule.ID); err != nil {
		return fmt.Errorf("create merchant rule: %w", err)
	}
	return nil
}

// UpdateRule rewrites the name, category and priority of an existing rule
func (r *Repository) UpdateRule(ctx context.Context, rule *Rule) error {
	var name *string
	if rule.Name != "" {
		name = &rule.Name
	}
	query := sq.Update("merchant_rules").
		Set("name", name).
		Set("category", rule.Category).
		Set("priority", rule.Priority).
		Where(sq.Eq{"id": rule.ID.String()}).
		Where(sq.Eq{"user_id": rule.UserID.String()})

	n, err := db.Update(ctx, r.db, query)
	if err != nil {
		return fmt.Errorf("update merchant rule: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("update merchant rule: %w", db.ErrNotFound)
	}
	return nil
}

// UpdateTransactionsCategory recategorizes already imported transactions whose
// description contains pattern
func (r *Repository) UpdateTransactionsCategory(ctx context.Context, userID uuid.UUID, pattern, category string) (int64, error) {
	query := sq.Update("transactions").
		Set("category_primary", category).
		Set("category_detailed", category).
		Where(sq.Eq{"user_id": userID.String()}).
		Where(sq.ILike{"description": "%" + strings.Trim(pattern, "%") + "%"})

	n, err := db.Update(ctx, r.db, query)
	if err != nil {
		return 0, fmt.Errorf("backfill transaction categories: %w", err)
	}
	return n, nil
}

func scanRule(rows pgx.Rows) (Rule, error) {
	var (
		rule Rule
		name *string
	)
	if err := rows.Scan(&rule.ID, &rule.UserID, &rule.Pattern, &name, &rule.Category, &rule.Priority); err != nil {
		return Rule{}, err
	}
	if name != nil {
		rule.Name = *name
	}
	return rule, nil
}
