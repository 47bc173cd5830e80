package categorization

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aksumit1/budgetbuddy-backend/pkg/db"
)

func strPtr(s string) *string { return &s }

func TestRepository_ListRules(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectQuery(`SELECT id, user_id, pattern, name, category, priority FROM merchant_rules WHERE user_id = \$1 ORDER BY priority DESC, created_at DESC`).
		WithArgs(userID.String()).
		WillReturnRows(pgxmock.NewRows(ruleColumns).
			AddRow(uuid.New(), userID, "blue bottle", strPtr("Blue Bottle"), CategoryDining, 10).
			AddRow(uuid.New(), userID, "grisalin", nil, CategoryRentIncome, 0))

	rules, err := NewRepository(mock).ListRules(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "Blue Bottle", rules[0].Name)
	assert.Equal(t, 10, rules[0].Priority)
	assert.Equal(t, "", rules[1].Name)
	assert.Equal(t, CategoryRentIncome, rules[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListRulesError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM merchant_rules`).WillReturnError(errors.New("connection reset"))

	_, err = NewRepository(mock).ListRules(context.Background(), uuid.New())
	assert.ErrorContains(t, err, "list merchant rules")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindRuleByPattern(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		ruleID := uuid.New()
		mock.ExpectQuery(`FROM merchant_rules WHERE user_id = \$1 AND pattern = \$2 LIMIT 1`).
			WithArgs(userID.String(), "blue bottle").
			WillReturnRows(pgxmock.NewRows(ruleColumns).
				AddRow(ruleID, userID, "blue bottle", nil, CategoryDining, 0))

		rule, err := NewRepository(mock).FindRuleByPattern(ctx, userID, "Blue Bottle")
		require.NoError(t, err)
		require.NotNil(t, rule)
		assert.Equal(t, ruleID, rule.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM merchant_rules WHERE user_id = \$1 AND pattern = \$2 LIMIT 1`).
			WithArgs(userID.String(), "nothing").
			WillReturnRows(pgxmock.NewRows(ruleColumns))

		rule, err := NewRepository(mock).FindRuleByPattern(ctx, userID, "nothing")
		require.NoError(t, err)
		assert.Nil(t, rule)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_CreateRule(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	ruleID := uuid.New()
	mock.ExpectQuery(`INSERT INTO merchant_rules \(user_id,pattern,name,category,priority\) VALUES \(\$1,\$2,\$3,\$4,\$5\) RETURNING id`).
		WithArgs(userID.String(), "blue bottle", pgxmock.AnyArg(), CategoryDining, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(ruleID))

	rule := &Rule{UserID: userID, MerchantRule: MerchantRule{Pattern: "Blue Bottle", Name: "Blue Bottle", Category: CategoryDining}}
	require.NoError(t, NewRepository(mock).CreateRule(context.Background(), rule))
	assert.Equal(t, ruleID, rule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateRule(t *testing.T) {
	ctx := context.Background()
	rule := &Rule{ID: uuid.New(), UserID: uuid.New(), Priority: 5,
		MerchantRule: MerchantRule{Pattern: "costco", Name: "Costco", Category: CategoryShopping}}

	t.Run("updated", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE merchant_rules SET name = \$1, category = \$2, priority = \$3 WHERE id = \$4 AND user_id = \$5`).
			WithArgs(pgxmock.AnyArg(), CategoryShopping, 5, rule.ID.String(), rule.UserID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, NewRepository(mock).UpdateRule(ctx, rule))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`UPDATE merchant_rules`).
			WithArgs(pgxmock.AnyArg(), CategoryShopping, 5, rule.ID.String(), rule.UserID.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err = NewRepository(mock).UpdateRule(ctx, rule)
		assert.ErrorIs(t, err, db.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_UpdateTransactionsCategory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	userID := uuid.New()
	mock.ExpectExec(`UPDATE transactions SET category_primary = \$1, category_detailed = \$2 WHERE user_id = \$3 AND description ILIKE \$4`).
		WithArgs(CategoryDining, CategoryDining, userID.String(), "%blue bottle%").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := NewRepository(mock).UpdateTransactionsCategory(context.Background(), userID, "%blue bottle%", CategoryDining)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
