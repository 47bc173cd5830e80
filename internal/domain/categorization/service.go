package categorization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrNoRuleStore is returned by CreateRule when the service has no repository
var ErrNoRuleStore = errors.New("no rule store configured")

// Service hands out classifiers that include a user's own merchant rules
type Service struct {
	repo      RuleStore
	baseRules []MerchantRule
	opts      []Option
	logger    *slog.Logger

	// one classifier per user, dropped when the user's rules change
	cache   map[uuid.UUID]*Classifier
	cacheMu sync.RWMutex
}

// NewService creates a new categorization service. baseRules apply to every
// user (typically loaded from the rules YAML file); repo may be nil.
func NewService(repo RuleStore, baseRules []MerchantRule, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		baseRules: baseRules,
		opts:      opts,
		logger:    logger,
		cache:     make(map[uuid.UUID]*Classifier),
	}
}

// Default returns a classifier with only the shared rules
func (s *Service) Default() *Classifier {
	return s.ClassifierFor(context.Background(), uuid.Nil)
}

// ClassifierFor returns the classifier for a user. Rule lookup failures fall
// back to the shared rules.
func (s *Service) ClassifierFor(ctx context.Context, userID uuid.UUID) *Classifier {
	s.cacheMu.RLock()
	if c, ok := s.cache[userID]; ok {
		s.cacheMu.RUnlock()
		return c
	}
	s.cacheMu.RUnlock()

	rules := s.userRules(ctx, userID)
	opts := append(append([]Option{}, s.opts...), WithRules(append(rules, s.baseRules...)))
	c := NewClassifier(opts...)
	s.logger.Debug("classifier built", "user_id", userID, "rules", c.RuleCount())

	s.cacheMu.Lock()
	s.cache[userID] = c
	s.cacheMu.Unlock()
	return c
}

func (s *Service) userRules(ctx context.Context, userID uuid.UUID) []MerchantRule {
	if s.repo == nil || userID == uuid.Nil {
		return nil
	}
	stored, err := s.repo.ListRules(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load merchant rules, using shared rules",
			"user_id", userID, "error", err)
		return nil
	}
	rules := make([]MerchantRule, 0, len(stored))
	for _, r := range stored {
		rules = append(rules, r.MerchantRule)
	}
	return rules
}

// CreateRule stores a merchant rule for a user and optionally recategorizes
// existing transactions that match it. A rule for a pattern the user already
// has is updated in place with the new name, category and priority. Returns
// the rule and the number of transactions updated.
func (s *Service) CreateRule(ctx context.Context, userID uuid.UUID, rule MerchantRule, priority int, applyToExisting bool) (*Rule, int64, error) {
	if s.repo == nil {
		return nil, 0, fmt.Errorf("create rule: %w", ErrNoRuleStore)
	}
	rule.Pattern = strings.ToLower(strings.TrimSpace(rule.Pattern))
	if rule.Pattern == "" || !IsKnownCategory(rule.Category) {
		return nil, 0, fmt.Errorf("create rule: %w", ErrInvalidRule)
	}

	existing, err := s.repo.FindRuleByPattern(ctx, userID, rule.Pattern)
	if err != nil {
		return nil, 0, err
	}

	stored := &Rule{UserID: userID, Priority: priority, MerchantRule: rule}
	if existing != nil {
		stored.ID = existing.ID
		if stored.Name == "" {
			stored.Name = existing.Name
		}
		if err := s.repo.UpdateRule(ctx, stored); err != nil {
			return nil, 0, err
		}
		s.logger.Info("merchant rule updated", "user_id", userID, "pattern", rule.Pattern,
			"category", rule.Category, "previous_category", existing.Category)
	} else if err := s.repo.CreateRule(ctx, stored); err != nil {
		return nil, 0, err
	}

	s.cacheMu.Lock()
	delete(s.cache, userID)
	s.cacheMu.Unlock()

	var updated int64
	if applyToExisting {
		updated, err = s.repo.UpdateTransactionsCategory(ctx, userID, rule.Pattern, rule.Category)
		if err != nil {
			// rule is stored, only the backfill failed
			s.logger.Warn("rule backfill failed", "user_id", userID, "pattern", rule.Pattern, "error", err)
			return stored, 0, nil
		}
	}

	return stored, updated, nil
}
