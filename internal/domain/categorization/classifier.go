package categorization

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aksumit1/budgetbuddy-backend/pkg/telemetry"
)

// Detection methods reported by a Detector
const (
	MethodFuzzyMatch  = "FUZZY_MATCH"
	MethodSearchMatch = "SEARCH_MATCH"
	MethodNone        = "NONE"
)

// Detection is a category suggestion with a confidence in [0, 1].
type Detection struct {
	Category   string
	Confidence float64
	Method     string
}

// Detector suggests a category from loosely matching merchant text. It is
// consulted after the rule based stages and merchant rules, and before the
// merchant table.
type Detector interface {
	Detect(merchant, description string, amount decimal.Decimal, channel, rawCategory string) Detection
}

// Input is everything the classifier looks at for one transaction.
type Input struct {
	RawCategory          string
	Description          string
	Merchant             string
	Amount               decimal.Decimal
	PaymentChannel       string
	DebitCreditIndicator string
	TransactionType      string // preliminary type label, e.g. INCOME or INVESTMENT
	AccountType          string
	AccountSubtype       string
}

// Classifier assigns a category label to a transaction by running an ordered
// cascade of stages. It always returns a non-empty label.
type Classifier struct {
	stages    []Stage
	rules     *Engine
	merchants *Engine
	keywords  *Engine
	providers *Engine
	detector  Detector
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	logger    *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDetector plugs in the fuzzy merchant detector.
func WithDetector(d Detector) Option {
	return func(c *Classifier) { c.detector = d }
}

// WithMetrics records which stage decided each transaction.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Classifier) { c.metrics = m }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) { c.logger = l }
}

// WithRules adds merchant rules. They run before the detector and the curated
// table, so a rule for a well-known merchant takes effect.
func WithRules(rules []MerchantRule) Option {
	return func(c *Classifier) { c.SetRules(rules) }
}

// NewClassifier creates a classifier with the built-in tables.
func NewClassifier(opts ...Option) *Classifier {
	providers := make([]MerchantRule, 0, len(cableInternetProviders)+len(phoneProviders)+len(utilityCompanies))
	for _, list := range [][]string{cableInternetProviders, phoneProviders, utilityCompanies} {
		for _, p := range list {
			providers = append(providers, MerchantRule{Pattern: p, Category: CategoryUtilities})
		}
	}

	c := &Classifier{
		stages:    defaultStages(),
		rules:     NewEngine(nil, nil),
		merchants: NewEngine(nil, DefaultMerchantRules()),
		keywords:  NewKeywordEngine(merchantTable(descriptionKeywordGroups)),
		providers: NewEngine(nil, providers),
		tracer:    telemetry.Tracer(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRules replaces the merchant rules.
func (c *Classifier) SetRules(rules []MerchantRule) {
	c.rules.Build(rules, nil)
}

// RuleCount returns the number of distinct merchant rule patterns.
func (c *Classifier) RuleCount() int {
	return c.rules.PatternCount()
}

// Classify returns the category label for in.
func (c *Classifier) Classify(ctx context.Context, in Input) string {
	category, _ := c.ClassifyWithTrace(ctx, in)
	return category
}

// ClassifyWithTrace returns the category label and the name of the stage that
// produced it.
func (c *Classifier) ClassifyWithTrace(ctx context.Context, in Input) (string, string) {
	_, span := c.tracer.Start(ctx, "categorization.Classify")
	defer span.End()

	x := newContext(c, in)
	for _, st := range c.stages {
		category, ok := st.Fn(x)
		if !ok || category == "" {
			continue
		}
		c.metrics.StageMatched(st.Name)
		span.SetAttributes(
			attribute.String("classifier.stage", st.Name),
			attribute.String("classifier.category", category),
		)
		c.logger.Debug("transaction classified",
			"stage", st.Name,
			"category", category,
			"description", in.Description,
		)
		return category, st.Name
	}
	return CategoryOther, "default"
}
