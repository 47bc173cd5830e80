package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aksumit1/budgetbuddy-backend/internal/domain/account"
	"github.com/aksumit1/budgetbuddy-backend/internal/domain/categorization"
	importhandler "github.com/aksumit1/budgetbuddy-backend/internal/domain/import/handler"
	importservice "github.com/aksumit1/budgetbuddy-backend/internal/domain/import/service"
	"github.com/aksumit1/budgetbuddy-backend/pkg/config"
	"github.com/aksumit1/budgetbuddy-backend/pkg/cron"
	"github.com/aksumit1/budgetbuddy-backend/pkg/db"
	"github.com/aksumit1/budgetbuddy-backend/pkg/storage"
	"github.com/aksumit1/budgetbuddy-backend/pkg/telemetry"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config   *config.Config
	DB       *db.DB
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Metrics  *telemetry.Metrics

	// Repositories
	AccountStore       account.Store
	CategorizationRepo *categorization.Repository
	Archive            storage.Archive

	// Services
	SearchIndex           *categorization.SearchIndex
	CategorizationService *categorization.Service
	ImportService         *importservice.ImportService
	Scheduler             *cron.Scheduler

	// Handlers
	ImportHandler *importhandler.ImportHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}

	if cfg.Database.Enabled {
		if err := deps.initDatabase(); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
		deps.initRepositories()
	} else {
		logger.Info("database disabled: account matching and cross-file dedup are off")
	}

	if err := deps.initServices(); err != nil {
		deps.Cleanup()
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() {
	d.AccountStore = account.NewPostgresStore(d.DB.Pool)
	d.CategorizationRepo = categorization.NewRepository(d.DB.Pool)

	d.Logger.Info("repositories initialized")
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	if d.Config.Observability.MetricsEnabled {
		d.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		d.Metrics = telemetry.NewMetrics(d.Registry)
	}

	var baseRules []categorization.MerchantRule
	if path := d.Config.Import.MerchantRules; path != "" {
		rules, err := categorization.LoadRulesFile(path)
		if err != nil {
			return err
		}
		baseRules = rules
		d.Logger.Info("merchant rules loaded", slog.String("path", path), slog.Int("rules", len(rules)))
	}

	detector, index, err := categorization.NewIndexedDetector(baseRules, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to build merchant index: %w", err)
	}
	d.SearchIndex = index

	// a nil *Repository must not become a non-nil RuleStore
	var ruleStore categorization.RuleStore
	if d.CategorizationRepo != nil {
		ruleStore = d.CategorizationRepo
	}
	d.CategorizationService = categorization.NewService(ruleStore, baseRules, d.Logger,
		categorization.WithDetector(detector),
		categorization.WithMetrics(d.Metrics),
		categorization.WithLogger(d.Logger),
	)

	unifier := categorization.NewUnifier(d.CategorizationService.Default(), detector, d.Logger)
	d.ImportService = importservice.NewImportService(d.CategorizationService, d.AccountStore, d.Logger).
		WithMetrics(d.Metrics).
		WithUnifier(unifier).
		WithLimits(importservice.Limits{
			MaxTransactions: d.Config.Import.MaxTransactions,
			SampleMin:       d.Config.Import.SampleMin,
			SampleMax:       d.Config.Import.SampleMax,
			DefaultCurrency: d.Config.Import.DefaultCurrency,
			BatchWorkers:    d.Config.Import.BatchWorkers,
		})

	if dir := d.Config.Import.ArchiveDir; dir != "" {
		archive, err := storage.New(dir)
		if err != nil {
			return fmt.Errorf("failed to open statement archive: %w", err)
		}
		d.Archive = archive
	}

	d.Scheduler = cron.NewScheduler(d.ImportService, d.Config.Import.InboxDir, d.Config.Import.InboxSchedule, d.Logger)

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.ImportHandler = importhandler.NewImportHandler(d.ImportService, d.CategorizationService, d.Config.Import.MaxUploadBytes, d.Logger)
	if d.AccountStore != nil {
		d.ImportHandler.WithAccounts(d.AccountStore)
	}
	if d.Archive != nil {
		d.ImportHandler.WithArchive(d.Archive)
	}

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.SearchIndex != nil {
		if err := d.SearchIndex.Close(); err != nil {
			d.Logger.Warn("failed to close search index", slog.Any("error", err))
		}
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
