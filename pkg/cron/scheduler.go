// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	importservice "github.com/aksumit1/budgetbuddy-backend/internal/domain/import/service"
)

// Subdirectories of the inbox that receive handled files
const (
	ProcessedDir = "processed"
	FailedDir    = "failed"
)

const inboxRunTimeout = 30 * time.Minute

// InboxReport summarizes one inbox scan
type InboxReport struct {
	Files        int
	Imported     int
	Failed       int
	Transactions int
}

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron     *cron.Cron
	importer *importservice.ImportService
	inboxDir string
	schedule string
	opts     importservice.ImportOptions
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that imports statements dropped into
// inboxDir on the given cron schedule.
func NewScheduler(importer *importservice.ImportService, inboxDir, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &Scheduler{
		cron:     c,
		importer: importer,
		inboxDir: inboxDir,
		schedule: schedule,
		logger:   logger,
	}
}

// WithOptions sets the import options used for inbox files
func (s *Scheduler) WithOptions(opts importservice.ImportOptions) *Scheduler {
	s.opts = opts
	return s
}

// Start begins scheduled jobs. Without an inbox directory nothing is scheduled.
func (s *Scheduler) Start() error {
	if s.inboxDir == "" {
		s.logger.Info("inbox import disabled: no inbox directory configured")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.scanInbox); err != nil {
		return fmt.Errorf("invalid inbox schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("inbox", s.inboxDir),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) scanInbox() {
	ctx, cancel := context.WithTimeout(context.Background(), inboxRunTimeout)
	defer cancel()

	if _, err := s.RunNow(ctx); err != nil {
		s.logger.Error("inbox import failed", slog.Any("error", err))
	}
}

// RunNow imports every statement currently in the inbox. Imported files move
// to processed/, unreadable ones to failed/.
func (s *Scheduler) RunNow(ctx context.Context) (InboxReport, error) {
	var report InboxReport

	names, err := pendingFiles(s.inboxDir)
	if err != nil {
		return report, err
	}
	report.Files = len(names)
	if len(names) == 0 {
		return report, nil
	}

	files := make([]importservice.BatchFile, 0, len(names))
	closers := make([]io.Closer, 0, len(names))
	for _, name := range names {
		f, err := os.Open(filepath.Join(s.inboxDir, name))
		if err != nil {
			s.logger.Warn("failed to open inbox file", slog.String("filename", name), slog.Any("error", err))
			report.Failed++
			continue
		}
		closers = append(closers, f)
		files = append(files, importservice.BatchFile{Name: name, Reader: f})
	}

	results := s.importer.ImportBatch(ctx, files, s.opts)
	for _, c := range closers {
		_ = c.Close()
	}

	for _, res := range results {
		target := ProcessedDir
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
				// leave it for the next run
				continue
			}
			target = FailedDir
			report.Failed++
		} else {
			report.Imported++
			report.Transactions += res.Result.SuccessCount
		}
		if err := s.move(res.Filename, target); err != nil {
			s.logger.Error("failed to move inbox file", slog.String("filename", res.Filename), slog.Any("error", err))
		}
	}

	s.logger.Info("inbox import completed",
		slog.Int("files", report.Files),
		slog.Int("imported", report.Imported),
		slog.Int("failed", report.Failed),
		slog.Int("transactions", report.Transactions),
	)
	return report, nil
}

func (s *Scheduler) move(name, subdir string) error {
	dir := filepath.Join(s.inboxDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(filepath.Join(s.inboxDir, name), filepath.Join(dir, name))
}

// pendingFiles lists statement files at the top level of dir, sorted by name.
func pendingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".csv", ".xlsx", ".xlsm":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
