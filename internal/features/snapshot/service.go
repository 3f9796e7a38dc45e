package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-analytics/internal/config"
	"go-analytics/internal/features/chart"
	"go-analytics/internal/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type SnapshotService interface {
	InitializeScheduler() error
	StopScheduler() error
	RunNow(ctx context.Context, trigger string) (*SnapshotRun, error)
	Status() Status
	ListRuns(ctx context.Context, limit int) ([]SnapshotRun, error)
}

type SnapshotServiceImpl struct {
	repo         SnapshotRepository
	chartService chart.ChartService
	logger       *zap.Logger

	schedule string
	sources  []string

	scheduler *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	lastRun   *SnapshotRun
}

func NewSnapshotService(
	repo SnapshotRepository,
	chartService chart.ChartService,
	cfg *config.Config,
	log *zap.Logger,
) SnapshotService {
	return &SnapshotServiceImpl{
		repo:         repo,
		chartService: chartService,
		logger:       log,
		schedule:     cfg.SnapshotSchedule,
		sources:      cfg.SnapshotSources,
	}
}

// InitializeScheduler registers the snapshot job. An empty schedule leaves
// snapshots disabled; overlapping ticks are skipped.
func (s *SnapshotServiceImpl) InitializeScheduler() error {
	if s.schedule == "" {
		s.logger.Info("snapshot scheduler disabled")
		return nil
	}
	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", s.schedule, err)
	}
	for _, name := range s.sources {
		if _, ok := chart.LookupSource(name); !ok {
			return fmt.Errorf("unknown snapshot data source %q", name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.scheduler = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	entryID, err := s.scheduler.AddFunc(s.schedule, func() {
		if _, err := s.RunNow(context.Background(), TriggerSchedule); err != nil {
			s.logger.Error("snapshot run failed", zap.String(logger.FieldOperation, "snapshot"), zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add snapshot job to scheduler: %w", err)
	}
	s.entryID = entryID
	s.scheduler.Start()

	s.logger.Info("snapshot scheduler started",
		zap.String("schedule", s.schedule),
		zap.Strings("sources", s.sources))
	return nil
}

func (s *SnapshotServiceImpl) StopScheduler() error {
	s.mu.RLock()
	scheduler := s.scheduler
	s.mu.RUnlock()

	if scheduler != nil {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

// RunNow renders one chart per configured source. A failing source is
// recorded on the run and does not stop the others.
func (s *SnapshotServiceImpl) RunNow(ctx context.Context, trigger string) (*SnapshotRun, error) {
	run := &SnapshotRun{
		Trigger:   trigger,
		StartTime: time.Now().UTC(),
		Status:    RunStatusRunning,
		Charts:    []SnapshotChart{},
	}
	if err := s.repo.CreateRun(ctx, run); err != nil {
		s.logger.Warn("failed to record snapshot run", zap.String(logger.FieldOperation, "snapshot"), zap.Error(err))
	}

	for _, name := range s.sources {
		outcome := SnapshotChart{DataSource: name}
		res, err := s.chartService.GenerateChart(ctx, chart.GenerateChartRequest{DataSource: name})
		if err != nil {
			outcome.Error = err.Error()
			s.logger.Warn("snapshot chart failed",
				zap.String(logger.FieldOperation, "snapshot"),
				zap.String("data_source", name),
				zap.Error(err))
		} else {
			outcome.FileID = res.Artifact.FileID
		}
		run.Charts = append(run.Charts, outcome)
	}

	end := time.Now().UTC()
	run.EndTime = &end
	run.Status = statusOf(run.Charts)

	if err := s.repo.UpdateRun(ctx, run); err != nil {
		s.logger.Warn("failed to update snapshot run", zap.String(logger.FieldOperation, "snapshot"), zap.Error(err))
	}

	s.mu.Lock()
	s.lastRun = run
	s.mu.Unlock()

	s.logger.Info("snapshot run finished",
		zap.String(logger.FieldOperation, "snapshot"),
		zap.String("trigger", trigger),
		zap.String("status", run.Status),
		zap.Int("charts", len(run.Charts)))

	if run.Status == RunStatusFailed && len(run.Charts) > 0 {
		return run, fmt.Errorf("all %d snapshot charts failed", len(run.Charts))
	}
	return run, nil
}

func (s *SnapshotServiceImpl) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Enabled:  s.scheduler != nil,
		Schedule: s.schedule,
		Sources:  s.sources,
		LastRun:  s.lastRun,
	}
	if st.Sources == nil {
		st.Sources = []string{}
	}
	if s.scheduler != nil {
		next := s.scheduler.Entry(s.entryID).Next
		if !next.IsZero() {
			st.NextRun = &next
		}
	}
	return st
}

func (s *SnapshotServiceImpl) ListRuns(ctx context.Context, limit int) ([]SnapshotRun, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListRuns(ctx, limit)
}
