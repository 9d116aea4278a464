package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Dispatcher runs one reminder pass.
type Dispatcher interface {
	Dispatch(ctx context.Context) (DispatchStats, error)
}

// Scheduler runs the dispatcher on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	d       Dispatcher
	logger  zerolog.Logger
	timeout time.Duration
}

// NewScheduler validates spec (standard five-field cron syntax) and
// prepares a scheduler. Runs never overlap: a tick arriving while the
// previous pass is still running is skipped.
func NewScheduler(d Dispatcher, spec string, loc *time.Location, logger zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{d: d, logger: logger, timeout: 2 * time.Minute}
	cl := cronLogger{logger: logger}
	s.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := s.cron.AddFunc(spec, s.RunOnce); err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.cron.Entries())).Msg("reminder scheduler started")
}

// Stop stops scheduling and waits for a running pass to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// RunOnce performs a single dispatcher pass and logs its outcome.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	stats, err := s.d.Dispatch(ctx)
	evt := s.logger.Info()
	if err != nil {
		evt = s.logger.Error().Err(err)
	}
	evt.Int("checked", stats.Checked).
		Int("due", stats.Due).
		Int("sent", stats.Sent).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Dur("latency", time.Since(start)).
		Msg("reminder dispatch")
}

// cronLogger routes cron's own messages to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
