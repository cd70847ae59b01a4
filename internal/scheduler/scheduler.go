package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	log "github.com/sirupsen/logrus"
)

// JobFunc is one unit of scheduled work. It must respect ctx cancellation.
type JobFunc func(ctx context.Context) error

// NextFunc computes the next run time after the given instant.
type NextFunc func(after time.Time) time.Time

// Reporter receives exception records for failed or panicked jobs.
type Reporter interface {
	RecordException(ctx context.Context, e models.ApiException)
}

type job struct {
	name string
	next NextFunc
	run  JobFunc
}

// Scheduler runs registered background jobs, one goroutine per job. Failures
// are recorded to the audit trail and the schedule keeps going; a panicked
// job run never takes the process down.
type Scheduler struct {
	reporter Reporter
	jobs     []job

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates an empty scheduler
func New(reporter Reporter) *Scheduler {
	return &Scheduler{reporter: reporter}
}

// Every registers a job that runs on a fixed interval.
func (s *Scheduler) Every(name string, interval time.Duration, run JobFunc) {
	s.At(name, func(after time.Time) time.Time { return after.Add(interval) }, run)
}

// At registers a job whose schedule is computed per run, e.g. next market
// close or next midnight. Registration after Start is not supported.
func (s *Scheduler) At(name string, next NextFunc, run JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		panic("scheduler: register after Start")
	}
	s.jobs = append(s.jobs, job{name: name, next: next, run: run})
}

// Start launches every registered job. The jobs stop when Stop is called or
// the parent context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}
	log.WithField("jobs", len(s.jobs)).Info("scheduler started")
}

// Stop cancels all jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
	log.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	defer s.wg.Done()
	logger := log.WithField("job", j.name)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		next := j.next(time.Now())
		logger.WithField("next", next.Format(time.RFC3339)).Debug("job scheduled")
		timer.Reset(time.Until(next))

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		s.runOnce(ctx, j, logger)
	}
}

// runOnce executes one job run with panic containment.
func (s *Scheduler) runOnce(ctx context.Context, j job, logger *log.Entry) {
	defer func() {
		if r := recover(); r != nil {
			stack := string(debug.Stack())
			logger.WithField("panic", r).Error("job panicked")
			s.reporter.RecordException(ctx, models.ApiException{
				Source:        "scheduler/" + j.name,
				ExceptionType: "panic",
				Message:       fmt.Sprintf("job %s panicked: %v", j.name, r),
				StackTrace:    &stack,
				Severity:      models.SeverityCritical,
				Timestamp:     time.Now().UTC(),
			})
		}
	}()

	start := time.Now()
	err := j.run(ctx)
	elapsed := time.Since(start)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.WithError(err).WithField("elapsed", elapsed).Error("job failed")
		s.reporter.RecordException(ctx, models.ApiException{
			Source:        "scheduler/" + j.name,
			ExceptionType: fmt.Sprintf("%T", err),
			Message:       fmt.Sprintf("job %s failed: %v", j.name, err),
			Severity:      models.SeverityHigh,
			Timestamp:     time.Now().UTC(),
		})
		return
	}
	logger.WithField("elapsed", elapsed).Info("job finished")
}
