package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/epeers/tradingvision/internal/models"
)

type captureReporter struct {
	mu         sync.Mutex
	exceptions []models.ApiException
}

func (r *captureReporter) RecordException(_ context.Context, e models.ApiException) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exceptions = append(r.exceptions, e)
}

func (r *captureReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.exceptions)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSchedulerRunsIntervalJob(t *testing.T) {
	var mu sync.Mutex
	runs := 0

	s := New(&captureReporter{})
	s.Every("tick", 10*time.Millisecond, func(ctx context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		runs++
		return nil
	})
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return runs >= 2
	})
}

func TestSchedulerRecordsJobFailure(t *testing.T) {
	reporter := &captureReporter{}
	s := New(reporter)
	s.Every("failing", 10*time.Millisecond, func(ctx context.Context) error {
		return errors.New("boom")
	})
	s.Start(context.Background())
	defer s.Stop()

	waitFor(t, 2*time.Second, func() bool { return reporter.count() >= 1 })

	reporter.mu.Lock()
	exc := reporter.exceptions[0]
	reporter.mu.Unlock()
	if exc.Severity != models.SeverityHigh {
		t.Errorf("job failure should be High severity, got %s", exc.Severity)
	}
	if exc.Source != "scheduler/failing" {
		t.Errorf("unexpected exception source: %s", exc.Source)
	}
}

func TestSchedulerContainsPanics(t *testing.T) {
	reporter := &captureReporter{}
	s := New(reporter)
	s.Every("panicking", 10*time.Millisecond, func(ctx context.Context) error {
		panic("kaboom")
	})
	s.Start(context.Background())
	defer s.Stop()

	// The loop must survive at least two panicking runs.
	waitFor(t, 2*time.Second, func() bool { return reporter.count() >= 2 })

	reporter.mu.Lock()
	exc := reporter.exceptions[0]
	reporter.mu.Unlock()
	if exc.Severity != models.SeverityCritical {
		t.Errorf("a panic should be Critical severity, got %s", exc.Severity)
	}
	if exc.StackTrace == nil || *exc.StackTrace == "" {
		t.Error("a panic exception should carry a stack trace")
	}
}

func TestSchedulerStopWaitsForInflightRun(t *testing.T) {
	started := make(chan struct{})
	finished := false
	var mu sync.Mutex

	s := New(&captureReporter{})
	s.Every("slow", time.Millisecond, func(ctx context.Context) error {
		select {
		case started <- struct{}{}:
		default:
		}
		time.Sleep(50 * time.Millisecond)
		mu.Lock()
		finished = true
		mu.Unlock()
		return nil
	})
	s.Start(context.Background())

	<-started
	s.Stop()

	mu.Lock()
	defer mu.Unlock()
	if !finished {
		t.Error("Stop returned before the in-flight run finished")
	}
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	s := New(&captureReporter{})
	s.Stop() // must not panic
}
