package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AuditStore is the persistence surface the audit service needs.
type AuditStore interface {
	InsertCall(ctx context.Context, c *models.ApiCallLog) error
	InsertException(ctx context.Context, e *models.ApiException) error
	RecentCalls(ctx context.Context, limit, offset int) ([]models.ApiCallLog, error)
	CountCalls(ctx context.Context) (int64, error)
	CallsForDay(ctx context.Context, date time.Time) ([]models.ApiCallLog, error)
	RecentExceptions(ctx context.Context, limit, offset int, severity string, resolved *bool) ([]models.ApiException, error)
	CountExceptions(ctx context.Context, severity string, resolved *bool) (int64, error)
	Resolve(ctx context.Context, id int64, notes *string) error
	GetDailySummary(ctx context.Context, date time.Time) (*models.DailyApiSummary, error)
	ListDailySummaries(ctx context.Context, start, end time.Time) ([]models.DailyApiSummary, error)
	UpsertDailySummary(ctx context.Context, s *models.DailyApiSummary) error
	Stats(ctx context.Context, start, end time.Time) (*models.ApiCallStats, error)
}

// AuditService owns the ingestion audit trail. Its write side is fire-and-
// forget: a telemetry row that cannot be stored is logged and dropped, never
// allowed to fail the operation that produced it.
type AuditService struct {
	store AuditStore
}

// NewAuditService creates a new AuditService
func NewAuditService(store AuditStore) *AuditService {
	return &AuditService{store: store}
}

// RecordCall stores one call record. Uses a detached context so telemetry for
// a cancelled import still lands.
func (s *AuditService) RecordCall(ctx context.Context, c models.ApiCallLog) {
	if err := s.store.InsertCall(context.WithoutCancel(ctx), &c); err != nil {
		log.WithError(err).WithField("endpoint", c.Endpoint).Warn("failed to record api call")
	}
}

// RecordException stores one exception record, truncating oversized messages.
func (s *AuditService) RecordException(ctx context.Context, e models.ApiException) {
	e.Message = truncate(e.Message, models.MaxExceptionMessage)
	if e.StackTrace != nil {
		t := truncate(*e.StackTrace, models.MaxExceptionMessage)
		e.StackTrace = &t
	}
	if err := s.store.InsertException(context.WithoutCancel(ctx), &e); err != nil {
		log.WithError(err).WithField("source", e.Source).Warn("failed to record api exception")
	}
}

// Calls returns a window of call records, newest first, with the total count.
func (s *AuditService) Calls(ctx context.Context, limit, offset int) ([]models.ApiCallLog, int64, error) {
	limit, offset = clampWindow(limit, offset)
	calls, err := s.store.RecentCalls(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountCalls(ctx)
	if err != nil {
		return nil, 0, err
	}
	return calls, total, nil
}

// Exceptions returns a window of exception records with the filtered total.
func (s *AuditService) Exceptions(ctx context.Context, limit, offset int, severity string, resolved *bool) ([]models.ApiException, int64, error) {
	limit, offset = clampWindow(limit, offset)
	exceptions, err := s.store.RecentExceptions(ctx, limit, offset, severity, resolved)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.CountExceptions(ctx, severity, resolved)
	if err != nil {
		return nil, 0, err
	}
	return exceptions, total, nil
}

// ResolveException marks an exception resolved. Idempotent: a second resolve
// succeeds without touching the stored resolution.
func (s *AuditService) ResolveException(ctx context.Context, id int64, notes *string) error {
	return s.store.Resolve(ctx, id, notes)
}

// GenerateDailySummary recomputes the roll-up for one date from the call
// records and upserts it. A day with no calls writes nothing and returns nil.
func (s *AuditService) GenerateDailySummary(ctx context.Context, date time.Time) (*models.DailyApiSummary, error) {
	calls, err := s.store.CallsForDay(ctx, date)
	if err != nil {
		return nil, err
	}
	if len(calls) == 0 {
		return nil, nil
	}

	summary := &models.DailyApiSummary{
		Date:      time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now().UTC(),
	}
	seen := map[string]struct{}{}
	totalResponseMs := 0
	for i := range calls {
		c := &calls[i]
		summary.TotalCalls++
		if c.IsSuccessful() {
			summary.SuccessfulCalls++
		} else {
			summary.FailedCalls++
		}
		totalResponseMs += c.ResponseTimeMs
		summary.TotalSymbolsProcessed += c.SymbolsRequested
		summary.TotalSymbolsSuccessful += c.SymbolsSuccessful
		summary.TotalSymbolsFailed += c.SymbolsFailed
		for _, sym := range symbolsFromParameters(c.Parameters) {
			seen[sym] = struct{}{}
		}
	}
	summary.UniqueSymbols = len(seen)
	summary.AverageResponseTimeMs = totalResponseMs / summary.TotalCalls

	if err := s.store.UpsertDailySummary(ctx, summary); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"date":       summary.Date.Format("2006-01-02"),
		"totalCalls": summary.TotalCalls,
	}).Info("generated daily api summary")
	return summary, nil
}

// DailySummary returns the stored roll-up for one date, nil when absent.
func (s *AuditService) DailySummary(ctx context.Context, date time.Time) (*models.DailyApiSummary, error) {
	return s.store.GetDailySummary(ctx, date)
}

// DailySummaries returns the stored roll-ups within [start, end].
func (s *AuditService) DailySummaries(ctx context.Context, start, end time.Time) ([]models.DailyApiSummary, error) {
	return s.store.ListDailySummaries(ctx, start, end)
}

// Stats aggregates telemetry over [start, end) and derives the success rates.
func (s *AuditService) Stats(ctx context.Context, start, end time.Time) (*models.ApiCallStats, error) {
	stats, err := s.store.Stats(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if stats.TotalCalls > 0 {
		stats.SuccessRate = float64(stats.SuccessfulCalls) / float64(stats.TotalCalls) * 100
	}
	if stats.TotalSymbolsProcessed > 0 {
		stats.SymbolSuccessRate = float64(stats.TotalSymbolsSuccessful) / float64(stats.TotalSymbolsProcessed) * 100
	}
	return stats, nil
}

// CheckCallBudget compares today's call volume against the provider's daily
// budget and records a Medium exception when it is exceeded. Run periodically
// by the scheduler so a runaway job surfaces before the provider cuts us off.
func (s *AuditService) CheckCallBudget(ctx context.Context, budget int) error {
	if budget <= 0 {
		return nil
	}
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats, err := s.store.Stats(ctx, midnight, now)
	if err != nil {
		return err
	}
	if stats.TotalCalls <= budget {
		log.WithFields(log.Fields{"calls": stats.TotalCalls, "budget": budget}).Debug("call volume within budget")
		return nil
	}
	log.WithFields(log.Fields{"calls": stats.TotalCalls, "budget": budget}).Warn("daily provider call budget exceeded")
	s.RecordException(ctx, models.ApiException{
		Source:        "services.AuditService",
		ExceptionType: "CallBudgetExceeded",
		Message:       fmt.Sprintf("provider call volume %d exceeds the daily budget of %d", stats.TotalCalls, budget),
		Severity:      models.SeverityMedium,
		Timestamp:     now,
	})
	return nil
}

// Dashboard assembles the operational overview. The four reads are
// independent, so they run concurrently.
func (s *AuditService) Dashboard(ctx context.Context) (*models.LoggingDashboard, error) {
	now := time.Now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	dashboard := &models.LoggingDashboard{GeneratedAt: now}
	unresolved := false

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.Stats(gctx, midnight, midnight.AddDate(0, 0, 1))
		dashboard.Today = stats
		return err
	})
	g.Go(func() error {
		stats, err := s.Stats(gctx, now.AddDate(0, 0, -7), now)
		dashboard.ThisWeek = stats
		return err
	})
	g.Go(func() error {
		exceptions, err := s.store.RecentExceptions(gctx, 10, 0, "", &unresolved)
		dashboard.RecentExceptions = exceptions
		return err
	})
	g.Go(func() error {
		calls, err := s.store.RecentCalls(gctx, 10, 0)
		dashboard.RecentApiCalls = calls
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dashboard, nil
}

func clampWindow(limit, offset int) (int, int) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// symbolsFromParameters pulls ticker values out of a recorded query string,
// e.g. "etf=QQQ" or "symbol=AAPL". Multi-symbol parameters are comma separated.
func symbolsFromParameters(params *string) []string {
	if params == nil || *params == "" {
		return nil
	}
	var out []string
	for _, pair := range strings.Split(*params, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		switch key {
		case "symbol", "symbols", "etf":
			for _, sym := range strings.Split(value, ",") {
				if sym = strings.ToUpper(strings.TrimSpace(sym)); sym != "" {
					out = append(out, sym)
				}
			}
		}
	}
	sort.Strings(out)
	return out
}
