package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/epeers/tradingvision/internal/models"
)

// fakeAuditStore is an in-memory AuditStore.
type fakeAuditStore struct {
	calls      []models.ApiCallLog
	exceptions []models.ApiException
	summaries  map[string]*models.DailyApiSummary
	failInsert error
}

func newFakeAuditStore() *fakeAuditStore {
	return &fakeAuditStore{summaries: map[string]*models.DailyApiSummary{}}
}

func (s *fakeAuditStore) InsertCall(_ context.Context, c *models.ApiCallLog) error {
	if s.failInsert != nil {
		return s.failInsert
	}
	c.ID = int64(len(s.calls) + 1)
	s.calls = append(s.calls, *c)
	return nil
}

func (s *fakeAuditStore) InsertException(_ context.Context, e *models.ApiException) error {
	if s.failInsert != nil {
		return s.failInsert
	}
	e.ID = int64(len(s.exceptions) + 1)
	s.exceptions = append(s.exceptions, *e)
	return nil
}

func (s *fakeAuditStore) RecentCalls(_ context.Context, limit, offset int) ([]models.ApiCallLog, error) {
	if offset >= len(s.calls) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.calls) {
		end = len(s.calls)
	}
	return s.calls[offset:end], nil
}

func (s *fakeAuditStore) CountCalls(context.Context) (int64, error) {
	return int64(len(s.calls)), nil
}

func (s *fakeAuditStore) CallsForDay(_ context.Context, date time.Time) ([]models.ApiCallLog, error) {
	day := date.UTC().Format("2006-01-02")
	var out []models.ApiCallLog
	for _, c := range s.calls {
		if c.Timestamp.UTC().Format("2006-01-02") == day {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeAuditStore) RecentExceptions(_ context.Context, limit, _ int, severity string, resolved *bool) ([]models.ApiException, error) {
	var out []models.ApiException
	for _, e := range s.exceptions {
		if severity != "" && e.Severity != severity {
			continue
		}
		if resolved != nil && e.IsResolved != *resolved {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeAuditStore) CountExceptions(ctx context.Context, severity string, resolved *bool) (int64, error) {
	out, _ := s.RecentExceptions(ctx, len(s.exceptions)+1, 0, severity, resolved)
	return int64(len(out)), nil
}

func (s *fakeAuditStore) Resolve(_ context.Context, id int64, notes *string) error {
	for i := range s.exceptions {
		if s.exceptions[i].ID != id {
			continue
		}
		if s.exceptions[i].IsResolved {
			return nil
		}
		now := time.Now().UTC()
		s.exceptions[i].IsResolved = true
		s.exceptions[i].ResolvedAt = &now
		s.exceptions[i].ResolutionNotes = notes
		return nil
	}
	return errNotFound
}

func (s *fakeAuditStore) GetDailySummary(_ context.Context, date time.Time) (*models.DailyApiSummary, error) {
	return s.summaries[date.UTC().Format("2006-01-02")], nil
}

func (s *fakeAuditStore) ListDailySummaries(context.Context, time.Time, time.Time) ([]models.DailyApiSummary, error) {
	var out []models.DailyApiSummary
	for _, v := range s.summaries {
		out = append(out, *v)
	}
	return out, nil
}

func (s *fakeAuditStore) UpsertDailySummary(_ context.Context, sum *models.DailyApiSummary) error {
	cp := *sum
	s.summaries[sum.Date.UTC().Format("2006-01-02")] = &cp
	return nil
}

func (s *fakeAuditStore) Stats(_ context.Context, start, end time.Time) (*models.ApiCallStats, error) {
	stats := &models.ApiCallStats{}
	for _, c := range s.calls {
		if c.Timestamp.Before(start) || !c.Timestamp.Before(end) {
			continue
		}
		stats.TotalCalls++
		if c.IsSuccessful() {
			stats.SuccessfulCalls++
		} else {
			stats.FailedCalls++
		}
		stats.TotalSymbolsProcessed += c.SymbolsRequested
		stats.TotalSymbolsSuccessful += c.SymbolsSuccessful
		stats.TotalSymbolsFailed += c.SymbolsFailed
	}
	return stats, nil
}

func callAt(ts time.Time, status int, params string) models.ApiCallLog {
	return models.ApiCallLog{
		Endpoint:          "/etf-holder/QQQ",
		HTTPMethod:        "GET",
		Parameters:        &params,
		StatusCode:        status,
		ResponseTimeMs:    100,
		SymbolsRequested:  1,
		SymbolsSuccessful: 1,
		Timestamp:         ts,
	}
}

func TestGenerateDailySummary(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	svc.RecordCall(context.Background(), callAt(day.Add(9*time.Hour), 200, "etf=QQQ"))
	svc.RecordCall(context.Background(), callAt(day.Add(10*time.Hour), 200, "symbol=AAPL"))
	svc.RecordCall(context.Background(), callAt(day.Add(11*time.Hour), 500, "symbol=AAPL"))
	svc.RecordCall(context.Background(), callAt(day.AddDate(0, 0, 1), 200, "symbol=TSLA")) // next day

	summary, err := svc.GenerateDailySummary(context.Background(), day)
	if err != nil {
		t.Fatalf("GenerateDailySummary returned error: %v", err)
	}
	if summary.TotalCalls != 3 || summary.SuccessfulCalls != 2 || summary.FailedCalls != 1 {
		t.Errorf("unexpected counts: %+v", summary)
	}
	if summary.UniqueSymbols != 2 { // QQQ, AAPL
		t.Errorf("expected 2 unique symbols, got %d", summary.UniqueSymbols)
	}
	if summary.AverageResponseTimeMs != 100 {
		t.Errorf("expected avg 100ms, got %d", summary.AverageResponseTimeMs)
	}

	stored, _ := svc.DailySummary(context.Background(), day)
	if stored == nil || stored.TotalCalls != 3 {
		t.Fatalf("summary was not stored: %+v", stored)
	}
}

func TestGenerateDailySummaryIsIdempotent(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)
	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	svc.RecordCall(context.Background(), callAt(day.Add(time.Hour), 200, "etf=QQQ"))

	first, err := svc.GenerateDailySummary(context.Background(), day)
	if err != nil {
		t.Fatalf("first generation failed: %v", err)
	}
	second, err := svc.GenerateDailySummary(context.Background(), day)
	if err != nil {
		t.Fatalf("second generation failed: %v", err)
	}
	if len(store.summaries) != 1 {
		t.Errorf("regeneration must replace, not duplicate: %d rows", len(store.summaries))
	}
	if first.TotalCalls != second.TotalCalls {
		t.Errorf("regeneration changed the counts: %d vs %d", first.TotalCalls, second.TotalCalls)
	}
}

func TestGenerateDailySummaryEmptyDayWritesNothing(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)

	summary, err := svc.GenerateDailySummary(context.Background(), time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("empty day must not error: %v", err)
	}
	if summary != nil {
		t.Errorf("expected nil summary for a day with no calls, got %+v", summary)
	}
	if len(store.summaries) != 0 {
		t.Error("no row should be written for an empty day")
	}
}

func TestRecordExceptionTruncatesMessage(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)

	svc.RecordException(context.Background(), models.ApiException{
		Source:    "test",
		Message:   strings.Repeat("x", models.MaxExceptionMessage+500),
		Severity:  models.SeverityHigh,
		Timestamp: time.Now().UTC(),
	})
	if len(store.exceptions) != 1 {
		t.Fatalf("expected 1 stored exception, got %d", len(store.exceptions))
	}
	if got := len(store.exceptions[0].Message); got != models.MaxExceptionMessage {
		t.Errorf("expected message truncated to %d, got %d", models.MaxExceptionMessage, got)
	}
}

func TestRecordSwallowsStoreFailures(t *testing.T) {
	store := newFakeAuditStore()
	store.failInsert = errNotFound
	svc := NewAuditService(store)

	// Must not panic or propagate anything.
	svc.RecordCall(context.Background(), callAt(time.Now().UTC(), 200, "etf=QQQ"))
	svc.RecordException(context.Background(), models.ApiException{Source: "test", Severity: models.SeverityLow})
}

func TestResolveExceptionIsIdempotent(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)
	svc.RecordException(context.Background(), models.ApiException{Source: "test", Severity: models.SeverityHigh})

	notes := "root cause fixed"
	if err := svc.ResolveException(context.Background(), 1, &notes); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	firstResolvedAt := store.exceptions[0].ResolvedAt

	other := "second attempt"
	if err := svc.ResolveException(context.Background(), 1, &other); err != nil {
		t.Fatalf("second resolve must be a no-op, got %v", err)
	}
	if store.exceptions[0].ResolvedAt != firstResolvedAt {
		t.Error("second resolve must not change the resolution timestamp")
	}
	if store.exceptions[0].ResolutionNotes == nil || *store.exceptions[0].ResolutionNotes != notes {
		t.Error("second resolve must not overwrite the notes")
	}
}

func TestStatsDerivesRates(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)
	now := time.Now().UTC()
	svc.RecordCall(context.Background(), callAt(now.Add(-time.Hour), 200, "etf=QQQ"))
	failed := callAt(now.Add(-time.Hour), 502, "symbol=AAPL")
	failed.SymbolsSuccessful = 0
	failed.SymbolsFailed = 1
	svc.RecordCall(context.Background(), failed)

	stats, err := svc.Stats(context.Background(), now.AddDate(0, 0, -1), now)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.SuccessRate != 50 {
		t.Errorf("expected 50%% success rate, got %f", stats.SuccessRate)
	}
	if stats.SymbolSuccessRate != 50 {
		t.Errorf("expected 50%% symbol success rate, got %f", stats.SymbolSuccessRate)
	}
}

func TestCheckCallBudget(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		svc.RecordCall(context.Background(), callAt(now.Add(-time.Minute), 200, "etf=QQQ"))
	}

	if err := svc.CheckCallBudget(context.Background(), 5); err != nil {
		t.Fatalf("under budget must not error: %v", err)
	}
	if len(store.exceptions) != 0 {
		t.Errorf("under budget must not record an exception, got %d", len(store.exceptions))
	}

	if err := svc.CheckCallBudget(context.Background(), 2); err != nil {
		t.Fatalf("over budget must not error: %v", err)
	}
	if len(store.exceptions) != 1 {
		t.Fatalf("over budget must record one exception, got %d", len(store.exceptions))
	}
	if store.exceptions[0].Severity != models.SeverityMedium {
		t.Errorf("expected medium severity, got %q", store.exceptions[0].Severity)
	}

	// A zero budget disables the check entirely.
	if err := svc.CheckCallBudget(context.Background(), 0); err != nil {
		t.Fatalf("disabled check must not error: %v", err)
	}
	if len(store.exceptions) != 1 {
		t.Error("disabled check must not record anything")
	}
}

func TestDashboardAssemblesSections(t *testing.T) {
	store := newFakeAuditStore()
	svc := NewAuditService(store)
	now := time.Now().UTC()
	svc.RecordCall(context.Background(), callAt(now.Add(-time.Minute), 200, "etf=QQQ"))
	svc.RecordException(context.Background(), models.ApiException{Source: "test", Severity: models.SeverityHigh, Timestamp: now})

	dashboard, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard returned error: %v", err)
	}
	if dashboard.Today == nil || dashboard.Today.TotalCalls != 1 {
		t.Errorf("unexpected today stats: %+v", dashboard.Today)
	}
	if dashboard.ThisWeek == nil || dashboard.ThisWeek.TotalCalls != 1 {
		t.Errorf("unexpected week stats: %+v", dashboard.ThisWeek)
	}
	if len(dashboard.RecentExceptions) != 1 || len(dashboard.RecentApiCalls) != 1 {
		t.Errorf("unexpected recent sections: %d exceptions, %d calls",
			len(dashboard.RecentExceptions), len(dashboard.RecentApiCalls))
	}
}

func TestSymbolsFromParameters(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"etf=QQQ", 1},
		{"symbol=AAPL", 1},
		{"symbols=AAPL,MSFT, tsla", 3},
		{"from=2024-01-01&to=2024-02-01", 0},
		{"", 0},
	}
	for _, tc := range cases {
		in := tc.in
		got := symbolsFromParameters(&in)
		if len(got) != tc.want {
			t.Errorf("symbolsFromParameters(%q) = %v, want %d symbols", tc.in, got, tc.want)
		}
	}
}
