package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrExceptionNotFound = errors.New("exception not found")

// AuditRepository handles database operations for the audit log:
// per-call telemetry, exception rows and daily roll-ups.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// InsertCall appends one API call record
func (r *AuditRepository) InsertCall(ctx context.Context, c *models.ApiCallLog) error {
	query := `
		INSERT INTO api_call_logs (endpoint, http_method, parameters, status_code, response_time_ms,
		                           symbols_requested, symbols_successful, symbols_failed,
		                           request_id, error_message, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		c.Endpoint, c.HTTPMethod, c.Parameters, c.StatusCode, c.ResponseTimeMs,
		c.SymbolsRequested, c.SymbolsSuccessful, c.SymbolsFailed,
		c.RequestID, c.ErrorMessage, c.Timestamp,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("failed to insert api call log: %w", err)
	}
	return nil
}

// InsertException appends one exception record
func (r *AuditRepository) InsertException(ctx context.Context, e *models.ApiException) error {
	query := `
		INSERT INTO api_exceptions (source, exception_type, message, stack_trace, severity,
		                            is_resolved, request_id, additional_context, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		e.Source, e.ExceptionType, e.Message, e.StackTrace, e.Severity,
		e.IsResolved, e.RequestID, e.AdditionalContext, e.Timestamp,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("failed to insert api exception: %w", err)
	}
	return nil
}

func (r *AuditRepository) queryCalls(ctx context.Context, query string, args ...any) ([]models.ApiCallLog, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query api call logs: %w", err)
	}
	defer rows.Close()

	var result []models.ApiCallLog
	for rows.Next() {
		var c models.ApiCallLog
		err := rows.Scan(&c.ID, &c.Endpoint, &c.HTTPMethod, &c.Parameters, &c.StatusCode, &c.ResponseTimeMs,
			&c.SymbolsRequested, &c.SymbolsSuccessful, &c.SymbolsFailed,
			&c.RequestID, &c.ErrorMessage, &c.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api call log: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

const callColumns = `id, endpoint, http_method, parameters, status_code, response_time_ms,
	       symbols_requested, symbols_successful, symbols_failed, request_id, error_message, timestamp`

// RecentCalls retrieves call records newest first
func (r *AuditRepository) RecentCalls(ctx context.Context, limit, offset int) ([]models.ApiCallLog, error) {
	query := `
		SELECT ` + callColumns + `
		FROM api_call_logs
		ORDER BY timestamp DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryCalls(ctx, query, limit, offset)
}

// CountCalls returns the total number of call records
func (r *AuditRepository) CountCalls(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_call_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count api call logs: %w", err)
	}
	return n, nil
}

// CallsForDay retrieves every call record whose timestamp falls on the given
// UTC date. Used to build the daily roll-up.
func (r *AuditRepository) CallsForDay(ctx context.Context, date time.Time) ([]models.ApiCallLog, error) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	query := `
		SELECT ` + callColumns + `
		FROM api_call_logs
		WHERE timestamp >= $1 AND timestamp < $2
		ORDER BY timestamp
	`
	return r.queryCalls(ctx, query, start, end)
}

// RecentExceptions retrieves exception records newest first, optionally
// filtered by severity and resolution state.
func (r *AuditRepository) RecentExceptions(ctx context.Context, limit, offset int, severity string, resolved *bool) ([]models.ApiException, error) {
	query := `
		SELECT id, source, exception_type, message, stack_trace, severity,
		       is_resolved, resolved_at, resolution_notes, request_id, additional_context, timestamp
		FROM api_exceptions
		WHERE ($1 = '' OR severity = $1)
		  AND ($2::boolean IS NULL OR is_resolved = $2)
		ORDER BY timestamp DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, severity, resolved, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query api exceptions: %w", err)
	}
	defer rows.Close()

	var result []models.ApiException
	for rows.Next() {
		var e models.ApiException
		err := rows.Scan(&e.ID, &e.Source, &e.ExceptionType, &e.Message, &e.StackTrace, &e.Severity,
			&e.IsResolved, &e.ResolvedAt, &e.ResolutionNotes, &e.RequestID, &e.AdditionalContext, &e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api exception: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// CountExceptions returns the number of exception records matching the filters
func (r *AuditRepository) CountExceptions(ctx context.Context, severity string, resolved *bool) (int64, error) {
	query := `
		SELECT COUNT(*) FROM api_exceptions
		WHERE ($1 = '' OR severity = $1)
		  AND ($2::boolean IS NULL OR is_resolved = $2)
	`
	var n int64
	if err := r.pool.QueryRow(ctx, query, severity, resolved).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count api exceptions: %w", err)
	}
	return n, nil
}

// Resolve marks an exception resolved with optional notes. Resolving an
// already-resolved exception is a no-op that preserves the original
// resolution timestamp and notes.
func (r *AuditRepository) Resolve(ctx context.Context, id int64, notes *string) error {
	query := `
		UPDATE api_exceptions
		SET is_resolved = TRUE, resolved_at = $1, resolution_notes = $2
		WHERE id = $3 AND is_resolved = FALSE
	`
	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), notes, id)
	if err != nil {
		return fmt.Errorf("failed to resolve exception %d: %w", id, err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM api_exceptions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check exception %d: %w", id, err)
	}
	if !exists {
		return ErrExceptionNotFound
	}
	return nil
}

const summaryColumns = `id, date, total_calls, successful_calls, failed_calls, unique_symbols,
	       average_response_time_ms, total_symbols_processed, total_symbols_successful,
	       total_symbols_failed, created_at, updated_at`

func scanSummary(row pgx.Row) (*models.DailyApiSummary, error) {
	s := &models.DailyApiSummary{}
	err := row.Scan(&s.ID, &s.Date, &s.TotalCalls, &s.SuccessfulCalls, &s.FailedCalls, &s.UniqueSymbols,
		&s.AverageResponseTimeMs, &s.TotalSymbolsProcessed, &s.TotalSymbolsSuccessful,
		&s.TotalSymbolsFailed, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetDailySummary retrieves the roll-up for one date, nil when absent
func (r *AuditRepository) GetDailySummary(ctx context.Context, date time.Time) (*models.DailyApiSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM daily_api_summaries WHERE date = $1`
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	s, err := scanSummary(r.pool.QueryRow(ctx, query, day))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}
	return s, nil
}

// ListDailySummaries retrieves roll-ups within [start, end], newest first
func (r *AuditRepository) ListDailySummaries(ctx context.Context, start, end time.Time) ([]models.DailyApiSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM daily_api_summaries
		WHERE date >= $1 AND date <= $2
		ORDER BY date DESC
	`
	rows, err := r.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summaries: %w", err)
	}
	defer rows.Close()

	var result []models.DailyApiSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// UpsertDailySummary writes the roll-up for its date, keyed by date so
// regeneration replaces rather than duplicates.
func (r *AuditRepository) UpsertDailySummary(ctx context.Context, s *models.DailyApiSummary) error {
	query := `
		INSERT INTO daily_api_summaries (date, total_calls, successful_calls, failed_calls, unique_symbols,
		                                 average_response_time_ms, total_symbols_processed,
		                                 total_symbols_successful, total_symbols_failed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (date) DO UPDATE
		SET total_calls = EXCLUDED.total_calls,
		    successful_calls = EXCLUDED.successful_calls,
		    failed_calls = EXCLUDED.failed_calls,
		    unique_symbols = EXCLUDED.unique_symbols,
		    average_response_time_ms = EXCLUDED.average_response_time_ms,
		    total_symbols_processed = EXCLUDED.total_symbols_processed,
		    total_symbols_successful = EXCLUDED.total_symbols_successful,
		    total_symbols_failed = EXCLUDED.total_symbols_failed,
		    updated_at = NOW()
		RETURNING id
	`
	day := time.Date(s.Date.Year(), s.Date.Month(), s.Date.Day(), 0, 0, 0, 0, time.UTC)
	err := r.pool.QueryRow(ctx, query, day, s.TotalCalls, s.SuccessfulCalls, s.FailedCalls,
		s.UniqueSymbols, s.AverageResponseTimeMs, s.TotalSymbolsProcessed,
		s.TotalSymbolsSuccessful, s.TotalSymbolsFailed, time.Now().UTC()).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert daily summary: %w", err)
	}
	return nil
}

// Stats aggregates call telemetry over [start, end) directly in SQL. The
// derived rates are filled in by the caller.
func (r *AuditRepository) Stats(ctx context.Context, start, end time.Time) (*models.ApiCallStats, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status_code >= 200 AND status_code < 300),
		       COUNT(*) FILTER (WHERE status_code < 200 OR status_code >= 300),
		       COALESCE(AVG(response_time_ms), 0),
		       COALESCE(SUM(symbols_requested), 0),
		       COALESCE(SUM(symbols_successful), 0),
		       COALESCE(SUM(symbols_failed), 0)
		FROM api_call_logs
		WHERE timestamp >= $1 AND timestamp < $2
	`
	s := &models.ApiCallStats{}
	err := r.pool.QueryRow(ctx, query, start, end).Scan(&s.TotalCalls, &s.SuccessfulCalls, &s.FailedCalls,
		&s.AverageResponseTimeMs, &s.TotalSymbolsProcessed, &s.TotalSymbolsSuccessful, &s.TotalSymbolsFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate call stats: %w", err)
	}
	return s, nil
}
