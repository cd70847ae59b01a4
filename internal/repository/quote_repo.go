package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upsertQuoteSQL = `
	INSERT INTO daily_quotes (tracked_symbol_id, date, open, high, low, close, volume, change_percent, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (tracked_symbol_id, date) DO UPDATE
	SET open = EXCLUDED.open,
	    high = EXCLUDED.high,
	    low = EXCLUDED.low,
	    close = EXCLUDED.close,
	    volume = EXCLUDED.volume,
	    change_percent = EXCLUDED.change_percent
`

// QuoteRepository handles database operations for end-of-day quote rows
type QuoteRepository struct {
	pool *pgxpool.Pool
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(pool *pgxpool.Pool) *QuoteRepository {
	return &QuoteRepository{pool: pool}
}

// Upsert writes one end-of-day row, keyed by (symbol, date) so a rerun of the
// collection job replaces rather than duplicates.
func (r *QuoteRepository) Upsert(ctx context.Context, q *models.DailyQuote) error {
	day := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, time.UTC)
	_, err := r.pool.Exec(ctx, upsertQuoteSQL,
		q.TrackedSymbolID, day, q.Open, q.High, q.Low, q.Close, q.Volume, q.ChangePercent, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert daily quote for symbol %d: %w", q.TrackedSymbolID, err)
	}
	return nil
}

// BulkUpsert writes a batch of end-of-day rows in one round trip. Used by the
// historical backfill, where a single symbol can produce years of bars.
func (r *QuoteRepository) BulkUpsert(ctx context.Context, quotes []models.DailyQuote) error {
	if len(quotes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	now := time.Now().UTC()
	for _, q := range quotes {
		day := time.Date(q.Date.Year(), q.Date.Month(), q.Date.Day(), 0, 0, 0, 0, time.UTC)
		batch.Queue(upsertQuoteSQL,
			q.TrackedSymbolID, day, q.Open, q.High, q.Low, q.Close, q.Volume, q.ChangePercent, now)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range quotes {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to bulk upsert daily quotes: %w", err)
		}
	}
	return nil
}

// CountForSymbol returns the number of stored rows for one symbol
func (r *QuoteRepository) CountForSymbol(ctx context.Context, symbolID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM daily_quotes WHERE tracked_symbol_id = $1`, symbolID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count daily quotes for symbol %d: %w", symbolID, err)
	}
	return n, nil
}

// LatestDate returns the most recent stored date for one symbol, nil when the
// symbol has no rows yet.
func (r *QuoteRepository) LatestDate(ctx context.Context, symbolID int64) (*time.Time, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(date) FROM daily_quotes WHERE tracked_symbol_id = $1`, symbolID).Scan(&latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quote date for symbol %d: %w", symbolID, err)
	}
	return latest, nil
}
