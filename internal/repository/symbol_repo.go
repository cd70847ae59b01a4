package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrSymbolNotFound   = errors.New("symbol not found")
	ErrDuplicateSymbol  = errors.New("symbol already exists")
	ErrSymbolReferenced = errors.New("symbol is referenced by ETF holdings")
)

const symbolColumns = `id, symbol, name, type, status, added_date, last_updated,
	       historical_data_start, historical_data_end, data_points,
	       description, sector, industry`

// SymbolRepository handles database operations for tracked symbols
type SymbolRepository struct {
	pool *pgxpool.Pool
}

// NewSymbolRepository creates a new SymbolRepository
func NewSymbolRepository(pool *pgxpool.Pool) *SymbolRepository {
	return &SymbolRepository{pool: pool}
}

func scanSymbol(row pgx.Row) (*models.TrackedSymbol, error) {
	s := &models.TrackedSymbol{}
	err := row.Scan(&s.ID, &s.Symbol, &s.Name, &s.Type, &s.Status, &s.AddedDate, &s.LastUpdated,
		&s.HistoricalDataStart, &s.HistoricalDataEnd, &s.DataPoints,
		&s.Description, &s.Sector, &s.Industry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSymbolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan symbol: %w", err)
	}
	return s, nil
}

func (r *SymbolRepository) querySymbols(ctx context.Context, query string, args ...any) ([]models.TrackedSymbol, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var result []models.TrackedSymbol
	for rows.Next() {
		s, err := scanSymbol(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	return result, rows.Err()
}

// GetByID retrieves a tracked symbol by ID
func (r *SymbolRepository) GetByID(ctx context.Context, id int64) (*models.TrackedSymbol, error) {
	query := `SELECT ` + symbolColumns + ` FROM tracked_symbols WHERE id = $1`
	return scanSymbol(r.pool.QueryRow(ctx, query, id))
}

// GetBySymbol retrieves a tracked symbol by its case-normalized ticker
func (r *SymbolRepository) GetBySymbol(ctx context.Context, ticker string) (*models.TrackedSymbol, error) {
	query := `SELECT ` + symbolColumns + ` FROM tracked_symbols WHERE symbol = $1`
	return scanSymbol(r.pool.QueryRow(ctx, query, strings.ToUpper(ticker)))
}

// ListETFs retrieves all tracked ETFs ordered by ticker
func (r *SymbolRepository) ListETFs(ctx context.Context) ([]models.TrackedSymbol, error) {
	query := `SELECT ` + symbolColumns + ` FROM tracked_symbols WHERE type = $1 ORDER BY symbol`
	return r.querySymbols(ctx, query, models.SymbolTypeETF)
}

// ListAll retrieves every tracked symbol ordered by ticker
func (r *SymbolRepository) ListAll(ctx context.Context) ([]models.TrackedSymbol, error) {
	query := `SELECT ` + symbolColumns + ` FROM tracked_symbols ORDER BY symbol`
	return r.querySymbols(ctx, query)
}

// ListActive retrieves symbols eligible for scheduled quote collection
func (r *SymbolRepository) ListActive(ctx context.Context) ([]models.TrackedSymbol, error) {
	query := `SELECT ` + symbolColumns + ` FROM tracked_symbols WHERE status = $1 ORDER BY symbol`
	return r.querySymbols(ctx, query, models.SymbolStatusActive)
}

// ListNeedingProfileByETF retrieves the constituents of one ETF whose
// descriptive fields are still empty. Scoped to the ETF so a single import
// never fans out into a global backfill.
func (r *SymbolRepository) ListNeedingProfileByETF(ctx context.Context, etfID int64) ([]models.TrackedSymbol, error) {
	query := `
		SELECT ` + symbolColumns + `
		FROM tracked_symbols
		WHERE type <> $1
		  AND (COALESCE(description, '') = '' OR COALESCE(sector, '') = '' OR COALESCE(industry, '') = '')
		  AND id IN (SELECT holding_symbol_id FROM etf_holdings WHERE etf_symbol_id = $2)
		ORDER BY symbol
	`
	return r.querySymbols(ctx, query, models.SymbolTypeETF, etfID)
}

// ListNeedingProfile retrieves all symbols missing profile data (administrative trigger)
func (r *SymbolRepository) ListNeedingProfile(ctx context.Context) ([]models.TrackedSymbol, error) {
	query := `
		SELECT ` + symbolColumns + `
		FROM tracked_symbols
		WHERE COALESCE(description, '') = '' OR COALESCE(sector, '') = '' OR COALESCE(industry, '') = ''
		ORDER BY symbol
	`
	return r.querySymbols(ctx, query)
}

// Create inserts a new tracked symbol. A ticker collision is a Conflict, not
// an update.
func (r *SymbolRepository) Create(ctx context.Context, s *models.TrackedSymbol) (int64, error) {
	query := `
		INSERT INTO tracked_symbols (symbol, name, type, status, added_date, historical_data_start, description, sector, industry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (symbol) DO NOTHING
		RETURNING id
	`
	var id int64
	err := r.pool.QueryRow(ctx, query,
		strings.ToUpper(s.Symbol), s.Name, s.Type, s.Status, s.AddedDate, s.HistoricalDataStart,
		s.Description, s.Sector, s.Industry,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrDuplicateSymbol
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert tracked symbol: %w", err)
	}
	return id, nil
}

// GetOrCreate returns the symbol for ticker, creating it when absent. The
// insert races through the unique constraint: on conflict the existing row is
// fetched, so concurrent imports converge on one id.
// Returns (symbol, wasCreated, error).
func (r *SymbolRepository) GetOrCreate(ctx context.Context, s *models.TrackedSymbol) (*models.TrackedSymbol, bool, error) {
	id, err := r.Create(ctx, s)
	if err == nil {
		created := *s
		created.ID = id
		created.Symbol = strings.ToUpper(s.Symbol)
		return &created, true, nil
	}
	if !errors.Is(err, ErrDuplicateSymbol) {
		return nil, false, err
	}
	existing, err := r.GetBySymbol(ctx, s.Symbol)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

// UpdateProfile persists descriptive fields after a profile import
func (r *SymbolRepository) UpdateProfile(ctx context.Context, s *models.TrackedSymbol) error {
	query := `
		UPDATE tracked_symbols
		SET name = $1, type = $2, description = $3, sector = $4, industry = $5, last_updated = $6
		WHERE id = $7
	`
	_, err := r.pool.Exec(ctx, query, s.Name, s.Type, s.Description, s.Sector, s.Industry, time.Now().UTC(), s.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile for symbol %d: %w", s.ID, err)
	}
	return nil
}

// UpdateStatus transitions a symbol's lifecycle status
func (r *SymbolRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE tracked_symbols SET status = $1, last_updated = $2 WHERE id = $3`
	ct, err := r.pool.Exec(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update status for symbol %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSymbolNotFound
	}
	return nil
}

// TouchLastUpdated stamps a symbol after a completed import
func (r *SymbolRepository) TouchLastUpdated(ctx context.Context, id int64) error {
	query := `UPDATE tracked_symbols SET last_updated = $1 WHERE id = $2`
	if _, err := r.pool.Exec(ctx, query, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to touch symbol %d: %w", id, err)
	}
	return nil
}

// UpdateDataBookkeeping records the historical range markers after quote ingestion
func (r *SymbolRepository) UpdateDataBookkeeping(ctx context.Context, id int64, dataPoints int, end time.Time) error {
	query := `
		UPDATE tracked_symbols
		SET data_points = $1, historical_data_end = $2, last_updated = $3
		WHERE id = $4
	`
	if _, err := r.pool.Exec(ctx, query, dataPoints, end, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update bookkeeping for symbol %d: %w", id, err)
	}
	return nil
}

// Delete removes a symbol. Symbols still referenced by holdings are protected
// by the FK constraint and surface as ErrSymbolReferenced.
func (r *SymbolRepository) Delete(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM tracked_symbols WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrSymbolReferenced
		}
		return fmt.Errorf("failed to delete symbol %d: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrSymbolNotFound
	}
	return nil
}
