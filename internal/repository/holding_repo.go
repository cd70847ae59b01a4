package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrHoldingNotFound = errors.New("holding not found")

// HoldingRepository handles database operations for ETF constituent edges
type HoldingRepository struct {
	pool *pgxpool.Pool
}

// NewHoldingRepository creates a new HoldingRepository
func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return &HoldingRepository{pool: pool}
}

// ListByETF retrieves an ETF's holdings joined with their symbol rows,
// heaviest weight first.
func (r *HoldingRepository) ListByETF(ctx context.Context, etfID int64) ([]models.HoldingWithSymbol, error) {
	query := `
		SELECT h.id, h.etf_symbol_id, h.holding_symbol_id, h.weight, h.shares,
		       h.market_value, h.is_tracked, h.last_updated, ts.symbol, ts.name
		FROM etf_holdings h
		JOIN tracked_symbols ts ON ts.id = h.holding_symbol_id
		WHERE h.etf_symbol_id = $1
		ORDER BY h.weight DESC, ts.symbol
	`
	rows, err := r.pool.Query(ctx, query, etfID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings for ETF %d: %w", etfID, err)
	}
	defer rows.Close()

	var result []models.HoldingWithSymbol
	for rows.Next() {
		var hw models.HoldingWithSymbol
		err := rows.Scan(&hw.ID, &hw.ETFSymbolID, &hw.HoldingSymbolID, &hw.Weight, &hw.Shares,
			&hw.MarketValue, &hw.IsTracked, &hw.LastUpdated, &hw.Symbol, &hw.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		result = append(result, hw)
	}
	return result, rows.Err()
}

// CountByETF returns the number of constituent edges for an ETF
func (r *HoldingRepository) CountByETF(ctx context.Context, etfID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM etf_holdings WHERE etf_symbol_id = $1`, etfID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count holdings for ETF %d: %w", etfID, err)
	}
	return n, nil
}

// Upsert writes one (etf, holding) edge. The pair is unique, so re-imports
// update weight, shares and market value in place. Returns true when the edge
// was newly inserted; xmax = 0 only holds for rows created by this statement,
// which keeps the inserted/updated distinction honest under concurrent imports.
func (r *HoldingRepository) Upsert(ctx context.Context, h *models.ETFHolding) (bool, error) {
	query := `
		INSERT INTO etf_holdings (etf_symbol_id, holding_symbol_id, weight, shares, market_value, is_tracked, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (etf_symbol_id, holding_symbol_id) DO UPDATE
		SET weight = EXCLUDED.weight,
		    shares = EXCLUDED.shares,
		    market_value = EXCLUDED.market_value,
		    last_updated = EXCLUDED.last_updated
		RETURNING id, (xmax = 0) AS inserted
	`
	var inserted bool
	err := r.pool.QueryRow(ctx, query,
		h.ETFSymbolID, h.HoldingSymbolID, h.Weight, h.Shares, h.MarketValue, h.IsTracked, time.Now().UTC(),
	).Scan(&h.ID, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert holding (%d, %d): %w", h.ETFSymbolID, h.HoldingSymbolID, err)
	}
	return inserted, nil
}

// SetTracking toggles whether a constituent participates in scheduled collection
func (r *HoldingRepository) SetTracking(ctx context.Context, etfID, holdingSymbolID int64, tracked bool) error {
	query := `
		UPDATE etf_holdings SET is_tracked = $1, last_updated = $2
		WHERE etf_symbol_id = $3 AND holding_symbol_id = $4
	`
	ct, err := r.pool.Exec(ctx, query, tracked, time.Now().UTC(), etfID, holdingSymbolID)
	if err != nil {
		return fmt.Errorf("failed to set tracking on holding (%d, %d): %w", etfID, holdingSymbolID, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrHoldingNotFound
	}
	return nil
}

// Delete removes a single constituent edge
func (r *HoldingRepository) Delete(ctx context.Context, etfID, holdingSymbolID int64) error {
	query := `DELETE FROM etf_holdings WHERE etf_symbol_id = $1 AND holding_symbol_id = $2`
	ct, err := r.pool.Exec(ctx, query, etfID, holdingSymbolID)
	if err != nil {
		return fmt.Errorf("failed to delete holding (%d, %d): %w", etfID, holdingSymbolID, err)
	}
	if ct.RowsAffected() == 0 {
		return ErrHoldingNotFound
	}
	return nil
}
