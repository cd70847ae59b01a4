package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/tradingvision/internal/fmp"
	"github.com/epeers/tradingvision/internal/models"
	log "github.com/sirupsen/logrus"
)

// ErrNotAnETF is returned when a holdings import targets a non-ETF symbol.
var ErrNotAnETF = errors.New("symbol is not an ETF")

// HoldingsProvider is the slice of the market-data client the import needs.
type HoldingsProvider interface {
	GetETFHoldings(ctx context.Context, symbol string) ([]fmp.HoldingEntry, error)
}

// ImportSymbolStore is the registry surface used by the reconciler.
type ImportSymbolStore interface {
	GetByID(ctx context.Context, id int64) (*models.TrackedSymbol, error)
	ListETFs(ctx context.Context) ([]models.TrackedSymbol, error)
	GetOrCreate(ctx context.Context, s *models.TrackedSymbol) (*models.TrackedSymbol, bool, error)
	TouchLastUpdated(ctx context.Context, id int64) error
}

// HoldingStore is the edge-persistence surface used by the reconciler.
type HoldingStore interface {
	Upsert(ctx context.Context, h *models.ETFHolding) (bool, error)
}

// ProfileBackfiller runs the post-import profile pass.
type ProfileBackfiller interface {
	BackfillForETF(ctx context.Context, etfID int64) (*models.ProfilesResult, error)
}

// ImportService reconciles provider holdings payloads into the symbol registry
// and the ETF constituent edges. One import is one reconciliation pass:
// missing constituents are registered, known edges are refreshed in place, and
// per-item failures are accumulated into the report instead of aborting.
type ImportService struct {
	provider HoldingsProvider
	symbols  ImportSymbolStore
	holdings HoldingStore
	profiles ProfileBackfiller
}

// NewImportService creates a new ImportService
func NewImportService(provider HoldingsProvider, symbols ImportSymbolStore, holdings HoldingStore, profiles ProfileBackfiller) *ImportService {
	return &ImportService{provider: provider, symbols: symbols, holdings: holdings, profiles: profiles}
}

// ImportHoldings runs one holdings import for the given ETF.
//
// Registry errors (unknown id, non-ETF target) return a nil report. A provider
// failure on the initial fetch returns both the failed report and the provider
// error so the transport layer can map it. Once the per-item loop starts, only
// context cancellation aborts it.
func (s *ImportService) ImportHoldings(ctx context.Context, etfID int64) (*models.ImportReport, error) {
	etf, err := s.symbols.GetByID(ctx, etfID)
	if err != nil {
		return nil, err
	}
	if etf.Type != models.SymbolTypeETF {
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAnETF, etf.Symbol, etf.Type)
	}

	start := time.Now().UTC()
	report := &models.ImportReport{
		ETF: models.ETFRef{ID: etf.ID, Symbol: etf.Symbol, Name: etf.Name},
	}
	logger := log.WithField("etf", etf.Symbol)

	entries, err := s.provider.GetETFHoldings(ctx, etf.Symbol)
	if err != nil {
		report.Message = fmt.Sprintf("failed to retrieve holdings for %s: %v", etf.Symbol, err)
		finishReport(report, start)
		logger.WithError(err).Error("holdings import aborted")
		return report, err
	}

	logger.WithField("holdings", len(entries)).Info("importing etf holdings")
	for i := range entries {
		if err := ctx.Err(); err != nil {
			report.Message = "import cancelled"
			finishReport(report, start)
			return report, err
		}
		s.importOne(ctx, etf, &entries[i], report)
	}

	// Profile errors are reported but never fail the import.
	if profiles, err := s.profiles.BackfillForETF(ctx, etf.ID); err != nil {
		logger.WithError(err).Warn("profile backfill failed after import")
		report.Profiles.Errors++
	} else {
		report.Profiles = *profiles
	}

	if err := s.symbols.TouchLastUpdated(ctx, etf.ID); err != nil {
		logger.WithError(err).Warn("failed to stamp etf after import")
	}

	report.Success = report.Holdings.Errors == 0 && report.Symbols.Errors == 0
	if len(entries) == 0 {
		report.Message = fmt.Sprintf("provider returned no holdings for %s", etf.Symbol)
	} else {
		report.Message = fmt.Sprintf("imported %d of %d holdings for %s",
			report.Holdings.Imported+report.Holdings.Updated, report.Holdings.Total, etf.Symbol)
	}
	finishReport(report, start)
	logger.WithFields(log.Fields{
		"imported": report.Holdings.Imported,
		"updated":  report.Holdings.Updated,
		"errors":   report.Holdings.Errors,
	}).Info("holdings import finished")
	return report, nil
}

// importOne reconciles a single payload row: registry first, then the edge.
func (s *ImportService) importOne(ctx context.Context, etf *models.TrackedSymbol, entry *fmp.HoldingEntry, report *models.ImportReport) {
	report.Holdings.Total++

	ticker, ok := entry.Ticker()
	if !ok {
		report.Holdings.Errors++
		report.Holdings.Details = append(report.Holdings.Details, models.ImportDetail{
			Symbol:  entry.DisplayName("(unnamed)"),
			Status:  models.DetailStatusValidationFailed,
			Message: "holding entry has no ticker",
		})
		return
	}

	weight := entry.Weight()
	sym, created, err := s.symbols.GetOrCreate(ctx, &models.TrackedSymbol{
		Symbol:              ticker,
		Name:                entry.DisplayName(ticker),
		Type:                models.SymbolTypeStock,
		Status:              models.SymbolStatusActive,
		AddedDate:           time.Now().UTC(),
		HistoricalDataStart: models.DefaultHistoricalStart,
	})
	if err != nil {
		report.Symbols.Total++
		report.Symbols.Errors++
		report.Holdings.Errors++
		report.Holdings.Details = append(report.Holdings.Details, models.ImportDetail{
			Symbol: ticker, Status: models.DetailStatusError, Message: err.Error(),
		})
		return
	}
	report.Symbols.Total++
	if created {
		report.Symbols.New++
		report.Symbols.Details = append(report.Symbols.Details, models.ImportDetail{
			Symbol: sym.Symbol, Name: sym.Name, Status: models.DetailStatusCreated,
		})
	} else {
		report.Symbols.Existing++
	}

	inserted, err := s.holdings.Upsert(ctx, &models.ETFHolding{
		ETFSymbolID:     etf.ID,
		HoldingSymbolID: sym.ID,
		Weight:          weight,
		Shares:          entry.Shares(),
		MarketValue:     entry.MarketValue,
		IsTracked:       true,
	})
	if err != nil {
		report.Holdings.Errors++
		report.Holdings.Details = append(report.Holdings.Details, models.ImportDetail{
			Symbol: ticker, Status: models.DetailStatusError, Message: err.Error(),
		})
		return
	}

	detail := models.ImportDetail{Symbol: sym.Symbol, Name: sym.Name, Weight: &weight}
	if inserted {
		report.Holdings.Imported++
		detail.Status = models.DetailStatusImported
	} else {
		report.Holdings.Updated++
		detail.Status = models.DetailStatusUpdated
	}
	report.Holdings.Details = append(report.Holdings.Details, detail)
}

// ImportAll runs a holdings import for every tracked ETF, sequentially. Used
// by the scheduled refresh; a failed ETF does not stop the rest.
func (s *ImportService) ImportAll(ctx context.Context) (*models.AllImportsReport, error) {
	etfs, err := s.symbols.ListETFs(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	all := &models.AllImportsReport{Total: len(etfs)}
	for i := range etfs {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		report, err := s.ImportHoldings(ctx, etfs[i].ID)
		if err != nil && errors.Is(err, context.Canceled) {
			return all, err
		}
		if report != nil {
			all.Reports = append(all.Reports, *report)
			if report.Success {
				all.Imported++
			} else {
				all.Errors++
			}
		} else {
			all.Errors++
		}
	}
	end := time.Now().UTC()
	all.Timing = models.ImportTiming{StartTime: start, EndTime: end, DurationMs: end.Sub(start).Milliseconds()}
	return all, nil
}

// finishReport stamps timing and rolls up the summary counts.
func finishReport(report *models.ImportReport, start time.Time) {
	end := time.Now().UTC()
	report.Timing = models.ImportTiming{StartTime: start, EndTime: end, DurationMs: end.Sub(start).Milliseconds()}
	report.Summary = models.ImportSummary{
		TotalHoldings:     report.Holdings.Total,
		SuccessfulImports: report.Holdings.Imported + report.Holdings.Updated,
		NewSymbolsCreated: report.Symbols.New,
		ProfilesUpdated:   report.Profiles.Updated,
		Errors:            report.Holdings.Errors + report.Symbols.Errors + report.Profiles.Errors,
	}
}
