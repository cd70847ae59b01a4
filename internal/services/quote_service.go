package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/tradingvision/internal/cache"
	"github.com/epeers/tradingvision/internal/fmp"
	"github.com/epeers/tradingvision/internal/models"
	log "github.com/sirupsen/logrus"
)

// ErrQuoteUnavailable is returned when the provider has no quote for a symbol.
var ErrQuoteUnavailable = errors.New("no quote available")

// QuoteProvider is the slice of the market-data client quote operations need.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*fmp.QuoteData, error)
	GetHistoricalPrices(ctx context.Context, symbol string, from, to time.Time) ([]fmp.PriceBar, error)
}

// QuoteSymbolStore is the registry surface used by quote operations.
type QuoteSymbolStore interface {
	GetByID(ctx context.Context, id int64) (*models.TrackedSymbol, error)
	GetBySymbol(ctx context.Context, ticker string) (*models.TrackedSymbol, error)
	ListActive(ctx context.Context) ([]models.TrackedSymbol, error)
	UpdateDataBookkeeping(ctx context.Context, id int64, dataPoints int, end time.Time) error
}

// QuoteStore is the persistence surface for end-of-day rows.
type QuoteStore interface {
	Upsert(ctx context.Context, q *models.DailyQuote) error
	BulkUpsert(ctx context.Context, quotes []models.DailyQuote) error
	CountForSymbol(ctx context.Context, symbolID int64) (int, error)
	LatestDate(ctx context.Context, symbolID int64) (*time.Time, error)
}

// QuoteService serves latest-quote snapshots through a short TTL cache and
// runs the end-of-day and historical ingestion passes.
type QuoteService struct {
	provider QuoteProvider
	symbols  QuoteSymbolStore
	quotes   QuoteStore
	cache    *cache.QuoteCache
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(provider QuoteProvider, symbols QuoteSymbolStore, quotes QuoteStore, quoteCache *cache.QuoteCache) *QuoteService {
	return &QuoteService{provider: provider, symbols: symbols, quotes: quotes, cache: quoteCache}
}

// GetQuote returns the latest snapshot for a tracked ticker, served from
// cache when fresh.
func (s *QuoteService) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	sym, err := s.symbols.GetBySymbol(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if cached, ok := s.cache.Get(sym.ID); ok {
		return cached, nil
	}

	data, err := s.provider.GetQuote(ctx, sym.Symbol)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrQuoteUnavailable, sym.Symbol)
	}

	quote := &models.Quote{
		SymbolID:      sym.ID,
		Symbol:        sym.Symbol,
		Price:         data.Price,
		Change:        data.Change,
		ChangePercent: data.ChangesPercentage,
		Volume:        data.Volume,
		FetchedAt:     time.Now().UTC(),
	}
	s.cache.Set(sym.ID, quote)
	return quote, nil
}

// CollectDailyQuotes ingests the latest end-of-day bar for every active
// symbol. Per-symbol failures are logged and skipped so one bad ticker never
// starves the rest. Returns the number of symbols that produced a row.
func (s *QuoteService) CollectDailyQuotes(ctx context.Context) (int, error) {
	symbols, err := s.symbols.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	stored := 0
	now := time.Now().UTC()
	for i := range symbols {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		sym := &symbols[i]
		logger := log.WithField("symbol", sym.Symbol)

		// A few days back covers weekends and market holidays.
		bars, err := s.provider.GetHistoricalPrices(ctx, sym.Symbol, now.AddDate(0, 0, -5), now)
		if err != nil {
			logger.WithError(err).Warn("daily quote fetch failed")
			continue
		}
		if len(bars) == 0 {
			logger.Debug("no recent bars for symbol")
			continue
		}

		quote, err := barToQuote(sym.ID, bars[0])
		if err != nil {
			logger.WithError(err).Warn("skipping malformed bar")
			continue
		}
		if err := s.quotes.Upsert(ctx, quote); err != nil {
			logger.WithError(err).Warn("failed to store daily quote")
			continue
		}
		s.updateBookkeeping(ctx, sym.ID, logger)
		stored++
	}
	log.WithFields(log.Fields{"symbols": len(symbols), "stored": stored}).Info("daily quote collection finished")
	return stored, nil
}

// BackfillHistory fetches and stores the full bar history for one symbol,
// from its historical-data start marker to today.
func (s *QuoteService) BackfillHistory(ctx context.Context, symbolID int64) (*models.HistoricalFetchResponse, error) {
	sym, err := s.symbols.GetByID(ctx, symbolID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bars, err := s.provider.GetHistoricalPrices(ctx, sym.Symbol, sym.HistoricalDataStart, now)
	if err != nil {
		return nil, err
	}

	quotes := make([]models.DailyQuote, 0, len(bars))
	for _, bar := range bars {
		quote, err := barToQuote(sym.ID, bar)
		if err != nil {
			log.WithField("symbol", sym.Symbol).WithError(err).Warn("skipping malformed bar")
			continue
		}
		quotes = append(quotes, *quote)
	}
	if err := s.quotes.BulkUpsert(ctx, quotes); err != nil {
		return nil, err
	}
	dataPoints := s.updateBookkeeping(ctx, sym.ID, log.WithField("symbol", sym.Symbol))

	return &models.HistoricalFetchResponse{
		Symbol:     sym.Symbol,
		BarsStored: len(quotes),
		DataPoints: dataPoints,
		From:       sym.HistoricalDataStart,
		To:         now,
	}, nil
}

// updateBookkeeping refreshes the symbol's stored-data markers from the quote
// table. Failures only affect the markers, so they are logged and ignored.
func (s *QuoteService) updateBookkeeping(ctx context.Context, symbolID int64, logger *log.Entry) int {
	count, err := s.quotes.CountForSymbol(ctx, symbolID)
	if err != nil {
		logger.WithError(err).Warn("failed to count stored quotes")
		return 0
	}
	latest, err := s.quotes.LatestDate(ctx, symbolID)
	if err != nil || latest == nil {
		if err != nil {
			logger.WithError(err).Warn("failed to read latest quote date")
		}
		return count
	}
	if err := s.symbols.UpdateDataBookkeeping(ctx, symbolID, count, *latest); err != nil {
		logger.WithError(err).Warn("failed to update data bookkeeping")
	}
	return count
}

func barToQuote(symbolID int64, bar fmp.PriceBar) (*models.DailyQuote, error) {
	date, err := time.Parse("2006-01-02", bar.Date)
	if err != nil {
		return nil, fmt.Errorf("bad bar date %q: %w", bar.Date, err)
	}
	return &models.DailyQuote{
		TrackedSymbolID: symbolID,
		Date:            date,
		Open:            bar.Open,
		High:            bar.High,
		Low:             bar.Low,
		Close:           bar.Close,
		Volume:          bar.Volume,
	}, nil
}
