package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/epeers/tradingvision/internal/cache"
	"github.com/epeers/tradingvision/internal/fmp"
	"github.com/epeers/tradingvision/internal/models"
	"github.com/shopspring/decimal"
)

type fakeQuoteProvider struct {
	quote      *fmp.QuoteData
	bars       map[string][]fmp.PriceBar
	quoteCalls int
	err        error
}

func (p *fakeQuoteProvider) GetQuote(_ context.Context, symbol string) (*fmp.QuoteData, error) {
	p.quoteCalls++
	return p.quote, p.err
}

func (p *fakeQuoteProvider) GetHistoricalPrices(_ context.Context, symbol string, _, _ time.Time) ([]fmp.PriceBar, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.bars[symbol], nil
}

type fakeQuoteSymbols struct {
	symbols    map[string]*models.TrackedSymbol
	bookkeeped map[int64]int
}

func newFakeQuoteSymbols(symbols ...*models.TrackedSymbol) *fakeQuoteSymbols {
	s := &fakeQuoteSymbols{symbols: map[string]*models.TrackedSymbol{}, bookkeeped: map[int64]int{}}
	for _, sym := range symbols {
		s.symbols[sym.Symbol] = sym
	}
	return s
}

func (s *fakeQuoteSymbols) GetByID(_ context.Context, id int64) (*models.TrackedSymbol, error) {
	for _, sym := range s.symbols {
		if sym.ID == id {
			cp := *sym
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (s *fakeQuoteSymbols) GetBySymbol(_ context.Context, ticker string) (*models.TrackedSymbol, error) {
	sym, ok := s.symbols[strings.ToUpper(ticker)]
	if !ok {
		return nil, errNotFound
	}
	cp := *sym
	return &cp, nil
}

func (s *fakeQuoteSymbols) ListActive(context.Context) ([]models.TrackedSymbol, error) {
	var out []models.TrackedSymbol
	for _, sym := range s.symbols {
		if sym.Status == models.SymbolStatusActive {
			out = append(out, *sym)
		}
	}
	return out, nil
}

func (s *fakeQuoteSymbols) UpdateDataBookkeeping(_ context.Context, id int64, dataPoints int, _ time.Time) error {
	s.bookkeeped[id] = dataPoints
	return nil
}

type quoteKey struct {
	symbolID int64
	date     string
}

type fakeQuoteStore struct {
	rows map[quoteKey]models.DailyQuote
}

func newFakeQuoteStore() *fakeQuoteStore {
	return &fakeQuoteStore{rows: map[quoteKey]models.DailyQuote{}}
}

func (s *fakeQuoteStore) Upsert(_ context.Context, q *models.DailyQuote) error {
	s.rows[quoteKey{q.TrackedSymbolID, q.Date.Format("2006-01-02")}] = *q
	return nil
}

func (s *fakeQuoteStore) BulkUpsert(ctx context.Context, quotes []models.DailyQuote) error {
	for i := range quotes {
		if err := s.Upsert(ctx, &quotes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeQuoteStore) CountForSymbol(_ context.Context, symbolID int64) (int, error) {
	n := 0
	for k := range s.rows {
		if k.symbolID == symbolID {
			n++
		}
	}
	return n, nil
}

func (s *fakeQuoteStore) LatestDate(_ context.Context, symbolID int64) (*time.Time, error) {
	var latest *time.Time
	for k, q := range s.rows {
		if k.symbolID != symbolID {
			continue
		}
		d := q.Date
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest, nil
}

func activeSymbol(id int64, ticker string) *models.TrackedSymbol {
	return &models.TrackedSymbol{
		ID: id, Symbol: ticker, Name: ticker, Type: models.SymbolTypeStock,
		Status: models.SymbolStatusActive, HistoricalDataStart: models.DefaultHistoricalStart,
	}
}

func bar(date string, close float64) fmp.PriceBar {
	c := decimal.NewFromFloat(close)
	return fmp.PriceBar{Date: date, Open: c, High: c, Low: c, Close: c, Volume: 1000}
}

func TestGetQuoteUsesCache(t *testing.T) {
	provider := &fakeQuoteProvider{quote: &fmp.QuoteData{
		Symbol: "AAPL", Price: decimal.NewFromFloat(181.5), Volume: 1234,
	}}
	symbols := newFakeQuoteSymbols(activeSymbol(1, "AAPL"))
	svc := NewQuoteService(provider, symbols, newFakeQuoteStore(), cache.NewQuoteCache(time.Minute))

	first, err := svc.GetQuote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("GetQuote returned error: %v", err)
	}
	second, err := svc.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("second GetQuote returned error: %v", err)
	}
	if provider.quoteCalls != 1 {
		t.Errorf("expected one provider call with a warm cache, got %d", provider.quoteCalls)
	}
	if !first.Price.Equal(second.Price) || first.SymbolID != 1 {
		t.Errorf("unexpected quotes: %+v vs %+v", first, second)
	}
}

func TestGetQuoteUnavailable(t *testing.T) {
	provider := &fakeQuoteProvider{} // provider returns nil quote
	symbols := newFakeQuoteSymbols(activeSymbol(1, "ZZZZ"))
	svc := NewQuoteService(provider, symbols, newFakeQuoteStore(), cache.NewQuoteCache(time.Minute))

	_, err := svc.GetQuote(context.Background(), "ZZZZ")
	if err == nil {
		t.Fatal("expected ErrQuoteUnavailable")
	}
}

func TestCollectDailyQuotesSkipsFailures(t *testing.T) {
	provider := &fakeQuoteProvider{bars: map[string][]fmp.PriceBar{
		"AAPL": {bar("2026-08-28", 181.5)},
		// MSFT has no recent bars
	}}
	symbols := newFakeQuoteSymbols(activeSymbol(1, "AAPL"), activeSymbol(2, "MSFT"))
	store := newFakeQuoteStore()
	svc := NewQuoteService(provider, symbols, store, cache.NewQuoteCache(time.Minute))

	stored, err := svc.CollectDailyQuotes(context.Background())
	if err != nil {
		t.Fatalf("CollectDailyQuotes returned error: %v", err)
	}
	if stored != 1 {
		t.Errorf("expected 1 stored quote, got %d", stored)
	}
	if n, _ := store.CountForSymbol(context.Background(), 1); n != 1 {
		t.Errorf("expected 1 row for AAPL, got %d", n)
	}
	if symbols.bookkeeped[1] != 1 {
		t.Errorf("bookkeeping not updated for AAPL: %v", symbols.bookkeeped)
	}
}

func TestCollectDailyQuotesIsIdempotent(t *testing.T) {
	provider := &fakeQuoteProvider{bars: map[string][]fmp.PriceBar{
		"AAPL": {bar("2026-08-28", 181.5)},
	}}
	symbols := newFakeQuoteSymbols(activeSymbol(1, "AAPL"))
	store := newFakeQuoteStore()
	svc := NewQuoteService(provider, symbols, store, cache.NewQuoteCache(time.Minute))

	for i := 0; i < 2; i++ {
		if _, err := svc.CollectDailyQuotes(context.Background()); err != nil {
			t.Fatalf("run %d failed: %v", i, err)
		}
	}
	if len(store.rows) != 1 {
		t.Errorf("rerun must not duplicate rows, got %d", len(store.rows))
	}
}

func TestBackfillHistory(t *testing.T) {
	provider := &fakeQuoteProvider{bars: map[string][]fmp.PriceBar{
		"AAPL": {
			bar("2026-08-28", 181.5),
			bar("2026-08-27", 180.2),
			{Date: "not-a-date"}, // malformed rows are skipped
		},
	}}
	symbols := newFakeQuoteSymbols(activeSymbol(1, "AAPL"))
	store := newFakeQuoteStore()
	svc := NewQuoteService(provider, symbols, store, cache.NewQuoteCache(time.Minute))

	resp, err := svc.BackfillHistory(context.Background(), 1)
	if err != nil {
		t.Fatalf("BackfillHistory returned error: %v", err)
	}
	if resp.BarsStored != 2 {
		t.Errorf("expected 2 bars stored, got %d", resp.BarsStored)
	}
	if resp.DataPoints != 2 {
		t.Errorf("expected 2 data points, got %d", resp.DataPoints)
	}
	if symbols.bookkeeped[1] != 2 {
		t.Errorf("bookkeeping not updated: %v", symbols.bookkeeped)
	}
}
