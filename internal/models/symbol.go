package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Symbol kinds as stored in tracked_symbols.type
const (
	SymbolTypeStock   = "STOCK"
	SymbolTypeETF     = "ETF"
	SymbolTypeUnknown = "UNKNOWN"
)

// Lifecycle states as stored in tracked_symbols.status
const (
	SymbolStatusActive   = "ACTIVE"
	SymbolStatusInactive = "INACTIVE"
	SymbolStatusError    = "ERROR"
)

// DefaultHistoricalStart is the historical-data start marker assigned to
// symbols discovered implicitly through an ETF holdings import.
var DefaultHistoricalStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// TrackedSymbol is an instrument under management. The uppercase ticker is the
// identity key and is globally unique.
type TrackedSymbol struct {
	ID                  int64      `json:"id"`
	Symbol              string     `json:"symbol"`
	Name                string     `json:"name"`
	Type                string     `json:"type"`
	Status              string     `json:"status"`
	AddedDate           time.Time  `json:"addedDate"`
	LastUpdated         *time.Time `json:"lastUpdated"`
	HistoricalDataStart time.Time  `json:"historicalDataStart"`
	HistoricalDataEnd   *time.Time `json:"historicalDataEnd"`
	DataPoints          int        `json:"dataPoints"`
	Description         *string    `json:"description"`
	Sector              *string    `json:"sector"`
	Industry            *string    `json:"industry"`
}

// NeedsProfile reports whether any descriptive field is still empty and the
// symbol is therefore a profile-backfill candidate.
func (s *TrackedSymbol) NeedsProfile() bool {
	return isEmpty(s.Description) || isEmpty(s.Sector) || isEmpty(s.Industry)
}

func isEmpty(p *string) bool {
	return p == nil || *p == ""
}

// ETFHolding is the directed edge from an ETF to one constituent. The pair
// (ETFSymbolID, HoldingSymbolID) is unique; re-imports update in place.
type ETFHolding struct {
	ID              int64            `json:"id"`
	ETFSymbolID     int64            `json:"etfSymbolId"`
	HoldingSymbolID int64            `json:"holdingSymbolId"`
	Weight          decimal.Decimal  `json:"weight"`
	Shares          int64            `json:"shares"`
	MarketValue     *decimal.Decimal `json:"marketValue"`
	IsTracked       bool             `json:"isTracked"`
	LastUpdated     time.Time        `json:"lastUpdated"`
}

// HoldingWithSymbol joins an edge with its constituent for read endpoints.
type HoldingWithSymbol struct {
	ETFHolding
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// DailyQuote is one end-of-day OHLCV row, unique per (symbol, date).
type DailyQuote struct {
	ID              int64           `json:"id"`
	TrackedSymbolID int64           `json:"trackedSymbolId"`
	Date            time.Time       `json:"date"`
	Open            decimal.Decimal `json:"open"`
	High            decimal.Decimal `json:"high"`
	Low             decimal.Decimal `json:"low"`
	Close           decimal.Decimal `json:"close"`
	Volume          int64           `json:"volume"`
	ChangePercent   *decimal.Decimal `json:"changePercent"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Quote is the latest snapshot for a symbol, served with a short TTL cache.
type Quote struct {
	SymbolID      int64           `json:"symbolId"`
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"changePercent"`
	Volume        int64           `json:"volume"`
	FetchedAt     time.Time       `json:"fetchedAt"`
}
