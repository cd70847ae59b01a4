package fmp

import (
	"strings"

	"github.com/shopspring/decimal"
)

// HoldingEntry is one row of the etf-holder payload. Field presence varies per
// fund, so everything is optional and read through accessors with named
// defaults.
type HoldingEntry struct {
	Asset            *string          `json:"asset"`
	Name             *string          `json:"name"`
	WeightPercentage *decimal.Decimal `json:"weightPercentage"`
	SharesNumber     *int64           `json:"sharesNumber"`
	MarketValue      *decimal.Decimal `json:"marketValue"`
}

// Ticker returns the uppercased constituent ticker. ok is false when the field
// is absent or blank.
func (h HoldingEntry) Ticker() (string, bool) {
	if h.Asset == nil {
		return "", false
	}
	t := strings.ToUpper(strings.TrimSpace(*h.Asset))
	return t, t != ""
}

// DisplayName returns the holding's name, falling back when absent.
func (h HoldingEntry) DisplayName(fallback string) string {
	if h.Name == nil || *h.Name == "" {
		return fallback
	}
	return *h.Name
}

// Weight returns the percentage weight, zero when absent.
func (h HoldingEntry) Weight() decimal.Decimal {
	if h.WeightPercentage == nil {
		return decimal.Zero
	}
	return *h.WeightPercentage
}

// Shares returns the share count, zero when absent.
func (h HoldingEntry) Shares() int64 {
	if h.SharesNumber == nil {
		return 0
	}
	return *h.SharesNumber
}

// CompanyProfile is the first element of the profile payload.
type CompanyProfile struct {
	Symbol      string  `json:"symbol"`
	CompanyName *string `json:"companyName"`
	Description *string `json:"description"`
	Sector      *string `json:"sector"`
	Industry    *string `json:"industry"`
	IsETF       bool    `json:"isEtf"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Name returns the company name, "" when absent.
func (p *CompanyProfile) Name() string { return str(p.CompanyName) }

// QuoteData is one element of the quote payload.
type QuoteData struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Change            decimal.Decimal `json:"change"`
	ChangesPercentage decimal.Decimal `json:"changesPercentage"`
	Volume            int64           `json:"volume"`
}

// PriceBar is one row of the historical-price-full payload.
type PriceBar struct {
	Date   string          `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

type historicalResponse struct {
	Symbol     string     `json:"symbol"`
	Historical []PriceBar `json:"historical"`
}
