package models

import (
	"time"
)

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AddSymbolRequest is the body of POST /symbols.
type AddSymbolRequest struct {
	Symbol string `json:"symbol" binding:"required"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// UpdateStatusRequest is the body of PUT /symbols/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTrackingRequest is the body of PUT /etfs/{id}/holdings/{symbolId}/tracking.
type UpdateTrackingRequest struct {
	IsTracked *bool `json:"isTracked" binding:"required"`
}

// ResolveExceptionRequest is the body of POST /logging/exceptions/{id}/resolve.
type ResolveExceptionRequest struct {
	ResolutionNotes string `json:"resolutionNotes"`
}

// ListETFsResponse wraps GET /etfs.
type ListETFsResponse struct {
	ETFs  []TrackedSymbol `json:"etfs"`
	Count int             `json:"count"`
}

// ETFHoldingsResponse wraps GET /etfs/{id}/holdings, ordered by descending weight.
type ETFHoldingsResponse struct {
	ETF      ETFSummary          `json:"etf"`
	Holdings []HoldingWithSymbol `json:"holdings"`
}

// ETFSummary heads the holdings listing.
type ETFSummary struct {
	ID            int64   `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	TotalHoldings int     `json:"totalHoldings"`
}

// ListSymbolsResponse wraps GET /symbols.
type ListSymbolsResponse struct {
	Symbols []TrackedSymbol `json:"symbols"`
	Count   int             `json:"count"`
}

// ApiCallsResponse wraps GET /logging/api-calls.
type ApiCallsResponse struct {
	ApiCalls []ApiCallLog `json:"apiCalls"`
	Total    int64        `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
}

// ExceptionsResponse wraps GET /logging/exceptions.
type ExceptionsResponse struct {
	Exceptions []ApiException `json:"exceptions"`
	Total      int64          `json:"total"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
	Severity   string         `json:"severity,omitempty"`
	IsResolved *bool          `json:"isResolved,omitempty"`
}

// HistoricalFetchResponse wraps POST /symbols/{id}/fetch-historical.
type HistoricalFetchResponse struct {
	Symbol     string    `json:"symbol"`
	BarsStored int       `json:"barsStored"`
	DataPoints int       `json:"dataPoints"`
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
}

// DailySummariesResponse wraps GET /logging/daily-summaries.
type DailySummariesResponse struct {
	Summaries []DailyApiSummary `json:"summaries"`
	StartDate string            `json:"startDate"`
	EndDate   string            `json:"endDate"`
}
