package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Per-item statuses recorded in import/backfill detail lists.
const (
	DetailStatusImported         = "imported"
	DetailStatusUpdated          = "updated"
	DetailStatusCreated          = "created"
	DetailStatusError            = "error"
	DetailStatusValidationFailed = "validation_failed"
	DetailStatusNoProfileData    = "no_profile_data"
	DetailStatusNoUpdatesNeeded  = "no_updates_needed"
)

// ImportDetail is one per-item entry in an import report.
type ImportDetail struct {
	Symbol  string           `json:"symbol"`
	Name    string           `json:"name,omitempty"`
	Weight  *decimal.Decimal `json:"weight,omitempty"`
	Status  string           `json:"status"`
	Message string           `json:"message,omitempty"`
}

// HoldingsResult accumulates edge-level outcomes of one import.
type HoldingsResult struct {
	Total    int            `json:"total"`
	Imported int            `json:"imported"`
	Updated  int            `json:"updated"`
	Errors   int            `json:"errors"`
	Details  []ImportDetail `json:"details"`
}

// SymbolsResult accumulates constituent-registry outcomes of one import.
type SymbolsResult struct {
	Total    int            `json:"total"`
	New      int            `json:"newSymbols"`
	Existing int            `json:"existingSymbols"`
	Errors   int            `json:"errors"`
	Details  []ImportDetail `json:"details"`
}

// ProfilesResult accumulates backfill outcomes of one import.
type ProfilesResult struct {
	Total   int            `json:"total"`
	Updated int            `json:"updated"`
	Errors  int            `json:"errors"`
	Details []ImportDetail `json:"details"`
}

// ImportTiming brackets one import run.
type ImportTiming struct {
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	DurationMs int64     `json:"durationMs"`
}

// ImportSummary is the top-level rollup of an ImportReport.
type ImportSummary struct {
	TotalHoldings     int `json:"totalHoldings"`
	SuccessfulImports int `json:"successfulImports"`
	NewSymbolsCreated int `json:"newSymbolsCreated"`
	ProfilesUpdated   int `json:"profilesUpdated"`
	Errors            int `json:"errors"`
}

// ETFRef identifies the ETF an import ran against.
type ETFRef struct {
	ID     int64  `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// ImportReport is the structured partial-success envelope returned by a
// holdings import. Errors inside the per-item loop are counted here, never
// surfaced as a request failure.
type ImportReport struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	ETF      ETFRef         `json:"etf"`
	Holdings HoldingsResult `json:"holdings"`
	Symbols  SymbolsResult  `json:"symbols"`
	Profiles ProfilesResult `json:"profiles"`
	Timing   ImportTiming   `json:"timing"`
	Summary  ImportSummary  `json:"summary"`
}

// SymbolRef identifies the symbol a profile import ran against.
type SymbolRef struct {
	ID     int64  `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// ProfileResult describes the outcome of a single-symbol profile import.
type ProfileResult struct {
	Retrieved     bool     `json:"retrieved"`
	Updated       bool     `json:"updated"`
	FieldsUpdated []string `json:"fieldsUpdated"`
	Errors        []string `json:"errors"`
}

// ProfileImportReport is the detailed result of POST /symbols/{id}/import-profile.
type ProfileImportReport struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Symbol  SymbolRef     `json:"symbol"`
	Profile ProfileResult `json:"profile"`
	Timing  ImportTiming  `json:"timing"`
}

// AllImportsReport aggregates per-ETF reports from the scheduled full refresh.
type AllImportsReport struct {
	Total    int            `json:"total"`
	Imported int            `json:"imported"`
	Errors   int            `json:"errors"`
	Reports  []ImportReport `json:"reports"`
	Timing   ImportTiming   `json:"timing"`
}
