package models

import "time"

// Exception severities as stored in api_exceptions.severity
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
)

// MaxExceptionMessage bounds the message column; longer messages are truncated.
const MaxExceptionMessage = 1000

// ApiCallLog is one append-only record per outbound provider call.
type ApiCallLog struct {
	ID                int64     `json:"id"`
	Endpoint          string    `json:"endpoint"`
	HTTPMethod        string    `json:"httpMethod"`
	Parameters        *string   `json:"parameters"`
	StatusCode        int       `json:"statusCode"`
	ResponseTimeMs    int       `json:"responseTimeMs"`
	SymbolsRequested  int       `json:"symbolsRequested"`
	SymbolsSuccessful int       `json:"symbolsSuccessful"`
	SymbolsFailed     int       `json:"symbolsFailed"`
	RequestID         *string   `json:"requestId"`
	ErrorMessage      *string   `json:"errorMessage"`
	Timestamp         time.Time `json:"timestamp"`
}

// IsSuccessful reports whether the call completed with a 2xx status.
func (c *ApiCallLog) IsSuccessful() bool {
	return c.StatusCode >= 200 && c.StatusCode < 300
}

// ApiException is one record per caught fault during ingestion. Created on
// fault, mutated only by an explicit resolve.
type ApiException struct {
	ID                int64      `json:"id"`
	Source            string     `json:"source"`
	ExceptionType     string     `json:"exceptionType"`
	Message           string     `json:"message"`
	StackTrace        *string    `json:"stackTrace"`
	Severity          string     `json:"severity"`
	IsResolved        bool       `json:"isResolved"`
	ResolvedAt        *time.Time `json:"resolvedAt"`
	ResolutionNotes   *string    `json:"resolutionNotes"`
	RequestID         *string    `json:"requestId"`
	AdditionalContext *string    `json:"additionalContext"`
	Timestamp         time.Time  `json:"timestamp"`
}

// DailyApiSummary is the derived per-day rollup over api_call_logs, unique per
// date and idempotently recomputable.
type DailyApiSummary struct {
	ID                     int64      `json:"id"`
	Date                   time.Time  `json:"date"`
	TotalCalls             int        `json:"totalCalls"`
	SuccessfulCalls        int        `json:"successfulCalls"`
	FailedCalls            int        `json:"failedCalls"`
	UniqueSymbols          int        `json:"uniqueSymbols"`
	AverageResponseTimeMs  int        `json:"averageResponseTimeMs"`
	TotalSymbolsProcessed  int        `json:"totalSymbolsProcessed"`
	TotalSymbolsSuccessful int        `json:"totalSymbolsSuccessful"`
	TotalSymbolsFailed     int        `json:"totalSymbolsFailed"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              *time.Time `json:"updatedAt"`
}

// SuccessRate returns the percentage of successful calls.
func (s *DailyApiSummary) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessfulCalls) / float64(s.TotalCalls) * 100
}

// ApiCallStats are aggregate counts/rates over an optional time window.
type ApiCallStats struct {
	TotalCalls             int     `json:"totalCalls"`
	SuccessfulCalls        int     `json:"successfulCalls"`
	FailedCalls            int     `json:"failedCalls"`
	AverageResponseTimeMs  float64 `json:"averageResponseTimeMs"`
	TotalSymbolsProcessed  int     `json:"totalSymbolsProcessed"`
	TotalSymbolsSuccessful int     `json:"totalSymbolsSuccessful"`
	TotalSymbolsFailed     int     `json:"totalSymbolsFailed"`
	SuccessRate            float64 `json:"successRate"`
	SymbolSuccessRate      float64 `json:"symbolSuccessRate"`
}

// LoggingDashboard is the composite operational view: today's stats, this
// week's stats, the most recent unresolved exceptions and the most recent calls.
type LoggingDashboard struct {
	Today            *ApiCallStats  `json:"today"`
	ThisWeek         *ApiCallStats  `json:"thisWeek"`
	RecentExceptions []ApiException `json:"recentExceptions"`
	RecentApiCalls   []ApiCallLog   `json:"recentApiCalls"`
	GeneratedAt      time.Time      `json:"generatedAt"`
}
