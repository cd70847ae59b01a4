package fmp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Financial Modeling Prep is a stock and ETF API that fetches quotes, company
// profiles, historical prices and ETF holder lists.
// https://site.financialmodelingprep.com/developer/docs
const defaultBaseURL = "https://financialmodelingprep.com/api/v3"

// AuditSink receives telemetry for every outbound call. Implementations must
// swallow their own persistence failures; the call path never retries or
// aborts because a log row could not be written.
type AuditSink interface {
	RecordCall(ctx context.Context, rec models.ApiCallLog)
	RecordException(ctx context.Context, rec models.ApiException)
}

// Client is an HTTP client for the FMP API. Every call, success or failure,
// produces exactly one audit call row; every returned fault additionally
// produces exactly one audit exception row.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	audit      AuditSink
}

// NewClient creates a new FMP client
func NewClient(apiKey string, audit AuditSink) *Client {
	return NewClientWithBaseURL(apiKey, defaultBaseURL, audit)
}

// NewClientWithBaseURL creates a new FMP client with a custom base URL (for testing)
func NewClientWithBaseURL(apiKey, baseURL string, audit AuditSink) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		audit:   audit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetETFHoldings fetches the holder list of an ETF. An empty list is returned
// as-is; absence of holdings is not an error.
func (c *Client) GetETFHoldings(ctx context.Context, symbol string) ([]HoldingEntry, error) {
	symbol = strings.ToUpper(symbol)
	path := "/etf-holder/" + symbol
	reqID := requestID("GetETFHoldings", symbol)

	body, err := c.call(ctx, path, "etf="+symbol, reqID, 1, nil)
	if err != nil {
		return nil, err
	}

	var holdings []HoldingEntry
	if err := json.Unmarshal(body, &holdings); err != nil {
		return nil, c.decodeFailure(ctx, path, reqID, err)
	}
	return holdings, nil
}

// GetCompanyProfile fetches the company profile for a symbol. A missing or
// empty profile payload returns (nil, nil).
func (c *Client) GetCompanyProfile(ctx context.Context, symbol string) (*CompanyProfile, error) {
	symbol = strings.ToUpper(symbol)
	path := "/profile/" + symbol
	reqID := requestID("GetCompanyProfile", symbol)

	body, err := c.call(ctx, path, "symbol="+symbol, reqID, 1, nil)
	if err != nil {
		return nil, err
	}

	var profiles []CompanyProfile
	if err := json.Unmarshal(body, &profiles); err != nil {
		return nil, c.decodeFailure(ctx, path, reqID, err)
	}
	if len(profiles) == 0 {
		return nil, nil
	}
	return &profiles[0], nil
}

// GetQuote fetches the latest quote for a symbol. Returns (nil, nil) when the
// provider has no data for the ticker.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*QuoteData, error) {
	symbol = strings.ToUpper(symbol)
	path := "/quote/" + symbol
	reqID := requestID("GetQuote", symbol)

	body, err := c.call(ctx, path, "symbol="+symbol, reqID, 1, nil)
	if err != nil {
		return nil, err
	}

	var quotes []QuoteData
	if err := json.Unmarshal(body, &quotes); err != nil {
		return nil, c.decodeFailure(ctx, path, reqID, err)
	}
	if len(quotes) == 0 {
		return nil, nil
	}
	return &quotes[0], nil
}

// GetHistoricalPrices fetches daily bars for a symbol over [from, to].
func (c *Client) GetHistoricalPrices(ctx context.Context, symbol string, from, to time.Time) ([]PriceBar, error) {
	symbol = strings.ToUpper(symbol)
	path := "/historical-price-full/" + symbol
	fromStr := from.Format("2006-01-02")
	toStr := to.Format("2006-01-02")
	reqID := requestID("GetHistoricalData", symbol)

	query := url.Values{}
	query.Set("from", fromStr)
	query.Set("to", toStr)

	params := fmt.Sprintf("symbol=%s&from=%s&to=%s", symbol, fromStr, toStr)
	body, err := c.call(ctx, path, params, reqID, 1, query)
	if err != nil {
		return nil, err
	}

	var resp historicalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, c.decodeFailure(ctx, path, reqID, err)
	}
	return resp.Historical, nil
}

// ValidateSymbol probes the profile endpoint and reports whether the provider
// knows the ticker. Faults are swallowed here: the underlying call has already
// been audited, and validation failure is an expected per-item outcome.
func (c *Client) ValidateSymbol(ctx context.Context, symbol string) bool {
	profile, err := c.GetCompanyProfile(ctx, symbol)
	if err != nil {
		log.Debugf("Symbol validation failed for %s: %v", symbol, err)
		return false
	}
	return profile != nil
}

// call performs one GET against the provider. The api key is appended to the
// request URL but never to the audited endpoint or parameters.
func (c *Client) call(ctx context.Context, path, parameters, reqID string, symbolsRequested int, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)

	endpoint := c.baseURL + path
	reqURL := endpoint + "?" + query.Encode()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	log.Debugf("Starting FMP API call: %s", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := &TransportError{Endpoint: path, Err: err}
		c.recordFailure(ctx, path, parameters, reqID, 0, symbolsRequested, elapsedMs(start), terr)
		log.Errorf("FMP API call exception: %s: %v", reqID, err)
		return nil, terr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cerr := &CallError{StatusCode: resp.StatusCode, Reason: http.StatusText(resp.StatusCode), Endpoint: path}
		c.recordFailure(ctx, path, parameters, reqID, resp.StatusCode, symbolsRequested, elapsedMs(start), cerr)
		log.Warnf("FMP API call failed: %s - status %d", reqID, resp.StatusCode)
		return nil, cerr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := &TransportError{Endpoint: path, Err: err}
		c.recordFailure(ctx, path, parameters, reqID, resp.StatusCode, symbolsRequested, elapsedMs(start), terr)
		return nil, terr
	}

	elapsed := elapsedMs(start)
	c.audit.RecordCall(ctx, models.ApiCallLog{
		Endpoint:          path,
		HTTPMethod:        http.MethodGet,
		Parameters:        &parameters,
		StatusCode:        resp.StatusCode,
		ResponseTimeMs:    elapsed,
		SymbolsRequested:  symbolsRequested,
		SymbolsSuccessful: symbolsRequested, // assume success on HTTP 2xx
		RequestID:         &reqID,
		Timestamp:         time.Now().UTC(),
	})

	log.Debugf("FMP API call successful: %s - %d bytes in %dms", reqID, len(body), elapsed)
	return body, nil
}

// recordFailure writes the one failed call row and the one exception row that
// accompany a returned fault.
func (c *Client) recordFailure(ctx context.Context, path, parameters, reqID string, statusCode, symbolsRequested, elapsed int, callErr error) {
	msg := callErr.Error()
	extra := "FMP API call failed: " + path

	c.audit.RecordException(ctx, models.ApiException{
		Source:            "fmp.Client",
		ExceptionType:     fmt.Sprintf("%T", callErr),
		Message:           msg,
		Severity:          models.SeverityHigh,
		RequestID:         &reqID,
		AdditionalContext: &extra,
		Timestamp:         time.Now().UTC(),
	})
	c.audit.RecordCall(ctx, models.ApiCallLog{
		Endpoint:         path,
		HTTPMethod:       http.MethodGet,
		Parameters:       &parameters,
		StatusCode:       statusCode,
		ResponseTimeMs:   elapsed,
		SymbolsRequested: symbolsRequested,
		SymbolsFailed:    symbolsRequested,
		RequestID:        &reqID,
		ErrorMessage:     &msg,
		Timestamp:        time.Now().UTC(),
	})
}

// decodeFailure audits a malformed 2xx body and returns the typed error.
func (c *Client) decodeFailure(ctx context.Context, path, reqID string, err error) error {
	derr := &DecodeError{Endpoint: path, Err: err}
	msg := derr.Error()
	c.audit.RecordException(ctx, models.ApiException{
		Source:        "fmp.Client",
		ExceptionType: fmt.Sprintf("%T", derr),
		Message:       msg,
		Severity:      models.SeverityMedium,
		RequestID:     &reqID,
		Timestamp:     time.Now().UTC(),
	})
	return derr
}

func requestID(op, symbol string) string {
	return fmt.Sprintf("%s-%s-%s", op, symbol, uuid.NewString()[:8])
}

func elapsedMs(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}
