package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/epeers/tradingvision/internal/repository"
	"github.com/epeers/tradingvision/internal/services"
	"github.com/gin-gonic/gin"
)

// LoggingHandler handles audit-trail read endpoints
type LoggingHandler struct {
	auditSvc *services.AuditService
}

// NewLoggingHandler creates a new LoggingHandler
func NewLoggingHandler(auditSvc *services.AuditService) *LoggingHandler {
	return &LoggingHandler{auditSvc: auditSvc}
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil {
		return def
	}
	return v
}

// ApiCalls handles GET /logging/api-calls
// @Summary List recent provider calls
// @Tags logging
// @Produce json
// @Param limit query int false "Window size, max 200, default 50"
// @Param offset query int false "Rows to skip"
// @Success 200 {object} models.ApiCallsResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /logging/api-calls [get]
func (h *LoggingHandler) ApiCalls(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)

	calls, total, err := h.auditSvc.Calls(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.ApiCallsResponse{
		ApiCalls: calls,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// Exceptions handles GET /logging/exceptions
// @Summary List recent ingestion exceptions
// @Tags logging
// @Produce json
// @Param limit query int false "Window size, max 200, default 50"
// @Param offset query int false "Rows to skip"
// @Param severity query string false "Filter by severity"
// @Param isResolved query bool false "Filter by resolution state"
// @Success 200 {object} models.ExceptionsResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /logging/exceptions [get]
func (h *LoggingHandler) Exceptions(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	offset := queryInt(c, "offset", 0)
	severity := c.Query("severity")

	var resolved *bool
	if v, ok := c.GetQuery("isResolved"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: "isResolved must be a boolean",
			})
			return
		}
		resolved = &b
	}

	exceptions, total, err := h.auditSvc.Exceptions(c.Request.Context(), limit, offset, severity, resolved)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.ExceptionsResponse{
		Exceptions: exceptions,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		Severity:   severity,
		IsResolved: resolved,
	})
}

// ResolveException handles POST /logging/exceptions/:id/resolve
// @Summary Resolve an exception
// @Description Idempotent: resolving an already-resolved exception preserves the original resolution.
// @Tags logging
// @Accept json
// @Produce json
// @Param id path int true "Exception ID"
// @Param request body models.ResolveExceptionRequest false "Resolution notes"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /logging/exceptions/{id}/resolve [post]
func (h *LoggingHandler) ResolveException(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.ResolveExceptionRequest
	_ = c.ShouldBindJSON(&req) // body is optional

	var notes *string
	if req.ResolutionNotes != "" {
		notes = &req.ResolutionNotes
	}

	err := h.auditSvc.ResolveException(c.Request.Context(), id, notes)
	if err != nil {
		if errors.Is(err, repository.ErrExceptionNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "exception not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": true})
}

// DailySummary handles GET /logging/daily-summary/:date
// @Summary Get the daily roll-up for one date
// @Tags logging
// @Produce json
// @Param date path string true "Date, YYYY-MM-DD"
// @Success 200 {object} models.DailyApiSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /logging/daily-summary/{date} [get]
func (h *LoggingHandler) DailySummary(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "date must be YYYY-MM-DD",
		})
		return
	}

	summary, err := h.auditSvc.DailySummary(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "no summary for date",
		})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// queryDate parses an optional YYYY-MM-DD query parameter, returning def when
// it is absent. ok is false when the value is present but malformed.
func queryDate(c *gin.Context, name string, def time.Time) (time.Time, bool) {
	v, present := c.GetQuery(name)
	if !present {
		return def, true
	}
	d, err := time.Parse("2006-01-02", v)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: name + " must be YYYY-MM-DD",
		})
		return time.Time{}, false
	}
	return d, true
}

// DailySummaries handles GET /logging/daily-summaries
// @Summary List daily roll-ups within a date range
// @Tags logging
// @Produce json
// @Param startDate query string false "Range start, YYYY-MM-DD, default 30 days back"
// @Param endDate query string false "Range end, YYYY-MM-DD, default today"
// @Success 200 {object} models.DailySummariesResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /logging/daily-summaries [get]
func (h *LoggingHandler) DailySummaries(c *gin.Context) {
	now := time.Now().UTC()
	end, ok := queryDate(c, "endDate", now)
	if !ok {
		return
	}
	start, ok := queryDate(c, "startDate", end.AddDate(0, 0, -30))
	if !ok {
		return
	}

	summaries, err := h.auditSvc.DailySummaries(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.DailySummariesResponse{
		Summaries: summaries,
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
	})
}

// GenerateSummary handles POST /logging/generate-daily-summary/:date
// @Summary Recompute the daily roll-up for one date
// @Description Idempotent: regenerating replaces the stored roll-up. A day with no calls writes nothing.
// @Tags logging
// @Produce json
// @Param date path string true "Date, YYYY-MM-DD"
// @Success 200 {object} models.DailyApiSummary
// @Success 204
// @Failure 500 {object} models.ErrorResponse
// @Router /logging/generate-daily-summary/{date} [post]
func (h *LoggingHandler) GenerateSummary(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "date must be YYYY-MM-DD",
		})
		return
	}

	summary, err := h.auditSvc.GenerateDailySummary(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	if summary == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Stats handles GET /logging/stats
// @Summary Aggregate call statistics over a date range
// @Tags logging
// @Produce json
// @Param startDate query string false "Range start, YYYY-MM-DD, default unbounded"
// @Param endDate query string false "Range end, YYYY-MM-DD, default now"
// @Success 200 {object} models.ApiCallStats
// @Failure 500 {object} models.ErrorResponse
// @Router /logging/stats [get]
func (h *LoggingHandler) Stats(c *gin.Context) {
	end, ok := queryDate(c, "endDate", time.Now().UTC())
	if !ok {
		return
	}
	if _, present := c.GetQuery("endDate"); present {
		// The store treats end as exclusive; cover the whole named day.
		end = end.AddDate(0, 0, 1)
	}
	start, ok := queryDate(c, "startDate", time.Time{})
	if !ok {
		return
	}

	stats, err := h.auditSvc.Stats(c.Request.Context(), start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Dashboard handles GET /logging/dashboard
// @Summary Operational overview of the ingestion audit trail
// @Tags logging
// @Produce json
// @Success 200 {object} models.LoggingDashboard
// @Failure 500 {object} models.ErrorResponse
// @Router /logging/dashboard [get]
func (h *LoggingHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.auditSvc.Dashboard(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
