package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/epeers/tradingvision/internal/fmp"
	"github.com/epeers/tradingvision/internal/models"
	"github.com/epeers/tradingvision/internal/repository"
	"github.com/epeers/tradingvision/internal/services"
	"github.com/gin-gonic/gin"
)

// ETFHandler handles ETF listing, holdings and import endpoints
type ETFHandler struct {
	symbolSvc *services.SymbolService
	importSvc *services.ImportService
}

// NewETFHandler creates a new ETFHandler
func NewETFHandler(symbolSvc *services.SymbolService, importSvc *services.ImportService) *ETFHandler {
	return &ETFHandler{
		symbolSvc: symbolSvc,
		importSvc: importSvc,
	}
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: "invalid " + name,
		})
		return 0, false
	}
	return id, true
}

// List handles GET /etfs
// @Summary List tracked ETFs
// @Tags etfs
// @Produce json
// @Success 200 {object} models.ListETFsResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /etfs [get]
func (h *ETFHandler) List(c *gin.Context) {
	etfs, err := h.symbolSvc.ListETFs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.ListETFsResponse{ETFs: etfs, Count: len(etfs)})
}

// GetHoldings handles GET /etfs/:id/holdings
// @Summary Get ETF holdings
// @Description List an ETF's constituents ordered by descending weight
// @Tags etfs
// @Produce json
// @Param id path int true "ETF ID"
// @Success 200 {object} models.ETFHoldingsResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /etfs/{id}/holdings [get]
func (h *ETFHandler) GetHoldings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.symbolSvc.HoldingsForETF(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "ETF not found",
			})
		case errors.Is(err, services.ErrNotAnETF):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "not_an_etf",
				Message: err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ImportHoldings handles POST /etfs/:id/import-holdings
// @Summary Import ETF holdings from the market-data provider
// @Description Reconcile the provider's holdings payload into the registry and edges. Per-item failures are reported, not fatal.
// @Tags etfs
// @Produce json
// @Param id path int true "ETF ID"
// @Success 200 {object} models.ImportReport
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ImportReport
// @Router /etfs/{id}/import-holdings [post]
func (h *ETFHandler) ImportHoldings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.importSvc.ImportHoldings(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "ETF not found",
			})
		case errors.Is(err, services.ErrNotAnETF):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "not_an_etf",
				Message: err.Error(),
			})
		case report != nil && fmp.IsTransient(err):
			c.JSON(http.StatusServiceUnavailable, report)
		case report != nil:
			c.JSON(http.StatusBadGateway, report)
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateTracking handles PUT /etfs/:id/holdings/:symbolId/tracking
// @Summary Toggle tracking for one constituent
// @Tags etfs
// @Accept json
// @Produce json
// @Param id path int true "ETF ID"
// @Param symbolId path int true "Constituent symbol ID"
// @Param request body models.UpdateTrackingRequest true "Tracking flag"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /etfs/{id}/holdings/{symbolId}/tracking [put]
func (h *ETFHandler) UpdateTracking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	symbolID, ok := pathID(c, "symbolId")
	if !ok {
		return
	}

	var req models.UpdateTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	err := h.symbolSvc.SetHoldingTracking(c.Request.Context(), id, symbolID, *req.IsTracked)
	if err != nil {
		if errors.Is(err, repository.ErrHoldingNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "holding not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"isTracked": *req.IsTracked})
}

// DeleteHolding handles DELETE /etfs/:id/holdings/:symbolId
// @Summary Remove one constituent edge
// @Description Removes the edge only; the constituent symbol stays registered.
// @Tags etfs
// @Produce json
// @Param id path int true "ETF ID"
// @Param symbolId path int true "Constituent symbol ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /etfs/{id}/holdings/{symbolId} [delete]
func (h *ETFHandler) DeleteHolding(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	symbolID, ok := pathID(c, "symbolId")
	if !ok {
		return
	}

	err := h.symbolSvc.DeleteHolding(c.Request.Context(), id, symbolID)
	if err != nil {
		if errors.Is(err, repository.ErrHoldingNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "holding not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}
