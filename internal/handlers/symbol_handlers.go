package handlers

import (
	"errors"
	"net/http"

	"github.com/epeers/tradingvision/internal/fmp"
	"github.com/epeers/tradingvision/internal/models"
	"github.com/epeers/tradingvision/internal/repository"
	"github.com/epeers/tradingvision/internal/services"
	"github.com/gin-gonic/gin"
)

// SymbolHandler handles symbol registry, profile and quote endpoints
type SymbolHandler struct {
	symbolSvc  *services.SymbolService
	profileSvc *services.ProfileService
	quoteSvc   *services.QuoteService
}

// NewSymbolHandler creates a new SymbolHandler
func NewSymbolHandler(symbolSvc *services.SymbolService, profileSvc *services.ProfileService, quoteSvc *services.QuoteService) *SymbolHandler {
	return &SymbolHandler{
		symbolSvc:  symbolSvc,
		profileSvc: profileSvc,
		quoteSvc:   quoteSvc,
	}
}

// List handles GET /symbols
// @Summary List tracked symbols
// @Tags symbols
// @Produce json
// @Success 200 {object} models.ListSymbolsResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /symbols [get]
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.symbolSvc.ListSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, models.ListSymbolsResponse{Symbols: symbols, Count: len(symbols)})
}

// Get handles GET /symbols/:id
// @Summary Get one tracked symbol
// @Tags symbols
// @Produce json
// @Param id path int true "Symbol ID"
// @Success 200 {object} models.TrackedSymbol
// @Failure 404 {object} models.ErrorResponse
// @Router /symbols/{id} [get]
func (h *SymbolHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sym, err := h.symbolSvc.GetSymbol(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "symbol not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, sym)
}

// Add handles POST /symbols
// @Summary Register a symbol for tracking
// @Description Validates the ticker against the market-data provider before registering it.
// @Tags symbols
// @Accept json
// @Produce json
// @Param request body models.AddSymbolRequest true "Symbol to add"
// @Success 201 {object} models.TrackedSymbol
// @Failure 409 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /symbols [post]
func (h *SymbolHandler) Add(c *gin.Context) {
	var req models.AddSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	sym, err := h.symbolSvc.AddSymbol(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidType):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrSymbolInvalid):
			c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Error:   "symbol_invalid",
				Message: err.Error(),
			})
		case errors.Is(err, repository.ErrDuplicateSymbol):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "conflict",
				Message: "symbol already tracked",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}
	c.JSON(http.StatusCreated, sym)
}

// UpdateStatus handles PUT /symbols/:id/status
// @Summary Update a symbol's lifecycle status
// @Tags symbols
// @Accept json
// @Produce json
// @Param id path int true "Symbol ID"
// @Param request body models.UpdateStatusRequest true "New status"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} models.ErrorResponse
// @Router /symbols/{id}/status [put]
func (h *SymbolHandler) UpdateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})
		return
	}

	err := h.symbolSvc.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
			})
		case errors.Is(err, repository.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "symbol not found",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

// Delete handles DELETE /symbols/:id
// @Summary Remove a symbol from the registry
// @Description Symbols still referenced by ETF holdings cannot be removed.
// @Tags symbols
// @Produce json
// @Param id path int true "Symbol ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /symbols/{id} [delete]
func (h *SymbolHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.symbolSvc.DeleteSymbol(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "symbol not found",
			})
		case errors.Is(err, repository.ErrSymbolReferenced):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "conflict",
				Message: "symbol is referenced by ETF holdings",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "internal_error",
				Message: err.Error(),
			})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportProfile handles POST /symbols/:id/import-profile
// @Summary Import company profile data for one symbol
// @Description Fills only empty descriptive fields; operator edits are preserved.
// @Tags symbols
// @Produce json
// @Param id path int true "Symbol ID"
// @Success 200 {object} models.ProfileImportReport
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /symbols/{id}/import-profile [post]
func (h *SymbolHandler) ImportProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	report, err := h.profileSvc.ImportProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "symbol not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// FetchHistorical handles POST /symbols/:id/fetch-historical
// @Summary Backfill historical end-of-day bars for one symbol
// @Tags symbols
// @Produce json
// @Param id path int true "Symbol ID"
// @Success 200 {object} models.HistoricalFetchResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /symbols/{id}/fetch-historical [post]
func (h *SymbolHandler) FetchHistorical(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.quoteSvc.BackfillHistory(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "symbol not found",
			})
		case fmp.IsTransient(err):
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "provider_unavailable",
				Message: err.Error(),
			})
		default:
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "provider_error",
				Message: err.Error(),
			})
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetQuote handles GET /quotes/:symbol
// @Summary Get the latest quote snapshot for a tracked ticker
// @Tags quotes
// @Produce json
// @Param symbol path string true "Ticker"
// @Success 200 {object} models.Quote
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /quotes/{symbol} [get]
func (h *SymbolHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteSvc.GetQuote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "symbol not tracked",
			})
		case errors.Is(err, services.ErrQuoteUnavailable):
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "quote_unavailable",
				Message: err.Error(),
			})
		case fmp.IsTransient(err):
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:   "provider_unavailable",
				Message: err.Error(),
			})
		default:
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "provider_error",
				Message: err.Error(),
			})
		}
		return
	}
	c.JSON(http.StatusOK, quote)
}
