package handlers

import (
	"net/http"

	"github.com/epeers/tradingvision/internal/models"
	"github.com/epeers/tradingvision/internal/services"
	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the scheduled jobs as on-demand endpoints
type AdminHandler struct {
	importSvc  *services.ImportService
	profileSvc *services.ProfileService
	quoteSvc   *services.QuoteService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(importSvc *services.ImportService, profileSvc *services.ProfileService, quoteSvc *services.QuoteService) *AdminHandler {
	return &AdminHandler{
		importSvc:  importSvc,
		profileSvc: profileSvc,
		quoteSvc:   quoteSvc,
	}
}

// ImportAllHoldings handles POST /admin/import-all-holdings
// @Summary Import holdings for every tracked ETF
// @Tags admin
// @Produce json
// @Success 200 {object} models.AllImportsReport
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/import-all-holdings [post]
func (h *AdminHandler) ImportAllHoldings(c *gin.Context) {
	report, err := h.importSvc.ImportAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, report)
}

// BackfillProfiles handles POST /admin/backfill-profiles
// @Summary Backfill profile data for every symbol missing it
// @Tags admin
// @Produce json
// @Success 200 {object} models.ProfilesResult
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/backfill-profiles [post]
func (h *AdminHandler) BackfillProfiles(c *gin.Context) {
	result, err := h.profileSvc.BackfillAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CollectQuotes handles POST /admin/collect-quotes
// @Summary Run the end-of-day quote collection pass now
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} models.ErrorResponse
// @Router /admin/collect-quotes [post]
func (h *AdminHandler) CollectQuotes(c *gin.Context) {
	stored, err := h.quoteSvc.CollectDailyQuotes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotesStored": stored})
}
