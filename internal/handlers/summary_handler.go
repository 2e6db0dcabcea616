package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "miplata/internal/errors"
	"miplata/internal/ledger"
	"miplata/internal/services"
)

// SummaryHandler serves the dashboard figures.
type SummaryHandler struct {
	summaryService services.SummaryServicer
	now            func() time.Time
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryService services.SummaryServicer) *SummaryHandler {
	return &SummaryHandler{summaryService: summaryService, now: time.Now}
}

// SummaryQuery holds the filter selection of a summary request.
type SummaryQuery struct {
	Range      string   `form:"range" binding:"omitempty,time_range"`
	Month      string   `form:"month" binding:"omitempty,year_month"`
	Categories []string `form:"category"`
}

func (q SummaryQuery) filter() (ledger.Filter, error) {
	r, err := ledger.ParseTimeRange(q.Range)
	if err != nil {
		return ledger.Filter{}, err
	}
	f := ledger.Filter{Range: r, Month: q.Month, Categories: q.Categories}
	if err := f.Validate(); err != nil {
		return ledger.Filter{}, err
	}
	return f, nil
}

// GetSummary returns totals, monthly series and category ranking
// @Summary     Get dashboard summary
// @Description Filter the user's transactions by time range and categories and aggregate them. The total balance always covers every account.
// @Tags        summary
// @Produce     json
// @Security    BearerAuth
// @Param       range    query string   false "Time range: 3m (default), 6m, 12m or month"
// @Param       month    query string   false "Month for range=month (YYYY-MM)"
// @Param       category query []string false "Categories to include; repeat for several" collectionFormat(multi)
// @Success     200 {object} ledger.Dashboard "Dashboard"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /summary [get]
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter, err := q.filter()
	if err != nil {
		respondWithError(c, err)
		return
	}

	dashboard, err := h.summaryService.GetSummary(c.Request.Context(), userID, filter, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
