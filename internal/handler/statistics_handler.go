package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/novatorsmobile/studentvoice-api/internal/service"
	"github.com/novatorsmobile/studentvoice-api/pkg/response"
)

// StatisticsHandler exposes time-bucketed rating statistics.
type StatisticsHandler struct {
	service *service.StatisticsService
}

// NewStatisticsHandler constructs a statistics handler.
func NewStatisticsHandler(svc *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{service: svc}
}

// Monthly godoc
// @Summary Monthly rating statistics for the trailing twelve months
// @Tags Statistics
// @Produce json
// @Param id path string true "University ID"
// @Success 200 {object} response.Envelope
// @Router /universities/{id}/statistics/monthly [get]
func (h *StatisticsHandler) Monthly(c *gin.Context) {
	stats, err := h.service.Monthly(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Weekly godoc
// @Summary Weekly rating statistics for one month
// @Tags Statistics
// @Produce json
// @Param id path string true "University ID"
// @Param month query string true "English month name, e.g. February"
// @Param year query int true "Year"
// @Success 200 {object} response.Envelope
// @Router /universities/{id}/statistics/weekly [get]
func (h *StatisticsHandler) Weekly(c *gin.Context) {
	stats, err := h.service.Weekly(c.Request.Context(), c.Param("id"), c.Query("month"), c.Query("year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
