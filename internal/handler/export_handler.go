package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/novatorsmobile/studentvoice-api/internal/service"
	"github.com/novatorsmobile/studentvoice-api/pkg/response"
)

// ExportHandler serves rendered rating reports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// UniversityRatings godoc
// @Summary Download a university rating report
// @Tags Exports
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "University ID"
// @Param format query string false "Report format (csv|pdf|xlsx)" default(xlsx)
// @Success 200 {file} binary
// @Router /universities/{id}/export [get]
func (h *ExportHandler) UniversityRatings(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "xlsx"))
	file, err := h.service.UniversityRatings(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	if file.DownloadToken != "" {
		c.Header("X-Report-Token", file.DownloadToken)
	}
	c.Data(200, file.ContentType, file.Content)
}

// Download godoc
// @Summary Re-download an archived report by signed token
// @Tags Exports
// @Produce octet-stream
// @Param token query string true "Signed report token"
// @Success 200 {file} binary
// @Router /exports/download [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Download(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(200, file.ContentType, file.Content)
}
