package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service and the dataset version currently rendered
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	body := gin.H{"status": "healthy", "report_ready": false}
	if report := h.reports.Current(); report != nil {
		body["report_ready"] = true
		body["dataset_version"] = report.DatasetVersion
	}
	c.JSON(http.StatusOK, body)
}
