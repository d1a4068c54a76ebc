package handler

import (
	"errors"
	"net/http"

	"daily-btc/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const noDataMessage = "no data yet: waiting for the first ingestion cycle"

// Index godoc
// @Summary      Redirect to the dashboard
// @Tags         dashboard
// @Success      302
// @Router       / [get]
func (h *Handler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/home/")
}

// Home godoc
// @Summary      HTML dashboard
// @Description  Renders headline stats, the five charts and the three news picks
// @Tags         dashboard
// @Produce      html
// @Success      200
// @Router       /home/ [get]
func (h *Handler) Home(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.home")
	defer span.End()

	report := h.reports.Current()
	span.SetAttributes(attribute.Bool("report.ready", report != nil))
	c.HTML(http.StatusOK, "home.html.tmpl", homeView(report))
}

// GetDashboard godoc
// @Summary      Current dashboard report
// @Description  Returns the last successfully aggregated report
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.DashboardReport
// @Failure      503  {object}  map[string]string
// @Router       /api/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	report := h.reports.Current()
	if report == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": noDataMessage})
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetNewsPicks godoc
// @Summary      Top news per recency window
// @Description  Returns the highest-sentiment article for today, this week and this month
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  domain.NewsPicks
// @Failure      503  {object}  map[string]string
// @Router       /api/dashboard/news [get]
func (h *Handler) GetNewsPicks(c *gin.Context) {
	report := h.reports.Current()
	if report == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": noDataMessage})
		return
	}
	c.JSON(http.StatusOK, report.News)
}

// GetLatestStatus godoc
// @Summary      Latest persisted status snapshot
// @Tags         statuses
// @Produce      json
// @Success      200  {object}  domain.StatusSnapshot
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/statuses/latest [get]
func (h *Handler) GetLatestStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-latest-status")
	defer span.End()

	status, err := h.statuses.LatestStatus(ctx)
	if errors.Is(err, domain.ErrNoSnapshots) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// TriggerRefresh godoc
// @Summary      Run one ingestion cycle now
// @Description  Fetches CoinGecko and NewsAPI, persists new rows and publishes a new dataset version
// @Tags         ingestion
// @Produce      json
// @Param        X-API-Key  header  string  false  "API key when API_KEY is configured"
// @Success      200  {object}  domain.IngestionResult
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/refresh [post]
func (h *Handler) TriggerRefresh(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-refresh")
	defer span.End()

	result, err := h.ingester.Refresh(ctx)
	if err != nil {
		span.RecordError(err)
		h.logger.Warn("manual refresh failed", zap.String("run_id", result.RunID), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUpstreamUnavailable) || errors.Is(err, domain.ErrMalformedPayload) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}
