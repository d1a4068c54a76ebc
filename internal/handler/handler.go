package handler

import (
	"context"
	"html/template"

	"daily-btc/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ReportSource interface {
	Current() *domain.DashboardReport
}

type StatusReader interface {
	LatestStatus(ctx context.Context) (*domain.StatusSnapshot, error)
}

type Ingester interface {
	Refresh(ctx context.Context) (domain.IngestionResult, error)
}

type Handler struct {
	tracer   trace.Tracer
	reports  ReportSource
	statuses StatusReader
	ingester Ingester
	apiKey   string
	logger   *zap.Logger
}

func New(tracer trace.Tracer, reports ReportSource, statuses StatusReader, ingester Ingester, apiKey string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		tracer:   tracer,
		reports:  reports,
		statuses: statuses,
		ingester: ingester,
		apiKey:   apiKey,
		logger:   logger,
	}
}

// RegisterRoutes installs the HTML template and every route on r.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")))

	r.GET("/", h.Index)
	r.GET("/home/", h.Home)
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/dashboard/news", h.GetNewsPicks)
	api.GET("/statuses/latest", h.GetLatestStatus)
	api.POST("/refresh", APIKeyAuth(h.apiKey), h.TriggerRefresh)
}
