package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/leadops-backend/internal/http/handlers"
	httpMW "github.com/yungbote/leadops-backend/internal/http/middleware"
	"github.com/yungbote/leadops-backend/internal/observability"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	ServiceName    string
	TracingEnabled bool
	AllowedOrigins []string

	LeadHandler   *httpH.LeadHandler
	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "leadops"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	} else {
		r.GET("/metrics", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	}

	api := r.Group("/api")
	{
		// Leads
		if cfg.LeadHandler != nil {
			api.DELETE("/leads/:id", cfg.LeadHandler.DeleteLead)
			api.GET("/leads/:id/deletion-preview", cfg.LeadHandler.PreviewDeletion)
			api.GET("/leads/:id/deletion-logs", cfg.LeadHandler.ListDeletionLogs)
		}
	}

	return r
}
