package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpx "github.com/yungbote/leadops-backend/internal/http"
	httpH "github.com/yungbote/leadops-backend/internal/http/handlers"
	"github.com/yungbote/leadops-backend/internal/observability"
	"github.com/yungbote/leadops-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Lead   *httpH.LeadHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Lead:   httpH.NewLeadHandler(log, services.Lead),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers) *gin.Engine {
	return httpx.NewRouter(httpx.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.ServiceName,
		TracingEnabled: cfg.TracingEnabled,
		AllowedOrigins: cfg.AllowedOrigins,
		LeadHandler:    handlers.Lead,
		HealthHandler:  handlers.Health,
	})
}
