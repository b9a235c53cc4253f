package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/flashdeck-backend/internal/http/handlers"
	httpMW "github.com/yungbote/flashdeck-backend/internal/http/middleware"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	DeckHandler    *httpH.DeckHandler
	ExampleHandler *httpH.ExampleHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("flashdeck-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api/v1")
	{
		if cfg.DeckHandler != nil {
			api.POST("/deck/generate", cfg.DeckHandler.Generate)
			api.GET("/deck/:deck_id", cfg.DeckHandler.Get)
		}
		if cfg.ExampleHandler != nil {
			api.POST("/cards/:card_id/example", cfg.ExampleHandler.Generate)
		}
	}

	return r
}
