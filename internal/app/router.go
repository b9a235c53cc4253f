package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/yungbote/flashdeck-backend/internal/http"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers) *gin.Engine {
	log.Info("Wiring router...")
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:            log,
		DeckHandler:    handlerset.Deck,
		ExampleHandler: handlerset.Example,
		HealthHandler:  handlerset.Health,
	})
}
