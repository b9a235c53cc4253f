package app

import (
	httpH "github.com/yungbote/flashdeck-backend/internal/http/handlers"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
)

type Handlers struct {
	Deck    *httpH.DeckHandler
	Example *httpH.ExampleHandler
	Health  *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Deck:    httpH.NewDeckHandler(log, serviceset.Deck),
		Example: httpH.NewExampleHandler(log, serviceset.Example),
		Health:  httpH.NewHealthHandler(serviceset.Breaker),
	}
}
