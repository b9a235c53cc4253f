package app

import (
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	redisclient "github.com/yungbote/flashdeck-backend/internal/clients/redis"
	"github.com/yungbote/flashdeck-backend/internal/gen/retrieval"
	"github.com/yungbote/flashdeck-backend/internal/platform/breaker"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/platform/openai"
	"github.com/yungbote/flashdeck-backend/internal/services"
)

type Services struct {
	AI        openai.Client
	Breaker   *breaker.Breaker
	Engine    *services.GenerationEngine
	Gate      *retrieval.Gate
	Admission services.AdmissionController
	Cache     services.ExampleCacheService
	Deck      services.DeckService
	Example   services.ExampleService

	Redis *goredis.Client
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	ai, err := openai.NewClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init openai client: %w", err)
	}

	rdb, err := redisclient.NewClient(log)
	if err != nil {
		log.Warn("redis unavailable, using in-memory admission", "error", err)
		rdb = nil
	}
	var admission services.AdmissionController
	if rdb != nil {
		admission = services.NewRedisAdmission(log, rdb, cfg.Admission)
	} else {
		admission = services.NewMemoryAdmission(log, cfg.Admission)
	}

	brk := breaker.New(log, "openai", cfg.Breaker)
	engine := services.NewGenerationEngine(log, ai, brk, reposet.AICallLog)

	searcher := retrieval.NewCorpusSearcher(log, reposet.CorpusChunk, ai)
	gate := retrieval.NewGate(log, searcher, cfg.Retrieval)

	cache := services.NewExampleCacheService(log, reposet.ExampleCache, cfg.ProduceTimeout)

	return Services{
		AI:        ai,
		Breaker:   brk,
		Engine:    engine,
		Gate:      gate,
		Admission: admission,
		Cache:     cache,
		Deck:      services.NewDeckService(log, engine, gate, admission, reposet.Deck),
		Example:   services.NewExampleService(log, engine, cache, reposet.Card, admission),
		Redis:     rdb,
	}, nil
}
