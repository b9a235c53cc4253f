package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/repos"
)

type Repos struct {
	Deck         repos.DeckRepo
	Card         repos.CardRepo
	ExampleCache repos.ExampleCacheRepo
	CorpusChunk  repos.CorpusChunkRepo
	AICallLog    repos.AICallLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Deck:         repos.NewDeckRepo(db, log),
		Card:         repos.NewCardRepo(db, log),
		ExampleCache: repos.NewExampleCacheRepo(db, log),
		CorpusChunk:  repos.NewCorpusChunkRepo(db, log),
		AICallLog:    repos.NewAICallLogRepo(db, log),
	}
}
