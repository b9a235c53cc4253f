package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

type DeckRepo interface {
	// CreateWithCards persists a deck and its cards in one transaction.
	CreateWithCards(ctx context.Context, deck *types.Deck, cards []*types.Card) error
	GetByID(ctx context.Context, deckID uuid.UUID) (*types.Deck, error)
}

type deckRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDeckRepo(db *gorm.DB, baseLog *logger.Logger) DeckRepo {
	return &deckRepo{db: db, log: baseLog.With("repo", "DeckRepo")}
}

func (r *deckRepo) CreateWithCards(ctx context.Context, deck *types.Deck, cards []*types.Card) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(deck).Error; err != nil {
			return err
		}
		if len(cards) == 0 {
			return nil
		}
		return tx.Create(&cards).Error
	})
}

func (r *deckRepo) GetByID(ctx context.Context, deckID uuid.UUID) (*types.Deck, error) {
	var deck types.Deck
	err := r.db.WithContext(ctx).Where("id = ?", deckID).First(&deck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &deck, nil
}
