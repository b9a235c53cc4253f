package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

type ExampleCacheRepo interface {
	GetByKey(ctx context.Context, cardID uuid.UUID, fingerprint string) (*types.CardExample, error)
	// Create persists a new cache entry. The (card_id, fingerprint) unique
	// index makes double-writes fail rather than overwrite.
	Create(ctx context.Context, entry *types.CardExample) error
}

type exampleCacheRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExampleCacheRepo(db *gorm.DB, baseLog *logger.Logger) ExampleCacheRepo {
	return &exampleCacheRepo{db: db, log: baseLog.With("repo", "ExampleCacheRepo")}
}

func (r *exampleCacheRepo) GetByKey(ctx context.Context, cardID uuid.UUID, fingerprint string) (*types.CardExample, error) {
	var entry types.CardExample
	err := r.db.WithContext(ctx).
		Where("card_id = ? AND fingerprint = ?", cardID, fingerprint).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *exampleCacheRepo) Create(ctx context.Context, entry *types.CardExample) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
