package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

type CorpusChunkRepo interface {
	ListByCorpus(ctx context.Context, corpusID uuid.UUID, limit int) ([]*types.CorpusChunk, error)
}

type corpusChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCorpusChunkRepo(db *gorm.DB, baseLog *logger.Logger) CorpusChunkRepo {
	return &corpusChunkRepo{db: db, log: baseLog.With("repo", "CorpusChunkRepo")}
}

func (r *corpusChunkRepo) ListByCorpus(ctx context.Context, corpusID uuid.UUID, limit int) ([]*types.CorpusChunk, error) {
	out := make([]*types.CorpusChunk, 0, 64)
	q := r.db.WithContext(ctx).
		Where("corpus_id = ?", corpusID).
		Order("source_id, page, chunk_index")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
