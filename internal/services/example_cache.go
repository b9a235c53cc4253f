package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"

	"github.com/yungbote/flashdeck-backend/internal/gen/content"
	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/ctxutil"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/repos"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

// ProduceFunc generates a fresh example artifact. It only runs on a cache
// miss, at most once per (card, fingerprint) at a time.
type ProduceFunc func(ctx context.Context) (*content.ExampleResponse, error)

// ExampleCacheService coordinates cache-first example generation: a hit is
// returned as-is, a miss triggers exactly one production shared by every
// concurrent request for the same key, and only validated artifacts are ever
// persisted.
type ExampleCacheService interface {
	GetOrCreate(ctx context.Context, cardID uuid.UUID, fingerprint string, produce ProduceFunc) (*content.ExampleResponse, bool, error)
}

type exampleCacheService struct {
	log            *logger.Logger
	repo           repos.ExampleCacheRepo
	group          singleflight.Group
	produceTimeout time.Duration
}

func NewExampleCacheService(log *logger.Logger, repo repos.ExampleCacheRepo, produceTimeout time.Duration) ExampleCacheService {
	if produceTimeout <= 0 {
		produceTimeout = 90 * time.Second
	}
	return &exampleCacheService{
		log:            log.With("service", "ExampleCacheService"),
		repo:           repo,
		produceTimeout: produceTimeout,
	}
}

func (s *exampleCacheService) GetOrCreate(ctx context.Context, cardID uuid.UUID, fingerprint string, produce ProduceFunc) (*content.ExampleResponse, bool, error) {
	cached, err := s.lookup(ctx, cardID, fingerprint)
	if err != nil {
		return nil, false, err
	}
	if cached != nil {
		return cached, true, nil
	}

	key := cardID.String() + ":" + fingerprint
	ch := s.group.DoChan(key, func() (any, error) {
		// Production runs detached with its own deadline so one caller's
		// timeout cannot kill an artifact other waiters are sharing.
		pctx, cancel := context.WithTimeout(ctxutil.Detach(ctx), s.produceTimeout)
		defer cancel()
		return s.produceAndPersist(pctx, cardID, fingerprint, produce)
	})

	select {
	case <-ctx.Done():
		// The producer keeps running; the artifact lands in the cache for the
		// retry this caller will make.
		return nil, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*content.ExampleResponse), false, nil
	}
}

func (s *exampleCacheService) lookup(ctx context.Context, cardID uuid.UUID, fingerprint string) (*content.ExampleResponse, error) {
	entry, err := s.repo.GetByKey(ctx, cardID, fingerprint)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("example cache lookup: %w", err))
	}
	if entry == nil {
		return nil, nil
	}
	return decodeEntry(entry)
}

func (s *exampleCacheService) produceAndPersist(ctx context.Context, cardID uuid.UUID, fingerprint string, produce ProduceFunc) (*content.ExampleResponse, error) {
	// Another instance may have filled the key while this flight queued.
	if entry, err := s.repo.GetByKey(ctx, cardID, fingerprint); err == nil && entry != nil {
		return decodeEntry(entry)
	}

	resp, err := produce(ctx)
	if err != nil {
		// Failed productions write nothing; the next request starts clean.
		return nil, err
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("encode example artifact: %w", err))
	}
	entry := &types.CardExample{
		CardID:      cardID,
		Fingerprint: fingerprint,
		Payload:     datatypes.JSON(payload),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		// A unique-key collision means a concurrent instance won the write;
		// its artifact is the canonical one.
		if existing, lookupErr := s.repo.GetByKey(ctx, cardID, fingerprint); lookupErr == nil && existing != nil {
			s.log.Info("example cache write lost race, using existing artifact",
				"card_id", cardID.String(),
			)
			return decodeEntry(existing)
		}
		return nil, apierr.Internal(fmt.Errorf("persist example artifact: %w", err))
	}
	return resp, nil
}

func decodeEntry(entry *types.CardExample) (*content.ExampleResponse, error) {
	var resp content.ExampleResponse
	if err := json.Unmarshal(entry.Payload, &resp); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decode cached example: %w", err))
	}
	return &resp, nil
}
