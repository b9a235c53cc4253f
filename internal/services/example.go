package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/gen/content"
	"github.com/yungbote/flashdeck-backend/internal/gen/fingerprint"
	"github.com/yungbote/flashdeck-backend/internal/gen/schemas"
	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/repos"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

type ExampleService interface {
	// Generate returns the worked example for a card, producing it on a cache
	// miss. The bool reports whether the artifact came from the cache.
	Generate(ctx context.Context, cardID uuid.UUID, raw content.ExampleRequest, callerID string) (*content.ExampleResponse, bool, error)
}

type exampleService struct {
	log       *logger.Logger
	engine    *GenerationEngine
	cache     ExampleCacheService
	cards     repos.CardRepo
	admission AdmissionController
}

func NewExampleService(log *logger.Logger, engine *GenerationEngine, cache ExampleCacheService, cards repos.CardRepo, admission AdmissionController) ExampleService {
	return &exampleService{
		log:       log.With("service", "ExampleService"),
		engine:    engine,
		cache:     cache,
		cards:     cards,
		admission: admission,
	}
}

func (s *exampleService) Generate(ctx context.Context, cardID uuid.UUID, raw content.ExampleRequest, callerID string) (*content.ExampleResponse, bool, error) {
	req, issues := content.NewExampleRequest(raw)
	if len(issues) > 0 {
		return nil, false, apierr.InvalidInput(errors.New("invalid example request")).
			WithDetails(map[string]any{"issues": issues})
	}
	if err := s.admission.Admit(ctx, callerID, PurposeExampleGenerate); err != nil {
		return nil, false, err
	}

	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, false, apierr.Internal(fmt.Errorf("load card: %w", err))
	}
	if card == nil {
		return nil, false, apierr.NotFound(fmt.Errorf("card %s not found", cardID))
	}
	if !card.ExamplePossible {
		return nil, false, apierr.PreconditionFailed(errors.New("card does not support a worked example"))
	}

	fp := fingerprint.ForExample(req)
	resp, fromCache, err := s.cache.GetOrCreate(ctx, cardID, fp, func(pctx context.Context) (*content.ExampleResponse, error) {
		return s.produce(pctx, card, req)
	})
	if err != nil {
		return nil, false, err
	}

	s.log.Info("example served",
		"card_id", cardID.String(),
		"from_cache", fromCache,
	)
	return resp, fromCache, nil
}

func (s *exampleService) produce(ctx context.Context, card *types.Card, req content.ExampleRequest) (*content.ExampleResponse, error) {
	var concept content.Concept
	if err := json.Unmarshal(card.Payload, &concept); err != nil {
		return nil, apierr.Internal(fmt.Errorf("decode card payload: %w", err))
	}

	system, user := schemas.ExamplePrompts(card.Title, concept.Bullets, req.Style, req.Length, req.Constraints)

	var out *content.LLMExampleOutput
	usage, err := s.engine.Invoke(ctx, InvokeSpec{
		Purpose:       PurposeExampleGenerate,
		System:        system,
		User:          user,
		SchemaName:    schemas.ExampleSchemaName,
		Schema:        schemas.ExampleSchema(),
		SchemaJSON:    schemas.ExampleSchemaJSON(),
		PromptVersion: schemas.PromptVersions["example_system"],
		Sampling:      schemas.ExampleSampling(),
		Validate: func(obj map[string]any) []string {
			typed, issues := content.ValidateExampleOutput(obj)
			if len(issues) == 0 {
				out = typed
			}
			return issues
		},
		RepairPrompts: schemas.RepairPrompts,
	})
	if err != nil {
		return nil, err
	}

	return &content.ExampleResponse{
		SchemaVersion: content.SchemaVersion,
		CardID:        card.ID,
		Example:       out.Example,
		Steps:         out.Steps,
		Pitfalls:      out.Pitfalls,
		SourceRefs:    out.SourceRefs,
		GenerationMetadata: content.GenerationMetadata{
			Model:         s.engine.Model(),
			PromptVersion: schemas.PromptVersions["example_system"],
			Tokens:        usage,
			Timestamp:     time.Now().UTC(),
			RagUsed:       false,
		},
	}, nil
}
