package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/flashdeck-backend/internal/gen/content"
	"github.com/yungbote/flashdeck-backend/internal/gen/retrieval"
	"github.com/yungbote/flashdeck-backend/internal/gen/schemas"
	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/repos"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

type DeckService interface {
	Generate(ctx context.Context, raw content.DeckRequest, callerID string) (*content.DeckResponse, error)
	Get(ctx context.Context, deckID uuid.UUID) (*content.DeckResponse, error)
}

type deckService struct {
	log       *logger.Logger
	engine    *GenerationEngine
	gate      *retrieval.Gate
	admission AdmissionController
	decks     repos.DeckRepo
	now       func() time.Time
}

func NewDeckService(log *logger.Logger, engine *GenerationEngine, gate *retrieval.Gate, admission AdmissionController, decks repos.DeckRepo) DeckService {
	return &deckService{
		log:       log.With("service", "DeckService"),
		engine:    engine,
		gate:      gate,
		admission: admission,
		decks:     decks,
		now:       time.Now,
	}
}

func (s *deckService) Generate(ctx context.Context, raw content.DeckRequest, callerID string) (*content.DeckResponse, error) {
	req, issues := content.NewDeckRequest(raw)
	if len(issues) > 0 {
		return nil, apierr.InvalidInput(errors.New("invalid deck request")).
			WithDetails(map[string]any{"issues": issues})
	}
	if err := s.admission.Admit(ctx, callerID, PurposeDeckGenerate); err != nil {
		return nil, err
	}

	start := s.now()

	rc := s.gate.Retrieve(ctx, req.CorpusID, req.Topic)
	grounded := rc != nil
	contextBlock := ""
	if grounded {
		contextBlock = schemas.ContextBlock(rc.Excerpts())
	}

	system, user := schemas.DeckPrompts(req.Topic, req.DifficultyLevel, req.MaxConcepts, req.Scope, contextBlock)

	var out *content.LLMDeckOutput
	usage, err := s.engine.Invoke(ctx, InvokeSpec{
		Purpose:       PurposeDeckGenerate,
		System:        system,
		User:          user,
		SchemaName:    schemas.DeckSchemaName,
		Schema:        schemas.DeckSchema(),
		SchemaJSON:    schemas.DeckSchemaJSON(),
		PromptVersion: schemas.PromptVersions["deck_system"],
		Sampling:      schemas.DeckSampling(),
		Validate: func(obj map[string]any) []string {
			typed, issues := content.ValidateDeckOutput(obj)
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

	resp := &content.DeckResponse{
		SchemaVersion:   content.SchemaVersion,
		DeckID:          uuid.New(),
		Topic:           req.Topic,
		DifficultyLevel: req.DifficultyLevel,
		Scope:           req.Scope,
		Concepts:        make([]content.Concept, 0, len(out.Concepts)),
		GenerationMetadata: content.GenerationMetadata{
			Model:         s.engine.Model(),
			PromptVersion: schemas.PromptVersions["deck_system"],
			Tokens:        usage,
			Timestamp:     s.now().UTC(),
			RagUsed:       grounded,
		},
	}
	for _, c := range out.Concepts {
		resp.Concepts = append(resp.Concepts, content.Concept{
			CardID:          uuid.New(),
			Title:           c.Title,
			Bullets:         c.Bullets,
			ExamplePossible: c.ExamplePossible,
			ExampleHint:     c.ExampleHint,
		})
	}

	elapsedMs := int(s.now().Sub(start).Milliseconds())
	if err := s.persist(ctx, req, resp, grounded, usage.Total, elapsedMs); err != nil {
		return nil, err
	}

	s.log.Info("deck generated",
		"deck_id", resp.DeckID.String(),
		"concepts", len(resp.Concepts),
		"grounded", grounded,
		"tokens", usage.Total,
		"duration_ms", elapsedMs,
	)
	return resp, nil
}

func (s *deckService) persist(ctx context.Context, req content.DeckRequest, resp *content.DeckResponse, grounded bool, tokens, elapsedMs int) error {
	deckPayload, err := json.Marshal(resp)
	if err != nil {
		return apierr.Internal(fmt.Errorf("encode deck artifact: %w", err))
	}
	deck := &types.Deck{
		ID:               resp.DeckID,
		Topic:            req.Topic,
		DifficultyLevel:  req.DifficultyLevel,
		Scope:            req.Scope,
		Grounded:         grounded,
		Payload:          datatypes.JSON(deckPayload),
		TokensUsed:       tokens,
		GenerationTimeMs: elapsedMs,
	}

	cards := make([]*types.Card, 0, len(resp.Concepts))
	for _, c := range resp.Concepts {
		cardPayload, mErr := json.Marshal(c)
		if mErr != nil {
			return apierr.Internal(fmt.Errorf("encode card payload: %w", mErr))
		}
		cards = append(cards, &types.Card{
			ID:              c.CardID,
			DeckID:          resp.DeckID,
			Title:           c.Title,
			ExamplePossible: c.ExamplePossible,
			Payload:         datatypes.JSON(cardPayload),
		})
	}

	if err := s.decks.CreateWithCards(ctx, deck, cards); err != nil {
		return apierr.Internal(fmt.Errorf("persist deck: %w", err))
	}
	return nil
}

func (s *deckService) Get(ctx context.Context, deckID uuid.UUID) (*content.DeckResponse, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load deck: %w", err))
	}
	if deck == nil {
		return nil, apierr.NotFound(fmt.Errorf("deck %s not found", deckID))
	}
	var resp content.DeckResponse
	if uErr := json.Unmarshal(deck.Payload, &resp); uErr != nil {
		return nil, apierr.Internal(fmt.Errorf("decode deck artifact: %w", uErr))
	}
	return &resp, nil
}
