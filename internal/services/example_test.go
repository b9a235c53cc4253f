package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/flashdeck-backend/internal/gen/content"
	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

func validExampleObj(text string) map[string]any {
	return map[string]any{
		"example":  text,
		"steps":    []any{"set up the instance", "apply the rule"},
		"pitfalls": []any{"forgetting the base case"},
	}
}

func testCard(possible bool) *types.Card {
	id := uuid.New()
	return &types.Card{
		ID:              id,
		DeckID:          uuid.New(),
		Title:           "Binary search invariant",
		ExamplePossible: possible,
		Payload: datatypes.JSON([]byte(`{
			"card_id": "` + id.String() + `",
			"title": "Binary search invariant",
			"bullets": ["one", "two", "three", "four", "five"],
			"example_possible": true,
			"example_hint": "search a small sorted array"
		}`)),
	}
}

func newExampleService(t *testing.T, ai *fakeAI, card *types.Card) (ExampleService, *fakeExampleCacheRepo) {
	t.Helper()
	log := testLogger(t)
	engine := NewGenerationEngine(log, ai, testBreaker(t), &fakeCallLogRepo{})
	cacheRepo := newFakeExampleCacheRepo()
	cache := NewExampleCacheService(log, cacheRepo, time.Minute)
	cards := &fakeCardRepo{cards: map[uuid.UUID]*types.Card{}}
	if card != nil {
		cards.cards[card.ID] = card
	}
	return NewExampleService(log, engine, cache, cards, allowAll{}), cacheRepo
}

func TestGenerateExampleMissThenHit(t *testing.T) {
	card := testCard(true)
	ai := &fakeAI{responses: []fakeAIResponse{
		{obj: validExampleObj("searching [1,3,5] for 5"), raw: "{}"},
	}}
	svc, cacheRepo := newExampleService(t, ai, card)

	req := content.ExampleRequest{Style: "analogy", Length: "short"}
	first, fromCache, err := svc.Generate(context.Background(), card.ID, req, "caller-a")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if fromCache {
		t.Fatal("first request reported as cache hit")
	}
	if first.CardID != card.ID {
		t.Fatalf("artifact card_id %s, want %s", first.CardID, card.ID)
	}
	if first.Example == "" || len(first.Steps) != 2 {
		t.Fatalf("unexpected artifact: %+v", first)
	}

	second, fromCache, err := svc.Generate(context.Background(), card.ID, req, "caller-b")
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if !fromCache {
		t.Fatal("identical request should hit the cache")
	}
	if second.Example != first.Example {
		t.Fatal("cache returned a different artifact")
	}
	if ai.callCount() != 1 {
		t.Fatalf("made %d upstream calls, want 1", ai.callCount())
	}
	if cacheRepo.createCount() != 1 {
		t.Fatalf("persisted %d artifacts, want 1", cacheRepo.createCount())
	}
}

func TestGenerateExampleEquivalentRequestsShareArtifact(t *testing.T) {
	card := testCard(true)
	ai := &fakeAI{responses: []fakeAIResponse{
		{obj: validExampleObj("worked once"), raw: "{}"},
	}}
	svc, _ := newExampleService(t, ai, card)

	a := content.ExampleRequest{Style: "default", Length: "medium", Constraints: []string{"no math", "use food"}}
	b := content.ExampleRequest{Style: "default", Length: "medium", Constraints: []string{"use food", "no math", ""}}

	if _, _, err := svc.Generate(context.Background(), card.ID, a, "caller-a"); err != nil {
		t.Fatalf("first: %v", err)
	}
	_, fromCache, err := svc.Generate(context.Background(), card.ID, b, "caller-a")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !fromCache {
		t.Fatal("semantically equivalent request missed the cache")
	}
}

func TestGenerateExampleDistinctStylesDistinctArtifacts(t *testing.T) {
	card := testCard(true)
	ai := &fakeAI{responses: []fakeAIResponse{
		{obj: validExampleObj("plain illustration"), raw: "{}"},
		{obj: validExampleObj("kitchen analogy"), raw: "{}"},
	}}
	svc, cacheRepo := newExampleService(t, ai, card)

	plain, _, err := svc.Generate(context.Background(), card.ID, content.ExampleRequest{Style: "default"}, "caller-a")
	if err != nil {
		t.Fatalf("default style: %v", err)
	}
	analogy, fromCache, err := svc.Generate(context.Background(), card.ID, content.ExampleRequest{Style: "analogy"}, "caller-a")
	if err != nil {
		t.Fatalf("analogy style: %v", err)
	}
	if fromCache {
		t.Fatal("different style must not reuse the cached artifact")
	}
	if plain.Example == analogy.Example {
		t.Fatal("styles produced the same artifact")
	}
	if cacheRepo.createCount() != 2 {
		t.Fatalf("persisted %d artifacts, want 2", cacheRepo.createCount())
	}
}

func TestGenerateExampleCardNotFound(t *testing.T) {
	svc, _ := newExampleService(t, &fakeAI{}, nil)

	_, _, err := svc.Generate(context.Background(), uuid.New(), content.ExampleRequest{}, "caller-a")
	if !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("got %v, want NOT_FOUND", err)
	}
}

func TestGenerateExamplePreconditionFailed(t *testing.T) {
	card := testCard(false)
	ai := &fakeAI{}
	svc, _ := newExampleService(t, ai, card)

	_, _, err := svc.Generate(context.Background(), card.ID, content.ExampleRequest{}, "caller-a")
	if !apierr.Is(err, apierr.CodePreconditionFailed) {
		t.Fatalf("got %v, want PRECONDITION_FAILED", err)
	}
	if ai.callCount() != 0 {
		t.Fatal("precondition failure must not reach the model")
	}
}

func TestGenerateExampleInvalidInput(t *testing.T) {
	card := testCard(true)
	svc, _ := newExampleService(t, &fakeAI{}, card)

	_, _, err := svc.Generate(context.Background(), card.ID, content.ExampleRequest{Style: "haiku"}, "caller-a")
	if !apierr.Is(err, apierr.CodeInvalidInput) {
		t.Fatalf("got %v, want INVALID_INPUT", err)
	}
}
