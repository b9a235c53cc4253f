package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/platform/breaker"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/platform/openai"
	"github.com/yungbote/flashdeck-backend/internal/types"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testBreaker(t *testing.T) *breaker.Breaker {
	t.Helper()
	return breaker.New(testLogger(t), "test", breaker.Config{
		FailureThreshold: 5,
		Window:           time.Minute,
		Cooldown:         30 * time.Second,
	})
}

// fakeAI scripts GenerateJSON responses in order. A response with a non-nil
// err simulates a transport failure.
type fakeAI struct {
	mu        sync.Mutex
	responses []fakeAIResponse
	calls     int
	systems   []string
	users     []string
}

type fakeAIResponse struct {
	obj map[string]any
	raw string
	err error
}

func (f *fakeAI) Model() string { return "test-model" }

func (f *fakeAI) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i := range inputs {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

func (f *fakeAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any, params openai.SamplingParams) (*openai.JSONResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.systems = append(f.systems, system)
	f.users = append(f.users, user)
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("fakeAI: no scripted response for call %d", f.calls)
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	if next.err != nil {
		return nil, next.err
	}
	return &openai.JSONResult{
		Object:  next.obj,
		RawText: next.raw,
		Usage:   openai.TokenUsage{Prompt: 100, Completion: 50, Total: 150},
	}, nil
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeCallLogRepo records ai call log rows in memory.
type fakeCallLogRepo struct {
	mu   sync.Mutex
	rows []*types.AICallLog
}

func (f *fakeCallLogRepo) Create(ctx context.Context, logs []*types.AICallLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, logs...)
	return nil
}

func (f *fakeCallLogRepo) purposes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r.Purpose)
	}
	return out
}

// fakeDeckRepo stores decks and cards in memory.
type fakeDeckRepo struct {
	mu    sync.Mutex
	decks map[uuid.UUID]*types.Deck
	cards map[uuid.UUID][]*types.Card
}

func newFakeDeckRepo() *fakeDeckRepo {
	return &fakeDeckRepo{
		decks: map[uuid.UUID]*types.Deck{},
		cards: map[uuid.UUID][]*types.Card{},
	}
}

func (f *fakeDeckRepo) CreateWithCards(ctx context.Context, deck *types.Deck, cards []*types.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decks[deck.ID] = deck
	f.cards[deck.ID] = cards
	return nil
}

func (f *fakeDeckRepo) GetByID(ctx context.Context, deckID uuid.UUID) (*types.Deck, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decks[deckID], nil
}

// fakeCardRepo serves a fixed card set.
type fakeCardRepo struct {
	cards map[uuid.UUID]*types.Card
}

func (f *fakeCardRepo) GetByID(ctx context.Context, cardID uuid.UUID) (*types.Card, error) {
	return f.cards[cardID], nil
}

// fakeExampleCacheRepo mimics the (card_id, fingerprint) unique index.
type fakeExampleCacheRepo struct {
	mu      sync.Mutex
	entries map[string]*types.CardExample
	creates int
}

func newFakeExampleCacheRepo() *fakeExampleCacheRepo {
	return &fakeExampleCacheRepo{entries: map[string]*types.CardExample{}}
}

func cacheKey(cardID uuid.UUID, fingerprint string) string {
	return cardID.String() + ":" + fingerprint
}

func (f *fakeExampleCacheRepo) GetByKey(ctx context.Context, cardID uuid.UUID, fingerprint string) (*types.CardExample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries[cacheKey(cardID, fingerprint)], nil
}

func (f *fakeExampleCacheRepo) Create(ctx context.Context, entry *types.CardExample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := cacheKey(entry.CardID, entry.Fingerprint)
	if _, exists := f.entries[key]; exists {
		return fmt.Errorf("unique constraint violation on %s", key)
	}
	f.creates++
	f.entries[key] = entry
	return nil
}

func (f *fakeExampleCacheRepo) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates
}

// allowAll is an admission controller that admits everything.
type allowAll struct{}

func (allowAll) Admit(ctx context.Context, callerID, operation string) error { return nil }
