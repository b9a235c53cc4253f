package retrieval

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
)

type fakeSearcher struct {
	chunks []Chunk
	err    error
	block  bool
	calls  int
}

func (f *fakeSearcher) Search(ctx context.Context, corpusID uuid.UUID, topic string, k int) ([]Chunk, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.chunks, nil
}

func newGate(t *testing.T, searcher CorpusSearcher, cfg Config) *Gate {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return NewGate(log, searcher, cfg)
}

func TestRetrieveNoCorpusIsUngrounded(t *testing.T) {
	f := &fakeSearcher{}
	g := newGate(t, f, DefaultConfig())
	if rc := g.Retrieve(context.Background(), nil, "topic"); rc != nil {
		t.Fatal("nil corpus handle should yield ungrounded")
	}
	if f.calls != 0 {
		t.Fatalf("searcher called %d times with no corpus", f.calls)
	}
}

func TestRetrieveTimeoutDowngradesToUngrounded(t *testing.T) {
	f := &fakeSearcher{block: true}
	cfg := DefaultConfig()
	cfg.Timeout = 20 * time.Millisecond
	g := newGate(t, f, cfg)

	corpus := uuid.New()
	start := time.Now()
	rc := g.Retrieve(context.Background(), &corpus, "topic")
	if rc != nil {
		t.Fatal("timed-out retrieval must downgrade to ungrounded")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("retrieve did not respect its deadline (%v)", elapsed)
	}
}

func TestRetrieveBelowThresholdIsUngrounded(t *testing.T) {
	f := &fakeSearcher{chunks: []Chunk{
		{SourceID: "a", Text: "weak match", Score: 0.1},
		{SourceID: "b", Text: "weak match", Score: 0.2},
	}}
	cfg := DefaultConfig()
	cfg.MinAvgScore = 0.5
	g := newGate(t, f, cfg)

	corpus := uuid.New()
	if rc := g.Retrieve(context.Background(), &corpus, "topic"); rc != nil {
		t.Fatal("sub-threshold similarity must yield ungrounded")
	}
}

func TestRetrieveDeterministicOrdering(t *testing.T) {
	chunks := []Chunk{
		{SourceID: "b", Page: 2, Index: 1, Text: "beta", Score: 0.8},
		{SourceID: "a", Page: 1, Index: 0, Text: "alpha", Score: 0.8},
		{SourceID: "a", Page: 3, Index: 2, Text: "gamma", Score: 0.9},
	}
	shuffled := []Chunk{chunks[2], chunks[0], chunks[1]}

	corpus := uuid.New()
	g1 := newGate(t, &fakeSearcher{chunks: chunks}, DefaultConfig())
	g2 := newGate(t, &fakeSearcher{chunks: shuffled}, DefaultConfig())

	rc1 := g1.Retrieve(context.Background(), &corpus, "topic")
	rc2 := g2.Retrieve(context.Background(), &corpus, "topic")
	if rc1 == nil || rc2 == nil {
		t.Fatal("expected grounded context")
	}
	if strings.Join(rc1.Excerpts(), "|") != strings.Join(rc2.Excerpts(), "|") {
		t.Fatalf("ordering not deterministic:\n%v\n%v", rc1.Excerpts(), rc2.Excerpts())
	}
	// Highest similarity first; score ties break by source id.
	if rc1.Chunks[0].Text != "gamma" || rc1.Chunks[1].Text != "alpha" || rc1.Chunks[2].Text != "beta" {
		t.Fatalf("unexpected order: %+v", rc1.Chunks)
	}
	if rc1.SourceCount != 2 {
		t.Fatalf("source count %d, want 2", rc1.SourceCount)
	}
}

func TestRetrieveTruncatesLowestSimilarityFirst(t *testing.T) {
	f := &fakeSearcher{chunks: []Chunk{
		{SourceID: "a", Text: strings.Repeat("x", 40), Score: 0.9},
		{SourceID: "b", Text: strings.Repeat("y", 40), Score: 0.8},
		{SourceID: "c", Text: strings.Repeat("z", 40), Score: 0.7},
	}}
	cfg := DefaultConfig()
	cfg.MaxContextChars = 85
	g := newGate(t, f, cfg)

	corpus := uuid.New()
	rc := g.Retrieve(context.Background(), &corpus, "topic")
	if rc == nil {
		t.Fatal("expected grounded context")
	}
	if len(rc.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(rc.Chunks))
	}
	if rc.Chunks[0].Score < rc.Chunks[1].Score {
		t.Fatal("kept chunks out of score order")
	}
	for _, ch := range rc.Chunks {
		if ch.SourceID == "c" {
			t.Fatal("lowest-similarity chunk survived truncation")
		}
	}
}

func TestRetrieveDiversifiesSources(t *testing.T) {
	f := &fakeSearcher{chunks: []Chunk{
		{SourceID: "a", Index: 0, Text: "a0", Score: 0.95},
		{SourceID: "a", Index: 1, Text: "a1", Score: 0.94},
		{SourceID: "a", Index: 2, Text: "a2", Score: 0.93},
		{SourceID: "b", Index: 0, Text: "b0", Score: 0.60},
	}}
	cfg := DefaultConfig()
	cfg.MaxPerSource = 2
	g := newGate(t, f, cfg)

	corpus := uuid.New()
	rc := g.Retrieve(context.Background(), &corpus, "topic")
	if rc == nil {
		t.Fatal("expected grounded context")
	}
	// The third "a" chunk is demoted behind the first "b" chunk.
	if rc.Chunks[2].SourceID != "b" {
		t.Fatalf("diversification did not promote second source: %+v", rc.Chunks)
	}
}
