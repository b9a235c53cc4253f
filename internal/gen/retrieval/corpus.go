package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/platform/openai"
	"github.com/yungbote/flashdeck-backend/internal/repos"
)

const maxCandidateChunks = 512

// corpusSearcher scores stored corpus chunks against an embedded topic query.
// Cosine runs in-process over the persisted embeddings; corpora here are
// small (one upload per deck request).
type corpusSearcher struct {
	log    *logger.Logger
	chunks repos.CorpusChunkRepo
	ai     openai.Client
}

func NewCorpusSearcher(log *logger.Logger, chunks repos.CorpusChunkRepo, ai openai.Client) CorpusSearcher {
	return &corpusSearcher{
		log:    log.With("service", "CorpusSearcher"),
		chunks: chunks,
		ai:     ai,
	}
}

func (s *corpusSearcher) Search(ctx context.Context, corpusID uuid.UUID, topic string, k int) ([]Chunk, error) {
	if k <= 0 {
		return nil, nil
	}

	embs, err := s.ai.Embed(ctx, []string{topic})
	if err != nil {
		return nil, fmt.Errorf("embed topic: %w", err)
	}
	query := embs[0]

	rows, err := s.chunks.ListByCorpus(ctx, corpusID, maxCandidateChunks)
	if err != nil {
		return nil, fmt.Errorf("load corpus chunks: %w", err)
	}

	scored := make([]Chunk, 0, len(rows))
	for _, row := range rows {
		if len(row.Embedding) == 0 {
			continue
		}
		var vec []float32
		if err := json.Unmarshal(row.Embedding, &vec); err != nil {
			continue
		}
		scored = append(scored, Chunk{
			SourceID: row.SourceID,
			Page:     row.Page,
			Index:    row.ChunkIndex,
			Text:     row.Text,
			Score:    cosine(query, vec),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
