package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
)

// Chunk is one scored excerpt returned by corpus search.
type Chunk struct {
	SourceID string
	Page     int
	Index    int
	Text     string
	Score    float64
}

// Context is the grounded-generation bundle handed to the prompt assembler.
type Context struct {
	Chunks      []Chunk
	AvgScore    float64
	SourceCount int
}

// Excerpts renders chunk texts with their source locators, in context order.
func (c *Context) Excerpts() []string {
	out := make([]string, 0, len(c.Chunks))
	for _, ch := range c.Chunks {
		out = append(out, fmt.Sprintf("(source %s p.%d) %s", ch.SourceID, ch.Page, ch.Text))
	}
	return out
}

// CorpusSearcher is the retrieval collaborator contract: top-k scored chunks
// for a topic within one corpus.
type CorpusSearcher interface {
	Search(ctx context.Context, corpusID uuid.UUID, topic string, k int) ([]Chunk, error)
}

type Config struct {
	TopK            int
	MinAvgScore     float64
	MaxContextChars int
	MaxPerSource    int
	Timeout         time.Duration
}

func DefaultConfig() Config {
	return Config{
		TopK:            12,
		MinAvgScore:     0.35,
		MaxContextChars: 6000,
		MaxPerSource:    4,
		Timeout:         5 * time.Second,
	}
}

// Gate decides whether grounded context is available for a deck request.
// Every degraded path (no corpus, timeout, weak similarity) resolves to
// ungrounded generation, which is a successful outcome, not an error.
type Gate struct {
	log      *logger.Logger
	searcher CorpusSearcher
	cfg      Config
}

func NewGate(log *logger.Logger, searcher CorpusSearcher, cfg Config) *Gate {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = DefaultConfig().MaxContextChars
	}
	if cfg.MaxPerSource <= 0 {
		cfg.MaxPerSource = DefaultConfig().MaxPerSource
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Gate{log: log.With("service", "RetrievalGate"), searcher: searcher, cfg: cfg}
}

// Retrieve returns a context bundle, or nil for ungrounded generation.
func (g *Gate) Retrieve(ctx context.Context, corpusID *uuid.UUID, topic string) *Context {
	if corpusID == nil || g.searcher == nil {
		return nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	chunks, err := g.searcher.Search(searchCtx, *corpusID, topic, g.cfg.TopK)
	if err != nil {
		// Retrieval failure downgrades to ungrounded; the request proceeds.
		g.log.Warn("corpus retrieval failed, generating ungrounded",
			"corpus_id", corpusID.String(),
			"error", err,
		)
		return nil
	}
	if len(chunks) == 0 {
		return nil
	}

	ordered := orderChunks(chunks)
	selected := diversify(ordered, g.cfg.MaxPerSource)
	selected = truncateToBudget(selected, g.cfg.MaxContextChars)
	if len(selected) == 0 {
		return nil
	}

	var sum float64
	sources := map[string]bool{}
	for _, ch := range selected {
		sum += ch.Score
		sources[ch.SourceID] = true
	}
	avg := sum / float64(len(selected))
	if avg < g.cfg.MinAvgScore {
		g.log.Info("retrieval similarity below threshold, generating ungrounded",
			"avg_score", avg,
			"threshold", g.cfg.MinAvgScore,
		)
		return nil
	}

	return &Context{Chunks: selected, AvgScore: avg, SourceCount: len(sources)}
}

// orderChunks sorts deterministically: score descending, then source id,
// page, and chunk index. Ties on score prefer source order over document
// position so repeated requests against an unchanged corpus build identical
// prompts.
func orderChunks(in []Chunk) []Chunk {
	out := make([]Chunk, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].SourceID != out[j].SourceID {
			return out[i].SourceID < out[j].SourceID
		}
		if out[i].Page != out[j].Page {
			return out[i].Page < out[j].Page
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// diversify admits at most maxPerSource chunks per source in a first pass,
// then backfills with the remainder, preserving score order throughout.
func diversify(ordered []Chunk, maxPerSource int) []Chunk {
	perSource := map[string]int{}
	primary := make([]Chunk, 0, len(ordered))
	overflow := make([]Chunk, 0)
	for _, ch := range ordered {
		if perSource[ch.SourceID] < maxPerSource {
			perSource[ch.SourceID]++
			primary = append(primary, ch)
		} else {
			overflow = append(overflow, ch)
		}
	}
	return append(primary, overflow...)
}

// truncateToBudget drops lowest-similarity chunks first until the total text
// size fits the configured context budget.
func truncateToBudget(ordered []Chunk, budget int) []Chunk {
	total := 0
	out := make([]Chunk, 0, len(ordered))
	for _, ch := range ordered {
		if total+len(ch.Text) > budget {
			break
		}
		total += len(ch.Text)
		out = append(out, ch)
	}
	return out
}
