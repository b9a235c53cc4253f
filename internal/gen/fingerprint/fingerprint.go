package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/yungbote/flashdeck-backend/internal/gen/content"
)

// ForExample computes the identity of an example-generation request from its
// semantically relevant fields only: style, length, and the normalized
// constraint list. Caller identity and timestamps never participate, and an
// absent constraint list hashes identically to an empty one.
func ForExample(req content.ExampleRequest) string {
	fields := map[string]any{
		"style":       req.Style,
		"length":      req.Length,
		"constraints": normalizedList(req.Constraints),
	}
	return digest(fields)
}

// ForDeck computes the identity of a deck-generation request; used for
// request de-duplication in logs and traces (decks are not cache-first).
func ForDeck(req content.DeckRequest) string {
	fields := map[string]any{
		"topic":            req.Topic,
		"scope":            req.Scope,
		"difficulty_level": req.DifficultyLevel,
		"max_concepts":     req.MaxConcepts,
	}
	if req.CorpusID != nil {
		fields["corpus_id"] = req.CorpusID.String()
	}
	return digest(fields)
}

func normalizedList(in []string) []string {
	out := content.NormalizeConstraints(in)
	if out == nil {
		return []string{}
	}
	return out
}

// digest serializes fields canonically (sorted keys, no indentation) and
// hashes the result. encoding/json already sorts map keys, but the explicit
// key walk keeps the canonical form independent of that implementation
// detail.
func digest(fields map[string]any) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := sha256.New()
	for _, k := range keys {
		raw, _ := json.Marshal(fields[k])
		_, _ = h.Write([]byte(k))
		_, _ = h.Write([]byte{'='})
		_, _ = h.Write(raw)
		_, _ = h.Write([]byte{';'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
