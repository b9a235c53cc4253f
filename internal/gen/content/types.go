package content

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/platform/openai"
)

const SchemaVersion = "1.0"

// Difficulty, style and length enumerations for request validation.
var (
	Difficulties   = []string{"beginner", "intermediate", "advanced"}
	ExampleStyles  = []string{"default", "analogy", "real_world"}
	ExampleLengths = []string{"short", "medium", "long"}
)

// DeckRequest is a validated deck-generation request. Construct via
// NewDeckRequest; instances are treated as immutable afterwards.
type DeckRequest struct {
	Topic           string     `json:"topic"`
	Scope           string     `json:"scope,omitempty"`
	DifficultyLevel string     `json:"difficulty_level"`
	MaxConcepts     int        `json:"max_concepts"`
	CorpusID        *uuid.UUID `json:"corpus_id,omitempty"`
}

// ExampleRequest is a validated example-generation request. Constraints are
// normalized (trimmed, deduped, sorted) at construction so that equivalent
// requests fingerprint identically.
type ExampleRequest struct {
	Style       string   `json:"style"`
	Length      string   `json:"length"`
	Constraints []string `json:"constraints,omitempty"`
}

// LLMDeckOutput mirrors the deck json_schema; it only exists between a model
// response and validation.
type LLMDeckOutput struct {
	Concepts []LLMConcept `json:"concepts"`
}

type LLMConcept struct {
	Title           string   `json:"title"`
	Bullets         []string `json:"bullets"`
	ExamplePossible bool     `json:"example_possible"`
	ExampleHint     string   `json:"example_hint,omitempty"`
}

// LLMExampleOutput mirrors the example json_schema.
type LLMExampleOutput struct {
	Example    string   `json:"example"`
	Steps      []string `json:"steps,omitempty"`
	Pitfalls   []string `json:"pitfalls,omitempty"`
	SourceRefs []string `json:"source_refs,omitempty"`
}

type GenerationMetadata struct {
	Model         string            `json:"model"`
	PromptVersion string            `json:"prompt_version"`
	Tokens        openai.TokenUsage `json:"tokens"`
	Timestamp     time.Time         `json:"timestamp"`
	RagUsed       bool              `json:"rag_used"`
}

type Concept struct {
	CardID          uuid.UUID `json:"card_id"`
	Title           string    `json:"title"`
	Bullets         []string  `json:"bullets"`
	ExamplePossible bool      `json:"example_possible"`
	ExampleHint     string    `json:"example_hint,omitempty"`
}

// DeckResponse is a deck artifact. One only ever exists after its payload
// passed structural validation.
type DeckResponse struct {
	SchemaVersion      string             `json:"schema_version"`
	DeckID             uuid.UUID          `json:"deck_id"`
	Topic              string             `json:"topic"`
	DifficultyLevel    string             `json:"difficulty_level"`
	Scope              string             `json:"scope,omitempty"`
	Concepts           []Concept          `json:"concepts"`
	GenerationMetadata GenerationMetadata `json:"generation_metadata"`
}

// ExampleResponse is an example artifact; same validation guarantee.
type ExampleResponse struct {
	SchemaVersion      string             `json:"schema_version"`
	CardID             uuid.UUID          `json:"card_id"`
	Example            string             `json:"example"`
	Steps              []string           `json:"steps,omitempty"`
	Pitfalls           []string           `json:"pitfalls,omitempty"`
	SourceRefs         []string           `json:"source_refs,omitempty"`
	GenerationMetadata GenerationMetadata `json:"generation_metadata"`
}
