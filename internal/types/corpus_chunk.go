package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CorpusChunk is one excerpt of an uploaded knowledge corpus. Ingestion is a
// collaborator concern; this service only reads chunks for retrieval.
type CorpusChunk struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CorpusID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"corpus_id"`
	SourceID   string         `gorm:"size:50;not null" json:"source_id"`
	Page       int            `gorm:"not null;default:0" json:"page"`
	ChunkIndex int            `gorm:"not null;default:0" json:"chunk_index"`
	Text       string         `gorm:"type:text;not null" json:"text"`
	Embedding  datatypes.JSON `json:"embedding,omitempty"` // []float32
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (CorpusChunk) TableName() string { return "corpus_chunks" }
