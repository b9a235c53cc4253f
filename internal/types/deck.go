package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Deck struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Topic            string         `gorm:"size:200;not null" json:"topic"`
	DifficultyLevel  string         `gorm:"size:20;not null" json:"difficulty_level"`
	Scope            string         `gorm:"size:200" json:"scope,omitempty"`
	Grounded         bool           `gorm:"not null;default:false" json:"grounded"`
	Payload          datatypes.JSON `gorm:"not null" json:"payload"` // full DeckResponse JSON
	TokensUsed       int            `json:"tokens_used,omitempty"`
	GenerationTimeMs int            `json:"generation_time_ms,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`

	Cards []*Card `gorm:"constraint:OnDelete:CASCADE;foreignKey:DeckID;references:ID" json:"cards,omitempty"`
}

func (Deck) TableName() string { return "decks" }
