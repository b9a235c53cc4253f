package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Card struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	DeckID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"deck_id"`
	Deck            *Deck          `gorm:"constraint:OnDelete:CASCADE;foreignKey:DeckID;references:ID" json:"deck,omitempty"`
	Title           string         `gorm:"size:100;not null" json:"title"`
	ExamplePossible bool           `gorm:"not null;default:false" json:"example_possible"`
	Payload         datatypes.JSON `gorm:"not null" json:"payload"` // full concept JSON
	CreatedAt       time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Card) TableName() string { return "cards" }
