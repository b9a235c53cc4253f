package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CardExample is a cached example artifact. Rows are written once per
// (card_id, fingerprint) and never updated; the unique index is the
// idempotency guarantee.
type CardExample struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CardID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_card_example_key,unique,priority:1" json:"card_id"`
	Card        *Card          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CardID;references:ID" json:"card,omitempty"`
	Fingerprint string         `gorm:"size:64;not null;index:idx_card_example_key,unique,priority:2" json:"fingerprint"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"` // full ExampleResponse JSON
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (CardExample) TableName() string { return "card_examples" }
