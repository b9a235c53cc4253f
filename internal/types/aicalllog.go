package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AICallLog struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Purpose          string         `gorm:"size:40;not null;index" json:"purpose"` // deck_generate|example_generate|repair|embed
	Model            string         `gorm:"size:80" json:"model"`
	PromptVersion    string         `gorm:"size:20" json:"prompt_version"`
	RequestID        string         `gorm:"size:64;index" json:"request_id"`
	Outcome          string         `gorm:"size:20;not null" json:"outcome"` // ok|invalid|error|timeout
	DurationMs       int            `json:"duration_ms"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	TotalTokens      int            `json:"total_tokens"`
	Detail           datatypes.JSON `json:"detail,omitempty"`
	CreatedAt        time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (AICallLog) TableName() string { return "ai_call_logs" }
