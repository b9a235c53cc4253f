package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/gen/content"
	"github.com/yungbote/flashdeck-backend/internal/http/response"
	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/services"
)

// callerID identifies the requester for admission control: the X-Caller-Id
// header when present, otherwise the client address.
func callerID(c *gin.Context) string {
	if id := strings.TrimSpace(c.GetHeader("X-Caller-Id")); id != "" {
		return id
	}
	return c.ClientIP()
}

type DeckHandler struct {
	log   *logger.Logger
	decks services.DeckService
}

func NewDeckHandler(log *logger.Logger, decks services.DeckService) *DeckHandler {
	return &DeckHandler{
		log:   log.With("handler", "DeckHandler"),
		decks: decks,
	}
}

type generateDeckRequest struct {
	Topic           string     `json:"topic"`
	Scope           string     `json:"scope"`
	DifficultyLevel string     `json:"difficulty_level"`
	MaxConcepts     int        `json:"max_concepts"`
	CorpusID        *uuid.UUID `json:"corpus_id"`
}

func (h *DeckHandler) Generate(c *gin.Context) {
	var body generateDeckRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid request body: %w", err)))
		return
	}

	resp, err := h.decks.Generate(c.Request.Context(), content.DeckRequest{
		Topic:           body.Topic,
		Scope:           body.Scope,
		DifficultyLevel: body.DifficultyLevel,
		MaxConcepts:     body.MaxConcepts,
		CorpusID:        body.CorpusID,
	}, callerID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, resp)
}

func (h *DeckHandler) Get(c *gin.Context) {
	deckID, err := uuid.Parse(c.Param("deck_id"))
	if err != nil {
		response.RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid deck_id: %w", err)))
		return
	}

	resp, err := h.decks.Get(c.Request.Context(), deckID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, resp)
}
