package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/flashdeck-backend/internal/gen/content"
	"github.com/yungbote/flashdeck-backend/internal/http/response"
	"github.com/yungbote/flashdeck-backend/internal/platform/apierr"
	"github.com/yungbote/flashdeck-backend/internal/platform/logger"
	"github.com/yungbote/flashdeck-backend/internal/services"
)

type ExampleHandler struct {
	log      *logger.Logger
	examples services.ExampleService
}

func NewExampleHandler(log *logger.Logger, examples services.ExampleService) *ExampleHandler {
	return &ExampleHandler{
		log:      log.With("handler", "ExampleHandler"),
		examples: examples,
	}
}

type generateExampleRequest struct {
	Style       string   `json:"style"`
	Length      string   `json:"length"`
	Constraints []string `json:"constraints"`
}

type exampleResult struct {
	content.ExampleResponse
	FromCache bool `json:"from_cache"`
}

func (h *ExampleHandler) Generate(c *gin.Context) {
	cardID, err := uuid.Parse(c.Param("card_id"))
	if err != nil {
		response.RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid card_id: %w", err)))
		return
	}

	// An empty body means default style and length.
	var body generateExampleRequest
	if c.Request.ContentLength > 0 {
		if bindErr := c.ShouldBindJSON(&body); bindErr != nil {
			response.RespondError(c, apierr.InvalidInput(fmt.Errorf("invalid request body: %w", bindErr)))
			return
		}
	}

	resp, fromCache, err := h.examples.Generate(c.Request.Context(), cardID, content.ExampleRequest{
		Style:       body.Style,
		Length:      body.Length,
		Constraints: body.Constraints,
	}, callerID(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	if fromCache {
		c.Header("X-Cache", "hit")
	} else {
		c.Header("X-Cache", "miss")
	}
	response.RespondOK(c, exampleResult{ExampleResponse: *resp, FromCache: fromCache})
}
