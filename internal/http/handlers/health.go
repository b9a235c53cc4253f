package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/flashdeck-backend/internal/platform/breaker"
)

type HealthHandler struct {
	brk *breaker.Breaker
}

func NewHealthHandler(brk *breaker.Breaker) *HealthHandler {
	return &HealthHandler{brk: brk}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	out := gin.H{"status": "ok"}
	if h.brk != nil {
		out["model_breaker"] = h.brk.State().String()
	}
	c.JSON(http.StatusOK, out)
}
