package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/internal/engine"
)

type HealthHandler struct {
	logger *logrus.Logger
	engine *engine.Engine
}

func NewHealthHandler(logger *logrus.Logger, eng *engine.Engine) *HealthHandler {
	return &HealthHandler{
		logger: logger,
		engine: eng,
	}
}

// Check reports process liveness plus whether a model fit is published.
// An unfitted engine is degraded, not down: the process keeps serving.
func (h *HealthHandler) Check(c *gin.Context) {
	status := "healthy"
	if !h.engine.IsFitted() {
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": status,
		"fitted": h.engine.IsFitted(),
	})
}
