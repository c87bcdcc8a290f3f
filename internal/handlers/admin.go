package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/internal/engine"
)

type AdminHandler struct {
	engine *engine.Engine
	logger *logrus.Logger
}

func NewAdminHandler(eng *engine.Engine, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		engine: eng,
		logger: logger,
	}
}

// Retrain serves POST /admin/retrain: pull a fresh catalog snapshot and
// refit synchronously. Readers keep serving the previous fit until the
// new one is published.
func (h *AdminHandler) Retrain(c *gin.Context) {
	if err := h.engine.Retrain(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Admin-triggered retrain failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": gin.H{
				"code":    "RETRAIN_FAILED",
				"message": "Failed to refresh catalog snapshot",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"fitted": h.engine.IsFitted(),
	})
}
