package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/internal/engine"
	"github.com/auric/recommender/pkg/models"
)

type RecommendationHandler struct {
	engine *engine.Engine
	logger *logrus.Logger
}

func NewRecommendationHandler(eng *engine.Engine, logger *logrus.Logger) *RecommendationHandler {
	return &RecommendationHandler{
		engine: eng,
		logger: logger,
	}
}

// GetSimilar serves GET /recommendations/product/:sku. Unknown items and
// an unfitted engine both answer with an empty list.
func (h *RecommendationHandler) GetSimilar(c *gin.Context) {
	sku := c.Param("sku")
	limit := parseLimit(c, 5)

	items := h.engine.SimilarTo(c.Request.Context(), sku, limit)
	c.JSON(http.StatusOK, itemList(items))
}

// GetPersonalized serves GET /recommendations/personalized/:userId. Store
// failures surface as 502 because the engine has no retry policy of its
// own; cold-start users get trending output with a 200.
func (h *RecommendationHandler) GetPersonalized(c *gin.Context) {
	userID := c.Param("userId")
	limit := parseLimit(c, 10)

	items, err := h.engine.RecommendForUser(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).
			Error("Failed to generate personalized recommendations")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": gin.H{
				"code":    "UPSTREAM_UNAVAILABLE",
				"message": "Failed to load user signals",
			},
		})
		return
	}

	c.JSON(http.StatusOK, itemList(items))
}

// GetTrending serves GET /recommendations/trending.
func (h *RecommendationHandler) GetTrending(c *gin.Context) {
	limit := parseLimit(c, 10)
	c.JSON(http.StatusOK, itemList(h.engine.Trending(limit)))
}

func parseLimit(c *gin.Context, fallback int) int {
	limit := fallback
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return limit
}

// itemList keeps empty results as [] rather than null in responses.
func itemList(items []models.CatalogItem) gin.H {
	if items == nil {
		items = []models.CatalogItem{}
	}
	return gin.H{"items": items, "count": len(items)}
}
