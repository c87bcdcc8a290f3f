package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/internal/engine"
)

type Handlers struct {
	Health         *HealthHandler
	Recommendation *RecommendationHandler
	Admin          *AdminHandler
}

func New(logger *logrus.Logger, eng *engine.Engine) *Handlers {
	return &Handlers{
		Health:         NewHealthHandler(logger, eng),
		Recommendation: NewRecommendationHandler(eng, logger),
		Admin:          NewAdminHandler(eng, logger),
	}
}
