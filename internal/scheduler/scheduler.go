// Package scheduler runs the periodic model retrain. The schedule is a
// standard 5-field cron expression (minute hour day-of-month month
// day-of-week); an empty schedule disables periodic retraining entirely.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/auric/recommender/internal/engine"
)

type RetrainScheduler struct {
	cron   *cron.Cron
	engine *engine.Engine
	logger *logrus.Logger
}

func NewRetrainScheduler(eng *engine.Engine, logger *logrus.Logger) *RetrainScheduler {
	return &RetrainScheduler{
		cron:   cron.New(),
		engine: eng,
		logger: logger,
	}
}

// Start registers the retrain job and launches the cron loop. A malformed
// schedule is an error; callers decide whether that is fatal.
func (s *RetrainScheduler) Start(schedule string) error {
	if schedule == "" {
		s.logger.Info("Periodic retrain disabled (no schedule configured)")
		return nil
	}

	_, err := s.cron.AddFunc(schedule, s.retrain)
	if err != nil {
		return fmt.Errorf("invalid retrain schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.logger.WithField("schedule", schedule).Info("Periodic retrain scheduled")
	return nil
}

func (s *RetrainScheduler) retrain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.engine.Retrain(ctx); err != nil {
		s.logger.WithError(err).Error("Scheduled retrain failed")
		return
	}
	s.logger.Info("Scheduled retrain completed")
}

// Stop halts the cron loop; a retrain already in flight finishes.
func (s *RetrainScheduler) Stop() {
	<-s.cron.Stop().Done()
}
