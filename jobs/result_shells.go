package jobs

import (
	"context"
	"time"

	"saudagar/services"

	"github.com/sirupsen/logrus"
)

// StartResultShellScheduler creates the day's placeholder results at start
// and then on every tick until ctx is cancelled.
func StartResultShellScheduler(ctx context.Context, results *services.ResultService, interval time.Duration, log *logrus.Logger) {
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	run := func() {
		if _, err := results.CreateResultShells(ctx, ""); err != nil && ctx.Err() == nil {
			log.WithError(err).Error("error creating result shells")
		}
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		run()
		for {
			select {
			case <-ctx.Done():
				log.Info("result shell scheduler stopped")
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
