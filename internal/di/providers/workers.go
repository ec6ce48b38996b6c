package providers

import (
	"context"
	"time"

	"github.com/samber/do/v2"

	"github.com/readloopapp/readloop-server/internal/logger"
	"github.com/readloopapp/readloop-server/internal/service"
)

// sessionSweepInterval is how often expired refresh sessions are purged.
const sessionSweepInterval = time.Hour

// SessionCleanupJob owns the background sweep of expired sessions.
type SessionCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *SessionCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideSessionCleanupJob starts the hourly session sweep. The first
// sweep runs immediately so restarts clear any backlog.
func ProvideSessionCleanupJob(i do.Injector) (*SessionCleanupJob, error) {
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx, cancel := context.WithCancel(context.Background())

	sweep := func() {
		count, err := sessionService.DeleteExpiredSessions(ctx)
		switch {
		case err != nil:
			log.Warn("Session cleanup failed", "error", err)
		case count > 0:
			log.Info("Session cleanup completed", "deleted", count)
		}
	}

	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()

		sweep()
		for {
			select {
			case <-ticker.C:
				sweep()
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Session cleanup job started")

	return &SessionCleanupJob{cancel: cancel}, nil
}
