package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Purger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// PurgeJob removes revocation entries whose tokens could no longer pass expiry checks anyway.
type PurgeJob struct {
	Store   Purger
	Log     *slog.Logger
	Now     func() time.Time
	Timeout time.Duration
}

func (j *PurgeJob) Run() {
	if _, err := j.RunOnce(context.Background()); err != nil {
		j.logger().Error("purge_revoked_failed", "error", err)
	}
}

func (j *PurgeJob) RunOnce(ctx context.Context) (int64, error) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	n, err := j.Store.PurgeExpired(ctx, now().UTC())
	if err != nil {
		return 0, fmt.Errorf("purge expired revocations: %w", err)
	}
	j.logger().Info("purge_revoked_done", "removed", n)
	return n, nil
}

func (j *PurgeJob) logger() *slog.Logger {
	if j.Log != nil {
		return j.Log
	}
	return slog.Default()
}

// Start schedules job and starts the scheduler; the caller stops it.
func Start(schedule string, job cron.Job) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddJob(schedule, job); err != nil {
		return nil, fmt.Errorf("schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
