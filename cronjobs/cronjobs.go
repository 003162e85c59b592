package cronjobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"go-mindgarden/dialogue"
	"go-mindgarden/logger"
	"go-mindgarden/metrics"
)

// sweepTimeout bounds one sweep so a stuck state store cannot pile up runs.
const sweepTimeout = 30 * time.Second

// SweepIdleConversations evicts conversations idle for longer than idle.
func SweepIdleConversations(ctx context.Context, sessions *dialogue.Sessions, idle time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := sessions.Sweep(ctx, idle)
	if err != nil {
		logger.Error("CronJob: conversation sweep failed", zap.Error(err))
		return
	}
	metrics.ConversationsSwept.Add(float64(n))
	if n > 0 {
		logger.Info("CronJob: idle conversations swept", zap.Int("count", n), zap.Duration("idle", idle))
	}
}

// InitCronJobs schedules the background jobs and starts the scheduler.
// Stop the returned cron on shutdown.
func InitCronJobs(schedule string, sessions *dialogue.Sessions, idle time.Duration) (*cron.Cron, error) {
	logger.Info("Starting cron jobs", zap.String("sweep_schedule", schedule))
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		logger.Debug("CronJob: conversation sweep running")
		SweepIdleConversations(context.Background(), sessions, idle)
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling conversation sweep: %w", err)
	}

	c.Start()
	return c, nil
}
