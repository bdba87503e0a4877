// Package jobs holds the worker-side background work: the rolling
// horizon top-up and the booking event audit log.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"fitgrid/internal/logger"
	"fitgrid/internal/service"
)

// TopUpJob periodically re-runs the generator over every active series,
// keeping the occurrence horizon filled as time moves forward.
// Generation is idempotent, so any schedule is safe.
type TopUpJob struct {
	svc  *service.Service
	cron *cron.Cron
}

func NewTopUpJob(svc *service.Service, spec string) (*TopUpJob, error) {
	j := &TopUpJob{svc: svc, cron: cron.New()}
	if _, err := j.cron.AddFunc(spec, j.run); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *TopUpJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()
	created, err := j.svc.TopUpAll(ctx)
	if err != nil {
		logger.Get().Error("schedule top-up failed", "error", err)
		return
	}
	logger.Get().Info("schedule top-up finished",
		"created", created,
		"took_ms", time.Since(start).Milliseconds())
}

// Start runs one pass immediately, then hands off to the cron schedule.
func (j *TopUpJob) Start() {
	j.run()
	j.cron.Start()
}

func (j *TopUpJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
