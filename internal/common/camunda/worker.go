// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"caab-workers/internal/common/config"
	"caab-workers/internal/common/logger"
	"caab-workers/internal/common/metrics"
	"caab-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every task-type handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// StartWorker opens a job worker for taskType and instruments each job. obs may be nil.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, h JobHandler, obs *observability.Observability, log logger.Logger) worker.JobWorker {
	log.Info("starting worker", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})

	return client.NewJobWorker().
		JobType(taskType).
		Handler(func(c worker.JobClient, job entities.Job) {
			active := metrics.JobsActive.WithLabelValues(taskType)
			active.Inc()
			start := time.Now()
			defer func() {
				active.Dec()
				elapsed := time.Since(start)
				metrics.JobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
				obs.RecordJobDuration(context.Background(), taskType, elapsed)
			}()
			h.Handle(c, job)
		}).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(taskType).
		Open()
}
