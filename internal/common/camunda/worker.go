// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"vc-assistant/internal/common/logger"
	"vc-assistant/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// InputValidator checks raw job variables before a handler sees them.
type InputValidator interface {
	Validate(taskType, variables string) error
}

// WorkerOptions configures a job worker.
type WorkerOptions struct {
	MaxJobsActive int
	Timeout       time.Duration
	Validator     InputValidator
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   logger.Logger
	taskType string
}

// NewWorker opens a job worker for taskType. Jobs whose variables fail
// validation are rejected without reaching handler.
func NewWorker(client zbc.Client, taskType string, opts WorkerOptions, handler JobHandler, log logger.Logger) *CamundaWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(wrap(taskType, opts.Validator, handler, log)).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Open()

	log.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": opts.MaxJobsActive,
	})

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

func wrap(taskType string, validator InputValidator, handler JobHandler, log logger.Logger) worker.JobHandler {
	return func(jc worker.JobClient, job entities.Job) {
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()

		if validator != nil {
			if err := validator.Validate(taskType, job.Variables); err != nil {
				FailJob(context.Background(), jc, job, err, log)
				return
			}
		}

		start := time.Now()
		handler.Handle(jc, job)
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
	}
}

// Stop closes the job worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", map[string]interface{}{"taskType": w.taskType})
	w.worker.Close()
	w.worker.AwaitClose()
}
