// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"adinsight-workers/internal/common/config"
	"adinsight-workers/internal/common/metrics"
	"adinsight-workers/internal/common/observability"
)

// Fleet tracks the job subscriptions opened by the worker manager so
// shutdown can close them before the gRPC connection goes away.
type Fleet struct {
	client  zbc.Client
	log     *zap.Logger
	otel    *observability.Metrics
	workers []worker.JobWorker
}

// NewFleet builds a fleet. otelMetrics may be nil; the instruments are
// nil-safe, so fleets in tests run without a meter provider.
func NewFleet(client zbc.Client, log *zap.Logger, otelMetrics *observability.Metrics) *Fleet {
	return &Fleet{client: client, log: log, otel: otelMetrics}
}

// Register subscribes a handler for taskType using its per-worker
// settings. The handler is only built when the worker is enabled, so
// disabled workers skip construction costs such as loading template
// registries.
func (f *Fleet) Register(taskType string, cfg config.WorkerConfig, build func() worker.JobHandler) {
	if !cfg.Enabled {
		f.log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	w := f.client.NewJobWorker().
		JobType(taskType).
		Handler(f.instrument(taskType, build())).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(time.Duration(cfg.Timeout) * time.Millisecond).
		Name(taskType + "-worker").
		Open()

	f.workers = append(f.workers, w)

	f.log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", cfg.MaxJobsActive),
		zap.Int("timeout_ms", cfg.Timeout),
	)
}

// instrument wraps a handler with the fleet-wide active-jobs gauge,
// duration histograms, and the per-job OTel counter. Outcome counters stay
// inside the handlers, the only place that knows whether a job completed
// or failed.
func (f *Fleet) instrument(taskType string, h worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
		defer func() {
			metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
			elapsed := time.Since(start)
			metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
			f.otel.RecordJobProcessed(context.Background(), taskType)
			f.otel.RecordJobDuration(context.Background(), taskType, elapsed)
		}()
		h(client, job)
	}
}

// Size reports how many workers are polling for jobs.
func (f *Fleet) Size() int {
	return len(f.workers)
}

// Close drains every subscription. Each Close blocks until in-flight
// jobs finish or their deadline passes.
func (f *Fleet) Close() {
	for i := len(f.workers) - 1; i >= 0; i-- {
		f.workers[i].Close()
	}
	f.workers = nil
	f.log.Info("all workers stopped")
}
