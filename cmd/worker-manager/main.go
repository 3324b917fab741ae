// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"adinsight-workers/internal/common/camunda"
	"adinsight-workers/internal/common/config"
	"adinsight-workers/internal/common/database"
	"adinsight-workers/internal/common/logger"
	"adinsight-workers/internal/common/observability"

	// Infrastructure Workers (2)
	br "adinsight-workers/internal/workers/infrastructure/build-response"
	cuq "adinsight-workers/internal/workers/infrastructure/check-usage-quota"

	// Data Access Workers (2)
	qe "adinsight-workers/internal/workers/data-access/query-elasticsearch"
	qp "adinsight-workers/internal/workers/data-access/query-postgresql"

	// Analytics Workers (3)
	prf "adinsight-workers/internal/workers/analytics/parse-report-filters"
	ri "adinsight-workers/internal/workers/analytics/rank-insights"
	sch "adinsight-workers/internal/workers/analytics/score-campaign-health"

	// AI Conversation Workers (5)
	cm "adinsight-workers/internal/workers/ai-conversation/classify-message"
	fb "adinsight-workers/internal/workers/ai-conversation/fetch-benchmarks"
	qcd "adinsight-workers/internal/workers/ai-conversation/query-campaign-data"
	sc "adinsight-workers/internal/workers/ai-conversation/save-conversation"
	sa "adinsight-workers/internal/workers/ai-conversation/synthesize-analysis"

	// Communication Workers (1)
	sr "adinsight-workers/internal/workers/communication/send-report"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	jaegerEndpoint := os.Getenv("JAEGER_ENDPOINT")
	if jaegerEndpoint == "" {
		jaegerEndpoint = "http://localhost:14268/api/traces"
	}
	tracing, err := observability.InitTracing("worker-manager", cfg.App.Version, jaegerEndpoint)
	if err != nil {
		// Tracing is nil-safe, the fleet runs without spans when Jaeger is unreachable.
		zapLog.Warn("tracing disabled", zap.Error(err))
	}
	defer tracing.Shutdown()

	otelMetrics, err := observability.InitMetrics("worker-manager")
	if err != nil {
		// Metrics are nil-safe too, the fleet runs without OTel instruments.
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}
	defer otelMetrics.Shutdown()

	ctx := context.Background()

	// --- Init Camunda Client ---
	// NewClientWithConfig retries transient broker errors internally, so a
	// gateway that is still electing a leader does not kill the manager.
	camundaClient, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
	})
	if err != nil {
		zapLog.Fatal("camunda client failed", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Camunda client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Register the fleet ---
	// Handlers are built inside the closures so disabled workers pay no
	// construction cost.
	fleet := camunda.NewFleet(zeebeClient, zapLog, otelMetrics)

	// Adapters for workers that declare their own Logger interfaces
	qcdLogAdapter := &queryCampaignDataLoggerAdapter{log}
	fbLogAdapter := &fetchBenchmarksLoggerAdapter{log}
	saLogAdapter := &synthesizeAnalysisLoggerAdapter{log}

	// --- 1. Infrastructure Workers (2) ---
	fleet.Register(br.TaskType, cfg.Workers[br.TaskType], func() worker.JobHandler {
		return br.NewHandler(&br.Config{
			TemplateRegistry: cfg.Template.RegistryPath,
			CacheTTL:         5 * time.Minute,
			AppVersion:       cfg.App.Version,
			Timeout:          config.GetDuration(cfg.Workers[br.TaskType].Timeout),
		}, log).Handle
	})

	fleet.Register(cuq.TaskType, cfg.Workers[cuq.TaskType], func() worker.JobHandler {
		return cuq.NewHandler(&cuq.Config{
			Timeout:      config.GetDuration(cfg.Workers[cuq.TaskType].Timeout),
			MessageLimit: cfg.Quota.MessageLimit,
			WindowHours:  cfg.Quota.WindowHours,
			CacheTTL:     5 * time.Minute,
		}, pg.DB, redis.Client, log).Handle
	})

	// --- 2. Data Access Workers (2) ---
	fleet.Register(qp.TaskType, cfg.Workers[qp.TaskType], func() worker.JobHandler {
		return qp.NewHandler(
			qp.DefaultConfig(config.GetDuration(cfg.Workers[qp.TaskType].Timeout)),
			pg.DB, log,
		).Handle
	})

	fleet.Register(qe.TaskType, cfg.Workers[qe.TaskType], func() worker.JobHandler {
		return qe.NewHandler(
			qe.DefaultConfig(config.GetDuration(cfg.Workers[qe.TaskType].Timeout)),
			esClient.Client, log,
		).Handle
	})

	// --- 3. Analytics Workers (3) ---
	fleet.Register(prf.TaskType, cfg.Workers[prf.TaskType], func() worker.JobHandler {
		return prf.NewHandler(&prf.Config{
			Timeout: config.GetDuration(cfg.Workers[prf.TaskType].Timeout),
		}, log).Handle
	})

	fleet.Register(ri.TaskType, cfg.Workers[ri.TaskType], func() worker.JobHandler {
		return ri.NewHandler(&ri.Config{
			MaxItems: 10,
			Timeout:  config.GetDuration(cfg.Workers[ri.TaskType].Timeout),
		}, log).Handle
	})

	fleet.Register(sch.TaskType, cfg.Workers[sch.TaskType], func() worker.JobHandler {
		return sch.NewHandler(&sch.Config{
			CacheTTL: 10 * time.Minute,
			Timeout:  config.GetDuration(cfg.Workers[sch.TaskType].Timeout),
		}, pg.DB, redis.Client, log).Handle
	})

	// --- 4. AI Conversation Workers (5) ---
	fleet.Register(sc.TaskType, cfg.Workers[sc.TaskType], func() worker.JobHandler {
		return sc.NewHandler(&sc.Config{
			Timeout: config.GetDuration(cfg.Workers[sc.TaskType].Timeout),
		}, pg.DB, log).Handle
	})

	fleet.Register(cm.TaskType, cfg.Workers[cm.TaskType], func() worker.JobHandler {
		return cm.NewHandler(&cm.Config{
			Timeout: config.GetDuration(cfg.Workers[cm.TaskType].Timeout),
		}, tracing, log).Handle
	})

	fleet.Register(qcd.TaskType, cfg.Workers[qcd.TaskType], func() worker.JobHandler {
		return qcd.NewHandler(&qcd.Config{
			Timeout:    config.GetDuration(cfg.Workers[qcd.TaskType].Timeout),
			CacheTTL:   5 * time.Minute,
			MaxResults: 25,
		}, pg.DB, esClient.Client, redis.Client, qcdLogAdapter).Handle
	})

	fleet.Register(fb.TaskType, cfg.Workers[fb.TaskType], func() worker.JobHandler {
		return fb.NewHandler(&fb.Config{
			BenchmarksAPIBaseURL: cfg.APIs.Benchmarks.BaseURL,
			APIKey:               cfg.APIs.Benchmarks.APIKey,
			Timeout:              config.GetDuration(cfg.APIs.Benchmarks.Timeout),
			MaxRetries:           2,
			MaxBenchmarks:        24,
		}, fbLogAdapter).Handle
	})

	fleet.Register(sa.TaskType, cfg.Workers[sa.TaskType], func() worker.JobHandler {
		return sa.NewHandler(&sa.Config{
			GenAIBaseURL: cfg.APIs.GenAI.BaseURL,
			APIKey:       cfg.APIs.GenAI.APIKey,
			Timeout:      config.GetDuration(cfg.APIs.GenAI.Timeout),
			MaxRetries:   2,
			MaxTokens:    1024,
			Temperature:  0.2,
		}, saLogAdapter).Handle
	})

	// --- 5. Communication Workers (1) ---
	// send-report manages its own registration, the job type is sr.TaskType ("report.send").
	srHandler, err := sr.NewHandler(sr.HandlerOptions{
		AppConfig: cfg,
		Camunda:   camundaClient,
		DB:        pg.DB,
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create send-report handler", zap.Error(err))
	}
	if err := srHandler.Register(); err != nil {
		zapLog.Fatal("failed to register send-report worker", zap.Error(err))
	}

	zapLog.Info("worker fleet registered", zap.Int("polling", fleet.Size()+1))

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	fleet.Close()
	srHandler.Close()
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Camunda client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// Logger adapters for AI workers that declare their own Logger interfaces
type queryCampaignDataLoggerAdapter struct {
	logger.Logger
}

func (a *queryCampaignDataLoggerAdapter) With(fields map[string]interface{}) qcd.Logger {
	return &queryCampaignDataLoggerAdapter{a.Logger.With(fields)}
}

type fetchBenchmarksLoggerAdapter struct {
	logger.Logger
}

func (a *fetchBenchmarksLoggerAdapter) With(fields map[string]interface{}) fb.Logger {
	return &fetchBenchmarksLoggerAdapter{a.Logger.With(fields)}
}

type synthesizeAnalysisLoggerAdapter struct {
	logger.Logger
}

func (a *synthesizeAnalysisLoggerAdapter) With(fields map[string]interface{}) sa.Logger {
	return &synthesizeAnalysisLoggerAdapter{a.Logger.With(fields)}
}
