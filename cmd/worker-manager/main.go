// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"caab-workers/internal/common/aws"
	"caab-workers/internal/common/camunda"
	"caab-workers/internal/common/config"
	"caab-workers/internal/common/database"
	commonErrors "caab-workers/internal/common/errors"
	"caab-workers/internal/common/logger"
	"caab-workers/internal/common/observability"
	"caab-workers/internal/common/validation"
	"caab-workers/internal/lookup"
	"caab-workers/internal/store"
	"caab-workers/pkg/registry"

	mca "caab-workers/internal/workers/application/map-case-application"
	sca "caab-workers/internal/workers/application/submit-case-application"
	bag "caab-workers/internal/workers/assessment/build-assessment-graph"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Service: cfg.App.Name,
		Outputs: []string{cfg.Logging.Output},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.Wrap(zapLog)

	if err := run(cfg, log); err != nil {
		log.Error("worker manager stopped with error", map[string]interface{}{"error": err.Error()})
		_ = zapLog.Sync()
		os.Exit(1)
	}
	log.Info("worker manager stopped", nil)
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("otel metrics disabled", map[string]interface{}{"error": err.Error()})
	}
	if cfg.Tracing.Enabled {
		if err := obs.EnableTracing(cfg.App.Name, cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio); err != nil {
			log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
		}
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(sctx)
	}()

	// --- Postgres ---
	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	retry := camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second}
	if err := camunda.Retry(ctx, retry, "postgres ping", log, pg.Ping); err != nil {
		return commonErrors.NewDatabaseConnectionFailedError(err)
	}
	if err := pg.EnsureSchema(ctx, store.Schema...); err != nil {
		return commonErrors.NewDatabaseConnectionFailedError(err)
	}
	log.Info("postgres connected", nil)

	checks := []check{{name: "postgres", probe: pg.Ping}}

	// --- Reference data ---
	resolver, rdb, err := buildResolver(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		checks = append(checks, check{name: "redis", probe: func(ctx context.Context) error {
			return database.PingRedis(ctx, rdb)
		}})
	}

	// --- Data-quality index ---
	var issues mca.IssueIndexer
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		if err := database.PingElasticsearch(ctx, es); err != nil {
			log.Warn("elasticsearch unreachable, issues will not be indexed until it recovers", map[string]interface{}{
				"error": err.Error(),
			})
		}
		issues = store.NewIssues(es, cfg.Database.Elasticsearch.Index)
		checks = append(checks, check{name: "elasticsearch", probe: func(ctx context.Context) error {
			return database.PingElasticsearch(ctx, es)
		}})
	}

	// --- Submission transport ---
	var publisher sca.Publisher
	if cfg.AWS.SNS.Enabled {
		p, err := aws.NewPublisher(ctx, cfg.AWS.Region, cfg.AWS.SNS.SubmissionsTopic)
		if err != nil {
			return err
		}
		publisher = p
	}

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		return fmt.Errorf("activity registry: %w", err)
	}
	for _, problem := range reg.Check() {
		log.Warn("activity registry problem", map[string]interface{}{"problem": problem})
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		return err
	}

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: cfg.Camunda.Insecure,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		Retry:                  retry,
	}, log)
	if err != nil {
		return err
	}
	defer zeebe.Close()
	log.Info("zeebe connected", map[string]interface{}{"gateway": cfg.Camunda.BrokerAddress})

	cases := store.NewCases(pg.DB)

	// --- Workers ---
	var (
		workers []worker.JobWorker
		started []string
	)
	start := func(taskType string, h camunda.JobHandler) {
		if !config.IsWorkerEnabled(cfg, taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			return
		}
		activity, ok := reg.Find(taskType)
		switch {
		case !ok:
			log.Warn("worker has no registry entry, input is not validated", map[string]interface{}{"taskType": taskType})
		case !activity.Active():
			log.Info("activity not active in registry, worker not started", map[string]interface{}{
				"taskType": taskType,
				"status":   activity.ImplementationStatus,
			})
			return
		}
		workers = append(workers, camunda.StartWorker(zeebe, taskType, config.GetWorkerConfig(cfg, taskType), h, obs, log))
		started = append(started, taskType)
	}

	start(mca.TaskType, mca.NewHandler(mca.LoadConfig(cfg), resolver, cases, issues, validator, obs, log))
	start(bag.TaskType, bag.NewHandler(bag.LoadConfig(cfg), cases, resolver, validator, obs, log))
	if publisher != nil {
		start(sca.TaskType, sca.NewHandler(sca.LoadConfig(cfg), cases, publisher, validator, log))
	} else {
		log.Warn("aws.sns disabled, submissions are not published", map[string]interface{}{"taskType": sca.TaskType})
	}

	log.Info("workers registered", map[string]interface{}{"count": len(started), "taskTypes": started})

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newRouter(checks, started, log),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"address": cfg.Server.Address})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful Shutdown ---
	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, stopping workers", nil)
	case err := <-errCh:
		runErr = fmt.Errorf("health server: %w", err)
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn("health server shutdown", map[string]interface{}{"error": err.Error()})
	}
	return runErr
}

// buildResolver picks the static file or the HTTP service and, when a TTL is set, puts the
// redis cache in front. The returned client is nil when caching is off.
func buildResolver(ctx context.Context, cfg *config.Config, log logger.Logger) (lookup.Resolver, *redis.Client, error) {
	var inner lookup.Resolver
	if cfg.Lookup.StaticFile != "" {
		s, err := lookup.LoadStatic(cfg.Lookup.StaticFile)
		if err != nil {
			return nil, nil, err
		}
		inner = s
		log.Info("using static reference data", map[string]interface{}{"file": cfg.Lookup.StaticFile})
	} else {
		inner = lookup.NewRemote(cfg.Lookup.BaseURL, cfg.Lookup.LookupTimeout())
		log.Info("using reference data service", map[string]interface{}{"baseUrl": cfg.Lookup.BaseURL})
	}

	if cfg.Lookup.TTL() <= 0 {
		return inner, nil, nil
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	if err := database.PingRedis(ctx, rdb); err != nil {
		log.Warn("redis unreachable, lookups bypass the cache", map[string]interface{}{"error": err.Error()})
	}
	return lookup.NewCached(inner, rdb, cfg.Lookup.TTL()), rdb, nil
}

var (
	_ mca.ApplicationStore = (*store.Cases)(nil)
	_ mca.IssueIndexer     = (*store.Issues)(nil)
	_ bag.GraphStore       = (*store.Cases)(nil)
	_ sca.CaseStore        = (*store.Cases)(nil)
	_ sca.Publisher        = (*aws.Publisher)(nil)
)
