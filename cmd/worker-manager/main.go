// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dogwalk-workers/internal/common/camunda"
	"dogwalk-workers/internal/common/config"
	"dogwalk-workers/internal/common/database"
	"dogwalk-workers/internal/common/logger"
	"dogwalk-workers/internal/common/observability"
	"dogwalk-workers/internal/common/validation"
	"dogwalk-workers/internal/repository"
	"dogwalk-workers/pkg/registry"

	aw "dogwalk-workers/internal/workers/matching/assign-walker"
	fcw "dogwalk-workers/internal/workers/matching/find-compatible-walkers"
	fm "dogwalk-workers/internal/workers/matching/filter-matches"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service":     cfg.App.Name,
		"environment": cfg.App.Environment,
	})
	zapLog.Info("Starting worker manager...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	})
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Backing stores ---
	conns, err := database.Open(ctx, cfg)
	if err != nil {
		zapLog.Fatal("database connections failed", zap.Error(err))
	}
	defer conns.Close()
	zapLog.Info("Backing stores connected", zap.Bool("search", conns.Elasticsearch != nil))

	var store repository.Store = repository.NewPostgresStore(conns.Postgres.DB)
	if cfg.Matching.PoolCacheTTL > 0 {
		store = repository.NewCachedStore(store, conns.Redis.Client, cfg.Matching.PoolCacheDuration(), log)
	}

	// Narrowing stays off until the index holds the whole pool.
	var search fcw.PoolNarrower
	if conns.Elasticsearch != nil {
		walkerSearch := repository.NewWalkerSearch(conns.Elasticsearch.Client, cfg.Matching.SearchIndex, log)
		indexSync := repository.NewIndexSync(store, walkerSearch, log)
		indexed, err := indexSync.Run(ctx)
		if err != nil {
			zapLog.Warn("Initial walker index sync incomplete, narrowing disabled until a sync succeeds",
				zap.Int("indexed", indexed), zap.Error(err))
		}
		go indexSync.Start(ctx, cfg.Matching.SearchSyncDuration())
		search = indexSync
	}

	// --- Input schemas ---
	reg, err := registry.LoadOrBuiltin(cfg.Registry.Path)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg.InputSchemas())
	if err != nil {
		zapLog.Fatal("input schema compile failed", zap.Error(err))
	}

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(ctx, camunda.ConfigFromApp(cfg.Camunda), log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	workers := camunda.NewWorkerSet(zeebe.GetClient(), log)

	fcwConfig, err := fcw.ConfigFromApp(cfg)
	if err != nil {
		zapLog.Fatal("invalid find-compatible-walkers config", zap.Error(err))
	}
	finder, err := fcw.NewHandler(fcw.HandlerOptions{
		Config:        fcwConfig,
		Store:         store,
		Search:        search,
		Retrier:       zeebe,
		Validator:     validator,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("failed to create find-compatible-walkers handler", zap.Error(err))
	}
	workers.Start(fcw.TaskType, config.GetWorkerConfig(cfg, fcw.TaskType), finder.Handle)

	filter := fm.NewHandler(fm.ConfigFromApp(cfg), validator, obs, log).WithRetrier(zeebe)
	workers.Start(fm.TaskType, config.GetWorkerConfig(cfg, fm.TaskType), filter.Handle)

	assigner := aw.NewHandler(aw.ConfigFromApp(cfg), store, validator, obs, log).WithRetrier(zeebe)
	workers.Start(aw.TaskType, config.GetWorkerConfig(cfg, aw.TaskType), assigner.Handle)

	zapLog.Info("Workers registered", zap.Int("count", workers.Count()))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Observability.HTTPAddress,
		Handler:           newMux(conns, zeebe),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stop()
	workers.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing telemetry", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// healthChecker is satisfied by database.Connections.
type healthChecker interface {
	HealthCheck(ctx context.Context) map[string]error
}

// pinger is satisfied by camunda.Client.
type pinger interface {
	HealthCheck(ctx context.Context) error
}

func newMux(stores healthChecker, zeebe pinger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		results := stores.HealthCheck(ctx)
		results["zeebe"] = zeebe.HealthCheck(ctx)
		for name, err := range results {
			if err != nil {
				checks[name] = err.Error()
				healthy = false
				continue
			}
			checks[name] = "ok"
		}

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
