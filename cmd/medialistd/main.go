package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medialist/internal/database"
	"medialist/internal/handlers"
	"medialist/internal/indexer"
	"medialist/internal/logging"
	"medialist/internal/memory"
	"medialist/internal/metrics"
	"medialist/internal/middleware"
	"medialist/internal/scanlock"
	"medialist/internal/startup"

	"github.com/gorilla/mux"
)

const (
	shutdownTimeout   = 30 * time.Second
	collectorInterval = time.Minute
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}
	memory.ConfigureFromEnv()

	ctx := context.Background()

	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	total, err := db.Count(ctx)
	if err != nil {
		logging.Warn("Failed to count catalog: %v", err)
	}
	startup.LogDatabaseInit(time.Since(dbStart), total)

	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, startup.GoVersion)
		collector = metrics.NewCollector(db, collectorInterval)
		collector.Start()
	}

	startup.LogIndexerInit(config)
	idx := newIndexer(db, config)
	idx.Start(config.ScanOnStart)
	startup.LogIndexerStarted()

	h := handlers.New(db, idx)
	router := setupRouter(h, config.MetricsEnabled)
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	srv := newServer(config.Port, buildHandler(router, config))

	done := make(chan struct{})
	go handleShutdown(srv, idx, collector, done)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}

	<-done

	startup.LogShutdownStep("Closing database")
	if err := db.Close(); err != nil {
		logging.Warn("Database close error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Database closed")
	}
	startup.LogShutdownComplete()
}

func newIndexer(db *database.Database, config *startup.Config) *indexer.Indexer {
	idx := indexer.New(db, config.ScanConfig())
	idx.SetLocker(scanlock.ForDatabase(config.DatabasePath))
	idx.SetScanInterval(config.ScanInterval)
	return idx
}

func setupRouter(h *handlers.Handlers, metricsEnabled bool) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET").Name("health")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD").Name("liveness")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET").Name("readiness")
	r.HandleFunc("/version", h.GetVersion).Methods("GET").Name("version")
	if metricsEnabled {
		r.Handle("/metrics", h.MetricsHandler()).Methods("GET").Name("metrics")
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/scan", h.TriggerScan).Methods("POST").Name("scan")
	api.HandleFunc("/scan/progress", h.GetScanProgress).Methods("GET").Name("scan-progress")
	api.HandleFunc("/library", h.ListLibrary).Methods("GET").Name("library")
	api.HandleFunc("/library/{id:[0-9]+}", h.GetLibraryItem).Methods("GET").Name("library-item")
	api.HandleFunc("/stats", h.GetStats).Methods("GET").Name("stats")

	return r
}

// buildHandler wraps the router in metrics, logging and compression, innermost first.
func buildHandler(router *mux.Router, config *startup.Config) http.Handler {
	var handler http.Handler = router
	if config.MetricsEnabled {
		metricsConfig := middleware.DefaultMetricsConfig()
		metricsConfig.Routes = router
		handler = middleware.Metrics(metricsConfig)(handler)
	}

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	return middleware.Compression(middleware.DefaultCompressionConfig())(handler)
}

func newServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func handleShutdown(srv *http.Server, idx *indexer.Indexer, collector *metrics.Collector, done chan<- struct{}) {
	defer close(done)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownStep("Stopping indexer")
	idx.Stop()
	startup.LogShutdownStepComplete("Indexer stopped")

	if collector != nil {
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}
}
