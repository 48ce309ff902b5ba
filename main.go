package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gitlab.uncharted.software/WM/wm-ingest-queue/api"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/dispatch"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/ingest"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/queue"
	"gitlab.uncharted.software/WM/wm-ingest-queue/api/store"
	"gitlab.uncharted.software/WM/wm-ingest-queue/config"
)

const envFile = "wm.env"

var (
	// populated at compile time based on data injected by the makefile
	version   = "unset"
	timestamp = "unset"
)

func main() {
	// Load environment
	env, err := config.Load(envFile)
	if err != nil {
		log.Fatal(err)
	}

	// Setup logging
	var logger *zap.Logger
	switch env.Mode {
	case "dev":
		logger, err = zap.NewDevelopment()
	case "prod":
		logger, err = zap.NewProduction()

	default:
		err = fmt.Errorf("Invalid 'mode' flag: %s", env.Mode)
	}
	if err != nil {
		log.Fatal(err)
	}

	defer func() {
		_ = logger.Sync()
	}()
	sugar := logger.Sugar()

	cfg := config.Config{
		Logger:      sugar,
		Environment: env,
	}

	// Log version
	sugar.Infof("Version: %s Timestamp: %s", version, timestamp)

	// Log config
	sugar.Info(env)

	// Setup the status store
	var statusStore store.StatusStore
	if env.StatusStorePersisted {
		statusStore, err = store.NewBoltStore(env.StatusStoreDir, env.StatusStoreName)
		if err != nil {
			sugar.Fatal(err)
		}
		sugar.Infof("Loaded status store from %s%s", env.StatusStoreDir, env.StatusStoreName)
	} else {
		// in-memory store, data does not survive a restart
		statusStore = store.NewMemoryStore()
	}

	// Setup the batch queue and the dead letter queue
	batchQueue := queue.NewPriorityQueue()
	deadLetter, err := queue.NewDeadLetterQueue(env.DeadLetterDir, env.DeadLetterName)
	if err != nil {
		sugar.Fatal(err)
	}
	if size := deadLetter.Size(); size > 0 {
		sugar.Infof("Dead letter queue holds %d failed batches from previous runs", size)
	}

	// Setup the downstream processor
	var processor dispatch.Processor
	switch env.ProcessorBackend {
	case config.ProcessorSimulated:
		processor = dispatch.NewSimulatedProcessor(time.Duration(env.ProcessorDelayMs) * time.Millisecond)
	case config.ProcessorHTTP:
		processor = dispatch.NewHTTPProcessor(env.ProcessorAddr, time.Duration(env.ProcessorTimeoutSec)*time.Second)
	case config.ProcessorGraphQL:
		processor = dispatch.NewGraphQLProcessor(env.ProcessorAddr, time.Duration(env.ProcessorTimeoutSec)*time.Second)
	default:
		sugar.Fatalf("Invalid 'processor backend' flag: %s", env.ProcessorBackend)
	}

	// One limiter shared by all dispatch workers keeps the downstream
	// submission rate global
	limiter := rate.NewLimiter(rate.Every(time.Duration(env.DispatchRateLimitSec)*time.Second), 1)

	// Setup the dispatcher and the ingest facade
	dispatcher := dispatch.NewBatchDispatcher(&cfg, batchQueue, statusStore, processor, limiter, deadLetter)
	ingestService := ingest.NewService(&cfg, batchQueue, statusStore)

	// Setup router
	r, err := api.NewRouter(cfg, ingestService, batchQueue, dispatcher, deadLetter)
	if err != nil {
		sugar.Fatal(err)
	}

	// Start servicing the queue
	dispatcher.Start()

	// Start listening
	server := &http.Server{Addr: env.Addr, Handler: r}
	go func() {
		sugar.Infof("Listening on %s", env.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatal(err)
		}
	}()

	// Block until we get shut down, then stop accepting requests before
	// stopping the workers and closing the stores
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		sugar.Errorf("failed to shut down http server: %+v", err)
	}
	dispatcher.Stop()
	if err := batchQueue.Close(); err != nil {
		sugar.Errorf("failed to close batch queue: %+v", err)
	}
	if err := deadLetter.Close(); err != nil {
		sugar.Errorf("failed to close dead letter queue: %+v", err)
	}
	if err := statusStore.Close(); err != nil {
		sugar.Errorf("failed to close status store: %+v", err)
	}
}
