package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidfetch/config"
	"vidfetch/delivery"
	"vidfetch/failures"
	"vidfetch/logger"
	"vidfetch/routes"
	"vidfetch/scratch"
	"vidfetch/success"
	"vidfetch/upstream"
)

func main() {
	if err := initLogger(config.GetLogFile(), true, config.GetLogLevel()); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()
	logger.Info("Starting vidfetch server initialization")

	if err := os.MkdirAll(config.GetDataDir(), 0755); err != nil {
		logger.Fatalf("Failed to create data dir %s: %v", config.GetDataDir(), err)
	}

	// Initialize failure journal
	logger.Debug("Initializing failures database")
	if err := failures.Init(config.GetFailuresDBPath()); err != nil {
		logger.Fatalf("Failed to initialize failure store: %v", err)
	}
	defer failures.Close()
	logger.Info("Failures database initialized successfully")

	// Initialize success journal
	logger.Debug("Initializing success database")
	if err := success.Init(config.GetSuccessDBPath()); err != nil {
		logger.Fatalf("Failed to initialize success store: %v", err)
	}
	defer success.Close()
	logger.Info("Success database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel() // stops the cleanup routine when main exits

	backend := config.GetScratchBackend()
	store, err := scratch.Open(ctx, backend, config.GetScratchAccessInfo())
	if err != nil {
		logger.Fatalf("Failed to open scratch backend: %v", err)
	}
	defer store.Close()
	logger.Infof("Scratch backend %s initialized", backend)

	client := upstream.NewYouTube(http.DefaultClient, config.GetUpstreamTimeout())
	svc := delivery.NewService(client, store)

	logger.Info("Starting cleanup routine (runs every 24 hours)")
	go cleanupRoutine(ctx, config.GetJournalRetention())

	server := &http.Server{
		Addr:              config.GetListenAddr(),
		Handler:           routes.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.Fatalf("Server failed to start: %v", err)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	logger.Infof("vidfetch server listening on %s", ln.Addr())
	if err := serve(server, ln, sigs, 30*time.Second); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}

// initLogger sets up logging at levelName. An unknown name falls back to
// DEBUG and is reported once the logger is up.
func initLogger(file string, console bool, levelName string) error {
	level, levelErr := logger.ParseLevel(levelName)
	if levelErr != nil {
		level = logger.DEBUG
	}
	if err := logger.InitWithLevel(file, console, level); err != nil {
		return err
	}
	if levelErr != nil {
		logger.Warnf("Ignoring VIDFETCH_LOG_LEVEL: %v; using %s", levelErr, level)
	}
	return nil
}

// serve runs server on ln until stop fires. It returns only after Shutdown
// has drained in-flight requests, so deferred journal and scratch closes in
// main never run under a live handler.
func serve(server *http.Server, ln net.Listener, stop <-chan os.Signal, grace time.Duration) error {
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sig := <-stop
		logger.Infof("Received %s, shutting down", sig)

		ctx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Errorf("Graceful shutdown failed: %v", err)
		}
	}()

	if err := server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-shutdownDone
	return nil
}

// cleanupRoutine periodically drops journal records older than maxAge
func cleanupRoutine(ctx context.Context, maxAge time.Duration) {
	logger.Info("Cleanup routine started - will run every 24 hours")
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped due to context cancellation")
			return
		case <-ticker.C:
			runCleanup(maxAge)
		}
	}
}

func runCleanup(maxAge time.Duration) {
	logger.Infof("Running scheduled cleanup of records older than %v", maxAge)

	if n, err := success.CleanupOldRecords(maxAge); err != nil {
		logger.Errorf("Failed to cleanup old success records: %v", err)
	} else {
		logger.Infof("Removed %d old success records", n)
	}

	if n, err := failures.CleanupOldRecords(maxAge); err != nil {
		logger.Errorf("Failed to cleanup old failure records: %v", err)
	} else {
		logger.Infof("Removed %d old failure records", n)
	}
}
