// Command devserver runs the in-memory fake backend on a fixed address so
// the CLI can be tried without the real service. Accounts live only as
// long as the process.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/scubelic/llmwatcher/internal/backendtest"
	"github.com/scubelic/llmwatcher/internal/logging"
)

func main() {

	addr := flag.String("a", "127.0.0.1:8000", "listen address")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := logging.New(os.Stdout, *level, "json")

	backend := backendtest.NewBackend()
	backend.SetLogger(logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(shutdownCtx, "shutdown", "error", err)
		}
	}()

	logger.Info(ctx, "Starting dev backend...", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("%v", err)
	}
}
