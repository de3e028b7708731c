package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tasklist/internal/config"
	"tasklist/internal/handlers"
	"tasklist/internal/logger"
	"tasklist/internal/store"
)

func main() {
	os.Exit(run())
}

// run wires the process and returns its exit status. Cleanup happens in
// defers here, so main's os.Exit never skips it.
func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Usage = usage
	flag.Parse()

	// Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 2
	}

	args := flag.Args()
	serveMode := len(args) == 0 || args[0] == "serve"

	// Commands print their result on stdout; keep log records off it.
	var logOut io.Writer = os.Stderr
	if serveMode {
		logOut = os.Stdout
	}
	log, logCloser := logger.New(cfg.Log, logOut)
	defer logCloser.Close()
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	s, err := store.Open(ctx, cfg.StoreConfig(), log)
	if err != nil {
		log.Error("failed to initialize store", "error", err, "kind", store.KindOf(err), "driver", cfg.Store.Driver)
		return 1
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Error("failed to close store", "error", err)
		}
	}()

	if serveMode {
		if err := serve(ctx, cfg, s, log); err != nil {
			log.Error("server failed", "error", err)
			return 1
		}
		return 0
	}

	if err := runCommand(ctx, s, args, os.Stdout, log); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg config.Config, s store.Store, log *slog.Logger) error {
	h := handlers.New(s, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", "http://localhost"+cfg.Addr(), "driver", cfg.Store.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: tasklist [-config FILE] [command]

Commands:
  serve                 run the HTTP API (default)
  list                  print all tasks
  add TITLE             append a task
  rename N TITLE        retitle the task in row N
  remove N              delete the task in row N

Flags:
`)
	flag.PrintDefaults()
}
