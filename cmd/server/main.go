package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/cli/v2"

	"github.com/jusunglee/mta-traintimes/api/handlers"
	"github.com/jusunglee/mta-traintimes/internal/feed"
	"github.com/jusunglee/mta-traintimes/pkg/mta"
)

func main() {
	app := &cli.App{
		Name:  "traintimes-server",
		Usage: "serve subway arrival times over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Value: "8080", Usage: "server port", EnvVars: []string{"PORT"}},
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.StringFlag{Name: "key-file", Usage: "file containing the MTA API key"},
			&cli.StringFlag{Name: "api-key", Usage: "MTA API key", EnvVars: []string{"MTA_API_KEY"}},
			&cli.BoolFlag{Name: "parallel", Usage: "probe several feeds at once"},
		},
		Action: serve,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := mta.LoadConfig(c.String("config"), c.String("key-file"), c.String("api-key"))
	if err != nil {
		return err
	}
	cfg.Logger = logger
	if c.Bool("parallel") {
		cfg.Mode = feed.ScanParallel
	}

	client, err := mta.NewLocal(cfg)
	if err != nil {
		return fmt.Errorf("create MTA client: %w", err)
	}

	r := mux.NewRouter()
	h := handlers.NewHandler(client, logger)
	h.RegisterRoutes(r)

	r.Use(loggingMiddleware(logger))
	r.Use(corsMiddleware)

	// A worst-case scan probes every feed, each bounded by the fetch timeout
	writeTimeout := time.Duration(len(cfg.Feeds))*cfg.Timeout + 5*time.Second

	srv := &http.Server{
		Addr:         ":" + c.String("port"),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "port", c.String("port"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("Request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
