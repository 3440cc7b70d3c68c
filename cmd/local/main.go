package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/jusunglee/mta-traintimes/internal/feed"
	"github.com/jusunglee/mta-traintimes/internal/models"
	"github.com/jusunglee/mta-traintimes/pkg/mta"
)

// Stops queried when none are given (Q03N/Q03S, 72 St on the Q)
const (
	defaultUptownStop   = "Q03N"
	defaultDowntownStop = "Q03S"
)

func main() {
	app := &cli.App{
		Name:      "traintimes",
		Usage:     "show minutes until the next trains at a subway station",
		ArgsUsage: "[uptown-stop-id downtown-stop-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.StringFlag{Name: "key-file", Usage: "file containing the MTA API key"},
			&cli.StringFlag{Name: "api-key", Usage: "MTA API key", EnvVars: []string{"MTA_API_KEY"}},
			&cli.BoolFlag{Name: "parallel", Usage: "probe several feeds at once"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
			&cli.DurationFlag{Name: "watch", Usage: "repeat the query at this interval until interrupted"},
			&cli.BoolFlag{Name: "verbose", Usage: "log every feed probe"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("traintimes failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	uptown, downtown := defaultUptownStop, defaultDowntownStop
	switch c.NArg() {
	case 0:
	case 2:
		uptown, downtown = c.Args().Get(0), c.Args().Get(1)
	default:
		return cli.Exit("expected an uptown and a downtown stop id", 2)
	}

	level := slog.LevelWarn
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

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

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	show := func(result models.ScanResult) {
		if err := printResult(os.Stdout, uptown, downtown, result, c.Bool("json")); err != nil {
			logger.Error("Failed to print result", "error", err)
		}
	}

	if interval := c.Duration("watch"); interval > 0 {
		err := client.Watch(ctx, uptown, downtown, interval, show)
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	result, err := client.GetTrainTimes(ctx, uptown, downtown)
	if err != nil {
		return err
	}
	show(result)
	return nil
}

func printResult(w io.Writer, uptown, downtown string, result models.ScanResult, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(result)
	}
	_, err := fmt.Fprintf(w, "Uptown (%s):   %s\nDowntown (%s): %s\n",
		uptown, formatArrivals(result.Uptown()),
		downtown, formatArrivals(result.Downtown()))
	return err
}

func formatArrivals(arrivals []models.Arrival) string {
	if len(arrivals) == 0 {
		return "no predictions"
	}
	parts := make([]string, len(arrivals))
	for i, a := range arrivals {
		parts[i] = fmt.Sprintf("%s %d min", a.TrainID, a.Minutes)
	}
	return strings.Join(parts, ", ")
}
