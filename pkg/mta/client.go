package mta

import (
	"context"
	"log/slog"
	"time"

	"github.com/jusunglee/mta-traintimes/internal/config"
	"github.com/jusunglee/mta-traintimes/internal/feed"
	"github.com/jusunglee/mta-traintimes/internal/models"
)

// Client defines the interface for querying train arrival times
type Client interface {
	// GetTrainTimes returns the upcoming arrivals at a station's uptown and
	// downtown platforms. Directions without predictions are empty.
	GetTrainTimes(ctx context.Context, uptownStopID, downtownStopID string) (models.ScanResult, error)

	// GetFeedScores returns every feed with its hit count, in probe order
	GetFeedScores() []models.FeedScore
}

// Config holds configuration for the MTA client
// APIKey required for accessing MTA's GTFS-RT feeds
type Config struct {
	APIKey      string
	Endpoint    string
	Timeout     time.Duration
	Feeds       []config.Feed
	Mode        feed.ScanMode
	Concurrency int
	Logger      *slog.Logger
}

// DefaultConfig returns default configuration
func DefaultConfig() Config {
	return FromFile(config.Default())
}

// LoadConfig loads the config file at configPath (defaults when empty) and
// resolves the API key. An explicit apiKey wins; otherwise the key is read
// from keyFile, or from the config file's key_file when keyFile is empty.
func LoadConfig(configPath, keyFile, apiKey string) (Config, error) {
	fileCfg, err := config.Load(configPath)
	if err != nil {
		return Config{}, err
	}

	cfg := FromFile(fileCfg)
	if apiKey != "" {
		cfg.APIKey = apiKey
		return cfg, nil
	}

	if keyFile == "" {
		keyFile = fileCfg.KeyFile
	}
	cfg.APIKey, err = config.LoadCredential(keyFile)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromFile builds a client configuration from a loaded config file.
// The API key still has to be set.
func FromFile(cfg config.Config) Config {
	return Config{
		Endpoint:    cfg.Endpoint,
		Timeout:     cfg.Timeout,
		Feeds:       cfg.Feeds,
		Mode:        cfg.Mode(),
		Concurrency: cfg.Concurrency,
	}
}
