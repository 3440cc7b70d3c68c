package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/jusunglee/mta-traintimes/internal/feed"
	"github.com/jusunglee/mta-traintimes/internal/models"
)

// Scan modes accepted in the config file
const (
	ScanModeSequential = "sequential"
	ScanModeParallel   = "parallel"
)

// DefaultKeyFile is where the API key is read from when nothing else is configured
const DefaultKeyFile = "apikey.txt"

// Feed is one GTFS-realtime feed to probe
type Feed struct {
	ID   models.FeedID `yaml:"id" validate:"required"`
	Name string        `yaml:"name"`
}

// Config is the application configuration
type Config struct {
	Endpoint    string        `yaml:"endpoint" validate:"required,url"`
	KeyFile     string        `yaml:"key_file" validate:"required"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
	ScanMode    string        `yaml:"scan_mode" validate:"oneof=sequential parallel"`
	Concurrency int           `yaml:"concurrency" validate:"gte=1"`
	Feeds       []Feed        `yaml:"feeds" validate:"required,min=1,unique=ID,dive"`
}

// DefaultFeeds lists the subway feeds in their initial probe order
var DefaultFeeds = []Feed{
	{ID: "16", Name: "NQRW"},
	{ID: "21", Name: "BDFM"},
	{ID: "1", Name: "123456S"},
	{ID: "26", Name: "ACEH"},
	{ID: "2", Name: "L"},
	{ID: "31", Name: "G"},
	{ID: "36", Name: "JZ"},
	{ID: "51", Name: "7"},
	{ID: "11", Name: "SIR"},
}

// Default returns the configuration used when no config file is given
func Default() Config {
	feeds := make([]Feed, len(DefaultFeeds))
	copy(feeds, DefaultFeeds)
	return Config{
		Endpoint:    feed.DefaultEndpoint,
		KeyFile:     DefaultKeyFile,
		Timeout:     feed.DefaultTimeout,
		ScanMode:    ScanModeSequential,
		Concurrency: 3,
		Feeds:       feeds,
	}
}

// Load reads a YAML config file over the defaults and validates the result.
// An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FeedIDs returns the configured feed ids in order
func (c Config) FeedIDs() []models.FeedID {
	ids := make([]models.FeedID, len(c.Feeds))
	for i, entry := range c.Feeds {
		ids[i] = entry.ID
	}
	return ids
}

// Mode returns the scan mode the feed manager should run in
func (c Config) Mode() feed.ScanMode {
	if c.ScanMode == ScanModeParallel {
		return feed.ScanParallel
	}
	return feed.ScanSequential
}

// CredentialLoadError is returned when the API key cannot be read
type CredentialLoadError struct {
	Path string
	Err  error
}

func (e *CredentialLoadError) Error() string {
	return fmt.Sprintf("unable to read API key from file %s: %v", e.Path, e.Err)
}

func (e *CredentialLoadError) Unwrap() error {
	return e.Err
}

// LoadCredential reads the API key from a file, trimming trailing whitespace
func LoadCredential(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &CredentialLoadError{Path: path, Err: err}
	}
	key := strings.TrimRight(string(data), " \t\r\n")
	if key == "" {
		return "", &CredentialLoadError{Path: path, Err: errors.New("file is empty")}
	}
	return key, nil
}
