package mta

import (
	"context"
	"errors"
	"time"

	"github.com/jusunglee/mta-traintimes/internal/config"
	"github.com/jusunglee/mta-traintimes/internal/feed"
	"github.com/jusunglee/mta-traintimes/internal/models"
	"github.com/jusunglee/mta-traintimes/internal/store"
)

// LocalClient implements the Client interface by querying the MTA feeds directly.
// Feed scores are kept in memory for the lifetime of the client.
type LocalClient struct {
	store       *store.Store
	feedManager *feed.Manager
}

// NewLocal creates a new local MTA client
func NewLocal(cfg Config) (*LocalClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("MTA API key required")
	}
	feeds := cfg.Feeds
	if len(feeds) == 0 {
		feeds = config.DefaultFeeds
	}

	ids := make([]models.FeedID, len(feeds))
	for i, f := range feeds {
		ids[i] = f.ID
	}
	s := store.NewStore(ids)
	for _, f := range feeds {
		if f.Name != "" {
			s.SetName(f.ID, f.Name)
		}
	}

	fetcher := feed.NewHTTPFetcher(cfg.Endpoint, cfg.APIKey, cfg.Timeout)
	fm := feed.NewManager(fetcher, s, feed.Options{
		Mode:        cfg.Mode,
		Concurrency: cfg.Concurrency,
		Logger:      cfg.Logger,
	})

	return &LocalClient{
		store:       s,
		feedManager: fm,
	}, nil
}

func (c *LocalClient) GetTrainTimes(ctx context.Context, uptownStopID, downtownStopID string) (models.ScanResult, error) {
	return c.feedManager.GetTrainTimes(ctx, uptownStopID, downtownStopID)
}

func (c *LocalClient) GetFeedScores() []models.FeedScore {
	return c.store.Scores()
}

// Watch repeats the query every interval until ctx is done
func (c *LocalClient) Watch(ctx context.Context, uptownStopID, downtownStopID string, interval time.Duration, fn func(models.ScanResult)) error {
	return c.feedManager.Watch(ctx, uptownStopID, downtownStopID, interval, fn)
}
