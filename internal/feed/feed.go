package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jusunglee/mta-traintimes/internal/models"
	"github.com/jusunglee/mta-traintimes/internal/store"
)

// ScanMode selects how feeds are probed
type ScanMode int

const (
	// ScanSequential probes one feed at a time in score order
	ScanSequential ScanMode = iota
	// ScanParallel probes several feeds at once and cancels the rest once both directions are found
	ScanParallel
)

// Options configures a Manager
type Options struct {
	Mode        ScanMode
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

// Manager scans feeds for arrivals and learns which feeds to probe first
type Manager struct {
	fetcher     Fetcher
	store       *store.Store
	mode        ScanMode
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

// NewManager creates a new feed manager
func NewManager(fetcher Fetcher, store *store.Store, opts Options) *Manager {
	m := &Manager{
		fetcher:     fetcher,
		store:       store,
		mode:        opts.Mode,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
		now:         opts.Now,
	}
	if m.concurrency < 1 {
		m.concurrency = 3
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// GetTrainTimes returns the upcoming arrivals at the uptown and downtown stops.
// A direction no feed has predictions for is left empty. Feeds that fail to
// download or decode are skipped. The only error returned is the context's.
func (m *Manager) GetTrainTimes(ctx context.Context, uptownStopID, downtownStopID string) (models.ScanResult, error) {
	order := m.store.Order()
	acc := newAccumulator()

	var err error
	if m.mode == ScanParallel {
		err = m.scanParallel(ctx, order, uptownStopID, downtownStopID, acc)
	} else {
		err = m.scanSequential(ctx, order, uptownStopID, downtownStopID, acc)
	}

	m.store.Record(acc.hits)

	m.logger.Debug("Scan complete",
		"uptown", uptownStopID,
		"downtown", downtownStopID,
		"probed", acc.probed,
		"order", m.store.Order(),
	)

	return acc.result, err
}

// Watch runs the query immediately and then on every tick until ctx is done
func (m *Manager) Watch(ctx context.Context, uptownStopID, downtownStopID string, interval time.Duration, fn func(models.ScanResult)) error {
	update := func() error {
		result, err := m.GetTrainTimes(ctx, uptownStopID, downtownStopID)
		if err != nil {
			return err
		}
		fn(result)
		return nil
	}

	if err := update(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := update(); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) scanSequential(ctx context.Context, order []models.FeedID, up, down string, acc *accumulator) error {
	for _, feed := range order {
		if err := ctx.Err(); err != nil {
			return err
		}

		acc.probed++
		partial, err := m.scanFeed(ctx, feed, up, down)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			m.logger.Warn("Skipping feed", "feed", feed, "error", err)
			continue
		}

		if acc.merge(feed, partial) {
			break
		}
	}
	return nil
}

func (m *Manager) scanParallel(ctx context.Context, order []models.FeedID, up, down string, acc *accumulator) error {
	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(scanCtx)
	g.SetLimit(m.concurrency)

	var mu sync.Mutex
	for _, feed := range order {
		feed := feed
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			mu.Lock()
			acc.probed++
			mu.Unlock()

			partial, err := m.scanFeed(gctx, feed, up, down)
			if err != nil {
				if gctx.Err() == nil {
					m.logger.Warn("Skipping feed", "feed", feed, "error", err)
				}
				return nil
			}

			mu.Lock()
			defer mu.Unlock()
			if acc.merge(feed, partial) {
				cancel()
			}
			return nil
		})
	}
	_ = g.Wait()

	return ctx.Err()
}

// scanFeed fetches, decodes and extracts a single feed
func (m *Manager) scanFeed(ctx context.Context, feed models.FeedID, up, down string) (models.ScanResult, error) {
	raw, err := m.fetcher.Fetch(ctx, feed)
	if err != nil {
		return models.ScanResult{}, err
	}

	entities, err := Decode(raw)
	if err != nil {
		var derr *DecodeError
		if errors.As(err, &derr) {
			derr.Feed = feed
		}
		return models.ScanResult{}, err
	}

	return ExtractArrivals(entities, up, down, m.now()), nil
}

// accumulator keeps the first non-empty result for each direction and
// credits the feed that produced it
type accumulator struct {
	result models.ScanResult
	hits   map[models.FeedID]int
	probed int
}

func newAccumulator() *accumulator {
	return &accumulator{
		result: models.NewScanResult(),
		hits:   make(map[models.FeedID]int),
	}
}

// merge reports whether both directions are now filled
func (a *accumulator) merge(feed models.FeedID, partial models.ScanResult) bool {
	if partial.HasUptown() && !a.result.HasUptown() {
		a.result.UptownTrainIDs = partial.UptownTrainIDs
		a.result.UptownMinutes = partial.UptownMinutes
		a.hits[feed]++
	}
	if partial.HasDowntown() && !a.result.HasDowntown() {
		a.result.DowntownTrainIDs = partial.DowntownTrainIDs
		a.result.DowntownMinutes = partial.DowntownMinutes
		a.hits[feed]++
	}
	return a.result.HasUptown() && a.result.HasDowntown()
}
