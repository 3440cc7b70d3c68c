package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/jusunglee/mta-traintimes/internal/models"
)

// DefaultEndpoint is the MTA real-time data endpoint
const DefaultEndpoint = "http://datamine.mta.info/mta_esi.php"

// DefaultTimeout bounds a single feed request
const DefaultTimeout = 30 * time.Second

// Fetcher retrieves the raw payload of a feed
type Fetcher interface {
	Fetch(ctx context.Context, feed models.FeedID) ([]byte, error)
}

// NetworkError is returned when a feed could not be retrieved
type NetworkError struct {
	Feed       models.FeedID
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("fetch feed %s: HTTP %d", e.Feed, e.StatusCode)
	case e.Timeout:
		return fmt.Sprintf("fetch feed %s: timeout: %v", e.Feed, e.Err)
	default:
		return fmt.Sprintf("fetch feed %s: %v", e.Feed, e.Err)
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPFetcher fetches feeds from the MTA endpoint using an API key
type HTTPFetcher struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher; a zero timeout uses DefaultTimeout
func NewHTTPFetcher(endpoint, apiKey string, timeout time.Duration) *HTTPFetcher {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPFetcher{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads one feed
func (f *HTTPFetcher) Fetch(ctx context.Context, feed models.FeedID) ([]byte, error) {
	u, err := url.Parse(f.endpoint)
	if err != nil {
		return nil, &NetworkError{Feed: feed, Err: err}
	}
	q := u.Query()
	q.Set("key", f.apiKey)
	q.Set("feed_id", string(feed))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &NetworkError{Feed: feed, Err: redact(err)}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Feed: feed, Timeout: isTimeout(err), Err: redact(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Feed: feed, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Feed: feed, Timeout: isTimeout(err), Err: redact(err)}
	}
	return body, nil
}

// redact strips the request URL, which carries the API key, from an error
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
