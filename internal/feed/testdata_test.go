package feed

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/jusunglee/mta-traintimes/internal/models"
)

// Fixed clock so arrival offsets are exact
var testNow = time.Date(2024, 12, 1, 8, 0, 0, 0, time.UTC)

type testStop struct {
	StopID string
	// Offset from testNow in seconds
	In int64
}

type testTrip struct {
	RouteID string
	Stops   []testStop
}

// buildFeed serialises trips into a GTFS-realtime FeedMessage
func buildFeed(t *testing.T, trips ...testTrip) []byte {
	t.Helper()

	entities := make([]*gtfs.FeedEntity, 0, len(trips))
	for i, trip := range trips {
		updates := make([]*gtfs.TripUpdate_StopTimeUpdate, 0, len(trip.Stops))
		for _, s := range trip.Stops {
			updates = append(updates, &gtfs.TripUpdate_StopTimeUpdate{
				StopId: proto.String(s.StopID),
				Arrival: &gtfs.TripUpdate_StopTimeEvent{
					Time: proto.Int64(testNow.Unix() + s.In),
				},
			})
		}
		entities = append(entities, &gtfs.FeedEntity{
			Id: proto.String(fmt.Sprintf("%06d_%s", i, trip.RouteID)),
			TripUpdate: &gtfs.TripUpdate{
				Trip: &gtfs.TripDescriptor{
					RouteId: proto.String(trip.RouteID),
				},
				StopTimeUpdate: updates,
			},
		})
	}

	data, err := proto.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("1.0"),
			Timestamp:           proto.Uint64(uint64(testNow.Unix())),
		},
		Entity: entities,
	})
	require.NoError(t, err)
	return data
}

// decodeFeed builds and decodes trips in one step
func decodeFeed(t *testing.T, trips ...testTrip) []Entity {
	t.Helper()
	entities, err := Decode(buildFeed(t, trips...))
	require.NoError(t, err)
	return entities
}

// fakeFetcher serves canned payloads and records which feeds were requested
type fakeFetcher struct {
	mu       sync.Mutex
	payloads map[models.FeedID][]byte
	errs     map[models.FeedID]error
	delays   map[models.FeedID]time.Duration
	calls    []models.FeedID
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		payloads: make(map[models.FeedID][]byte),
		errs:     make(map[models.FeedID]error),
		delays:   make(map[models.FeedID]time.Duration),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, feed models.FeedID) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, feed)
	delay := f.delays[feed]
	payload, hasPayload := f.payloads[feed]
	err := f.errs[feed]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !hasPayload {
		// A well-formed feed with no trips
		return emptyFeed, nil
	}
	return payload, nil
}

func (f *fakeFetcher) Calls() []models.FeedID {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]models.FeedID, len(f.calls))
	copy(result, f.calls)
	return result
}

func (f *fakeFetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

var emptyFeed = func() []byte {
	data, err := proto.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("1.0")},
	})
	if err != nil {
		panic(err)
	}
	return data
}()
