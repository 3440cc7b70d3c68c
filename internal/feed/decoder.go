package feed

import (
	"fmt"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/jusunglee/mta-traintimes/internal/models"
)

// Entity is one top-level record of a decoded feed
type Entity interface {
	TripUpdate() (TripUpdate, bool)
}

// TripUpdate is the predicted run of a single train
type TripUpdate interface {
	RouteID() string
	StopTimeUpdates() []models.StopTimeUpdate
}

// DecodeError is returned when a payload is not a valid GTFS-realtime FeedMessage
type DecodeError struct {
	Feed models.FeedID
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Feed == "" {
		return fmt.Sprintf("decode feed message: %v", e.Err)
	}
	return fmt.Sprintf("decode feed %s: %v", e.Feed, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type entity struct {
	trip *tripUpdate
}

func (e entity) TripUpdate() (TripUpdate, bool) {
	if e.trip == nil {
		return nil, false
	}
	return e.trip, true
}

type tripUpdate struct {
	routeID string
	updates []models.StopTimeUpdate
}

func (t *tripUpdate) RouteID() string {
	return t.routeID
}

func (t *tripUpdate) StopTimeUpdates() []models.StopTimeUpdate {
	return t.updates
}

// Decode parses a raw FeedMessage into entities, in feed order.
// Stop time updates without a stop id or an arrival time are dropped.
func Decode(raw []byte) ([]Entity, error) {
	msg := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(raw, msg); err != nil {
		return nil, &DecodeError{Err: err}
	}

	entities := make([]Entity, 0, len(msg.GetEntity()))
	for _, e := range msg.GetEntity() {
		entities = append(entities, convertEntity(e))
	}
	return entities, nil
}

func convertEntity(e *gtfs.FeedEntity) entity {
	tu := e.GetTripUpdate()
	if tu == nil {
		return entity{}
	}

	routeID := tu.GetTrip().GetRouteId()
	t := &tripUpdate{
		routeID: routeID,
		updates: make([]models.StopTimeUpdate, 0, len(tu.GetStopTimeUpdate())),
	}
	for _, stu := range tu.GetStopTimeUpdate() {
		if stu.StopId == nil || stu.GetArrival() == nil || stu.GetArrival().Time == nil {
			continue
		}
		t.updates = append(t.updates, models.StopTimeUpdate{
			StopID:      stu.GetStopId(),
			RouteID:     routeID,
			ArrivalTime: stu.GetArrival().GetTime(),
		})
	}
	return entity{trip: t}
}
