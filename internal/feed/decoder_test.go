package feed

import (
	"errors"
	"testing"

	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"github.com/jusunglee/mta-traintimes/internal/models"
)

func TestDecode(t *testing.T) {
	raw := buildFeed(t,
		testTrip{RouteID: "Q1", Stops: []testStop{{StopID: "Q03N", In: 89}, {StopID: "Q04N", In: 200}}},
		testTrip{RouteID: "N", Stops: []testStop{{StopID: "R16S", In: 60}}},
	)

	entities, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, entities, 2)

	tu, ok := entities[0].TripUpdate()
	require.True(t, ok)
	assert.Equal(t, "Q1", tu.RouteID())
	assert.Equal(t, []models.StopTimeUpdate{
		{StopID: "Q03N", RouteID: "Q1", ArrivalTime: testNow.Unix() + 89},
		{StopID: "Q04N", RouteID: "Q1", ArrivalTime: testNow.Unix() + 200},
	}, tu.StopTimeUpdates())

	tu, ok = entities[1].TripUpdate()
	require.True(t, ok)
	assert.Equal(t, "N", tu.RouteID())
	assert.Len(t, tu.StopTimeUpdates(), 1)
}

func TestDecodeEntityWithoutTripUpdate(t *testing.T) {
	raw, err := proto.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("1.0")},
		Entity: []*gtfs.FeedEntity{
			{
				Id:        proto.String("alert"),
				IsDeleted: proto.Bool(false),
			},
		},
	})
	require.NoError(t, err)

	entities, err := Decode(raw)
	require.NoError(t, err)
	require.Len(t, entities, 1)

	_, ok := entities[0].TripUpdate()
	assert.False(t, ok)
}

func TestDecodeDropsIncompleteStopTimeUpdates(t *testing.T) {
	departure := &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(testNow.Unix() + 120)}
	raw, err := proto.Marshal(&gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{GtfsRealtimeVersion: proto.String("1.0")},
		Entity: []*gtfs.FeedEntity{
			{
				Id: proto.String("1"),
				TripUpdate: &gtfs.TripUpdate{
					Trip: &gtfs.TripDescriptor{RouteId: proto.String("A")},
					StopTimeUpdate: []*gtfs.TripUpdate_StopTimeUpdate{
						// no stop id
						{Arrival: &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(testNow.Unix() + 60)}},
						// departure only
						{StopId: proto.String("A32N"), Departure: departure},
						// arrival without a time
						{StopId: proto.String("A32N"), Arrival: &gtfs.TripUpdate_StopTimeEvent{Delay: proto.Int32(30)}},
						{StopId: proto.String("A32S"), Arrival: &gtfs.TripUpdate_StopTimeEvent{Time: proto.Int64(testNow.Unix() + 180)}},
					},
				},
			},
		},
	})
	require.NoError(t, err)

	entities, err := Decode(raw)
	require.NoError(t, err)

	tu, ok := entities[0].TripUpdate()
	require.True(t, ok)
	assert.Equal(t, []models.StopTimeUpdate{
		{StopID: "A32S", RouteID: "A", ArrivalTime: testNow.Unix() + 180},
	}, tu.StopTimeUpdates())
}

func TestDecodeInvalidPayload(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"garbage", []byte("not a protobuf message")},
		{"truncated", []byte{0x0a, 0xff, 0xff}},
		// header is a required field
		{"empty", []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities, err := Decode(tt.raw)
			assert.Nil(t, entities)

			var derr *DecodeError
			require.True(t, errors.As(err, &derr), "expected DecodeError, got %v", err)
			assert.Error(t, derr.Unwrap())
		})
	}
}

func TestDecodeErrorMessage(t *testing.T) {
	err := &DecodeError{Feed: "16", Err: errors.New("boom")}
	assert.Equal(t, "decode feed 16: boom", err.Error())

	err = &DecodeError{Err: errors.New("boom")}
	assert.Equal(t, "decode feed message: boom", err.Error())
}
