package feed

import (
	"sort"
	"time"

	"github.com/jusunglee/mta-traintimes/internal/models"
)

// direction accumulates arrivals for one platform, first arrival per minute wins
type direction struct {
	arrivals []models.Arrival
	seen     map[int]bool
}

func newDirection() *direction {
	return &direction{seen: make(map[int]bool)}
}

func (d *direction) add(trainID string, minutes int) {
	if d.seen[minutes] {
		return
	}
	d.seen[minutes] = true
	d.arrivals = append(d.arrivals, models.Arrival{TrainID: trainID, Minutes: minutes})
}

func (d *direction) sorted() []models.Arrival {
	sort.SliceStable(d.arrivals, func(i, j int) bool {
		return d.arrivals[i].Minutes < d.arrivals[j].Minutes
	})
	return d.arrivals
}

// ExtractArrivals collects the arrivals at the uptown and downtown stops,
// expressed in minutes from now
func ExtractArrivals(entities []Entity, uptownStopID, downtownStopID string, now time.Time) models.ScanResult {
	uptown, downtown := newDirection(), newDirection()
	nowUnix := now.Unix()

	for _, e := range entities {
		tu, ok := e.TripUpdate()
		if !ok {
			continue
		}
		for _, u := range tu.StopTimeUpdates() {
			if u.StopID != uptownStopID && u.StopID != downtownStopID {
				continue
			}

			// Already departed
			elapsed := u.ArrivalTime - nowUnix
			if elapsed < 0 {
				continue
			}

			minutes := roundMinutes(elapsed)
			if minutes == 0 {
				continue
			}

			trainID := extractTrainID(u.RouteID)
			if u.StopID == uptownStopID {
				uptown.add(trainID, minutes)
			}
			if u.StopID == downtownStopID {
				downtown.add(trainID, minutes)
			}
		}
	}

	result := models.NewScanResult()
	result.SetUptown(uptown.sorted())
	result.SetDowntown(downtown.sorted())
	return result
}

// roundMinutes rounds a non-negative number of seconds to the nearest minute.
// A remainder of exactly 30 seconds rounds down.
func roundMinutes(seconds int64) int {
	minutes := seconds / 60
	if seconds%60 > 30 {
		minutes++
	}
	return int(minutes)
}

// extractTrainID returns the line a route belongs to, e.g. "6X" -> "6"
func extractTrainID(routeID string) string {
	if routeID == "" {
		return ""
	}
	return routeID[:1]
}
