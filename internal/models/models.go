package models

// FeedID names one upstream GTFS-realtime feed (the MTA "feed_id" parameter)
type FeedID string

// StopTimeUpdate is one predicted arrival of a train at a stop
type StopTimeUpdate struct {
	StopID      string
	RouteID     string
	ArrivalTime int64
}

// Arrival represents a train arriving in a number of whole minutes
type Arrival struct {
	TrainID string `json:"train"`
	Minutes int    `json:"minutes"`
}

// ScanResult holds arrivals for both platforms of a station.
// TrainIDs and Minutes are paired by position and sorted by Minutes.
type ScanResult struct {
	UptownTrainIDs   []string `json:"uptown_trains"`
	UptownMinutes    []int    `json:"uptown_minutes"`
	DowntownTrainIDs []string `json:"downtown_trains"`
	DowntownMinutes  []int    `json:"downtown_minutes"`
}

// NewScanResult returns a result with both directions empty
func NewScanResult() ScanResult {
	return ScanResult{
		UptownTrainIDs:   []string{},
		UptownMinutes:    []int{},
		DowntownTrainIDs: []string{},
		DowntownMinutes:  []int{},
	}
}

// HasUptown reports whether any uptown arrival was found
func (r ScanResult) HasUptown() bool {
	return len(r.UptownMinutes) > 0
}

// HasDowntown reports whether any downtown arrival was found
func (r ScanResult) HasDowntown() bool {
	return len(r.DowntownMinutes) > 0
}

// Uptown returns the uptown arrivals as pairs
func (r ScanResult) Uptown() []Arrival {
	return pairs(r.UptownTrainIDs, r.UptownMinutes)
}

// Downtown returns the downtown arrivals as pairs
func (r ScanResult) Downtown() []Arrival {
	return pairs(r.DowntownTrainIDs, r.DowntownMinutes)
}

// SetUptown replaces the uptown direction with the given arrivals
func (r *ScanResult) SetUptown(arrivals []Arrival) {
	r.UptownTrainIDs, r.UptownMinutes = split(arrivals)
}

// SetDowntown replaces the downtown direction with the given arrivals
func (r *ScanResult) SetDowntown(arrivals []Arrival) {
	r.DowntownTrainIDs, r.DowntownMinutes = split(arrivals)
}

func pairs(ids []string, minutes []int) []Arrival {
	result := make([]Arrival, len(minutes))
	for i := range minutes {
		result[i] = Arrival{TrainID: ids[i], Minutes: minutes[i]}
	}
	return result
}

func split(arrivals []Arrival) ([]string, []int) {
	ids := make([]string, len(arrivals))
	minutes := make([]int, len(arrivals))
	for i, a := range arrivals {
		ids[i] = a.TrainID
		minutes[i] = a.Minutes
	}
	return ids, minutes
}

// FeedScore is a snapshot of one feed's hit count
type FeedScore struct {
	Feed  FeedID `json:"feed"`
	Name  string `json:"name,omitempty"`
	Score int    `json:"score"`
}
