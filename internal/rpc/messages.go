package rpc

import (
	"time"

	"uavdeconfliction/internal/suggest"
	"uavdeconfliction/models"
)

// SubmitRequest carries a proposed mission for a single drone.
type SubmitRequest struct {
	DroneID   int64             `json:"drone_id"`
	Waypoints []models.Waypoint `json:"waypoints"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
}

// SubmitResponse reports whether the mission was committed, and if not,
// why and with what alternatives.
type SubmitResponse struct {
	Accepted    bool                 `json:"accepted"`
	MissionID   string               `json:"mission_id,omitempty"`
	Conflicts   []models.Conflict    `json:"conflicts,omitempty"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
}

// QueryRequest asks for every committed trajectory overlapping a window.
type QueryRequest struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// QueryResponse carries the committed trajectories keyed by drone ID, in
// the local ENU frame the engine operates on, alongside the same samples
// converted back to geodetic coordinates for external dashboards and pilots.
type QueryResponse struct {
	Trajectories map[int64]models.Trajectory `json:"trajectories"`
	Geodetic     map[int64][]GeodeticFix     `json:"geodetic,omitempty"`
}

// GeodeticFix is one trajectory sample expressed in geodetic coordinates.
type GeodeticFix struct {
	Timestamp time.Time `json:"timestamp"`
	LatDeg    float64   `json:"lat_deg"`
	LngDeg    float64   `json:"lng_deg"`
	AltMeters float64   `json:"alt_meters"`
}

// ReportPositionRequest carries a drone's latest GPS fix, the one path by
// which a drone's last known position enters the system.
type ReportPositionRequest struct {
	DroneID    int64     `json:"drone_id"`
	FleetLabel string    `json:"fleet_label,omitempty"`
	LatDeg     float64   `json:"lat_deg"`
	LngDeg     float64   `json:"lng_deg"`
	AltMeters  float64   `json:"alt_meters"`
	Timestamp  time.Time `json:"timestamp"`
}

// ReportPositionResponse is empty; success is the absence of an error.
type ReportPositionResponse struct{}

// EmergencyClearRequest names the drone whose committed trajectory should
// be forgotten without commanding the drone itself.
type EmergencyClearRequest struct {
	DroneID int64 `json:"drone_id"`
}

// EmergencyClearResponse is empty; success is the absence of an error.
type EmergencyClearResponse struct{}

// AlertStreamRequest has no fields today; it exists so the RPC surface can
// grow a filter (e.g. by drone ID) without an incompatible wire change.
type AlertStreamRequest struct{}
