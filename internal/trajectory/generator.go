// Package trajectory turns a waypoint list plus time window into a dense
// time-stamped 4D position sequence (C1 of the deconfliction engine).
package trajectory

import (
	"errors"
	"fmt"
	"time"

	"uavdeconfliction/internal/geo"
	"uavdeconfliction/models"
)

// ErrInvalidWindow is returned when end_time <= start_time.
var ErrInvalidWindow = errors.New("trajectory: end_time must be after start_time")

// ErrEmptyWaypoints is returned when the waypoint list is empty.
var ErrEmptyWaypoints = errors.New("trajectory: waypoint list must not be empty")

// DefaultTimeResolution is τ, the inter-sample spacing.
const DefaultTimeResolution = 100 * time.Millisecond

// Generator produces Trajectories from waypoint lists. The zero value is
// ready to use and applies DefaultTimeResolution.
type Generator struct {
	// TimeResolution is τ. Zero means DefaultTimeResolution.
	TimeResolution time.Duration
}

func (g Generator) resolution() time.Duration {
	if g.TimeResolution <= 0 {
		return DefaultTimeResolution
	}
	return g.TimeResolution
}

// Generate interpolates origin + waypoints across [start, end] into a
// strictly time-monotone Trajectory. The first sample always equals
// origin at start; the last sample equals the final waypoint at end,
// exactly. When origin and every waypoint coincide (zero total distance),
// the Trajectory is a single sample: origin at start.
func (g Generator) Generate(droneID int64, origin models.Position, waypoints []models.Waypoint, start, end time.Time) (models.Trajectory, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: start=%s end=%s", ErrInvalidWindow, start, end)
	}
	if len(waypoints) == 0 {
		return nil, ErrEmptyWaypoints
	}

	points := append([]models.Position{origin}, waypoints...)
	legDistances := make([]float64, len(points)-1)
	total := 0.0
	for i := 0; i < len(points)-1; i++ {
		d := geo.Distance3D(points[i].X, points[i].Y, points[i].Z, points[i+1].X, points[i+1].Y, points[i+1].Z)
		legDistances[i] = d
		total += d
	}

	if total == 0 {
		return models.Trajectory{{
			DroneID:      droneID,
			Timestamp:    start,
			Position:     origin,
			SegmentIndex: 0,
			IsWaypoint:   true,
		}}, nil
	}

	window := end.Sub(start)
	tau := g.resolution()

	var out models.Trajectory
	legStart := start
	for i, d := range legDistances {
		legShare := d / total
		legDuration := time.Duration(float64(window) * legShare)
		last := i == len(legDistances)-1
		legEnd := legStart.Add(legDuration)
		if last {
			// The final leg's terminal sample must land exactly on end,
			// regardless of any rounding in the proportional allocation.
			legEnd = end
			legDuration = legEnd.Sub(legStart)
		}
		if legDuration <= 0 {
			// A zero-length leg (a repeated point) takes no time: a sample
			// for it would repeat the previous sample's timestamp.
			legStart = legEnd
			continue
		}

		samples := int(legDuration / tau)
		if samples < 1 {
			samples = 1
		}
		nSteps := samples // number of samples beyond the leg's start point

		from, to := points[i], points[i+1]
		for s := 1; s <= nSteps; s++ {
			frac := float64(s) / float64(nSteps)
			ts := legStart.Add(time.Duration(float64(legDuration) * frac))
			if s == nSteps {
				ts = legEnd
			}
			pos := models.Position{
				X: from.X + (to.X-from.X)*frac,
				Y: from.Y + (to.Y-from.Y)*frac,
				Z: from.Z + (to.Z-from.Z)*frac,
			}
			out = append(out, models.TrajectoryPoint{
				DroneID:      droneID,
				Timestamp:    ts,
				Position:     pos,
				SegmentIndex: i,
				IsWaypoint:   s == nSteps,
			})
		}
		legStart = legEnd
	}

	// Prepend the origin sample unless the first leg already produced it
	// (it never does: legs always start interpolating at frac>0).
	head := models.TrajectoryPoint{
		DroneID:      droneID,
		Timestamp:    start,
		Position:     origin,
		SegmentIndex: 0,
		IsWaypoint:   false,
	}
	out = append(models.Trajectory{head}, out...)
	return out, nil
}
