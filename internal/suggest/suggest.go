// Package suggest implements the Suggestion Generator (C5): turns a
// conflict report into ranked, actionable alternative mission proposals.
package suggest

import (
	"time"

	"uavdeconfliction/models"
)

// DefaultMargin is the buffer added after the last conflict time when
// proposing a time shift.
const DefaultMargin = 5 * time.Second

// DefaultAltitudeIncrement is the fixed altitude raise proposed by the
// altitude-adjustment suggestion.
const DefaultAltitudeIncrement = 10.0

// Kind identifies the suggestion strategy.
type Kind string

const (
	KindTimeShift Kind = "time_shift"
	KindAltitude  Kind = "altitude_adjustment"
	KindPathDevia Kind = "path_deviation"
	KindSpeedup   Kind = "speedup"
)

// Suggestion is one alternative proposal. Fields not relevant to Kind are
// left zero.
type Suggestion struct {
	Kind                 Kind
	NewStartTime         time.Time
	NewEndTime           time.Time
	AdjustedWaypoints    []models.Waypoint
	RequiresConfirmation bool
}

// Generator produces ranked suggestions from a conflict report. The zero
// value applies package defaults.
type Generator struct {
	Margin            time.Duration
	AltitudeIncrement float64
}

func (g Generator) margin() time.Duration {
	if g.Margin <= 0 {
		return DefaultMargin
	}
	return g.Margin
}

func (g Generator) altitudeIncrement() float64 {
	if g.AltitudeIncrement <= 0 {
		return DefaultAltitudeIncrement
	}
	return g.AltitudeIncrement
}

// Suggest returns, in priority order, the alternatives applicable to a
// non-empty conflict list. The generator performs no re-validation of its
// own proposals; the client must resubmit.
func (g Generator) Suggest(conflicts []models.Conflict, waypoints []models.Waypoint, start, end time.Time) []Suggestion {
	if len(conflicts) == 0 {
		return nil
	}

	var out []Suggestion

	// 1. Time shift.
	tFirst, tLast := conflicts[0].Time, conflicts[0].Time
	for _, c := range conflicts[1:] {
		if c.Time.Before(tFirst) {
			tFirst = c.Time
		}
		if c.Time.After(tLast) {
			tLast = c.Time
		}
	}
	delta := tLast.Sub(tFirst) + g.margin()
	out = append(out, Suggestion{
		Kind:         KindTimeShift,
		NewStartTime: start.Add(delta),
		NewEndTime:   end.Add(delta),
	})

	// 2. Altitude adjustment.
	raised := make([]models.Waypoint, len(waypoints))
	for i, w := range waypoints {
		raised[i] = models.Waypoint{X: w.X, Y: w.Y, Z: w.Z + g.altitudeIncrement()}
	}
	out = append(out, Suggestion{
		Kind:              KindAltitude,
		AdjustedWaypoints: raised,
	})

	// 3. Path deviation: insert an intermediate waypoint at the centroid
	// of conflict positions, if there are at least 2 waypoints.
	if len(waypoints) >= 2 {
		centroid := centroidOf(conflicts)
		deviated := make([]models.Waypoint, 0, len(waypoints)+1)
		deviated = append(deviated, waypoints[0])
		deviated = append(deviated, centroid)
		deviated = append(deviated, waypoints[1:]...)
		out = append(out, Suggestion{
			Kind:                 KindPathDevia,
			AdjustedWaypoints:    deviated,
			RequiresConfirmation: true,
		})
	}

	// 4. Speedup: compress the window by 20% if mission duration > 10s.
	duration := end.Sub(start)
	if duration > 10*time.Second {
		compressed := time.Duration(float64(duration) * 0.8)
		out = append(out, Suggestion{
			Kind:         KindSpeedup,
			NewStartTime: start,
			NewEndTime:   start.Add(compressed),
		})
	}

	return out
}

func centroidOf(conflicts []models.Conflict) models.Position {
	var sumA, sumB models.Position
	for _, c := range conflicts {
		sumA.X += c.PositionA.X
		sumA.Y += c.PositionA.Y
		sumA.Z += c.PositionA.Z
		sumB.X += c.PositionB.X
		sumB.Y += c.PositionB.Y
		sumB.Z += c.PositionB.Z
	}
	n := float64(len(conflicts))
	return models.Position{
		X: (sumA.X + sumB.X) / (2 * n),
		Y: (sumA.Y + sumB.Y) / (2 * n),
		Z: (sumA.Z + sumB.Z) / (2 * n),
	}
}
