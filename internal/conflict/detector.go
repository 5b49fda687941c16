// Package conflict implements the Conflict Detector (C3): time-aligns a
// candidate trajectory against other committed trajectories and reports
// all safety-buffer violations.
package conflict

import (
	"time"

	"uavdeconfliction/internal/geo"
	"uavdeconfliction/models"
)

// DefaultTimeAlignmentTolerance is τ_align.
const DefaultTimeAlignmentTolerance = 500 * time.Millisecond

// DefaultSafetyBuffer is the minimum safe Euclidean distance in meters.
// Resolves a two-defaults ambiguity in the source material in favor of 5.0m.
const DefaultSafetyBuffer = 5.0

// Detector checks a candidate Trajectory against a set of other
// trajectories. The zero value applies the package defaults.
type Detector struct {
	SafetyBuffer           float64
	TimeAlignmentTolerance time.Duration
}

func (d Detector) buffer() float64 {
	if d.SafetyBuffer <= 0 {
		return DefaultSafetyBuffer
	}
	return d.SafetyBuffer
}

func (d Detector) tolerance() time.Duration {
	if d.TimeAlignmentTolerance <= 0 {
		return DefaultTimeAlignmentTolerance
	}
	return d.TimeAlignmentTolerance
}

// Check time-aligns candidate against every trajectory in others and
// returns every violating aligned pair, undeduplicated.
func (d Detector) Check(candidate models.Trajectory, others map[int64]models.Trajectory) []models.Conflict {
	var conflicts []models.Conflict
	if len(candidate) == 0 || len(others) == 0 {
		return conflicts
	}
	buffer := d.buffer()
	tol := d.tolerance()

	for otherID, other := range others {
		if otherID == candidate.DroneID() {
			continue
		}
		if len(other) == 0 {
			continue
		}
		for _, a := range candidate {
			b, ok := nearestInTime(other, a.Timestamp)
			if !ok {
				continue
			}
			delta := b.Timestamp.Sub(a.Timestamp)
			if delta < 0 {
				delta = -delta
			}
			if delta > tol {
				continue
			}
			dist := geo.Distance3D(a.Position.X, a.Position.Y, a.Position.Z, b.Position.X, b.Position.Y, b.Position.Z)
			if dist < buffer {
				conflicts = append(conflicts, models.Conflict{
					Time:         a.Timestamp,
					DroneA:       a.DroneID,
					DroneB:       b.DroneID,
					PositionA:    a.Position,
					PositionB:    b.Position,
					Distance:     dist,
					SafetyBuffer: buffer,
				})
			}
		}
	}
	return conflicts
}

// nearestInTime finds the sample in traj whose timestamp is closest to t,
// breaking ties in favor of the earlier sample. traj is assumed
// time-sorted, so this runs in O(log n) via binary search.
func nearestInTime(traj models.Trajectory, t time.Time) (models.TrajectoryPoint, bool) {
	if len(traj) == 0 {
		return models.TrajectoryPoint{}, false
	}
	lo, hi := 0, len(traj)
	for lo < hi {
		mid := (lo + hi) / 2
		if traj[mid].Timestamp.Before(t) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	// lo is the first index with Timestamp >= t.
	switch {
	case lo == 0:
		return traj[0], true
	case lo == len(traj):
		return traj[len(traj)-1], true
	default:
		before := traj[lo-1]
		after := traj[lo]
		dBefore := t.Sub(before.Timestamp)
		dAfter := after.Timestamp.Sub(t)
		if dBefore <= dAfter {
			return before, true
		}
		return after, true
	}
}
