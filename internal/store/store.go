// Package store implements the Trajectory Store (C2): a persistent,
// concurrently-accessed keyed store of committed future trajectories per
// drone, with an atomic check-and-commit contract.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"uavdeconfliction/models"
)

// ErrCorrupt is returned by Put when the trajectory to commit holds two
// samples with the same timestamp, which would give two committed samples
// the same (drone_id, timestamp) key. Reads do not check this invariant.
var ErrCorrupt = errors.New("store: corrupt trajectory state")

// Store is the in-memory engine backing the Trajectory Store. It is the
// sole shared mutable resource of the coordinator: every
// write is framed as one atomic unit under mu, so readers never observe a
// partial put.
type Store struct {
	mu        sync.RWMutex
	byDrone   map[int64]models.Trajectory
	byMission map[string][]int64 // missionID -> drone IDs touched, for ForgetMission

	Clock clock.Clock // defaults to clock.New() if nil
}

// New returns an empty, ready-to-use Store.
func New() *Store {
	return &Store{
		byDrone:   make(map[int64]models.Trajectory),
		byMission: make(map[string][]int64),
		Clock:     clock.New(),
	}
}

func (s *Store) clock() clock.Clock {
	if s.Clock == nil {
		return clock.New()
	}
	return s.Clock
}

// Put atomically replaces any existing committed Trajectory samples for
// this drone that fall in [traj.Start(), traj.End()] with traj. Must be
// serializable with respect to Query.
func (s *Store) Put(traj models.Trajectory, missionID string) error {
	if len(traj) == 0 {
		return nil
	}
	sorted := make(models.Trajectory, len(traj))
	copy(sorted, traj)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	seen := make(map[int64]struct{}, len(sorted))
	for _, p := range sorted {
		key := p.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			return ErrCorrupt
		}
		seen[key] = struct{}{}
	}

	droneID := sorted.DroneID()
	start, end := sorted.Start(), sorted.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.byDrone[droneID]
	kept := existing[:0:0]
	for _, p := range existing {
		if p.Timestamp.Before(start) || p.Timestamp.After(end) {
			kept = append(kept, p)
		}
	}
	merged := append(kept, sorted...)
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp.Before(merged[j].Timestamp) })
	s.byDrone[droneID] = merged

	if missionID != "" {
		s.byMission[missionID] = appendUnique(s.byMission[missionID], droneID)
	}
	return nil
}

func appendUnique(ids []int64, id int64) []int64 {
	for _, v := range ids {
		if v == id {
			return ids
		}
	}
	return append(ids, id)
}

// Query returns, per drone, the committed samples whose timestamps fall in
// [start, end]; samples outside the window are left out, and drones with
// none in it are omitted.
func (s *Store) Query(start, end time.Time) map[int64]models.Trajectory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]models.Trajectory, len(s.byDrone))
	for droneID, traj := range s.byDrone {
		var filtered models.Trajectory
		for _, p := range traj {
			if !p.Timestamp.Before(start) && !p.Timestamp.After(end) {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) > 0 {
			out[droneID] = filtered
		}
	}
	return out
}

// Forget removes all committed samples for a drone.
func (s *Store) Forget(droneID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byDrone, droneID)
}

// ForgetMission removes committed samples belonging to a given mission ID
// from every drone it touched.
func (s *Store) ForgetMission(missionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, droneID := range s.byMission[missionID] {
		traj := s.byDrone[droneID]
		var kept models.Trajectory
		for _, p := range traj {
			if p.MissionID != missionID {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(s.byDrone, droneID)
		} else {
			s.byDrone[droneID] = kept
		}
	}
	delete(s.byMission, missionID)
}

// GC deletes committed samples with timestamp < cutoff. Trajectories
// entirely before now-grace are eligible for garbage collection.
func (s *Store) GC(cutoff time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for droneID, traj := range s.byDrone {
		var kept models.Trajectory
		for _, p := range traj {
			if !p.Timestamp.Before(cutoff) {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(s.byDrone, droneID)
		} else {
			s.byDrone[droneID] = kept
		}
	}
}

// GCBefore deletes committed samples older than now-grace, using the
// Store's clock for "now" so tests can control it deterministically.
func (s *Store) GCBefore(grace time.Duration) {
	s.GC(s.clock().Now().Add(-grace))
}

// Snapshot returns every committed trajectory in the store, keyed by
// drone ID, as copies the caller may modify.
func (s *Store) Snapshot() map[int64]models.Trajectory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]models.Trajectory, len(s.byDrone))
	for k, v := range s.byDrone {
		cp := make(models.Trajectory, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}
