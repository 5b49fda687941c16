// Package coordinator implements the Deconfliction Coordinator (C4): it
// orchestrates generate -> check-against-store -> commit-or-reject under a
// single-writer lock, the one place step ordering matters for correctness.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"uavdeconfliction/internal/conflict"
	"uavdeconfliction/internal/store"
	"uavdeconfliction/internal/suggest"
	"uavdeconfliction/internal/trajectory"
	"uavdeconfliction/models"
)

// ErrUnknownDrone is returned when a submission names a drone outside the
// configured fleet.
var ErrUnknownDrone = errors.New("coordinator: unknown drone")

// ErrNoLiveState is returned when the live-state source has no current
// position for the submitting drone (disconnected drones reject rather
// than silently default to the origin).
var ErrNoLiveState = errors.New("coordinator: no live position for drone")

// LiveStateSource resolves a drone's current position as known at
// submission time.
type LiveStateSource interface {
	CurrentPosition(ctx context.Context, droneID int64) (models.Position, bool, error)
}

// Persistence durably records committed missions and detected conflicts,
// the write-behind half of Submit's commit/reject paths. The in-memory
// Store remains authoritative for correctness; a restart replays whatever
// made it to disk, so Persistence failures are logged rather than failing
// the call that already succeeded against the Store.
type Persistence interface {
	PersistMission(ctx context.Context, mission models.Mission, traj models.Trajectory) error
	RecordConflict(ctx context.Context, c models.Conflict) error
	ForgetDrone(ctx context.Context, droneID int64) error
}

// Decision is the outcome of a Submit call.
type Decision struct {
	Accepted    bool
	MissionID   string
	Conflicts   []models.Conflict
	Suggestions []suggest.Suggestion
}

// Coordinator is constructed once per process and injected into whatever
// adapter exposes Submit (no ambient singleton).
type Coordinator struct {
	Store     *store.Store
	LiveState LiveStateSource
	Persist   Persistence // optional; nil disables durable write-behind
	FleetIDs  map[int64]struct{}
	Generator trajectory.Generator
	Detector  conflict.Detector
	Suggester suggest.Generator

	mu sync.Mutex // single-writer lock serializing submissions
}

// New constructs a Coordinator over the given store and live-state source,
// restricted to fleetIDs (empty means "any drone ID is recognized").
func New(s *store.Store, live LiveStateSource, fleetIDs []int64) *Coordinator {
	fleet := make(map[int64]struct{}, len(fleetIDs))
	for _, id := range fleetIDs {
		fleet[id] = struct{}{}
	}
	return &Coordinator{Store: s, LiveState: live, FleetIDs: fleet}
}

func (c *Coordinator) knownDrone(id int64) bool {
	if len(c.FleetIDs) == 0 {
		return true
	}
	_, ok := c.FleetIDs[id]
	return ok
}

// Submit runs the atomic generate -> check -> commit-or-reject pipeline.
func (c *Coordinator) Submit(ctx context.Context, droneID int64, waypoints []models.Waypoint, start, end time.Time) (Decision, error) {
	if !c.knownDrone(droneID) {
		return Decision{}, fmt.Errorf("%w: %d", ErrUnknownDrone, droneID)
	}

	// Step 1: resolve current position. Not yet under the lock: this is a
	// read of external, independently-concurrent state.
	origin, ok, err := c.LiveState.CurrentPosition(ctx, droneID)
	if err != nil {
		return Decision{}, fmt.Errorf("resolve live position: %w", err)
	}
	if !ok {
		return Decision{}, fmt.Errorf("%w: drone %d", ErrNoLiveState, droneID)
	}

	// Step 2: generate the candidate trajectory. Failure here must not
	// touch the store.
	missionID := uuid.NewString()
	candidate, err := c.Generator.Generate(droneID, origin, waypoints, start, end)
	if err != nil {
		return Decision{}, fmt.Errorf("generate trajectory: %w", err)
	}

	// Steps 3-5 are one atomic unit under the coordinator's single-writer
	// lock: two concurrent submissions must never both observe a
	// conflict-free world and both commit.
	c.mu.Lock()
	defer c.mu.Unlock()

	others := c.Store.Query(start, end)
	delete(others, droneID)

	conflicts := c.Detector.Check(candidate, others)
	if len(conflicts) == 0 {
		if err := c.Store.Put(candidate, missionID); err != nil {
			return Decision{}, fmt.Errorf("commit trajectory: %w", err)
		}
		if c.Persist != nil {
			mission := models.Mission{
				ID:        missionID,
				DroneID:   droneID,
				Waypoints: waypoints,
				StartTime: start,
				EndTime:   end,
				Status:    models.MissionStatusScheduled,
			}
			if err := c.Persist.PersistMission(ctx, mission, candidate); err != nil {
				log.Printf("coordinator: persist mission %s: %v", missionID, err)
			}
		}
		return Decision{Accepted: true, MissionID: missionID}, nil
	}

	suggestions := c.Suggester.Suggest(conflicts, waypoints, start, end)
	if c.Persist != nil {
		for _, cf := range conflicts {
			if err := c.Persist.RecordConflict(ctx, cf); err != nil {
				log.Printf("coordinator: record conflict (drone %d, drone %d): %v", cf.DroneA, cf.DroneB, err)
			}
		}
	}
	return Decision{Accepted: false, Conflicts: conflicts, Suggestions: suggestions}, nil
}

// EmergencyClear invokes Forget on the store for the given drone without
// commanding the drone itself.
func (c *Coordinator) EmergencyClear(ctx context.Context, droneID int64) {
	c.Store.Forget(droneID)
	if c.Persist != nil {
		if err := c.Persist.ForgetDrone(ctx, droneID); err != nil {
			log.Printf("coordinator: forget drone %d: %v", droneID, err)
		}
	}
}

// QueryFutureTrajectories exposes the store's Query operation directly, the
// "Query future trajectories" logical interface.
func (c *Coordinator) QueryFutureTrajectories(start, end time.Time) map[int64]models.Trajectory {
	return c.Store.Query(start, end)
}
