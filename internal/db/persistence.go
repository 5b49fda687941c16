package db

import (
	"context"
	"database/sql"

	"uavdeconfliction/models"
)

// Persistence adapts a *sql.DB to coordinator.Persistence: the durable
// write-behind half of Submit's commit/reject paths. It satisfies that
// interface structurally, without importing internal/coordinator, the
// same way LiveState adapts the drones table to coordinator.LiveStateSource.
type Persistence struct {
	DB *sql.DB
}

// PersistMission durably records an accepted mission and its committed
// trajectory.
func (p *Persistence) PersistMission(ctx context.Context, mission models.Mission, traj models.Trajectory) error {
	return PersistMission(ctx, p.DB, mission, traj)
}

// RecordConflict appends one detected conflict to the append-only log.
func (p *Persistence) RecordConflict(ctx context.Context, c models.Conflict) error {
	return RecordConflict(ctx, p.DB, c)
}

// ForgetDrone removes a drone's committed missions and trajectory points,
// mirroring an in-memory EmergencyClear on the durable side.
func (p *Persistence) ForgetDrone(ctx context.Context, droneID int64) error {
	return ForgetDrone(ctx, p.DB, droneID)
}
