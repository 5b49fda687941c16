package db

import (
	"context"
	"database/sql"

	"uavdeconfliction/models"
)

// LiveState adapts the drones table to both coordinator.LiveStateSource and
// monitor.LiveStateSource, so both components read the same durable view
// of "where is every drone right now" without duplicating the query.
type LiveState struct {
	DB *sql.DB
}

// CurrentPosition satisfies coordinator.LiveStateSource.
func (l *LiveState) CurrentPosition(ctx context.Context, droneID int64) (models.Position, bool, error) {
	return DroneLastSeen(ctx, l.DB, droneID)
}

// CurrentPositions satisfies monitor.LiveStateSource.
func (l *LiveState) CurrentPositions(ctx context.Context) (map[int64]models.Position, error) {
	return AllDroneLastSeen(ctx, l.DB)
}
