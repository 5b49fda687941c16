package store

import (
	"context"
	"database/sql"
	"time"

	"uavdeconfliction/models"
)

// LoadFromSQLite replays every row of committed_trajectory_points into a
// fresh Store, so the in-memory engine and the durable log agree after a
// restart. It takes a raw *sql.DB rather than importing internal/db to
// avoid a dependency cycle between the store and its own persistence layer.
func LoadFromSQLite(ctx context.Context, d *sql.DB) (*Store, error) {
	s := New()

	rows, err := d.QueryContext(ctx, `
		SELECT drone_id, mission_id, ts, x, y, z, segment_index, is_waypoint
		FROM committed_trajectory_points
		ORDER BY drone_id, ts
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMission := make(map[string]models.Trajectory)
	for rows.Next() {
		var (
			droneID      int64
			missionID    string
			tsText       string
			x, y, z      float64
			segmentIndex int
			isWaypointI  int
		)
		if err := rows.Scan(&droneID, &missionID, &tsText, &x, &y, &z, &segmentIndex, &isWaypointI); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, tsText)
		if err != nil {
			return nil, err
		}
		byMission[missionID] = append(byMission[missionID], models.TrajectoryPoint{
			DroneID:      droneID,
			Timestamp:    ts.UTC(),
			Position:     models.Position{X: x, Y: y, Z: z},
			SegmentIndex: segmentIndex,
			IsWaypoint:   isWaypointI != 0,
			MissionID:    missionID,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for missionID, traj := range byMission {
		if err := s.Put(traj, missionID); err != nil {
			return nil, err
		}
	}
	return s, nil
}
