package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"uavdeconfliction/models"
)

// UpsertDroneLastSeen records a drone's most recent known position, both in
// its native geodetic form and the local ENU frame it was converted into.
func UpsertDroneLastSeen(ctx context.Context, d *sql.DB, droneID int64, fleetLabel string, lat, lng float64, enu models.Position, at time.Time) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO drones(id, fleet_label, last_lat, last_lng, last_x, last_y, last_z, last_seen_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fleet_label = excluded.fleet_label,
			last_lat = excluded.last_lat,
			last_lng = excluded.last_lng,
			last_x = excluded.last_x,
			last_y = excluded.last_y,
			last_z = excluded.last_z,
			last_seen_at = excluded.last_seen_at
	`, droneID, fleetLabel, lat, lng, enu.X, enu.Y, enu.Z, at.UTC().Format(time.RFC3339Nano))
	return err
}

// DroneLastSeen reports a drone's last known ENU position, if one has been
// recorded.
func DroneLastSeen(ctx context.Context, d *sql.DB, droneID int64) (models.Position, bool, error) {
	var p models.Position
	var lastX, lastY, lastZ sql.NullFloat64
	row := d.QueryRowContext(ctx, `SELECT last_x, last_y, last_z FROM drones WHERE id = ?`, droneID)
	if err := row.Scan(&lastX, &lastY, &lastZ); err != nil {
		if err == sql.ErrNoRows {
			return p, false, nil
		}
		return p, false, err
	}
	if !lastX.Valid || !lastY.Valid || !lastZ.Valid {
		return p, false, nil
	}
	p.X, p.Y, p.Z = lastX.Float64, lastY.Float64, lastZ.Float64
	return p, true, nil
}

// AllDroneLastSeen reports the last known ENU position of every drone that
// has one recorded, keyed by drone ID.
func AllDroneLastSeen(ctx context.Context, d *sql.DB) (map[int64]models.Position, error) {
	rows, err := d.QueryContext(ctx, `SELECT id, last_x, last_y, last_z FROM drones WHERE last_x IS NOT NULL AND last_y IS NOT NULL AND last_z IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]models.Position)
	for rows.Next() {
		var id int64
		var x, y, z float64
		if err := rows.Scan(&id, &x, &y, &z); err != nil {
			return nil, err
		}
		out[id] = models.Position{X: x, Y: y, Z: z}
	}
	return out, rows.Err()
}

// PersistMission writes a mission's metadata and its committed trajectory
// points inside a single transaction, the durable write-behind half of the
// store's atomic commit (the in-memory Store.Put call is the authoritative,
// latency-sensitive half; this call may trail it without affecting
// correctness, since a restart simply replays what made it to disk).
func PersistMission(ctx context.Context, d *sql.DB, mission models.Mission, traj models.Trajectory) error {
	waypointsJSON, err := json.Marshal(mission.Waypoints)
	if err != nil {
		return err
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO missions(id, drone_id, status, start_time, end_time, waypoints_json)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status
	`, mission.ID, mission.DroneID, string(mission.Status),
		mission.StartTime.UTC().Format(time.RFC3339Nano),
		mission.EndTime.UTC().Format(time.RFC3339Nano),
		string(waypointsJSON))
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO committed_trajectory_points(drone_id, mission_id, ts, x, y, z, segment_index, is_waypoint)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(drone_id, ts) DO UPDATE SET
			mission_id = excluded.mission_id,
			x = excluded.x, y = excluded.y, z = excluded.z,
			segment_index = excluded.segment_index,
			is_waypoint = excluded.is_waypoint
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, pt := range traj {
		isWaypoint := 0
		if pt.IsWaypoint {
			isWaypoint = 1
		}
		if _, err := stmt.ExecContext(ctx, pt.DroneID, pt.MissionID, pt.Timestamp.UTC().Format(time.RFC3339Nano),
			pt.Position.X, pt.Position.Y, pt.Position.Z, pt.SegmentIndex, isWaypoint); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecordConflict appends a single detected conflict to the append-only log.
func RecordConflict(ctx context.Context, d *sql.DB, c models.Conflict) error {
	_, err := d.ExecContext(ctx, `
		INSERT INTO conflicts(ts, drone_a, drone_b, pos_a_x, pos_a_y, pos_a_z, pos_b_x, pos_b_y, pos_b_z, distance, safety_buffer)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.Time.UTC().Format(time.RFC3339Nano), c.DroneA, c.DroneB,
		c.PositionA.X, c.PositionA.Y, c.PositionA.Z,
		c.PositionB.X, c.PositionB.Y, c.PositionB.Z,
		c.Distance, c.SafetyBuffer)
	return err
}

// ForgetMission removes a mission and its committed points, mirroring
// Store.ForgetMission on the durable side.
func ForgetMission(ctx context.Context, d *sql.DB, missionID string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM committed_trajectory_points WHERE mission_id = ?`, missionID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM missions WHERE id = ?`, missionID); err != nil {
		return err
	}
	return tx.Commit()
}

// ForgetDrone removes every mission and committed trajectory point
// belonging to a drone, mirroring Store.Forget on the durable side.
func ForgetDrone(ctx context.Context, d *sql.DB, droneID int64) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM committed_trajectory_points WHERE drone_id = ?`, droneID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM missions WHERE drone_id = ?`, droneID); err != nil {
		return err
	}
	return tx.Commit()
}
