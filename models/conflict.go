package models

import "time"

// Conflict records a single safety-buffer violation between two drones at
// one aligned instant. Distance is always strictly less than SafetyBuffer.
type Conflict struct {
	Time         time.Time `db:"ts" json:"time"`
	DroneA       int64     `db:"drone_a" json:"drone_a"`
	DroneB       int64     `db:"drone_b" json:"drone_b"`
	PositionA    Position  `json:"position_a"`
	PositionB    Position  `json:"position_b"`
	Distance     float64   `db:"distance" json:"distance"`
	SafetyBuffer float64   `db:"safety_buffer" json:"safety_buffer"`
}
