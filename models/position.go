package models

// Position is a point in the local East-North-Up metric frame (meters).
// The frame origin is a fixed geodetic anchor; conversion to and from
// geodetic coordinates is handled at the boundary by internal/geo, never
// inside the core.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Waypoint is a target Position a drone must pass through. It is a named
// alias rather than a bare Position so call sites read as waypoint lists,
// not as arbitrary point clouds.
type Waypoint = Position
