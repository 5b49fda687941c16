package conflict

import (
	"testing"
	"time"

	"uavdeconfliction/models"
)

func pt(droneID int64, t time.Time, x, y, z float64) models.TrajectoryPoint {
	return models.TrajectoryPoint{DroneID: droneID, Timestamp: t, Position: models.Position{X: x, Y: y, Z: z}}
}

func TestCheck_EmptyOthers(t *testing.T) {
	d := Detector{}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	if got := d.Check(candidate, map[int64]models.Trajectory{}); len(got) != 0 {
		t.Fatalf("expected no conflicts, got %d", len(got))
	}
}

func TestCheck_SingleSampleCandidate(t *testing.T) {
	d := Detector{SafetyBuffer: 5}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	others := map[int64]models.Trajectory{2: {pt(2, now, 1, 0, 0)}}
	got := d.Check(candidate, others)
	if len(got) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(got))
	}
}

func TestCheck_StationaryCoincident(t *testing.T) {
	d := Detector{SafetyBuffer: 5}
	now := time.Now()
	var candidate, other models.Trajectory
	for i := 0; i < 5; i++ {
		ts := now.Add(time.Duration(i) * time.Second)
		candidate = append(candidate, pt(1, ts, 0, 0, 0))
		other = append(other, pt(2, ts, 0, 0, 0))
	}
	got := d.Check(candidate, map[int64]models.Trajectory{2: other})
	if len(got) != 5 {
		t.Fatalf("expected every aligned pair to conflict, got %d", len(got))
	}
}

func TestCheck_BufferBoundary_ExactlyEqualIsSafe(t *testing.T) {
	d := Detector{SafetyBuffer: 5}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	others := map[int64]models.Trajectory{2: {pt(2, now, 5, 0, 0)}} // distance == buffer
	if got := d.Check(candidate, others); len(got) != 0 {
		t.Fatalf("distance == buffer must be safe, got %d conflicts", len(got))
	}
}

func TestCheck_BufferBoundary_JustUnderIsConflict(t *testing.T) {
	d := Detector{SafetyBuffer: 5}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	others := map[int64]models.Trajectory{2: {pt(2, now, 4.999, 0, 0)}}
	if got := d.Check(candidate, others); len(got) != 1 {
		t.Fatalf("distance just under buffer must conflict, got %d", len(got))
	}
}

func TestCheck_TimeAlignment_ExactlyAtToleranceIsValid(t *testing.T) {
	d := Detector{SafetyBuffer: 5, TimeAlignmentTolerance: 500 * time.Millisecond}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	others := map[int64]models.Trajectory{2: {pt(2, now.Add(500*time.Millisecond), 0, 0, 0)}}
	got := d.Check(candidate, others)
	if len(got) != 1 {
		t.Fatalf("delta == tolerance must align, got %d conflicts", len(got))
	}
}

func TestCheck_TimeAlignment_BeyondToleranceExcluded(t *testing.T) {
	d := Detector{SafetyBuffer: 5, TimeAlignmentTolerance: 500 * time.Millisecond}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	others := map[int64]models.Trajectory{2: {pt(2, now.Add(501*time.Millisecond), 0, 0, 0)}}
	if got := d.Check(candidate, others); len(got) != 0 {
		t.Fatalf("delta beyond tolerance must not align, got %d conflicts", len(got))
	}
}

func TestCheck_TieBreak_EarlierSampleWins(t *testing.T) {
	// Candidate sample sits exactly between two equidistant other-trajectory
	// samples; picking the earlier one on a tie.
	d := Detector{SafetyBuffer: 5, TimeAlignmentTolerance: 500 * time.Millisecond}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	earlier := now.Add(-200 * time.Millisecond)
	later := now.Add(200 * time.Millisecond)
	// Earlier sample is far away (no conflict); later sample is close
	// (would conflict). If the earlier sample wins the tie, no conflict
	// is reported.
	other := models.Trajectory{pt(2, earlier, 100, 0, 0), pt(2, later, 0, 0, 0)}
	got := d.Check(candidate, map[int64]models.Trajectory{2: other})
	if len(got) != 0 {
		t.Fatalf("expected tie-break to favor the earlier (non-conflicting) sample, got %d conflicts", len(got))
	}
}

func TestCheck_ExcludesOwnDroneID(t *testing.T) {
	d := Detector{SafetyBuffer: 5}
	now := time.Now()
	candidate := models.Trajectory{pt(1, now, 0, 0, 0)}
	others := map[int64]models.Trajectory{1: {pt(1, now, 0, 0, 0)}}
	if got := d.Check(candidate, others); len(got) != 0 {
		t.Fatalf("must not self-compare, got %d conflicts", len(got))
	}
}

func TestCheck_Symmetry(t *testing.T) {
	d := Detector{SafetyBuffer: 5}
	now := time.Now()
	a := models.Trajectory{pt(1, now, 0, 0, 0), pt(1, now.Add(time.Second), 1, 0, 0)}
	b := models.Trajectory{pt(2, now, 2, 0, 0), pt(2, now.Add(time.Second), 0.5, 0, 0)}

	forward := d.Check(a, map[int64]models.Trajectory{2: b})
	backward := d.Check(b, map[int64]models.Trajectory{1: a})

	if len(forward) != len(backward) {
		t.Fatalf("symmetry violated: forward=%d backward=%d", len(forward), len(backward))
	}
}
