package store

import (
	"testing"
	"time"

	benclock "github.com/benbjohnson/clock"

	"uavdeconfliction/models"
)

func traj(droneID int64, start time.Time, n int, step time.Duration, missionID string) models.Trajectory {
	var out models.Trajectory
	for i := 0; i < n; i++ {
		out = append(out, models.TrajectoryPoint{
			DroneID:   droneID,
			Timestamp: start.Add(time.Duration(i) * step),
			Position:  models.Position{X: float64(i)},
			MissionID: missionID,
		})
	}
	return out
}

func TestPutQuery_RoundTrip(t *testing.T) {
	s := New()
	start := time.Now()
	tr := traj(1, start, 5, time.Second, "m1")
	if err := s.Put(tr, "m1"); err != nil {
		t.Fatalf("put: %v", err)
	}
	got := s.Query(tr.Start(), tr.End())
	if len(got[1]) != len(tr) {
		t.Fatalf("round trip mismatch: got %d points, want %d", len(got[1]), len(tr))
	}
}

func TestPut_Idempotent(t *testing.T) {
	s := New()
	start := time.Now()
	tr := traj(2, start, 3, time.Second, "m2")
	if err := s.Put(tr, "m2"); err != nil {
		t.Fatalf("put 1: %v", err)
	}
	if err := s.Put(tr, "m2"); err != nil {
		t.Fatalf("put 2: %v", err)
	}
	got := s.Query(tr.Start(), tr.End())
	if len(got[2]) != len(tr) {
		t.Fatalf("expected idempotent put, got %d points, want %d", len(got[2]), len(tr))
	}
}

func TestPut_ReplacesOverlappingWindow(t *testing.T) {
	s := New()
	start := time.Now()
	first := traj(3, start, 10, time.Second, "m3")
	if err := s.Put(first, "m3"); err != nil {
		t.Fatalf("put first: %v", err)
	}
	second := traj(3, start, 4, time.Second, "m3b")
	if err := s.Put(second, "m3b"); err != nil {
		t.Fatalf("put second: %v", err)
	}
	got := s.Query(start.Add(-time.Hour), start.Add(time.Hour))
	// Only the 4 samples inside second's window are replaced; the 6 later
	// samples of first stay.
	if len(got[3]) != 10 {
		t.Fatalf("expected replacement to leave 10 points, got %d", len(got[3]))
	}
	for _, p := range got[3] {
		want := "m3"
		if !p.Timestamp.After(second.End()) {
			want = "m3b"
		}
		if p.MissionID != want {
			t.Fatalf("point at %v: expected mission %q, found %q", p.Timestamp.Sub(start), want, p.MissionID)
		}
	}
}

func TestQuery_ExcludesOutOfWindow(t *testing.T) {
	s := New()
	start := time.Now()
	tr := traj(4, start, 5, time.Minute, "m4")
	if err := s.Put(tr, "m4"); err != nil {
		t.Fatalf("put: %v", err)
	}
	got := s.Query(start, start.Add(30*time.Second))
	if len(got[4]) != 1 {
		t.Fatalf("expected 1 point in narrow window, got %d", len(got[4]))
	}
}

func TestForget(t *testing.T) {
	s := New()
	start := time.Now()
	tr := traj(5, start, 3, time.Second, "m5")
	_ = s.Put(tr, "m5")
	s.Forget(5)
	got := s.Query(start.Add(-time.Hour), start.Add(time.Hour))
	if _, ok := got[5]; ok {
		t.Fatalf("expected drone 5 forgotten")
	}
}

func TestForgetMission(t *testing.T) {
	s := New()
	start := time.Now()
	_ = s.Put(traj(6, start, 3, time.Second, "mA"), "mA")
	s.ForgetMission("mA")
	got := s.Query(start.Add(-time.Hour), start.Add(time.Hour))
	if _, ok := got[6]; ok {
		t.Fatalf("expected mission mA samples forgotten")
	}
}

func TestGC_RemovesExpired(t *testing.T) {
	s := New()
	past := time.Now().Add(-2 * time.Hour)
	_ = s.Put(traj(7, past, 3, time.Second, "old"), "old")
	s.GC(time.Now())
	got := s.Query(past.Add(-time.Hour), time.Now().Add(time.Hour))
	if _, ok := got[7]; ok {
		t.Fatalf("expected expired trajectory garbage collected")
	}
}

func TestGCBefore_UsesClock(t *testing.T) {
	mock := benclock.NewMock()
	s := New()
	s.Clock = mock
	past := mock.Now().Add(-10 * time.Minute)
	_ = s.Put(traj(8, past, 3, time.Second, "old"), "old")

	s.GCBefore(5 * time.Minute) // grace=5m, now - grace = now-5m, past (10m ago) is older -> removed
	got := s.Query(past.Add(-time.Hour), mock.Now().Add(time.Hour))
	if _, ok := got[8]; ok {
		t.Fatalf("expected GCBefore to remove expired trajectory")
	}
}

func TestDistinctDronesDoNotInterfere(t *testing.T) {
	s := New()
	start := time.Now()
	_ = s.Put(traj(9, start, 2, time.Second, "x"), "x")
	_ = s.Put(traj(10, start, 2, time.Second, "y"), "y")
	got := s.Query(start.Add(-time.Minute), start.Add(time.Minute))
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct drones, got %d", len(got))
	}
}
