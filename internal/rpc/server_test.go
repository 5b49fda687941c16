package rpc

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"uavdeconfliction/internal/auth"
	"uavdeconfliction/internal/coordinator"
	"uavdeconfliction/internal/db"
	"uavdeconfliction/internal/geo"
	"uavdeconfliction/internal/monitor"
	"uavdeconfliction/internal/store"
	"uavdeconfliction/internal/testutil"
	"uavdeconfliction/models"
)

type fixedLiveState struct {
	positions map[int64]models.Position
}

func (f *fixedLiveState) CurrentPosition(ctx context.Context, droneID int64) (models.Position, bool, error) {
	p, ok := f.positions[droneID]
	return p, ok, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	c := coordinator.New(store.New(), &fixedLiveState{positions: map[int64]models.Position{1: {}}}, []int64{1})
	return &Server{Coordinator: c, Bus: monitor.NewBus()}
}

func operatorCtx() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Name: "op1", Kind: "operator"})
}

func adminCtx() context.Context {
	return auth.WithPrincipal(context.Background(), &auth.Principal{Name: "root", Kind: "admin"})
}

func TestServer_Submit_RequiresOperatorOrAdmin(t *testing.T) {
	s := newTestServer(t)
	_, err := s.Submit(context.Background(), &SubmitRequest{DroneID: 1, Waypoints: []models.Waypoint{{X: 1}}})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated without a principal, got %v", err)
	}
}

func TestServer_Submit_AcceptsClearMission(t *testing.T) {
	s := newTestServer(t)
	start := time.Now()
	end := start.Add(time.Minute)
	resp, err := s.Submit(operatorCtx(), &SubmitRequest{DroneID: 1, Waypoints: []models.Waypoint{{X: 10}}, StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !resp.Accepted {
		t.Fatalf("expected acceptance, got %+v", resp)
	}
}

func TestServer_Submit_UnknownDroneMapsToInvalidArgument(t *testing.T) {
	s := newTestServer(t)
	start := time.Now()
	_, err := s.Submit(operatorCtx(), &SubmitRequest{DroneID: 99, Waypoints: []models.Waypoint{{X: 1}}, StartTime: start, EndTime: start.Add(time.Minute)})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument for unknown drone, got %v", err)
	}
}

func TestServer_EmergencyClear_RequiresAdmin(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.EmergencyClear(operatorCtx(), &EmergencyClearRequest{DroneID: 1}); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied for operator, got %v", err)
	}
	if _, err := s.EmergencyClear(adminCtx(), &EmergencyClearRequest{DroneID: 1}); err != nil {
		t.Fatalf("EmergencyClear as admin: %v", err)
	}
}

func TestServer_Query_ReturnsCommittedTrajectories(t *testing.T) {
	s := newTestServer(t)
	start := time.Now()
	end := start.Add(time.Minute)
	if _, err := s.Submit(operatorCtx(), &SubmitRequest{DroneID: 1, Waypoints: []models.Waypoint{{X: 10}}, StartTime: start, EndTime: end}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	resp, err := s.Query(operatorCtx(), &QueryRequest{StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if _, ok := resp.Trajectories[1]; !ok {
		t.Fatalf("expected drone 1 in query results, got %+v", resp.Trajectories)
	}
	if _, ok := resp.Geodetic[1]; !ok {
		t.Fatalf("expected drone 1 in geodetic query results, got %+v", resp.Geodetic)
	}
}

func TestServer_ReportPosition_FeedsLiveState(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "rpc_report_position")
	s := &Server{
		Coordinator: coordinator.New(store.New(), &db.LiveState{DB: d}, []int64{1}),
		Bus:         monitor.NewBus(),
		DB:          d,
		Anchor:      geo.Anchor{LatDeg: 37.0, LngDeg: -122.0},
	}

	if _, err := s.ReportPosition(operatorCtx(), &ReportPositionRequest{
		DroneID: 1, LatDeg: 37.0, LngDeg: -122.0, AltMeters: 50, Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}

	start := time.Now()
	end := start.Add(time.Minute)
	resp, err := s.Submit(operatorCtx(), &SubmitRequest{DroneID: 1, Waypoints: []models.Waypoint{{X: 10}}, StartTime: start, EndTime: end})
	if err != nil {
		t.Fatalf("Submit after ReportPosition: %v", err)
	}
	if !resp.Accepted {
		t.Fatalf("expected acceptance once drone 1 has a live position, got %+v", resp)
	}
}

func TestServer_ReportPosition_RequiresOperatorOrAdmin(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "rpc_report_position_auth")
	s := &Server{
		Coordinator: coordinator.New(store.New(), &db.LiveState{DB: d}, []int64{1}),
		Bus:         monitor.NewBus(),
		DB:          d,
	}
	_, err := s.ReportPosition(context.Background(), &ReportPositionRequest{DroneID: 1})
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated without a principal, got %v", err)
	}
}
