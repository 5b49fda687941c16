package rpc

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/status"

	"uavdeconfliction/internal/auth"
	"uavdeconfliction/internal/config"
	"uavdeconfliction/internal/coordinator"
	"uavdeconfliction/internal/db"
	"uavdeconfliction/internal/geo"
	"uavdeconfliction/internal/monitor"
	"uavdeconfliction/internal/trajectory"
	"uavdeconfliction/models"
)

const healthCheckMethod = "/grpc.health.v1.Health/Check"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// Server implements DeconflictionServer over a Coordinator and an alert Bus.
type Server struct {
	Coordinator *coordinator.Coordinator
	Bus         *monitor.Bus
	DB          *sql.DB    // backs ReportPosition's drone-position ingestion
	Anchor      geo.Anchor // geodetic origin of the local ENU frame
}

// Submit exposes the "Submit mission" interface to operators and admins.
func (s *Server) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	if _, err := auth.RequireOperatorOrAdmin(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "nil request")
	}
	dec, err := s.Coordinator.Submit(ctx, req.DroneID, req.Waypoints, req.StartTime, req.EndTime)
	if err != nil {
		return nil, mapError(err)
	}
	return &SubmitResponse{
		Accepted:    dec.Accepted,
		MissionID:   dec.MissionID,
		Conflicts:   dec.Conflicts,
		Suggestions: dec.Suggestions,
	}, nil
}

// Query exposes the "Query future trajectories" interface.
func (s *Server) Query(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	if _, err := auth.RequireOperatorOrAdmin(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "nil request")
	}
	traj := s.Coordinator.QueryFutureTrajectories(req.StartTime, req.EndTime)
	geodetic := make(map[int64][]GeodeticFix, len(traj))
	for droneID, points := range traj {
		fixes := make([]GeodeticFix, len(points))
		for i, p := range points {
			lat, lng, alt := geo.GeodeticFromENU(s.Anchor, p.Position.X, p.Position.Y, p.Position.Z)
			fixes[i] = GeodeticFix{Timestamp: p.Timestamp, LatDeg: lat, LngDeg: lng, AltMeters: alt}
		}
		geodetic[droneID] = fixes
	}
	return &QueryResponse{Trajectories: traj, Geodetic: geodetic}, nil
}

// ReportPosition ingests a drone's latest GPS fix, converting it into the
// local ENU frame and durably recording it as the drone's last known
// position — the one path by which Submit and the proximity monitor ever
// learn where a drone currently is.
func (s *Server) ReportPosition(ctx context.Context, req *ReportPositionRequest) (*ReportPositionResponse, error) {
	if _, err := auth.RequireOperatorOrAdmin(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "nil request")
	}
	x, y, z := geo.ENUFromGeodetic(s.Anchor, req.LatDeg, req.LngDeg, req.AltMeters)
	at := req.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	if err := db.UpsertDroneLastSeen(ctx, s.DB, req.DroneID, req.FleetLabel, req.LatDeg, req.LngDeg, models.Position{X: x, Y: y, Z: z}, at); err != nil {
		return nil, status.Errorf(codes.Internal, "record position: %v", err)
	}
	return &ReportPositionResponse{}, nil
}

// EmergencyClear exposes the "Emergency clear" interface,
// restricted to admins since it bypasses conflict checking entirely.
func (s *Server) EmergencyClear(ctx context.Context, req *EmergencyClearRequest) (*EmergencyClearResponse, error) {
	if _, err := auth.RequireAdmin(ctx); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "nil request")
	}
	s.Coordinator.EmergencyClear(ctx, req.DroneID)
	return &EmergencyClearResponse{}, nil
}

// AlertStream exposes the "Alert stream" interface: a long-lived
// server-streaming RPC forwarding every ProximityAlert published on the
// monitor's Bus until the client disconnects.
func (s *Server) AlertStream(req *AlertStreamRequest, stream DeconflictionServer_AlertStreamServer) error {
	if _, err := auth.RequireOperatorOrAdmin(stream.Context()); err != nil {
		return err
	}
	ch, unsub := s.Bus.Subscribe(32)
	defer unsub()
	for {
		select {
		case a, ok := <-ch:
			if !ok {
				return nil
			}
			if err := stream.Send(&a); err != nil {
				return err
			}
		case <-stream.Context().Done():
			return stream.Context().Err()
		}
	}
}

// mapError maps coordinator and trajectory sentinel errors to gRPC status codes.
func mapError(err error) error {
	switch {
	case errors.Is(err, coordinator.ErrUnknownDrone):
		return status.Errorf(codes.InvalidArgument, "%v", err)
	case errors.Is(err, coordinator.ErrNoLiveState):
		return status.Errorf(codes.NotFound, "%v", err)
	case errors.Is(err, trajectory.ErrInvalidWindow), errors.Is(err, trajectory.ErrEmptyWaypoints):
		return status.Errorf(codes.InvalidArgument, "%v", err)
	default:
		return status.Errorf(codes.Internal, "%v", err)
	}
}

// StartGRPC starts the gRPC server on the configured address and returns a
// shutdown function.
func StartGRPC(cfg *config.Config, c *coordinator.Coordinator, bus *monitor.Bus, d *sql.DB) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	addr := cfg.GRPC.Address
	if addr == "" {
		addr = ":50051"
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	srv := grpc.NewServer(
		grpc.ForceServerCodec(jsonCodec{}),
		grpc.UnaryInterceptor(auth.NewUnaryAuthInterceptor(cfg.Auth.JWTSecret, healthCheckMethod)),
		grpc.StreamInterceptor(auth.NewStreamAuthInterceptor(cfg.Auth.JWTSecret)),
	)
	anchor := geo.Anchor{LatDeg: cfg.Engine.AnchorLatDeg, LngDeg: cfg.Engine.AnchorLngDeg}
	srv.RegisterService(&ServiceDesc, &Server{Coordinator: c, Bus: bus, DB: d, Anchor: anchor})

	go func() { _ = srv.Serve(lis) }()

	return func(ctx context.Context) error {
		done := make(chan struct{})
		go func() { srv.GracefulStop(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			srv.Stop()
			return ctx.Err()
		}
	}, nil
}
