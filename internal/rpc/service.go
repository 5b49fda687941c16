package rpc

import (
	"context"

	"google.golang.org/grpc"

	"uavdeconfliction/models"
)

// ServiceName is the fully-qualified gRPC service name registered below.
const ServiceName = "uavdeconfliction.v1.DeconflictionService"

// DeconflictionServer is the hand-rolled equivalent of a protoc-generated
// server interface: the four logical RPCs plus ReportPosition.
type DeconflictionServer interface {
	Submit(context.Context, *SubmitRequest) (*SubmitResponse, error)
	Query(context.Context, *QueryRequest) (*QueryResponse, error)
	EmergencyClear(context.Context, *EmergencyClearRequest) (*EmergencyClearResponse, error)
	ReportPosition(context.Context, *ReportPositionRequest) (*ReportPositionResponse, error)
	AlertStream(*AlertStreamRequest, DeconflictionServer_AlertStreamServer) error
}

// DeconflictionServer_AlertStreamServer is the server-streaming handle
// AlertStream sends ProximityAlerts through.
type DeconflictionServer_AlertStreamServer interface {
	Send(*models.ProximityAlert) error
	grpc.ServerStream
}

type alertStreamServer struct {
	grpc.ServerStream
}

func (s *alertStreamServer) Send(a *models.ProximityAlert) error {
	return s.ServerStream.SendMsg(a)
}

func submitHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SubmitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeconflictionServer).Submit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Submit"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeconflictionServer).Submit(ctx, req.(*SubmitRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func queryHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(QueryRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeconflictionServer).Query(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Query"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeconflictionServer).Query(ctx, req.(*QueryRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func emergencyClearHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(EmergencyClearRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeconflictionServer).EmergencyClear(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/EmergencyClear"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeconflictionServer).EmergencyClear(ctx, req.(*EmergencyClearRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func reportPositionHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ReportPositionRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DeconflictionServer).ReportPosition(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ReportPosition"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DeconflictionServer).ReportPosition(ctx, req.(*ReportPositionRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func alertStreamHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(AlertStreamRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(DeconflictionServer).AlertStream(in, &alertStreamServer{ServerStream: stream})
}

// ServiceDesc is registered against a *grpc.Server in place of a
// protoc-generated _ServiceDesc, since no .proto stubs exist for this
// service (see internal/rpc/codec.go).
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DeconflictionServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Submit", Handler: submitHandler},
		{MethodName: "Query", Handler: queryHandler},
		{MethodName: "EmergencyClear", Handler: emergencyClearHandler},
		{MethodName: "ReportPosition", Handler: reportPositionHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "AlertStream", Handler: alertStreamHandler, ServerStreams: true},
	},
	Metadata: "internal/rpc/service.go",
}
