package grpc

// Service definition for stroke.v1.PredictionService. Messages are plain
// structs carried by the JSON codec, so no generated code is needed.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// PredictionServiceName is the fully qualified gRPC service name.
const PredictionServiceName = "stroke.v1.PredictionService"

// PredictionServiceServer is the server API for PredictionService.
type PredictionServiceServer interface {
	Predict(context.Context, *PredictRequest) (*PredictResponse, error)
	Reload(context.Context, *ReloadRequest) (*ReloadResponse, error)
	mustEmbedUnimplementedPredictionServiceServer()
}

// UnimplementedPredictionServiceServer provides forward-compatible default implementations.
type UnimplementedPredictionServiceServer struct{}

func (UnimplementedPredictionServiceServer) Predict(context.Context, *PredictRequest) (*PredictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}
func (UnimplementedPredictionServiceServer) Reload(context.Context, *ReloadRequest) (*ReloadResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Reload not implemented")
}
func (UnimplementedPredictionServiceServer) mustEmbedUnimplementedPredictionServiceServer() {}

// RegisterPredictionServiceServer registers srv with the gRPC server.
func RegisterPredictionServiceServer(s grpclib.ServiceRegistrar, srv PredictionServiceServer) {
	s.RegisterService(&predictionServiceDesc, srv)
}

var predictionServiceDesc = grpclib.ServiceDesc{
	ServiceName: PredictionServiceName,
	HandlerType: (*PredictionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
		{MethodName: "Reload", Handler: reloadHandler},
	},
	Streams: []grpclib.StreamDesc{},
}

func predictHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(PredictRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServiceServer).Predict(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + PredictionServiceName + "/Predict"}
	return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionServiceServer).Predict(ctx, req.(*PredictRequest))
	})
}

func reloadHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(ReloadRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServiceServer).Reload(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: "/" + PredictionServiceName + "/Reload"}
	return interceptor(ctx, req, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionServiceServer).Reload(ctx, req.(*ReloadRequest))
	})
}
