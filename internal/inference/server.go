package inference

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	serviceName   = "melodygen.v1.Predictor"
	predictMethod = "/" + serviceName + "/Predict"
)

var predictorServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*Predictor)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Predict", Handler: predictHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "melodygen/v1/predictor.proto",
}

// RegisterPredictorServer exposes p on s under the melodygen.v1.Predictor service.
func RegisterPredictorServer(s *grpc.Server, p Predictor) {
	s.RegisterService(&predictorServiceDesc, p)
}

func predictHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.ListValue{}
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		window, err := decodeWindow(req.(*structpb.ListValue))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		dist, err := srv.(Predictor).Predict(ctx, window)
		if err != nil {
			return nil, status.Error(codes.Internal, err.Error())
		}
		return encodeDistribution(dist), nil
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: predictMethod}
	return interceptor(ctx, in, info, call)
}
