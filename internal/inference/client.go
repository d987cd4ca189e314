package inference

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCPredictor queries a remote model over a unary gRPC call. The window is
// sent as a structpb.ListValue of numbers and the distribution comes back the
// same way, so the service needs no generated stubs.
type GRPCPredictor struct {
	conn *grpc.ClientConn
}

// NewGRPCPredictor creates a client for the predictor service at addr.
// Extra dial options are appended after the defaults (insecure transport,
// 10MB receive limit).
func NewGRPCPredictor(addr string, opts ...grpc.DialOption) (*GRPCPredictor, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(10 * 1024 * 1024)),
	}, opts...)

	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial predictor %s: %w", addr, err)
	}
	return &GRPCPredictor{conn: conn}, nil
}

// Predict sends window to the remote predictor.
func (c *GRPCPredictor) Predict(ctx context.Context, window []int) ([]float64, error) {
	req := encodeWindow(window)
	resp := &structpb.ListValue{}
	if err := c.conn.Invoke(ctx, predictMethod, req, resp); err != nil {
		if status.Code(err) == codes.Unavailable {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, fmt.Errorf("predict: %w", err)
	}
	return decodeDistribution(resp)
}

// Close shuts down the gRPC connection.
func (c *GRPCPredictor) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}

func encodeWindow(window []int) *structpb.ListValue {
	values := make([]*structpb.Value, len(window))
	for i, id := range window {
		values[i] = structpb.NewNumberValue(float64(id))
	}
	return &structpb.ListValue{Values: values}
}

func decodeWindow(lv *structpb.ListValue) ([]int, error) {
	out := make([]int, len(lv.GetValues()))
	for i, v := range lv.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("window[%d]: not a number", i)
		}
		out[i] = int(n.NumberValue)
	}
	return out, nil
}

func encodeDistribution(dist []float64) *structpb.ListValue {
	values := make([]*structpb.Value, len(dist))
	for i, p := range dist {
		values[i] = structpb.NewNumberValue(p)
	}
	return &structpb.ListValue{Values: values}
}

func decodeDistribution(lv *structpb.ListValue) ([]float64, error) {
	out := make([]float64, len(lv.GetValues()))
	for i, v := range lv.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("distribution[%d]: not a number", i)
		}
		out[i] = n.NumberValue
	}
	return out, nil
}
