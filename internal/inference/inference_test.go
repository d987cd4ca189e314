package inference

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, p Predictor) *GRPCPredictor {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	RegisterPredictorServer(srv, p)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	client, err := NewGRPCPredictor("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestGRPCPredictorRoundTrip(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	client := startServer(t, FuncPredictor(func(ctx context.Context, window []int) ([]float64, error) {
		mu.Lock()
		seen = append([]int(nil), window...)
		mu.Unlock()
		return []float64{0.1, 0.2, 0.7}, nil
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	dist, err := client.Predict(ctx, []int{4, 0, 2, 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.7}, dist)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{4, 0, 2, 2}, seen)
}

func TestGRPCPredictorPropagatesServerError(t *testing.T) {
	client := startServer(t, &FailingPredictor{Size: 3, After: 0})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Predict(ctx, []int{1})
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnavailable))
}

func TestGRPCPredictorUnavailable(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	lis.Close()

	client, err := NewGRPCPredictor("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = client.Predict(ctx, []int{1})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestUniformPredictor(t *testing.T) {
	dist, err := (&UniformPredictor{Size: 4}).Predict(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, dist)

	_, err = (&UniformPredictor{}).Predict(context.Background(), nil)
	assert.Error(t, err)
}

func TestUniformPredictorHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&UniformPredictor{Size: 2, Delay: time.Minute}).Predict(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFixedPredictorReturnsCopy(t *testing.T) {
	f := &FixedPredictor{Distribution: []float64{0.5, 0.5}}
	dist, err := f.Predict(context.Background(), nil)
	require.NoError(t, err)
	dist[0] = 9

	again, _ := f.Predict(context.Background(), nil)
	assert.Equal(t, 0.5, again[0])
}

func TestFailingPredictorFailsAfterN(t *testing.T) {
	sentinel := errors.New("boom")
	f := &FailingPredictor{Size: 2, After: 2, Err: sentinel}

	for i := 0; i < 2; i++ {
		_, err := f.Predict(context.Background(), nil)
		require.NoError(t, err)
	}
	_, err := f.Predict(context.Background(), nil)
	assert.ErrorIs(t, err, sentinel)
}

func TestOpenBackends(t *testing.T) {
	p, closer, err := Open(BackendUniform, "", 4)
	require.NoError(t, err)
	defer closer.Close()
	dist, err := p.Predict(context.Background(), []int{0, 1})
	require.NoError(t, err)
	assert.Len(t, dist, 4)

	g, closer2, err := Open(BackendGRPC, "localhost:1", 4)
	require.NoError(t, err)
	assert.IsType(t, &GRPCPredictor{}, g)
	require.NoError(t, closer2.Close())

	_, _, err = Open("onnx", "", 4)
	assert.Error(t, err)
}
