package inference

import (
	"fmt"
	"io"
)

const (
	BackendGRPC    = "grpc"
	BackendUniform = "uniform"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the predictor named by backend. The returned closer releases
// any connection it holds.
func Open(backend, addr string, vocabSize int) (Predictor, io.Closer, error) {
	switch backend {
	case BackendGRPC:
		p, err := NewGRPCPredictor(addr)
		if err != nil {
			return nil, nil, err
		}
		return p, closerFunc(p.Close), nil
	case BackendUniform:
		return &UniformPredictor{Size: vocabSize}, nopCloser{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown predictor backend %q", backend)
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
