package cli

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/RenatoCabral2022/melodygen/internal/inference"
	"github.com/RenatoCabral2022/melodygen/internal/vocab"
)

type serveStubOptions struct {
	addr     string
	mappings string
	size     int
	delay    time.Duration
}

func newPredictorCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predictor",
		Short: "Predictor service tools",
	}
	cmd.AddCommand(newServeStubCmd(root))
	return cmd
}

func newServeStubCmd(root *rootOptions) *cobra.Command {
	opts := &serveStubOptions{}

	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Serve a uniform predictor over gRPC",
		Long: `serve-stub answers every Predict call with the uniform distribution over
the vocabulary. The vocabulary size comes from --size or, when that is zero,
from the --mappings file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServeStub(ctx, root.log(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", ":50061", "listen address")
	f.StringVar(&opts.mappings, "mappings", "models/note_mappings.json", "note mappings JSON file")
	f.IntVar(&opts.size, "size", 0, "vocabulary size (overrides --mappings)")
	f.DurationVar(&opts.delay, "delay", 0, "artificial latency per prediction")
	return cmd
}

func runServeStub(ctx context.Context, log *zap.Logger, opts *serveStubOptions) error {
	size := opts.size
	if size <= 0 {
		v, err := vocab.Load(opts.mappings, "")
		if err != nil {
			return fmt.Errorf("load vocabulary: %w", err)
		}
		size = v.Size()
	}

	lis, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.addr, err)
	}

	srv := grpc.NewServer()
	inference.RegisterPredictorServer(srv, &inference.UniformPredictor{Size: size, Delay: opts.delay})

	errCh := make(chan error, 1)
	go func() {
		log.Info("stub predictor listening", zap.String("addr", lis.Addr().String()), zap.Int("size", size))
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		log.Info("stub predictor shutting down")
		srv.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
