package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RenatoCabral2022/melodygen/internal/logger"
)

type rootOptions struct {
	logLevel string
	logFile  string
	logger   *zap.Logger
}

// NewRootCmd builds the melodygen command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "melodygen",
		Short: "Generate melodies from a trained next-note model",
		Long: `melodygen samples note sequences from a next-note predictor and renders
them to Standard MIDI and WAV files. It can also run a stub predictor service
for local development of the HTTP server.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = logger.New(opts.logLevel, opts.logFile)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "also write JSON logs to this file")

	cmd.AddCommand(newGenerateCmd(opts))
	cmd.AddCommand(newPredictorCmd(opts))
	return cmd
}

func (o *rootOptions) log() *zap.Logger {
	if o.logger == nil {
		return zap.NewNop()
	}
	return o.logger
}
