package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RenatoCabral2022/melodygen/internal/audio"
	"github.com/RenatoCabral2022/melodygen/internal/composer"
	"github.com/RenatoCabral2022/melodygen/internal/generator"
	"github.com/RenatoCabral2022/melodygen/internal/inference"
	"github.com/RenatoCabral2022/melodygen/internal/model"
	"github.com/RenatoCabral2022/melodygen/internal/storage"
	"github.com/RenatoCabral2022/melodygen/internal/vocab"
)

type generateOptions struct {
	mappings      string
	metadata      string
	backend       string
	predictorAddr string
	notes         int
	temperature   float64
	tempo         int
	seed          string
	outDir        string
	sampleRate    int
}

// generateOutput is printed as JSON when generation succeeds.
type generateOutput struct {
	MidiPath     string           `json:"midi_path"`
	AudioPath    *string          `json:"audio_path"`
	NotesPreview []string         `json:"notes_preview"`
	TotalNotes   int              `json:"total_notes"`
	Parameters   model.Parameters `json:"parameters"`
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate one melody and write it as .mid and .wav files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, root, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.mappings, "mappings", "models/note_mappings.json", "note mappings JSON file")
	f.StringVar(&opts.metadata, "metadata", "models/model_metadata.json", "optional model metadata JSON file")
	f.StringVar(&opts.backend, "predictor", inference.BackendUniform, "predictor backend (grpc, uniform)")
	f.StringVar(&opts.predictorAddr, "predictor-addr", "localhost:50061", "gRPC predictor address")
	f.IntVarP(&opts.notes, "notes", "n", model.DefaultNumNotes, "number of notes to generate")
	f.Float64VarP(&opts.temperature, "temperature", "t", model.DefaultTemperature, "sampling temperature")
	f.IntVar(&opts.tempo, "tempo", model.DefaultTempo, "tempo in BPM")
	f.StringVar(&opts.seed, "seed", "", "integer seed for a reproducible melody")
	f.StringVarP(&opts.outDir, "out", "o", ".", "output directory")
	f.IntVar(&opts.sampleRate, "sample-rate", audio.DefaultSampleRate, "WAV sample rate")
	return cmd
}

// parseSeed mirrors the HTTP API: blank or non-integer seeds mean no seed.
func parseSeed(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func runGenerate(cmd *cobra.Command, root *rootOptions, opts *generateOptions) error {
	log := root.log()

	v, err := vocab.Load(opts.mappings, opts.metadata)
	if err != nil {
		return fmt.Errorf("load vocabulary: %w", err)
	}

	p, closer, err := inference.Open(opts.backend, opts.predictorAddr, v.Size())
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := storage.NewLocalStore(opts.outDir, opts.outDir)
	if err != nil {
		return err
	}

	c := composer.New(
		generator.New(p, v, log),
		v,
		audio.NewSynthesizer(opts.sampleRate),
		store,
		composer.WithLogger(log),
		composer.WithMaxConcurrent(1),
	)
	res, err := c.Compose(cmd.Context(), composer.Request{
		NumNotes:    opts.notes,
		Temperature: opts.temperature,
		Tempo:       opts.tempo,
		Seed:        parseSeed(opts.seed),
	})
	if err != nil {
		return err
	}

	out := generateOutput{
		MidiPath:     res.MidiURL,
		NotesPreview: res.Preview(),
		TotalNotes:   len(res.Symbols),
		Parameters: model.Parameters{
			NumNotes:    res.Params.NumNotes,
			Temperature: res.Params.Temperature,
			Tempo:       res.Params.Tempo,
		},
	}
	if res.AudioURL != "" {
		out.AudioPath = &res.AudioURL
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
