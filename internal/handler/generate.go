package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/melodygen/internal/composer"
	"github.com/RenatoCabral2022/melodygen/internal/generator"
	"github.com/RenatoCabral2022/melodygen/internal/logger"
	"github.com/RenatoCabral2022/melodygen/internal/middleware"
	"github.com/RenatoCabral2022/melodygen/internal/model"
	"github.com/RenatoCabral2022/melodygen/internal/sampler"
)

const maxBodyBytes = 1 << 16

// Generate handles POST /generate.
func (h *Handlers) Generate(w http.ResponseWriter, r *http.Request) {
	var body model.GenerateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	req := composer.Request{
		NumNotes:    model.DefaultNumNotes,
		Temperature: model.DefaultTemperature,
		Tempo:       model.DefaultTempo,
		Seed:        body.Seed.Value,
	}
	if body.NumNotes != nil {
		req.NumNotes = *body.NumNotes
	}
	if body.Temperature != nil {
		req.Temperature = *body.Temperature
	}
	if body.Tempo != nil {
		req.Tempo = *body.Tempo
	}

	res, err := h.composer.Compose(r.Context(), req)
	if err != nil {
		status, msg := errorStatus(err)
		h.logger.Warn("generate failed",
			logger.WithRequestID(middleware.GetRequestID(r.Context())),
			zap.Int("status", status),
			zap.Error(err),
		)
		writeError(w, status, msg)
		return
	}

	resp := model.GenerateResponse{
		Success:      true,
		MidiURL:      res.MidiURL,
		NotesPreview: res.Preview(),
		TotalNotes:   len(res.Symbols),
		Parameters: model.Parameters{
			NumNotes:    res.Params.NumNotes,
			Temperature: res.Params.Temperature,
			Tempo:       res.Params.Tempo,
		},
	}
	if res.AudioURL != "" {
		resp.AudioURL = &res.AudioURL
	}
	writeJSON(w, http.StatusOK, resp)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, composer.ErrBusy):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, generator.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "Model not loaded"
	case errors.Is(err, sampler.ErrInvalidTemperature):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, generator.ErrEmptyResult):
		return http.StatusInternalServerError, "Failed to generate music - no notes produced"
	case errors.Is(err, composer.ErrExportFailed):
		return http.StatusInternalServerError, "Failed to create MIDI file"
	default:
		return http.StatusInternalServerError, "Generation failed: " + err.Error()
	}
}
