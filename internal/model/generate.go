package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

const (
	DefaultNumNotes    = 80
	DefaultTemperature = 1.0
	DefaultTempo       = 120
)

// GenerateRequest is the body of POST /generate. Every field is optional.
type GenerateRequest struct {
	NumNotes    *int     `json:"num_notes,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	Tempo       *int     `json:"tempo,omitempty"`
	Seed        Seed     `json:"seed,omitempty"`
}

// Seed accepts a JSON number, a numeric string, null, or anything else. Blank
// or non-integer values leave it unset.
type Seed struct {
	Value *int64
}

func (s *Seed) UnmarshalJSON(data []byte) error {
	s.Value = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		s.Value = &n
	}
	return nil
}

func (s Seed) MarshalJSON() ([]byte, error) {
	if s.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*s.Value, 10)), nil
}

// Parameters are the effective, clamped request parameters.
type Parameters struct {
	NumNotes    int     `json:"num_notes"`
	Temperature float64 `json:"temperature"`
	Tempo       int     `json:"tempo"`
}

type GenerateResponse struct {
	Success      bool       `json:"success"`
	MidiURL      string     `json:"midi_url"`
	AudioURL     *string    `json:"audio_url"`
	NotesPreview []string   `json:"notes_preview"`
	TotalNotes   int        `json:"total_notes"`
	Parameters   Parameters `json:"parameters"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// AboutResponse describes the loaded vocabulary.
type AboutResponse struct {
	VocabularySize int            `json:"vocabulary_size"`
	SequenceLength int            `json:"sequence_length"`
	Fingerprint    string         `json:"fingerprint"`
	Metadata       map[string]any `json:"metadata"`
}
