package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteVocabulary writes a mappings file in the trained-model layout (string
// keys) and a metadata file into dir, returning both paths.
func WriteVocabulary(t *testing.T, dir string, symbols []string, sequenceLength int, metadata map[string]any) (mappingsPath, metadataPath string) {
	t.Helper()

	intToNote := make(map[string]string, len(symbols))
	for i, s := range symbols {
		intToNote[strconv.Itoa(i)] = s
	}
	mappingsPath = filepath.Join(dir, "note_mappings.json")
	writeJSON(t, mappingsPath, map[string]any{
		"int_to_note":     intToNote,
		"sequence_length": sequenceLength,
	})

	metadataPath = filepath.Join(dir, "model_metadata.json")
	if metadata != nil {
		writeJSON(t, metadataPath, metadata)
	}
	return mappingsPath, metadataPath
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
