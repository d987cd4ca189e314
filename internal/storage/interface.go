package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
)

var (
	ErrNotFound    = errors.New("artifact not found")
	ErrInvalidName = errors.New("invalid artifact name")
)

// Store persists generated artifacts and hands back a URL clients can fetch
// them from.
type Store interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Ensure both backends implement Store
var (
	_ Store = (*LocalStore)(nil)
	_ Store = (*S3Store)(nil)
)

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidName reports whether name is a flat file name safe to use as a key:
// no separators, no leading dot, no "..".
func ValidName(name string) bool {
	return namePattern.MatchString(name) && !strings.Contains(name, "..")
}

// ContentType guesses the MIME type of a generated artifact from its extension.
func ContentType(name string) string {
	switch {
	case strings.HasSuffix(name, ".mid"), strings.HasSuffix(name, ".midi"):
		return "audio/midi"
	case strings.HasSuffix(name, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
