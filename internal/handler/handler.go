package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/melodygen/internal/composer"
	"github.com/RenatoCabral2022/melodygen/internal/model"
	"github.com/RenatoCabral2022/melodygen/internal/storage"
	"github.com/RenatoCabral2022/melodygen/internal/vocab"
)

// Composer is the part of composer.Composer the handlers need.
type Composer interface {
	Compose(ctx context.Context, req composer.Request) (*composer.Result, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	composer Composer
	store    storage.Store
	vocab    *vocab.Vocabulary
	logger   *zap.Logger
}

func NewHandlers(c Composer, store storage.Store, v *vocab.Vocabulary, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{composer: c, store: store, vocab: v, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}
