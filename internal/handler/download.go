package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RenatoCabral2022/melodygen/internal/storage"
)

// Download handles GET /download/{filename}.
func (h *Handlers) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	rc, err := h.store.Open(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidName) {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		h.logger.Error("download failed", zap.String("file", name), zap.Error(err))
		http.Error(w, "File not available", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", storage.ContentType(name))
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("download interrupted", zap.String("file", name), zap.Error(err))
	}
}
