package handler

import (
	"net/http"

	"github.com/RenatoCabral2022/melodygen/internal/model"
)

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// About handles GET /about.
func (h *Handlers) About(w http.ResponseWriter, r *http.Request) {
	if h.vocab == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}
	writeJSON(w, http.StatusOK, model.AboutResponse{
		VocabularySize: h.vocab.Size(),
		SequenceLength: h.vocab.SequenceLength(),
		Fingerprint:    h.vocab.Fingerprint(),
		Metadata:       h.vocab.Metadata(),
	})
}
