package httptransport

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certledger/internal/artifact"
	"certledger/internal/transport/http/shared"
	"certledger/pkg/requestcontext"
	dErrors "certledger/pkg/domain-errors"
)

// maxArtifactBytes bounds uploads; anything larger belongs in external
// storage with only the digest recorded here.
const maxArtifactBytes = 16 << 20

// ArtifactsHandler stores and fetches certificate artifacts.
type ArtifactsHandler struct {
	store  artifact.Store
	logger *slog.Logger
}

func NewArtifactsHandler(store artifact.Store, logger *slog.Logger) *ArtifactsHandler {
	return &ArtifactsHandler{store: store, logger: logger}
}

// HandleUpload stores the raw request body and returns its content ref.
func (h *ArtifactsHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := io.ReadAll(io.LimitReader(r.Body, maxArtifactBytes+1))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "failed to read request body"))
		return
	}
	if len(data) == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "empty artifact"))
		return
	}
	if len(data) > maxArtifactBytes {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "artifact too large"))
		return
	}

	ref, err := h.store.Put(ctx, data)
	if err != nil {
		h.logger.ErrorContext(ctx, "artifact store failed",
			"error", err.Error(),
			"request_id", requestcontext.RequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to store artifact"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]string{"ref": string(ref)})
}

// HandleFetch streams an artifact back by ref.
func (h *ArtifactsHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	ref := artifact.Ref(chi.URLParam(r, "ref"))

	data, err := h.store.Get(r.Context(), ref)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
