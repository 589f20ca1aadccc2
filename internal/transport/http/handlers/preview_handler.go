package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

type previewLookup interface {
	Lookup(handleID string) (model.LiveMedia, bool)
}

// PreviewHandler streams in-memory previews. Handle ids are random and stop
// resolving as soon as the handle is revoked.
type PreviewHandler struct {
	previews previewLookup
	logger   *zap.Logger
}

func NewPreviewHandler(previews previewLookup, logger *zap.Logger) *PreviewHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreviewHandler{previews: previews, logger: logger}
}

func (h *PreviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.previews == nil {
		writeNotFound(w, "PREVIEW_NOT_FOUND", "preview not found")
		return
	}
	ref, ok := h.previews.Lookup(strings.TrimSpace(chi.URLParam(r, "handleID")))
	if !ok || ref.Source == nil {
		writeNotFound(w, "PREVIEW_NOT_FOUND", "preview not found")
		return
	}

	src, err := ref.Source.Open()
	if err != nil {
		writeInternal(w, "PREVIEW_UNAVAILABLE", "preview is unavailable")
		return
	}
	defer src.Close()

	contentType := ref.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, no-store")
	if ref.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(ref.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, src); err != nil {
		h.logger.Debug("stream preview aborted", zap.String("media_id", ref.ID), zap.Error(err))
	}
}
