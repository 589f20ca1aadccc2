package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	listingsvc "github.com/Oohan21/utopia-drafts/internal/services/listing"
	mediasvc "github.com/Oohan21/utopia-drafts/internal/services/media"
	"github.com/Oohan21/utopia-drafts/internal/transport/http/dto"
	httperrors "github.com/Oohan21/utopia-drafts/internal/transport/http/errors"
)

const multipartOverhead = 1 << 20

type MediaHandler struct {
	registry  *listingsvc.Registry
	maxUpload int64
}

func NewMediaHandler(registry *listingsvc.Registry, limits mediasvc.Limits) *MediaHandler {
	maxUpload := limits.MaxImageBytes
	if limits.MaxVideoBytes > maxUpload {
		maxUpload = limits.MaxVideoBytes
	}
	if limits.MaxDocumentBytes > maxUpload {
		maxUpload = limits.MaxDocumentBytes
	}
	return &MediaHandler{registry: registry, maxUpload: maxUpload + multipartOverhead}
}

// Upload attaches one file from the "file" form part. Size and type limits are
// enforced by the session, so an oversized file still reaches it with its real size.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "could not read file")
		return
	}

	lastModified := time.Now().UTC()
	if raw := strings.TrimSpace(r.FormValue("last_modified")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "last_modified must be RFC3339")
			return
		}
		lastModified = parsed
	}

	ref, err := s.AttachMedia(r.Context(), slot, mediasvc.Asset{
		Name:         header.Filename,
		Size:         int64(len(data)),
		ContentType:  header.Header.Get("Content-Type"),
		LastModified: lastModified,
		Source:       model.BytesSource(data),
	})
	if err != nil {
		writeDraftError(w, err)
		return
	}

	uri, resolvable := s.ResolvePreview(ref.RefID())
	httperrors.Write(w, http.StatusCreated, toMediaItem(listingsvc.MediaView{
		ID:         ref.RefID(),
		Meta:       ref.Meta(),
		PreviewURI: uri,
		Resolvable: resolvable,
	}))
}

func (h *MediaHandler) Detach(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	slot, ok := slotParam(w, r)
	if !ok {
		return
	}
	if err := s.DetachMedia(r.Context(), slot, strings.TrimSpace(chi.URLParam(r, "refID"))); err != nil {
		writeDraftError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, toDraftResponse(s.Snapshot()))
}

func (h *MediaHandler) ReorderImages(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.From == nil || req.To == nil {
		writeBadRequest(w, "VALIDATION_ERROR", "from and to are required")
		return
	}
	if err := s.ReorderImages(*req.From, *req.To); err != nil {
		writeDraftError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, toDraftResponse(s.Snapshot()))
}

func slotParam(w http.ResponseWriter, r *http.Request) (enums.MediaSlot, bool) {
	slot := enums.MediaSlot(strings.ToLower(strings.TrimSpace(chi.URLParam(r, "slot"))))
	if !slot.Valid() {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown media slot "+strconv.Quote(string(slot)))
		return "", false
	}
	return slot, true
}
