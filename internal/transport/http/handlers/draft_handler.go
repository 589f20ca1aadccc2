package handlers

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	listingsvc "github.com/Oohan21/utopia-drafts/internal/services/listing"
	"github.com/Oohan21/utopia-drafts/internal/transport/http/dto"
	httperrors "github.com/Oohan21/utopia-drafts/internal/transport/http/errors"
)

type DraftHandler struct {
	registry *listingsvc.Registry
	logger   *zap.Logger
}

func NewDraftHandler(registry *listingsvc.Registry, logger *zap.Logger) *DraftHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftHandler{registry: registry, logger: logger}
}

func (h *DraftHandler) Start(w http.ResponseWriter, r *http.Request) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if h.registry == nil {
		writeInternal(w, "DRAFT_SERVICE_UNAVAILABLE", "draft service is unavailable")
		return
	}

	var req dto.StartDraftRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	s, err := h.registry.Start(r.Context(), owner, req.ListingID)
	if err != nil {
		h.logger.Warn("start draft session failed", zap.Int64("owner_id", owner), zap.Error(err))
		writeDraftError(w, err)
		return
	}
	httperrors.Write(w, http.StatusCreated, toDraftResponse(s.Snapshot()))
}

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	httperrors.Write(w, http.StatusOK, toDraftResponse(s.Snapshot()))
}

// PatchFields applies field values and flags. The city is written before the
// other fields so a sub-city sent in the same patch survives the city change.
func (h *DraftHandler) PatchFields(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}

	var req dto.PatchFieldsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	values := make(map[string]model.Value, len(req.Fields))
	for name, raw := range req.Fields {
		v, err := model.ValueFromJSON(raw)
		if err != nil {
			writeBadRequest(w, "VALIDATION_ERROR", "unsupported value for "+name)
			return
		}
		values[name] = v
	}

	if v, ok := values[model.FieldCity]; ok {
		if err := s.SetField(model.FieldCity, v); err != nil {
			writeDraftError(w, err)
			return
		}
		delete(values, model.FieldCity)
	}
	for _, name := range sortedKeys(values) {
		if err := s.SetField(name, values[name]); err != nil {
			writeDraftError(w, err)
			return
		}
	}
	for _, name := range sortedKeys(req.Flags) {
		if err := s.SetFlag(name, req.Flags[name]); err != nil {
			writeDraftError(w, err)
			return
		}
	}

	httperrors.Write(w, http.StatusOK, toDraftResponse(s.Snapshot()))
}

func (h *DraftHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}

	var req dto.CoordinatesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}
	if req.Lat == nil || req.Lon == nil {
		writeBadRequest(w, "VALIDATION_ERROR", "lat and lon are required")
		return
	}

	if _, err := s.SetCoordinates(model.Coordinates{Lat: *req.Lat, Lon: *req.Lon}); err != nil {
		writeDraftError(w, err)
		return
	}
	httperrors.Write(w, http.StatusAccepted, toDraftResponse(s.Snapshot()))
}

func (h *DraftHandler) LookupLocation(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	if _, err := s.LookupLocation(r.Context()); err != nil {
		writeDraftError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, toDraftResponse(s.Snapshot()))
}

func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	savedAt, err := s.SaveDraft(r.Context())
	if err != nil {
		writeDraftError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, dto.SaveDraftResponse{SavedAt: savedAt.UTC()})
}

func (h *DraftHandler) Restore(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	if _, err := s.RestoreDraft(r.Context()); err != nil {
		writeDraftError(w, err)
		return
	}
	httperrors.Write(w, http.StatusOK, toDraftResponse(s.Snapshot()))
}

func (h *DraftHandler) Discard(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	err := s.Discard(r.Context())
	h.registry.Remove(s.ID())
	if err != nil {
		writeDraftError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DraftHandler) Submit(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(w, r, h.registry)
	if !ok {
		return
	}
	listing, err := s.Submit(r.Context())
	if err != nil {
		writeDraftError(w, err)
		return
	}
	h.registry.Remove(s.ID())
	httperrors.Write(w, http.StatusOK, dto.SubmitResponse{ListingID: listing.ID})
}
