package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Oohan21/utopia-drafts/internal/domain/enums"
	authsvc "github.com/Oohan21/utopia-drafts/internal/services/auth"
	"github.com/Oohan21/utopia-drafts/internal/services/drafts"
	listingsvc "github.com/Oohan21/utopia-drafts/internal/services/listing"
	mediasvc "github.com/Oohan21/utopia-drafts/internal/services/media"
	"github.com/Oohan21/utopia-drafts/internal/transport/http/dto"
	httperrors "github.com/Oohan21/utopia-drafts/internal/transport/http/errors"
)

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusBadRequest, code, message)
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusNotFound, code, message)
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.WriteError(w, http.StatusInternalServerError, code, message)
}

// writeDraftError maps session, media, storage and submission errors to responses.
func writeDraftError(w http.ResponseWriter, err error) {
	var (
		mediaErr   *mediasvc.ValidationError
		submitErr  *listingsvc.SubmissionError
		storageErr *drafts.StorageError
	)
	switch {
	case errors.Is(err, listingsvc.ErrSessionNotFound):
		writeNotFound(w, "DRAFT_SESSION_NOT_FOUND", "draft session not found")
	case errors.Is(err, listingsvc.ErrSessionClosed):
		httperrors.WriteError(w, http.StatusGone, "DRAFT_SESSION_CLOSED", "draft session is closed")
	case errors.Is(err, listingsvc.ErrSubmissionInProgress):
		httperrors.WriteError(w, http.StatusConflict, "SUBMISSION_IN_PROGRESS", "listing is being submitted")
	case errors.Is(err, listingsvc.ErrInvalidField):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid field name")
	case errors.Is(err, listingsvc.ErrListingNotFound):
		writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
	case errors.As(err, &mediaErr):
		httperrors.Write(w, http.StatusUnprocessableEntity, httperrors.NewFieldError(
			"MEDIA_VALIDATION_ERROR", mediaErr.Message,
			map[string]string{string(mediaErr.Slot): mediaErr.Constraint},
		))
	case errors.Is(err, mediasvc.ErrNotFound):
		writeNotFound(w, "MEDIA_NOT_FOUND", "media reference not found")
	case errors.As(err, &submitErr):
		message := submitErr.Message
		if message == "" {
			message = "listing is not ready for submission"
		}
		httperrors.Write(w, http.StatusUnprocessableEntity, httperrors.NewFieldError("SUBMISSION_ERROR", message, submitErr.FieldErrors))
	case errors.Is(err, drafts.ErrNotFound):
		writeNotFound(w, "DRAFT_NOT_FOUND", "no saved draft")
	case errors.Is(err, drafts.ErrQuotaExceeded):
		httperrors.WriteError(w, http.StatusRequestEntityTooLarge, "DRAFT_TOO_LARGE", "draft exceeds storage quota")
	case errors.As(err, &storageErr):
		httperrors.WriteError(w, http.StatusServiceUnavailable, "DRAFT_STORAGE_UNAVAILABLE", "draft storage is unavailable")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func requireOwner(w http.ResponseWriter, r *http.Request) (int64, bool) {
	owner, ok := authsvc.OwnerID(r.Context())
	if !ok {
		httperrors.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return 0, false
	}
	return owner, true
}

func lookupSession(w http.ResponseWriter, r *http.Request, registry *listingsvc.Registry) (*listingsvc.Session, bool) {
	owner, ok := requireOwner(w, r)
	if !ok {
		return nil, false
	}
	if registry == nil {
		writeInternal(w, "DRAFT_SERVICE_UNAVAILABLE", "draft service is unavailable")
		return nil, false
	}
	s, err := registry.Get(owner, strings.TrimSpace(chi.URLParam(r, "sessionID")))
	if err != nil {
		writeDraftError(w, err)
		return nil, false
	}
	return s, true
}

func toDraftResponse(view listingsvc.View) dto.DraftResponse {
	resp := dto.DraftResponse{
		SessionID:        view.SessionID,
		ListingID:        view.ListingID,
		Fields:           make(map[string]any, len(view.Fields)),
		Flags:            view.Flags,
		Media:            make(map[string][]dto.MediaItemResponse, 3),
		Location:         dto.CoordinatesResponse{Lat: view.Location.Lat, Lon: view.Location.Lon},
		PendingDeletions: view.PendingDeletions,
		Dirty:            view.Dirty,
		LocationStatus: dto.LocationStatusResponse{
			State:   view.LocationStatus.State,
			Reason:  view.LocationStatus.Reason,
			Address: view.LocationStatus.Address,
		},
		Validation: dto.ValidationResponse{
			Errors:   view.Validation.Errors,
			Warnings: view.Validation.Warnings,
			Sections: make(map[string]int, len(view.Validation.Sections)),
			Progress: view.Validation.Progress,
		},
	}
	for name, v := range view.Fields {
		resp.Fields[name] = v.Any()
	}
	if resp.Flags == nil {
		resp.Flags = map[string]bool{}
	}
	if resp.PendingDeletions == nil {
		resp.PendingDeletions = []string{}
	}
	for section, score := range view.Validation.Sections {
		resp.Validation.Sections[string(section)] = score
	}
	for _, slot := range []enums.MediaSlot{enums.MediaSlotImages, enums.MediaSlotVideo, enums.MediaSlotDocuments} {
		items := make([]dto.MediaItemResponse, 0, len(view.Media[slot]))
		for _, m := range view.Media[slot] {
			items = append(items, toMediaItem(m))
		}
		resp.Media[string(slot)] = items
	}
	if !view.SavedAt.IsZero() {
		savedAt := view.SavedAt.UTC()
		resp.SavedAt = &savedAt
	}
	return resp
}

func toMediaItem(m listingsvc.MediaView) dto.MediaItemResponse {
	return dto.MediaItemResponse{
		ID:           m.ID,
		Name:         m.Meta.Name,
		Size:         m.Meta.Size,
		ContentType:  m.Meta.ContentType,
		LastModified: m.Meta.LastModified.UTC().Truncate(time.Second),
		Placeholder:  m.Placeholder,
		RemoteID:     m.RemoteID,
		PreviewURL:   m.PreviewURI,
		Resolvable:   m.Resolvable,
	}
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
