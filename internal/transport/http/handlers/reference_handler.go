package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	refsvc "github.com/Oohan21/utopia-drafts/internal/services/reference"
	"github.com/Oohan21/utopia-drafts/internal/transport/http/dto"
	httperrors "github.com/Oohan21/utopia-drafts/internal/transport/http/errors"
)

type ReferenceHandler struct {
	source refsvc.Source
}

func NewReferenceHandler(source refsvc.Source) *ReferenceHandler {
	return &ReferenceHandler{source: source}
}

func (h *ReferenceHandler) Cities(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeInternal(w, "REFERENCE_SERVICE_UNAVAILABLE", "reference data is unavailable")
		return
	}
	cities, err := h.source.Cities(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load cities")
		return
	}

	resp := dto.CitiesResponse{Items: make([]dto.CityResponse, 0, len(cities))}
	for _, c := range cities {
		resp.Items = append(resp.Items, dto.CityResponse{ID: c.ID, Name: c.Name})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ReferenceHandler) SubCities(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeInternal(w, "REFERENCE_SERVICE_UNAVAILABLE", "reference data is unavailable")
		return
	}
	subCities, err := h.source.SubCities(r.Context(), strings.TrimSpace(chi.URLParam(r, "cityID")))
	if err != nil {
		if errors.Is(err, refsvc.ErrUnknownCity) {
			writeNotFound(w, "CITY_NOT_FOUND", "city not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load sub-cities")
		return
	}

	resp := dto.SubCitiesResponse{Items: make([]dto.SubCityResponse, 0, len(subCities))}
	for _, sc := range subCities {
		resp.Items = append(resp.Items, dto.SubCityResponse{ID: sc.ID, CityID: sc.CityID, Name: sc.Name})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *ReferenceHandler) Amenities(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		writeInternal(w, "REFERENCE_SERVICE_UNAVAILABLE", "reference data is unavailable")
		return
	}
	amenities, err := h.source.Amenities(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load amenities")
		return
	}

	resp := dto.AmenitiesResponse{Items: make([]dto.AmenityResponse, 0, len(amenities))}
	for _, a := range amenities {
		resp.Items = append(resp.Items, dto.AmenityResponse{Key: a.Key, Label: a.Label})
	}
	httperrors.Write(w, http.StatusOK, resp)
}
