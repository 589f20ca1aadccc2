package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Oohan21/utopia-drafts/internal/config"
	refsvc "github.com/Oohan21/utopia-drafts/internal/services/reference"
	"github.com/Oohan21/utopia-drafts/internal/transport/http/dto"
)

func withURLParam(ctx context.Context, key, value string) context.Context {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
}

func TestReferenceHandlerLists(t *testing.T) {
	cfg := config.Default().Reference
	h := NewReferenceHandler(refsvc.NewStatic(cfg))

	rr := httptest.NewRecorder()
	h.Cities(rr, httptest.NewRequest(http.MethodGet, "/v1/reference/cities", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	cities := decodeBody[dto.CitiesResponse](t, rr)
	if len(cities.Items) != len(cfg.Cities) || cities.Items[0].ID != "addis-ababa" {
		t.Fatalf("unexpected cities: %+v", cities.Items)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/reference/cities/addis-ababa/subcities", nil)
	req = req.WithContext(withURLParam(req.Context(), "cityID", "addis-ababa"))
	rr = httptest.NewRecorder()
	h.SubCities(rr, req)
	subs := decodeBody[dto.SubCitiesResponse](t, rr)
	if rr.Code != http.StatusOK || len(subs.Items) != len(cfg.Cities[0].SubCities) || subs.Items[0].CityID != "addis-ababa" {
		t.Fatalf("unexpected sub-cities: %d %+v", rr.Code, subs.Items)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/reference/cities/atlantis/subcities", nil)
	req = req.WithContext(withURLParam(req.Context(), "cityID", "atlantis"))
	rr = httptest.NewRecorder()
	h.SubCities(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown city must be 404, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.Amenities(rr, httptest.NewRequest(http.MethodGet, "/v1/reference/amenities", nil))
	if amenities := decodeBody[dto.AmenitiesResponse](t, rr); len(amenities.Items) != len(cfg.Amenities) {
		t.Fatalf("unexpected amenities: %+v", amenities.Items)
	}
}

func TestHealthHandler(t *testing.T) {
	rr := httptest.NewRecorder()
	NewHealthHandler().Get(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "{\"ok\":true}\n" {
		t.Fatalf("unexpected health response: %d %q", rr.Code, rr.Body.String())
	}
}
