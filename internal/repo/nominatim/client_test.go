package nominatim

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReverseGeocodeMapsAddress(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("format") != "jsonv2" || q.Get("addressdetails") != "1" {
			t.Fatalf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("lat") != "9.032000" || q.Get("lon") != "38.746000" {
			t.Fatalf("unexpected coordinates: %s %s", q.Get("lat"), q.Get("lon"))
		}
		if q.Get("accept-language") != "en" {
			t.Fatalf("unexpected language: %q", q.Get("accept-language"))
		}
		if got := r.Header.Get("User-Agent"); got != "drafts-test" {
			t.Fatalf("unexpected User-Agent: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"display_name": "12, Africa Avenue, Bole, Addis Ababa, Ethiopia",
			"address": {
				"house_number": "12",
				"road": "Africa Avenue",
				"suburb": "Bole",
				"city_district": "Bole",
				"city": "Addis Ababa",
				"state": "Addis Ababa",
				"country": "Ethiopia"
			}
		}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "drafts-test", "en", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	result, err := client.ReverseGeocode(context.Background(), 9.032, 38.746)
	if err != nil {
		t.Fatalf("reverse geocode: %v", err)
	}
	if len(result.CityCandidates) != 1 || result.CityCandidates[0] != "Addis Ababa" {
		t.Fatalf("unexpected city candidates: %v", result.CityCandidates)
	}
	if len(result.SubCityCandidates) != 1 || result.SubCityCandidates[0] != "Bole" {
		t.Fatalf("unexpected sub-city candidates: %v", result.SubCityCandidates)
	}
	if result.Street != "12 Africa Avenue" {
		t.Fatalf("unexpected street: %q", result.Street)
	}
	if result.Suburb != "Bole" || result.Region != "Addis Ababa" || result.Country != "Ethiopia" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestReverseGeocodeStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", "", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.ReverseGeocode(context.Background(), 9, 38)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if reqErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status: %d", reqErr.StatusCode)
	}
}

func TestReverseGeocodeUnableToGeocode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "", "", time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.ReverseGeocode(context.Background(), 9, 38); err == nil {
		t.Fatalf("expected error for unresolvable coordinates")
	}
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("not a url", "", "", time.Second); err == nil {
		t.Fatalf("expected invalid url error")
	}
}

func TestToResultFallsBackToTownAndNeighbourhood(t *testing.T) {
	t.Parallel()

	result := toResult(reverseResponse{Address: map[string]string{
		"town":          "Sebeta",
		"neighbourhood": "Alem Gena",
		"road":          "Jimma Road",
	}})
	if len(result.CityCandidates) != 1 || result.CityCandidates[0] != "Sebeta" {
		t.Fatalf("unexpected city candidates: %v", result.CityCandidates)
	}
	if result.Suburb != "Alem Gena" || result.Street != "Jimma Road" {
		t.Fatalf("unexpected result: %+v", result)
	}
}
