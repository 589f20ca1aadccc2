package reference

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Oohan21/utopia-drafts/internal/config"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

func TestStaticServesConfiguredLists(t *testing.T) {
	s := NewStatic(config.Default().Reference)
	ctx := context.Background()

	cities, err := s.Cities(ctx)
	if err != nil {
		t.Fatalf("cities: %v", err)
	}
	if len(cities) == 0 || cities[0].ID != "addis-ababa" {
		t.Fatalf("unexpected cities: %+v", cities)
	}

	subs, err := s.SubCities(ctx, "addis-ababa")
	if err != nil {
		t.Fatalf("sub-cities: %v", err)
	}
	if len(subs) == 0 || subs[0].CityID != "addis-ababa" {
		t.Fatalf("unexpected sub-cities: %+v", subs)
	}

	if _, err := s.SubCities(ctx, "atlantis"); !errors.Is(err, ErrUnknownCity) {
		t.Fatalf("expected ErrUnknownCity, got %v", err)
	}
}

func TestStaticSkipsIncompleteEntries(t *testing.T) {
	s := NewStatic(config.ReferenceConfig{
		Cities: []config.CityConfig{
			{ID: "", Name: "Nameless"},
			{ID: "adama", Name: "Adama", SubCities: []config.SubCityConfig{{ID: "x"}}},
		},
	})
	cities, _ := s.Cities(context.Background())
	if len(cities) != 1 {
		t.Fatalf("expected one city, got %d", len(cities))
	}
	subs, _ := s.SubCities(context.Background(), "adama")
	if len(subs) != 0 {
		t.Fatalf("expected incomplete sub-city to be skipped")
	}
}

type countingSource struct {
	*Static
	cityCalls int
	subCalls  int
}

func (c *countingSource) Cities(ctx context.Context) ([]model.City, error) {
	c.cityCalls++
	return c.Static.Cities(ctx)
}

func (c *countingSource) SubCities(ctx context.Context, cityID string) ([]model.SubCity, error) {
	c.subCalls++
	return c.Static.SubCities(ctx, cityID)
}

func TestCacheRefreshesAfterTTL(t *testing.T) {
	src := &countingSource{Static: NewStatic(config.Default().Reference)}
	cache := NewCache(src, time.Minute)
	now := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := cache.Cities(ctx); err != nil {
			t.Fatalf("cities: %v", err)
		}
		if _, err := cache.SubCities(ctx, "addis-ababa"); err != nil {
			t.Fatalf("sub-cities: %v", err)
		}
	}
	if src.cityCalls != 1 || src.subCalls != 1 {
		t.Fatalf("expected single upstream call each, got %d/%d", src.cityCalls, src.subCalls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := cache.Cities(ctx); err != nil {
		t.Fatalf("cities after ttl: %v", err)
	}
	if src.cityCalls != 2 {
		t.Fatalf("expected refresh after ttl, got %d calls", src.cityCalls)
	}
}
