package reference

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Oohan21/utopia-drafts/internal/config"
	"github.com/Oohan21/utopia-drafts/internal/domain/model"
)

var ErrUnknownCity = errors.New("unknown city")

// Source supplies the read-only reference lists the editor matches against.
type Source interface {
	Cities(ctx context.Context) ([]model.City, error)
	SubCities(ctx context.Context, cityID string) ([]model.SubCity, error)
	Amenities(ctx context.Context) ([]model.Amenity, error)
}

// Static serves reference lists from configuration.
type Static struct {
	cities    []model.City
	subCities map[string][]model.SubCity
	amenities []model.Amenity
}

func NewStatic(cfg config.ReferenceConfig) *Static {
	s := &Static{subCities: map[string][]model.SubCity{}}
	for _, city := range cfg.Cities {
		if strings.TrimSpace(city.ID) == "" || strings.TrimSpace(city.Name) == "" {
			continue
		}
		s.cities = append(s.cities, model.City{ID: city.ID, Name: city.Name})
		subs := make([]model.SubCity, 0, len(city.SubCities))
		for _, sub := range city.SubCities {
			if strings.TrimSpace(sub.ID) == "" || strings.TrimSpace(sub.Name) == "" {
				continue
			}
			subs = append(subs, model.SubCity{ID: sub.ID, CityID: city.ID, Name: sub.Name})
		}
		s.subCities[city.ID] = subs
	}
	for _, a := range cfg.Amenities {
		if strings.TrimSpace(a.Key) == "" {
			continue
		}
		s.amenities = append(s.amenities, model.Amenity{Key: a.Key, Label: a.Label})
	}
	return s
}

func (s *Static) Cities(_ context.Context) ([]model.City, error) {
	return append([]model.City(nil), s.cities...), nil
}

func (s *Static) SubCities(_ context.Context, cityID string) ([]model.SubCity, error) {
	subs, ok := s.subCities[cityID]
	if !ok {
		return nil, ErrUnknownCity
	}
	return append([]model.SubCity(nil), subs...), nil
}

func (s *Static) Amenities(_ context.Context) ([]model.Amenity, error) {
	return append([]model.Amenity(nil), s.amenities...), nil
}

// Cache keeps reference lists from a slower source for ttl.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cities    cached[[]model.City]
	amenities cached[[]model.Amenity]
	subCities map[string]cached[[]model.SubCity]
}

type cached[T any] struct {
	value   T
	expires time.Time
}

func NewCache(source Source, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Cache{
		source:    source,
		ttl:       ttl,
		now:       time.Now,
		subCities: map[string]cached[[]model.SubCity]{},
	}
}

func (c *Cache) Cities(ctx context.Context) ([]model.City, error) {
	c.mu.Lock()
	entry := c.cities
	c.mu.Unlock()
	if c.now().Before(entry.expires) {
		return entry.value, nil
	}

	cities, err := c.source.Cities(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cities = cached[[]model.City]{value: cities, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return cities, nil
}

func (c *Cache) SubCities(ctx context.Context, cityID string) ([]model.SubCity, error) {
	c.mu.Lock()
	entry, ok := c.subCities[cityID]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		return entry.value, nil
	}

	subs, err := c.source.SubCities(ctx, cityID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.subCities[cityID] = cached[[]model.SubCity]{value: subs, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return subs, nil
}

func (c *Cache) Amenities(ctx context.Context) ([]model.Amenity, error) {
	c.mu.Lock()
	entry := c.amenities
	c.mu.Unlock()
	if c.now().Before(entry.expires) {
		return entry.value, nil
	}

	amenities, err := c.source.Amenities(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.amenities = cached[[]model.Amenity]{value: amenities, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return amenities, nil
}
