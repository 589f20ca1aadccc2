package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Oohan21/utopia-drafts/internal/domain/model"
	refsvc "github.com/Oohan21/utopia-drafts/internal/services/reference"
)

// ReferenceRepo reads the city, sub-city and amenity dictionaries.
//
//	cities(id text primary key, name text, sort_order int, is_active bool)
//	sub_cities(id text primary key, city_id text references cities(id), name text, sort_order int)
//	amenities(key text primary key, label text, sort_order int)
type ReferenceRepo struct {
	pool *pgxpool.Pool
}

func NewReferenceRepo(pool *pgxpool.Pool) *ReferenceRepo {
	return &ReferenceRepo{pool: pool}
}

func (r *ReferenceRepo) Cities(ctx context.Context) ([]model.City, error) {
	if r.pool == nil {
		return nil, errors.New("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name
FROM cities
WHERE is_active = TRUE
ORDER BY sort_order ASC, name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	items := make([]model.City, 0, 16)
	for rows.Next() {
		var item model.City
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cities: %w", err)
	}
	return items, nil
}

func (r *ReferenceRepo) SubCities(ctx context.Context, cityID string) ([]model.SubCity, error) {
	if r.pool == nil {
		return nil, errors.New("postgres pool is nil")
	}
	cityID = strings.TrimSpace(cityID)

	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cities WHERE id = $1 AND is_active = TRUE)`, cityID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check city: %w", err)
	}
	if !exists {
		return nil, refsvc.ErrUnknownCity
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, city_id, name
FROM sub_cities
WHERE city_id = $1
ORDER BY sort_order ASC, name ASC
`, cityID)
	if err != nil {
		return nil, fmt.Errorf("list sub-cities: %w", err)
	}
	defer rows.Close()

	items := make([]model.SubCity, 0, 16)
	for rows.Next() {
		var item model.SubCity
		if err := rows.Scan(&item.ID, &item.CityID, &item.Name); err != nil {
			return nil, fmt.Errorf("scan sub-city: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sub-cities: %w", err)
	}
	return items, nil
}

func (r *ReferenceRepo) Amenities(ctx context.Context) ([]model.Amenity, error) {
	if r.pool == nil {
		return nil, errors.New("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT key, COALESCE(label, key)
FROM amenities
ORDER BY sort_order ASC, key ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list amenities: %w", err)
	}
	defer rows.Close()

	items := make([]model.Amenity, 0, 16)
	for rows.Next() {
		var item model.Amenity
		if err := rows.Scan(&item.Key, &item.Label); err != nil {
			return nil, fmt.Errorf("scan amenity: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate amenities: %w", err)
	}
	return items, nil
}
