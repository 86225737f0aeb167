package repository

import (
	"context"
	"fmt"

	"othershorts-backend/internal/models"
)

// CountryRepository handles database operations for countries
type CountryRepository struct {
	db DBTX
}

// NewCountryRepository creates a new country repository
func NewCountryRepository(db DBTX) *CountryRepository {
	return &CountryRepository{db: db}
}

// List returns all countries ordered by name
func (r *CountryRepository) List(ctx context.Context) ([]models.Country, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM countries ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	countries := make([]models.Country, 0)
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating countries: %w", err)
	}

	return countries, nil
}

// Exists checks if a country id is known
func (r *CountryRepository) Exists(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM countries WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check country existence: %w", err)
	}
	return exists, nil
}
