package repository

import (
	"context"
	"errors"
	"fmt"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// CreateIfAbsent inserts a user with an empty profile unless the id exists
func (r *UserRepository) CreateIfAbsent(ctx context.Context, id string) error {
	query := `
		INSERT INTO users (google_hash)
		VALUES ($1)
		ON CONFLICT (google_hash) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT google_hash, age, gender, country_id, push_token, created_at
		FROM users
		WHERE google_hash = $1
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Age, &user.Gender, &user.CountryID, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateProfile sets all profile fields at once and returns the updated user
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, age int, gender string, countryID int) (*models.User, error) {
	query := `
		UPDATE users SET age = $2, gender = $3, country_id = $4
		WHERE google_hash = $1
		RETURNING google_hash, age, gender, country_id, push_token, created_at
	`
	var user models.User
	err := r.db.QueryRow(ctx, query, id, age, gender, countryID).Scan(
		&user.ID, &user.Age, &user.Gender, &user.CountryID, &user.PushToken, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %w", apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE google_hash = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", apperr.ErrNotFound)
	}
	return nil
}
