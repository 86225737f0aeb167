package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"othershorts-backend/internal/apperr"
	"othershorts-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Profile constraints enforced on update
const (
	MinAge = 13
	MaxAge = 100
)

var allowedGenders = map[string]bool{"Male": true, "Female": true, "Other": true}

// UserStore is the persistence the user service needs
type UserStore interface {
	CreateIfAbsent(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, age int, gender string, countryID int) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// CountryStore lists and checks profile countries
type CountryStore interface {
	List(ctx context.Context) ([]models.Country, error)
	Exists(ctx context.Context, id int) (bool, error)
}

// UserService handles user-related business logic
type UserService struct {
	userRepo    UserStore
	countryRepo CountryStore
	jwtSecret   string
	jwtExpiry   time.Duration
}

// NewUserService creates a new user service. An empty jwtSecret disables
// token issuing and validation.
func NewUserService(userRepo UserStore, countryRepo CountryStore, jwtSecret string, jwtExpiryDays int) *UserService {
	return &UserService{
		userRepo:    userRepo,
		countryRepo: countryRepo,
		jwtSecret:   jwtSecret,
		jwtExpiry:   time.Duration(jwtExpiryDays) * 24 * time.Hour,
	}
}

// HashIdentity derives the stored user id from an external sign-in id
func HashIdentity(externalID string) string {
	sum := sha256.Sum256([]byte(externalID))
	return hex.EncodeToString(sum[:])
}

// TokensEnabled reports whether a JWT secret is configured
func (s *UserService) TokensEnabled() bool {
	return s.jwtSecret != ""
}

// GenerateJWT generates a JWT token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	if !s.TokensEnabled() {
		return "", fmt.Errorf("jwt secret: %w", apperr.ErrNotConfigured)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(s.jwtExpiry).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	if !s.TokensEnabled() {
		return "", fmt.Errorf("jwt secret: %w", apperr.ErrNotConfigured)
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse token: %v", apperr.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("%w: invalid token claims", apperr.ErrUnauthorized)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: user_id not found in token", apperr.ErrUnauthorized)
	}

	return userID, nil
}

// SignInResult is returned from SignIn. Token is empty when tokens are disabled.
type SignInResult struct {
	User  *models.User
	Token string
}

// SignIn creates the user for externalID on first sight and returns it
func (s *UserService) SignIn(ctx context.Context, externalID string) (*SignInResult, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperr.Validation("Google ID is missing")
	}

	id := HashIdentity(externalID)
	if err := s.userRepo.CreateIfAbsent(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	result := &SignInResult{User: user}
	if s.TokensEnabled() {
		token, err := s.GenerateJWT(id)
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}
		result.Token = token
	}

	return result, nil
}

// GetUser returns the profile for id
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ProfileUpdate carries the onboarding fields. All three are required.
type ProfileUpdate struct {
	Age       *int    `json:"age"`
	Gender    *string `json:"gender"`
	CountryID *int    `json:"countryId"`
}

// UpdateProfile validates and stores all profile fields at once
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*models.User, error) {
	if upd.Age == nil || upd.Gender == nil || upd.CountryID == nil {
		return nil, apperr.Validation("Missing age, gender, or countryId")
	}
	if *upd.Age < MinAge || *upd.Age > MaxAge {
		return nil, apperr.Validation("age must be between %d and %d", MinAge, MaxAge)
	}
	if !allowedGenders[*upd.Gender] {
		return nil, apperr.Validation("gender must be one of Male, Female, Other")
	}

	exists, err := s.countryRepo.Exists(ctx, *upd.CountryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.Validation("unknown countryId %d", *upd.CountryID)
	}

	return s.userRepo.UpdateProfile(ctx, id, *upd.Age, *upd.Gender, *upd.CountryID)
}

// RegisterPushToken stores or clears the device token used for offline
// rating notifications
func (s *UserService) RegisterPushToken(ctx context.Context, id, token string) error {
	token = strings.TrimSpace(token)
	var value *string
	if token != "" {
		value = &token
	}
	return s.userRepo.UpdatePushToken(ctx, id, value)
}

// ListCountries returns the selectable profile countries
func (s *UserService) ListCountries(ctx context.Context) ([]models.Country, error) {
	return s.countryRepo.List(ctx)
}
