package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"othershorts-backend/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator struct {
	enabled bool
}

func (f fakeValidator) TokensEnabled() bool { return f.enabled }

func (f fakeValidator) ValidateJWT(token string) (string, error) {
	if token == "good" {
		return "u1", nil
	}
	return "", apperr.ErrUnauthorized
}

func runAuth(t *testing.T, v TokenValidator, required bool, header string) (int, string) {
	t.Helper()

	var seen string
	h := AuthMiddleware(v, required)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/users/u1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, seen
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		required bool
		header   string
		wantCode int
		wantUser string
	}{
		{name: "disabled ignores header", enabled: false, required: true, header: "Bearer junk", wantCode: http.StatusOK},
		{name: "optional without token", enabled: true, wantCode: http.StatusOK},
		{name: "required without token", enabled: true, required: true, wantCode: http.StatusUnauthorized},
		{name: "valid token", enabled: true, header: "Bearer good", wantCode: http.StatusOK, wantUser: "u1"},
		{name: "invalid token", enabled: true, header: "Bearer bad", wantCode: http.StatusUnauthorized},
		{name: "malformed header", enabled: true, header: "Token good", wantCode: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, user := runAuth(t, fakeValidator{enabled: tt.enabled}, tt.required, tt.header)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantUser, user)
		})
	}
}

func TestCheckActor(t *testing.T) {
	assert.NoError(t, CheckActor(context.Background(), "anyone"))

	ctx := context.WithValue(context.Background(), userIDKey, "u1")
	assert.NoError(t, CheckActor(ctx, "u1"))

	err := CheckActor(ctx, "u2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestValidateWebSocketToken(t *testing.T) {
	v := fakeValidator{enabled: true}

	_, err := ValidateWebSocketToken("", v)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	userID, err := ValidateWebSocketToken("good", v)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
}
