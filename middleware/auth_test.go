package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/friendly-matches/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("middleware-secret")

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestParseToken(t *testing.T) {
	valid := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 7, "role": "admin"}, secret)
	claims, err := ParseToken(valid, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims["role"])

	expired := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}, secret)
	_, err = ParseToken(expired, secret)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken(valid, []byte("wrong"))
	require.ErrorIs(t, err, ErrInvalidToken)

	unsigned := sign(t, jwt.SigningMethodNone, jwt.MapClaims{"user_id": 7}, jwt.UnsafeAllowNoneSignatureType)
	_, err = ParseToken(unsigned, secret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate(t *testing.T) {
	var gotID int
	var gotRole models.UserRole
	handler := Authenticate(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotID, err = GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		gotRole, err = GetUserRoleFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
		{"valid", "Bearer " + sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42, "role": "organizer"}, secret), http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusUnauthorized {
				assert.Contains(t, rec.Body.String(), `"kind":"unauthenticated"`)
			}
		})
	}

	assert.Equal(t, 42, gotID)
	assert.Equal(t, models.RoleOrganizer, gotRole)
}

func TestClaimsFromContext(t *testing.T) {
	tests := []struct {
		name    string
		claims  jwt.MapClaims
		wantID  int
		idErr   bool
		roleErr bool
	}{
		{"numeric id", jwt.MapClaims{"user_id": float64(5), "role": "player"}, 5, false, false},
		{"string id", jwt.MapClaims{"user_id": "12", "role": "admin"}, 12, false, false},
		{"fractional id", jwt.MapClaims{"user_id": 1.5, "role": "player"}, 0, true, false},
		{"zero id", jwt.MapClaims{"user_id": float64(0), "role": "player"}, 0, true, false},
		{"unknown role", jwt.MapClaims{"user_id": float64(5), "role": "referee"}, 5, false, true},
		{"missing claims", jwt.MapClaims{}, 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithClaims(context.Background(), tt.claims)

			id, err := GetUserIDFromContext(ctx)
			if tt.idErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
			}

			_, err = GetUserRoleFromContext(ctx)
			assert.Equal(t, tt.roleErr, err != nil)
		})
	}

	_, err := GetUserIDFromContext(context.Background())
	assert.Error(t, err)
}
