package auth

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/imadgeboyega/fitmatch-backend/internal/common/utils"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func echoUserID() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserIDFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(strconv.FormatInt(id, 10)))
	})
}

func TestAuthenticate(t *testing.T) {
	mw := NewMiddleware(testSecret, zerolog.Nop())
	handler := mw.Authenticate(echoUserID())

	access, err := utils.GenerateJWT(42, utils.TokenTypeAccess, time.Hour, testSecret)
	require.NoError(t, err)
	refresh, err := utils.GenerateJWT(42, "refresh", time.Hour, testSecret)
	require.NoError(t, err)
	expired, err := utils.GenerateJWT(42, utils.TokenTypeAccess, -time.Minute, testSecret)
	require.NoError(t, err)
	foreign, err := utils.GenerateJWT(42, utils.TokenTypeAccess, time.Hour, "other-secret")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid access token", "Bearer " + access, http.StatusOK, "42"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized, ""},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized, ""},
		{"expired token", "Bearer " + expired, http.StatusUnauthorized, ""},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
