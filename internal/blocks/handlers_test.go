package blocks

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/imadgeboyega/fitmatch-backend/internal/auth"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// asUser stands in for token authentication
func asUser(id int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), id)))
		})
	}
}

func newRouter(userID int64) (*mux.Router, *memoryRepo) {
	repo := newMemoryRepo()
	router := mux.NewRouter()
	RegisterRoutes(router, NewHandler(NewService(repo, nil, zerolog.Nop())), asUser(userID))
	return router, repo
}

func TestBlockRoutes(t *testing.T) {
	router, repo := newRouter(1)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/blocks", strings.NewReader(`{"user_id":2}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/blocks", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []Block `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, int64(2), body.Data[0].BlockedID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/blocks/2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, repo.rows)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/blocks/2", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateBlockValidation(t *testing.T) {
	router, _ := newRouter(1)

	for _, body := range []string{`{`, `{}`, `{"user_id":1}`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/blocks", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
