package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"threadmerge/internal/api"
	"threadmerge/internal/i18n"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	catalog, err := i18n.Load("en")
	require.NoError(t, err)

	router := InitRoutes(
		[]string{"http://localhost:8080"},
		api.NewUserHandler(nil),
		api.NewThreadHandler(nil),
		api.NewPostHandler(nil),
		api.NewMergeHandler(nil, nil, catalog),
	)

	registered := map[string]bool{}
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, route := range []string{
		"POST /user/:nickname/create",
		"GET /user/:nickname/profile",
		"POST /thread/create",
		"POST /thread/:id/create",
		"GET /thread/:id/details",
		"GET /thread/:id/posts",
		"GET /thread/:id/merge",
		"POST /thread/:id/merge",
		"GET /post/:id/details",
		"GET /service/status",
		"POST /service/clear",
		"GET /metrics",
	} {
		assert.True(t, registered[route], route)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/thread/1/merge?ids=2", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
