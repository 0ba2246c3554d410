package routes

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/shopitbackend/config"
	"github.com/princinho/shopitbackend/controllers"
	"github.com/princinho/shopitbackend/database/databasetest"
	"github.com/princinho/shopitbackend/mail/mailtest"
	"github.com/princinho/shopitbackend/storage/storagetest"
	"github.com/princinho/shopitbackend/utils"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := &controllers.AuthController{
		Users:   databasetest.NewMemoryUserStore(),
		Tokens:  utils.NewTokenIssuer("router-test", time.Hour, false),
		Storage: &storagetest.Fake{},
		Mailer:  &mailtest.Fake{},
	}
	cfg := config.ServerConfig{
		AllowedOrigins: []string{"https://shop.example"},
		MaxBodyBytes:   1 << 20,
	}
	return NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), auth)
}

func TestPing(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestNoRouteRendersJSON(t *testing.T) {
	r := newTestRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"message":"Route not found: GET /api/v1/nope","error":"NotFound: Route not found: GET /api/v1/nope"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/login", nil)
	req.Header.Set("Origin", "https://shop.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestProtectedRoutesRequireLogin(t *testing.T) {
	r := newTestRouter(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/me"},
		{http.MethodPut, "/api/v1/me/update"},
		{http.MethodPut, "/api/v1/me/upload_avatar"},
		{http.MethodPut, "/api/v1/password/update"},
		{http.MethodGet, "/api/v1/admin/users"},
		{http.MethodGet, "/api/v1/admin/users/abc"},
		{http.MethodPut, "/api/v1/admin/users/abc"},
		{http.MethodDelete, "/api/v1/admin/users/abc"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"message":"Login first to access this resource","error":"Unauthenticated: Login first to access this resource"}`, w.Body.String())
		})
	}
}
