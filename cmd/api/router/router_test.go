package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"poemas-versos/cmd/api/auth"
	"poemas-versos/cmd/api/services"
	"poemas-versos/config"
	"poemas-versos/models"
	"poemas-versos/sampler"
)

type emptyStore struct{}

func (emptyStore) ListIDsByCategory(context.Context, string) ([]string, error) { return []string{}, nil }
func (emptyStore) GetByIDs(context.Context, []string) ([]models.Poem, error)   { return nil, nil }

func newTestRouter(ping func(context.Context) error) (*gin.Engine, *auth.JWTManager) {
	gin.SetMode(gin.TestMode)
	tokens := auth.NewJWTManager("router-secret", "poemas-test", time.Hour)
	r := New(Deps{
		Tokens:     tokens,
		Random:     services.NewRandomService(sampler.New(emptyStore{}), nil, config.SamplerConfig{DefaultPageSize: 6, MaxPageSize: 50}),
		Generation: services.NewGenerationService(nil),
		Ping:       ping,
	})
	return r, tokens
}

func serve(r http.Handler, method, path, body, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(func(context.Context) error { return nil })
	w := serve(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	r, _ = newTestRouter(func(context.Context) error { return errors.New("no primary") })
	w = serve(r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
}

func TestRandomRouteIsPublic(t *testing.T) {
	r, _ := newTestRouter(func(context.Context) error { return nil })
	w := serve(r, http.MethodPost, "/api/v1/poems/random", `{"category":"Amor"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"exhausted":true}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r, tokens := newTestRouter(func(context.Context) error { return nil })

	userToken, _ := tokens.Sign("user-1", auth.RoleUser)
	adminToken, _ := tokens.Sign("admin-1", auth.RoleAdmin)

	w := serve(r, http.MethodPost, "/api/v1/admin/generate", `{"category":"Amor"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/admin/generate", `{"category":"Amor"}`, "Bearer "+userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// 이벤트 버스가 없으므로 인증을 통과하면 503
	w = serve(r, http.MethodPost, "/api/v1/admin/generate", `{"category":"Amor"}`, "Bearer "+adminToken)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUserRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(func(context.Context) error { return nil })

	w := serve(r, http.MethodGet, "/api/v1/favorites", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodPost, "/api/v1/poems/submissions", `{"title":"t","body":"b","category":"Amor"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
