package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poemas-versos/cmd/api/auth"
	"poemas-versos/cmd/api/trace"
)

func newTokens() *auth.JWTManager {
	return auth.NewJWTManager("middleware-secret", "poemas-test", time.Hour)
}

func signed(t *testing.T, m *auth.JWTManager, userCode, role string) string {
	t.Helper()
	token, err := m.Sign(userCode, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func newAuthEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", mw, func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"user_code": p.UserCode, "role": p.Role})
	})
	return r
}

func doGet(r http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	other := auth.NewJWTManager("other-secret", "poemas-test", time.Hour)
	r := newAuthEngine(AdminAuthMiddleware(tokens))

	testCases := []struct {
		name          string
		authorization string
		wantStatus    int
		wantBody      string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantBody: "missing_authorization_header"},
		{name: "wrong scheme", authorization: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "invalid_authorization_header"},
		{name: "forged token", authorization: signed(t, other, "admin-1", auth.RoleAdmin), wantStatus: http.StatusUnauthorized, wantBody: "invalid_token"},
		{name: "user role", authorization: signed(t, tokens, "user-1", auth.RoleUser), wantStatus: http.StatusForbidden, wantBody: "forbidden_insufficient_permissions"},
		{name: "admin role", authorization: signed(t, tokens, "admin-1", auth.RoleAdmin), wantStatus: http.StatusOK, wantBody: `"user_code":"admin-1"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doGet(r, tc.authorization)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tc.wantBody)
		})
	}
}

func TestUserAuthMiddlewareAcceptsAnyRole(t *testing.T) {
	tokens := newTokens()
	r := newAuthEngine(UserAuthMiddleware(tokens))

	w := doGet(r, signed(t, tokens, "user-7", auth.RoleUser))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_code":"user-7","role":"user"}`, w.Body.String())

	w = doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalUserMiddleware(t *testing.T) {
	tokens := newTokens()
	r := newAuthEngine(OptionalUserMiddleware(tokens))

	w := doGet(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_code":"","role":""}`, w.Body.String())

	w = doGet(r, signed(t, tokens, "user-7", auth.RoleUser))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_code":"user-7"`)

	w = doGet(r, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestTraceSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestTrace())
	r.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.JSON(http.StatusOK, gin.H{
			"request_id": trace.RequestIDFromContext(c.Request.Context()),
			"body":       string(body),
		})
	})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"category":"Amor"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	generated := w.Header().Get(headerRequestID)
	assert.Len(t, generated, 32)
	assert.JSONEq(t, `{"request_id":"`+generated+`","body":"{\"category\":\"Amor\"}"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/echo", nil)
	req.Header.Set(headerRequestID, "client-supplied")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-supplied", w.Header().Get(headerRequestID))
	assert.Contains(t, w.Body.String(), `"request_id":"client-supplied"`)
}
