package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "missing header", wantErr: ErrMissingHeader},
		{name: "basic scheme", header: "Basic abc", wantErr: ErrInvalidFormat},
		{name: "scheme only", header: "Bearer", wantErr: ErrInvalidFormat},
		{name: "blank token", header: "Bearer    ", wantErr: ErrEmptyToken},
		{name: "lowercase scheme", header: "bearer token-123", want: "token-123"},
		{name: "padded token", header: "Bearer  abc.def ", want: "abc.def"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BearerToken(tc.header)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractBearerTokenReadsRequestHeader(t *testing.T) {
	c, _ := newTestGinContext("Bearer from-request")
	token, err := ExtractBearerToken(c)
	require.NoError(t, err)
	assert.Equal(t, "from-request", token)
}

func TestAbortWithUnauthorized(t *testing.T) {
	c, w := newTestGinContext("")
	AbortWithUnauthorized(c, ErrInvalidFormat)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid_authorization_header"}`, w.Body.String())
}

func TestPrincipalRoundTrip(t *testing.T) {
	c, _ := newTestGinContext("")
	_, ok := PrincipalFrom(c)
	assert.False(t, ok)
	assert.Empty(t, UserCode(c))

	SetPrincipal(c, Principal{UserCode: "user-42", Role: RoleAdmin})
	p, ok := PrincipalFrom(c)
	require.True(t, ok)
	assert.True(t, p.IsAdmin())
	assert.Equal(t, "user-42", UserCode(c))
}

func newTestGinContext(authorization string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	c.Request = req
	return c, w
}
