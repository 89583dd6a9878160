package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signRaw(t *testing.T, method jwt.SigningMethod, secret []byte, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func TestNewJWTManagerFromEnv(t *testing.T) {
	t.Run("secret required", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		m, err := NewJWTManagerFromEnv()
		assert.Error(t, err)
		assert.Nil(t, m)
	})
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("JWT_ISSUER", "")
		t.Setenv("JWT_TTL", "")
		m, err := NewJWTManagerFromEnv()
		require.NoError(t, err)
		assert.Equal(t, "poemas-versos", m.issuer)
		assert.Equal(t, 24*time.Hour, m.ttl)
	})
	t.Run("ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("JWT_TTL", "2h")
		m, err := NewJWTManagerFromEnv()
		require.NoError(t, err)
		assert.Equal(t, 2*time.Hour, m.ttl)
	})
	t.Run("bad ttl", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "s")
		for _, v := range []string{"tomorrow", "-1h", "0s"} {
			t.Setenv("JWT_TTL", v)
			_, err := NewJWTManagerFromEnv()
			assert.Error(t, err, v)
		}
	})
}

func TestSignAndParse(t *testing.T) {
	m := NewJWTManager("test-secret", "test-issuer", time.Hour)

	token, err := m.Sign("user-001", RoleAdmin)
	require.NoError(t, err)

	p, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserCode: "user-001", Role: RoleAdmin}, p)
}

func TestSignValidatesInput(t *testing.T) {
	m := NewJWTManager("s", "", time.Hour)

	_, err := m.Sign("", RoleUser)
	assert.ErrorIs(t, err, ErrMissingSubject)

	_, err = m.Sign("user-1", "moderator")
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestParseRejects(t *testing.T) {
	m := NewJWTManager("service-secret", "issuer", time.Hour)
	valid := func(sub string, exp time.Time) Claims {
		return Claims{Role: RoleUser, RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "issuer",
			ExpiresAt: jwt.NewNumericDate(exp),
		}}
	}
	inAnHour := time.Now().Add(time.Hour)

	noExpiry := Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u", Issuer: "issuer"}}
	secret := []byte("service-secret")

	cases := map[string]string{
		"foreign secret": signRaw(t, jwt.SigningMethodHS256, []byte("other"), valid("u", inAnHour)),
		"expired":        signRaw(t, jwt.SigningMethodHS256, secret, valid("u", time.Now().Add(-time.Minute))),
		"no expiry":      signRaw(t, jwt.SigningMethodHS256, secret, noExpiry),
		"hs512":          signRaw(t, jwt.SigningMethodHS512, secret, valid("u", inAnHour)),
		"garbage":        "not-a-token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := m.Parse(token)
			assert.Error(t, err)
		})
	}
}

func TestParseMissingSubject(t *testing.T) {
	m := NewJWTManager("service-secret", "issuer", time.Hour)
	token := signRaw(t, jwt.SigningMethodHS256, []byte("service-secret"), Claims{Role: RoleUser, RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    "issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}})

	_, err := m.Parse(token)
	assert.ErrorIs(t, err, ErrMissingSubject)
}

func TestParseWithoutRole(t *testing.T) {
	m := NewJWTManager("service-secret", "issuer", time.Hour)
	token := signRaw(t, jwt.SigningMethodHS256, []byte("service-secret"), jwt.RegisteredClaims{
		Subject:   "user-001",
		Issuer:    "issuer",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	p, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-001", p.UserCode)
	assert.False(t, p.IsAdmin())
}

func TestParseForeignIssuer(t *testing.T) {
	a := NewJWTManager("shared", "issuer-a", time.Hour)
	b := NewJWTManager("shared", "issuer-b", time.Hour)

	token, err := a.Sign("user-001", RoleAdmin)
	require.NoError(t, err)
	_, err = b.Parse(token)
	assert.Error(t, err)
}

func TestParseUsesClock(t *testing.T) {
	m := NewJWTManager("s", "", time.Minute)
	issued := time.Now()
	m.now = func() time.Time { return issued }
	token, err := m.Sign("user-1", RoleUser)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}
