package auth

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	defaultIssuer = "poemas-versos"
	defaultTTL    = 24 * time.Hour
)

var (
	ErrMissingSubject = errors.New("token missing sub claim")
	ErrUnknownRole    = errors.New("unknown role")
)

// Principal 은 검증된 토큰의 주체다.
type Principal struct {
	UserCode string
	Role     string
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Claims 는 발급 토큰의 페이로드다. role 외에는 표준 클레임만 쓴다.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManagerFromEnv reads JWT_SECRET (required), JWT_ISSUER and JWT_TTL.
func NewJWTManagerFromEnv() (*JWTManager, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	ttl := defaultTTL
	if v := os.Getenv("JWT_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid JWT_TTL %q", v)
		}
		ttl = d
	}
	return NewJWTManager(secret, os.Getenv("JWT_ISSUER"), ttl), nil
}

func NewJWTManager(secret, issuer string, ttl time.Duration) *JWTManager {
	if issuer == "" {
		issuer = defaultIssuer
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &JWTManager{secret: []byte(secret), issuer: issuer, ttl: ttl, now: time.Now}
}

// Sign issues a token for userCode. role must be RoleUser or RoleAdmin.
func (m *JWTManager) Sign(userCode, role string) (string, error) {
	if userCode == "" {
		return "", ErrMissingSubject
	}
	if role != RoleUser && role != RoleAdmin {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}

	now := m.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userCode,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse verifies signature, issuer and expiry. A token without role parses
// with an empty Role, which no protected route accepts as admin.
func (m *JWTManager) Parse(tokenString string) (Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Principal{}, err
	}
	if claims.Subject == "" {
		return Principal{}, ErrMissingSubject
	}
	return Principal{UserCode: claims.Subject, Role: claims.Role}, nil
}
