package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poemas-versos/cmd/api/auth"
	"poemas-versos/cmd/api/dto"
	"poemas-versos/config"
)

// TokenParser 는 access token 을 검증해 주체를 돌려준다.
type TokenParser interface {
	Parse(token string) (auth.Principal, error)
}

// AdminAuthMiddleware 는 요청 헤더의 JWT를 검증하고, role이 'admin'인지 확인합니다.
func AdminAuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := authenticate(c, tokens)
		if !ok {
			return
		}
		if !p.IsAdmin() {
			config.Logger.Warnf("access denied: user %s has role %q, want admin", p.UserCode, p.Role)
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponseDTO{Error: "forbidden_insufficient_permissions"})
			return
		}
		auth.SetPrincipal(c, p)
		c.Next()
	}
}

func authenticate(c *gin.Context, tokens TokenParser) (auth.Principal, bool) {
	token, err := auth.ExtractBearerToken(c)
	if err != nil {
		auth.AbortWithUnauthorized(c, err)
		return auth.Principal{}, false
	}

	p, err := tokens.Parse(token)
	if err != nil {
		config.Logger.Infof("token parse error: %v", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponseDTO{Error: "invalid_token"})
		return auth.Principal{}, false
	}
	return p, true
}
