package middleware

import (
	"github.com/gin-gonic/gin"

	"poemas-versos/cmd/api/auth"
)

// UserAuthMiddleware 는 유효한 JWT 가 있는 요청만 통과시킨다. role 은 묻지 않는다.
func UserAuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := authenticate(c, tokens)
		if !ok {
			return
		}
		auth.SetPrincipal(c, p)
		c.Next()
	}
}

// OptionalUserMiddleware 는 Authorization 헤더가 선택인 엔드포인트에서 사용한다.
// 헤더가 없으면 익명으로 통과, 있는데 토큰이 틀리면 401.
func OptionalUserMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		p, ok := authenticate(c, tokens)
		if !ok {
			return
		}
		auth.SetPrincipal(c, p)
		c.Next()
	}
}
