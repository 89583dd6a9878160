package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"poemas-versos/config"
)

// RequestLoggingMiddleware 는 라우트 단위 처리 시간을 디버그 레벨로 남긴다.
// 요청별 구조화 로그는 RequestTrace 가 담당한다.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// 매칭된 라우트 패턴(/api/v1/poems/:id). 404 는 원래 경로.
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		config.Logger.Debugf("api_request %s %s status=%d duration_ms=%d client=%s errors=%d",
			c.Request.Method, route, c.Writer.Status(), time.Since(start).Milliseconds(), c.ClientIP(), len(c.Errors))
		for _, e := range c.Errors {
			config.Logger.Debugf("api_request %s %s error: %v", c.Request.Method, route, e.Err)
		}
	}
}
