package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/cmd/api/services"
	"poemas-versos/config"
	"poemas-versos/sampler"
)

// respondError 는 서비스 sentinel 오류를 HTTP 상태로 바꾼다.
// 알 수 없는 오류는 내부 메시지를 숨기고 500 으로 응답한다.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_id"})
	case errors.Is(err, services.ErrValidation), errors.Is(err, sampler.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: err.Error()})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponseDTO{Error: "not_found"})
	case errors.Is(err, sampler.ErrDataUnavailable):
		config.Logger.Warnf("sampler unavailable: %v", err)
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponseDTO{Error: "data_unavailable", Retryable: true})
	case errors.Is(err, services.ErrGenerationUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponseDTO{Error: "generation_unavailable"})
	default:
		_ = c.Error(err)
		config.Logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponseDTO{Error: "internal_error"})
	}
}

func bindJSON(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "invalid_request_body: " + err.Error()})
		return false
	}
	return true
}
