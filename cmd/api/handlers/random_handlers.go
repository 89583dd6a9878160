package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/cmd/api/services"
)

// RandomPoemsHandler godoc
// @Summary      Random unseen poems
// @Description  카테고리에서 exclude_ids 에 없는 시를 최대 page_size 개 무작위 순서로 반환합니다.
// @Description  data 가 비어 있으면 exhausted=true 이며, 503 은 같은 요청으로 재시도할 수 있습니다.
// @Tags         poems
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RandomPoemsRequestDTO  true  "category, exclude_ids, page_size"
// @Success      200   {object}  dto.RandomPoemsResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      503   {object}  dto.ErrorResponseDTO
// @Router       /poems/random [post]
func RandomPoemsHandler(svc *services.RandomService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.RandomPoemsRequestDTO
		if !bindJSON(c, &req) {
			return
		}

		resp, err := svc.Sample(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
