package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"poemas-versos/cmd/api/auth"
	"poemas-versos/cmd/api/dto"
	"poemas-versos/cmd/api/services"
)

// ListPoemsHandler godoc
// @Summary      List poems
// @Description  승인된 시를 최신순으로 반환합니다. 로그인 상태면 is_favorite 가 채워집니다.
// @Tags         poems
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Param        category   query  string  false  "Category name"
// @Produce      json
// @Success      200  {object}  dto.PaginationPoemDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /poems [get]
func ListPoemsHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListPoemsInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Category = c.Query("category")

		page, err := svc.List(c.Request.Context(), auth.UserCode(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// GetPoemHandler godoc
// @Summary      Get poem by id
// @Tags         poems
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.PoemDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /poems/{id} [get]
func GetPoemHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		poem, err := svc.GetByID(c.Request.Context(), auth.UserCode(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, poem)
	}
}

// SearchPoemsHandler godoc
// @Summary      Search poems
// @Description  제목, 본문, 태그 전문 검색 (관련도 순)
// @Tags         poems
// @Param        q          query  string  true   "Search text"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Produce      json
// @Success      200  {object}  dto.PaginationPoemDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /poems/search [get]
func SearchPoemsHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

		resp, err := svc.Search(c.Request.Context(), c.Query("q"), page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// LikePoemHandler godoc
// @Summary      Like a poem
// @Description  좋아요를 1 증가시키고 새 값을 반환합니다.
// @Tags         poems
// @Param        id   path   string  true  "ObjectID"
// @Produce      json
// @Success      200  {object}  dto.LikeResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /poems/{id}/like [post]
func LikePoemHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp, err := svc.Like(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// SubmitPoemHandler godoc
// @Summary      Submit a poem
// @Description  검수 대기(pending) 상태로 투고합니다. 본문은 5000자 이하.
// @Tags         poems
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.SubmitPoemRequestDTO  true  "Submission"
// @Success      201   {object}  dto.CreatedResponseDTO
// @Failure      400   {object}  dto.ErrorResponseDTO
// @Failure      401   {object}  dto.ErrorResponseDTO
// @Router       /poems/submissions [post]
func SubmitPoemHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.SubmitPoemRequestDTO
		if !bindJSON(c, &req) {
			return
		}

		resp, err := svc.Submit(c.Request.Context(), auth.UserCode(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// AddFavoriteHandler godoc
// @Summary      시 즐겨찾기 추가
// @Description  현재 로그인한 사용자의 즐겨찾기에 시를 추가합니다. 이미 있으면 그대로 201 입니다.
// @Tags         favorites
// @Security     BearerAuth
// @Param        id   path   string  true  "시 ObjectID"
// @Produce      json
// @Success      201  {object}  dto.MessageResponseDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /poems/{id}/favorite [post]
func AddFavoriteHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.AddFavorite(c.Request.Context(), auth.UserCode(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.MessageResponseDTO{Message: "favorite_created"})
	}
}

// RemoveFavoriteHandler godoc
// @Summary      시 즐겨찾기 제거
// @Tags         favorites
// @Security     BearerAuth
// @Param        id   path   string  true  "시 ObjectID"
// @Success      204  {string}  string  "콘텐츠 없음"
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /poems/{id}/favorite [delete]
func RemoveFavoriteHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.RemoveFavorite(c.Request.Context(), auth.UserCode(c), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// ListFavoritesHandler godoc
// @Summary      즐겨찾기한 시 목록
// @Tags         favorites
// @Security     BearerAuth
// @Param        page       query  int  false  "Page number (1-based)"
// @Param        page_size  query  int  false  "Page size (<=100)"
// @Produce      json
// @Success      200  {object}  dto.PaginationPoemDTO
// @Failure      401  {object}  dto.ErrorResponseDTO
// @Router       /favorites [get]
func ListFavoritesHandler(svc *services.PoemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

		resp, err := svc.ListFavorites(c.Request.Context(), auth.UserCode(c), page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
