package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	_ "poemas-versos/cmd/api/dto"
	"poemas-versos/cmd/api/services"
)

// ListCategoriesHandler godoc
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200  {array}   dto.CategoryDTO
// @Failure      500  {object}  dto.ErrorResponseDTO
// @Router       /categories [get]
func ListCategoriesHandler(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.ListCategories(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// ListGalleryHandler godoc
// @Summary      List gallery items
// @Tags         gallery
// @Param        kind       query  string  false  "image | video"
// @Param        category   query  string  false  "Category name"
// @Param        page       query  int     false  "Page number (1-based)"
// @Param        page_size  query  int     false  "Page size (<=100)"
// @Produce      json
// @Success      200  {object}  dto.PaginationGalleryItemDTO
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Router       /gallery [get]
func ListGalleryHandler(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ListGalleryInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Kind = c.Query("kind")
		in.Category = c.Query("category")

		resp, err := svc.ListGallery(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// GetImageHandler godoc
// @Summary      Stream an image
// @Description  GridFS 에 저장된 이미지를 스트리밍합니다.
// @Tags         images
// @Param        id   path   string  true  "File ObjectID"
// @Produce      image/jpeg,image/png,image/webp
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponseDTO
// @Failure      404  {object}  dto.ErrorResponseDTO
// @Router       /images/{id} [get]
func GetImageHandler(svc *services.CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		img, err := svc.OpenImage(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		defer img.Close()

		c.DataFromReader(http.StatusOK, img.Size, img.ContentType, img, map[string]string{
			"Cache-Control": "public, max-age=86400, immutable",
		})
	}
}
