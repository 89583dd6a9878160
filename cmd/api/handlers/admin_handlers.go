package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"poemas-versos/cmd/api/auth"
	"poemas-versos/cmd/api/dto"
	"poemas-versos/cmd/api/services"
	"poemas-versos/models"
)

// maxImageUploadBytes 업로드 이미지 최대 크기
const maxImageUploadBytes = 10 << 20

// @Summary List poems for admin
// @Description List poems in any status with pagination
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Param status query string false "pending | approved | rejected"
// @Param category query string false "Category name"
// @Success 200 {object} dto.PaginationPoemDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 403 {object} dto.ErrorResponseDTO
// @Router /admin/poems [get]
func AdminListPoemsHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.AdminListPoemsInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
		in.Status = c.Query("status")
		in.Category = c.Query("category")

		resp, err := svc.ListPoems(c.Request.Context(), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

// @Summary Approve a poem
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Poem ObjectID"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Router /admin/poems/{id}/approve [post]
func AdminApprovePoemHandler(svc *services.AdminService) gin.HandlerFunc {
	return moderateHandler(svc, models.PoemStatusApproved, "poem_approved")
}

// @Summary Reject a poem
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Poem ObjectID"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Router /admin/poems/{id}/reject [post]
func AdminRejectPoemHandler(svc *services.AdminService) gin.HandlerFunc {
	return moderateHandler(svc, models.PoemStatusRejected, "poem_rejected")
}

func moderateHandler(svc *services.AdminService, status models.PoemStatus, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Moderate(c.Request.Context(), c.Param("id"), status, auth.UserCode(c)); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: message})
	}
}

// @Summary Update a poem
// @Description title, body, category, image_url, tags 중 보낸 필드만 수정합니다.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Poem ObjectID"
// @Param body body dto.UpdatePoemRequestDTO true "Fields to update"
// @Success 200 {object} dto.MessageResponseDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Router /admin/poems/{id} [patch]
func AdminUpdatePoemHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.UpdatePoemRequestDTO
		if !bindJSON(c, &req) {
			return
		}
		if err := svc.UpdatePoem(c.Request.Context(), c.Param("id"), req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponseDTO{Message: "poem_updated"})
	}
}

// @Summary Delete a poem
// @Description 시와 해당 시의 즐겨찾기를 함께 삭제합니다.
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Poem ObjectID"
// @Success 204 {string} string "콘텐츠 없음"
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 404 {object} dto.ErrorResponseDTO
// @Router /admin/poems/{id} [delete]
func AdminDeletePoemHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeletePoem(c.Request.Context(), c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary Upload an image
// @Description multipart 필드 "file" 의 이미지를 GridFS 에 저장합니다. (최대 10MB)
// @Tags admin
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} dto.ImageUploadResponseDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Router /admin/images [post]
func AdminUploadImageHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageUploadBytes)
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "missing_or_too_large_file"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponseDTO{Error: "unreadable_file"})
			return
		}
		defer f.Close()

		resp, err := svc.UploadImage(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// @Summary Create a gallery item
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.CreateGalleryItemRequestDTO true "Gallery item"
// @Success 201 {object} dto.GalleryItemDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Router /admin/gallery [post]
func AdminCreateGalleryItemHandler(svc *services.AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.CreateGalleryItemRequestDTO
		if !bindJSON(c, &req) {
			return
		}
		item, err := svc.CreateGalleryItem(c.Request.Context(), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// @Summary Request an AI poem
// @Description 생성 요청 이벤트를 발행하고 request_id 를 반환합니다. 결과는 검수 대기 목록에 들어갑니다.
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body dto.GenerateRequestDTO true "Generation request"
// @Success 202 {object} dto.GenerateAcceptedDTO
// @Failure 400 {object} dto.ErrorResponseDTO
// @Failure 503 {object} dto.ErrorResponseDTO
// @Router /admin/generate [post]
func AdminGenerateHandler(svc *services.GenerationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.GenerateRequestDTO
		if !bindJSON(c, &req) {
			return
		}
		resp, err := svc.Request(c.Request.Context(), auth.UserCode(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, resp)
	}
}
