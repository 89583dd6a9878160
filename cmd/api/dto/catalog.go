package dto

import "time"

// CategoryDTO 카테고리 목록 항목
type CategoryDTO struct {
	Name         string `json:"name" example:"Desamor"`
	Slug         string `json:"slug" example:"desamor"`
	Description  string `json:"description,omitempty"`
	DefaultImage string `json:"default_image,omitempty"`
}

// GalleryItemDTO 갤러리 항목
type GalleryItemDTO struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind" example:"image"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateGalleryItemRequestDTO 관리자 갤러리 등록
type CreateGalleryItemRequestDTO struct {
	Kind     string `json:"kind" binding:"required" example:"video"`
	Title    string `json:"title" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Category string `json:"category,omitempty"`
}

// ImageUploadResponseDTO GridFS 업로드 결과
type ImageUploadResponseDTO struct {
	ID  string `json:"id"`
	URL string `json:"url" example:"/api/v1/images/665f1c2ab3e4d5f6a7b8c9d0"`
}

// GenerateRequestDTO AI 생성 요청
type GenerateRequestDTO struct {
	Category  string `json:"category" binding:"required" example:"Amor"`
	Theme     string `json:"theme,omitempty" example:"la lluvia en la ciudad"`
	Language  string `json:"language,omitempty" example:"Spanish"`
	WithImage bool   `json:"with_image"`
}

// GenerateAcceptedDTO 생성 요청 접수 결과
type GenerateAcceptedDTO struct {
	RequestID string `json:"request_id"`
}
