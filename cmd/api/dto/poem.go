package dto

import "time"

// PoemDTO 공개 API 용 시 응답
type PoemDTO struct {
	ID          string     `json:"id" example:"665f1c2ab3e4d5f6a7b8c9d0"`
	Slug        string     `json:"slug,omitempty" example:"desamor-la-ausencia"`
	Title       string     `json:"title" example:"La ausencia"`
	Body        string     `json:"body"`
	Author      string     `json:"author,omitempty"`
	Category    string     `json:"category" example:"Desamor"`
	Tags        []string   `json:"tags"`
	Likes       int64      `json:"likes"`
	ImageURL    string     `json:"image_url,omitempty"`
	Status      string     `json:"status,omitempty" example:"approved"`
	Source      string     `json:"source,omitempty" example:"seed"`
	IsFavorite  *bool      `json:"is_favorite,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	SubmittedBy string     `json:"submitted_by,omitempty"`
	ModeratedAt *time.Time `json:"moderated_at,omitempty"`
	ModeratedBy string     `json:"moderated_by,omitempty"`
}

// RandomPoemsRequestDTO "더 보기" 요청.
// page_size 를 생략하면 서버 기본값을 사용한다.
type RandomPoemsRequestDTO struct {
	Category   string   `json:"category" example:"Desamor"`
	ExcludeIDs []string `json:"exclude_ids"`
	PageSize   *int     `json:"page_size,omitempty" example:"6"`
}

// RandomPoemsResponseDTO 는 이번 배치와 소진 여부를 돌려준다.
// Exhausted 가 true 면 같은 카테고리로 더 요청할 필요가 없다.
type RandomPoemsResponseDTO struct {
	Data      []PoemDTO `json:"data"`
	Exhausted bool      `json:"exhausted"`
}

// SubmitPoemRequestDTO 사용자 투고
type SubmitPoemRequestDTO struct {
	Title    string   `json:"title" binding:"required" example:"Mar de noche"`
	Body     string   `json:"body" binding:"required"`
	Author   string   `json:"author,omitempty"`
	Category string   `json:"category" binding:"required" example:"Amor"`
	Tags     []string `json:"tags,omitempty"`
}

// UpdatePoemRequestDTO 관리자 수정. nil 필드는 변경하지 않는다.
type UpdatePoemRequestDTO struct {
	Title    *string   `json:"title,omitempty"`
	Body     *string   `json:"body,omitempty"`
	Category *string   `json:"category,omitempty"`
	ImageURL *string   `json:"image_url,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// LikeResponseDTO 좋아요 이후 값
type LikeResponseDTO struct {
	ID    string `json:"id"`
	Likes int64  `json:"likes" example:"12"`
}

// CreatedResponseDTO 생성된 문서 ID
type CreatedResponseDTO struct {
	ID string `json:"id" example:"665f1c2ab3e4d5f6a7b8c9d0"`
}
