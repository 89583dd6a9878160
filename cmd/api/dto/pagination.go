package dto

// Pagination is a generic pagination envelope for list results.
// Total is the number of items matching the filters (without pagination).
// Page is 1-based; PageSize is the applied page size.
//
// swag 가 제네릭을 완전히 지원하지 않아 문서용 구체 타입을 따로 둔다.
type Pagination[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// PaginationPoemDTO is a concrete swagger-friendly type for paginated poems response
type PaginationPoemDTO struct {
	Data     []PoemDTO `json:"data"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
	Total    int64     `json:"total"`
}

// PaginationGalleryItemDTO is a concrete swagger-friendly type for paginated gallery response
type PaginationGalleryItemDTO struct {
	Data     []GalleryItemDTO `json:"data"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}
