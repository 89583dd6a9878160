package dto

// ErrorResponseDTO는 공통 에러 응답 형식을 통일하기 위한 DTO이다.
// Retryable 이 true 면 같은 요청을 그대로 다시 보내도 된다.
type ErrorResponseDTO struct {
	Error     string `json:"error" example:"invalid_argument"`
	Retryable bool   `json:"retryable,omitempty" example:"false"`
}

// MessageResponseDTO는 단순 메시지 응답 형식을 통일하기 위한 DTO이다.
type MessageResponseDTO struct {
	Message string `json:"message" example:"favorite_created"`
}
