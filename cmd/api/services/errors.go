package services

import "errors"

var (
	// ErrInvalidID 는 path 의 ObjectID 가 hex 형식이 아닐 때 반환된다.
	ErrInvalidID = errors.New("invalid_id")
	// ErrValidation 은 요청 바디가 규칙을 어겼을 때 반환된다. 상세는 감싼 메시지에 있다.
	ErrValidation = errors.New("validation_failed")
	ErrNotFound   = errors.New("not_found")
	// ErrGenerationUnavailable 은 이벤트 버스가 설정되지 않아 생성 요청을 받을 수 없을 때 반환된다.
	ErrGenerationUnavailable = errors.New("generation_unavailable")
)
