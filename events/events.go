package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType 이벤트 타입 정의
type EventType string

const (
	PoemGenerationRequested EventType = "poem.generation_requested"
	PoemGenerated           EventType = "poem.generated"
)

// BaseEvent 모든 이벤트의 기본 구조
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"` // "api", "processor", "poemctl"
	Version   string    `json:"version"`
}

func NewBaseEvent(t EventType, source string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Timestamp: time.Now(),
		Source:    source,
		Version:   "1.0",
	}
}

// PoemGenerationRequestedEvent 관리자가 AI 시 생성을 요청했을 때 발행된다.
type PoemGenerationRequestedEvent struct {
	BaseEvent
	RequestID   string `json:"request_id"`
	Category    string `json:"category"`
	Theme       string `json:"theme,omitempty"`
	Language    string `json:"language,omitempty"`
	WithImage   bool   `json:"with_image"`
	RequestedBy string `json:"requested_by"`
}

// PoemGeneratedEvent 생성된 시가 검수 대기열에 저장된 뒤 발행된다.
type PoemGeneratedEvent struct {
	BaseEvent
	RequestID string             `json:"request_id"`
	PoemID    primitive.ObjectID `json:"poem_id"`
	Title     string             `json:"title"`
	Category  string             `json:"category"`
	ImageURL  string             `json:"image_url,omitempty"`
}

// PeekType 은 payload 의 최상위 type 필드만 읽는다.
func PeekType(payload []byte) (EventType, error) {
	var peek struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(payload, &peek); err != nil {
		return "", fmt.Errorf("peek event type: %w", err)
	}
	return peek.Type, nil
}
