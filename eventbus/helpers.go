package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// NewJSONEvent 는 payload 를 JSON 으로 인코딩해 Event 를 만든다.
// id 가 비어 있으면 UUID 를 생성한다.
func NewJSONEvent(id string, payload any, maxRetry int) (Event, error) {
	if id == "" {
		id = uuid.NewString()
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal payload: %w", err)
	}
	return Event{
		ID:       id,
		Payload:  b,
		MaxRetry: normalizeMaxRetry(maxRetry),
	}, nil
}

// DecodeJSON 은 Event.Payload 를 T 로 언마샬한다.
func DecodeJSON[T any](evt Event) (T, error) {
	var out T
	if err := json.Unmarshal(evt.Payload, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("unmarshal payload: %w", err)
	}
	return out, nil
}

// SubscribeJSON 은 payload 를 자동으로 디코딩하는 Subscribe 헬퍼다.
// 디코딩 실패는 재시도해도 같으므로 바로 DLQ 로 보낸다.
func SubscribeJSON[T any](ctx context.Context, bus EventBus, groupID string, topic Topic, handler func(ctx context.Context, payload T, meta Event) error) error {
	return bus.Subscribe(ctx, groupID, topic, func(ctx context.Context, evt Event) error {
		v, err := DecodeJSON[T](evt)
		if err != nil {
			return NonRetryable(err)
		}
		return handler(ctx, v, evt)
	})
}

// PublishJSON 은 NewJSONEvent 와 Publish 를 묶은 헬퍼로, 발행한 이벤트 ID 를 돌려준다.
func PublishJSON(ctx context.Context, pub Publisher, topic Topic, id string, payload any, maxRetry int) (string, error) {
	evt, err := NewJSONEvent(id, payload, maxRetry)
	if err != nil {
		return "", err
	}
	if err := pub.Publish(ctx, topic.Base(), evt); err != nil {
		return "", fmt.Errorf("publish to %s: %w", topic.Base(), err)
	}
	return evt.ID, nil
}
