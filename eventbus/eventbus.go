package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// RetryDelays 는 재시도 횟수(1-based)별 지연 시간이다.
// 생성 요청은 LLM 쿼터/일시 장애가 주 원인이라 간격을 길게 잡는다.
var RetryDelays = []time.Duration{
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
}

// Topic 은 기본 토픽 이름과 재시도/DLQ 토픽 이름을 관리한다.
//
//	poemas.poem.events
//	poemas.poem.events.retry.1 .. retry.N
//	poemas.poem.events.dlq
type Topic struct {
	base string
}

func NewTopic(base string) Topic {
	return Topic{base: base}
}

func (t Topic) Base() string {
	return t.base
}

func (t Topic) DLQ() string {
	return t.base + ".dlq"
}

// GetRetryTopics 는 모든 재시도 토픽 이름을 반환한다.
func (t Topic) GetRetryTopics() []string {
	topics := make([]string, len(RetryDelays))
	for i := range RetryDelays {
		topics[i] = fmt.Sprintf("%s.retry.%d", t.base, i+1)
	}
	return topics
}

// GetRetryTopic 은 retryCount(1-based) 번째 재시도 토픽 이름을 반환한다.
func (t Topic) GetRetryTopic(retryCount int) (string, error) {
	if retryCount <= 0 || retryCount > len(RetryDelays) {
		return "", ErrMaxRetryExceeded
	}
	return fmt.Sprintf("%s.retry.%d", t.base, retryCount), nil
}

// Event 는 Kafka 메시지 값으로 쓰이는 봉투다.
type Event struct {
	ID        string          `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	Retry     int             `json:"retry"` // 현재 재시도 횟수 (0부터)
	MaxRetry  int             `json:"max_retry"`
	LastError string          `json:"last_error,omitempty"`
}

type EventHandler func(ctx context.Context, event Event) error

// Publisher 는 API 서버처럼 발행만 하는 쪽이 의존한다.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
}

type EventBus interface {
	Publisher
	// Subscribe 는 기본 토픽을 구독해 handler 를 실행한다.
	Subscribe(ctx context.Context, groupID string, topic Topic, handler EventHandler) error
	// StartRetryReinjector 는 재시도 토픽을 구독해 지연 시간이 지난 이벤트를 기본 토픽으로 되돌린다.
	StartRetryReinjector(ctx context.Context, groupID string, topic Topic) error
	Close()
}

var ErrMaxRetryExceeded = errors.New("max retry exceeded")

// ErrNonRetryable 로 감싼 핸들러 오류는 재시도 없이 바로 DLQ 로 보낸다.
var ErrNonRetryable = errors.New("non-retryable event error")

// NonRetryable wraps err so the bus sends the event straight to the DLQ.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrNonRetryable, err)
}

// nextDestination 은 실패한 이벤트를 보낼 토픽을 정한다.
// dlq 가 true 면 재시도 없이 DLQ 로 간다. evt.Retry/LastError 는 갱신된다.
func nextDestination(topic Topic, evt *Event, cause error) (dest string, dlq bool) {
	evt.LastError = cause.Error()
	if errors.Is(cause, ErrNonRetryable) || evt.Retry+1 > evt.MaxRetry {
		return topic.DLQ(), true
	}
	next, err := topic.GetRetryTopic(evt.Retry + 1)
	if err != nil {
		return topic.DLQ(), true
	}
	evt.Retry++
	return next, false
}

// normalizeMaxRetry 는 설정되지 않았거나 범위를 벗어난 MaxRetry 를 보정한다.
func normalizeMaxRetry(n int) int {
	if n <= 0 || n > len(RetryDelays) {
		return len(RetryDelays)
	}
	return n
}
