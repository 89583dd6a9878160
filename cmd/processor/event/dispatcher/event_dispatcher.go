package dispatcher

import (
	"context"
	"fmt"

	"poemas-versos/eventbus"
	"poemas-versos/events"
	"poemas-versos/models"
)

// EventDispatcher Processor용 이벤트 발행 서비스
type EventDispatcher struct {
	bus eventbus.Publisher
}

func NewEventDispatcher(bus eventbus.Publisher) *EventDispatcher {
	return &EventDispatcher{bus: bus}
}

// PublishPoemGenerated 생성 완료 이벤트 발행
func (s *EventDispatcher) PublishPoemGenerated(ctx context.Context, requestID string, poem *models.Poem) error {
	e := events.PoemGeneratedEvent{
		BaseEvent: events.NewBaseEvent(events.PoemGenerated, "processor"),
		RequestID: requestID,
		PoemID:    poem.ID,
		Title:     poem.Title,
		Category:  poem.Category,
		ImageURL:  poem.ImageURL,
	}
	if _, err := eventbus.PublishJSON(ctx, s.bus, eventbus.TopicPoemEvents, "", e, 0); err != nil {
		return fmt.Errorf("failed to publish poem generated event: %w", err)
	}
	return nil
}
