package handler

import (
	"context"
	"errors"

	"poemas-versos/config"
	"poemas-versos/eventbus"
	"poemas-versos/events"
	"poemas-versos/generator"
	"poemas-versos/models"
)

type PipelineRunner interface {
	Run(ctx context.Context, req generator.PipelineRequest) (*models.Poem, error)
}

type GeneratedPublisher interface {
	PublishPoemGenerated(ctx context.Context, requestID string, poem *models.Poem) error
}

type EventHandlers struct {
	pipeline   PipelineRunner
	dispatcher GeneratedPublisher
}

func NewEventHandlers(pipeline PipelineRunner, dispatcher GeneratedPublisher) *EventHandlers {
	return &EventHandlers{pipeline: pipeline, dispatcher: dispatcher}
}

// Dispatch 는 payload 의 type 으로 핸들러를 고른다.
// 알 수 없는 타입이나 다른 서비스용 이벤트는 무시(커밋)한다.
func (h *EventHandlers) Dispatch(ctx context.Context, ev eventbus.Event) error {
	eventType, err := events.PeekType(ev.Payload)
	if err != nil {
		return eventbus.NonRetryable(err)
	}
	switch eventType {
	case events.PoemGenerationRequested:
		v, err := eventbus.DecodeJSON[events.PoemGenerationRequestedEvent](ev)
		if err != nil {
			return eventbus.NonRetryable(err)
		}
		return h.HandlePoemGenerationRequested(ctx, &v)
	default:
		return nil
	}
}

func (h *EventHandlers) HandlePoemGenerationRequested(ctx context.Context, event *events.PoemGenerationRequestedEvent) error {
	config.Logger.Infof("handling generation request %s (category=%s)", event.RequestID, event.Category)

	poem, err := h.pipeline.Run(ctx, generator.PipelineRequest{
		RequestID:   event.RequestID,
		Category:    event.Category,
		Theme:       event.Theme,
		Language:    event.Language,
		WithImage:   event.WithImage,
		RequestedBy: event.RequestedBy,
	})
	switch {
	case errors.Is(err, generator.ErrQuotaExhausted):
		config.Logger.Warnf("generation daily quota exceeded, skip request %s", event.RequestID)
		return nil
	case errors.Is(err, generator.ErrRefused), errors.Is(err, generator.ErrEmptyResponse), errors.Is(err, generator.ErrInvalidRequest):
		config.Logger.Errorf("generation request %s cannot succeed: %v", event.RequestID, err)
		return eventbus.NonRetryable(err)
	case err != nil:
		config.Logger.Errorf("generation request %s failed: %v", event.RequestID, err)
		return err
	}

	if h.dispatcher != nil {
		if err := h.dispatcher.PublishPoemGenerated(ctx, event.RequestID, poem); err != nil {
			// 시는 이미 저장되었으므로 재시도하면 중복 생성된다.
			config.Logger.Errorf("failed to publish PoemGenerated event: %v", err)
		}
	}
	config.Logger.Infof("generation request %s completed (poem_id=%s)", event.RequestID, poem.ID.Hex())
	return nil
}
