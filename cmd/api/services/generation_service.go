package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/config"
	"poemas-versos/eventbus"
	"poemas-versos/events"
)

// generationMaxRetry 는 생성 요청 이벤트의 최대 재시도 횟수다.
const generationMaxRetry = 3

// GenerationService 는 AI 생성 요청을 이벤트로 발행한다. 실제 생성은 processor 가 한다.
type GenerationService struct {
	bus eventbus.Publisher
}

// NewGenerationService 는 bus 가 nil 이면 요청마다 ErrGenerationUnavailable 을 돌려준다.
func NewGenerationService(bus eventbus.Publisher) *GenerationService {
	return &GenerationService{bus: bus}
}

func (s *GenerationService) Request(ctx context.Context, requestedBy string, in dto.GenerateRequestDTO) (dto.GenerateAcceptedDTO, error) {
	if s.bus == nil {
		return dto.GenerateAcceptedDTO{}, ErrGenerationUnavailable
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		return dto.GenerateAcceptedDTO{}, fmt.Errorf("%w: category is required", ErrValidation)
	}

	e := events.PoemGenerationRequestedEvent{
		BaseEvent:   events.NewBaseEvent(events.PoemGenerationRequested, "api"),
		RequestID:   uuid.NewString(),
		Category:    category,
		Theme:       strings.TrimSpace(in.Theme),
		Language:    strings.TrimSpace(in.Language),
		WithImage:   in.WithImage,
		RequestedBy: requestedBy,
	}
	if _, err := eventbus.PublishJSON(ctx, s.bus, eventbus.TopicPoemEvents, e.RequestID, e, generationMaxRetry); err != nil {
		return dto.GenerateAcceptedDTO{}, fmt.Errorf("failed to publish generation request: %w", err)
	}

	config.Logger.Infof("generation requested: request_id=%s category=%s by=%s", e.RequestID, category, requestedBy)
	return dto.GenerateAcceptedDTO{RequestID: e.RequestID}, nil
}
