package services

import (
	"context"
	"fmt"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/config"
	"poemas-versos/sampler"
)

// maxExcludeIDs 를 넘는 exclude_ids 는 검증 오류로 처리한다.
const maxExcludeIDs = 10000

// RandomService 는 카테고리별 "더 보기" 샘플링을 담당한다.
// 세션 상태(exclude_ids)는 클라이언트가 들고 있고 서버는 매 요청을 독립적으로 처리한다.
type RandomService struct {
	sampler *sampler.Sampler
	images  CategoryImages
	cfg     config.SamplerConfig
}

func NewRandomService(smp *sampler.Sampler, images CategoryImages, cfg config.SamplerConfig) *RandomService {
	return &RandomService{sampler: smp, images: images, cfg: cfg}
}

// Sample 은 exclude_ids 에 없는 시를 최대 page_size 개 무작위 순서로 돌려준다.
// 빈 결과는 오류가 아니라 Exhausted=true 로 표현된다.
func (s *RandomService) Sample(ctx context.Context, req dto.RandomPoemsRequestDTO) (dto.RandomPoemsResponseDTO, error) {
	if len(req.ExcludeIDs) > maxExcludeIDs {
		return dto.RandomPoemsResponseDTO{}, fmt.Errorf("%w: at most %d exclude_ids", sampler.ErrInvalidArgument, maxExcludeIDs)
	}

	poems, err := s.sampler.SampleUnseen(ctx, req.Category, sampler.NewIDSet(req.ExcludeIDs...), s.pageSize(req.PageSize))
	if err != nil {
		return dto.RandomPoemsResponseDTO{}, err
	}

	var images map[string]string
	if len(poems) > 0 {
		images = defaultImages(ctx, s.images)
	}
	return dto.RandomPoemsResponseDTO{
		Data:      mapPoems(poems, images, mapPoem),
		Exhausted: len(poems) == 0,
	}, nil
}

// pageSize 는 생략 시 기본값, 상한 초과 시 상한을 적용한다.
// 0 이하 값은 그대로 넘겨 sampler 가 ErrInvalidArgument 로 거절하게 한다.
func (s *RandomService) pageSize(requested *int) int {
	if requested == nil {
		return s.cfg.DefaultPageSize
	}
	n := *requested
	if s.cfg.MaxPageSize > 0 && n > s.cfg.MaxPageSize {
		return s.cfg.MaxPageSize
	}
	return n
}

