package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/config"
	"poemas-versos/models"
	"poemas-versos/repositories"
)

// MaxBodyRunes 투고/수정 본문의 최대 길이(rune)
const MaxBodyRunes = 5000

// PoemService 는 공개 카탈로그, 투고, 즐겨찾기를 담당한다.
type PoemService struct {
	poems      *repositories.PoemRepository
	favorites  *repositories.FavoriteRepository
	categories *repositories.CategoryRepository
}

func NewPoemService(poems *repositories.PoemRepository, favorites *repositories.FavoriteRepository, categories *repositories.CategoryRepository) *PoemService {
	return &PoemService{poems: poems, favorites: favorites, categories: categories}
}

type ListPoemsInput struct {
	Page     int
	PageSize int
	Category string
}

// List 는 승인된 시를 최신순으로 돌려준다.
// userCode 가 있으면 is_favorite 를 채운다.
func (s *PoemService) List(ctx context.Context, userCode string, in ListPoemsInput) (dto.Pagination[dto.PoemDTO], error) {
	page, pageSize := clampPage(in.Page, in.PageSize)
	approved := models.PoemStatusApproved
	items, total, err := s.poems.List(ctx, repositories.ListPoemsOptions{
		Page:     page,
		PageSize: pageSize,
		Category: in.Category,
		Status:   &approved,
	})
	if err != nil {
		return dto.Pagination[dto.PoemDTO]{}, err
	}
	data := mapPoems(items, defaultImages(ctx, s.categories), mapPoem)
	s.markFavorites(ctx, userCode, items, data)
	return dto.Pagination[dto.PoemDTO]{
		Data:     data,
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// GetByID 는 승인된 시만 돌려준다. 검수 중/반려된 시는 ErrNotFound.
func (s *PoemService) GetByID(ctx context.Context, userCode, id string) (dto.PoemDTO, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return dto.PoemDTO{}, err
	}
	p, err := s.poems.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return dto.PoemDTO{}, ErrNotFound
		}
		return dto.PoemDTO{}, err
	}
	if p.Status != models.PoemStatusApproved {
		return dto.PoemDTO{}, ErrNotFound
	}
	out := []dto.PoemDTO{mapPoem(*p, defaultImages(ctx, s.categories))}
	s.markFavorites(ctx, userCode, []models.Poem{*p}, out)
	return out[0], nil
}

// Search 는 제목/본문/태그 전문 검색 결과를 관련도 순으로 돌려준다.
func (s *PoemService) Search(ctx context.Context, query string, page, pageSize int) (dto.Pagination[dto.PoemDTO], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return dto.Pagination[dto.PoemDTO]{}, fmt.Errorf("%w: q is required", ErrValidation)
	}
	page, pageSize = clampPage(page, pageSize)
	items, total, err := s.poems.Search(ctx, query, page, pageSize)
	if err != nil {
		return dto.Pagination[dto.PoemDTO]{}, err
	}
	return dto.Pagination[dto.PoemDTO]{
		Data:     mapPoems(items, defaultImages(ctx, s.categories), mapPoem),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

// Like 는 좋아요를 1 올리고 새 값을 돌려준다.
func (s *PoemService) Like(ctx context.Context, id string) (dto.LikeResponseDTO, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return dto.LikeResponseDTO{}, err
	}
	likes, err := s.poems.IncrementLikes(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return dto.LikeResponseDTO{}, ErrNotFound
		}
		return dto.LikeResponseDTO{}, err
	}
	return dto.LikeResponseDTO{ID: oid.Hex(), Likes: likes}, nil
}

// Submit 은 사용자 투고를 검수 대기(pending) 상태로 저장한다.
func (s *PoemService) Submit(ctx context.Context, userCode string, in dto.SubmitPoemRequestDTO) (dto.CreatedResponseDTO, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	category := strings.TrimSpace(in.Category)
	if title == "" || body == "" || category == "" {
		return dto.CreatedResponseDTO{}, fmt.Errorf("%w: title, body and category are required", ErrValidation)
	}
	if err := validateBody(body); err != nil {
		return dto.CreatedResponseDTO{}, err
	}
	if err := s.requireCategory(ctx, category); err != nil {
		return dto.CreatedResponseDTO{}, err
	}

	p := &models.Poem{
		Title:       title,
		Body:        body,
		Author:      strings.TrimSpace(in.Author),
		Category:    category,
		Tags:        normalizeTags(in.Tags),
		Status:      models.PoemStatusPending,
		Source:      models.PoemSourceUser,
		SubmittedBy: userCode,
	}
	id, err := s.poems.Insert(ctx, p)
	if err != nil {
		return dto.CreatedResponseDTO{}, err
	}
	return dto.CreatedResponseDTO{ID: id.Hex()}, nil
}

// AddFavorite 는 승인된 시만 즐겨찾기에 담는다. 이미 있으면 아무 일도 하지 않는다.
func (s *PoemService) AddFavorite(ctx context.Context, userCode, poemID string) error {
	oid, err := parseObjectID(poemID)
	if err != nil {
		return err
	}
	p, err := s.poems.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.Status != models.PoemStatusApproved {
		return ErrNotFound
	}
	return s.favorites.Add(ctx, userCode, oid)
}

func (s *PoemService) RemoveFavorite(ctx context.Context, userCode, poemID string) error {
	oid, err := parseObjectID(poemID)
	if err != nil {
		return err
	}
	if err := s.favorites.Remove(ctx, userCode, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ListFavorites 는 즐겨찾기 순서(최근 추가 순)를 유지한 채 시 목록을 만든다.
// 그 사이 삭제되었거나 승인이 취소된 시는 빠진다.
func (s *PoemService) ListFavorites(ctx context.Context, userCode string, page, pageSize int) (dto.Pagination[dto.PoemDTO], error) {
	page, pageSize = clampPage(page, pageSize)
	favs, total, err := s.favorites.List(ctx, userCode, page, pageSize)
	if err != nil {
		return dto.Pagination[dto.PoemDTO]{}, err
	}
	if len(favs) == 0 {
		return dto.Pagination[dto.PoemDTO]{Data: []dto.PoemDTO{}, Page: page, PageSize: pageSize, Total: total}, nil
	}

	ids := make([]primitive.ObjectID, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.PoemID)
	}
	poems, err := s.poems.FindByObjectIDs(ctx, ids)
	if err != nil {
		return dto.Pagination[dto.PoemDTO]{}, err
	}
	out := favoritePoems(ids, poems, defaultImages(ctx, s.categories))
	return dto.Pagination[dto.PoemDTO]{Data: out, Page: page, PageSize: pageSize, Total: total}, nil
}

// favoritePoems 는 ids 순서대로 승인된 시만 골라 is_favorite=true 로 매핑한다.
func favoritePoems(ids []primitive.ObjectID, poems []models.Poem, images map[string]string) []dto.PoemDTO {
	byID := make(map[primitive.ObjectID]models.Poem, len(poems))
	for _, p := range poems {
		byID[p.ID] = p
	}
	out := make([]dto.PoemDTO, 0, len(ids))
	for _, id := range ids {
		p, ok := byID[id]
		if !ok || p.Status != models.PoemStatusApproved {
			continue
		}
		d := mapPoem(p, images)
		v := true
		d.IsFavorite = &v
		out = append(out, d)
	}
	return out
}

// markFavorites 는 out[i] 가 items[i] 에 대응한다고 가정한다.
// 조회 실패 시 is_favorite 를 비워둔 채 응답한다.
func (s *PoemService) markFavorites(ctx context.Context, userCode string, items []models.Poem, out []dto.PoemDTO) {
	if userCode == "" || len(items) == 0 {
		return
	}
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, p := range items {
		ids = append(ids, p.ID)
	}
	favs, err := s.favorites.FavoritedAmong(ctx, userCode, ids)
	if err != nil {
		config.Logger.Warnf("failed to load favorites for %s: %v", userCode, err)
		return
	}
	for i, p := range items {
		_, ok := favs[p.ID]
		out[i].IsFavorite = &ok
	}
}

func (s *PoemService) requireCategory(ctx context.Context, name string) error {
	if _, err := s.categories.GetByName(ctx, name); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: unknown category %q", ErrValidation, name)
		}
		return err
	}
	return nil
}

func validateBody(body string) error {
	if n := utf8.RuneCountInString(body); n > MaxBodyRunes {
		return fmt.Errorf("%w: body has %d characters, max %d", ErrValidation, n, MaxBodyRunes)
	}
	return nil
}
