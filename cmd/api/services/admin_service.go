package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/config"
	"poemas-versos/generator"
	"poemas-versos/models"
	"poemas-versos/repositories"
)

// AdminService 는 검수, 수정, 삭제, 미디어 등록을 담당한다.
type AdminService struct {
	poems      *repositories.PoemRepository
	favorites  *repositories.FavoriteRepository
	categories *repositories.CategoryRepository
	gallery    *repositories.GalleryRepository
	images     *repositories.ImageRepository
}

func NewAdminService(
	poems *repositories.PoemRepository,
	favorites *repositories.FavoriteRepository,
	categories *repositories.CategoryRepository,
	gallery *repositories.GalleryRepository,
	images *repositories.ImageRepository,
) *AdminService {
	return &AdminService{
		poems:      poems,
		favorites:  favorites,
		categories: categories,
		gallery:    gallery,
		images:     images,
	}
}

type AdminListPoemsInput struct {
	Page     int
	PageSize int
	Category string
	// Status 가 비어 있으면 모든 상태를 보여준다.
	Status string
}

func (s *AdminService) ListPoems(ctx context.Context, in AdminListPoemsInput) (dto.Pagination[dto.PoemDTO], error) {
	opt := repositories.ListPoemsOptions{Category: in.Category}
	opt.Page, opt.PageSize = clampPage(in.Page, in.PageSize)
	if in.Status != "" {
		st := models.PoemStatus(in.Status)
		if !st.Valid() {
			return dto.Pagination[dto.PoemDTO]{}, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
		}
		opt.Status = &st
	}

	items, total, err := s.poems.List(ctx, opt)
	if err != nil {
		return dto.Pagination[dto.PoemDTO]{}, err
	}
	return dto.Pagination[dto.PoemDTO]{
		Data:     mapPoems(items, defaultImages(ctx, s.categories), mapAdminPoem),
		Page:     opt.Page,
		PageSize: opt.PageSize,
		Total:    total,
	}, nil
}

// Moderate 는 approved 또는 rejected 로 상태를 바꾸고 검수자를 기록한다.
func (s *AdminService) Moderate(ctx context.Context, id string, status models.PoemStatus, moderator string) error {
	if status != models.PoemStatusApproved && status != models.PoemStatusRejected {
		return fmt.Errorf("%w: cannot moderate to %q", ErrValidation, status)
	}
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if err := s.poems.SetStatus(ctx, oid, status, moderator); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	config.Logger.Infof("poem %s moderated to %s by %s", oid.Hex(), status, moderator)
	return nil
}

// UpdatePoem 은 요청에 포함된 필드만 바꾼다.
func (s *AdminService) UpdatePoem(ctx context.Context, id string, in dto.UpdatePoemRequestDTO) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		v := strings.TrimSpace(*in.Title)
		if v == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		updates["title"] = v
	}
	if in.Body != nil {
		v := strings.TrimSpace(*in.Body)
		if v == "" {
			return fmt.Errorf("%w: body cannot be empty", ErrValidation)
		}
		if err := validateBody(v); err != nil {
			return err
		}
		updates["body"] = v
	}
	if in.Category != nil {
		v := strings.TrimSpace(*in.Category)
		if _, err := s.categories.GetByName(ctx, v); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: unknown category %q", ErrValidation, v)
			}
			return err
		}
		updates["category"] = v
	}
	if in.ImageURL != nil {
		updates["image_url"] = strings.TrimSpace(*in.ImageURL)
	}
	if in.Tags != nil {
		updates["tags"] = normalizeTags(*in.Tags)
	}
	if len(updates) == 0 {
		return fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	if err := s.poems.UpdateFields(ctx, oid, updates); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeletePoem 은 시와 그 시를 가리키는 즐겨찾기를 함께 지운다.
func (s *AdminService) DeletePoem(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	if err := s.poems.Delete(ctx, oid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	removed, err := s.favorites.RemoveByPoem(ctx, oid)
	if err != nil {
		// 시는 이미 지워졌다. 남은 즐겨찾기는 목록 조회 시 걸러진다.
		config.Logger.Warnf("failed to remove favorites of deleted poem %s: %v", oid.Hex(), err)
		return nil
	}
	config.Logger.Infof("poem %s deleted (favorites removed=%d)", oid.Hex(), removed)
	return nil
}

// UploadImage 는 이미지를 GridFS 에 저장하고 공개 URL 을 돌려준다.
func (s *AdminService) UploadImage(ctx context.Context, filename, contentType string, data io.Reader) (dto.ImageUploadResponseDTO, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return dto.ImageUploadResponseDTO{}, fmt.Errorf("%w: content type %q is not an image", ErrValidation, contentType)
	}
	id, err := s.images.Save(ctx, path.Base(filename), contentType, data)
	if err != nil {
		return dto.ImageUploadResponseDTO{}, err
	}
	return dto.ImageUploadResponseDTO{ID: id.Hex(), URL: generator.ImageURL(id)}, nil
}

func (s *AdminService) CreateGalleryItem(ctx context.Context, in dto.CreateGalleryItemRequestDTO) (dto.GalleryItemDTO, error) {
	kind := models.GalleryKind(strings.TrimSpace(in.Kind))
	if !kind.Valid() {
		return dto.GalleryItemDTO{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, in.Kind)
	}
	item := &models.GalleryItem{
		Kind:     kind,
		Title:    strings.TrimSpace(in.Title),
		URL:      strings.TrimSpace(in.URL),
		Category: strings.TrimSpace(in.Category),
	}
	if item.Title == "" || item.URL == "" {
		return dto.GalleryItemDTO{}, fmt.Errorf("%w: title and url are required", ErrValidation)
	}
	if _, err := s.gallery.Insert(ctx, item); err != nil {
		return dto.GalleryItemDTO{}, err
	}
	return mapGalleryItem(*item), nil
}
