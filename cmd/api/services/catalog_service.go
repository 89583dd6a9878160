package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/models"
	"poemas-versos/repositories"
)

// CatalogService 는 카테고리, 갤러리, 이미지 조회를 담당한다.
type CatalogService struct {
	categories *repositories.CategoryRepository
	gallery    *repositories.GalleryRepository
	images     *repositories.ImageRepository
}

func NewCatalogService(categories *repositories.CategoryRepository, gallery *repositories.GalleryRepository, images *repositories.ImageRepository) *CatalogService {
	return &CatalogService{categories: categories, gallery: gallery, images: images}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]dto.CategoryDTO, error) {
	items, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryDTO, 0, len(items))
	for _, c := range items {
		out = append(out, dto.CategoryDTO{
			Name:         c.Name,
			Slug:         c.Slug,
			Description:  c.Description,
			DefaultImage: c.DefaultImage,
		})
	}
	return out, nil
}

type ListGalleryInput struct {
	Page     int
	PageSize int
	Kind     string
	Category string
}

func (s *CatalogService) ListGallery(ctx context.Context, in ListGalleryInput) (dto.Pagination[dto.GalleryItemDTO], error) {
	kind := models.GalleryKind(in.Kind)
	if kind != "" && !kind.Valid() {
		return dto.Pagination[dto.GalleryItemDTO]{}, fmt.Errorf("%w: unknown kind %q", ErrValidation, in.Kind)
	}
	page, pageSize := clampPage(in.Page, in.PageSize)
	items, total, err := s.gallery.List(ctx, repositories.ListGalleryOptions{
		Page:     page,
		PageSize: pageSize,
		Kind:     kind,
		Category: in.Category,
	})
	if err != nil {
		return dto.Pagination[dto.GalleryItemDTO]{}, err
	}
	out := make([]dto.GalleryItemDTO, 0, len(items))
	for _, g := range items {
		out = append(out, mapGalleryItem(g))
	}
	return dto.Pagination[dto.GalleryItemDTO]{Data: out, Page: page, PageSize: pageSize, Total: total}, nil
}

// ImageStream 은 GridFS 파일 스트림과 메타데이터다. 호출자가 Close 해야 한다.
type ImageStream struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

func (s *CatalogService) OpenImage(ctx context.Context, id string) (*ImageStream, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	stream, info, err := s.images.Open(ctx, oid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ImageStream{ReadCloser: stream, ContentType: info.ContentType, Size: info.Size}, nil
}

func mapGalleryItem(g models.GalleryItem) dto.GalleryItemDTO {
	return dto.GalleryItemDTO{
		ID:        g.ID.Hex(),
		Kind:      string(g.Kind),
		Title:     g.Title,
		URL:       g.URL,
		Category:  g.Category,
		CreatedAt: g.CreatedAt,
	}
}
