package services

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"poemas-versos/cmd/api/dto"
	"poemas-versos/config"
	"poemas-versos/models"
)

// CategoryImages 는 카테고리별 기본 이미지를 제공한다.
type CategoryImages interface {
	DefaultImages(ctx context.Context) (map[string]string, error)
}

// defaultImages 는 실패해도 목록 응답을 막지 않는다. 이미지만 비어서 나간다.
func defaultImages(ctx context.Context, src CategoryImages) map[string]string {
	if src == nil {
		return nil
	}
	images, err := src.DefaultImages(ctx)
	if err != nil {
		config.Logger.Warnf("failed to load category default images: %v", err)
		return nil
	}
	return images
}

func mapPoem(p models.Poem, categoryImages map[string]string) dto.PoemDTO {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return dto.PoemDTO{
		ID:        p.ID.Hex(),
		Slug:      p.Slug,
		Title:     p.Title,
		Body:      p.Body,
		Author:    p.Author,
		Category:  p.Category,
		Tags:      tags,
		Likes:     p.Likes,
		ImageURL:  p.DisplayImage(categoryImages[p.Category]),
		CreatedAt: p.CreatedAt,
	}
}

// mapAdminPoem 은 공개 응답에 moderation 필드를 더한다.
func mapAdminPoem(p models.Poem, categoryImages map[string]string) dto.PoemDTO {
	d := mapPoem(p, categoryImages)
	d.Status = string(p.Status)
	d.Source = string(p.Source)
	d.SubmittedBy = p.SubmittedBy
	d.ModeratedAt = p.ModeratedAt
	d.ModeratedBy = p.ModeratedBy
	return d
}

func mapPoems(items []models.Poem, categoryImages map[string]string, mapper func(models.Poem, map[string]string) dto.PoemDTO) []dto.PoemDTO {
	out := make([]dto.PoemDTO, 0, len(items))
	for _, p := range items {
		out = append(out, mapper(p, categoryImages))
	}
	return out
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// normalizeTags 는 소문자/trim 후 중복과 빈 값을 제거한다.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func clampPage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
