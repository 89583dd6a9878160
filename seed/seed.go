// Package seed 는 로컬 JSON 시 데이터를 Mongo 로 밀어넣는 일회성 ETL 이다.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"poemas-versos/config"
	"poemas-versos/models"
)

// File is the on-disk seed format.
//
//	{"categories": [{"name": "Amor", ...}], "poems": [{"title": "...", "body": "...", "category": "Amor"}]}
type File struct {
	Categories []CategoryRow `json:"categories"`
	Poems      []PoemRow     `json:"poems"`
}

type CategoryRow struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	DefaultImage string `json:"default_image"`
	SortOrder    int    `json:"sort_order"`
}

type PoemRow struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Author   string   `json:"author"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"image_url"`
	Image    string   `json:"image"`
	Likes    int64    `json:"likes"`
}

type CategoryStore interface {
	UpsertByName(ctx context.Context, c *models.Category) (*mongo.UpdateResult, error)
}

type PoemStore interface {
	UpsertBySlug(ctx context.Context, p *models.Poem) (*mongo.UpdateResult, error)
}

// Report 는 Run 결과 집계다.
type Report struct {
	Categories int `json:"categories"`
	Inserted   int `json:"inserted"`
	Updated    int `json:"updated"`
	Unchanged  int `json:"unchanged"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

func Load(r io.Reader) (*File, error) {
	var f File
	dec := json.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &f, nil
}

// FromConfig 는 config.yaml 의 categories 를 seed 행으로 바꾼다.
func FromConfig(cfg config.AppConfig) []CategoryRow {
	out := make([]CategoryRow, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		out = append(out, CategoryRow(c))
	}
	return out
}

// Run 은 카테고리를 이름 기준으로, 시를 slug 기준으로 upsert 한다.
// 필수 필드가 빠진 행은 건너뛰고 로그만 남긴다.
func Run(ctx context.Context, f *File, categories CategoryStore, poems PoemStore) (Report, error) {
	var rep Report

	for _, c := range f.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			rep.Skipped++
			continue
		}
		slug := c.Slug
		if slug == "" {
			slug = Slugify(name)
		}
		if _, err := categories.UpsertByName(ctx, &models.Category{
			Name:         name,
			Slug:         slug,
			Description:  c.Description,
			DefaultImage: c.DefaultImage,
			SortOrder:    c.SortOrder,
		}); err != nil {
			return rep, fmt.Errorf("upsert category %s: %w", name, err)
		}
		rep.Categories++
	}

	for i, row := range f.Poems {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		p, ok := toPoem(row)
		if !ok {
			config.Logger.Warnf("[seed] skip poem #%d (title=%q): title, body and category are required", i, row.Title)
			rep.Skipped++
			continue
		}
		res, err := poems.UpsertBySlug(ctx, p)
		if err != nil {
			config.Logger.Errorf("[seed] failed to upsert poem %s: %v", p.Slug, err)
			rep.Failed++
			continue
		}
		switch {
		case res.UpsertedCount > 0:
			rep.Inserted++
		case res.ModifiedCount > 0:
			rep.Updated++
		default:
			rep.Unchanged++
		}
	}

	config.Logger.Infof("[seed] done: categories=%d inserted=%d updated=%d unchanged=%d skipped=%d failed=%d",
		rep.Categories, rep.Inserted, rep.Updated, rep.Unchanged, rep.Skipped, rep.Failed)
	return rep, nil
}

func toPoem(row PoemRow) (*models.Poem, bool) {
	title := strings.TrimSpace(row.Title)
	body := strings.TrimSpace(row.Body)
	category := strings.TrimSpace(row.Category)
	if title == "" || body == "" || category == "" {
		return nil, false
	}
	slug := strings.TrimSpace(row.Slug)
	if slug == "" {
		slug = Slugify(category + " " + title)
	}
	return &models.Poem{
		Slug:     slug,
		Title:    title,
		Body:     body,
		Author:   strings.TrimSpace(row.Author),
		Category: category,
		Tags:     row.Tags,
		Status:   models.PoemStatusApproved,
		Likes:    max(row.Likes, 0),
		ImageURL: strings.TrimSpace(row.ImageURL),
		Image:    strings.TrimSpace(row.Image),
		Source:   models.PoemSourceSeed,
	}, true
}

// Slugify 는 "Aniversario Cuánto te quiero" -> "aniversario-cuanto-te-quiero".
// 악센트는 제거하고 영숫자가 아닌 문자는 '-' 하나로 합친다.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
