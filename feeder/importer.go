package feeder

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"poemas-versos/config"
	"poemas-versos/models"
	"poemas-versos/renderer"
)

// maxBodyRunes 는 사용자 제출과 동일한 본문 길이 상한이다.
const maxBodyRunes = 5000

type PoemStore interface {
	InsertIfNewSourceLink(ctx context.Context, p *models.Poem) (bool, error)
}

type FetchFunc func(ctx context.Context, url string, limit int) ([]FeedItem, error)

// RenderFunc 는 페이지 하나의 최종 HTML 을 돌려준다.
type RenderFunc func(ctx context.Context, pageURL string) (string, error)

// Importer 는 config.yaml 의 feeds 를 읽어 pending 시로 저장한다.
// 같은 source_link 는 한 번만 들어간다.
type Importer struct {
	poems PoemStore
	fetch FetchFunc
	// full_page 피드에서 항목 링크를 열 때 사용
	render RenderFunc
	// 동시에 가져올 피드 수
	concurrency int
}

type ImportReport struct {
	Feed       string `json:"feed"`
	Fetched    int    `json:"fetched"`
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Skipped    int    `json:"skipped"`
	Error      string `json:"error,omitempty"`
}

func NewImporter(poems PoemStore) *Importer {
	return &Importer{poems: poems, fetch: FetchPoemFeed, render: renderer.RenderHTML, concurrency: 2}
}

// Import 는 피드 하나를 가져온다.
func (im *Importer) Import(ctx context.Context, src config.FeedSource) (ImportReport, error) {
	rep := ImportReport{Feed: src.Name}
	if strings.TrimSpace(src.Category) == "" {
		return rep, fmt.Errorf("feed %s: category is required", src.Name)
	}

	items, err := im.fetch(ctx, src.URL, src.Limit)
	if err != nil {
		return rep, fmt.Errorf("fetch feed %s: %w", src.Name, err)
	}
	rep.Fetched = len(items)

	for _, item := range items {
		if src.FullPage {
			item = im.fillFromPage(ctx, item)
		}
		if item.Link == "" || item.Title == "" || strings.TrimSpace(item.Text) == "" {
			rep.Skipped++
			continue
		}
		p := &models.Poem{
			Title:      item.Title,
			Body:       truncateRunes(item.Text, maxBodyRunes),
			Author:     item.Author,
			Category:   src.Category,
			Status:     models.PoemStatusPending,
			ImageURL:   item.ImageURL,
			Source:     models.PoemSourceFeed,
			SourceLink: item.Link,
		}
		if !item.PublishedAt.IsZero() {
			p.CreatedAt = item.PublishedAt
		}
		inserted, err := im.poems.InsertIfNewSourceLink(ctx, p)
		if err != nil {
			return rep, fmt.Errorf("insert %s: %w", item.Link, err)
		}
		if inserted {
			rep.Inserted++
		} else {
			rep.Duplicates++
		}
	}

	config.Logger.Infof("[feeder] %s: fetched=%d inserted=%d duplicates=%d skipped=%d",
		src.Name, rep.Fetched, rep.Inserted, rep.Duplicates, rep.Skipped)
	return rep, nil
}

// fillFromPage 는 항목 링크를 렌더링해 본문을 채운다. 실패하면 피드 본문을 그대로 쓴다.
func (im *Importer) fillFromPage(ctx context.Context, item FeedItem) FeedItem {
	if item.Link == "" || im.render == nil {
		return item
	}
	pageHTML, err := im.render(ctx, item.Link)
	if err != nil {
		config.Logger.Warnf("[feeder] render %s failed, keeping feed text: %v", item.Link, err)
		return item
	}
	text, image := ExtractPage(pageHTML, item.Link)
	if text != "" {
		item.Text = text
	}
	if item.ImageURL == "" {
		item.ImageURL = image
	}
	return item
}

// ImportAll 은 여러 피드를 병렬로 가져온다. 피드 하나의 실패는 리포트에만 남긴다.
func (im *Importer) ImportAll(ctx context.Context, feeds []config.FeedSource) ([]ImportReport, error) {
	reports := make([]ImportReport, len(feeds))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(im.concurrency, 1))
	for i, src := range feeds {
		g.Go(func() error {
			rep, err := im.Import(gctx, src)
			if err != nil {
				config.Logger.Errorf("[feeder] import %s failed: %v", src.Name, err)
				rep.Error = err.Error()
			}
			mu.Lock()
			reports[i] = rep
			mu.Unlock()
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
