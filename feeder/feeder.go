package feeder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedItem 은 시 피드의 항목 하나를 정규화한 결과다.
type FeedItem struct {
	Title       string
	Link        string
	Author      string
	PublishedAt time.Time
	Text        string
	ImageURL    string
}

const FEEDER_TIMEOUT = 30 * time.Second

// 일부 사이트(CDN/보안 프록시 뒤)는 기본 Go HTTP 클라이언트 UA 를 차단한다.
const feedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36"

var defaultClient = &http.Client{
	Timeout: FEEDER_TIMEOUT,
	CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 10 {
			return fmt.Errorf("stopped after 10 redirects")
		}
		// 리다이렉트 시 User-Agent 유지
		req.Header.Set("User-Agent", feedUserAgent)
		return nil
	},
}

// FetchPoemFeed fetches an RSS/Atom feed and extracts text and image for each item.
// If limit is greater than 0, it returns only the first limit items.
func FetchPoemFeed(ctx context.Context, feedURL string, limit int) ([]FeedItem, error) {
	return fetchPoemFeed(ctx, defaultClient, feedURL, limit)
}

func fetchPoemFeed(ctx context.Context, client *http.Client, feedURL string, limit int) ([]FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed request: %w", err)
	}
	req.Header.Set("User-Agent", feedUserAgent)
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,en;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodySample, _ := io.ReadAll(io.LimitReader(resp.Body, 500))
		return nil, fmt.Errorf("failed to fetch feed: status code %d, url: %s, body: %s", resp.StatusCode, feedURL, string(bodySample))
	}

	cleaned, err := cleanControlCharacters(resp.Body)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().Parse(cleaned)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := feed.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	out := make([]FeedItem, 0, len(items))
	for _, item := range items {
		out = append(out, toFeedItem(item))
	}
	return out, nil
}

func toFeedItem(item *gofeed.Item) FeedItem {
	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	content := item.Content
	if strings.TrimSpace(content) == "" {
		content = item.Description
	}

	fi := FeedItem{
		Title:       strings.TrimSpace(item.Title),
		Link:        strings.TrimSpace(item.Link),
		PublishedAt: published,
		Text:        ExtractText(content, item.Description, item.Link),
	}
	if item.Author != nil {
		fi.Author = strings.TrimSpace(item.Author.Name)
	} else if len(item.Authors) > 0 && item.Authors[0] != nil {
		fi.Author = strings.TrimSpace(item.Authors[0].Name)
	}

	if img := itemImage(item); img != "" {
		fi.ImageURL = img
	} else {
		fi.ImageURL = ExtractImage(content, item.Link)
	}
	return fi
}

// itemImage 는 피드 자체가 제공하는 이미지(image, enclosure)를 찾는다.
func itemImage(item *gofeed.Item) string {
	if item.Image != nil && strings.TrimSpace(item.Image.URL) != "" {
		return strings.TrimSpace(item.Image.URL)
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	return ""
}

// XML 에서 허용되지 않는 제어 문자 (탭, LF, CR 제외)
var invalidControlCharRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)

func cleanControlCharacters(r io.Reader) (io.Reader, error) {
	bodyBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body for cleaning: %w", err)
	}
	return bytes.NewReader(invalidControlCharRegex.ReplaceAll(bodyBytes, nil)), nil
}
