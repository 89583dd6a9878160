package feeder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poemas-versos/config"
	"poemas-versos/models"
)

type memPoems struct {
	mu    sync.Mutex
	links map[string]models.Poem
}

func (m *memPoems) InsertIfNewSourceLink(_ context.Context, p *models.Poem) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = map[string]models.Poem{}
	}
	if _, ok := m.links[p.SourceLink]; ok {
		return false, nil
	}
	m.links[p.SourceLink] = *p
	return true, nil
}

func TestImporter_DedupesBySourceLink(t *testing.T) {
	published := time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC)
	store := &memPoems{}
	im := NewImporter(store)
	im.fetch = func(_ context.Context, url string, limit int) ([]FeedItem, error) {
		assert.Equal(t, "https://feed.example/rss", url)
		assert.Equal(t, 5, limit)
		return []FeedItem{
			{Title: "Rima", Link: "https://p.example/rima", Text: "Poesía eres tú", PublishedAt: published},
			{Title: "Rima", Link: "https://p.example/rima", Text: "Poesía eres tú"},
			{Title: "", Link: "https://p.example/x", Text: "sin título"},
			{Title: "Largo", Link: "https://p.example/largo", Text: strings.Repeat("á", maxBodyRunes+10)},
		}, nil
	}

	rep, err := im.Import(context.Background(), config.FeedSource{Name: "alma", URL: "https://feed.example/rss", Category: "Amor", Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Feed: "alma", Fetched: 4, Inserted: 2, Duplicates: 1, Skipped: 1}, rep)

	rima := store.links["https://p.example/rima"]
	assert.Equal(t, models.PoemStatusPending, rima.Status)
	assert.Equal(t, models.PoemSourceFeed, rima.Source)
	assert.Equal(t, "Amor", rima.Category)
	assert.Equal(t, published, rima.CreatedAt)
	assert.Len(t, []rune(store.links["https://p.example/largo"].Body), maxBodyRunes)
}

func TestImporter_ImportAllKeepsGoingOnFeedError(t *testing.T) {
	im := NewImporter(&memPoems{})
	im.fetch = func(_ context.Context, url string, _ int) ([]FeedItem, error) {
		if url == "bad" {
			return nil, errors.New("timeout")
		}
		return []FeedItem{{Title: "t", Link: url + "/1", Text: "x"}}, nil
	}

	reports, err := im.ImportAll(context.Background(), []config.FeedSource{
		{Name: "a", URL: "good", Category: "Amor"},
		{Name: "b", URL: "bad", Category: "Amor"},
		{Name: "c", URL: "other", Category: ""},
	})
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, 1, reports[0].Inserted)
	assert.Contains(t, reports[1].Error, "timeout")
	assert.Contains(t, reports[2].Error, "category is required")
}

func TestImporter_FullPageRendersItemLinks(t *testing.T) {
	store := &memPoems{}
	im := NewImporter(store)
	im.fetch = func(_ context.Context, _ string, _ int) ([]FeedItem, error) {
		return []FeedItem{
			{Title: "Volverán", Link: "https://p.example/volveran", Text: "Leer más..."},
			{Title: "Caído", Link: "https://p.example/caido", Text: "resumen"},
		}, nil
	}
	var rendered []string
	var mu sync.Mutex
	im.render = func(_ context.Context, pageURL string) (string, error) {
		mu.Lock()
		rendered = append(rendered, pageURL)
		mu.Unlock()
		if strings.HasSuffix(pageURL, "caido") {
			return "", errors.New("chrome not found")
		}
		return poemArticle, nil
	}

	rep, err := im.Import(context.Background(), config.FeedSource{Name: "alma", URL: "u", Category: "Amor", FullPage: true})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Inserted)
	assert.ElementsMatch(t, []string{"https://p.example/volveran", "https://p.example/caido"}, rendered)
	assert.Contains(t, store.links["https://p.example/volveran"].Body, "mis acordes cotidianos")
	assert.Equal(t, "resumen", store.links["https://p.example/caido"].Body)
}

func TestImporter_SkipsRenderWithoutFullPage(t *testing.T) {
	im := NewImporter(&memPoems{})
	im.fetch = func(_ context.Context, _ string, _ int) ([]FeedItem, error) {
		return []FeedItem{{Title: "t", Link: "https://p.example/1", Text: "x"}}, nil
	}
	im.render = func(context.Context, string) (string, error) {
		t.Fatal("render must not be called")
		return "", nil
	}
	rep, err := im.Import(context.Background(), config.FeedSource{Name: "a", URL: "u", Category: "Amor"})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Inserted)
}
