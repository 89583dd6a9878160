package feeder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poemFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>Poemas del Alma</title>
  <link>https://poemas.example</link>
  <item>
    <title>Rima XXI</title>
    <link>https://poemas.example/rima-xxi</link>
    <author>gustavo@example.com (Gustavo Adolfo Bécquer)</author>
    <pubDate>Mon, 02 Jun 2025 10:00:00 +0000</pubDate>
    <description><![CDATA[<p>¿Qué es poesía?<br>Poesía... eres tú.</p>]]></description>
    <enclosure url="https://poemas.example/img/rima.jpg" type="image/jpeg" length="1000"/>
  </item>
  <item>
    <title>Sin imagen de feed` + "\x0b" + `</title>
    <link>https://poemas.example/otro</link>
    <description>corto</description>
    <content:encoded><![CDATA[<html><head><meta property="og:image" content="https://cdn.example/og.jpg"></head><body><p>Verso uno<br>verso dos</p></body></html>]]></content:encoded>
  </item>
  <item>
    <title>Tercero</title>
    <link>https://poemas.example/tercero</link>
    <description>tercero</description>
  </item>
</channel>
</rss>`

func TestFetchPoemFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, feedUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(poemFeed))
	}))
	defer srv.Close()

	items, err := FetchPoemFeed(context.Background(), srv.URL, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)

	first := items[0]
	assert.Equal(t, "Rima XXI", first.Title)
	assert.Equal(t, "https://poemas.example/rima-xxi", first.Link)
	assert.Equal(t, "https://poemas.example/img/rima.jpg", first.ImageURL)
	assert.Contains(t, first.Text, "Poesía... eres tú.")
	assert.False(t, first.PublishedAt.IsZero())

	second := items[1]
	assert.Equal(t, "Sin imagen de feed", second.Title)
	assert.Equal(t, "https://cdn.example/og.jpg", second.ImageURL)
	assert.Contains(t, second.Text, "Verso uno")
}

func TestFetchPoemFeed_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := FetchPoemFeed(context.Background(), srv.URL, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
