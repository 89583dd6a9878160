package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"poemas-versos/cmd/api/auth"
	"poemas-versos/cmd/api/dto"
	"poemas-versos/cmd/api/services"
	"poemas-versos/config"
	"poemas-versos/eventbus"
	"poemas-versos/events"
	"poemas-versos/models"
	"poemas-versos/sampler"
)

type fakeStore struct {
	poems   []models.Poem
	listErr error
}

func (s *fakeStore) ListIDsByCategory(_ context.Context, category string) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	ids := []string{}
	for _, p := range s.poems {
		if p.Category == category {
			ids = append(ids, p.ID.Hex())
		}
	}
	return ids, nil
}

func (s *fakeStore) GetByIDs(_ context.Context, ids []string) ([]models.Poem, error) {
	want := sampler.NewIDSet(ids...)
	out := []models.Poem{}
	for _, p := range s.poems {
		if want.Has(p.ID.Hex()) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newFakeStore(category string, n int) *fakeStore {
	s := &fakeStore{}
	for i := 0; i < n; i++ {
		s.poems = append(s.poems, models.Poem{
			ID:       primitive.NewObjectID(),
			Title:    "poema",
			Body:     "verso",
			Category: category,
			Status:   models.PoemStatusApproved,
		})
	}
	return s
}

func newRandomEngine(store sampler.Store, cfg config.SamplerConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc := services.NewRandomService(sampler.New(store), nil, cfg)
	r.POST("/poems/random", RandomPoemsHandler(svc))
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var samplerCfg = config.SamplerConfig{DefaultPageSize: 2, MaxPageSize: 3}

func TestRandomPoemsHandlerReturnsBatch(t *testing.T) {
	store := newFakeStore("Amor", 3)
	r := newRandomEngine(store, samplerCfg)

	w := postJSON(t, r, "/poems/random", `{"category":"Amor","page_size":2}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.RandomPoemsResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	assert.False(t, resp.Exhausted)
	for _, p := range resp.Data {
		assert.Equal(t, "Amor", p.Category)
	}
}

func TestRandomPoemsHandlerExcludesAndExhausts(t *testing.T) {
	store := newFakeStore("Desamor", 3)
	r := newRandomEngine(store, samplerCfg)

	seen := []string{}
	for i := 0; i < 2; i++ {
		w := postJSON(t, r, "/poems/random", map[string]any{
			"category":    "Desamor",
			"exclude_ids": seen,
			"page_size":   2,
		})
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.RandomPoemsResponseDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Exhausted)
		for _, p := range resp.Data {
			assert.NotContains(t, seen, p.ID)
			seen = append(seen, p.ID)
		}
	}
	require.Len(t, seen, 3)

	w := postJSON(t, r, "/poems/random", map[string]any{
		"category":    "Desamor",
		"exclude_ids": seen,
		"page_size":   2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"exhausted":true}`, w.Body.String())
}

func TestRandomPoemsHandlerUnknownCategoryIsExhausted(t *testing.T) {
	r := newRandomEngine(newFakeStore("Amor", 2), samplerCfg)

	w := postJSON(t, r, "/poems/random", `{"category":"Nonexistent","page_size":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"exhausted":true}`, w.Body.String())
}

func TestRandomPoemsHandlerPageSizeDefaults(t *testing.T) {
	r := newRandomEngine(newFakeStore("Amor", 10), samplerCfg)

	testCases := []struct {
		name string
		body string
		want int
	}{
		{name: "omitted uses default", body: `{"category":"Amor"}`, want: 2},
		{name: "clamped to max", body: `{"category":"Amor","page_size":50}`, want: 3},
		{name: "within range", body: `{"category":"Amor","page_size":1}`, want: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/poems/random", tc.body)
			require.Equal(t, http.StatusOK, w.Code)
			var resp dto.RandomPoemsResponseDTO
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Len(t, resp.Data, tc.want)
		})
	}
}

func TestRandomPoemsHandlerBadRequests(t *testing.T) {
	r := newRandomEngine(newFakeStore("Amor", 3), samplerCfg)

	testCases := []struct {
		name string
		body string
	}{
		{name: "zero page size", body: `{"category":"Amor","page_size":0}`},
		{name: "negative page size", body: `{"category":"Amor","page_size":-1}`},
		{name: "missing category", body: `{"page_size":2}`},
		{name: "malformed json", body: `{"category":`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, r, "/poems/random", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp dto.ErrorResponseDTO
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
			assert.False(t, resp.Retryable)
		})
	}
}

func TestRandomPoemsHandlerStoreFailureIsRetryable(t *testing.T) {
	store := newFakeStore("Amor", 3)
	store.listErr = errors.New("connection refused")
	r := newRandomEngine(store, samplerCfg)

	w := postJSON(t, r, "/poems/random", `{"category":"Amor","page_size":2}`)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp dto.ErrorResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "data_unavailable", resp.Error)
	assert.True(t, resp.Retryable)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

type fakePublisher struct {
	topic string
	event eventbus.Event
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, event eventbus.Event) error {
	p.topic = topic
	p.event = event
	return p.err
}

func newGenerateEngine(bus eventbus.Publisher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		auth.SetPrincipal(c, auth.Principal{UserCode: "admin-1", Role: auth.RoleAdmin})
		c.Next()
	})
	r.POST("/admin/generate", AdminGenerateHandler(services.NewGenerationService(bus)))
	return r
}

func TestAdminGenerateHandlerPublishesRequest(t *testing.T) {
	pub := &fakePublisher{}
	r := newGenerateEngine(pub)

	w := postJSON(t, r, "/admin/generate", `{"category":"Amor","theme":"la lluvia","with_image":true}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp dto.GenerateAcceptedDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.RequestID)

	assert.Equal(t, eventbus.TopicPoemEvents.Base(), pub.topic)
	assert.Equal(t, resp.RequestID, pub.event.ID)

	payload, err := eventbus.DecodeJSON[events.PoemGenerationRequestedEvent](pub.event)
	require.NoError(t, err)
	assert.Equal(t, events.PoemGenerationRequested, payload.Type)
	assert.Equal(t, resp.RequestID, payload.RequestID)
	assert.Equal(t, "Amor", payload.Category)
	assert.Equal(t, "la lluvia", payload.Theme)
	assert.True(t, payload.WithImage)
	assert.Equal(t, "admin-1", payload.RequestedBy)
}

func TestAdminGenerateHandlerWithoutBus(t *testing.T) {
	r := newGenerateEngine(nil)

	w := postJSON(t, r, "/admin/generate", `{"category":"Amor"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "generation_unavailable")
}

func TestAdminGenerateHandlerPublishFailure(t *testing.T) {
	r := newGenerateEngine(&fakePublisher{err: errors.New("broker down")})

	w := postJSON(t, r, "/admin/generate", `{"category":"Amor"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal_error"}`, w.Body.String())
}

func TestAdminGenerateHandlerRequiresCategory(t *testing.T) {
	pub := &fakePublisher{}
	r := newGenerateEngine(pub)

	w := postJSON(t, r, "/admin/generate", `{"theme":"mar"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, pub.topic)
}
