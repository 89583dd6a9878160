package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"poemas-versos/models"
)

type fakeLimiter struct {
	ok  bool
	err error
}

func (f fakeLimiter) WaitAndReserve(context.Context) (bool, error) { return f.ok, f.err }

type fakeWriter struct {
	poem     *GeneratedPoem
	poemErr  error
	image    []byte
	imageErr error
	prompts  []string
}

func (f *fakeWriter) GeneratePoem(_ context.Context, req GenerateRequest) (*GeneratedPoem, *LLMRequestLog, error) {
	log := &LLMRequestLog{ModelName: "gemini-test", Prompt: req.Category, Response: "{}", TokenUsage: TokenUsage{TotalTokens: 42}}
	if f.poemErr != nil {
		return nil, log, f.poemErr
	}
	return f.poem, log, nil
}

func (f *fakeWriter) GenerateImage(_ context.Context, prompt string) ([]byte, string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.imageErr != nil {
		return nil, "", f.imageErr
	}
	return f.image, "image/jpeg", nil
}

type fakePoems struct{ inserted []*models.Poem }

func (f *fakePoems) Insert(_ context.Context, p *models.Poem) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	f.inserted = append(f.inserted, p)
	return p.ID, nil
}

type fakeImages struct {
	names []string
	id    primitive.ObjectID
}

func (f *fakeImages) SaveBytes(_ context.Context, filename, _ string, _ []byte) (primitive.ObjectID, error) {
	f.names = append(f.names, filename)
	return f.id, nil
}

type fakeLogs struct{ entries []models.AILog }

func (f *fakeLogs) Insert(_ context.Context, l models.AILog) (*mongo.InsertOneResult, error) {
	f.entries = append(f.entries, l)
	return &mongo.InsertOneResult{}, nil
}

func TestPipelineRun_StoresPendingPoemWithImage(t *testing.T) {
	writer := &fakeWriter{poem: &GeneratedPoem{Title: "Luna", Body: "verso", Tags: []string{"noche"}}, image: []byte{1, 2, 3}}
	poems, images, logs := &fakePoems{}, &fakeImages{id: primitive.NewObjectID()}, &fakeLogs{}
	p := NewPipeline(fakeLimiter{ok: true}, writer, poems, images, logs)

	got, err := p.Run(context.Background(), PipelineRequest{RequestID: "req-1", Category: "Amor", WithImage: true, RequestedBy: "admin"})
	require.NoError(t, err)

	assert.Equal(t, models.PoemStatusPending, got.Status)
	assert.Equal(t, models.PoemSourceAI, got.Source)
	assert.Equal(t, "Amor", got.Category)
	assert.Equal(t, "admin", got.SubmittedBy)
	assert.Equal(t, "/api/v1/images/"+images.id.Hex(), got.ImageURL)
	assert.Equal(t, []string{"ai-req-1.jpg"}, images.names)
	require.Len(t, writer.prompts, 1)
	assert.Contains(t, writer.prompts[0], "Luna")

	require.Len(t, logs.entries, 1)
	require.NotNil(t, logs.entries[0].PoemID)
	assert.Equal(t, got.ID, *logs.entries[0].PoemID)
	assert.Equal(t, int64(42), logs.entries[0].TotalTokens)
	assert.Nil(t, logs.entries[0].ErrorMessage)
}

func TestPipelineRun_ImageFailureKeepsPoem(t *testing.T) {
	writer := &fakeWriter{poem: &GeneratedPoem{Title: "Mar", Body: "ola"}, imageErr: errors.New("blocked")}
	poems := &fakePoems{}
	p := NewPipeline(fakeLimiter{ok: true}, writer, poems, &fakeImages{}, &fakeLogs{})

	got, err := p.Run(context.Background(), PipelineRequest{RequestID: "req-2", Category: "Amistad", WithImage: true})
	require.NoError(t, err)
	assert.Empty(t, got.ImageURL)
	assert.Len(t, poems.inserted, 1)
}

func TestPipelineRun_QuotaExhausted(t *testing.T) {
	writer := &fakeWriter{poem: &GeneratedPoem{Title: "x", Body: "y"}}
	poems := &fakePoems{}
	p := NewPipeline(fakeLimiter{ok: false}, writer, poems, nil, nil)

	_, err := p.Run(context.Background(), PipelineRequest{Category: "Amor"})
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Empty(t, poems.inserted)
}

func TestPipelineRun_GenerationErrorIsLogged(t *testing.T) {
	writer := &fakeWriter{poemErr: ErrRefused}
	poems, logs := &fakePoems{}, &fakeLogs{}
	p := NewPipeline(fakeLimiter{ok: true}, writer, poems, nil, logs)

	_, err := p.Run(context.Background(), PipelineRequest{RequestID: "req-3", Category: "Desamor"})
	assert.ErrorIs(t, err, ErrRefused)
	assert.Empty(t, poems.inserted)
	require.Len(t, logs.entries, 1)
	require.NotNil(t, logs.entries[0].ErrorMessage)
	assert.Nil(t, logs.entries[0].PoemID)
	assert.Equal(t, "gemini-test", logs.entries[0].ModelName)
}

func TestPipelineRun_RequiresCategory(t *testing.T) {
	p := NewPipeline(nil, &fakeWriter{}, &fakePoems{}, nil, nil)
	_, err := p.Run(context.Background(), PipelineRequest{Category: " "})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
