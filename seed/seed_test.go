package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"poemas-versos/config"
	"poemas-versos/models"
)

type fakeCategories struct{ got []models.Category }

func (f *fakeCategories) UpsertByName(_ context.Context, c *models.Category) (*mongo.UpdateResult, error) {
	f.got = append(f.got, *c)
	return &mongo.UpdateResult{UpsertedCount: 1}, nil
}

type fakePoems struct {
	bySlug map[string]models.Poem
	failOn string
}

func (f *fakePoems) UpsertBySlug(_ context.Context, p *models.Poem) (*mongo.UpdateResult, error) {
	if p.Slug == f.failOn {
		return nil, errors.New("write conflict")
	}
	if f.bySlug == nil {
		f.bySlug = map[string]models.Poem{}
	}
	prev, ok := f.bySlug[p.Slug]
	f.bySlug[p.Slug] = *p
	switch {
	case !ok:
		return &mongo.UpdateResult{UpsertedCount: 1}, nil
	case prev.Body != p.Body:
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	default:
		return &mongo.UpdateResult{MatchedCount: 1}, nil
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Amor":                        "amor",
		"Aniversario Cuánto te quiero": "aniversario-cuanto-te-quiero",
		"  ¿Dónde estás, corazón?  ":  "donde-estas-corazon",
		"Niño & Señor 2":              "nino-senor-2",
		"---":                         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestLoadAndRun(t *testing.T) {
	raw := `{
		"categories": [{"name": "Desamor", "sort_order": 2}, {"name": " "}],
		"poems": [
			{"title": "Adiós", "body": "Me voy", "category": "Desamor"},
			{"title": "Otra vez", "body": "Vuelvo", "category": "Desamor", "slug": "custom", "likes": -3},
			{"title": "", "body": "sin título", "category": "Desamor"},
			{"title": "Sin categoría", "body": "x"}
		]
	}`
	f, err := Load(strings.NewReader(raw))
	require.NoError(t, err)

	cats, poems := &fakeCategories{}, &fakePoems{}
	rep, err := Run(context.Background(), f, cats, poems)
	require.NoError(t, err)

	assert.Equal(t, Report{Categories: 1, Inserted: 2, Skipped: 3}, rep)
	require.Len(t, cats.got, 1)
	assert.Equal(t, "desamor", cats.got[0].Slug)

	p, ok := poems.bySlug["desamor-adios"]
	require.True(t, ok)
	assert.Equal(t, models.PoemStatusApproved, p.Status)
	assert.Equal(t, models.PoemSourceSeed, p.Source)
	assert.Equal(t, int64(0), poems.bySlug["custom"].Likes)

	// 두 번째 실행: 본문이 바뀐 행만 updated
	f.Poems[0].Body = "Me voy otra vez"
	rep, err = Run(context.Background(), f, cats, poems)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Updated)
	assert.Equal(t, 1, rep.Unchanged)
}

func TestRun_PoemFailureIsCounted(t *testing.T) {
	f := &File{Poems: []PoemRow{
		{Title: "A", Body: "a", Category: "Amor"},
		{Title: "B", Body: "b", Category: "Amor"},
	}}
	rep, err := Run(context.Background(), f, &fakeCategories{}, &fakePoems{failOn: "amor-b"})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Inserted)
	assert.Equal(t, 1, rep.Failed)
}

func TestLoad_InvalidJSON(t *testing.T) {
	_, err := Load(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	rows := FromConfig(config.AppConfig{Categories: []config.CategorySource{{Name: "Amor", SortOrder: 1}}})
	assert.Equal(t, []CategoryRow{{Name: "Amor", SortOrder: 1}}, rows)
}
