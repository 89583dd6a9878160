package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"poemas-versos/models"
	"poemas-versos/sampler"
)

type browseStore struct {
	poems   []models.Poem
	listErr error
	lists   int
}

func (s *browseStore) ListIDsByCategory(_ context.Context, category string) ([]string, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	var ids []string
	for _, p := range s.poems {
		if p.Category == category {
			ids = append(ids, p.ID.Hex())
		}
	}
	return ids, nil
}

func (s *browseStore) GetByIDs(_ context.Context, ids []string) ([]models.Poem, error) {
	want := sampler.NewIDSet(ids...)
	var out []models.Poem
	for _, p := range s.poems {
		if want.Has(p.ID.Hex()) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newBrowseCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestWalkUntilExhausted(t *testing.T) {
	store := &browseStore{}
	for _, title := range []string{"Uno", "Dos", "Tres"} {
		store.poems = append(store.poems, models.Poem{ID: primitive.NewObjectID(), Title: title, Category: "Desamor", Status: models.PoemStatusApproved})
	}
	cmd, out := newBrowseCommand()

	session := sampler.NewSession("Desamor", sampler.WithIDCache())
	err := walk(context.Background(), cmd, sampler.New(store), session, 2, 0)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "== page 1 ==")
	assert.Contains(t, text, "== page 2 ==")
	assert.NotContains(t, text, "== page 3 ==")
	assert.Contains(t, text, "-- Desamor exhausted after 3 poems --")
	for _, title := range []string{"Uno", "Dos", "Tres"} {
		assert.Equal(t, 1, strings.Count(text, title))
	}
	assert.Equal(t, 1, store.lists)
}

func TestWalkStopsAtMaxPages(t *testing.T) {
	store := &browseStore{}
	for i := 0; i < 5; i++ {
		store.poems = append(store.poems, models.Poem{ID: primitive.NewObjectID(), Title: "p", Category: "Amor", Status: models.PoemStatusApproved})
	}
	cmd, out := newBrowseCommand()

	err := walk(context.Background(), cmd, sampler.New(store), sampler.NewSession("Amor"), 2, 1)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "== page 1 ==")
	assert.NotContains(t, out.String(), "exhausted")
}

func TestWalkReportsUnavailableStore(t *testing.T) {
	store := &browseStore{listErr: errors.New("timeout")}
	cmd, _ := newBrowseCommand()

	err := walk(context.Background(), cmd, sampler.New(store), sampler.NewSession("Amor"), 2, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, sampler.ErrDataUnavailable)
	assert.Contains(t, err.Error(), "retry later")
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "Verso", firstLine("Verso\nsegundo"))
	assert.Equal(t, "Solo", firstLine("Solo"))
}
