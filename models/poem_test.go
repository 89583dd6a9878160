package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoemDisplayImage(t *testing.T) {
	testCases := []struct {
		name            string
		poem            Poem
		categoryDefault string
		want            string
	}{
		{
			name:            "remote url wins",
			poem:            Poem{ImageURL: "https://cdn.example.com/a.jpg", Image: "/static/a.jpg"},
			categoryDefault: "/img/amor.jpg",
			want:            "https://cdn.example.com/a.jpg",
		},
		{
			name:            "static path when url empty",
			poem:            Poem{Image: "/static/a.jpg"},
			categoryDefault: "/img/amor.jpg",
			want:            "/static/a.jpg",
		},
		{
			name:            "blank url is ignored",
			poem:            Poem{ImageURL: "   ", Image: "/static/b.jpg"},
			categoryDefault: "/img/amor.jpg",
			want:            "/static/b.jpg",
		},
		{
			name:            "category default",
			poem:            Poem{},
			categoryDefault: "/img/amor.jpg",
			want:            "/img/amor.jpg",
		},
		{
			name: "nothing available",
			poem: Poem{},
			want: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.poem.DisplayImage(tc.categoryDefault))
		})
	}
}

func TestPoemStatusValid(t *testing.T) {
	assert.True(t, PoemStatusPending.Valid())
	assert.True(t, PoemStatusApproved.Valid())
	assert.True(t, PoemStatusRejected.Valid())
	assert.False(t, PoemStatus("archived").Valid())
	assert.False(t, PoemStatus("").Valid())
}

func TestGalleryKindValid(t *testing.T) {
	assert.True(t, GalleryKindImage.Valid())
	assert.True(t, GalleryKindVideo.Valid())
	assert.False(t, GalleryKind("audio").Valid())
}
