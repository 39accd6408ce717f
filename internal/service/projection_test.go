package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"racommunity/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestHotnessClassifier_Boundaries(t *testing.T) {
	h := DefaultSettings().Hotness

	tests := []struct {
		views, likes int64
		want         bool
	}{
		{1000, 0, false},
		{1001, 0, true},
		{0, 100, false},
		{0, 101, true},
		{1000, 100, false},
		{5000, 500, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, h.IsHot(tt.views, tt.likes), "views=%d likes=%d", tt.views, tt.likes)
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("a", 500)
	assert.Len(t, Excerpt(long, 200), 203)

	short := strings.Repeat("b", 50)
	assert.Equal(t, short+"...", Excerpt(short, 200))

	exact := strings.Repeat("c", 200)
	assert.Equal(t, exact+"...", Excerpt(exact, 200))

	assert.Equal(t, "...", Excerpt("", 200))
	assert.Equal(t, "...", Excerpt("anything", 0))
}

func TestExcerpt_CountsCharactersNotBytes(t *testing.T) {
	korean := strings.Repeat("가", 300)
	got := Excerpt(korean, 200)
	assert.Equal(t, 203, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestProjector_Shapes(t *testing.T) {
	p := projector{hot: DefaultSettings().Hotness, excerptLen: 5}
	row := models.PostRow{
		ID:             9,
		Title:          "title",
		Content:        "0123456789",
		Category:       models.CategoryGuild,
		UserID:         4,
		Views:          1001,
		Likes:          2,
		AuthorUsername: "neo",
		AuthorAvatar:   "neo.png",
	}

	item := p.listItem(row)
	assert.Equal(t, "01234...", item.Excerpt)
	assert.True(t, item.IsHot)
	assert.Equal(t, models.AuthorSummary{ID: 4, Username: "neo", Avatar: "neo.png"}, item.Author)
	assert.Equal(t, models.PostStats{Views: 1001, Likes: 2, Comments: 0}, item.Stats)

	search := p.searchItems([]models.PostRow{row})
	assert.Equal(t, "neo", search[0].Author)
	assert.Equal(t, models.SearchStats{Views: 1001, Likes: 2}, search[0].Stats)

	detail := p.detail(row)
	assert.Equal(t, "0123456789", detail.Content)
	assert.Equal(t, 0, detail.Stats.Comments)
}
