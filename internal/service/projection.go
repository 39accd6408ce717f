package service

import (
	"racommunity/internal/models"
)

// HotnessClassifier flags posts whose views or likes pass a threshold.
// The flag is derived per response and never stored.
type HotnessClassifier struct {
	ViewsThreshold int64
	LikesThreshold int64
}

// IsHot reports views > ViewsThreshold or likes > LikesThreshold.
func (h HotnessClassifier) IsHot(views, likes int64) bool {
	return views > h.ViewsThreshold || likes > h.LikesThreshold
}

const excerptSuffix = "..."

// Excerpt returns the first n characters of content followed by "...".
// The suffix is appended even when content is shorter than n.
func Excerpt(content string, n int) string {
	if n < 0 {
		n = 0
	}
	count := 0
	for i := range content {
		if count == n {
			return content[:i] + excerptSuffix
		}
		count++
	}
	return content + excerptSuffix
}

// projector turns joined post rows into the public response shapes.
type projector struct {
	hot        HotnessClassifier
	excerptLen int
}

func (p projector) author(row models.PostRow) models.AuthorSummary {
	return models.AuthorSummary{
		ID:       row.UserID,
		Username: row.AuthorUsername,
		Avatar:   row.AuthorAvatar,
	}
}

func (p projector) stats(row models.PostRow) models.PostStats {
	return models.PostStats{Views: row.Views, Likes: row.Likes, Comments: 0}
}

func (p projector) listItem(row models.PostRow) models.PostListItem {
	return models.PostListItem{
		ID:        row.ID,
		Title:     row.Title,
		Category:  row.Category,
		Excerpt:   Excerpt(row.Content, p.excerptLen),
		Author:    p.author(row),
		CreatedAt: row.CreatedAt,
		Stats:     p.stats(row),
		IsHot:     p.hot.IsHot(row.Views, row.Likes),
	}
}

func (p projector) listItems(rows []models.PostRow) []models.PostListItem {
	out := make([]models.PostListItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, p.listItem(row))
	}
	return out
}

func (p projector) searchItems(rows []models.PostRow) []models.SearchResultItem {
	out := make([]models.SearchResultItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.SearchResultItem{
			ID:        row.ID,
			Title:     row.Title,
			Category:  row.Category,
			Excerpt:   Excerpt(row.Content, p.excerptLen),
			Author:    row.AuthorUsername,
			Stats:     models.SearchStats{Views: row.Views, Likes: row.Likes},
			CreatedAt: row.CreatedAt,
		})
	}
	return out
}

func (p projector) detail(row models.PostRow) *models.PostDetail {
	return &models.PostDetail{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		Category:  row.Category,
		Author:    p.author(row),
		Stats:     p.stats(row),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}
