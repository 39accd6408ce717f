package models

import (
	"time"

	"racommunity/internal/pagination"
)

// AuthorSummary is the public author shape nested in listing and detail views.
type AuthorSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// PostStats is the counter block for listing and detail views. Comments is
// always 0; comment counting is not implemented.
type PostStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int   `json:"comments"`
}

// SearchStats is the counter block for search results.
type SearchStats struct {
	Views int64 `json:"views"`
	Likes int64 `json:"likes"`
}

// PostListItem is the listing projection of a post.
type PostListItem struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Category  Category      `json:"category"`
	Excerpt   string        `json:"excerpt"`
	Author    AuthorSummary `json:"author"`
	CreatedAt time.Time     `json:"createdAt"`
	Stats     PostStats     `json:"stats"`
	IsHot     bool          `json:"isHot"`
}

// SearchResultItem is the search projection of a post. The author is the
// username only.
type SearchResultItem struct {
	ID        uint        `json:"id"`
	Title     string      `json:"title"`
	Category  Category    `json:"category"`
	Excerpt   string      `json:"excerpt"`
	Author    string      `json:"author"`
	Stats     SearchStats `json:"stats"`
	CreatedAt time.Time   `json:"createdAt"`
}

// PostDetail is the full post returned by a detail view.
type PostDetail struct {
	ID        uint          `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Category  Category      `json:"category"`
	Author    AuthorSummary `json:"author"`
	Stats     PostStats     `json:"stats"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// PostSummary is returned by create (CreatedAt set) and update (UpdatedAt set).
type PostSummary struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Category  Category   `json:"category"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Page is a paged listing.
type Page[T any] struct {
	Posts      []T                   `json:"posts"`
	Pagination pagination.Descriptor `json:"pagination"`
}
