package models

import "strings"

// Category is a board on the community.
type Category string

// Known boards.
const (
	CategoryFree       Category = "free"
	CategoryQnA        Category = "qna"
	CategoryStrategy   Category = "strategy"
	CategoryGuild      Category = "guild"
	CategoryTrade      Category = "trade"
	CategoryScreenshot Category = "screenshot"
)

// CategoryAll is the unfiltered sentinel. It is never stored on a post.
const CategoryAll Category = "all"

// legacyAllLabel is the sentinel value older clients send for "all boards".
const legacyAllLabel = "전체"

// Categories lists every storable board in display order.
var Categories = []Category{
	CategoryFree,
	CategoryQnA,
	CategoryStrategy,
	CategoryGuild,
	CategoryTrade,
	CategoryScreenshot,
}

// ParseCategory normalizes a raw board value. Blank, "all" and the legacy
// label all map to CategoryAll; anything else is lower-cased and returned
// as-is, known or not.
func ParseCategory(raw string) Category {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" || v == string(CategoryAll) || v == legacyAllLabel {
		return CategoryAll
	}
	return Category(v)
}

// IsAll reports whether c means "no board filter".
func (c Category) IsAll() bool {
	return c == CategoryAll
}

// Valid reports whether c is a storable board.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
