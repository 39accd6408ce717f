package repository

import (
	"strings"

	"racommunity/internal/models"

	"gorm.io/gorm"
)

type filterKind int

const (
	filterNone filterKind = iota
	filterCategory
	filterSearch
)

// Filter selects which posts a listing covers. Count and List apply the same
// Filter, so totals always describe the rows being paged.
type Filter struct {
	kind     filterKind
	category models.Category
	pattern  string
}

// NoFilter matches every post.
func NoFilter() Filter {
	return Filter{kind: filterNone}
}

// CategoryFilter matches posts on one board. The "all" sentinel matches
// every post.
func CategoryFilter(c models.Category) Filter {
	if c.IsAll() {
		return NoFilter()
	}
	return Filter{kind: filterCategory, category: c}
}

// SearchFilter matches posts whose title or content contains term,
// case-insensitively. LIKE wildcards in term are matched literally.
func SearchFilter(term string) Filter {
	return Filter{
		kind:    filterSearch,
		pattern: "%" + escapeLike(strings.ToLower(term)) + "%",
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (f Filter) apply(db *gorm.DB) *gorm.DB {
	switch f.kind {
	case filterCategory:
		return db.Where("posts.category = ?", f.category)
	case filterSearch:
		return db.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.content) LIKE ? ESCAPE '\')`, f.pattern, f.pattern)
	default:
		return db
	}
}

// Sort is a listing order.
type Sort string

// Supported listing orders.
const (
	SortLatest  Sort = "latest"
	SortPopular Sort = "popular"
	SortViews   Sort = "views"
)

// ParseSort maps a raw sort key to a Sort. Unknown keys fall back to latest.
func ParseSort(raw string) Sort {
	switch Sort(strings.ToLower(strings.TrimSpace(raw))) {
	case SortPopular:
		return SortPopular
	case SortViews:
		return SortViews
	default:
		return SortLatest
	}
}

// apply appends ORDER BY. id DESC breaks ties so page windows do not overlap.
func (s Sort) apply(db *gorm.DB) *gorm.DB {
	switch s {
	case SortPopular:
		db = db.Order("posts.likes DESC").Order("posts.views DESC")
	case SortViews:
		db = db.Order("posts.views DESC")
	default:
		db = db.Order("posts.created_at DESC")
	}
	return db.Order("posts.id DESC")
}
