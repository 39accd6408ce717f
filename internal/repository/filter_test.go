package repository

import (
	"testing"

	"racommunity/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseSort(t *testing.T) {
	tests := map[string]Sort{
		"":        SortLatest,
		"latest":  SortLatest,
		"popular": SortPopular,
		"VIEWS":   SortViews,
		" views ": SortViews,
		"oldest":  SortLatest,
	}
	for raw, want := range tests {
		assert.Equal(t, want, ParseSort(raw), "ParseSort(%q)", raw)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off`, escapeLike("50%_off"))
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestFilterConstructors(t *testing.T) {
	assert.Equal(t, NoFilter(), CategoryFilter(models.CategoryAll))
	assert.Equal(t, filterCategory, CategoryFilter(models.CategoryStrategy).kind)

	f := SearchFilter("MiXeD_")
	assert.Equal(t, filterSearch, f.kind)
	assert.Equal(t, `%mixed\_%`, f.pattern)
}
