package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"racommunity/internal/database"
	"racommunity/internal/models"
	"racommunity/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteService(t *testing.T) (*PostService, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	return NewPostService(repository.NewPostRepository(db), DefaultSettings()), db
}

func createUser(t *testing.T, db *gorm.DB, name string) uint {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(u).Error)
	return u.ID
}

func TestPostService_ConcurrentViews(t *testing.T) {
	svc, db := newSQLiteService(t)
	ctx := context.Background()
	author := createUser(t, db, "viewer")

	created, err := svc.CreatePost(ctx, author, models.PostInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetPost(ctx, created.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	detail, err := svc.GetPost(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), detail.Stats.Views)
}

func TestPostService_OwnershipEndToEnd(t *testing.T) {
	svc, db := newSQLiteService(t)
	ctx := context.Background()
	owner := createUser(t, db, "owner")
	intruder := createUser(t, db, "intruder")

	created, err := svc.CreatePost(ctx, owner, models.PostInput{Title: "mine", Content: "original", Category: "guild"})
	require.NoError(t, err)

	var before models.Post
	require.NoError(t, db.First(&before, created.ID).Error)

	_, err = svc.UpdatePost(ctx, created.ID, intruder, models.PostInput{Title: "hijack", Content: "x"})
	assert.True(t, models.IsForbidden(err))
	err = svc.DeletePost(ctx, created.ID, intruder)
	assert.True(t, models.IsForbidden(err))

	var unchanged models.Post
	require.NoError(t, db.First(&unchanged, created.ID).Error)
	assert.Equal(t, before.Title, unchanged.Title)
	assert.Equal(t, before.Content, unchanged.Content)
	assert.True(t, before.UpdatedAt.Equal(unchanged.UpdatedAt))

	later := before.UpdatedAt.Add(time.Minute)
	svc.now = func() time.Time { return later }
	summary, err := svc.UpdatePost(ctx, created.ID, owner, models.PostInput{Title: "edited", Content: "new", Category: "qna"})
	require.NoError(t, err)
	assert.Equal(t, "edited", summary.Title)

	var after models.Post
	require.NoError(t, db.First(&after, created.ID).Error)
	assert.Equal(t, "edited", after.Title)
	assert.Equal(t, models.CategoryQnA, after.Category)
	assert.Equal(t, owner, after.UserID)
	assert.True(t, after.UpdatedAt.Equal(later))
	assert.True(t, after.CreatedAt.Equal(before.CreatedAt))

	require.NoError(t, svc.DeletePost(ctx, created.ID, owner))
	_, err = svc.GetPost(ctx, created.ID)
	assert.True(t, models.IsNotFound(err))
	err = svc.DeletePost(ctx, created.ID, owner)
	assert.True(t, models.IsNotFound(err))
}

func TestPostService_SearchEndToEnd(t *testing.T) {
	svc, db := newSQLiteService(t)
	ctx := context.Background()
	author := createUser(t, db, "searcher")

	for _, title := range []string{"Boss Guide", "boss drops", "Crafting tips"} {
		_, err := svc.CreatePost(ctx, author, models.PostInput{Title: title, Content: "content"})
		require.NoError(t, err)
	}

	page, err := svc.SearchPosts(ctx, "BOSS", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Pagination.TotalItems)
	assert.Len(t, page.Posts, 2)
	assert.Equal(t, "searcher", page.Posts[0].Author)

	page, err = svc.SearchPosts(ctx, "nothing-here", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Pagination.TotalItems)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.Empty(t, page.Posts)
}

func TestPostService_ListPastLastPageIsEmpty(t *testing.T) {
	svc, db := newSQLiteService(t)
	ctx := context.Background()
	author := createUser(t, db, "pager")
	for i := 0; i < 3; i++ {
		_, err := svc.CreatePost(ctx, author, models.PostInput{Title: fmt.Sprintf("p%d", i), Content: "c"})
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		page int
	}{
		{"just past the end", 2},
		{"offset would overflow", math.MaxInt/20 + 2},
		{"largest page", math.MaxInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := svc.ListPosts(ctx, ListPostsInput{Page: tt.page, PageSize: 20})
			require.NoError(t, err)
			assert.Empty(t, page.Posts)
			assert.Equal(t, tt.page, page.Pagination.CurrentPage)
			assert.Equal(t, int64(3), page.Pagination.TotalItems)
		})
	}
}
