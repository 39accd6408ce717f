package seed

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"racommunity/internal/database"
	"racommunity/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSQLiteDB(t *testing.T) *gorm.DB {
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
	return db
}

func TestSeed_CreatesUsersAndPosts(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()

	res, err := Seed(ctx, db, Options{
		NumUsers: 3,
		NumPosts: 12,
		Factory:  FactoryOptions{Seed: 7, SkipBcrypt: true},
	})
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)
	assert.Len(t, res.Posts, 12)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 12)
	for _, p := range posts {
		assert.True(t, p.Category.Valid(), "category %q", p.Category)
		assert.NotEmpty(t, p.Title)
		assert.NotZero(t, p.UserID)
		assert.GreaterOrEqual(t, p.Views, int64(0))
	}
}

func TestSeed_CleanReplacesData(t *testing.T) {
	db := setupSQLiteDB(t)
	ctx := context.Background()
	opts := Options{NumUsers: 2, NumPosts: 4, Factory: FactoryOptions{SkipBcrypt: true}}

	_, err := Seed(ctx, db, opts)
	require.NoError(t, err)

	opts.ShouldClean = true
	_, err = Seed(ctx, db, opts)
	require.NoError(t, err)

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&posts).Error)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(4), posts)
}

func TestSeed_PostsWithoutUsers(t *testing.T) {
	db := setupSQLiteDB(t)
	_, err := Seed(context.Background(), db, Options{NumPosts: 1})
	assert.Error(t, err)
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := setupSQLiteDB(t)

	res, err := Seed(context.Background(), db, Options{
		NumUsers: 2,
		NumPosts: 3,
		Factory:  FactoryOptions{DryRun: true, SkipBcrypt: true},
	})
	require.NoError(t, err)
	assert.Len(t, res.Posts, 3)
	assert.NotZero(t, res.Posts[0].ID)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestFactory_HashesPassword(t *testing.T) {
	f := NewFactory(nil, nil, FactoryOptions{DryRun: true})
	u, err := f.CreateUser(context.Background())
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))
}

func TestFactory_BuildPostOverrides(t *testing.T) {
	f := NewFactory(nil, nil, FactoryOptions{Seed: 1, MaxDays: 3})
	author := &models.User{ID: 9}

	p := f.BuildPost(author, func(p *models.Post) { p.Category = models.CategoryGuild })
	assert.Equal(t, models.CategoryGuild, p.Category)
	assert.Equal(t, uint(9), p.UserID)
	assert.WithinDuration(t, f.now(), p.CreatedAt, 4*24*time.Hour)
}
