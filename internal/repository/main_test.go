package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"racommunity/internal/database"
	"racommunity/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB returns a gorm handle speaking the postgres dialect to sqlmock.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLiteDB returns a migrated in-memory database private to the test.
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		Password:  "x",
		AvatarURL: "https://cdn.example.com/" + username + ".png",
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

type postSeed struct {
	title    string
	content  string
	category models.Category
	views    int64
	likes    int64
	created  time.Time
}

func seedPost(t *testing.T, db *gorm.DB, author *models.User, s postSeed) *models.Post {
	t.Helper()
	if s.category == "" {
		s.category = models.CategoryFree
	}
	if s.content == "" {
		s.content = "body of " + s.title
	}
	if s.created.IsZero() {
		s.created = time.Now().UTC()
	}
	p := &models.Post{
		Title:     s.title,
		Content:   s.content,
		Category:  s.category,
		UserID:    author.ID,
		CreatedAt: s.created,
		UpdatedAt: s.created,
	}
	require.NoError(t, db.Omit("User").Create(p).Error)
	// Zero counters are omitted on insert because of the column defaults.
	require.NoError(t, db.Model(p).UpdateColumns(map[string]any{"views": s.views, "likes": s.likes}).Error)
	p.Views, p.Likes = s.views, s.likes
	return p
}
