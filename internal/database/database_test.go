package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
	"testing/fstest"

	"racommunity/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5432",
		DBUser:     "ra",
		DBPassword: "pw",
		DBName:     "ra_community",
	}
	assert.Equal(t, "host=db port=5432 user=ra password=pw dbname=ra_community sslmode=disable", DSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, DSN(cfg), "sslmode=require")

	cfg.DatabaseURL = "postgres://ra:pw@db/ra_community"
	assert.Equal(t, cfg.DatabaseURL, DSN(cfg))
}

func TestAutoMigrate_CreatesCommunityTables(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, AutoMigrate(db))
	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("posts"))
	assert.True(t, db.Migrator().HasColumn("posts", "views"))
}

func TestEmbeddedMigrations(t *testing.T) {
	ms, err := EmbeddedMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, ms)

	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "create_users_posts", ms[0].Name)
	assert.Contains(t, ms[0].UpScript, "CREATE TABLE IF NOT EXISTS posts")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE IF EXISTS posts")
	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version)
	}
}

func TestLoadMigrations(t *testing.T) {
	tests := []struct {
		name    string
		files   fstest.MapFS
		want    []string
		wantErr string
	}{
		{
			name: "sorted by version",
			files: fstest.MapFS{
				"m/000002_b.up.sql":   {Data: []byte("B")},
				"m/000002_b.down.sql": {Data: []byte("b")},
				"m/000001_a.up.sql":   {Data: []byte("A")},
				"m/000001_a.down.sql": {Data: []byte("a")},
			},
			want: []string{"000001_a", "000002_b"},
		},
		{
			name: "invalid names skipped",
			files: fstest.MapFS{
				"m/nounderscore.up.sql": {Data: []byte("X")},
				"m/abc_x.up.sql":        {Data: []byte("X")},
				"m/000001_a.up.sql":     {Data: []byte("A")},
				"m/000001_a.down.sql":   {Data: []byte("a")},
				"m/README.md":           {Data: []byte("docs")},
			},
			want: []string{"000001_a"},
		},
		{
			name: "missing down script",
			files: fstest.MapFS{
				"m/000001_a.up.sql": {Data: []byte("A")},
			},
			wantErr: "failed to read down migration",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"m/000001_a.up.sql":   {Data: []byte("A")},
				"m/000001_a.down.sql": {Data: []byte("a")},
				"m/000001_b.up.sql":   {Data: []byte("B")},
				"m/000001_b.down.sql": {Data: []byte("b")},
			},
			wantErr: "duplicate migration version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms, err := LoadMigrations(tt.files, "m")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			got := make([]string, 0, len(ms))
			for _, m := range ms {
				got = append(got, m.String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func sqliteMigrations() []Migration {
	return []Migration{
		{Version: 1, Name: "widgets", UpScript: "CREATE TABLE widgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE widgets"},
		{Version: 2, Name: "gadgets", UpScript: "CREATE TABLE gadgets (id INTEGER PRIMARY KEY)", DownScript: "DROP TABLE gadgets"},
	}
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	db := openSQLite(t)
	m := NewMigrator(db, sqliteMigrations())
	ctx := context.Background()

	n, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, db.Migrator().HasTable("widgets"))
	assert.True(t, db.Migrator().HasTable("gadgets"))

	n, err = m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	status, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, status.Applied)
	assert.Empty(t, status.Pending)
}

func TestMigrator_Down(t *testing.T) {
	db := openSQLite(t)
	m := NewMigrator(db, sqliteMigrations())
	ctx := context.Background()

	_, err := m.Up(ctx)
	require.NoError(t, err)

	require.NoError(t, m.Down(ctx, 2))
	assert.False(t, db.Migrator().HasTable("gadgets"))

	status, err := m.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, status.Applied)
	require.Len(t, status.Pending, 1)
	assert.Equal(t, 2, status.Pending[0].Version)

	err = m.Down(ctx, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been applied")

	err = m.Down(ctx, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMigrator_FailedMigrationIsNotRecorded(t *testing.T) {
	db := openSQLite(t)
	ms := []Migration{
		{Version: 1, Name: "broken", UpScript: "CREATE TABLE (", DownScript: ""},
	}
	m := NewMigrator(db, ms)

	_, err := m.Up(context.Background())
	require.Error(t, err)

	applied, err := m.Applied(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestValidateAppliedVersions(t *testing.T) {
	registered := sqliteMigrations()
	assert.NoError(t, validateAppliedVersions(nil, registered))
	assert.NoError(t, validateAppliedVersions([]int{1, 2}, registered))

	err := validateAppliedVersions([]int{1, 7, 3}, registered)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000003, 000007")
}

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	sql := func() (string, int64) { return "SELECT 1", 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), sql, nil)
	assert.Empty(t, buf.String(), "fast successful queries are below Warn")

	l.Trace(ctx, time.Now(), sql, errors.New("connection reset"))
	assert.Contains(t, buf.String(), "query failed")
	assert.Contains(t, buf.String(), "connection reset")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
