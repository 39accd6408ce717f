// Package repository provides data access layer implementations for the community.
package repository

import (
	"context"
	"time"

	"racommunity/internal/models"
	"racommunity/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const postsTable = "posts"

// postRowColumns is the post-plus-author projection read by listing, search
// and detail queries.
const postRowColumns = "posts.id, posts.title, posts.content, posts.category, posts.user_id, " +
	"posts.views, posts.likes, posts.created_at, posts.updated_at, " +
	"users.username AS author_username, users.avatar_url AS author_avatar"

// PostRepository defines the interface for post data operations.
// Lookups that find nothing return gorm.ErrRecordNotFound.
type PostRepository interface {
	List(ctx context.Context, filter Filter, sort Sort, limit, offset int) ([]models.PostRow, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	GetDetail(ctx context.Context, id uint) (*models.PostRow, error)
	IncrementViews(ctx context.Context, id uint) error
	Create(ctx context.Context, post *models.Post) error
	FindOwnership(ctx context.Context, id uint) (*models.Post, error)
	UpdateOwned(ctx context.Context, id, authorID uint, input models.PostInput, now time.Time) (bool, error)
	DeleteOwned(ctx context.Context, id, authorID uint) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger(postsTable)}
}

// joined is the FROM clause shared by every post read.
func (r *postRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table(postsTable).
		Joins("JOIN users ON users.id = posts.user_id")
}

func (r *postRepository) List(ctx context.Context, filter Filter, sort Sort, limit, offset int) ([]models.PostRow, error) {
	defer observability.TrackQuery("list", postsTable)()

	rows := []models.PostRow{}
	q := filter.apply(r.joined(ctx)).Select(postRowColumns)
	err := sort.apply(q).
		Limit(limit).
		Offset(offset).
		Scan(&rows).Error
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, err
	}
	return rows, nil
}

func (r *postRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	defer observability.TrackQuery("count", postsTable)()

	var total int64
	if err := filter.apply(r.joined(ctx)).Count(&total).Error; err != nil {
		r.log.LogError(ctx, err, "count")
		return 0, err
	}
	return total, nil
}

func (r *postRepository) GetDetail(ctx context.Context, id uint) (*models.PostRow, error) {
	defer observability.TrackQuery("get_detail", postsTable)()

	var rows []models.PostRow
	err := r.joined(ctx).
		Select(postRowColumns).
		Where("posts.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		r.log.LogError(ctx, err, "get_detail")
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// IncrementViews adds one view in a single UPDATE so concurrent readers
// never lose an increment.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	defer observability.TrackQuery("increment_views", postsTable)()

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "increment_views")
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	observability.PostViewsTotal.Inc()
	return nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", postsTable)()

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]any{"post_id": post.ID, "user_id": post.UserID, "category": post.Category})
	return nil
}

// FindOwnership loads the columns the ownership check and mutation
// responses need.
func (r *postRepository) FindOwnership(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("find_ownership", postsTable)()

	var post models.Post
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "title", "category", "created_at", "updated_at").
		Where("id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdateOwned rewrites title, content and category only if authorID still
// owns the post. It reports whether a row was written.
func (r *postRepository) UpdateOwned(ctx context.Context, id, authorID uint, input models.PostInput, now time.Time) (bool, error) {
	defer observability.TrackQuery("update", postsTable)()

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, authorID).
		UpdateColumns(map[string]any{
			"title":      input.Title,
			"content":    input.Content,
			"category":   input.Category,
			"updated_at": now,
		})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "update")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.log.LogUpdate(ctx, map[string]any{"post_id": id, "user_id": authorID})
	return true, nil
}

// DeleteOwned removes the post only if authorID owns it. It reports whether
// a row was removed.
func (r *postRepository) DeleteOwned(ctx context.Context, id, authorID uint) (bool, error) {
	defer observability.TrackQuery("delete", postsTable)()

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, authorID).
		Delete(&models.Post{})
	if res.Error != nil {
		r.log.LogError(ctx, res.Error, "delete")
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	r.log.LogDelete(ctx, map[string]any{"post_id": id, "user_id": authorID})
	return true, nil
}
