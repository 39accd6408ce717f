// Package service contains the community post operations.
package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"racommunity/internal/config"
	"racommunity/internal/models"
	"racommunity/internal/observability"
	"racommunity/internal/pagination"
	"racommunity/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen   = 200
	maxContentLen = 50000
)

// Settings are the tunable listing and display values.
type Settings struct {
	PageSize       int
	MaxPageSize    int
	SearchPageSize int
	PopularLimit   int
	ExcerptLength  int
	Hotness        HotnessClassifier
}

// DefaultSettings returns the board's standard values.
func DefaultSettings() Settings {
	return Settings{
		PageSize:       config.DefaultPostsPageSize,
		MaxPageSize:    config.DefaultPostsMaxPageSize,
		SearchPageSize: config.DefaultSearchPageSize,
		PopularLimit:   config.DefaultPopularPostsLimit,
		ExcerptLength:  config.DefaultExcerptLength,
		Hotness: HotnessClassifier{
			ViewsThreshold: config.DefaultHotViewsThreshold,
			LikesThreshold: config.DefaultHotLikesThreshold,
		},
	}
}

// SettingsFromConfig reads Settings from the loaded configuration.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		PageSize:       cfg.PostsPageSize,
		MaxPageSize:    cfg.PostsMaxPageSize,
		SearchPageSize: cfg.SearchPageSize,
		PopularLimit:   cfg.PopularPostsLimit,
		ExcerptLength:  cfg.ExcerptLength,
		Hotness: HotnessClassifier{
			ViewsThreshold: cfg.HotViewsThreshold,
			LikesThreshold: cfg.HotLikesThreshold,
		},
	}
}

// PostService implements the community post operations.
type PostService struct {
	posts    repository.PostRepository
	settings Settings
	project  projector
	now      func() time.Time
}

// ListPostsInput selects one page of a board.
type ListPostsInput struct {
	Page     int
	PageSize int
	Category models.Category
	Sort     repository.Sort
}

// NewPostService creates a PostService over the given repository. A
// non-positive popular limit falls back to the default.
func NewPostService(posts repository.PostRepository, settings Settings) *PostService {
	if settings.PopularLimit <= 0 {
		settings.PopularLimit = config.DefaultPopularPostsLimit
	}
	return &PostService{
		posts:    posts,
		settings: settings,
		project:  projector{hot: settings.Hotness, excerptLen: settings.ExcerptLength},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// finish closes the operation span and records its outcome.
func finish(span *observability.Span, op string, err error) {
	if err != nil {
		span.SetError(err)
	}
	observability.RecordOperation(op, models.ErrorCode(err))
	span.End()
}

func (s *PostService) pageSize(requested int) int {
	switch {
	case requested == 0:
		return s.settings.PageSize
	case requested < 1:
		return 1
	case requested > s.settings.MaxPageSize:
		return s.settings.MaxPageSize
	default:
		return requested
	}
}

// ListPosts returns one page of posts on a board, newest first unless another
// sort is requested.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) (page *models.Page[models.PostListItem], err error) {
	category := in.Category
	if category == "" {
		category = models.CategoryAll
	}
	span, ctx := observability.NewSpan(ctx, "PostService.ListPosts",
		attribute.String("category", string(category)),
		attribute.String("sort", string(in.Sort)),
		attribute.Int("page", in.Page),
	)
	defer func() { finish(span, "list", err) }()

	filter := repository.CategoryFilter(category)
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, classifyStorageError(err, "Post", nil)
	}

	window := pagination.Paginate(in.Page, s.pageSize(in.PageSize), total)
	rows, err := s.posts.List(ctx, filter, in.Sort, window.Limit, window.Offset)
	if err != nil {
		return nil, classifyStorageError(err, "Post", nil)
	}

	return &models.Page[models.PostListItem]{
		Posts:      s.project.listItems(rows),
		Pagination: window.Descriptor,
	}, nil
}

// GetPost records a view and returns the full post. The returned view count
// includes this view.
func (s *PostService) GetPost(ctx context.Context, id uint) (detail *models.PostDetail, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.GetPost", attribute.Int64("post_id", int64(id)))
	defer func() { finish(span, "get", err) }()

	if err := s.posts.IncrementViews(ctx, id); err != nil {
		return nil, classifyStorageError(err, "Post", id)
	}
	row, err := s.posts.GetDetail(ctx, id)
	if err != nil {
		return nil, classifyStorageError(err, "Post", id)
	}
	return s.project.detail(*row), nil
}

// validateInput trims and checks a create/update payload. An empty category
// defaults to free.
func validateInput(in models.PostInput) (models.PostInput, error) {
	out := models.PostInput{
		Title:    strings.TrimSpace(in.Title),
		Content:  in.Content,
		Category: in.Category,
	}
	if out.Title == "" {
		return out, models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(out.Title) > maxTitleLen {
		return out, models.NewValidationError("Title too long (max 200 characters)")
	}
	if strings.TrimSpace(out.Content) == "" {
		return out, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(out.Content) > maxContentLen {
		return out, models.NewValidationError("Content too long (max 50000 characters)")
	}

	if strings.TrimSpace(string(out.Category)) == "" {
		out.Category = models.CategoryFree
	} else {
		out.Category = models.ParseCategory(string(out.Category))
	}
	if !out.Category.Valid() {
		return out, models.NewValidationError("Invalid category")
	}
	return out, nil
}

// CreatePost stores a new post written by authorID.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, in models.PostInput) (summary *models.PostSummary, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.CreatePost", attribute.Int64("author_id", int64(authorID)))
	defer func() { finish(span, "create", err) }()

	if authorID == 0 {
		return nil, models.NewValidationError("Author is required")
	}
	input, err := validateInput(in)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:    input.Title,
		Content:  input.Content,
		Category: input.Category,
		UserID:   authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if isForeignKeyViolation(err) {
			return nil, models.NewValidationError("Author does not exist")
		}
		return nil, classifyStorageError(err, "Post", nil)
	}

	created := post.CreatedAt
	return &models.PostSummary{
		ID:        post.ID,
		Title:     post.Title,
		Category:  post.Category,
		CreatedAt: &created,
	}, nil
}

// UpdatePost rewrites a post's title, content and category. Only the author
// may update; the author and creation time never change.
func (s *PostService) UpdatePost(ctx context.Context, postID, callerID uint, in models.PostInput) (summary *models.PostSummary, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.UpdatePost",
		attribute.Int64("post_id", int64(postID)),
		attribute.Int64("caller_id", int64(callerID)),
	)
	defer func() { finish(span, "update", err) }()

	input, err := validateInput(in)
	if err != nil {
		return nil, err
	}
	post, err := s.assertOwnership(ctx, postID, callerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ok, err := s.posts.UpdateOwned(ctx, post.ID, callerID, input, now)
	if err != nil {
		return nil, classifyStorageError(err, "Post", postID)
	}
	if !ok {
		return nil, s.explainMissedWrite(ctx, postID, callerID)
	}

	return &models.PostSummary{
		ID:        post.ID,
		Title:     input.Title,
		Category:  input.Category,
		UpdatedAt: &now,
	}, nil
}

// DeletePost removes a post. Only the author may delete.
func (s *PostService) DeletePost(ctx context.Context, postID, callerID uint) (err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.DeletePost",
		attribute.Int64("post_id", int64(postID)),
		attribute.Int64("caller_id", int64(callerID)),
	)
	defer func() { finish(span, "delete", err) }()

	post, err := s.assertOwnership(ctx, postID, callerID)
	if err != nil {
		return err
	}
	ok, err := s.posts.DeleteOwned(ctx, post.ID, callerID)
	if err != nil {
		return classifyStorageError(err, "Post", postID)
	}
	if !ok {
		return s.explainMissedWrite(ctx, postID, callerID)
	}
	return nil
}

// SearchPosts returns posts whose title or content contains keyword,
// case-insensitively, newest first. A blank keyword matches nothing.
func (s *PostService) SearchPosts(ctx context.Context, keyword string, page int) (result *models.Page[models.SearchResultItem], err error) {
	keyword = strings.TrimSpace(keyword)
	span, ctx := observability.NewSpan(ctx, "PostService.SearchPosts",
		attribute.String("keyword", keyword),
		attribute.Int("page", page),
	)
	defer func() { finish(span, "search", err) }()

	size := s.settings.SearchPageSize
	if keyword == "" {
		return &models.Page[models.SearchResultItem]{
			Posts:      []models.SearchResultItem{},
			Pagination: pagination.NewWindow(page, size).Describe(0),
		}, nil
	}

	filter := repository.SearchFilter(keyword)
	total, err := s.posts.Count(ctx, filter)
	if err != nil {
		return nil, classifyStorageError(err, "Post", nil)
	}

	window := pagination.Paginate(page, size, total)
	rows, err := s.posts.List(ctx, filter, repository.SortLatest, window.Limit, window.Offset)
	if err != nil {
		return nil, classifyStorageError(err, "Post", nil)
	}

	return &models.Page[models.SearchResultItem]{
		Posts:      s.project.searchItems(rows),
		Pagination: window.Descriptor,
	}, nil
}

// PopularPosts returns the top posts across every board by likes, then views.
func (s *PostService) PopularPosts(ctx context.Context) (items []models.PostListItem, err error) {
	span, ctx := observability.NewSpan(ctx, "PostService.PopularPosts")
	defer func() { finish(span, "popular", err) }()

	rows, err := s.posts.List(ctx, repository.NoFilter(), repository.SortPopular, s.settings.PopularLimit, 0)
	if err != nil {
		return nil, classifyStorageError(err, "Post", nil)
	}
	return s.project.listItems(rows), nil
}
