package server

import (
	"context"

	"racommunity/internal/models"
	"racommunity/internal/repository"
	"racommunity/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PostOperations is the post service surface the handlers call.
type PostOperations interface {
	ListPosts(ctx context.Context, in service.ListPostsInput) (*models.Page[models.PostListItem], error)
	GetPost(ctx context.Context, id uint) (*models.PostDetail, error)
	CreatePost(ctx context.Context, authorID uint, in models.PostInput) (*models.PostSummary, error)
	UpdatePost(ctx context.Context, postID, callerID uint, in models.PostInput) (*models.PostSummary, error)
	DeletePost(ctx context.Context, postID, callerID uint) error
	SearchPosts(ctx context.Context, keyword string, page int) (*models.Page[models.SearchResultItem], error)
	PopularPosts(ctx context.Context) ([]models.PostListItem, error)
}

// GetPosts handles GET /api/community/posts
// Query: page, limit, category (or board), sort, search. A non-blank search
// is served by the search operation.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)

	if keyword := firstQuery(c, "search"); keyword != "" {
		result, err := s.posts.SearchPosts(c.UserContext(), keyword, page)
		if err != nil {
			return s.respondWithError(c, err)
		}
		return c.JSON(result)
	}

	result, err := s.posts.ListPosts(c.UserContext(), service.ListPostsInput{
		Page:     page,
		PageSize: c.QueryInt("limit", 0),
		Category: models.ParseCategory(firstQuery(c, "category", "board")),
		Sort:     repository.ParseSort(c.Query("sort")),
	})
	if err != nil {
		return s.respondWithError(c, err)
	}
	return c.JSON(result)
}

// SearchPosts handles GET /api/community/posts/search?q=&page=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	result, err := s.posts.SearchPosts(c.UserContext(), firstQuery(c, "q", "keyword"), c.QueryInt("page", 1))
	if err != nil {
		return s.respondWithError(c, err)
	}
	return c.JSON(result)
}

// GetPopularPosts handles GET /api/community/popular
func (s *Server) GetPopularPosts(c *fiber.Ctx) error {
	items, err := s.posts.PopularPosts(c.UserContext())
	if err != nil {
		return s.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"posts": items})
}

// GetPost handles GET /api/community/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetPost(c.UserContext(), id)
	if err != nil {
		return s.respondWithError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/community/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req models.PostInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondWithError(c, models.NewValidationError("Invalid request body"))
	}

	summary, err := s.posts.CreatePost(c.UserContext(), callerID(c), req)
	if err != nil {
		return s.respondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(summary)
}

// UpdatePost handles PUT /api/community/posts/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req models.PostInput
	if err := c.BodyParser(&req); err != nil {
		return s.respondWithError(c, models.NewValidationError("Invalid request body"))
	}

	summary, err := s.posts.UpdatePost(c.UserContext(), id, callerID(c), req)
	if err != nil {
		return s.respondWithError(c, err)
	}
	return c.JSON(summary)
}

// DeletePost handles DELETE /api/community/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.posts.DeletePost(c.UserContext(), id, callerID(c)); err != nil {
		return s.respondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}
