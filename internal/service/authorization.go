package service

import (
	"context"
	"log/slog"

	"racommunity/internal/models"
	"racommunity/internal/observability"
)

// assertOwnership loads the post once and checks that callerID wrote it.
// The returned post is reused for the mutation response.
func (s *PostService) assertOwnership(ctx context.Context, postID, callerID uint) (*models.Post, error) {
	post, err := s.posts.FindOwnership(ctx, postID)
	if err != nil {
		return nil, classifyStorageError(err, "Post", postID)
	}
	if post.UserID != callerID {
		observability.Logger.WarnContext(ctx, "post ownership check failed",
			slog.Uint64("post_id", uint64(postID)),
			slog.Uint64("caller_id", uint64(callerID)),
		)
		return nil, models.NewForbiddenError("You can only modify your own posts")
	}
	return post, nil
}

// explainMissedWrite runs after a conditional write touched no rows. The
// post was deleted or changed hands in between; the guard reports which.
func (s *PostService) explainMissedWrite(ctx context.Context, postID, callerID uint) error {
	if _, err := s.assertOwnership(ctx, postID, callerID); err != nil {
		return err
	}
	return models.NewNotFoundError("Post", postID)
}
