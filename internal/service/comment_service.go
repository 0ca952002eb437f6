package service

import (
	"context"

	"fakex/internal/cache"
	"fakex/internal/models"
	"fakex/internal/observability"
	"fakex/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	cache       *cache.Cache
	maxLength   int
}

type CreateCommentInput struct {
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	CommentID uint
	Content   string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	feedCache *cache.Cache,
	maxLength int,
) *CommentService {
	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		cache:       feedCache,
		maxLength:   maxLength,
	}
}

func (s *CommentService) CreateComment(ctx context.Context, viewer Viewer, in CreateCommentInput) (*models.Comment, error) {
	user, err := actingUser(viewer)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID, user.ID); err != nil {
		return nil, err
	}
	if err := validateContent("Comment", in.Content, s.maxLength); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  in.Content,
		AuthorID: user.ID,
		PostID:   in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "create")

	comment.Author = *user
	return comment, nil
}

// ListComments returns the post's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, viewer Viewer, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, viewerID(viewer)); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

func (s *CommentService) UpdateComment(ctx context.Context, viewer Viewer, in UpdateCommentInput) (*models.Comment, error) {
	user, err := actingUser(viewer)
	if err != nil {
		return nil, err
	}
	comment, err := s.authorizeAuthor(ctx, user, in.CommentID)
	if err != nil {
		return nil, err
	}
	if err := validateContent("Comment", in.Content, s.maxLength); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateContent(ctx, comment.ID, in.Content); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "update")

	return s.commentRepo.GetByID(ctx, comment.ID)
}

func (s *CommentService) DeleteComment(ctx context.Context, viewer Viewer, commentID uint) error {
	user, err := actingUser(viewer)
	if err != nil {
		return err
	}
	if _, err := s.authorizeAuthor(ctx, user, commentID); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	s.afterMutation(ctx, "delete")
	return nil
}

// authorizeAuthor loads the comment and requires user to have written it.
// The post's author has no special rights over comments.
func (s *CommentService) authorizeAuthor(ctx context.Context, user *models.User, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != user.ID {
		return nil, models.NewForbiddenError("Not authorized to modify this comment")
	}
	return comment, nil
}

func (s *CommentService) afterMutation(ctx context.Context, action string) {
	s.cache.InvalidateFeed(ctx)
	observability.RecordMutation("comment", action)
}
