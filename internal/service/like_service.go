package service

import (
	"context"

	"fakex/internal/cache"
	"fakex/internal/models"
	"fakex/internal/observability"
	"fakex/internal/repository"
)

type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	cache    *cache.Cache
}

func NewLikeService(likeRepo repository.LikeRepository, postRepo repository.PostRepository, feedCache *cache.Cache) *LikeService {
	return &LikeService{likeRepo: likeRepo, postRepo: postRepo, cache: feedCache}
}

// LikePost records that the acting user likes postID. A second like by the
// same user fails with CONFLICT "Like already exists".
func (s *LikeService) LikePost(ctx context.Context, viewer Viewer, postID uint) (*models.Like, error) {
	user, err := actingUser(viewer)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID, user.ID); err != nil {
		return nil, err
	}

	like := &models.Like{PostID: postID, UserID: user.ID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "create")
	return like, nil
}

// UnlikePost removes the acting user's like, or fails with NOT_FOUND "Like not found".
func (s *LikeService) UnlikePost(ctx context.Context, viewer Viewer, postID uint) error {
	user, err := actingUser(viewer)
	if err != nil {
		return err
	}
	if err := s.likeRepo.Delete(ctx, postID, user.ID); err != nil {
		return err
	}
	s.afterMutation(ctx, "delete")
	return nil
}

func (s *LikeService) afterMutation(ctx context.Context, action string) {
	s.cache.InvalidateFeed(ctx)
	observability.RecordMutation("like", action)
}
