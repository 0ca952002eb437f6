package service

import (
	"context"

	"fakex/internal/cache"
	"fakex/internal/middleware"
	"fakex/internal/models"
	"fakex/internal/observability"
	"fakex/internal/repository"
)

type PostService struct {
	postRepo       repository.PostRepository
	cache          *cache.Cache
	anonymousLimit int
	maxLength      int
}

// PostServiceConfig carries the feed and content limits.
type PostServiceConfig struct {
	AnonymousLimit int
	MaxLength      int
}

type CreatePostInput struct {
	Content string
}

type UpdatePostInput struct {
	PostID  uint
	Content string
}

const defaultAnonymousLimit = 5

// NewPostService builds the post service. feedCache may be nil.
func NewPostService(postRepo repository.PostRepository, feedCache *cache.Cache, cfg PostServiceConfig) *PostService {
	if cfg.AnonymousLimit <= 0 {
		cfg.AnonymousLimit = defaultAnonymousLimit
	}
	if cfg.MaxLength <= 0 {
		cfg.MaxLength = DefaultMaxContentLength
	}
	return &PostService{
		postRepo:       postRepo,
		cache:          feedCache,
		anonymousLimit: cfg.AnonymousLimit,
		maxLength:      cfg.MaxLength,
	}
}

// ListFeed returns the newest posts. Anonymous viewers get a capped, cached
// page with IsLikedByUser false; authenticated viewers get every post.
func (s *PostService) ListFeed(ctx context.Context, viewer Viewer) ([]*models.Post, error) {
	span, ctx := observability.StartServiceSpan(ctx, "PostService", "ListFeed")
	defer span.End()

	if id := viewerID(viewer); id != 0 {
		posts, err := s.postRepo.List(ctx, 0, id)
		span.SetError(err)
		return posts, err
	}

	posts := []*models.Post{}
	hit, err := s.cache.Aside(ctx, cache.AnonymousFeedNamespace, &posts, cache.AnonymousFeedTTL, func() error {
		fetched, err := s.postRepo.List(ctx, s.anonymousLimit, 0)
		if err != nil {
			return err
		}
		posts = fetched
		return nil
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if s.cache.Enabled() {
		result := "miss"
		if hit {
			result = "hit"
		}
		observability.FeedCacheLookups.WithLabelValues(result).Inc()
	}
	return posts, nil
}

// GetPost returns one post annotated for viewer.
func (s *PostService) GetPost(ctx context.Context, viewer Viewer, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID(viewer))
}

// ListUserPosts returns the acting user's own posts, newest first.
func (s *PostService) ListUserPosts(ctx context.Context, viewer Viewer) ([]*models.Post, error) {
	user, err := actingUser(viewer)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListByAuthor(ctx, user.ID, user.ID)
}

// CreatePost and UpdatePost resolve the acting user (and, for updates, the
// post and its author) before validating content.
func (s *PostService) CreatePost(ctx context.Context, viewer Viewer, in CreatePostInput) (*models.Post, error) {
	user, err := actingUser(viewer)
	if err != nil {
		return nil, err
	}
	if err := validateContent("Post", in.Content, s.maxLength); err != nil {
		return nil, err
	}

	post := &models.Post{Content: in.Content, AuthorID: user.ID}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "create")

	return s.postRepo.GetByID(ctx, post.ID, user.ID)
}

func (s *PostService) UpdatePost(ctx context.Context, viewer Viewer, in UpdatePostInput) (*models.Post, error) {
	user, err := actingUser(viewer)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorizeAuthor(ctx, user, in.PostID); err != nil {
		return nil, err
	}
	if err := validateContent("Post", in.Content, s.maxLength); err != nil {
		return nil, err
	}

	if err := s.postRepo.UpdateContent(ctx, in.PostID, in.Content); err != nil {
		return nil, err
	}
	s.afterMutation(ctx, "update")

	return s.postRepo.GetByID(ctx, in.PostID, user.ID)
}

// DeletePost removes the post with its likes and comments.
func (s *PostService) DeletePost(ctx context.Context, viewer Viewer, postID uint) error {
	user, err := actingUser(viewer)
	if err != nil {
		return err
	}
	if _, err := s.authorizeAuthor(ctx, user, postID); err != nil {
		return err
	}

	if err := s.postRepo.DeletePostCascade(ctx, postID); err != nil {
		return err
	}
	s.afterMutation(ctx, "delete")
	middleware.Logger.InfoContext(ctx, "post deleted with likes and comments", "post_id", postID)
	return nil
}

func (s *PostService) authorizeAuthor(ctx context.Context, user *models.User, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, user.ID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != user.ID {
		return nil, models.NewForbiddenError("Not authorized to modify this post")
	}
	return post, nil
}

func (s *PostService) afterMutation(ctx context.Context, action string) {
	s.cache.InvalidateFeed(ctx)
	observability.RecordMutation("post", action)
}
