package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"postboard/internal/apperr"
	"postboard/internal/cache"
	"postboard/internal/domain"
	"postboard/internal/repo"
)

// PostService handles post CRUD and keeps the per-user cache consistent:
// every successful mutation invalidates the owner's entry before returning,
// so a subsequent read can never observe a pre-write snapshot.
type PostService struct {
	repo  repo.PostRepo
	cache cache.PostCache
	sf    singleflight.Group
	log   *zap.Logger
}

// NewPostService creates a PostService. If c is nil, caching is disabled.
func NewPostService(r repo.PostRepo, c cache.PostCache, log *zap.Logger) *PostService {
	return &PostService{repo: r, cache: c, log: log}
}

// Create persists a new post for ownerID with a server-assigned id and
// creation timestamp.
func (s *PostService) Create(ctx context.Context, ownerID, content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, apperr.Validation(map[string][]string{
			"content": {"content is required"},
		})
	}
	p, err := s.repo.Create(ctx, domain.Post{
		ID:      uuid.NewString(),
		Content: content,
		UserID:  ownerID,
	})
	if err != nil {
		return domain.Post{}, err
	}
	s.invalidate(ctx, ownerID)
	return p, nil
}

// Update replaces a post's content and stamps its update time.
func (s *PostService) Update(ctx context.Context, id, content string) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Post{}, apperr.Validation(map[string][]string{
			"content": {"content is required"},
		})
	}
	p, err := s.repo.UpdateContent(ctx, id, content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, apperr.New(apperr.KindNotFound, "post not found")
		}
		return domain.Post{}, err
	}
	s.invalidate(ctx, p.UserID)
	return p, nil
}

// Delete removes a post and reports success.
func (s *PostService) Delete(ctx context.Context, id string) (bool, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperr.New(apperr.KindNotFound, "post not found")
		}
		return false, err
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, apperr.New(apperr.KindNotFound, "post not found")
	}
	s.invalidate(ctx, p.UserID)
	return true, nil
}

// GetByID returns a post by id.
func (s *PostService) GetByID(ctx context.Context, id string) (domain.Post, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Post{}, apperr.New(apperr.KindNotFound, "post not found")
		}
		return domain.Post{}, err
	}
	return p, nil
}

// GetUserPosts returns a user's posts newest first, read through the cache.
func (s *PostService) GetUserPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	if s.cache == nil {
		return s.repo.ListByUser(ctx, userID)
	}
	v, err, _ := s.sf.Do(userID, func() (interface{}, error) {
		if posts, ok, err := s.cache.GetPosts(ctx, userID); err == nil && ok {
			return posts, nil
		} else if err != nil {
			s.log.Warn("post cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
		posts, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetPosts(ctx, userID, posts); err != nil {
			s.log.Warn("post cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
		return posts, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Post), nil
}

// List returns posts across all users with paging and content search.
func (s *PostService) List(ctx context.Context, params repo.ListParams) ([]domain.Post, error) {
	return s.repo.List(ctx, params)
}

func (s *PostService) invalidate(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn("post cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
