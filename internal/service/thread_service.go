package service

import (
	"context"
	"errors"
	"fmt"

	"threadmerge/internal/models"
	"threadmerge/internal/storage"
)

type ThreadService interface {
	CreateThread(ctx context.Context, newThread models.NewThread) (*models.Thread, error)
	CreatePosts(ctx context.Context, threadID int64, newPosts []models.NewPost) ([]*models.Post, error)
	GetThreadDetails(ctx context.Context, threadID int64) (*models.Thread, error)
	GetThreadPosts(ctx context.Context, threadID int64, limit int, since int, desc bool) ([]*models.Post, error)
}

type threadServiceImpl struct {
	userStorage   storage.UserStorage
	threadStorage storage.ThreadStorage
}

func NewThreadService(us storage.UserStorage, ts storage.ThreadStorage) ThreadService {
	return &threadServiceImpl{userStorage: us, threadStorage: ts}
}

func (s *threadServiceImpl) CreateThread(ctx context.Context, newThread models.NewThread) (*models.Thread, error) {
	if _, err := s.userStorage.GetUserByNickname(ctx, newThread.Author); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to check thread author '%s': %w", newThread.Author, err)
	}

	thread, err := s.threadStorage.CreateThread(ctx, newThread)
	if err != nil {
		if errors.Is(err, models.ErrThreadConflict) || errors.Is(err, models.ErrOwnerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create thread in storage: %w", err)
	}
	return thread, nil
}

func (s *threadServiceImpl) CreatePosts(ctx context.Context, threadID int64, newPosts []models.NewPost) ([]*models.Post, error) {
	uniqueAuthors := make(map[string]struct{})
	for _, post := range newPosts {
		uniqueAuthors[post.Author] = struct{}{}
	}

	for author := range uniqueAuthors {
		_, err := s.userStorage.GetUserByNickname(ctx, author)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, models.ErrOwnerNotFound
			}
			return nil, fmt.Errorf("failed to check post author '%s': %w", author, err)
		}
	}

	createdPosts, err := s.threadStorage.CreatePosts(ctx, threadID, newPosts)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrOwnerNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create posts in storage: %w", err)
	}

	return createdPosts, nil
}

func (s *threadServiceImpl) GetThreadDetails(ctx context.Context, threadID int64) (*models.Thread, error) {
	thread, err := s.threadStorage.GetThreadByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread details from storage: %w", err)
	}
	return thread, nil
}

func (s *threadServiceImpl) GetThreadPosts(ctx context.Context, threadID int64, limit int, since int, desc bool) ([]*models.Post, error) {
	posts, err := s.threadStorage.GetThreadPosts(ctx, threadID, limit, since, desc)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread posts from storage: %w", err)
	}
	return posts, nil
}
