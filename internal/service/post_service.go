package service

import (
	"context"
	"errors"
	"fmt"

	"threadmerge/internal/models"
	"threadmerge/internal/storage"
)

type PostService interface {
	GetPostDetails(ctx context.Context, id int64) (*models.Post, error)
	GetDatabaseStatus(ctx context.Context) (*models.Status, error)
	ClearAllData(ctx context.Context) error
}

type postServiceImpl struct {
	postStorage storage.PostStorage
}

func NewPostService(ps storage.PostStorage) PostService {
	return &postServiceImpl{postStorage: ps}
}

func (s *postServiceImpl) GetPostDetails(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.postStorage.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID from storage: %w", err)
	}
	return post, nil
}

func (s *postServiceImpl) GetDatabaseStatus(ctx context.Context) (*models.Status, error) {
	status, err := s.postStorage.CountTableRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database status: %w", err)
	}
	return status, nil
}

func (s *postServiceImpl) ClearAllData(ctx context.Context) error {
	if err := s.postStorage.ClearAllTables(ctx); err != nil {
		return fmt.Errorf("failed to clear database: %w", err)
	}
	return nil
}
