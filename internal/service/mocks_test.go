package service

import (
	"context"

	"threadmerge/internal/models"
)

type mockUserStorage struct {
	CreateUserFunc        func(ctx context.Context, user *models.User) error
	GetUserByNicknameFunc func(ctx context.Context, nickname string) (*models.User, error)
	GetUserByEmailFunc    func(ctx context.Context, email string) (*models.User, error)
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, user)
	}
	return nil
}

func (m *mockUserStorage) GetUserByNickname(ctx context.Context, nickname string) (*models.User, error) {
	if m.GetUserByNicknameFunc != nil {
		return m.GetUserByNicknameFunc(ctx, nickname)
	}
	return nil, models.ErrNotFound
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailFunc != nil {
		return m.GetUserByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

type mockThreadStorage struct {
	CreateThreadFunc   func(ctx context.Context, thread models.NewThread) (*models.Thread, error)
	GetThreadByIDFunc  func(ctx context.Context, id int64) (*models.Thread, error)
	GetThreadPostsFunc func(ctx context.Context, threadID int64, limit int, since int, desc bool) ([]*models.Post, error)
	CreatePostsFunc    func(ctx context.Context, threadID int64, posts []models.NewPost) ([]*models.Post, error)
}

func (m *mockThreadStorage) CreateThread(ctx context.Context, thread models.NewThread) (*models.Thread, error) {
	return m.CreateThreadFunc(ctx, thread)
}

func (m *mockThreadStorage) GetThreadByID(ctx context.Context, id int64) (*models.Thread, error) {
	return m.GetThreadByIDFunc(ctx, id)
}

func (m *mockThreadStorage) GetThreadPosts(ctx context.Context, threadID int64, limit int, since int, desc bool) ([]*models.Post, error) {
	return m.GetThreadPostsFunc(ctx, threadID, limit, since, desc)
}

func (m *mockThreadStorage) CreatePosts(ctx context.Context, threadID int64, posts []models.NewPost) ([]*models.Post, error) {
	return m.CreatePostsFunc(ctx, threadID, posts)
}

type mockPostStorage struct {
	GetPostByIDFunc    func(ctx context.Context, id int64) (*models.Post, error)
	CountTableRowsFunc func(ctx context.Context) (*models.Status, error)
	ClearAllTablesFunc func(ctx context.Context) error
}

func (m *mockPostStorage) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	return m.GetPostByIDFunc(ctx, id)
}

func (m *mockPostStorage) CountTableRows(ctx context.Context) (*models.Status, error) {
	return m.CountTableRowsFunc(ctx)
}

func (m *mockPostStorage) ClearAllTables(ctx context.Context) error {
	return m.ClearAllTablesFunc(ctx)
}
