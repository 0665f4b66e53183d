package service

import (
	"context"
	"errors"
	"fmt"

	"threadmerge/internal/models"
	"threadmerge/internal/storage"
)

type UserService interface {
	CreateUser(ctx context.Context, newUser models.User) (models.User, []models.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*models.User, error)
}

type userServiceImpl struct {
	userStorage storage.UserStorage
}

func NewUserService(s storage.UserStorage) UserService {
	return &userServiceImpl{userStorage: s}
}

// CreateUser returns the existing users that clash on nickname or email
// instead of an error when the user cannot be created.
func (s *userServiceImpl) CreateUser(ctx context.Context, newUser models.User) (models.User, []models.User, error) {
	conflictUsers, err := s.findConflicts(ctx, newUser)
	if err != nil {
		return models.User{}, nil, err
	}
	if len(conflictUsers) > 0 {
		return models.User{}, conflictUsers, nil
	}

	err = s.userStorage.CreateUser(ctx, &newUser)
	if err != nil {
		if errors.Is(err, models.ErrUserConflict) {
			// Lost a race with a concurrent insert.
			conflictUsers, _ = s.findConflicts(ctx, newUser)
			return models.User{}, conflictUsers, models.ErrUserConflict
		}
		return models.User{}, nil, fmt.Errorf("failed to save user: %w", err)
	}

	return newUser, nil, nil
}

func (s *userServiceImpl) findConflicts(ctx context.Context, user models.User) ([]models.User, error) {
	var conflicts []models.User

	byNickname, err := s.userStorage.GetUserByNickname(ctx, user.Nickname)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by nickname: %w", err)
	}
	if byNickname != nil {
		conflicts = append(conflicts, *byNickname)
	}

	byEmail, err := s.userStorage.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	if byEmail != nil && (byNickname == nil || byNickname.Nickname != byEmail.Nickname) {
		conflicts = append(conflicts, *byEmail)
	}

	return conflicts, nil
}

func (s *userServiceImpl) GetUserByNickname(ctx context.Context, nickname string) (*models.User, error) {
	user, err := s.userStorage.GetUserByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by nickname from storage: %w", err)
	}
	return user, nil
}
