package storage

import (
	"context"
	"errors"
	"fmt"

	"threadmerge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByNickname(ctx context.Context, nickname string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type postgresUserStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStorage(pool *pgxpool.Pool) UserStorage {
	return &postgresUserStorage{pool: pool}
}

func (p *postgresUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
        INSERT INTO users (nickname, fullname, email, about, is_moderator)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING nickname
    `

	err := p.pool.QueryRow(ctx, query, user.Nickname, user.Fullname, user.Email, user.About, user.IsModerator).Scan(&user.Nickname)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return models.ErrUserConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (p *postgresUserStorage) GetUserByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return p.getUser(ctx, "nickname", nickname)
}

func (p *postgresUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return p.getUser(ctx, "email", email)
}

func (p *postgresUserStorage) getUser(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf(`
        SELECT nickname, fullname, email, about, is_moderator
        FROM users
        WHERE %s = $1
    `, column)

	err := p.pool.QueryRow(ctx, query, value).Scan(&user.Nickname, &user.Fullname, &user.Email, &user.About, &user.IsModerator)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return &user, nil
}
