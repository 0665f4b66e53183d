package storage

import (
	"context"
	"errors"
	"fmt"

	"threadmerge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostStorage interface {
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	CountTableRows(ctx context.Context) (*models.Status, error)
	ClearAllTables(ctx context.Context) error
}

type postgresPostStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresPostStorage(pool *pgxpool.Pool) PostStorage {
	return &postgresPostStorage{pool: pool}
}

func (s *postgresPostStorage) GetPostByID(ctx context.Context, id int64) (*models.Post, error) {
	post, err := scanPost(s.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}
	return post, nil
}

func (s *postgresPostStorage) CountTableRows(ctx context.Context) (*models.Status, error) {
	status := &models.Status{}

	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM threads),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM merge_events)
	`).Scan(&status.User, &status.Thread, &status.Post, &status.Merges)
	if err != nil {
		return nil, fmt.Errorf("failed to count table rows: %w", err)
	}

	return status, nil
}

func (s *postgresPostStorage) ClearAllTables(ctx context.Context) error {
	query := `TRUNCATE TABLE merge_events, posts, threads, users RESTART IDENTITY CASCADE`
	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}
