package storage

import (
	"context"
	"fmt"
	"time"

	"threadmerge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ThreadStorage interface {
	CreateThread(ctx context.Context, thread models.NewThread) (*models.Thread, error)
	GetThreadByID(ctx context.Context, id int64) (*models.Thread, error)
	GetThreadPosts(ctx context.Context, threadID int64, limit int, since int, desc bool) ([]*models.Post, error)
	CreatePosts(ctx context.Context, threadID int64, posts []models.NewPost) ([]*models.Post, error)
}

type postgresThreadStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresThreadStorage(pool *pgxpool.Pool) ThreadStorage {
	return &postgresThreadStorage{pool: pool}
}

func (s *postgresThreadStorage) CreateThread(ctx context.Context, newThread models.NewThread) (*models.Thread, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO threads (title, author, forum, slug)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		newThread.Title, newThread.Author, newThread.Forum, newThread.Slug,
	).Scan(&id)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return nil, models.ErrThreadConflict
		case pgForeignKeyViolation:
			return nil, models.ErrOwnerNotFound
		}
		return nil, fmt.Errorf("failed to insert thread: %w", err)
	}

	opening := []models.NewPost{{Author: newThread.Author, Message: newThread.Message}}
	if _, err := s.appendPosts(ctx, tx, id, opening); err != nil {
		return nil, err
	}

	thread, err := getThread(ctx, tx, id, false)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return thread, nil
}

func (s *postgresThreadStorage) GetThreadByID(ctx context.Context, id int64) (*models.Thread, error) {
	return getThread(ctx, s.pool, id, false)
}

func (s *postgresThreadStorage) GetThreadPosts(ctx context.Context, threadID int64, limit int, since int, desc bool) ([]*models.Post, error) {
	if _, err := getThread(ctx, s.pool, threadID, false); err != nil {
		return nil, err
	}
	return listThreadPosts(ctx, s.pool, threadID, limit, since, desc)
}

func (s *postgresThreadStorage) CreatePosts(ctx context.Context, threadID int64, posts []models.NewPost) ([]*models.Post, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	created, err := s.appendPosts(ctx, tx, threadID, posts)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return created, nil
}

// appendPosts numbers new posts after the thread's post_number_index while
// holding the thread row lock, then refreshes the thread aggregates.
func (s *postgresThreadStorage) appendPosts(ctx context.Context, tx pgx.Tx, threadID int64, posts []models.NewPost) ([]*models.Post, error) {
	thread, err := getThread(ctx, tx, threadID, true)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []*models.Post{}, nil
	}

	created := time.Now().UTC()
	batch := &pgx.Batch{}
	for i, p := range posts {
		batch.Queue(`
			INSERT INTO posts (thread_id, number, author, message, kind, created)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+postColumns,
			threadID, thread.PostNumberIndex+i+1, p.Author, p.Message, models.PostKindComment, created,
		)
	}

	br := tx.SendBatch(ctx, batch)
	result := make([]*models.Post, 0, len(posts))
	for range posts {
		post, err := scanPost(br.QueryRow())
		if err != nil {
			br.Close()
			if pgErrorCode(err) == pgForeignKeyViolation {
				return nil, models.ErrOwnerNotFound
			}
			return nil, fmt.Errorf("failed to insert post: %w", err)
		}
		result = append(result, post)
	}
	if err := br.Close(); err != nil {
		return nil, fmt.Errorf("failed to close post insert batch: %w", err)
	}

	all, err := listThreadPosts(ctx, tx, threadID, 0, 0, false)
	if err != nil {
		return nil, err
	}
	thread.PostNumberIndex += len(posts)
	thread.ApplyAggregates(models.ComputeAggregates(all))
	if err := saveAggregates(ctx, tx, thread); err != nil {
		return nil, err
	}

	return result, nil
}
