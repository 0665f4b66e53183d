package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"threadmerge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MergeTx is the set of writes a thread merge performs inside one transaction.
type MergeTx interface {
	// LockThread takes the row lock that serialises merges into one thread.
	LockThread(ctx context.Context, id int64) error
	// SavePosts writes number and thread_id of every post in thread.Posts and
	// the thread's post_number_index.
	SavePosts(ctx context.Context, thread *models.Thread) error
	SaveAggregates(ctx context.Context, thread *models.Thread) error
	// DeleteThread removes a thread that no longer owns any post.
	DeleteThread(ctx context.Context, id int64) error
}

type MergeStorage interface {
	GetThreadWithPosts(ctx context.Context, id int64) (*models.Thread, error)
	CountThreadPosts(ctx context.Context, id int64) (int, error)
	// WithinTx commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx MergeTx) error) error
}

type postgresMergeStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMergeStorage(pool *pgxpool.Pool) MergeStorage {
	return &postgresMergeStorage{pool: pool}
}

func (s *postgresMergeStorage) GetThreadWithPosts(ctx context.Context, id int64) (*models.Thread, error) {
	thread, err := getThread(ctx, s.pool, id, false)
	if err != nil {
		return nil, err
	}
	thread.Posts, err = listThreadPosts(ctx, s.pool, id, 0, 0, false)
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func (s *postgresMergeStorage) CountThreadPosts(ctx context.Context, id int64) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE thread_id = $1`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count posts of thread %d: %w", id, err)
	}
	return count, nil
}

func (s *postgresMergeStorage) WithinTx(ctx context.Context, fn func(tx MergeTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&postgresMergeTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresMergeTx struct {
	tx pgx.Tx
}

func (m *postgresMergeTx) LockThread(ctx context.Context, id int64) error {
	var locked int64
	err := m.tx.QueryRow(ctx, `SELECT id FROM threads WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to lock thread %d: %w", id, err)
	}
	return nil
}

func (m *postgresMergeTx) SavePosts(ctx context.Context, thread *models.Thread) error {
	posts := make([]*models.Post, len(thread.Posts))
	copy(posts, thread.Posts)
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Number > posts[j].Number
	})

	batch := &pgx.Batch{}
	for _, p := range posts {
		batch.Queue(`UPDATE posts SET number = $1, thread_id = $2 WHERE id = $3`, p.Number, thread.ID, p.ID)
	}

	br := m.tx.SendBatch(ctx, batch)
	for _, p := range posts {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return fmt.Errorf("failed to renumber post %d: %w", p.ID, err)
		}
		if tag.RowsAffected() == 0 {
			br.Close()
			return fmt.Errorf("post %d: %w", p.ID, models.ErrPostNotFound)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close renumber batch: %w", err)
	}

	tag, err := m.tx.Exec(ctx, `UPDATE threads SET post_number_index = $1 WHERE id = $2`, thread.PostNumberIndex, thread.ID)
	if err != nil {
		return fmt.Errorf("failed to update post number index of thread %d: %w", thread.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (m *postgresMergeTx) SaveAggregates(ctx context.Context, thread *models.Thread) error {
	return saveAggregates(ctx, m.tx, thread)
}

func (m *postgresMergeTx) DeleteThread(ctx context.Context, id int64) error {
	tag, err := m.tx.Exec(ctx, `
		DELETE FROM threads
		WHERE id = $1 AND NOT EXISTS (SELECT 1 FROM posts WHERE thread_id = $1)`, id)
	if err != nil {
		return fmt.Errorf("failed to delete thread %d: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var remaining int
	if err := m.tx.QueryRow(ctx, `SELECT COUNT(*) FROM posts WHERE thread_id = $1`, id).Scan(&remaining); err != nil {
		return fmt.Errorf("failed to inspect thread %d: %w", id, err)
	}
	if remaining > 0 {
		return fmt.Errorf("thread %d still owns %d posts", id, remaining)
	}
	return fmt.Errorf("thread %d: %w", id, models.ErrNotFound)
}
