package storage

import (
	"context"
	"errors"
	"fmt"

	"threadmerge/db"
	"threadmerge/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

const threadColumns = `id, title, author, forum, slug, created, post_number_index,
	comment_count, participant_count, first_post_id, last_post_id,
	last_post_number, last_posted_at, last_posted_user`

const postColumns = `id, thread_id, number, author, message, kind, is_edited, created, hidden_at`

func scanThread(row pgx.Row) (*models.Thread, error) {
	thread := &models.Thread{}
	err := row.Scan(
		&thread.ID, &thread.Title, &thread.Author, &thread.Forum, &thread.Slug,
		&thread.Created, &thread.PostNumberIndex, &thread.CommentCount,
		&thread.ParticipantCount, &thread.FirstPostID, &thread.LastPostID,
		&thread.LastPostNumber, &thread.LastPostedAt, &thread.LastPostedUser,
	)
	if err != nil {
		return nil, err
	}
	return thread, nil
}

func scanPost(row pgx.Row) (*models.Post, error) {
	post := &models.Post{}
	err := row.Scan(
		&post.ID, &post.Thread, &post.Number, &post.Author, &post.Message,
		&post.Kind, &post.IsEdited, &post.Created, &post.HiddenAt,
	)
	if err != nil {
		return nil, err
	}
	return post, nil
}

func getThread(ctx context.Context, q querier, id int64, forUpdate bool) (*models.Thread, error) {
	query := `SELECT ` + threadColumns + ` FROM threads WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	thread, err := scanThread(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get thread %d: %w", id, err)
	}
	return thread, nil
}

func listThreadPosts(ctx context.Context, q querier, threadID int64, limit int, since int, desc bool) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE thread_id = $1`
	args := []any{threadID}

	if since > 0 {
		if desc {
			query += ` AND number < $2`
		} else {
			query += ` AND number > $2`
		}
		args = append(args, since)
	}

	if desc {
		query += ` ORDER BY number DESC`
	} else {
		query += ` ORDER BY number ASC`
	}

	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, len(args)+1)
		args = append(args, limit)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts of thread %d: %w", threadID, err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error while listing posts: %w", err)
	}
	return posts, nil
}

func saveAggregates(ctx context.Context, q querier, thread *models.Thread) error {
	tag, err := q.Exec(ctx, `
		UPDATE threads
		SET post_number_index = $1,
		    comment_count = $2,
		    participant_count = $3,
		    first_post_id = $4,
		    last_post_id = $5,
		    last_post_number = $6,
		    last_posted_at = $7,
		    last_posted_user = $8
		WHERE id = $9`,
		thread.PostNumberIndex, thread.CommentCount, thread.ParticipantCount,
		thread.FirstPostID, thread.LastPostID, thread.LastPostNumber,
		thread.LastPostedAt, thread.LastPostedUser, thread.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update aggregates of thread %d: %w", thread.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
