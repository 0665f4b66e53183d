package storage

import (
	"context"
	"fmt"

	"threadmerge/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MergeEventStorage interface {
	SaveMergeEvent(ctx context.Context, event models.MergeEvent) error
	ListMergeEvents(ctx context.Context, destinationID int64) ([]models.MergeEvent, error)
}

type postgresMergeEventStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresMergeEventStorage(pool *pgxpool.Pool) MergeEventStorage {
	return &postgresMergeEventStorage{pool: pool}
}

func (s *postgresMergeEventStorage) SaveMergeEvent(ctx context.Context, event models.MergeEvent) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO merge_events (id, actor, destination_id, payload, created)
		VALUES ($1::text::uuid, $2, $3, $4::text::jsonb, $5)`,
		event.ID, event.Actor, event.DestinationID, event.Payload, event.Created,
	)
	if err != nil {
		return fmt.Errorf("failed to save merge event %s: %w", event.ID, err)
	}
	return nil
}

func (s *postgresMergeEventStorage) ListMergeEvents(ctx context.Context, destinationID int64) ([]models.MergeEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, actor, destination_id, payload::text, created
		FROM merge_events
		WHERE destination_id = $1
		ORDER BY created`, destinationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query merge events: %w", err)
	}
	defer rows.Close()

	events := make([]models.MergeEvent, 0)
	for rows.Next() {
		var event models.MergeEvent
		if err := rows.Scan(&event.ID, &event.Actor, &event.DestinationID, &event.Payload, &event.Created); err != nil {
			return nil, fmt.Errorf("failed to scan merge event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error while listing merge events: %w", err)
	}
	return events, nil
}
