package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"threadmerge/internal/metrics"
	"threadmerge/internal/models"
)

type LogListener struct {
	Log *slog.Logger
}

func (l LogListener) HandleThreadMerged(ctx context.Context, event ThreadMerged) error {
	deleted := make([]int64, len(event.DeletedThreads))
	for i, t := range event.DeletedThreads {
		deleted[i] = t.ID
	}
	l.Log.InfoContext(ctx, "threads merged",
		"event_id", event.ID.String(),
		"actor", event.Actor.Nickname,
		"thread_id", event.Thread.ID,
		"merged_posts", len(event.MergedPosts),
		"deleted_threads", deleted,
	)
	return nil
}

type MetricsListener struct{}

func (MetricsListener) HandleThreadMerged(_ context.Context, event ThreadMerged) error {
	metrics.MergedPostsTotal.Add(float64(len(event.MergedPosts)))
	metrics.DeletedThreadsTotal.Add(float64(len(event.DeletedThreads)))
	return nil
}

type MergeEventStorage interface {
	SaveMergeEvent(ctx context.Context, event models.MergeEvent) error
}

// StoreListener keeps an audit row per merge.
type StoreListener struct {
	Storage MergeEventStorage
}

type mergePayload struct {
	Posts          []int64 `json:"posts"`
	DeletedThreads []int64 `json:"deletedThreads"`
	PostCount      int     `json:"postCount"`
}

func (l StoreListener) HandleThreadMerged(ctx context.Context, event ThreadMerged) error {
	payload := mergePayload{
		Posts:          make([]int64, len(event.MergedPosts)),
		DeletedThreads: make([]int64, len(event.DeletedThreads)),
		PostCount:      len(event.Thread.Posts),
	}
	for i, p := range event.MergedPosts {
		payload.Posts[i] = p.ID
	}
	for i, t := range event.DeletedThreads {
		payload.DeletedThreads[i] = t.ID
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode merge event payload: %w", err)
	}

	return l.Storage.SaveMergeEvent(ctx, models.MergeEvent{
		ID:            event.ID.String(),
		Actor:         event.Actor.Nickname,
		DestinationID: event.Thread.ID,
		Payload:       string(data),
		Created:       event.MergedAt,
	})
}
